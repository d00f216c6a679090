package relay

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"github.com/adnanlatif/webdesk/internal/session"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// DefaultPushDelay is how long the hub waits after a guest frame connects
// before firing the proactive push, giving the guest's own message
// listener time to attach after its document finishes parsing.
const DefaultPushDelay = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// guestState tracks where a frame is in its delivery lifecycle.
type guestState int

const (
	stateLoading guestState = iota
	statePushed
	stateRequested
)

// guest is one connected frame. The connection is the exact delivery
// handle: responses for this guest are written here and nowhere else.
// writeMu guards both the connection writes and the lifecycle state,
// which the read loop and the delayed-push timer touch concurrently.
type guest struct {
	frameID string
	conn    *websocket.Conn
	writeMu sync.Mutex
	state   guestState
}

func (g *guest) send(env Envelope) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	return g.conn.WriteJSON(env)
}

func (g *guest) setState(s guestState) {
	g.writeMu.Lock()
	g.state = s
	g.writeMu.Unlock()
}

// Hub is the host side of the credential relay.
type Hub struct {
	sessions  *session.Store
	cache     *session.KeyCache
	fetcher   SecretsFetcher
	pushDelay time.Duration

	mu       sync.Mutex
	guests   map[string]*guest
	expected map[string]bool

	group singleflight.Group
}

// NewHub creates a relay hub. pushDelay <= 0 selects DefaultPushDelay.
func NewHub(sessions *session.Store, cache *session.KeyCache, fetcher SecretsFetcher, pushDelay time.Duration) *Hub {
	if pushDelay <= 0 {
		pushDelay = DefaultPushDelay
	}
	return &Hub{
		sessions:  sessions,
		cache:     cache,
		fetcher:   fetcher,
		pushDelay: pushDelay,
		guests:    make(map[string]*guest),
		expected:  make(map[string]bool),
	}
}

// ExpectFrame registers a frame ID before its document navigates, so the
// load-event push opportunity is never missed. Called by the shell
// controller when it opens a program window.
func (h *Hub) ExpectFrame(frameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.expected[frameID] = true
}

// GuestCount returns the number of connected guest frames.
func (h *Hub) GuestCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.guests)
}

// HandleGuest upgrades the request to a WebSocket and services one guest
// frame until it disconnects. Connecting is the frame's load event: one
// proactive push is scheduled after the configured delay, then explicit
// requests are answered as they arrive.
func (h *Hub) HandleGuest(w http.ResponseWriter, r *http.Request, frameID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Relay: failed to upgrade guest connection: %v", err)
		return
	}
	defer conn.Close()

	if frameID == "" {
		frameID = uuid.New().String()
	}

	g := &guest{frameID: frameID, conn: conn}

	h.mu.Lock()
	if !h.expected[frameID] {
		log.Printf("Relay: guest %s connected without prior registration", frameID)
	}
	delete(h.expected, frameID)
	if old, ok := h.guests[frameID]; ok {
		old.conn.Close()
	}
	h.guests[frameID] = g
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.guests[frameID] == g {
			delete(h.guests, frameID)
		}
		h.mu.Unlock()
	}()

	// One-shot delayed push: fire-and-forget, delivered to this guest's
	// connection directly.
	timer := time.AfterFunc(h.pushDelay, func() {
		h.pushTo(g)
	})
	defer timer.Stop()

	h.readLoop(g)
}

// readLoop services explicit guest requests until the connection closes.
func (h *Hub) readLoop(g *guest) {
	for {
		_, raw, err := g.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Relay: guest %s read error: %v", g.frameID, err)
			}
			return
		}

		env, err := Decode(raw)
		if err != nil {
			// Unknown shapes are dropped at the boundary; the guest
			// connection stays open.
			log.Printf("Relay: dropping message from guest %s: %v", g.frameID, err)
			continue
		}

		switch env.Type {
		case TypeRequestValues:
			g.setState(stateRequested)
			h.respondTo(g)
		case TypeRequestKey:
			g.setState(stateRequested)
			h.respondKeyOnly(g)
		default:
			// Host-to-guest types arriving from a guest are ignored.
			log.Printf("Relay: ignoring %s from guest %s", env.Type, g.frameID)
		}
	}
}

// pushTo is the proactive path: the same response a request would get,
// sent once when the frame has had time to attach its listener.
func (h *Hub) pushTo(g *guest) {
	h.respondTo(g)
}

// respondTo resolves the freshest known keys and replies to exactly this
// guest: the full snapshot, then the legacy single-key response, then the
// replicate push when that key is present.
func (h *Hub) respondTo(g *guest) {
	snapshot, apiKey := h.resolve(context.Background())

	if err := g.send(NewValuesResponse(snapshot, apiKey)); err != nil {
		log.Printf("Relay: failed to deliver snapshot to guest %s: %v", g.frameID, err)
		return
	}
	if err := g.send(NewKeyResponse(apiKey)); err != nil {
		log.Printf("Relay: failed to deliver legacy key to guest %s: %v", g.frameID, err)
		return
	}
	if snapshot.ReplicateKey != "" {
		if err := g.send(NewReplicatePush(snapshot.ReplicateKey)); err != nil {
			log.Printf("Relay: failed to deliver replicate key to guest %s: %v", g.frameID, err)
			return
		}
	}

	g.setState(statePushed)
}

// respondKeyOnly services the legacy single-key request shape.
func (h *Hub) respondKeyOnly(g *guest) {
	_, apiKey := h.resolve(context.Background())
	if err := g.send(NewKeyResponse(apiKey)); err != nil {
		log.Printf("Relay: failed to deliver legacy key to guest %s: %v", g.frameID, err)
		return
	}
	g.setState(statePushed)
}

// resolve returns the merged snapshot (provider keys + session identity)
// and the primary api key. If no provider key is cached yet it performs
// one best-effort remote fetch, shared across concurrent guests, and
// populates both stores; on fetch failure the cached (possibly empty)
// values are used. The response is never sent speculatively before this
// resolution completes.
func (h *Hub) resolve(ctx context.Context) (models.KeyCacheRecord, string) {
	snapshot := h.cache.GetAll()

	if !snapshot.HasProviderKey() {
		_, err, _ := h.group.Do("secrets", func() (interface{}, error) {
			secrets, err := h.fetcher.FetchSecrets(ctx)
			if err != nil {
				return nil, err
			}
			patch := MapSecrets(secrets)
			h.cache.SaveAll(patch)

			// Keep the session's primary key in step with the cache.
			if sess := h.sessions.GetSession(); sess != nil && sess.APIKey == "" && patch.OpenAIKey != nil {
				h.sessions.SaveSession(sess.Username, *patch.OpenAIKey, sess.IsAdmin, sess.AuthToken)
			}
			return nil, nil
		})
		if err != nil {
			log.Printf("Relay: secrets fetch failed, answering from cache: %v", err)
		}
		snapshot = h.cache.GetAll()
	}

	// Session fields are fresher than whatever the cache recorded.
	if sess := h.sessions.GetSession(); sess != nil {
		snapshot.Username = sess.Username
		snapshot.IsAdmin = sess.IsAdmin
		snapshot.AuthToken = sess.AuthToken
		if sess.APIKey != "" {
			return snapshot, sess.APIKey
		}
	}
	return snapshot, snapshot.OpenAIKey
}

// BroadcastClear signals logout to every connected guest.
func (h *Hub) BroadcastClear() {
	h.mu.Lock()
	guests := make([]*guest, 0, len(h.guests))
	for _, g := range h.guests {
		guests = append(guests, g)
	}
	h.mu.Unlock()

	for _, g := range guests {
		if err := g.send(NewClear()); err != nil {
			log.Printf("Relay: failed to deliver clear to guest %s: %v", g.frameID, err)
		}
	}
}
