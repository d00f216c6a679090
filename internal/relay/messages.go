// Package relay delivers the current session's provider keys and identity
// into embedded guest frames. Each guest holds one WebSocket connection to
// the hub; that connection is the addressing handle for both delivery
// paths — the one-shot delayed push fired when the frame loads, and the
// correlated reply to an explicit request. Delivery is fire-and-forget:
// there is no acknowledgement and no retry beyond those two paths.
package relay

import (
	"encoding/json"
	"fmt"

	"github.com/adnanlatif/webdesk/pkg/models"
)

// Message type tags. The guest-facing names are fixed by the embedded
// applications and include one legacy lowercase shape for the replicate
// key.
const (
	// Guest → host.
	TypeRequestValues = "REQUEST_API_VALUES"
	TypeRequestKey    = "REQUEST_API_KEY"

	// Host → guest.
	TypeValuesResponse = "API_VALUES_RESPONSE"
	TypeKeyResponse    = "API_KEY_RESPONSE"
	TypeReplicateKey   = "replicate-api-key"
	TypeClearKey       = "CLEAR_API_KEY"
)

// Envelope is the tagged union crossing the frame boundary. Which payload
// fields are set depends on Type: Data for API_VALUES_RESPONSE, APIKey
// for API_VALUES_RESPONSE and API_KEY_RESPONSE, Key for replicate-api-key.
// Requests and CLEAR_API_KEY carry no payload.
type Envelope struct {
	Type   string                 `json:"type"`
	Data   *models.KeyCacheRecord `json:"data,omitempty"`
	APIKey string                 `json:"apiKey,omitempty"`
	Key    string                 `json:"key,omitempty"`
}

// Decode parses a raw frame into an envelope, rejecting unknown shapes at
// the boundary. Origin is deliberately not checked anywhere in this
// package; only the shape is validated.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed relay message: %w", err)
	}

	switch env.Type {
	case TypeRequestValues, TypeRequestKey, TypeValuesResponse, TypeKeyResponse, TypeReplicateKey, TypeClearKey:
		return env, nil
	case "":
		return Envelope{}, fmt.Errorf("relay message missing type")
	default:
		return Envelope{}, fmt.Errorf("unknown relay message type: %s", env.Type)
	}
}

// NewValuesResponse builds the full credential snapshot response.
func NewValuesResponse(snapshot models.KeyCacheRecord, apiKey string) Envelope {
	return Envelope{Type: TypeValuesResponse, Data: &snapshot, APIKey: apiKey}
}

// NewKeyResponse builds the legacy single-key response.
func NewKeyResponse(apiKey string) Envelope {
	return Envelope{Type: TypeKeyResponse, APIKey: apiKey}
}

// NewReplicatePush builds the distinctly-typed replicate key push.
func NewReplicatePush(key string) Envelope {
	return Envelope{Type: TypeReplicateKey, Key: key}
}

// NewClear builds the logout signal.
func NewClear() Envelope {
	return Envelope{Type: TypeClearKey}
}
