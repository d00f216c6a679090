package relay

import (
	"context"
	"strings"

	"github.com/adnanlatif/webdesk/internal/session"
	"github.com/adnanlatif/webdesk/internal/store"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// SecretsFetcher retrieves the secrets collection. The hub calls it at
// most once per outstanding resolution; failures are tolerated and the
// hub falls back to whatever is already cached.
type SecretsFetcher interface {
	FetchSecrets(ctx context.Context) ([]models.SecretKey, error)
}

// StoreFetcher reads secrets from the record store's secret key table.
type StoreFetcher struct {
	Store *store.Store
}

// FetchSecrets returns every row of the secret key table.
func (f *StoreFetcher) FetchSecrets(ctx context.Context) ([]models.SecretKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs := f.Store.Query(store.TableSecrets, nil)
	secrets := make([]models.SecretKey, 0, len(recs))
	for _, r := range recs {
		secrets = append(secrets, models.SecretKey{
			ID:       r.ID(),
			KeyName:  r.String("keyName"),
			KeyValue: r.String("keyValue"),
		})
	}
	return secrets, nil
}

// MapSecrets folds known key-name variants onto the four canonical
// provider slots. ANTHROPIC is the legacy alias for the claude slot.
// Unrecognized names are ignored; the last variant seen for a slot wins.
func MapSecrets(secrets []models.SecretKey) session.Patch {
	var patch session.Patch
	for i := range secrets {
		value := secrets[i].KeyValue
		if value == "" {
			continue
		}
		v := value
		switch strings.ToUpper(secrets[i].KeyName) {
		case "OPENAI", "OPENAI_API_KEY":
			patch.OpenAIKey = &v
		case "CLAUDE", "CLAUDE_API_KEY", "ANTHROPIC", "ANTHROPIC_API_KEY":
			patch.ClaudeKey = &v
		case "GEMINI", "GEMINI_API_KEY":
			patch.GeminiKey = &v
		case "REPLICATE", "REPLICATE_API_TOKEN":
			patch.ReplicateKey = &v
		}
	}
	return patch
}
