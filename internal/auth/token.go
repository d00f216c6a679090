package auth

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/adnanlatif/webdesk/internal/store"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// tokenTTL is how long a generated token stays valid.
const tokenTTL = 30 * 24 * time.Hour

// GenerateToken issues a new opaque auth token for the user and stores it
// in the auth token table. Tokens are a UUID plus timestamp plus random
// suffix; uniqueness is probabilistic and there is no retry-on-conflict —
// a collision would overwrite the older row.
func (s *Service) GenerateToken(username string, isAdmin bool) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}

	token := fmt.Sprintf("%s-%d-%04d", uuid.New().String(), time.Now().UnixNano(), rand.Intn(10000))
	now := time.Now()

	_, err := s.store.Insert(store.TableTokens, store.Record{
		"id":         token,
		"username":   username,
		"isAdmin":    isAdmin,
		"createdAt":  now.Format(time.RFC3339Nano),
		"expiresAt":  now.Add(tokenTTL).Format(time.RFC3339Nano),
		"lastUsedAt": now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store auth token: %w", err)
	}

	return token, nil
}

// ValidateToken looks up a token, checks expiry, and bumps its last-used
// timestamp. Returns nil for unknown or expired tokens.
func (s *Service) ValidateToken(token string) *models.AuthToken {
	if token == "" {
		return nil
	}

	rec, ok := s.store.Get(store.TableTokens, token)
	if !ok {
		return nil
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, rec.String("expiresAt"))
	if err != nil || time.Now().After(expiresAt) {
		return nil
	}

	now := time.Now()
	if err := s.store.Update(store.TableTokens, token, store.Record{
		"lastUsedAt": now.Format(time.RFC3339Nano),
	}); err != nil {
		// The token is still valid even if the bump failed.
		log.Printf("Warning: failed to bump token last-used: %v", err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, rec.String("createdAt"))
	return &models.AuthToken{
		Token:      token,
		Username:   rec.String("username"),
		IsAdmin:    rec.Bool("isAdmin"),
		CreatedAt:  createdAt,
		ExpiresAt:  expiresAt,
		LastUsedAt: now,
	}
}

// RevokeToken deletes a token row. Revoking an unknown token succeeds;
// logout must be idempotent.
func (s *Service) RevokeToken(token string) error {
	if token == "" {
		return nil
	}
	if _, ok := s.store.Get(store.TableTokens, token); !ok {
		return nil
	}
	return s.store.Delete(store.TableTokens, token)
}
