// Package auth validates credentials against the user table and manages
// opaque auth tokens. Password comparison is plaintext by design of the
// backing table; hardening it is explicitly out of scope.
package auth

import (
	"fmt"
	"log"

	"github.com/adnanlatif/webdesk/internal/store"
	"github.com/adnanlatif/webdesk/pkg/models"
)

// Service handles credential validation and user administration.
type Service struct {
	store *store.Store
}

// NewService creates an auth service over the given record store.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// ValidationResult is the outcome of a credential check.
type ValidationResult struct {
	Valid   bool
	UserID  string
	APIKey  string
	IsAdmin bool
}

// ValidateCredentials checks username/password against the user table.
// A missing user or a mismatched password both yield Valid=false, never
// an error; errors are reserved for empty inputs.
func (s *Service) ValidateCredentials(username, password string) (ValidationResult, error) {
	if username == "" || password == "" {
		return ValidationResult{}, fmt.Errorf("username and password are required")
	}

	users := s.store.Query(store.TableUsers, func(r store.Record) bool {
		return r.String("username") == username
	})
	if len(users) == 0 {
		return ValidationResult{}, nil
	}

	rec := users[0]
	if rec.String("password") != password {
		return ValidationResult{}, nil
	}

	return ValidationResult{
		Valid:   true,
		UserID:  rec.ID(),
		APIKey:  rec.String("apiKey"),
		IsAdmin: rec.Bool("isAdmin"),
	}, nil
}

// CreateUser inserts a new user row. Usernames must be unique.
func (s *Service) CreateUser(u models.User) (string, error) {
	if u.Username == "" {
		return "", fmt.Errorf("username is required")
	}

	existing := s.store.Query(store.TableUsers, func(r store.Record) bool {
		return r.String("username") == u.Username
	})
	if len(existing) > 0 {
		return "", fmt.Errorf("username already exists: %s", u.Username)
	}

	return s.store.Insert(store.TableUsers, store.Record{
		"username": u.Username,
		"password": u.Password,
		"apiKey":   u.APIKey,
		"isAdmin":  u.IsAdmin,
	})
}

// ListUsers returns all users. Passwords are omitted from the result; the
// admin editor sets them, it never reads them back.
func (s *Service) ListUsers() []models.User {
	recs := s.store.Query(store.TableUsers, nil)

	users := make([]models.User, 0, len(recs))
	for _, r := range recs {
		users = append(users, models.User{
			ID:       r.ID(),
			Username: r.String("username"),
			APIKey:   r.String("apiKey"),
			IsAdmin:  r.Bool("isAdmin"),
		})
	}
	return users
}

// UpdateUser merges the provided fields into an existing user row. Empty
// strings leave the stored value untouched so the admin editor can submit
// partial edits.
func (s *Service) UpdateUser(id string, u models.User) error {
	fields := store.Record{"isAdmin": u.IsAdmin}
	if u.Username != "" {
		fields["username"] = u.Username
	}
	if u.Password != "" {
		fields["password"] = u.Password
	}
	if u.APIKey != "" {
		fields["apiKey"] = u.APIKey
	}
	return s.store.Update(store.TableUsers, id, fields)
}

// DeleteUser removes a user row.
func (s *Service) DeleteUser(id string) error {
	return s.store.Delete(store.TableUsers, id)
}

// ChangePassword verifies the current password and replaces it.
func (s *Service) ChangePassword(username, current, next string) error {
	result, err := s.ValidateCredentials(username, current)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("current password is incorrect")
	}
	if next == "" {
		return fmt.Errorf("new password cannot be empty")
	}
	return s.store.Update(store.TableUsers, result.UserID, store.Record{"password": next})
}

// SeedDefaultUser inserts an admin user when the user table is empty so a
// fresh deployment is reachable.
func (s *Service) SeedDefaultUser(username, password string) {
	if s.store.Count(store.TableUsers) > 0 {
		return
	}
	if _, err := s.CreateUser(models.User{Username: username, Password: password, IsAdmin: true}); err != nil {
		log.Printf("Failed to seed default user: %v", err)
		return
	}
	log.Printf("Seeded default admin user %q", username)
}
