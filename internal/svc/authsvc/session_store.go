package authsvc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	"github.com/mkrupp/newsletterhub/internal/svc/entitysvc"
)

const sessionTokenLength = 32

// SessionStore issues, resolves and destroys bearer tokens. Sessions live in
// the persisted document keyed by token.
type SessionStore struct {
	Entities *entitysvc.EntityService
	Log      logging.Logger
	Now      func() time.Time
}

// NewSessionStore creates a SessionStore backed by entities.
func NewSessionStore(entities *entitysvc.EntityService) *SessionStore {
	return &SessionStore{
		Entities: entities,
		Log:      logging.GetLogger("svc.authsvc.session_store"),
		Now:      time.Now,
	}
}

// NewSessionToken returns a fresh unpredictable token.
func NewSessionToken() (string, error) {
	b := make([]byte, sessionTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// Issue records a new session for userID inside an ongoing update of doc.
func (s *SessionStore) Issue(doc *domain.Document, userID string) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}

	doc.Sessions[token] = domain.NewSession(userID, s.Now())

	return token, nil
}

// Create issues and persists a new session for userID.
func (s *SessionStore) Create(ctx context.Context, userID string) (token string, err error) {
	err = s.Entities.Update(ctx, func(doc *domain.Document) error {
		token, err = s.Issue(doc, userID)

		return err
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// Resolve returns the user a live session belongs to. An expired session is
// deleted. A session whose user no longer exists resolves to nothing but is
// kept.
func (s *SessionStore) Resolve(ctx context.Context, token string) (user domain.User, ok bool, err error) {
	var expired bool

	err = s.Entities.View(ctx, func(doc *domain.Document) error {
		session, found := doc.Sessions[token]
		if !found {
			return nil
		}

		if session.Expired(s.Now()) {
			expired = true

			return nil
		}

		user, ok = doc.UserByID(session.UserID)

		return nil
	})
	if err != nil {
		return domain.User{}, false, fmt.Errorf("view session: %w", err)
	}

	if expired {
		if err := s.expire(ctx, token); err != nil {
			return domain.User{}, false, err
		}
	}

	return user, ok, nil
}

func (s *SessionStore) expire(ctx context.Context, token string) error {
	err := s.Entities.Update(ctx, func(doc *domain.Document) error {
		if session, found := doc.Sessions[token]; found && session.Expired(s.Now()) {
			delete(doc.Sessions, token)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("expire session: %w", err)
	}

	s.Log.DebugContext(ctx, "session expired")

	return nil
}

// Destroy removes the session if present. Destroying an unknown token succeeds.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	err := s.Entities.Update(ctx, func(doc *domain.Document) error {
		delete(doc.Sessions, token)

		return nil
	})
	if err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	return nil
}

// Prune deletes every expired session and returns how many were removed.
func (s *SessionStore) Prune(ctx context.Context) (pruned int, err error) {
	err = s.Entities.Update(ctx, func(doc *domain.Document) error {
		now := s.Now()

		for token, session := range doc.Sessions {
			if session.Expired(now) {
				delete(doc.Sessions, token)
				pruned++
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}

	return pruned, nil
}
