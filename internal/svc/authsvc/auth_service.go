package authsvc

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	"github.com/mkrupp/newsletterhub/internal/svc/entitysvc"
)

// uriComponentUnescaper restores the characters QueryEscape encodes but
// encodeURIComponent keeps, and switches spaces to %20.
//
//nolint:gochecknoglobals
var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// dummyCredential is verified against when the email is unknown, so that a
// failed login costs the same whether or not the account exists.
const dummyCredential = "00000000000000000000000000000000:00"

// AuthService provides registration, login, logout and bearer token
// authentication on top of the Entity Store.
type AuthService struct {
	Config   AuthConfig
	Entities *entitysvc.EntityService
	Sessions *SessionStore
	Log      logging.Logger
}

// NewAuthService creates a new AuthService with the given entity service and configuration.
func NewAuthService(entities *entitysvc.EntityService, cfg AuthConfig) *AuthService {
	return &AuthService{
		Config:   cfg,
		Entities: entities,
		Sessions: NewSessionStore(entities),
		Log:      logging.GetLogger("svc.authsvc.auth_service"),
	}
}

// AvatarURL returns the avatar reference for a display name.
func (s *AuthService) AvatarURL(name string) string {
	seed := uriComponentUnescaper.Replace(url.QueryEscape(name))

	return strings.ReplaceAll(s.Config.AvatarURLTemplate, "%s", seed)
}

// Register creates a user account and a first session for it.
// Returns ErrEmailTaken if the email is already registered.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (resp domain.SessionResponse, err error) {
	log := s.Log.With(logging.Group("user", "email", email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered", "id", resp.User.ID)
		}
	}()

	if name == "" || email == "" || password == "" {
		return domain.SessionResponse{}, domain.ErrRegistrationFieldsMissing
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return domain.SessionResponse{}, fmt.Errorf("hash password: %w", err)
	}

	err = s.Entities.Update(ctx, func(doc *domain.Document) error {
		if _, taken := doc.UserByEmail(email); taken {
			return domain.ErrEmailTaken
		}

		user := domain.User{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         name,
			AvatarURL:    s.AvatarURL(name),
			PasswordHash: passwordHash,
		}
		doc.Users = append(doc.Users, user)

		token, err := s.Sessions.Issue(doc, user.ID)
		if err != nil {
			return fmt.Errorf("issue session: %w", err)
		}

		resp = domain.SessionResponse{Token: token, User: user.Profile()}

		return nil
	})
	if err != nil {
		return domain.SessionResponse{}, fmt.Errorf("register user: %w", err)
	}

	return resp, nil
}

// Login verifies the credentials and issues a new session.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (resp domain.SessionResponse, err error) {
	log := s.Log.With(logging.Group("user", "email", email))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful", "id", resp.User.ID)
		}
	}()

	if email == "" || password == "" {
		return domain.SessionResponse{}, domain.ErrLoginFieldsMissing
	}

	var (
		user  domain.User
		found bool
	)

	if err := s.Entities.View(ctx, func(doc *domain.Document) error {
		user, found = doc.UserByEmail(email)

		return nil
	}); err != nil {
		return domain.SessionResponse{}, fmt.Errorf("get user: %w", err)
	}

	if !found {
		_ = VerifyPassword(password, dummyCredential)

		return domain.SessionResponse{}, domain.ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return domain.SessionResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.Sessions.Create(ctx, user.ID)
	if err != nil {
		return domain.SessionResponse{}, err
	}

	return domain.SessionResponse{Token: token, User: user.Profile()}, nil
}

// Logout destroys the session of token.
func (s *AuthService) Logout(ctx context.Context, token string) (err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "logout failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "logged out")
		}
	}()

	return s.Sessions.Destroy(ctx, token)
}

// Authenticate resolves a bearer token to the id of a live user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, bool, error) {
	user, ok, err := s.Sessions.Resolve(ctx, token)
	if err != nil || !ok {
		return "", false, err
	}

	return user.ID, true, nil
}
