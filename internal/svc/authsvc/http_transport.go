package authsvc

import (
	"context"
	"net/http"

	"github.com/mkrupp/newsletterhub/internal/domain"
	context_ "github.com/mkrupp/newsletterhub/internal/infra/context"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	http_ "github.com/mkrupp/newsletterhub/internal/infra/transport/http"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HTTPTransport handles HTTP requests for the authentication service.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// Mount registers the auth routes:
// - POST /api/register: create an account and a session
// - POST /api/login: create a session
// - POST /api/logout: destroy the caller's session.
func (ht *HTTPTransport) Mount(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", ht.HandleRegister)
	mux.HandleFunc("POST /api/login", ht.HandleLogin)
	mux.Handle("POST /api/logout", http_.AuthorizingMiddleware(http.HandlerFunc(ht.HandleLogout), ht.authSvc, ht.log))
}

// HandleRegister processes registration requests.
// Expects a JSON body: {name, email, password}.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "user register failed", "error", err)
			http_.WriteError(w, err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	var req registerRequest
	if err := http_.ReadJSON(w, r, &req); err != nil {
		return err
	}

	resp, err := ht.authSvc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusCreated, resp)

	return nil
}

// HandleLogin processes login requests.
// Expects a JSON body: {email, password}.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "user login failed", "error", err)
			http_.WriteError(w, err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req loginRequest
	if err := http_.ReadJSON(w, r, &req); err != nil {
		return err
	}

	resp, err := ht.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, resp)

	return nil
}

// HandleLogout destroys the session the request was authenticated with.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	defer func(ctx context.Context) {
		if err != nil {
			ht.log.ErrorContext(ctx, "user logout failed", "error", err)
			http_.WriteError(w, err)
		} else {
			ht.log.DebugContext(ctx, "user logged out")
		}
	}(r.Context())

	token, ok := context_.SessionTokenFromContext(r.Context())
	if !ok {
		return domain.ErrNoSessionToken
	}

	if err := ht.authSvc.Logout(r.Context(), token); err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, http_.MessageResponse{Message: "Logged out"})

	return nil
}
