package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/newsletterhub/internal/domain"
	context_ "github.com/mkrupp/newsletterhub/internal/infra/context"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	. "github.com/mkrupp/newsletterhub/internal/infra/transport/http"
)

type stubAuthenticator struct {
	tokens map[string]string
	err    error
}

func (a stubAuthenticator) Authenticate(_ context.Context, token string) (string, bool, error) {
	if a.err != nil {
		return "", false, a.err
	}

	userID, ok := a.tokens[token]

	return userID, ok, nil
}

type echoTransport struct {
	auth Authenticator
}

func (t echoTransport) Mount(mux *http.ServeMux) {
	mux.Handle("GET /api/me", AuthorizingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := context_.UserIDFromContext(r.Context())
		token, _ := context_.SessionTokenFromContext(r.Context())
		WriteJSON(w, http.StatusOK, map[string]string{"userId": userID, "token": token})
	}), t.auth, logging.NewNopLogger()))

	mux.HandleFunc("POST /api/echo", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := ReadJSON(w, r, &body); err != nil {
			WriteError(w, err)

			return
		}

		WriteJSON(w, http.StatusCreated, body)
	})

	mux.HandleFunc("GET /api/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newTestHandler(t *testing.T, staticDir string) http.Handler {
	t.Helper()

	cfg := HTTPTransportConfig{CORSAllowOrigin: "*", StaticDir: staticDir}
	auth := stubAuthenticator{tokens: map[string]string{"good": "user-1"}}

	return NewHandler(NewServeMux(cfg, echoTransport{auth: auth}), cfg, logging.NewNopLogger())
}

func serve(handler http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Message
}

func TestCORS(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, "")

	rec := serve(handler, http.MethodOptions, "/api/feeds", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,PUT,DELETE,OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type,Authorization", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = serve(handler, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthorizingMiddleware(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, "")

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}

			rec := serve(handler, http.MethodGet, "/api/me", "", header)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Unauthorized", decodeMessage(t, rec))

				return
			}

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"userId": "user-1", "token": "good"}, body)
		})
	}
}

func TestAuthorizingMiddlewareStoreFailure(t *testing.T) {
	t.Parallel()

	cfg := HTTPTransportConfig{CORSAllowOrigin: "*"}
	auth := stubAuthenticator{err: errors.New("disk on fire")}
	handler := NewHandler(NewServeMux(cfg, echoTransport{auth: auth}), cfg, logging.NewNopLogger())

	rec := serve(handler, http.MethodGet, "/api/me", "", http.Header{"Authorization": {"Bearer good"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", decodeMessage(t, rec))
}

func TestReadJSON(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, "")

	rec := serve(handler, http.MethodPost, "/api/echo", `{"a":1}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())

	rec = serve(handler, http.MethodPost, "/api/echo", "", nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `null`, rec.Body.String())

	rec = serve(handler, http.MethodPost, "/api/echo", `{"a":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body.", decodeMessage(t, rec))
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err         error
		wantStatus  int
		wantMessage string
	}{
		{domain.ErrRegistrationFieldsMissing, http.StatusBadRequest, "Name, email, and password are required."},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials."},
		{domain.ErrFeedSourcesInvalid, http.StatusForbidden, "One or more sources are invalid."},
		{domain.ErrFeedNotFound, http.StatusNotFound, "Feed not found."},
		{domain.ErrEmailTaken, http.StatusConflict, "Email already registered."},
		{errors.Join(errors.New("context"), domain.ErrEmailTaken), http.StatusConflict, "Email already registered."},
		{errors.New("boom"), http.StatusInternalServerError, "Server error"},
		{domain.ErrNotFound, http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantMessage, decodeMessage(t, rec))
		})
	}
}

func TestRescueingMiddleware(t *testing.T) {
	t.Parallel()

	rec := serve(newTestHandler(t, ""), http.MethodGet, "/api/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", decodeMessage(t, rec))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, "")

	rec := serve(handler, http.MethodGet, "/api/unknown", "", http.Header{TraceIDHeader: {"req-1"}})
	assert.Equal(t, "req-1", rec.Header().Get(TraceIDHeader))

	rec = serve(handler, http.MethodGet, "/api/unknown", "", http.Header{"x-request-id": {"req-2"}})
	assert.Equal(t, "req-2", rec.Header().Get(TraceIDHeader))

	rec = serve(handler, http.MethodGet, "/api/unknown", "", nil)
	assert.Len(t, rec.Header().Get(TraceIDHeader), 36)
}

func TestUnknownAPIRoute(t *testing.T) {
	t.Parallel()

	handler := newTestHandler(t, t.TempDir())

	for _, target := range []string{"/api/unknown", "/api/feeds/x/y/z"} {
		rec := serve(handler, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not found", decodeMessage(t, rec))
	}
}

func TestStaticHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hub</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app..min.js"), []byte("min"), 0o600))

	handler := newTestHandler(t, dir)

	rec := serve(handler, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>hub</html>", rec.Body.String())

	rec = serve(handler, http.MethodGet, "/app.js", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")

	rec = serve(handler, http.MethodGet, "/app..min.js", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "min", rec.Body.String())

	rec = serve(handler, http.MethodGet, "/feeds/123", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>hub</html>", rec.Body.String())

	rec = serve(newTestHandler(t, t.TempDir()), http.MethodGet, "/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", rec.Body.String())
}

func TestStaticHandler_ParentSegment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hub</html>"), 0o600))

	static := NewStaticHandler(dir)

	for _, target := range []string{"/../secret", "/assets/../../secret", "/assets/.."} {
		rec := serve(static, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, target)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	//nolint:exhaustruct
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := HTTPTransportConfig{CORSAllowOrigin: "*"}
	auth := stubAuthenticator{tokens: map[string]string{"good": "user-1"}}
	handler := NewHandler(NewServeMux(cfg, echoTransport{auth: auth}), cfg, log)

	rec := serve(handler, http.MethodGet, "/api/me", "", http.Header{"Authorization": {"Bearer good"}})
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var response struct {
		Level string `json:"level"`
		Msg   string `json:"msg"`
		HTTP  struct {
			Route  string `json:"route"`
			Status int    `json:"status"`
			User   string `json:"user"`
		} `json:"http"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &response))
	assert.Equal(t, "INFO", response.Level)
	assert.Equal(t, "response", response.Msg)
	assert.Equal(t, "GET /api/me", response.HTTP.Route)
	assert.Equal(t, http.StatusOK, response.HTTP.Status)
	assert.Equal(t, "user-1", response.HTTP.User)

	buf.Reset()

	rec = serve(handler, http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.NotContains(t, buf.String(), "user-1")
}
