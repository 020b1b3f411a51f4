package feedsvc_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	http_ "github.com/mkrupp/newsletterhub/internal/infra/transport/http"
	"github.com/mkrupp/newsletterhub/internal/svc/authsvc"
	"github.com/mkrupp/newsletterhub/internal/svc/feedsvc"
)

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()

	entities := newEntities(t)
	authSvc := authsvc.NewAuthService(entities, authsvc.AuthConfig{AvatarURLTemplate: "/api/avatars/%s"})
	feedSvc, err := feedsvc.NewFeedService(entities, testFeedConfig)
	require.NoError(t, err)

	cfg := http_.HTTPTransportConfig{CORSAllowOrigin: "*"}
	mux := http_.NewServeMux(cfg,
		authsvc.NewHTTPTransport(authSvc),
		feedsvc.NewHTTPTransport(feedSvc, authSvc),
	)

	return &apiClient{t: t, handler: http_.NewHandler(mux, cfg, logging.NewNopLogger())}
}

func (c *apiClient) do(method, target, token string, body any, out any) int {
	c.t.Helper()

	var payload string

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)

		payload = string(data)
	}

	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}

	return rec.Code
}

func (c *apiClient) register(name, email string) string {
	c.t.Helper()

	var resp domain.SessionResponse

	status := c.do(http.MethodPost, "/api/register", "",
		map[string]string{"name": name, "email": email, "password": "secret"}, &resp)
	require.Equal(c.t, http.StatusCreated, status)

	return resp.Token
}

func (c *apiClient) createSource(token, name string) domain.Source {
	c.t.Helper()

	var resp struct {
		Source domain.Source `json:"source"`
	}

	status := c.do(http.MethodPost, "/api/sources", token,
		map[string]string{"name": name, "emailAddress": strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com"},
		&resp)
	require.Equal(c.t, http.StatusCreated, status)

	return resp.Source
}

func TestHTTPTransport_EndToEnd(t *testing.T) {
	t.Parallel()

	api := newAPIClient(t)

	alice := api.register("Alice", "alice@example.com")
	s1 := api.createSource(alice, "AI Weekly")
	s2 := api.createSource(alice, "Startup Digest")

	var created struct {
		Feed domain.Feed `json:"feed"`
	}

	status := api.do(http.MethodPost, "/api/feeds", alice, map[string]any{
		"name":      "Tech",
		"keywords":  "ai, startups",
		"sourceIds": []string{s1.ID, s2.ID},
	}, &created)
	require.Equal(t, http.StatusCreated, status)

	feedID := created.Feed.ID

	var articles struct {
		Articles []domain.Article `json:"articles"`
	}

	status = api.do(http.MethodGet, "/api/feeds/"+feedID+"/articles", alice, nil, &articles)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, articles.Articles, 5)

	for i, article := range articles.Articles {
		assert.Equal(t, []string{"AI Weekly", "Startup Digest"}[i%2], article.Source)
	}

	// Another user cannot see, change or use alice's data.
	bob := api.register("Bob", "bob@example.com")

	var msg http_.MessageResponse

	status = api.do(http.MethodGet, "/api/feeds/"+feedID+"/articles", bob, nil, &msg)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Feed not found.", msg.Message)

	status = api.do(http.MethodPut, "/api/feeds/"+feedID, bob, map[string]string{"name": "Mine"}, &msg)
	assert.Equal(t, http.StatusNotFound, status)

	status = api.do(http.MethodDelete, "/api/feeds/"+feedID, bob, nil, &msg)
	assert.Equal(t, http.StatusNotFound, status)

	status = api.do(http.MethodPost, "/api/feeds", bob, map[string]any{
		"name": "Stolen", "keywords": "x", "sourceIds": []string{s1.ID},
	}, &msg)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "One or more sources are invalid.", msg.Message)

	var lists struct {
		Sources []domain.Source `json:"sources"`
		Feeds   []domain.Feed   `json:"feeds"`
	}

	status = api.do(http.MethodGet, "/api/sources", bob, nil, &lists)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, lists.Sources)

	status = api.do(http.MethodGet, "/api/feeds", bob, nil, &lists)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, lists.Feeds)

	// Alice updates and deletes her feed.
	var updated struct {
		Feed domain.Feed `json:"feed"`
	}

	status = api.do(http.MethodPut, "/api/feeds/"+feedID, alice, map[string]any{"keywords": "ml"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Tech", updated.Feed.Name)
	assert.Equal(t, "ml", updated.Feed.Keywords)
	assert.Equal(t, []string{s1.ID, s2.ID}, updated.Feed.SourceIDs)

	status = api.do(http.MethodDelete, "/api/feeds/"+feedID, alice, nil, &msg)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Feed deleted", msg.Message)

	status = api.do(http.MethodGet, "/api/feeds/"+feedID+"/articles", alice, nil, &msg)
	assert.Equal(t, http.StatusNotFound, status)

	// Logging out invalidates the token.
	status = api.do(http.MethodPost, "/api/logout", alice, nil, &msg)
	require.Equal(t, http.StatusOK, status)

	status = api.do(http.MethodGet, "/api/sources", alice, nil, &msg)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", msg.Message)
}

func TestHTTPTransport_Validation(t *testing.T) {
	t.Parallel()

	api := newAPIClient(t)
	token := api.register("Alice", "alice@example.com")

	tests := []struct {
		name        string
		method      string
		target      string
		token       string
		body        any
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "list sources without token",
			method:      http.MethodGet,
			target:      "/api/sources",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "scan email with bogus token",
			method:      http.MethodPost,
			target:      "/api/scan-email",
			token:       "bogus",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "create source without email",
			method:      http.MethodPost,
			target:      "/api/sources",
			token:       token,
			body:        map[string]string{"name": "AI Weekly"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Name and email address are required.",
		},
		{
			name:        "create feed without sources",
			method:      http.MethodPost,
			target:      "/api/feeds",
			token:       token,
			body:        map[string]any{"name": "Tech", "keywords": "ai", "sourceIds": []string{}},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Name, keywords, and at least one source are required.",
		},
		{
			name:        "update unknown feed",
			method:      http.MethodPut,
			target:      "/api/feeds/unknown",
			token:       token,
			body:        map[string]string{"name": "X"},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Feed not found.",
		},
		{
			name:        "unknown api route",
			method:      http.MethodGet,
			target:      "/api/feeds/unknown/comments",
			token:       token,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg http_.MessageResponse

			status := api.do(tt.method, tt.target, tt.token, tt.body, &msg)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, msg.Message)
		})
	}
}

func TestHTTPTransport_ScanEmail(t *testing.T) {
	t.Parallel()

	api := newAPIClient(t)
	token := api.register("Alice", "alice@example.com")

	var resp struct {
		Suggestions []domain.Suggestion `json:"suggestions"`
	}

	status := api.do(http.MethodPost, "/api/scan-email", token, nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp.Suggestions, 3)
	assert.Equal(t, "AI Weekly", resp.Suggestions[0].Name)
}
