package feedsvc

import (
	"net/http"

	"github.com/mkrupp/newsletterhub/internal/domain"
	context_ "github.com/mkrupp/newsletterhub/internal/infra/context"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	http_ "github.com/mkrupp/newsletterhub/internal/infra/transport/http"
)

type sourceRequest struct {
	Name         string `json:"name"`
	EmailAddress string `json:"emailAddress"`
}

type feedRequest struct {
	Name      string   `json:"name"`
	Keywords  string   `json:"keywords"`
	SourceIDs []string `json:"sourceIds"`
}

type sourcesResponse struct {
	Sources []domain.Source `json:"sources"`
}

type sourceResponse struct {
	Source domain.Source `json:"source"`
}

type feedsResponse struct {
	Feeds []domain.Feed `json:"feeds"`
}

type feedResponse struct {
	Feed domain.Feed `json:"feed"`
}

type articlesResponse struct {
	Articles []domain.Article `json:"articles"`
}

type suggestionsResponse struct {
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// HTTPTransport exposes the FeedService. All routes require a session.
type HTTPTransport struct {
	feedSvc *FeedService
	auth    http_.Authenticator
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance. auth resolves the
// bearer tokens of incoming requests.
func NewHTTPTransport(feedSvc *FeedService, auth http_.Authenticator) *HTTPTransport {
	return &HTTPTransport{
		feedSvc: feedSvc,
		auth:    auth,
		log:     logging.GetLogger("svc.feedsvc.http_transport"),
	}
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// Mount registers the source and feed routes.
func (ht *HTTPTransport) Mount(mux *http.ServeMux) {
	routes := map[string]func(http.ResponseWriter, *http.Request) error{
		"GET /api/sources":             ht.handleListSources,
		"POST /api/sources":            ht.handleCreateSource,
		"GET /api/feeds":               ht.handleListFeeds,
		"POST /api/feeds":              ht.handleCreateFeed,
		"PUT /api/feeds/{id}":          ht.handleUpdateFeed,
		"DELETE /api/feeds/{id}":       ht.handleDeleteFeed,
		"GET /api/feeds/{id}/articles": ht.handleFeedArticles,
		"POST /api/scan-email":         ht.handleScanEmail,
	}

	for pattern, handle := range routes {
		mux.Handle(pattern, http_.AuthorizingMiddleware(ht.wrap(pattern, handle), ht.auth, ht.log))
	}
}

// wrap adapts a handler returning an error. Failures are logged and answered
// with the status of their kind.
func (ht *HTTPTransport) wrap(pattern string, handle func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := ht.log.With(logging.Group("http", "route", pattern, "url", r.URL.String()))

		if err := handle(w, r); err != nil {
			level := logging.LevelWarn
			if http_.StatusCode(err) >= http.StatusInternalServerError {
				level = logging.LevelError
			}

			log.Log(r.Context(), level, "request failed", "error", err)
			http_.WriteError(w, err)

			return
		}

		log.DebugContext(r.Context(), "request handled")
	})
}

func userID(r *http.Request) (string, error) {
	id, ok := context_.UserIDFromContext(r.Context())
	if !ok {
		return "", domain.ErrNoSessionToken
	}

	return id, nil
}

func (ht *HTTPTransport) handleListSources(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	sources, err := ht.feedSvc.ListSources(r.Context(), uid)
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, sourcesResponse{Sources: sources})

	return nil
}

func (ht *HTTPTransport) handleCreateSource(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	var req sourceRequest
	if err := http_.ReadJSON(w, r, &req); err != nil {
		return err
	}

	source, err := ht.feedSvc.CreateSource(r.Context(), uid, req.Name, req.EmailAddress)
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusCreated, sourceResponse{Source: source})

	return nil
}

func (ht *HTTPTransport) handleListFeeds(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	feeds, err := ht.feedSvc.ListFeeds(r.Context(), uid)
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, feedsResponse{Feeds: feeds})

	return nil
}

func (ht *HTTPTransport) handleCreateFeed(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	var req feedRequest
	if err := http_.ReadJSON(w, r, &req); err != nil {
		return err
	}

	feed, err := ht.feedSvc.CreateFeed(r.Context(), uid, req.Name, req.Keywords, req.SourceIDs)
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusCreated, feedResponse{Feed: feed})

	return nil
}

func (ht *HTTPTransport) handleUpdateFeed(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	var req feedRequest
	if err := http_.ReadJSON(w, r, &req); err != nil {
		return err
	}

	feed, err := ht.feedSvc.UpdateFeed(r.Context(), uid, r.PathValue("id"), domain.FeedPatch{
		Name:      req.Name,
		Keywords:  req.Keywords,
		SourceIDs: req.SourceIDs,
	})
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, feedResponse{Feed: feed})

	return nil
}

func (ht *HTTPTransport) handleDeleteFeed(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	if err := ht.feedSvc.DeleteFeed(r.Context(), uid, r.PathValue("id")); err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, http_.MessageResponse{Message: "Feed deleted"})

	return nil
}

func (ht *HTTPTransport) handleFeedArticles(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	articles, err := ht.feedSvc.FeedArticles(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, articlesResponse{Articles: articles})

	return nil
}

func (ht *HTTPTransport) handleScanEmail(w http.ResponseWriter, r *http.Request) error {
	uid, err := userID(r)
	if err != nil {
		return err
	}

	suggestions, err := ht.feedSvc.ScanSuggestions(r.Context(), uid)
	if err != nil {
		return err
	}

	http_.WriteJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})

	return nil
}
