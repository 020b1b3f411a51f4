package avatarsvc

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	http_ "github.com/mkrupp/newsletterhub/internal/infra/transport/http"
)

// HTTPTransport serves rendered avatars. It requires no authentication since
// avatar URLs are embedded in user profiles.
type HTTPTransport struct {
	avatarSvc *AvatarService
	log       logging.Logger
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(avatarSvc *AvatarService) *HTTPTransport {
	return &HTTPTransport{
		avatarSvc: avatarSvc,
		log:       logging.GetLogger("svc.avatarsvc.http_transport"),
	}
}

// Mount registers GET /api/avatars/{seed}. Optional query parameters are
// "format" (png, jpeg, tiff) and "size" in pixels.
func (ht *HTTPTransport) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/avatars/{seed}", ht.HandleAvatar)
}

// HandleAvatar renders the avatar of the seed path value.
func (ht *HTTPTransport) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAvatar(w, r)
}

func (ht *HTTPTransport) handleAvatar(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "serve avatar failed", "error", err)
			http_.WriteError(w, err)
		} else {
			log.DebugContext(ctx, "avatar served")
		}
	}(r.Context())

	query := r.URL.Query()

	var size int

	if raw := query.Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			return ErrInvalidSize
		}
	}

	avatar, err := ht.avatarSvc.Render(r.Context(), r.PathValue("seed"), query.Get("format"), size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", avatar.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(avatar.Body)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(avatar.Body); err != nil {
		log.DebugContext(r.Context(), "write avatar", "error", err)
	}

	return nil
}
