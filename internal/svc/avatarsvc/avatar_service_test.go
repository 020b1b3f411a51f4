package avatarsvc_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
	http_ "github.com/mkrupp/newsletterhub/internal/infra/transport/http"
	"github.com/mkrupp/newsletterhub/internal/svc/avatarsvc"
)

func setupTestService(t *testing.T) *avatarsvc.AvatarService {
	t.Helper()

	svc, err := avatarsvc.NewAvatarService(avatarsvc.AvatarConfig{Size: 64, Interpolator: "catmullrom"})
	require.NoError(t, err)

	return svc
}

func TestInitials(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Ada Lovelace":          "AL",
		"ada":                   "A",
		"  grace  brewster hop": "GB",
		"Émile Zola":            "?Z",
		"":                      "?",
	}

	for name, want := range tests {
		assert.Equal(t, want, avatarsvc.Initials(name), "name %q", name)
	}
}

func TestBackgroundIsStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, avatarsvc.Background("Ada"), avatarsvc.Background("Ada"))
	assert.Equal(t, uint8(0xFF), avatarsvc.Background("Ada").A)
}

func TestNewAvatarService_Rejects(t *testing.T) {
	t.Parallel()

	_, err := avatarsvc.NewAvatarService(avatarsvc.AvatarConfig{Size: 64, Interpolator: "sinc"})
	require.ErrorIs(t, err, avatarsvc.ErrUnknownInterpolator)

	_, err = avatarsvc.NewAvatarService(avatarsvc.AvatarConfig{Size: 4, Interpolator: "bilinear"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAvatarService_Render(t *testing.T) {
	t.Parallel()

	svc := setupTestService(t)
	ctx := context.Background()

	avatar, err := svc.Render(ctx, "Ada Lovelace", "", 0)
	require.NoError(t, err)
	assert.Equal(t, avatarsvc.MIMETypePNG, avatar.MIMEType)

	img, err := png.Decode(bytes.NewReader(avatar.Body))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())

	r, g, b, _ := img.At(0, 0).RGBA()
	bg := avatarsvc.Background("Ada Lovelace")
	assert.InDelta(t, int(bg.R), int(r>>8), 2)
	assert.InDelta(t, int(bg.G), int(g>>8), 2)
	assert.InDelta(t, int(bg.B), int(b>>8), 2)

	avatar, err = svc.Render(ctx, "Ada Lovelace", "tiff", 32)
	require.NoError(t, err)
	assert.Equal(t, avatarsvc.MIMETypeTIFF, avatar.MIMEType)

	img, err = tiff.Decode(bytes.NewReader(avatar.Body))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())

	_, err = svc.Render(ctx, "Ada", "gif", 0)
	require.ErrorIs(t, err, avatarsvc.ErrUnsupportedFormat)

	_, err = svc.Render(ctx, "Ada", "png", 4096)
	require.ErrorIs(t, err, avatarsvc.ErrInvalidSize)
}

func TestHTTPTransport_HandleAvatar(t *testing.T) {
	t.Parallel()

	cfg := http_.HTTPTransportConfig{CORSAllowOrigin: "*"}
	mux := http_.NewServeMux(cfg, avatarsvc.NewHTTPTransport(setupTestService(t)))
	handler := http_.NewHandler(mux, cfg, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/avatars/Ada%20Lovelace?size=48", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/avatars/Ada?size=big", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Avatar size must be between 16 and 512."}`, rec.Body.String())
}
