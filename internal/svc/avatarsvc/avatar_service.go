package avatarsvc

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/image/draw"

	"github.com/mkrupp/newsletterhub/internal/domain"
	"github.com/mkrupp/newsletterhub/internal/infra/logging"
)

const (
	MinSize = 16
	MaxSize = 512
)

// ErrInvalidSize is returned when an avatar is requested outside [MinSize, MaxSize].
var ErrInvalidSize = domain.NewError(domain.ErrInvalidInput, "Avatar size must be between 16 and 512.")

// Avatar is an encoded avatar image.
type Avatar struct {
	MIMEType string
	Body     []byte
}

// AvatarService renders initials avatars locally, so registrations can
// reference an avatar without a third-party service.
type AvatarService struct {
	cfg      AvatarConfig
	interpol draw.Interpolator
	log      logging.Logger
}

// NewAvatarService creates a new AvatarService.
// Returns ErrUnknownInterpolator if cfg names an unsupported interpolator.
func NewAvatarService(cfg AvatarConfig) (*AvatarService, error) {
	interpol, err := getInterpolatorByName(cfg.Interpolator)
	if err != nil {
		return nil, fmt.Errorf("get interpolator %q: %w", cfg.Interpolator, err)
	}

	if cfg.Size < MinSize || cfg.Size > MaxSize {
		return nil, fmt.Errorf("avatar size %d: %w", cfg.Size, ErrInvalidSize)
	}

	return &AvatarService{
		cfg:      cfg,
		interpol: interpol,
		log:      logging.GetLogger("svc.avatarsvc.avatar_service"),
	}, nil
}

// Render returns the avatar of seed in the given format ("png" when empty).
// A size of 0 selects the configured default.
func (s *AvatarService) Render(ctx context.Context, seed, format string, size int) (avatar Avatar, err error) {
	log := s.log.With(logging.Group("avatar", "seed", seed, "format", format, "size", size))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "render avatar failed", "error", err)
		} else {
			log.DebugContext(ctx, "avatar rendered", "bytes", len(avatar.Body))
		}
	}()

	if size == 0 {
		size = s.cfg.Size
	}

	if size < MinSize || size > MaxSize {
		return Avatar{}, ErrInvalidSize
	}

	mimeType, encode, err := getEncoderByFormat(format)
	if err != nil {
		return Avatar{}, err
	}

	var buf bytes.Buffer
	if err := encode(&buf, renderAvatar(seed, size, s.interpol)); err != nil {
		return Avatar{}, fmt.Errorf("encode image: %w", err)
	}

	return Avatar{MIMEType: mimeType, Body: buf.Bytes()}, nil
}
