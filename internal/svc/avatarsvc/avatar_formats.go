package avatarsvc

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/tiff"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeTIFF = "image/tiff"
)

// ErrUnsupportedFormat is returned when an avatar is requested in an unknown format.
var ErrUnsupportedFormat = domain.NewError(domain.ErrInvalidInput, "Unsupported avatar format.")

type imageEncoder func(io.Writer, image.Image) error

//nolint:gochecknoglobals
var (
	formatTypes = map[string]string{
		"":     MIMETypePNG,
		"png":  MIMETypePNG,
		"jpg":  MIMETypeJPEG,
		"jpeg": MIMETypeJPEG,
		"tif":  MIMETypeTIFF,
		"tiff": MIMETypeTIFF,
	}

	imageEncoders = map[string]imageEncoder{
		MIMETypePNG:  png.Encode,
		MIMETypeJPEG: func(w io.Writer, i image.Image) error { return jpeg.Encode(w, i, &jpeg.Options{Quality: 90}) },
		MIMETypeTIFF: func(w io.Writer, i image.Image) error { return tiff.Encode(w, i, nil) },
	}
)

func getEncoderByFormat(format string) (mimeType string, encoder imageEncoder, err error) {
	mimeType, ok := formatTypes[format]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return mimeType, imageEncoders[mimeType], nil
}
