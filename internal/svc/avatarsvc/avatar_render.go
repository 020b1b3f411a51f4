package avatarsvc

import (
	"errors"
	"hash/fnv"
	"image"
	"image/color"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

// glyphCanvas is the edge length of the canvas the initials are drawn on
// before scaling. Two 7x13 glyphs fit with a margin.
const glyphCanvas = 24

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}

	backgrounds = []color.RGBA{
		{0xE5, 0x39, 0x35, 0xFF},
		{0xD8, 0x1B, 0x60, 0xFF},
		{0x8E, 0x24, 0xAA, 0xFF},
		{0x5E, 0x35, 0xB1, 0xFF},
		{0x39, 0x49, 0xAB, 0xFF},
		{0x1E, 0x88, 0xE5, 0xFF},
		{0x00, 0x89, 0x7B, 0xFF},
		{0x43, 0xA0, 0x47, 0xFF},
		{0xF4, 0x51, 0x1E, 0xFF},
		{0x6D, 0x4C, 0x41, 0xFF},
		{0x54, 0x6E, 0x7A, 0xFF},
		{0xC0, 0xCA, 0x33, 0xFF},
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, ErrUnknownInterpolator
	}

	return interpol, nil
}

// Initials returns up to two upper case letters for a display name, taken
// from the first two words. Characters the bitmap font cannot draw become "?".
func Initials(name string) string {
	var initials []rune

	for _, word := range strings.Fields(name) {
		r := unicode.ToUpper([]rune(word)[0])
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			r = '?'
		}

		initials = append(initials, r)
		if len(initials) == 2 {
			break
		}
	}

	if len(initials) == 0 {
		return "?"
	}

	return string(initials)
}

// Background returns the colour assigned to a seed.
func Background(seed string) color.RGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))

	return backgrounds[h.Sum32()%uint32(len(backgrounds))]
}

// renderAvatar draws the initials of seed on its background colour and scales
// the result to a size x size square.
func renderAvatar(seed string, size int, interpol draw.Interpolator) image.Image {
	canvas := image.NewRGBA(image.Rect(0, 0, glyphCanvas, glyphCanvas))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: Background(seed)}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	initials := Initials(seed)
	metrics := face.Metrics()

	drawer := font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
	}

	width := drawer.MeasureString(initials)
	height := metrics.Ascent + metrics.Descent

	drawer.Dot = fixed.Point26_6{
		X: (fixed.I(glyphCanvas) - width) / 2,
		Y: (fixed.I(glyphCanvas)-height)/2 + metrics.Ascent,
	}
	drawer.DrawString(initials)

	avatar := image.NewRGBA(image.Rect(0, 0, size, size))
	interpol.Scale(avatar, avatar.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)

	return avatar
}
