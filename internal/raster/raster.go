// Package raster renders the pixel buffers behind an OKLCH picker: a
// lightness/chroma plane for one hue and a hue strip.
//
// Buffers are RGBA, row-major, 4 bytes per pixel, alpha always 255.
package raster

import (
	"errors"
	"fmt"

	"github.com/jsvensson/oklchstudio/internal/color"
)

// Fixed rendering parameters.
const (
	// PlaneMaxChroma is the chroma at the right edge of a color plane.
	PlaneMaxChroma = 0.4
	// StripLightness and StripChroma are used for every pixel of a hue strip.
	StripLightness = 0.65
	StripChroma    = 0.15
)

// ErrInvalidSize is returned for rasters with a non-positive dimension.
var ErrInvalidSize = errors.New("invalid raster size")

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// position maps pixel i of n onto [0, 1]. A single pixel sits at 0.
func position(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// ColorPlane renders the plane for a fixed hue. Chroma grows left to right
// from 0 to PlaneMaxChroma, lightness falls top to bottom from 1 to 0.
// Out-of-gamut pixels are clamped.
func ColorPlane(hue float64, width, height int) ([]byte, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}

	buf := make([]byte, width*height*4)
	for y := range height {
		l := 1 - position(y, height)
		row := buf[y*width*4:]
		for x := range width {
			c := position(x, width) * PlaneMaxChroma
			px := color.FromSRGB(color.OKLCHToSRGB(color.OKLCH{L: l, C: c, H: hue}))
			putPixel(row[x*4:], px)
		}
	}
	return buf, nil
}

// HueStrip renders hue from 0 to 360 left to right at StripLightness and
// StripChroma. Every row is identical.
func HueStrip(width, height int) ([]byte, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}

	rowLen := width * 4
	buf := make([]byte, rowLen*height)
	for x := range width {
		h := position(x, width) * 360
		px := color.FromSRGB(color.OKLCHToSRGB(color.OKLCH{L: StripLightness, C: StripChroma, H: h}))
		putPixel(buf[x*4:], px)
	}
	for y := 1; y < height; y++ {
		copy(buf[y*rowLen:(y+1)*rowLen], buf[:rowLen])
	}
	return buf, nil
}

func putPixel(dst []byte, c color.Color) {
	dst[0] = c.R
	dst[1] = c.G
	dst[2] = c.B
	dst[3] = 255
}

// PlanePoint maps a pointer position on a plane of the given size back to
// lightness and chroma. Coordinates outside the plane are clamped to its edge.
func PlanePoint(x, y, width, height int) (l, c float64, err error) {
	if err := checkSize(width, height); err != nil {
		return 0, 0, err
	}
	x = clampIndex(x, width)
	y = clampIndex(y, height)
	return 1 - position(y, height), position(x, width) * PlaneMaxChroma, nil
}

// StripHue maps a pointer x position on a strip of the given width to a hue.
func StripHue(x, width int) (float64, error) {
	if err := checkSize(width, 1); err != nil {
		return 0, err
	}
	return position(clampIndex(x, width), width) * 360, nil
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}
