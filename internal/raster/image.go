package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Image wraps an RGBA buffer produced by ColorPlane or HueStrip. The buffer
// is shared, not copied. Alpha is always opaque so NRGBA and RGBA agree.
func Image(buf []byte, width, height int) (*image.NRGBA, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("%w: buffer holds %d bytes, want %d", ErrInvalidSize, len(buf), width*height*4)
	}
	return &image.NRGBA{
		Pix:    buf,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// EncodePNG writes the buffer as a PNG image.
func EncodePNG(w io.Writer, buf []byte, width, height int) error {
	img, err := Image(buf, width, height)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// Scale resamples img to width x height with Catmull-Rom interpolation.
func Scale(img image.Image, width, height int) (*image.NRGBA, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}
