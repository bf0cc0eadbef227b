package color

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidHex is returned for hex strings that are not 3 or 6 hex digits.
var ErrInvalidHex = errors.New("invalid hex color")

// Color is an 8-bit sRGB color as it appears in hex strings and on screen.
type Color struct {
	R, G, B uint8
}

// Node represents a token tree entry that can be both a color and a namespace.
// Color is nil for namespace-only nodes (groups without a color attribute).
// Children is nil for leaf nodes (flat color attributes).
type Node struct {
	Color    *OKLCH
	Children map[string]*Node
}

// Lookup resolves a dot-path (as segments) to a color.
// Returns an error if the path is not found or the target node has no color.
func (n *Node) Lookup(path []string) (OKLCH, error) {
	current := n
	for _, part := range path {
		if current.Children == nil {
			return OKLCH{}, fmt.Errorf("path not found: %s is a leaf, cannot traverse further", part)
		}
		child, ok := current.Children[part]
		if !ok {
			return OKLCH{}, fmt.Errorf("path not found: %q does not exist", part)
		}
		current = child
	}
	if current.Color == nil {
		return OKLCH{}, fmt.Errorf("path is a group, not a color; add a color attribute or reference a specific child")
	}
	return *current.Color, nil
}

// ParseHex parses "#rgb" or "#rrggbb" (the "#" is optional, case-insensitive).
func ParseHex(s string) (Color, error) {
	digits := strings.TrimPrefix(s, "#")

	var nibbles [6]uint8
	switch len(digits) {
	case 3:
		for i := range 3 {
			v, ok := hexNibble(digits[i])
			if !ok {
				return Color{}, fmt.Errorf("%w %q: bad digit %q", ErrInvalidHex, s, digits[i])
			}
			nibbles[2*i], nibbles[2*i+1] = v, v
		}
	case 6:
		for i := range 6 {
			v, ok := hexNibble(digits[i])
			if !ok {
				return Color{}, fmt.Errorf("%w %q: bad digit %q", ErrInvalidHex, s, digits[i])
			}
			nibbles[i] = v
		}
	default:
		return Color{}, fmt.Errorf("%w %q: must be 3 or 6 hex digits", ErrInvalidHex, s)
	}

	return Color{
		R: nibbles[0]<<4 | nibbles[1],
		G: nibbles[2]<<4 | nibbles[3],
		B: nibbles[4]<<4 | nibbles[5],
	}, nil
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// FromSRGB clamps c and quantizes it to 8 bits per channel.
func FromSRGB(c SRGB) Color {
	c = ClampSRGB(c)
	return Color{
		R: uint8(math.Round(c.R * 255.0)),
		G: uint8(math.Round(c.G * 255.0)),
		B: uint8(math.Round(c.B * 255.0)),
	}
}

// SRGB returns the color as a float sRGB triple.
func (c Color) SRGB() SRGB {
	return SRGB{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// OKLCH converts the color to OKLCH.
func (c Color) OKLCH() OKLCH {
	return SRGBToOKLCH(c.SRGB())
}

// Hex returns the color as a hex string with leading #, e.g. "#eb6f92".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexBare returns the color as a hex string without leading #, e.g. "eb6f92".
func (c Color) HexBare() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// HexAlpha returns the color in hex format with alpha channel (#rrggbbaa)
func (c Color) HexAlpha() string {
	return c.Hex() + "ff"
}

// RGB returns the color as an rgb() string, e.g. "rgb(235, 111, 146)".
func (c Color) RGB() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// RGBA returns the color in rgba() function format with full opacity
func (c Color) RGBA() string {
	return fmt.Sprintf("rgba(%d, %d, %d, 1.0)", c.R, c.G, c.B)
}

// HexToSRGB parses a 3- or 6-digit hex string into sRGB.
func HexToSRGB(hex string) (SRGB, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return SRGB{}, err
	}
	return c.SRGB(), nil
}

// SRGBToHex encodes sRGB as lowercase "#rrggbb", clamping each channel.
func SRGBToHex(c SRGB) string {
	return FromSRGB(c).Hex()
}

// OKLCHToHex converts OKLCH to a hex string.
func OKLCHToHex(c OKLCH) string {
	return SRGBToHex(OKLCHToSRGB(c))
}

// HexToOKLCH parses a hex string and converts it to OKLCH.
func HexToOKLCH(hex string) (OKLCH, error) {
	rgb, err := HexToSRGB(hex)
	if err != nil {
		return OKLCH{}, err
	}
	return SRGBToOKLCH(rgb), nil
}
