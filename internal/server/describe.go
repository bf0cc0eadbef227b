package server

import (
	"github.com/jsvensson/oklchstudio/internal/color"
)

// ColorInfo is a color in every notation the picker displays.
type ColorInfo struct {
	L       float64 `json:"l"`
	C       float64 `json:"c"`
	H       float64 `json:"h"`
	Hex     string  `json:"hex"`
	OKLCH   string  `json:"oklch"`
	HSL     string  `json:"hsl"`
	RGB     string  `json:"rgb"`
	InGamut bool    `json:"in_gamut"`
	// Gamut is the nearest in-gamut color at the same lightness and hue.
	Gamut string `json:"gamut"`
}

// Describe converts c for display. Hex, HSL and RGB use the clamped sRGB color.
func Describe(c color.OKLCH) ColorInfo {
	display := color.FromSRGB(color.ClampSRGB(color.OKLCHToSRGB(c)))
	return ColorInfo{
		L:       c.L,
		C:       c.C,
		H:       c.H,
		Hex:     display.Hex(),
		OKLCH:   c.CSS(),
		HSL:     color.SRGBToHSL(display.SRGB()).CSS(),
		RGB:     display.RGB(),
		InGamut: color.IsInGamut(c),
		Gamut:   color.OKLCHToHex(color.ToGamut(c)),
	}
}
