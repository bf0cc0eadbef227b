package color

import "math"

// HSL is a hue in degrees [0, 360) with saturation and lightness as
// percentages [0, 100].
type HSL struct {
	H, S, L float64
}

// HSLToSRGB converts HSL to gamma-encoded sRGB using the CSS Color 4
// piecewise formulation.
func HSLToSRGB(c HSL) SRGB {
	h := normalizeHue(c.H)
	s := c.S / 100.0
	l := c.L / 100.0

	f := func(n float64) float64 {
		k := math.Mod(n+h/30.0, 12.0)
		a := s * math.Min(l, 1-l)
		return l - a*math.Max(-1, math.Min(math.Min(k-3, 9-k), 1))
	}

	return SRGB{R: f(0), G: f(8), B: f(4)}
}

// SRGBToHSL converts gamma-encoded sRGB to HSL. Achromatic input yields
// hue 0 and saturation 0.
func SRGBToHSL(c SRGB) HSL {
	maxV := math.Max(math.Max(c.R, c.G), c.B)
	minV := math.Min(math.Min(c.R, c.G), c.B)
	l := (maxV + minV) / 2.0
	d := maxV - minV

	if d == 0 {
		return HSL{H: 0, S: 0, L: l * 100.0}
	}

	var s float64
	if l != 0 && l != 1 {
		s = (maxV - l) / math.Min(l, 1-l)
	}

	var h float64
	switch maxV {
	case c.R:
		h = (c.G - c.B) / d
		if c.G < c.B {
			h += 6.0
		}
	case c.G:
		h = (c.B-c.R)/d + 2.0
	default:
		h = (c.R-c.G)/d + 4.0
	}
	h *= 60.0

	// Out-of-gamut input can produce negative saturation.
	if s < 0 {
		h += 180.0
		s = -s
	}

	return HSL{H: normalizeHue(h), S: s * 100.0, L: l * 100.0}
}

// OKLCHToHSL converts OKLCH to HSL through sRGB.
func OKLCHToHSL(c OKLCH) HSL {
	return SRGBToHSL(OKLCHToSRGB(c))
}

// HSLToOKLCH converts HSL to OKLCH through sRGB.
func HSLToOKLCH(c HSL) OKLCH {
	return SRGBToOKLCH(HSLToSRGB(c))
}
