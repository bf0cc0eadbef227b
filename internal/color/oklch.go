package color

import "math"

// SRGB is a gamma-encoded sRGB triple. Channels are nominally in [0, 1] but
// may fall outside that range for colors outside the sRGB gamut.
type SRGB struct {
	R, G, B float64
}

// OKLab is the Cartesian form of OKLCH.
type OKLab struct {
	L, A, B float64
}

// OKLCH is a perceptual color: lightness [0, 1], chroma [0, ~0.4],
// hue in degrees [0, 360).
type OKLCH struct {
	L, C, H float64
}

// Linearize converts a gamma-encoded sRGB channel to linear light.
func Linearize(x float64) float64 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math.Pow((x+0.055)/1.055, 2.4)
}

// Delinearize converts a linear-light channel back to gamma-encoded sRGB.
func Delinearize(x float64) float64 {
	if x <= 0.0031308 {
		return x * 12.92
	}
	return 1.055*math.Pow(x, 1.0/2.4) - 0.055
}

// SRGBToOKLab converts gamma-encoded sRGB to OKLab.
func SRGBToOKLab(c SRGB) OKLab {
	r := Linearize(c.R)
	g := Linearize(c.G)
	b := Linearize(c.B)

	// M1: linear RGB → LMS
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	// Cube root (preserving sign)
	lp := math.Cbrt(l)
	mp := math.Cbrt(m)
	sp := math.Cbrt(s)

	// M2: LMS' → Lab
	return OKLab{
		L: 0.2104542553*lp + 0.7936177850*mp - 0.0040720468*sp,
		A: 1.9779984951*lp - 2.4285922050*mp + 0.4505937099*sp,
		B: 0.0259040371*lp + 0.7827717662*mp - 0.8086757660*sp,
	}
}

// OKLabToSRGB converts OKLab to gamma-encoded sRGB. The result is not
// clamped; use ClampSRGB before encoding it for display.
func OKLabToSRGB(c OKLab) SRGB {
	// Inverse M2: Lab → LMS'
	lp := c.L + 0.3963377774*c.A + 0.2158037573*c.B
	mp := c.L - 0.1055613458*c.A - 0.0638541728*c.B
	sp := c.L - 0.0894841775*c.A - 1.2914855480*c.B

	// Cube: LMS' → LMS
	l := lp * lp * lp
	m := mp * mp * mp
	s := sp * sp * sp

	// Inverse M1: LMS → linear RGB
	r := +4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g := -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b := -0.0041960863*l - 0.7034186147*m + 1.7076147010*s

	return SRGB{
		R: Delinearize(r),
		G: Delinearize(g),
		B: Delinearize(b),
	}
}

// OKLCHToOKLab converts polar OKLCH to Cartesian OKLab.
func OKLCHToOKLab(c OKLCH) OKLab {
	hRad := c.H * (math.Pi / 180.0)
	return OKLab{
		L: c.L,
		A: c.C * math.Cos(hRad),
		B: c.C * math.Sin(hRad),
	}
}

// OKLabToOKLCH converts Cartesian OKLab to polar OKLCH with hue in [0, 360).
func OKLabToOKLCH(c OKLab) OKLCH {
	chroma := math.Sqrt(c.A*c.A + c.B*c.B)
	hue := math.Atan2(c.B, c.A) * (180.0 / math.Pi)
	if hue < 0 {
		hue += 360.0
	}
	// atan2 of a tiny negative angle can round up to exactly 360
	if hue >= 360.0 {
		hue -= 360.0
	}
	return OKLCH{L: c.L, C: chroma, H: hue}
}

// OKLCHToSRGB converts OKLCH to gamma-encoded sRGB, unclamped.
func OKLCHToSRGB(c OKLCH) SRGB {
	return OKLabToSRGB(OKLCHToOKLab(c))
}

// SRGBToOKLCH converts gamma-encoded sRGB to OKLCH.
func SRGBToOKLCH(c SRGB) OKLCH {
	return OKLabToOKLCH(SRGBToOKLab(c))
}

// SRGB returns the unclamped sRGB projection of the color.
func (c OKLCH) SRGB() SRGB {
	return OKLCHToSRGB(c)
}

// InGamut reports whether the color is displayable in sRGB.
func (c OKLCH) InGamut() bool {
	return IsInGamut(c)
}

// normalizeHue wraps a hue in degrees into [0, 360).
func normalizeHue(h float64) float64 {
	h = math.Mod(h, 360.0)
	if h < 0 {
		h += 360.0
	}
	return h
}

// clamp01 clamps a value to the [0, 1] range. NaN clamps to 0.
func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
