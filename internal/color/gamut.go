package color

// GamutEpsilon is the tolerance band around [0, 1] that IsInGamut accepts,
// absorbing floating-point noise at the sRGB boundary.
const GamutEpsilon = 0.001

// MaxUIChroma is the chroma ceiling used by pickers and gamut mapping.
const MaxUIChroma = 0.4

// IsInGamut reports whether every sRGB channel of c lies within
// [-GamutEpsilon, 1+GamutEpsilon].
func IsInGamut(c OKLCH) bool {
	rgb := OKLCHToSRGB(c)
	return channelInGamut(rgb.R) && channelInGamut(rgb.G) && channelInGamut(rgb.B)
}

func channelInGamut(v float64) bool {
	return v >= -GamutEpsilon && v <= 1+GamutEpsilon
}

// ClampSRGB clamps each channel to [0, 1].
func ClampSRGB(c SRGB) SRGB {
	return SRGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// OKLCHToDisplayHex converts to sRGB, clamps and encodes as hex. Use this
// for anything that ends up on screen.
func OKLCHToDisplayHex(c OKLCH) string {
	return SRGBToHex(ClampSRGB(OKLCHToSRGB(c)))
}

// MaxChroma returns the largest chroma, up to MaxUIChroma, at which the given
// lightness and hue are still inside the sRGB gamut.
func MaxChroma(l, h float64) float64 {
	if IsInGamut(OKLCH{L: l, C: MaxUIChroma, H: h}) {
		return MaxUIChroma
	}
	lo, hi := 0.0, MaxUIChroma
	for range 32 {
		mid := (lo + hi) / 2
		if IsInGamut(OKLCH{L: l, C: mid, H: h}) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// ToGamut maps c into the sRGB gamut by clamping lightness and reducing
// chroma while keeping hue.
func ToGamut(c OKLCH) OKLCH {
	c.L = clamp01(c.L)
	if IsInGamut(c) {
		return c
	}
	c.C = MaxChroma(c.L, c.H)
	return c
}
