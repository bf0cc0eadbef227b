package color

import (
	"fmt"
	"maps"
	"slices"
)

// achromaticChroma is the chroma below which hue is treated as powerless.
const achromaticChroma = 1e-4

// Lighten returns c with its lightness raised by amount, clamped to [0, 1].
func Lighten(c OKLCH, amount float64) OKLCH {
	c.L = clamp01(c.L + amount)
	return c
}

// Darken returns c with its lightness lowered by amount, clamped to [0, 1].
func Darken(c OKLCH, amount float64) OKLCH {
	return Lighten(c, -amount)
}

// RotateHue returns c with its hue rotated by deg degrees.
func RotateHue(c OKLCH, deg float64) OKLCH {
	c.H = normalizeHue(c.H + deg)
	return c
}

// Mix interpolates between a and b in OKLCH. t=0 yields a, t=1 yields b.
// Hue takes the shorter arc; an achromatic endpoint borrows the other's hue.
func Mix(a, b OKLCH, t float64) OKLCH {
	ha, hb := a.H, b.H
	if a.C < achromaticChroma {
		ha = hb
	}
	if b.C < achromaticChroma {
		hb = ha
	}

	d := hb - ha
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}

	return OKLCH{
		L: a.L + (b.L-a.L)*t,
		C: a.C + (b.C-a.C)*t,
		H: normalizeHue(ha + d*t),
	}
}

// StepLightness returns c at the given absolute lightness, keeping hue and
// chroma where the gamut allows.
func StepLightness(c OKLCH, lightness float64) OKLCH {
	c.L = lightness
	return ToGamut(c)
}

// ApplyLightnessSteps adds children l1..lN to every node that has a color,
// spacing lightness evenly from min to max. Existing children with the same
// names are left untouched.
func ApplyLightnessSteps(node *Node, min, max float64, steps int) {
	if node == nil || steps <= 0 {
		return
	}

	// Snapshot the keys so generated children are not revisited.
	keys := slices.Sorted(maps.Keys(node.Children))
	for _, k := range keys {
		ApplyLightnessSteps(node.Children[k], min, max, steps)
	}

	if node.Color == nil {
		return
	}

	if node.Children == nil {
		node.Children = make(map[string]*Node, steps)
	}
	for i := 1; i <= steps; i++ {
		name := fmt.Sprintf("l%d", i)
		if _, exists := node.Children[name]; exists {
			continue
		}
		l := min
		if steps > 1 {
			l = min + (max-min)*float64(i-1)/float64(steps-1)
		}
		stepped := StepLightness(*node.Color, l)
		node.Children[name] = &Node{Color: &stepped}
	}
}
