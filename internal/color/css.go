package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned by Parse for input it cannot read as a color.
var ErrInvalidColor = errors.New("invalid color")

// Parse reads a CSS color: "#rgb", "#rrggbb", "oklch(L C H)", "hsl(H S% L%)"
// or "rgb(R G B)". Components may be separated by spaces or commas.
func Parse(s string) (OKLCH, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return HexToOKLCH(s)
	}

	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return OKLCH{}, fmt.Errorf("%w %q: expected #hex or a color function", ErrInvalidColor, s)
	}
	fn := strings.ToLower(strings.TrimSpace(s[:open]))
	args := strings.FieldsFunc(s[open+1:len(s)-1], func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(args) != 3 {
		return OKLCH{}, fmt.Errorf("%w %q: %s() takes 3 components, got %d", ErrInvalidColor, s, fn, len(args))
	}

	switch fn {
	case "oklch":
		l, err := parseComponent(args[0], 1)
		if err != nil {
			return OKLCH{}, fmt.Errorf("%w %q: lightness: %v", ErrInvalidColor, s, err)
		}
		c, err := parseComponent(args[1], MaxUIChroma)
		if err != nil {
			return OKLCH{}, fmt.Errorf("%w %q: chroma: %v", ErrInvalidColor, s, err)
		}
		h, err := parseAngle(args[2])
		if err != nil {
			return OKLCH{}, fmt.Errorf("%w %q: hue: %v", ErrInvalidColor, s, err)
		}
		return OKLCH{L: l, C: c, H: normalizeHue(h)}, nil

	case "hsl":
		h, err := parseAngle(args[0])
		if err != nil {
			return OKLCH{}, fmt.Errorf("%w %q: hue: %v", ErrInvalidColor, s, err)
		}
		sat, err := parsePercent(args[1])
		if err != nil {
			return OKLCH{}, fmt.Errorf("%w %q: saturation: %v", ErrInvalidColor, s, err)
		}
		l, err := parsePercent(args[2])
		if err != nil {
			return OKLCH{}, fmt.Errorf("%w %q: lightness: %v", ErrInvalidColor, s, err)
		}
		return HSLToOKLCH(HSL{H: h, S: sat, L: l}), nil

	case "rgb":
		var ch [3]float64
		for i, a := range args {
			v, err := parseComponent(a, 255)
			if err != nil {
				return OKLCH{}, fmt.Errorf("%w %q: channel %d: %v", ErrInvalidColor, s, i, err)
			}
			ch[i] = v / 255.0
		}
		return SRGBToOKLCH(SRGB{R: ch[0], G: ch[1], B: ch[2]}), nil
	}

	return OKLCH{}, fmt.Errorf("%w %q: unknown function %s()", ErrInvalidColor, s, fn)
}

// parseComponent reads a bare number or a percentage of full.
func parseComponent(s string, full float64) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := parseNumber(p)
		if err != nil {
			return 0, err
		}
		return v / 100.0 * full, nil
	}
	return parseNumber(s)
}

func parsePercent(s string) (float64, error) {
	return parseNumber(strings.TrimSuffix(s, "%"))
}

func parseAngle(s string) (float64, error) {
	return parseNumber(strings.TrimSuffix(s, "deg"))
}

// parseNumber is strconv.ParseFloat restricted to finite values.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// CSS formats the color as a CSS oklch() value, e.g. "oklch(62.8% 0.2577 29.23)".
func (c OKLCH) CSS() string {
	return fmt.Sprintf("oklch(%s%% %s %s)",
		formatFloat(c.L*100, 3), formatFloat(c.C, 4), formatHue(c.H, 3))
}

// CSS formats the color as a CSS hsl() value, e.g. "hsl(0 100% 50%)".
func (c HSL) CSS() string {
	return fmt.Sprintf("hsl(%s %s%% %s%%)",
		formatHue(c.H, 2), formatFloat(c.S, 2), formatFloat(c.L, 2))
}

// formatHue is formatFloat for angles; a hue that rounds up to 360 prints as 0.
func formatHue(h float64, prec int) string {
	s := formatFloat(h, prec)
	if s == "360" {
		return "0"
	}
	return s
}

// formatFloat prints v with at most prec decimals and no trailing zeros.
func formatFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
