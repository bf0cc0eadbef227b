// Package eval builds the HCL evaluation context shared by the token file
// parser and the language server: the palette as cty values plus the color
// functions available inside expressions.
package eval

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Encode renders c as the string form colors take inside expressions. It is
// a valid CSS oklch() value that keeps full float precision.
func Encode(c color.OKLCH) string {
	return "oklch(" + fmtFull(c.L) + " " + fmtFull(c.C) + " " + fmtFull(c.H) + ")"
}

func fmtFull(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ResolveColor extracts a color from a cty.Value.
// If the value is a string, it is parsed as a CSS color.
// If the value is an object, its "color" key is used.
func ResolveColor(val cty.Value) (color.OKLCH, error) {
	if val.IsNull() {
		return color.OKLCH{}, fmt.Errorf("color is null")
	}
	if !val.IsKnown() {
		return color.OKLCH{}, fmt.Errorf("color is not known")
	}
	if val.Type() == cty.String {
		return color.Parse(val.AsString())
	}
	if val.Type().IsObjectType() {
		if val.Type().HasAttribute("color") {
			colorVal := val.GetAttr("color")
			if colorVal.Type() == cty.String {
				return color.Parse(colorVal.AsString())
			}
		}
		return color.OKLCH{}, fmt.Errorf("object has no 'color' attribute; reference a specific child or add a color attribute")
	}
	return color.OKLCH{}, fmt.Errorf("expected string or object with color attribute, got %s", val.Type().FriendlyName())
}

// NodeToCty converts a color.Node to a cty.Value for HCL evaluation context.
// Leaf nodes (no children) become cty.StringVal.
// Nodes with children become cty.ObjectVal, with "color" as a sibling key if the node has its own color.
func NodeToCty(node *color.Node) cty.Value {
	if node == nil {
		return cty.EmptyObjectVal
	}
	if node.Children == nil {
		if node.Color != nil {
			return cty.StringVal(Encode(*node.Color))
		}
		return cty.EmptyObjectVal
	}

	vals := make(map[string]cty.Value, len(node.Children)+1)
	if node.Color != nil {
		vals["color"] = cty.StringVal(Encode(*node.Color))
	}
	for _, k := range slices.Sorted(maps.Keys(node.Children)) {
		vals[k] = NodeToCty(node.Children[k])
	}

	return cty.ObjectVal(vals)
}

// Signature describes a function for completion and hover.
type Signature struct {
	Name   string
	Params []string
	Doc    string
}

// Label returns the call form, e.g. "mix(a, b, t)".
func (s Signature) Label() string {
	label := s.Name + "("
	for i, p := range s.Params {
		if i > 0 {
			label += ", "
		}
		label += p
	}
	return label + ")"
}

// Signatures lists the functions available in expressions, sorted by name.
var Signatures = []Signature{
	{"darken", []string{"color", "amount"}, "Lowers OKLCH lightness by amount (0 to 1)."},
	{"gamut", []string{"color"}, "Reduces chroma until the color fits in sRGB."},
	{"hsl", []string{"h", "s", "l"}, "Builds a color from HSL; s and l are percentages."},
	{"lighten", []string{"color", "amount"}, "Raises OKLCH lightness by amount (0 to 1)."},
	{"mix", []string{"a", "b", "t"}, "Interpolates from a (t=0) to b (t=1) in OKLCH."},
	{"oklch", []string{"l", "c", "h"}, "Builds a color from OKLCH lightness, chroma and hue."},
	{"rotate", []string{"color", "degrees"}, "Rotates the hue by the given degrees."},
}

// colorParam accepts either a color string or a palette group with a color.
func colorParam(name string) function.Parameter {
	return function.Parameter{Name: name, Type: cty.DynamicPseudoType}
}

func numberParam(name string) function.Parameter {
	return function.Parameter{Name: name, Type: cty.Number}
}

func num(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

// colorFunc builds a function whose leading params are colors and whose
// remaining params are numbers.
func colorFunc(desc string, colors, numbers []string, impl func(cs []color.OKLCH, ns []float64) color.OKLCH) function.Function {
	var params []function.Parameter
	for _, c := range colors {
		params = append(params, colorParam(c))
	}
	for _, n := range numbers {
		params = append(params, numberParam(n))
	}

	return function.New(&function.Spec{
		Description: desc,
		Params:      params,
		Type:        function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			cs := make([]color.OKLCH, len(colors))
			for i := range colors {
				c, err := ResolveColor(args[i])
				if err != nil {
					return cty.NilVal, function.NewArgError(i, err)
				}
				cs[i] = c
			}
			ns := make([]float64, len(numbers))
			for i := range numbers {
				ns[i] = num(args[len(colors)+i])
			}
			return cty.StringVal(Encode(impl(cs, ns))), nil
		},
	})
}

// MakeOKLCHFunc creates oklch(l, c, h).
func MakeOKLCHFunc() function.Function {
	return colorFunc("Builds a color from OKLCH lightness, chroma and hue", nil, []string{"l", "c", "h"},
		func(_ []color.OKLCH, ns []float64) color.OKLCH {
			return color.RotateHue(color.OKLCH{L: ns[0], C: ns[1]}, ns[2])
		})
}

// MakeHSLFunc creates hsl(h, s, l) with s and l in percent.
func MakeHSLFunc() function.Function {
	return colorFunc("Builds a color from HSL", nil, []string{"h", "s", "l"},
		func(_ []color.OKLCH, ns []float64) color.OKLCH {
			return color.HSLToOKLCH(color.HSL{H: ns[0], S: ns[1], L: ns[2]})
		})
}

// MakeLightenFunc creates lighten(color, amount).
// Usage: lighten("#hex", 0.1) or lighten(palette.color, 0.1)
func MakeLightenFunc() function.Function {
	return colorFunc("Raises OKLCH lightness by the given amount", []string{"color"}, []string{"amount"},
		func(cs []color.OKLCH, ns []float64) color.OKLCH {
			return color.Lighten(cs[0], ns[0])
		})
}

// MakeDarkenFunc creates darken(color, amount).
func MakeDarkenFunc() function.Function {
	return colorFunc("Lowers OKLCH lightness by the given amount", []string{"color"}, []string{"amount"},
		func(cs []color.OKLCH, ns []float64) color.OKLCH {
			return color.Darken(cs[0], ns[0])
		})
}

// MakeRotateFunc creates rotate(color, degrees).
func MakeRotateFunc() function.Function {
	return colorFunc("Rotates the hue", []string{"color"}, []string{"degrees"},
		func(cs []color.OKLCH, ns []float64) color.OKLCH {
			return color.RotateHue(cs[0], ns[0])
		})
}

// MakeMixFunc creates mix(a, b, t).
func MakeMixFunc() function.Function {
	return colorFunc("Interpolates between two colors", []string{"a", "b"}, []string{"t"},
		func(cs []color.OKLCH, ns []float64) color.OKLCH {
			return color.Mix(cs[0], cs[1], ns[0])
		})
}

// MakeGamutFunc creates gamut(color).
func MakeGamutFunc() function.Function {
	return colorFunc("Maps a color into sRGB by reducing chroma", []string{"color"}, nil,
		func(cs []color.OKLCH, _ []float64) color.OKLCH {
			return color.ToGamut(cs[0])
		})
}

// Functions returns the color functions keyed by name.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"oklch":   MakeOKLCHFunc(),
		"hsl":     MakeHSLFunc(),
		"lighten": MakeLightenFunc(),
		"darken":  MakeDarkenFunc(),
		"rotate":  MakeRotateFunc(),
		"mix":     MakeMixFunc(),
		"gamut":   MakeGamutFunc(),
	}
}

// BuildEvalContext creates an HCL evaluation context with palette variables
// and the color functions.
func BuildEvalContext(palette *color.Node) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"palette": NodeToCty(palette),
		},
		Functions: Functions(),
	}
}
