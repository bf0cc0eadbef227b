package color

import (
	"math"
	"testing"
)

func TestLightenDarken(t *testing.T) {
	c := OKLCH{L: 0.5, C: 0.1, H: 200}

	if got := Lighten(c, 0.2); math.Abs(got.L-0.7) > 1e-12 || got.C != c.C || got.H != c.H {
		t.Errorf("Lighten = %+v", got)
	}
	if got := Darken(c, 0.2); math.Abs(got.L-0.3) > 1e-12 {
		t.Errorf("Darken = %+v", got)
	}
	if got := Lighten(c, 2); got.L != 1 {
		t.Errorf("Lighten past white = %+v, want L=1", got)
	}
	if got := Darken(c, 2); got.L != 0 {
		t.Errorf("Darken past black = %+v, want L=0", got)
	}
}

func TestRotateHue(t *testing.T) {
	tests := []struct {
		h, deg, want float64
	}{
		{10, 20, 30},
		{350, 20, 10},
		{10, -20, 350},
		{0, 360, 0},
		{120, 720, 120},
	}
	for _, tt := range tests {
		got := RotateHue(OKLCH{L: 0.5, C: 0.1, H: tt.h}, tt.deg)
		if math.Abs(got.H-tt.want) > 1e-9 {
			t.Errorf("RotateHue(%v, %v) = %v, want %v", tt.h, tt.deg, got.H, tt.want)
		}
	}
}

func TestMix(t *testing.T) {
	a := OKLCH{L: 0.2, C: 0.1, H: 350}
	b := OKLCH{L: 0.8, C: 0.2, H: 10}

	if got := Mix(a, b, 0); got != a {
		t.Errorf("Mix(t=0) = %+v, want %+v", got, a)
	}
	if got := Mix(a, b, 1); math.Abs(got.L-b.L) > 1e-12 || math.Abs(got.C-b.C) > 1e-12 || hueDiff(got.H, b.H) > 1e-9 {
		t.Errorf("Mix(t=1) = %+v, want %+v", got, b)
	}

	mid := Mix(a, b, 0.5)
	if math.Abs(mid.L-0.5) > 1e-12 || math.Abs(mid.C-0.15) > 1e-12 {
		t.Errorf("Mix(t=0.5) = %+v", mid)
	}
	if hueDiff(mid.H, 0) > 1e-9 {
		t.Errorf("Mix(t=0.5) hue = %v, want shortest arc through 0", mid.H)
	}
}

func TestMix_AchromaticBorrowsHue(t *testing.T) {
	gray := OKLCH{L: 0.5, C: 0, H: 0}
	blue := OKLCH{L: 0.5, C: 0.2, H: 260}

	got := Mix(gray, blue, 0.5)
	if math.Abs(got.H-260) > 1e-9 {
		t.Errorf("Mix(gray, blue) hue = %v, want 260", got.H)
	}
}

func TestStepLightness(t *testing.T) {
	c := OKLCH{L: 0.5, C: 0.25, H: 140}
	got := StepLightness(c, 0.95)
	if got.L != 0.95 || got.H != 140 {
		t.Errorf("StepLightness = %+v", got)
	}
	if !IsInGamut(got) {
		t.Errorf("StepLightness result out of gamut: %+v", got)
	}
}

func TestApplyLightnessSteps_FlatLeaf(t *testing.T) {
	base, _ := HexToOKLCH("#eb6f92")
	root := &Node{Children: map[string]*Node{
		"love": {Color: &base},
	}}

	ApplyLightnessSteps(root, 0.2, 0.8, 4)

	love := root.Children["love"]
	if love.Color == nil || OKLCHToHex(*love.Color) != "#eb6f92" {
		t.Fatalf("base color changed: %+v", love.Color)
	}
	if len(love.Children) != 4 {
		t.Fatalf("got %d children, want 4", len(love.Children))
	}

	wantL := []float64{0.2, 0.4, 0.6, 0.8}
	for i, l := range wantL {
		name := []string{"l1", "l2", "l3", "l4"}[i]
		child, ok := love.Children[name]
		if !ok || child.Color == nil {
			t.Fatalf("missing %s", name)
		}
		if math.Abs(child.Color.L-l) > 1e-9 {
			t.Errorf("%s.L = %v, want %v", name, child.Color.L, l)
		}
		if !IsInGamut(*child.Color) {
			t.Errorf("%s out of gamut: %+v", name, *child.Color)
		}
	}
}

func TestApplyLightnessSteps_Nested(t *testing.T) {
	gray, _ := HexToOKLCH("#c0c0c0")
	low, _ := HexToOKLCH("#21202e")
	root := &Node{Children: map[string]*Node{
		"highlight": {
			Color: &gray,
			Children: map[string]*Node{
				"low": {Color: &low},
			},
		},
	}}

	ApplyLightnessSteps(root, 0.1, 0.9, 3)

	hl := root.Children["highlight"]
	for _, name := range []string{"low", "l1", "l2", "l3"} {
		if _, ok := hl.Children[name]; !ok {
			t.Errorf("highlight missing %s", name)
		}
	}
	if got := len(hl.Children["low"].Children); got != 3 {
		t.Errorf("highlight.low has %d children, want 3", got)
	}
	// Generated children are not stepped again.
	if got := len(hl.Children["l1"].Children); got != 0 {
		t.Errorf("highlight.l1 has %d children, want 0", got)
	}
	if _, err := root.Lookup([]string{"highlight", "low", "l2"}); err != nil {
		t.Errorf("Lookup(highlight.low.l2): %v", err)
	}
}

func TestApplyLightnessSteps_PreservesExisting(t *testing.T) {
	base, _ := HexToOKLCH("#31748f")
	custom, _ := HexToOKLCH("#ff0000")
	root := &Node{Children: map[string]*Node{
		"pine": {
			Color:    &base,
			Children: map[string]*Node{"l1": {Color: &custom}},
		},
	}}

	ApplyLightnessSteps(root, 0.2, 0.8, 2)

	if got := OKLCHToHex(*root.Children["pine"].Children["l1"].Color); got != "#ff0000" {
		t.Errorf("existing l1 overwritten: %s", got)
	}
	if _, ok := root.Children["pine"].Children["l2"]; !ok {
		t.Error("l2 not generated")
	}
}

func TestApplyLightnessSteps_SkipsNamespaceOnly(t *testing.T) {
	leaf, _ := HexToOKLCH("#9ccfd8")
	root := &Node{Children: map[string]*Node{
		"group": {Children: map[string]*Node{
			"foam": {Color: &leaf},
		}},
	}}

	ApplyLightnessSteps(root, 0.3, 0.7, 2)

	group := root.Children["group"]
	if len(group.Children) != 1 {
		t.Errorf("namespace got generated children: %v", len(group.Children))
	}
	if len(group.Children["foam"].Children) != 2 {
		t.Errorf("foam got %d children, want 2", len(group.Children["foam"].Children))
	}
}

func TestApplyLightnessSteps_SingleStep(t *testing.T) {
	base, _ := HexToOKLCH("#f6c177")
	root := &Node{Children: map[string]*Node{"gold": {Color: &base}}}

	ApplyLightnessSteps(root, 0.4, 0.9, 1)

	l1 := root.Children["gold"].Children["l1"]
	if l1 == nil || math.Abs(l1.Color.L-0.4) > 1e-9 {
		t.Errorf("single step = %+v, want L=0.4", l1)
	}
}
