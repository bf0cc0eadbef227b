package lsp

import (
	"math"
	"testing"

	"github.com/jsvensson/oklchstudio/internal/color"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func mustParse(t *testing.T, s string) color.OKLCH {
	t.Helper()
	c, err := color.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return c
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestColorToLSP(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  protocol.Color
	}{
		{"pure red", "#ff0000", protocol.Color{Red: 1, Green: 0, Blue: 0, Alpha: 1}},
		{"pure green", "#00ff00", protocol.Color{Red: 0, Green: 1, Blue: 0, Alpha: 1}},
		{"pure blue", "#0000ff", protocol.Color{Red: 0, Green: 0, Blue: 1, Alpha: 1}},
		{"black", "#000000", protocol.Color{Red: 0, Green: 0, Blue: 0, Alpha: 1}},
		{"white", "#ffffff", protocol.Color{Red: 1, Green: 1, Blue: 1, Alpha: 1}},
		{"mid gray", "#808080", protocol.Color{Red: 128.0 / 255, Green: 128.0 / 255, Blue: 128.0 / 255, Alpha: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := colorToLSP(mustParse(t, tt.input))
			if !near(got.Red, tt.want.Red) || !near(got.Green, tt.want.Green) || !near(got.Blue, tt.want.Blue) {
				t.Errorf("got R=%f G=%f B=%f, want R=%f G=%f B=%f",
					got.Red, got.Green, got.Blue, tt.want.Red, tt.want.Green, tt.want.Blue)
			}
			if got.Alpha != 1 {
				t.Errorf("Alpha: got %f, want 1", got.Alpha)
			}
		})
	}
}

func TestColorToLSP_ClampsOutOfGamut(t *testing.T) {
	got := colorToLSP(color.OKLCH{L: 0.9, C: 0.4, H: 140})
	for _, ch := range []float32{got.Red, got.Green, got.Blue} {
		if ch < 0 || ch > 1 {
			t.Errorf("channel %f outside [0, 1]", ch)
		}
	}
}

func TestDocumentColors(t *testing.T) {
	result := &AnalysisResult{
		Colors: []ColorLocation{
			{
				Range: protocol.Range{
					Start: protocol.Position{Line: 1, Character: 10},
					End:   protocol.Position{Line: 1, Character: 20},
				},
				Color: mustParse(t, "#ff0000"),
			},
			{
				Range: protocol.Range{
					Start: protocol.Position{Line: 2, Character: 10},
					End:   protocol.Position{Line: 2, Character: 22},
				},
				Color: mustParse(t, "#00ff00"),
				IsRef: true,
			},
		},
	}

	infos := documentColors(result)

	if len(infos) != 2 {
		t.Fatalf("expected 2 ColorInformation items, got %d", len(infos))
	}
	if !near(infos[0].Color.Red, 1) || !near(infos[0].Color.Green, 0) {
		t.Errorf("item 0: expected red, got %+v", infos[0].Color)
	}
	if infos[0].Range.Start.Line != 1 || infos[0].Range.Start.Character != 10 {
		t.Errorf("item 0: unexpected range start %+v", infos[0].Range.Start)
	}
	if !near(infos[1].Color.Green, 1) || !near(infos[1].Color.Red, 0) {
		t.Errorf("item 1: expected green, got %+v", infos[1].Color)
	}
}

func TestDocumentColors_NilResult(t *testing.T) {
	infos := documentColors(nil)
	if infos == nil || len(infos) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", infos)
	}
}

func TestColorPresentation_Literal(t *testing.T) {
	content := "palette {\n  base = \"#191724\"\n}"
	params := &protocol.ColorPresentationParams{
		Color: protocol.Color{Red: 1, Green: 0, Blue: 0, Alpha: 1},
		Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 9},
			End:   protocol.Position{Line: 1, Character: 18},
		},
	}

	got := colorPresentation(content, params)
	if len(got) != 3 {
		t.Fatalf("expected 3 presentations, got %d", len(got))
	}

	if got[0].Label != "#ff0000" {
		t.Errorf("hex label = %q, want #ff0000", got[0].Label)
	}
	if got[0].TextEdit == nil || got[0].TextEdit.NewText != `"#ff0000"` {
		t.Errorf("hex edit = %+v, want quoted #ff0000", got[0].TextEdit)
	}
	if got[1].Label[:6] != "oklch(" {
		t.Errorf("second presentation = %q, want oklch()", got[1].Label)
	}
	if got[2].Label != "hsl(0 100% 50%)" {
		t.Errorf("hsl label = %q, want hsl(0 100%% 50%%)", got[2].Label)
	}

	// Every presentation parses back to the picked color.
	for _, p := range got {
		c, err := color.Parse(p.Label)
		if err != nil {
			t.Errorf("presentation %q does not parse: %v", p.Label, err)
			continue
		}
		if hex := color.OKLCHToHex(c); hex != "#ff0000" {
			t.Errorf("presentation %q = %s, want #ff0000", p.Label, hex)
		}
	}
}

func TestColorPresentation_NotLiteral(t *testing.T) {
	tests := []struct {
		name    string
		content string
		rng     protocol.Range
	}{
		{
			name:    "palette reference",
			content: "tokens {\n  bg = palette.base\n}",
			rng: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 7},
				End:   protocol.Position{Line: 1, Character: 19},
			},
		},
		{
			name:    "function call",
			content: "palette {\n  a = lighten(palette.b, 0.1)\n}",
			rng: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 6},
				End:   protocol.Position{Line: 1, Character: 29},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := colorPresentation(tt.content, &protocol.ColorPresentationParams{
				Color: protocol.Color{Red: 1, Alpha: 1},
				Range: tt.rng,
			})
			if len(got) != 0 {
				t.Errorf("expected no presentations, got %v", got)
			}
		})
	}
}
