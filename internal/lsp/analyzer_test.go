package lsp

import (
	"strings"
	"testing"

	"github.com/jsvensson/oklchstudio/internal/color"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const validTokens = `
meta {
  name   = "Test Tokens"
  author = "Test Author"
}

palette {
  base = "#191724"
  love = "#eb6f92"
  pine = oklch(0.5, 0.05, 220)
  highlight {
    color = "#524f67"
    low   = "#21202e"
  }
  rose = mix(palette.love, palette.base, 0.5)
}

scale {
  min   = 0.2
  max   = 0.8
  steps = 3
}

tokens {
  background = palette.base
  accent     = palette.highlight
  subtle     = palette.love.l1
  warning    = "hsl(40 90% 50%)"
}
`

func logDiagnostics(t *testing.T, result *AnalysisResult) {
	t.Helper()
	for _, d := range result.Diagnostics {
		t.Logf("  diagnostic: [%v] %s", *d.Severity, d.Message)
	}
}

func hasDiagnostic(result *AnalysisResult, sev protocol.DiagnosticSeverity, substr string) bool {
	for _, d := range result.Diagnostics {
		if d.Severity != nil && *d.Severity == sev && strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func TestAnalyze_ValidTokens(t *testing.T) {
	result := Analyze("test.hcl", validTokens)

	if len(result.Diagnostics) != 0 {
		logDiagnostics(t, result)
		t.Fatalf("expected 0 diagnostics, got %d", len(result.Diagnostics))
	}

	if result.Palette == nil {
		t.Fatal("expected non-nil palette")
	}

	base, err := result.Palette.Lookup([]string{"base"})
	if err != nil {
		t.Fatalf("Lookup(base) error: %v", err)
	}
	if hex := color.OKLCHToHex(base); hex != "#191724" {
		t.Errorf("palette.base = %q, want %q", hex, "#191724")
	}

	// Scale steps are generated for every color.
	if _, err := result.Palette.Lookup([]string{"love", "l3"}); err != nil {
		t.Errorf("expected generated palette.love.l3: %v", err)
	}
}

func TestAnalyze_Symbols(t *testing.T) {
	result := Analyze("test.hcl", validTokens)

	for _, name := range []string{
		"palette.base", "palette.highlight", "palette.highlight.low", "palette.rose",
		"tokens.background", "tokens.warning",
	} {
		if _, ok := result.Symbols[name]; !ok {
			t.Errorf("missing symbol %q", name)
		}
	}

	if _, ok := result.Symbols["palette.highlight.color"]; ok {
		t.Error("color attributes should not be recorded as symbols")
	}

	// palette.base is defined on line 8 (0-based 7).
	if got := result.Symbols["palette.base"].Start.Line; got != 7 {
		t.Errorf("palette.base defined on line %d, want 7", got)
	}
}

func TestAnalyze_Colors(t *testing.T) {
	result := Analyze("test.hcl", validTokens)

	var refs, literals int
	for _, cl := range result.Colors {
		if cl.IsRef {
			refs++
		} else {
			literals++
		}
	}

	// palette: base, love, pine, highlight.color, highlight.low, rose; tokens: warning
	if literals != 7 {
		t.Errorf("literal color locations = %d, want 7", literals)
	}
	// tokens: background, accent, subtle
	if refs != 3 {
		t.Errorf("reference color locations = %d, want 3", refs)
	}
}

func TestAnalyze_SyntaxError(t *testing.T) {
	content := `
palette {
  base = "#191724"
  this is not valid HCL!!!!
}
`
	result := Analyze("test.hcl", content)

	if len(result.Diagnostics) == 0 {
		t.Fatal("expected at least 1 diagnostic for syntax error")
	}

	for _, d := range result.Diagnostics {
		if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
			t.Errorf("expected error severity, got %v", d.Severity)
		}
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing palette",
			content: "tokens {\n  bg = \"#000000\"\n}\n",
			want:    "missing required palette block",
		},
		{
			name:    "undefined palette reference",
			content: "palette {\n  base = \"#191724\"\n}\ntokens {\n  background = palette.nonexistent\n}\n",
			want:    "tokens.background",
		},
		{
			name:    "invalid color",
			content: "palette {\n  base = \"not-a-color\"\n}\n",
			want:    "palette.base",
		},
		{
			name:    "unknown block",
			content: "palette {\n  base = \"#191724\"\n}\ntheme {\n  bg = palette.base\n}\n",
			want:    `unknown block "theme"`,
		},
		{
			name:    "top-level attribute",
			content: "name = \"x\"\npalette {\n  base = \"#191724\"\n}\n",
			want:    "unexpected top-level attribute",
		},
		{
			name:    "duplicate block",
			content: "palette {\n  a = \"#000000\"\n}\npalette {\n  b = \"#ffffff\"\n}\n",
			want:    "duplicate palette block",
		},
		{
			name:    "forward reference",
			content: "palette {\n  a = palette.b\n  b = \"#ffffff\"\n}\n",
			want:    "palette.a",
		},
		{
			name:    "palette color",
			content: "palette {\n  color = \"#ffffff\"\n}\n",
			want:    "palette block itself cannot have a color",
		},
		{
			name:    "name defined twice",
			content: "palette {\n  gray = \"#808080\"\n  gray {\n    light = \"#c0c0c0\"\n  }\n}\n",
			want:    "defined more than once",
		},
		{
			name:    "nested token",
			content: "palette {\n  a = \"#000000\"\n}\ntokens {\n  group {\n    bg = palette.a\n  }\n}\n",
			want:    "tokens cannot be nested",
		},
		{
			name:    "invalid scale",
			content: "palette {\n  a = \"#000000\"\n}\nscale {\n  min = 0.2\n  max = 0.8\n  steps = 0\n}\n",
			want:    "steps must be between",
		},
		{
			name:    "scale missing attribute",
			content: "palette {\n  a = \"#000000\"\n}\nscale {\n  min = 0.2\n  max = 0.8\n}\n",
			want:    "steps",
		},
		{
			name:    "unknown meta attribute",
			content: "meta {\n  appearance = \"dark\"\n}\npalette {\n  a = \"#000000\"\n}\n",
			want:    "appearance",
		},
		{
			name:    "bad function argument",
			content: "palette {\n  a = lighten(\"nope\", 0.1)\n}\n",
			want:    "palette.a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze("test.hcl", tt.content)
			if !hasDiagnostic(result, protocol.DiagnosticSeverityError, tt.want) {
				logDiagnostics(t, result)
				t.Errorf("expected error diagnostic containing %q", tt.want)
			}
		})
	}
}

func TestAnalyze_CollectsAllErrors(t *testing.T) {
	content := `
palette {
  a = "bad"
  b = "also bad"
  c = "#ffffff"
}

tokens {
  x = palette.missing
}
`
	result := Analyze("test.hcl", content)

	errors := 0
	for _, d := range result.Diagnostics {
		if *d.Severity == protocol.DiagnosticSeverityError {
			errors++
		}
	}
	if errors != 3 {
		logDiagnostics(t, result)
		t.Errorf("expected 3 errors, got %d", errors)
	}

	// Valid entries still resolve.
	if _, err := result.Palette.Lookup([]string{"c"}); err != nil {
		t.Errorf("palette.c should resolve despite sibling errors: %v", err)
	}
}

func TestAnalyze_OutOfGamutWarning(t *testing.T) {
	content := `
palette {
  vivid = oklch(0.9, 0.4, 140)
  calm  = oklch(0.5, 0.05, 140)
}

tokens {
  loud = palette.vivid
}
`
	result := Analyze("test.hcl", content)

	var warnings []protocol.Diagnostic
	for _, d := range result.Diagnostics {
		if *d.Severity == protocol.DiagnosticSeverityWarning {
			warnings = append(warnings, d)
		}
	}

	// The reference in tokens does not repeat the warning.
	if len(warnings) != 1 {
		logDiagnostics(t, result)
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0].Message, "palette.vivid is outside sRGB") {
		t.Errorf("unexpected warning: %s", warnings[0].Message)
	}
	if warnings[0].Range.Start.Line != 2 {
		t.Errorf("warning on line %d, want 2", warnings[0].Range.Start.Line)
	}
}

func TestAnalyze_DiagnosticSource(t *testing.T) {
	result := Analyze("test.hcl", "palette {\n  a = \"bad\"\n}\n")
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected a diagnostic")
	}
	if src := result.Diagnostics[0].Source; src == nil || *src != "oklch" {
		t.Errorf("diagnostic source = %v, want oklch", src)
	}
}

func TestIsReferenceExpr(t *testing.T) {
	result := Analyze("test.hcl", `
palette {
  a = "#000000"
  b = palette.a
  c = lighten(palette.a, 0.1)
}
`)
	if len(result.Colors) != 3 {
		t.Fatalf("expected 3 colors, got %d", len(result.Colors))
	}

	want := []bool{false, true, false}
	for i, cl := range result.Colors {
		if cl.IsRef != want[i] {
			t.Errorf("color %d IsRef = %v, want %v", i, cl.IsRef, want[i])
		}
	}
}
