package oklchstudio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jsvensson/oklchstudio/internal/color"
)

func TestWriteCSS(t *testing.T) {
	tf := &TokenFile{
		Palette: &color.Node{Children: map[string]*color.Node{
			"brand": {Color: ptr(color.OKLCH{L: 0.5, C: 0.1, H: 120})},
			"gray": {
				Color: ptr(color.OKLCH{L: 0.6, C: 0, H: 0}),
				Children: map[string]*color.Node{
					"light": {Color: ptr(color.OKLCH{L: 0.8, C: 0, H: 0})},
				},
			},
		}},
		Tokens: map[string]color.OKLCH{
			"surface_alt": {L: 0.8, C: 0, H: 0},
			"danger":      {L: 0.5, C: 0.1, H: 120},
		},
		TokenOrder: []string{"surface_alt", "danger"},
	}

	var buf bytes.Buffer
	if err := WriteCSS(&buf, tf, CSSOptions{}); err != nil {
		t.Fatalf("WriteCSS() error: %v", err)
	}

	want := `:root {
  --palette-brand: oklch(50% 0.1 120);
  --palette-gray: oklch(60% 0 0);
  --palette-gray-light: oklch(80% 0 0);
  --surface-alt: oklch(80% 0 0);
  --danger: oklch(50% 0.1 120);
}
`
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteCSS_Options(t *testing.T) {
	tf := &TokenFile{
		Palette: &color.Node{Children: map[string]*color.Node{
			"brand": {Color: ptr(color.OKLCH{L: 0.5, C: 0.1, H: 120})},
		}},
		Tokens: map[string]color.OKLCH{"bg": {L: 0.2, C: 0, H: 0}},
	}

	var buf bytes.Buffer
	err := WriteCSS(&buf, tf, CSSOptions{Selector: ".dark", Prefix: "ds", SkipPalette: true})
	if err != nil {
		t.Fatalf("WriteCSS() error: %v", err)
	}

	want := ".dark {\n  --ds-bg: oklch(20% 0 0);\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteCSS_OutOfGamutFallback(t *testing.T) {
	vivid := color.OKLCH{L: 0.9, C: 0.4, H: 140}
	tf := &TokenFile{
		Tokens:     map[string]color.OKLCH{"vivid": vivid},
		TokenOrder: []string{"vivid"},
	}

	var buf bytes.Buffer
	if err := WriteCSS(&buf, tf, CSSOptions{}); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	want := "/* outside sRGB, displays as " + color.OKLCHToDisplayHex(vivid) + " */"
	if !strings.Contains(got, want) {
		t.Errorf("missing fallback comment %q in:\n%s", want, got)
	}
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"", "background", "background"},
		{"", "surface_alt", "surface-alt"},
		{"ds", "bg", "ds-bg"},
		{"", "palette.gray.light", "palette-gray-light"},
	}
	for _, tt := range tests {
		if got := propertyName(tt.prefix, tt.name); got != tt.want {
			t.Errorf("propertyName(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}
