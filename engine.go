package oklchstudio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/jsvensson/oklchstudio/internal/color"
)

// Engine loads and executes Go templates against a resolved TokenFile.
type Engine struct {
	TemplatesDir string
	OutputDir    string
	Apps         []string // if non-empty, only render these template basenames
}

// Run loads all .tmpl files from the templates directory, executes them
// with the given token data, and writes output files.
func (e *Engine) Run(tf *TokenFile) error {
	pattern := filepath.Join(e.TemplatesDir, "*.tmpl")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("globbing templates: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no .tmpl files found in %s", e.TemplatesDir)
	}

	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data := buildTemplateData(tf)

	for _, tmplPath := range matches {
		baseName := strings.TrimSuffix(filepath.Base(tmplPath), ".tmpl")

		if !e.shouldRender(baseName) {
			continue
		}

		if err := e.renderTemplate(tmplPath, baseName, data); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) shouldRender(name string) bool {
	// If no apps are specified, render all.
	if len(e.Apps) == 0 {
		return true
	}

	return slices.Contains(e.Apps, name)
}

func (e *Engine) renderTemplate(tmplPath, outputName string, data templateData) error {
	tmpl, err := template.New(filepath.Base(tmplPath)).Funcs(data.FuncMap).ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("parsing template %s: %w", tmplPath, err)
	}

	// Render to memory first so a failing template leaves no partial file.
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing template %s: %w", tmplPath, err)
	}

	outPath := filepath.Join(e.OutputDir, outputName)
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing output file %s: %w", outPath, err)
	}

	return nil
}

// templateData is the data passed to templates.
type templateData struct {
	Meta    Meta
	Palette *color.Node
	Tokens  map[string]color.OKLCH
	FuncMap template.FuncMap
}

// resolveColorPath resolves a dot-notation path to a color.
// Supports "palette.base", "palette.highlight.low" and "tokens.background".
// A path without a block prefix is looked up in the palette.
func resolveColorPath(path string, data templateData) (color.OKLCH, error) {
	parts := strings.Split(path, ".")
	if path == "" || slices.Contains(parts, "") {
		return color.OKLCH{}, fmt.Errorf("invalid path %q", path)
	}

	switch parts[0] {
	case "tokens":
		if len(parts) != 2 {
			return color.OKLCH{}, fmt.Errorf("token paths must be single-level: %s", path)
		}
		c, ok := data.Tokens[parts[1]]
		if !ok {
			return color.OKLCH{}, fmt.Errorf("token not found: %s", parts[1])
		}
		return c, nil

	case "palette":
		parts = parts[1:]
		if len(parts) == 0 {
			return color.OKLCH{}, fmt.Errorf("invalid path %q: must be palette.name format", path)
		}
	}

	if data.Palette == nil {
		return color.OKLCH{}, fmt.Errorf("palette path not found: %s", path)
	}
	c, err := data.Palette.Lookup(parts)
	if err != nil {
		return color.OKLCH{}, fmt.Errorf("palette path %s: %w", path, err)
	}
	return c, nil
}

// toColor accepts a color value, a CSS color string or a path string.
func toColor(v any, data templateData) (color.OKLCH, error) {
	switch c := v.(type) {
	case color.OKLCH:
		return c, nil
	case *color.OKLCH:
		if c == nil {
			return color.OKLCH{}, fmt.Errorf("nil color")
		}
		return *c, nil
	case color.Color:
		return c.OKLCH(), nil
	case string:
		if strings.HasPrefix(c, "#") || strings.Contains(c, "(") {
			return color.Parse(c)
		}
		return resolveColorPath(c, data)
	default:
		return color.OKLCH{}, fmt.Errorf("expected color or path string, got %T", v)
	}
}

// display converts to the 8-bit color shown on screen (clamped to sRGB).
func display(v any, data templateData) (color.Color, error) {
	c, err := toColor(v, data)
	if err != nil {
		return color.Color{}, err
	}
	return color.FromSRGB(color.OKLCHToSRGB(c)), nil
}

func buildTemplateData(tf *TokenFile) templateData {
	data := templateData{
		Meta:    tf.Meta,
		Palette: tf.Palette,
		Tokens:  tf.Tokens,
	}

	data.FuncMap = template.FuncMap{
		"hex": func(v any) (string, error) {
			c, err := display(v, data)
			return c.Hex(), err
		},
		"bhex": func(v any) (string, error) {
			c, err := display(v, data)
			return c.HexBare(), err
		},
		"hexa": func(v any) (string, error) {
			c, err := display(v, data)
			return c.HexAlpha(), err
		},
		"bhexa": func(v any) (string, error) {
			c, err := display(v, data)
			return c.HexBare() + "ff", err
		},
		"rgb": func(v any) (string, error) {
			c, err := display(v, data)
			return c.RGB(), err
		},
		"rgba": func(v any) (string, error) {
			c, err := display(v, data)
			return c.RGBA(), err
		},
		"oklch": func(v any) (string, error) {
			c, err := toColor(v, data)
			return c.CSS(), err
		},
		"hsl": func(v any) (string, error) {
			c, err := toColor(v, data)
			return color.OKLCHToHSL(c).CSS(), err
		},
		"color": func(v any) (color.OKLCH, error) {
			return toColor(v, data)
		},
		"inGamut": func(v any) (bool, error) {
			c, err := toColor(v, data)
			return color.IsInGamut(c), err
		},
		"gamut": func(v any) (color.OKLCH, error) {
			c, err := toColor(v, data)
			return color.ToGamut(c), err
		},
		"lighten": func(v any, amount float64) (color.OKLCH, error) {
			c, err := toColor(v, data)
			return color.Lighten(c, amount), err
		},
		"darken": func(v any, amount float64) (color.OKLCH, error) {
			c, err := toColor(v, data)
			return color.Darken(c, amount), err
		},
		"cssvars": func(prefix string) (string, error) {
			var buf bytes.Buffer
			err := WriteCSS(&buf, tf, CSSOptions{Prefix: prefix})
			return buf.String(), err
		},
	}
	return data
}
