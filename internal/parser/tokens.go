package parser

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/eval"
)

// BlockTypes lists the top-level blocks a token file may contain.
var BlockTypes = map[string]bool{
	"meta":    true,
	"palette": true,
	"scale":   true,
	"tokens":  true,
}

// MaxScaleSteps caps the number of generated lightness steps per color.
const MaxScaleSteps = 100

// ParseResult holds the parsed token file.
type ParseResult struct {
	Meta    Meta
	Palette *color.Node
	Scale   *Scale
	Tokens  map[string]color.OKLCH
	// TokenOrder lists token names in source order.
	TokenOrder []string
}

// Meta holds token file metadata.
type Meta struct {
	Name        string `hcl:"name,optional"`
	Author      string `hcl:"author,optional"`
	Description string `hcl:"description,optional"`
	URL         string `hcl:"url,optional"`
}

// Scale generates lightness steps l1..lN for every palette color.
type Scale struct {
	Min   float64 `hcl:"min"`
	Max   float64 `hcl:"max"`
	Steps int     `hcl:"steps"`
}

// Validate checks that the scale describes a usable lightness range.
func (s *Scale) Validate() error {
	if s.Min < 0 || s.Min > 1 || s.Max < 0 || s.Max > 1 {
		return fmt.Errorf("scale: min and max must be within [0, 1], got %g and %g", s.Min, s.Max)
	}
	if s.Steps < 1 || s.Steps > MaxScaleSteps {
		return fmt.Errorf("scale: steps must be between 1 and %d, got %d", MaxScaleSteps, s.Steps)
	}
	return nil
}

// PaletteBlock wraps a single palette block for gohcl decoding.
type PaletteBlock struct {
	Entries hcl.Body `hcl:",remain"`
}

// RawConfig captures the blocks that need no EvalContext.
type RawConfig struct {
	Palette *PaletteBlock `hcl:"palette,block"`
	Scale   *Scale        `hcl:"scale,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

// ColorBlock wraps a block with arbitrary color attributes for gohcl decoding.
type ColorBlock struct {
	Entries hcl.Body `hcl:",remain"`
}

// ResolvedConfig decodes blocks that reference palette.
type ResolvedConfig struct {
	Meta   *Meta       `hcl:"meta,block"`
	Tokens *ColorBlock `hcl:"tokens,block"`
	Remain hcl.Body    `hcl:",remain"`
}

// Loader handles two-pass HCL decoding with palette resolution.
type Loader struct {
	body    hcl.Body
	ctx     *hcl.EvalContext
	palette *color.Node
	scale   *Scale
}

// NewLoader reads a token file and builds the evaluation context from its palette.
func NewLoader(path string) (*Loader, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	return NewLoaderFromSource(src, path)
}

// NewLoaderFromSource is NewLoader for content already in memory.
func NewLoaderFromSource(src []byte, filename string) (*Loader, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("token file body is not an hclsyntax.Body")
	}
	if err := checkTopLevel(body); err != nil {
		return nil, err
	}

	// First pass: palette and scale (no context needed)
	var raw RawConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decoding palette: %s", diags.Error())
	}

	if raw.Palette == nil {
		return nil, fmt.Errorf("no palette block found")
	}

	paletteBody, ok := raw.Palette.Entries.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("palette block is not an hclsyntax.Body")
	}

	palette := &color.Node{}
	if err := parsePaletteBody(paletteBody, palette, palette, "palette"); err != nil {
		return nil, fmt.Errorf("parsing palette: %w", err)
	}

	if raw.Scale != nil {
		if err := raw.Scale.Validate(); err != nil {
			return nil, err
		}
		color.ApplyLightnessSteps(palette, raw.Scale.Min, raw.Scale.Max, raw.Scale.Steps)
	}

	return &Loader{
		body:    file.Body,
		ctx:     eval.BuildEvalContext(palette),
		palette: palette,
		scale:   raw.Scale,
	}, nil
}

// checkTopLevel rejects top-level attributes and unknown blocks.
func checkTopLevel(body *hclsyntax.Body) error {
	for name, attr := range body.Attributes {
		return fmt.Errorf("%s: unexpected top-level attribute %q", attr.SrcRange, name)
	}
	for _, block := range body.Blocks {
		if !BlockTypes[block.Type] {
			return fmt.Errorf("%s: unknown block %q", block.DefRange(), block.Type)
		}
	}
	return nil
}

// Decode decodes a value using the palette context.
func (l *Loader) Decode(target any) error {
	if diags := gohcl.DecodeBody(l.body, l.ctx, target); diags.HasErrors() {
		return fmt.Errorf("decoding: %s", diags.Error())
	}
	return nil
}

// Palette returns the parsed palette, including generated scale steps.
func (l *Loader) Palette() *color.Node {
	return l.palette
}

// Scale returns the scale block, or nil if the file has none.
func (l *Loader) Scale() *Scale {
	return l.scale
}

// Context returns the EvalContext for manual parsing.
func (l *Loader) Context() *hcl.EvalContext {
	return l.ctx
}

// Parse parses a token file and returns a fully-resolved ParseResult.
func Parse(path string) (*ParseResult, error) {
	loader, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return loader.Result()
}

// ParseSource parses token file content already in memory.
func ParseSource(src []byte, filename string) (*ParseResult, error) {
	loader, err := NewLoaderFromSource(src, filename)
	if err != nil {
		return nil, err
	}
	return loader.Result()
}

// Result runs the second pass and assembles the ParseResult.
func (l *Loader) Result() (*ParseResult, error) {
	var resolved ResolvedConfig
	if err := l.Decode(&resolved); err != nil {
		return nil, err
	}

	tokens := make(map[string]color.OKLCH)
	var order []string
	if resolved.Tokens != nil {
		var err error
		tokens, order, err = decodeColorAttrs(resolved.Tokens.Entries, l.ctx, "tokens")
		if err != nil {
			return nil, fmt.Errorf("parsing tokens: %w", err)
		}
	}

	meta := Meta{}
	if resolved.Meta != nil {
		meta = *resolved.Meta
	}

	return &ParseResult{
		Meta:       meta,
		Palette:    l.palette,
		Scale:      l.scale,
		Tokens:     tokens,
		TokenOrder: order,
	}, nil
}

// decodeColorAttrs evaluates every attribute of body as a color. Names are
// returned in source order.
func decodeColorAttrs(body hcl.Body, ctx *hcl.EvalContext, prefix string) (map[string]color.OKLCH, []string, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("getting attributes: %s", diags.Error())
	}

	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		sorted = append(sorted, attr)
	}
	slices.SortFunc(sorted, func(a, b *hcl.Attribute) int {
		return cmp.Compare(a.Range.Start.Byte, b.Range.Start.Byte)
	})

	result := make(map[string]color.OKLCH, len(sorted))
	order := make([]string, 0, len(sorted))
	for _, attr := range sorted {
		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("evaluating %s.%s: %s", prefix, attr.Name, diags.Error())
		}
		c, err := eval.ResolveColor(val)
		if err != nil {
			return nil, nil, fmt.Errorf("%s.%s: %w", prefix, attr.Name, err)
		}
		result[attr.Name] = c
		order = append(order, attr.Name)
	}
	return result, order, nil
}

// paletteItem represents an attribute or block in source order.
type paletteItem struct {
	pos   hcl.Pos
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

// sourceOrder returns the attributes and blocks of body sorted by position.
func sourceOrder(body *hclsyntax.Body) []paletteItem {
	items := make([]paletteItem, 0, len(body.Attributes)+len(body.Blocks))
	for _, attr := range body.Attributes {
		items = append(items, paletteItem{pos: attr.SrcRange.Start, attr: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, paletteItem{pos: block.DefRange().Start, block: block})
	}
	slices.SortFunc(items, func(a, b paletteItem) int {
		return cmp.Compare(a.pos.Byte, b.pos.Byte)
	})
	return items
}

// parsePaletteBody parses a palette block body with support for:
// - Direct color attributes: key = "#hex" or key = oklch(...)
// - Nested blocks with an optional own color: key { color = ..., sub = ... }
// Entries are evaluated in source order and may reference earlier entries.
func parsePaletteBody(body *hclsyntax.Body, root, node *color.Node, prefix string) error {
	for _, item := range sourceOrder(body) {
		if item.block != nil {
			if len(item.block.Labels) > 0 {
				return fmt.Errorf("%s.%s: palette blocks take no labels", prefix, item.block.Type)
			}
			if node.Children == nil {
				node.Children = make(map[string]*color.Node)
			}
			if _, exists := node.Children[item.block.Type]; exists {
				return fmt.Errorf("%s.%s: defined more than once", prefix, item.block.Type)
			}
			child := &color.Node{}
			node.Children[item.block.Type] = child
			if err := parsePaletteBody(item.block.Body, root, child, prefix+"."+item.block.Type); err != nil {
				return err
			}
			continue
		}

		// Rebuild the context so earlier entries are visible.
		ctx := eval.BuildEvalContext(root)
		name := item.attr.Name
		val, diags := item.attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return fmt.Errorf("evaluating %s.%s: %s", prefix, name, diags.Error())
		}
		c, err := eval.ResolveColor(val)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", prefix, name, err)
		}

		if name == "color" {
			if node == root {
				return fmt.Errorf("palette.color: the palette block itself cannot have a color")
			}
			node.Color = &c
			continue
		}
		if node.Children == nil {
			node.Children = make(map[string]*color.Node)
		}
		if _, exists := node.Children[name]; exists {
			return fmt.Errorf("%s.%s: defined more than once", prefix, name)
		}
		node.Children[name] = &color.Node{Color: &c}
	}
	return nil
}
