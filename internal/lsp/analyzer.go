package lsp

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/eval"
	"github.com/jsvensson/oklchstudio/internal/parser"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagSource = "oklch"

var (
	DiagError   = protocol.DiagnosticSeverityError
	DiagWarning = protocol.DiagnosticSeverityWarning
	DiagInfo    = protocol.DiagnosticSeverityInformation
)

// AnalysisResult holds all information produced by analyzing a token file.
type AnalysisResult struct {
	Diagnostics []protocol.Diagnostic
	Palette     *color.Node
	Symbols     map[string]protocol.Range // "palette.base", "tokens.background" -> definition range
	Colors      []ColorLocation
}

// ColorLocation records a resolved color at a specific source position.
type ColorLocation struct {
	Range protocol.Range
	Color color.OKLCH
	IsRef bool // true if this is a reference (not a literal or function call)
}

// hclPosToLSP converts an HCL position to an LSP position.
// HCL positions are 1-based; LSP positions are 0-based.
func hclPosToLSP(pos hcl.Pos) protocol.Position {
	return protocol.Position{
		Line:      uint32(pos.Line - 1),
		Character: uint32(pos.Column - 1),
	}
}

// hclRangeToLSP converts an HCL range to an LSP range.
func hclRangeToLSP(r hcl.Range) protocol.Range {
	return protocol.Range{
		Start: hclPosToLSP(r.Start),
		End:   hclPosToLSP(r.End),
	}
}

// Analyze parses HCL content from memory and produces diagnostics, a symbol table,
// and color locations. It collects ALL errors rather than short-circuiting on the first.
func Analyze(filename, content string) *AnalysisResult {
	result := &AnalysisResult{
		Symbols: make(map[string]protocol.Range),
	}

	file, diags := hclsyntax.ParseConfig([]byte(content), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		for _, d := range diags {
			result.Diagnostics = append(result.Diagnostics, hclDiagToLSP(d))
		}
		// Cannot proceed with semantic analysis if syntax is broken
		return result
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		result.addError(hcl.Range{}, "internal error: parsed body is not *hclsyntax.Body")
		return result
	}

	for _, attr := range body.Attributes {
		result.addError(attr.NameRange, fmt.Sprintf("unexpected top-level attribute %q; expected one of the blocks meta, palette, scale, tokens", attr.Name))
	}

	var paletteBlock, scaleBlock, tokensBlock, metaBlock *hclsyntax.Block
	seen := make(map[string]bool)
	for _, block := range body.Blocks {
		if !parser.BlockTypes[block.Type] {
			result.addError(block.DefRange(), fmt.Sprintf("unknown block %q", block.Type))
			continue
		}
		if seen[block.Type] {
			result.addError(block.DefRange(), fmt.Sprintf("duplicate %s block", block.Type))
			continue
		}
		seen[block.Type] = true

		switch block.Type {
		case "meta":
			metaBlock = block
		case "palette":
			paletteBlock = block
		case "scale":
			scaleBlock = block
		case "tokens":
			tokensBlock = block
		}
	}

	if metaBlock != nil {
		result.analyzeMeta(metaBlock)
	}

	if paletteBlock == nil {
		result.addError(hcl.Range{
			Filename: filename,
			Start:    hcl.Pos{Line: 1, Column: 1},
			End:      hcl.Pos{Line: 1, Column: 1},
		}, "missing required palette block")
		return result
	}

	// Parse palette with incremental evaluation (source-ordered, self-referencing)
	palette := &color.Node{}
	result.analyzePaletteBody(paletteBlock.Body, palette, palette, "palette")
	result.Palette = palette

	if scaleBlock != nil {
		if scale := result.analyzeScale(scaleBlock); scale != nil {
			color.ApplyLightnessSteps(palette, scale.Min, scale.Max, scale.Steps)
		}
	}

	if tokensBlock != nil {
		result.analyzeTokens(tokensBlock.Body, eval.BuildEvalContext(palette))
	}

	return result
}

// hclDiagToLSP converts an HCL diagnostic to an LSP diagnostic.
func hclDiagToLSP(d *hcl.Diagnostic) protocol.Diagnostic {
	sev := DiagError
	if d.Severity == hcl.DiagWarning {
		sev = DiagWarning
	}

	diag := protocol.Diagnostic{
		Severity: &sev,
		Message:  d.Summary,
		Source:   strPtr(diagSource),
	}

	if d.Detail != "" {
		diag.Message = d.Summary + ": " + d.Detail
	}

	if d.Subject != nil {
		diag.Range = hclRangeToLSP(*d.Subject)
	}

	return diag
}

// addError adds an error-level diagnostic at the given range.
func (r *AnalysisResult) addError(rng hcl.Range, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    hclRangeToLSP(rng),
		Severity: &DiagError,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

// addWarning adds a warning-level diagnostic at the given range.
func (r *AnalysisResult) addWarning(rng hcl.Range, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    hclRangeToLSP(rng),
		Severity: &DiagWarning,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

func strPtr(s string) *string {
	return &s
}

// analyzeMeta decodes the meta block so unknown attributes are reported.
func (r *AnalysisResult) analyzeMeta(block *hclsyntax.Block) {
	var meta parser.Meta
	for _, d := range gohcl.DecodeBody(block.Body, nil, &meta) {
		r.Diagnostics = append(r.Diagnostics, hclDiagToLSP(d))
	}
}

// analyzeScale decodes and validates the scale block. It returns nil when
// the block is unusable.
func (r *AnalysisResult) analyzeScale(block *hclsyntax.Block) *parser.Scale {
	var scale parser.Scale
	diags := gohcl.DecodeBody(block.Body, nil, &scale)
	for _, d := range diags {
		r.Diagnostics = append(r.Diagnostics, hclDiagToLSP(d))
	}
	if diags.HasErrors() {
		return nil
	}
	if err := scale.Validate(); err != nil {
		r.addError(block.DefRange(), err.Error())
		return nil
	}
	return &scale
}

// paletteItem represents an attribute or block in source order.
type paletteItem struct {
	pos   hcl.Pos
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

// analyzePaletteBody parses a palette block body, collecting diagnostics and building
// the symbol table and color locations. Items are processed in source order so later
// entries can reference earlier ones.
func (r *AnalysisResult) analyzePaletteBody(body *hclsyntax.Body, paletteRoot *color.Node, node *color.Node, prefix string) {
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

	for _, item := range items {
		if item.block != nil {
			name := item.block.Type
			if node.Children == nil {
				node.Children = make(map[string]*color.Node)
			}
			if _, exists := node.Children[name]; exists {
				r.addError(item.block.DefRange(), fmt.Sprintf("%s.%s is defined more than once", prefix, name))
				continue
			}
			r.Symbols[prefix+"."+name] = hclRangeToLSP(item.block.DefRange())
			child := &color.Node{}
			node.Children[name] = child
			r.analyzePaletteBody(item.block.Body, paletteRoot, child, prefix+"."+name)
			continue
		}

		attrName := item.attr.Name
		symbolName := prefix + "." + attrName

		if attrName == "color" && node == paletteRoot {
			r.addError(item.attr.NameRange, "the palette block itself cannot have a color")
			continue
		}
		if attrName != "color" {
			if _, exists := node.Children[attrName]; exists {
				r.addError(item.attr.NameRange, fmt.Sprintf("%s is defined more than once", symbolName))
				continue
			}
			r.Symbols[symbolName] = hclRangeToLSP(item.attr.SrcRange)
		}

		// Rebuild eval context with current state of palette root
		c, ok := r.evalColor(item.attr, eval.BuildEvalContext(paletteRoot), symbolName)
		if !ok {
			continue
		}

		if attrName == "color" {
			node.Color = &c
			continue
		}
		if node.Children == nil {
			node.Children = make(map[string]*color.Node)
		}
		node.Children[attrName] = &color.Node{Color: &c}
	}
}

// analyzeTokens walks the tokens block, collecting diagnostics, symbols and
// color locations.
func (r *AnalysisResult) analyzeTokens(body *hclsyntax.Body, ctx *hcl.EvalContext) {
	for _, block := range body.Blocks {
		r.addError(block.DefRange(), fmt.Sprintf("tokens.%s: tokens cannot be nested", block.Type))
	}
	for _, attr := range body.Attributes {
		symbolName := "tokens." + attr.Name
		r.Symbols[symbolName] = hclRangeToLSP(attr.SrcRange)
		r.evalColor(attr, ctx, symbolName)
	}
}

// evalColor evaluates attr as a color and records its location. Literal
// colors outside sRGB get a warning.
func (r *AnalysisResult) evalColor(attr *hclsyntax.Attribute, ctx *hcl.EvalContext, symbolName string) (color.OKLCH, bool) {
	val, diags := attr.Expr.Value(ctx)
	if diags.HasErrors() {
		r.addError(attr.SrcRange, fmt.Sprintf("evaluating %s: %s", symbolName, diags.Error()))
		return color.OKLCH{}, false
	}

	c, err := eval.ResolveColor(val)
	if err != nil {
		r.addError(attr.SrcRange, fmt.Sprintf("%s: %s", symbolName, err.Error()))
		return color.OKLCH{}, false
	}

	isRef := isReferenceExpr(attr.Expr)
	r.Colors = append(r.Colors, ColorLocation{
		Range: hclRangeToLSP(attr.Expr.Range()),
		Color: c,
		IsRef: isRef,
	})

	if !isRef && !color.IsInGamut(c) {
		r.addWarning(attr.Expr.Range(), fmt.Sprintf("%s is outside sRGB and displays as %s", symbolName, color.OKLCHToDisplayHex(c)))
	}
	return c, true
}

// isReferenceExpr returns true if the expression is a scope traversal
// (e.g. palette.base) rather than a literal value.
func isReferenceExpr(expr hclsyntax.Expression) bool {
	switch expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		return true
	case *hclsyntax.RelativeTraversalExpr:
		return true
	default:
		return false
	}
}
