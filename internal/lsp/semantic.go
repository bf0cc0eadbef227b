package lsp

import (
	"cmp"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/eval"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/zclconf/go-cty/cty"
)

var semanticTokenTypes = []string{
	"keyword",   // block names
	"property",  // attribute names and reference segments
	"variable",  // unused, kept so indices stay stable for clients
	"namespace", // palette and tokens roots
	"string",    // color literals
	"function",  // expression functions
	"number",    // numeric literals
	"comment",
}

var semanticTokenModifiers = []string{
	"declaration",    // attribute definitions
	"defaultLibrary", // built-in color functions
}

const (
	modDeclaration uint32 = 1 << iota
	modDefaultLibrary
)

var tokenTypeIndices map[string]uint32

func init() {
	tokenTypeIndices = make(map[string]uint32, len(semanticTokenTypes))
	for i, t := range semanticTokenTypes {
		tokenTypeIndices[t] = uint32(i)
	}
}

// SemanticToken is one highlighted span. Line and StartChar are 0-based.
type SemanticToken struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	Type      uint32 // index into semanticTokenTypes
	Modifiers uint32 // bit set over semanticTokenModifiers
}

// encodeTokens sorts tokens and packs them as LSP delta-encoded quintuples.
func encodeTokens(tokens []SemanticToken) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	slices.SortFunc(tokens, func(a, b SemanticToken) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.StartChar, b.StartChar)
	})

	data := make([]uint32, 0, len(tokens)*5)

	var prev SemanticToken
	for _, tok := range tokens {
		start := tok.StartChar
		if tok.Line == prev.Line {
			start -= prev.StartChar
		}
		data = append(data, tok.Line-prev.Line, start, tok.Length, tok.Type, tok.Modifiers)
		prev = tok
	}

	return data
}

// semanticTokensFull highlights a whole document. Unparseable content yields
// no tokens.
func semanticTokensFull(content string) []uint32 {
	file, diags := hclsyntax.ParseConfig([]byte(content), "", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return []uint32{}
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return []uint32{}
	}

	var tokens []SemanticToken
	tokens = extractTokensFromBody(body, tokens)

	return encodeTokens(tokens)
}

func extractTokensFromBody(body *hclsyntax.Body, tokens []SemanticToken) []SemanticToken {
	for _, block := range body.Blocks {
		tokens = append(tokens, tokenAt(block.TypeRange, len(block.Type), "keyword", 0))
		tokens = extractTokensFromBody(block.Body, tokens)
	}

	for name, attr := range body.Attributes {
		tokens = append(tokens, tokenAt(attr.NameRange, len(name), "property", modDeclaration))
		tokens = extractTokensFromExpr(attr.Expr, tokens)
	}

	return tokens
}

func tokenAt(r hcl.Range, length int, typ string, mods uint32) SemanticToken {
	return SemanticToken{
		Line:      uint32(r.Start.Line - 1),
		StartChar: uint32(r.Start.Column - 1),
		Length:    uint32(length),
		Type:      tokenTypeIndices[typ],
		Modifiers: mods,
	}
}

func extractTokensFromExpr(expr hclsyntax.Expression, tokens []SemanticToken) []SemanticToken {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		tokens = extractTokensFromLiteral(e, tokens)
	case *hclsyntax.TemplateExpr:
		tokens = extractTokensFromTemplate(e, tokens)
	case *hclsyntax.ScopeTraversalExpr:
		tokens = extractTokensFromTraversal(e, tokens)
	case *hclsyntax.FunctionCallExpr:
		tokens = extractTokensFromFunctionCall(e, tokens)
	case *hclsyntax.RelativeTraversalExpr:
		tokens = extractTokensFromRelativeTraversal(e, tokens)
	}
	return tokens
}

// extractTokensFromLiteral handles string and number literals
func extractTokensFromLiteral(expr *hclsyntax.LiteralValueExpr, tokens []SemanticToken) []SemanticToken {
	val := expr.Val
	if !val.IsKnown() || val.IsNull() {
		return tokens
	}
	switch val.Type() {
	case cty.String:
		if _, err := color.Parse(val.AsString()); err == nil {
			tokens = append(tokens, tokenAt(expr.SrcRange, len(val.AsString()), "string", 0))
		}
	case cty.Number:
		tokens = append(tokens, tokenAt(expr.SrcRange, spanLen(expr.SrcRange), "number", 0))
	}
	return tokens
}

// extractTokensFromTemplate marks quoted strings holding a color, quotes included.
func extractTokensFromTemplate(expr *hclsyntax.TemplateExpr, tokens []SemanticToken) []SemanticToken {
	if !expr.IsStringLiteral() {
		return tokens
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.Type() != cty.String {
		return tokens
	}
	if _, err := color.Parse(val.AsString()); err != nil {
		return tokens
	}
	return append(tokens, tokenAt(expr.SrcRange, spanLen(expr.SrcRange), "string", 0))
}

// spanLen is the column width of a single-line range.
func spanLen(r hcl.Range) int {
	return r.End.Column - r.Start.Column
}

// extractTokensFromTraversal handles references like palette.base or palette.gray.l2
func extractTokensFromTraversal(expr *hclsyntax.ScopeTraversalExpr, tokens []SemanticToken) []SemanticToken {
	if len(expr.Traversal) == 0 {
		return tokens
	}
	first, ok := expr.Traversal[0].(hcl.TraverseRoot)
	if !ok || !referenceRoots[first.Name] {
		return tokens
	}

	tokens = append(tokens, tokenAt(first.SrcRange, len(first.Name), "namespace", 0))
	for _, step := range expr.Traversal[1:] {
		if seg, ok := step.(hcl.TraverseAttr); ok {
			// SrcRange of an attribute step includes the leading dot.
			r := seg.SrcRange
			r.Start.Column = r.End.Column - len(seg.Name)
			tokens = append(tokens, tokenAt(r, len(seg.Name), "property", 0))
		}
	}
	return tokens
}

// extractTokensFromFunctionCall handles calls like mix(). Built-in color
// functions carry the defaultLibrary modifier.
func extractTokensFromFunctionCall(expr *hclsyntax.FunctionCallExpr, tokens []SemanticToken) []SemanticToken {
	var mods uint32
	if slices.ContainsFunc(eval.Signatures, func(sig eval.Signature) bool { return sig.Name == expr.Name }) {
		mods = modDefaultLibrary
	}
	tokens = append(tokens, tokenAt(expr.NameRange, len(expr.Name), "function", mods))

	for _, arg := range expr.Args {
		tokens = extractTokensFromExpr(arg, tokens)
	}

	return tokens
}

func extractTokensFromRelativeTraversal(expr *hclsyntax.RelativeTraversalExpr, tokens []SemanticToken) []SemanticToken {
	return extractTokensFromExpr(expr.Source, tokens)
}

// semanticTokensLegend describes the token encoding to the client.
func semanticTokensLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     semanticTokenTypes,
		TokenModifiers: semanticTokenModifiers,
	}
}

// textDocumentSemanticTokensFull handles textDocument/semanticTokens/full requests.
func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return &protocol.SemanticTokens{Data: semanticTokensFull(content)}, nil
}
