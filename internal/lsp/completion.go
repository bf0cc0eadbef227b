package lsp

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/eval"
	"github.com/jsvensson/oklchstudio/internal/parser"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// splitLines splits content into lines, preserving empty trailing lines.
func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// blockContext represents the kind of block the cursor is in.
type blockContext int

const (
	contextRoot    blockContext = iota
	contextMeta                 // inside meta {}
	contextPalette              // inside palette {} or one of its groups
	contextScale                // inside scale {}
	contextTokens               // inside tokens {}
)

var metaAttributes = []string{"name", "author", "description", "url"}

var scaleAttributes = []string{"min", "max", "steps"}

// complete produces completion items given an analysis result, document content,
// and cursor position. This is the core logic, decoupled from the LSP protocol
// handler for testability.
func complete(result *AnalysisResult, content string, pos protocol.Position) []protocol.CompletionItem {
	lines := splitLines(content)
	if int(pos.Line) >= len(lines) {
		return nil
	}

	line := lines[pos.Line]
	charPos := min(int(pos.Character), len(line))
	textBeforeCursor := line[:charPos]

	if paletteItems := tryPaletteCompletion(result, textBeforeCursor); paletteItems != nil {
		return paletteItems
	}

	ctx := determineBlockContext(lines, int(pos.Line))

	if isValuePosition(textBeforeCursor) {
		switch ctx {
		case contextPalette, contextTokens:
			return valueCompletions()
		}
		return nil
	}

	switch ctx {
	case contextMeta:
		return attributeCompletions(lines, int(pos.Line), metaAttributes)
	case contextScale:
		return attributeCompletions(lines, int(pos.Line), scaleAttributes)
	case contextRoot:
		return topLevelCompletions(lines)
	}

	return nil
}

// tryPaletteCompletion checks if the text before the cursor ends with a palette
// path prefix (e.g., "palette." or "palette.highlight.") and returns completion
// items for the children at that node in the palette tree.
func tryPaletteCompletion(result *AnalysisResult, textBeforeCursor string) []protocol.CompletionItem {
	if result == nil || result.Palette == nil {
		return nil
	}

	idx := strings.LastIndex(textBeforeCursor, "palette.")
	if idx == -1 {
		return nil
	}

	// "palette."             -> children of root
	// "palette.highlight."   -> children of highlight
	// "palette.highlight.lo" -> children of highlight (client filters "lo")
	pathStr := textBeforeCursor[idx+len("palette."):]
	var segments []string
	if i := strings.LastIndex(pathStr, "."); i != -1 {
		segments = strings.Split(pathStr[:i], ".")
	}

	node := result.Palette
	for _, seg := range segments {
		child, ok := node.Children[seg]
		if !ok {
			return nil
		}
		node = child
	}

	if node.Children == nil {
		return nil
	}

	return nodeChildrenToCompletionItems(node)
}

// nodeChildrenToCompletionItems converts a node's children into completion items,
// sorted by name.
func nodeChildrenToCompletionItems(node *color.Node) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(node.Children))

	for _, name := range slices.Sorted(maps.Keys(node.Children)) {
		child := node.Children[name]
		item := protocol.CompletionItem{
			Label: name,
			Kind:  completionKindPtr(protocol.CompletionItemKindColor),
		}

		switch {
		case child.Color != nil:
			item.Detail = strPtr(child.Color.CSS())
			item.Documentation = color.OKLCHToDisplayHex(*child.Color)
		case child.Children != nil:
			item.Kind = completionKindPtr(protocol.CompletionItemKindModule)
			item.Detail = strPtr("color group")
		}

		items = append(items, item)
	}

	return items
}

// isValuePosition returns true if the text before the cursor indicates we are
// at a value position (after an "=" sign with nothing meaningful following it).
func isValuePosition(textBeforeCursor string) bool {
	trimmed := strings.TrimSpace(textBeforeCursor)
	eqIdx := strings.LastIndex(trimmed, "=")
	if eqIdx == -1 {
		return false
	}
	afterEq := strings.TrimSpace(trimmed[eqIdx+1:])
	return afterEq == ""
}

// valueCompletions returns function snippets for every expression function
// plus a palette reference trigger.
func valueCompletions() []protocol.CompletionItem {
	snippetFormat := protocol.InsertTextFormatSnippet

	items := make([]protocol.CompletionItem, 0, len(eval.Signatures)+1)
	for _, sig := range eval.Signatures {
		placeholders := make([]string, len(sig.Params))
		for i, p := range sig.Params {
			placeholders[i] = fmt.Sprintf("${%d:%s}", i+1, p)
		}
		snippet := sig.Name + "(" + strings.Join(placeholders, ", ") + ")"
		items = append(items, protocol.CompletionItem{
			Label:            sig.Name,
			Kind:             completionKindPtr(protocol.CompletionItemKindFunction),
			Detail:           strPtr(sig.Label()),
			Documentation:    sig.Doc,
			InsertText:       &snippet,
			InsertTextFormat: &snippetFormat,
		})
	}

	paletteSnippet := "palette."
	items = append(items, protocol.CompletionItem{
		Label:      "palette",
		Kind:       completionKindPtr(protocol.CompletionItemKindVariable),
		Detail:     strPtr("palette reference"),
		InsertText: &paletteSnippet,
	})
	return items
}

// determineBlockContext scans from the top of the file down to the cursor line
// to determine which block the cursor is in, using brace nesting.
func determineBlockContext(lines []string, cursorLine int) blockContext {
	var stack []string

	for i := 0; i <= cursorLine; i++ {
		line := strings.TrimSpace(lines[i])

		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")

		// The block name is the first word on the line that opens it.
		if opens > 0 {
			if parts := strings.Fields(line); len(parts) >= 1 {
				for range opens {
					stack = append(stack, parts[0])
				}
			}
		}

		for range closes {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 {
		return contextRoot
	}

	switch stack[0] {
	case "meta":
		return contextMeta
	case "palette":
		return contextPalette
	case "scale":
		return contextScale
	case "tokens":
		return contextTokens
	}
	return contextRoot
}

// attributeCompletions returns the names from candidates that are not yet
// defined in the block surrounding the cursor.
func attributeCompletions(lines []string, cursorLine int, candidates []string) []protocol.CompletionItem {
	defined := findDefinedAttributes(lines, cursorLine)

	var items []protocol.CompletionItem
	for _, name := range candidates {
		if !defined[name] {
			items = append(items, protocol.CompletionItem{
				Label: name,
				Kind:  completionKindPtr(protocol.CompletionItemKindProperty),
			})
		}
	}

	return items
}

// findDefinedAttributes scans the current block (from the nearest opening brace
// before cursorLine to cursorLine) and returns attribute names already defined
// (lines containing "name = ...").
func findDefinedAttributes(lines []string, cursorLine int) map[string]bool {
	defined := make(map[string]bool)

	startLine := 0
	depth := 0
	for i := cursorLine; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		depth += strings.Count(line, "}") - strings.Count(line, "{")
		if depth < 0 {
			startLine = i
			break
		}
	}

	for i := startLine; i <= cursorLine; i++ {
		line := strings.TrimSpace(lines[i])
		if eqIdx := strings.Index(line, "="); eqIdx > 0 {
			name := strings.TrimSpace(line[:eqIdx])
			if !strings.ContainsAny(name, " {") {
				defined[name] = true
			}
		}
	}

	return defined
}

// topLevelCompletions returns snippets for the top-level blocks not yet
// present in the document.
func topLevelCompletions(lines []string) []protocol.CompletionItem {
	present := make(map[string]bool)
	for _, line := range lines {
		if fields := strings.Fields(line); len(fields) >= 2 && fields[1] == "{" {
			present[fields[0]] = true
		}
	}

	snippetFormat := protocol.InsertTextFormatSnippet
	var items []protocol.CompletionItem
	for _, name := range slices.Sorted(maps.Keys(parser.BlockTypes)) {
		if present[name] {
			continue
		}
		snippet := name + " {\n  $0\n}"
		items = append(items, protocol.CompletionItem{
			Label:            name,
			Kind:             completionKindPtr(protocol.CompletionItemKindSnippet),
			InsertText:       &snippet,
			InsertTextFormat: &snippetFormat,
		})
	}

	return items
}

// completionKindPtr returns a pointer to a CompletionItemKind.
func completionKindPtr(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}

// textDocumentCompletion is the LSP handler for textDocument/completion requests.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := string(params.TextDocument.URI)

	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	result := s.getResult(uri)
	if result == nil {
		return nil, nil
	}

	return complete(result, content, params.Position), nil
}
