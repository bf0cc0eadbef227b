package lsp

import (
	"fmt"
	"strings"

	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/eval"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// posInRange returns true if pos is within the range [r.Start, r.End).
// The end position is exclusive.
func posInRange(pos protocol.Position, r protocol.Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// extractText extracts the source text at a given LSP range from document content.
func extractText(content string, r protocol.Range) string {
	lines := strings.Split(content, "\n")

	startLine := int(r.Start.Line)
	endLine := min(int(r.End.Line), len(lines)-1)
	if startLine >= len(lines) || endLine < startLine {
		return ""
	}

	startChar := min(int(r.Start.Character), len(lines[startLine]))
	endChar := min(int(r.End.Character), len(lines[endLine]))

	if startLine == endLine {
		if endChar < startChar {
			return ""
		}
		return lines[startLine][startChar:endChar]
	}

	parts := []string{lines[startLine][startChar:]}
	parts = append(parts, lines[startLine+1:endLine]...)
	parts = append(parts, lines[endLine][:endChar])
	return strings.Join(parts, "\n")
}

// colorMarkdown renders a color as hex, oklch() and hsl(), noting when it
// falls outside sRGB.
func colorMarkdown(c color.OKLCH) string {
	hex := color.OKLCHToDisplayHex(c)
	md := fmt.Sprintf("`%s` · `%s` · `%s`", hex, c.CSS(), color.OKLCHToHSL(c).CSS())
	if !color.IsInGamut(c) {
		md += fmt.Sprintf("\n\nOutside sRGB; displays as `%s`", hex)
	}
	return md
}

// functionAtCursor returns the signature of the function whose name is under
// the cursor, if any.
func functionAtCursor(line string, character uint32) (eval.Signature, bool) {
	col := int(character)
	if col >= len(line) {
		return eval.Signature{}, false
	}

	start := col
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordChar(line[end]) {
		end++
	}
	if start == end || !strings.HasPrefix(strings.TrimLeft(line[end:], " "), "(") {
		return eval.Signature{}, false
	}
	// Inside a string literal such as "oklch(...)".
	if strings.Count(line[:start], `"`)%2 == 1 {
		return eval.Signature{}, false
	}

	name := line[start:end]
	for _, sig := range eval.Signatures {
		if sig.Name == name {
			return sig, true
		}
	}
	return eval.Signature{}, false
}

func isWordChar(b byte) bool {
	return isIdentChar(b) && b != '.'
}

// hover produces a Hover response for the given cursor position.
// Function names show their signature. Otherwise it checks whether the position
// falls within any ColorLocation from the analysis result; references also show
// their source text.
// Returns nil if nothing is found at the position.
func hover(result *AnalysisResult, content string, pos protocol.Position) *protocol.Hover {
	if result == nil {
		return nil
	}

	lines := strings.Split(content, "\n")
	if int(pos.Line) < len(lines) {
		if sig, ok := functionAtCursor(lines[pos.Line], pos.Character); ok {
			return &protocol.Hover{
				Contents: protocol.MarkupContent{
					Kind:  protocol.MarkupKindMarkdown,
					Value: fmt.Sprintf("```\n%s\n```\n\n%s", sig.Label(), sig.Doc),
				},
			}
		}
	}

	for _, cl := range result.Colors {
		if !posInRange(pos, cl.Range) {
			continue
		}

		md := colorMarkdown(cl.Color)
		if cl.IsRef {
			md = fmt.Sprintf("**%s**\n\n%s", extractText(content, cl.Range), md)
		}

		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: md,
			},
			Range: &cl.Range,
		}
	}

	return nil
}

// textDocumentHover handles textDocument/hover requests.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)

	result := s.getResult(uri)
	if result == nil {
		return nil, nil
	}

	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	return hover(result, content, params.Position), nil
}
