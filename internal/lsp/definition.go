package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// referenceRoots are the blocks whose entries can be referenced or looked up.
var referenceRoots = map[string]bool{
	"palette": true,
	"tokens":  true,
}

// refAtCursor extracts the dotted reference path up to the cursor position.
// If the cursor is on "palette" in "palette.base", it returns "palette".
// If the cursor is on "base" in "palette.base", it returns "palette.base".
// Returns "" if the cursor is not on a palette or tokens reference.
func refAtCursor(line string, character uint32) string {
	col := int(character)
	if col >= len(line) {
		return ""
	}

	end := col
	for end < len(line) && isIdentChar(line[end]) {
		end++
	}
	start := col
	for start > 0 && isIdentChar(line[start-1]) {
		start--
	}

	word := line[start:end]
	parts := strings.Split(word, ".")
	if !referenceRoots[parts[0]] {
		return ""
	}

	if len(parts) == 1 {
		if end < len(line) && line[end] == '.' {
			return parts[0]
		}
		return ""
	}

	// Keep the segments that start at or before the cursor.
	cursorInWord := col - start
	var kept []string
	offset := 0
	for _, part := range parts {
		if offset <= cursorInWord {
			kept = append(kept, part)
		}
		offset += len(part) + 1
	}

	return strings.Join(kept, ".")
}

// isIdentChar returns true if the byte is a valid identifier character
// (letter, digit, underscore, or dot for dotted paths).
func isIdentChar(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_' || b == '.'
}

// definition returns the definition location for a reference at the given cursor position.
// Generated scale steps such as palette.love.l3 have no source of their own,
// so they resolve to the nearest defined ancestor.
func definition(result *AnalysisResult, content string, uri string, pos protocol.Position) *protocol.Location {
	if result == nil {
		return nil
	}

	lines := strings.Split(content, "\n")
	if int(pos.Line) >= len(lines) {
		return nil
	}

	ref := refAtCursor(lines[pos.Line], pos.Character)
	for ref != "" {
		if symRange, ok := result.Symbols[ref]; ok {
			return &protocol.Location{
				URI:   protocol.DocumentUri(uri),
				Range: symRange,
			}
		}
		i := strings.LastIndex(ref, ".")
		if i == -1 {
			break
		}
		ref = ref[:i]
	}
	return nil
}

// textDocumentDefinition handles textDocument/definition requests.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)

	result := s.getResult(uri)
	if result == nil {
		return nil, nil
	}

	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	return definition(result, content, uri, params.Position), nil
}
