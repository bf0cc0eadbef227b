package format

import (
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
)

var multipleBlankLines = regexp.MustCompile(`\n{3,}`)
var blankLineAfterOpenBrace = regexp.MustCompile(`\{\n\s*\n`)
var blankLineBeforeCloseBrace = regexp.MustCompile(`\n\s*\n(\s*\})`)
var hexLiteral = regexp.MustCompile(`"#[0-9A-Fa-f]{3,8}"`)
var attrLine = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_-]*)\s*=`)

// metaOrder is the canonical attribute order inside the meta block.
var metaOrder = []string{"name", "author", "description", "url"}

// Format takes HCL source content and returns it formatted according to
// HCL canonical style rules. It uses hclwrite.Format which handles
// indentation, spacing, and newline normalization.
//
// Hex color literals are lowercased and meta attributes are put in
// canonical order.
//
// The formatter works even on partial/invalid HCL, making it suitable
// for use while the user is still typing.
func Format(content string) (string, error) {
	formatted := string(hclwrite.Format([]byte(content)))
	// Collapse multiple consecutive blank lines into a single blank line.
	collapsed := multipleBlankLines.ReplaceAllString(formatted, "\n\n")
	// Remove blank lines immediately after opening braces.
	collapsed = blankLineAfterOpenBrace.ReplaceAllString(collapsed, "{\n")
	// Remove blank lines immediately before closing braces.
	collapsed = blankLineBeforeCloseBrace.ReplaceAllString(collapsed, "\n${1}")

	collapsed = hexLiteral.ReplaceAllStringFunc(collapsed, strings.ToLower)

	if reordered, ok := reorderMeta(collapsed); ok {
		// Realign the equals signs of the moved attributes.
		collapsed = string(hclwrite.Format([]byte(reordered)))
	}
	return collapsed, nil
}

// attrGroup is an attribute line plus the comment lines above it.
type attrGroup struct {
	name  string
	lines []string
}

// reorderMeta sorts the attributes of a top-level meta block. Comments
// directly above an attribute move with it. Blocks containing anything
// other than single-line attributes and comments are left alone.
func reorderMeta(src string) (string, bool) {
	lines := strings.Split(src, "\n")

	start := slices.IndexFunc(lines, func(l string) bool {
		return strings.TrimRight(l, " ") == "meta {"
	})
	if start == -1 {
		return "", false
	}
	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " ") == "}" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", false
	}

	var groups []attrGroup
	var pending []string
	for _, line := range lines[start+1 : end] {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//"):
			pending = append(pending, line)
		case attrLine.MatchString(line) && !strings.ContainsAny(trimmed, "{[("):
			name := attrLine.FindStringSubmatch(line)[1]
			groups = append(groups, attrGroup{name: name, lines: append(pending, line)})
			pending = nil
		default:
			return "", false
		}
	}

	rank := func(name string) int {
		if i := slices.Index(metaOrder, name); i >= 0 {
			return i
		}
		return len(metaOrder)
	}
	sorted := slices.Clone(groups)
	slices.SortStableFunc(sorted, func(a, b attrGroup) int {
		return rank(a.name) - rank(b.name)
	})
	if slices.EqualFunc(groups, sorted, func(a, b attrGroup) bool { return a.name == b.name }) {
		return "", false
	}

	out := make([]string, 0, len(lines))
	out = append(out, lines[:start+1]...)
	for _, g := range sorted {
		out = append(out, g.lines...)
	}
	out = append(out, pending...)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n"), true
}
