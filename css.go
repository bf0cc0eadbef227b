package oklchstudio

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/jsvensson/oklchstudio/internal/color"
)

// CSSOptions controls WriteCSS output.
type CSSOptions struct {
	// Selector wraps the declarations. Defaults to ":root".
	Selector string
	// Prefix is prepended to token names, e.g. "ds" gives --ds-background.
	Prefix string
	// SkipPalette omits the --palette-* declarations.
	SkipPalette bool
}

// WriteCSS writes the palette and tokens as CSS custom properties holding
// oklch() values. Colors outside sRGB get a comment with the hex fallback a
// browser would clamp to.
func WriteCSS(w io.Writer, tf *TokenFile, opts CSSOptions) error {
	selector := opts.Selector
	if selector == "" {
		selector = ":root"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s {\n", selector)

	if !opts.SkipPalette && tf.Palette != nil {
		writePaletteVars(bw, tf.Palette, "palette")
	}

	for _, name := range tokenNames(tf) {
		writeVar(bw, propertyName(opts.Prefix, name), tf.Tokens[name])
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// tokenNames returns token names in source order, falling back to sorted
// order for files built without one.
func tokenNames(tf *TokenFile) []string {
	if len(tf.TokenOrder) == len(tf.Tokens) {
		return tf.TokenOrder
	}
	return slices.Sorted(maps.Keys(tf.Tokens))
}

func writePaletteVars(w io.Writer, node *color.Node, name string) {
	if node.Color != nil {
		writeVar(w, propertyName("", name), *node.Color)
	}
	for _, k := range slices.Sorted(maps.Keys(node.Children)) {
		writePaletteVars(w, node.Children[k], name+"-"+k)
	}
}

func writeVar(w io.Writer, name string, c color.OKLCH) {
	if color.IsInGamut(c) {
		fmt.Fprintf(w, "  --%s: %s;\n", name, c.CSS())
		return
	}
	fmt.Fprintf(w, "  --%s: %s; /* outside sRGB, displays as %s */\n", name, c.CSS(), color.OKLCHToDisplayHex(c))
}

// propertyName builds a custom property name from a token name.
// Underscores and dots become dashes.
func propertyName(prefix, name string) string {
	name = strings.NewReplacer("_", "-", ".", "-").Replace(name)
	if prefix == "" {
		return name
	}
	return prefix + "-" + name
}
