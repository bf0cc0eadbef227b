package lsp

import (
	"strings"

	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// colorToLSP converts an OKLCH color to a protocol.Color (float32 0.0-1.0).
// Colors outside sRGB are clamped the way a display would show them.
func colorToLSP(c color.OKLCH) protocol.Color {
	s := color.ClampSRGB(c.SRGB())
	return protocol.Color{
		Red:   float32(s.R),
		Green: float32(s.G),
		Blue:  float32(s.B),
		Alpha: 1.0,
	}
}

// colorFromLSP converts a picked protocol.Color to OKLCH. Alpha is ignored.
func colorFromLSP(c protocol.Color) color.OKLCH {
	return color.SRGBToOKLCH(color.SRGB{
		R: float64(c.Red),
		G: float64(c.Green),
		B: float64(c.Blue),
	})
}

// documentColors converts the analysis result's color locations into LSP ColorInformation items.
func documentColors(result *AnalysisResult) []protocol.ColorInformation {
	if result == nil {
		return []protocol.ColorInformation{}
	}

	infos := make([]protocol.ColorInformation, 0, len(result.Colors))
	for _, cl := range result.Colors {
		infos = append(infos, protocol.ColorInformation{
			Range: cl.Range,
			Color: colorToLSP(cl.Color),
		})
	}
	return infos
}

// colorPresentation produces color presentation options for a given color and range.
// String literals can be rewritten as hex, oklch() or hsl(). References and
// function calls are never replaced with literal values.
func colorPresentation(content string, params *protocol.ColorPresentationParams) []protocol.ColorPresentation {
	text := extractText(content, params.Range)
	if !strings.HasPrefix(text, "\"") {
		return []protocol.ColorPresentation{}
	}

	picked := colorFromLSP(params.Color)
	labels := []string{
		color.FromSRGB(picked.SRGB()).Hex(),
		picked.CSS(),
		color.OKLCHToHSL(picked).CSS(),
	}

	presentations := make([]protocol.ColorPresentation, 0, len(labels))
	for _, label := range labels {
		presentations = append(presentations, protocol.ColorPresentation{
			Label: label,
			TextEdit: &protocol.TextEdit{
				Range:   params.Range,
				NewText: "\"" + label + "\"",
			},
		})
	}
	return presentations
}

// textDocumentDocumentColor handles textDocument/documentColor requests.
func (s *Server) textDocumentDocumentColor(_ *glsp.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	uri := string(params.TextDocument.URI)
	result := s.getResult(uri)
	return documentColors(result), nil
}

// textDocumentColorPresentation handles textDocument/colorPresentation requests.
func (s *Server) textDocumentColorPresentation(_ *glsp.Context, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	uri := string(params.TextDocument.URI)
	content, ok := s.docs.Get(uri)
	if !ok {
		return []protocol.ColorPresentation{}, nil
	}
	return colorPresentation(content, params), nil
}
