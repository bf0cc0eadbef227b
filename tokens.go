package oklchstudio

import (
	"fmt"

	"github.com/jsvensson/oklchstudio/internal/color"
	"github.com/jsvensson/oklchstudio/internal/parser"
)

// TokenFile is the fully-resolved token file, ready for template rendering.
type TokenFile struct {
	Meta    Meta
	Palette *color.Node
	Tokens  map[string]color.OKLCH
	// TokenOrder lists token names in source order.
	TokenOrder []string
}

// Meta holds token file metadata.
type Meta struct {
	Name        string
	Author      string
	Description string
	URL         string
}

// Load parses an HCL token file and returns a fully-resolved TokenFile.
func Load(path string) (*TokenFile, error) {
	raw, err := parser.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}
	return fromParseResult(raw), nil
}

// LoadSource is Load for content already in memory.
func LoadSource(src []byte, filename string) (*TokenFile, error) {
	raw, err := parser.ParseSource(src, filename)
	if err != nil {
		return nil, fmt.Errorf("loading tokens: %w", err)
	}
	return fromParseResult(raw), nil
}

func fromParseResult(raw *parser.ParseResult) *TokenFile {
	return &TokenFile{
		Meta: Meta{
			Name:        raw.Meta.Name,
			Author:      raw.Meta.Author,
			Description: raw.Meta.Description,
			URL:         raw.Meta.URL,
		},
		Palette:    raw.Palette,
		Tokens:     raw.Tokens,
		TokenOrder: raw.TokenOrder,
	}
}
