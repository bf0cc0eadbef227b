package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsvensson/oklchstudio/internal/server"
	"github.com/jsvensson/oklchstudio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const tokensHCL = `meta {
  name = "Studio"
}

palette {
  brand = oklch(0.5, 0.1, 120)
  gray  = oklch(0.6, 0, 0)
}

tokens {
  surface = palette.gray
  accent  = palette.brand
}
`

func writeTokens(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.hcl")
	require.NoError(t, os.WriteFile(path, []byte(tokensHCL), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestConvert(t *testing.T) {
	out, err := run(t, "convert", "#FF0000")
	require.NoError(t, err)
	assert.Contains(t, out, "hex    #ff0000\n")
	assert.Contains(t, out, "rgb    rgb(255, 0, 0)\n")
	assert.Contains(t, out, "gamut  sRGB\n")
}

func TestConvert_JSON(t *testing.T) {
	out, err := run(t, "convert", "--json", "oklch(0.9 0.4 140)")
	require.NoError(t, err)

	var info server.ColorInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.False(t, info.InGamut)
	assert.Equal(t, "oklch(90% 0.4 140)", info.OKLCH)
}

func TestConvert_Invalid(t *testing.T) {
	_, err := run(t, "convert", "not-a-color")
	assert.Error(t, err)
}

func TestGamut(t *testing.T) {
	out, err := run(t, "gamut", "#336699")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#336699 oklch("), out)

	out, err = run(t, "gamut", "oklch(0.9 0.4 140)")
	assert.ErrorIs(t, err, errOutOfGamut)
	assert.True(t, strings.HasPrefix(out, "#"), out)
}

func TestPick(t *testing.T) {
	out, err := run(t, "pick", "--x", "0", "--y", "0", "--width", "11", "--height", "11", "--hue", "200", "--json")
	require.NoError(t, err)

	var info server.ColorInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.InDelta(t, 1, info.L, 1e-9)
	assert.InDelta(t, 0, info.C, 1e-9)
	assert.Equal(t, "#ffffff", info.Hex)
}

func TestPick_NonFiniteHue(t *testing.T) {
	for _, hue := range []string{"NaN", "Inf", "-Inf"} {
		_, err := run(t, "pick", "--x", "1", "--y", "1", "--hue="+hue)
		assert.ErrorContains(t, err, "invalid hue", hue)
	}
}

func TestPlane(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plane.png")
	_, err := run(t, "plane", "--hue", "30", "--width", "12", "--height", "6", "--out", path)
	require.NoError(t, err)

	img := decodePNG(t, path)
	assert.Equal(t, 12, img.Dx())
	assert.Equal(t, 6, img.Dy())
}

func TestPlane_Scaled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plane.png")
	_, err := run(t, "plane", "--width", "4", "--height", "3", "--scale", "2", "-o", path)
	require.NoError(t, err)

	img := decodePNG(t, path)
	assert.Equal(t, 8, img.Dx())
	assert.Equal(t, 6, img.Dy())
}

func TestPlane_InvalidSize(t *testing.T) {
	_, err := run(t, "plane", "--width", "0", "-o", filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

func TestPlane_NonFiniteHue(t *testing.T) {
	_, err := run(t, "plane", "--hue", "NaN", "-o", filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorContains(t, err, "invalid hue")
}

func TestStrip_Stdout(t *testing.T) {
	out, err := run(t, "strip", "--width", "10", "--height", "2")
	require.NoError(t, err)

	img, err := png.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}

func TestCSS(t *testing.T) {
	out, err := run(t, "css", "--tokens", writeTokens(t), "--prefix", "ds", "--skip-palette")
	require.NoError(t, err)
	assert.Equal(t, ":root {\n  --ds-surface: oklch(60% 0 0);\n  --ds-accent: oklch(50% 0.1 120);\n}\n", out)
}

func TestCSS_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.css")
	_, err := run(t, "css", "--tokens", writeTokens(t), "--selector", ".dark", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), ".dark {\n"))
	assert.Contains(t, string(data), "--palette-brand: oklch(50% 0.1 120);")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(templates, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "name.txt.tmpl"), []byte("{{ .Meta.Name }}"), 0o644))

	stdout, err := run(t, "generate", "--tokens", writeTokens(t), "--templates", templates, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Generated files in")

	data, err := os.ReadFile(filepath.Join(out, "name.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Studio", string(data))
}

func TestFmt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.hcl")
	require.NoError(t, os.WriteFile(path, []byte("palette{\nbase=\"#AABBCC\"\n}\n"), 0o644))

	out, err := run(t, "fmt", "--check", path)
	assert.ErrorIs(t, err, errUnformatted)
	assert.Equal(t, path+"\n", out)

	_, err = run(t, "fmt", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "palette {\n  base = \"#aabbcc\"\n}\n", string(data))

	out, err = run(t, "fmt", "--check", path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWarm(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cache.db")
	out, err := run(t, "warm", "--cache-db", db, "--step", "90", "--width", "8", "--height", "8", "--workers", "2", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 5/5 rasters (0 failed)")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	n, err := st.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	ok, err := st.Has(t.Context(), "plane/270/8x8")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWarm_NeedsCache(t *testing.T) {
	_, err := run(t, "warm", "--quiet")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "oklch.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("raster:\n  width: 5\n  height: 7\n"), 0o644))
	path := filepath.Join(t.TempDir(), "plane.png")

	_, err := run(t, "--config", cfg, "plane", "-o", path)
	require.NoError(t, err)

	img := decodePNG(t, path)
	assert.Equal(t, 5, img.Dx())
	assert.Equal(t, 7, img.Dy())
}

func TestConfigFile_Invalid(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "oklch.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("warm:\n  workers: 0\n"), 0o644))

	_, err := run(t, "--config", cfg, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warm.workers")
}

func decodePNG(t *testing.T, path string) image.Rectangle {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	return img.Bounds()
}
