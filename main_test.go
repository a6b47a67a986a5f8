package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugallat/squarebg/internal/config"
	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/render"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bg.png")
	_, err := execute(t, "render", "--config", filepath.Join(dir, "none.yaml"),
		"--width", "30", "--height", "20", "--dpr", "2", "--section", "footer", "--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 60, img.Width)
	assert.Equal(t, 40, img.Height)
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "render", "--config", filepath.Join(dir, "none.yaml"), "--section", "sidebar",
		"--out", filepath.Join(dir, "x.png"))
	assert.ErrorContains(t, err, `unknown section "sidebar"`)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sections:\n  hero:\n    soft_rate: 7\n"), 0o644))
	_, err = execute(t, "render", "--config", bad, "--section", "hero", "--out", filepath.Join(dir, "x.png"))
	assert.ErrorContains(t, err, "soft_rate")
}

func TestOutputSizeLimit(t *testing.T) {
	t.Cleanup(func() {
		flagWidth, flagHeight, flagDPR, flagSection = 1280, 720, 1, ""
		flagTilesSection, flagCols, flagRows, flagTilesDir = "", 4, 4, "tiles"
	})
	dir := t.TempDir()

	out := filepath.Join(dir, "huge.png")
	_, err := execute(t, "render", "--config", filepath.Join(dir, "none.yaml"), "--section", "hero",
		"--width", "1e6", "--height", "10", "--dpr", "2", "--out", out)
	assert.ErrorIs(t, err, render.ErrTooLarge)
	assert.NoFileExists(t, out)

	big := filepath.Join(dir, "big.yaml")
	require.NoError(t, os.WriteFile(big, []byte("sections:\n  hero:\n    base_grid: 600\n"), 0o644))
	tilesDir := filepath.Join(dir, "tiles")
	_, err = execute(t, "tiles", "--config", big, "--section", "hero", "--cols", "1", "--rows", "1", "--out", tilesDir)
	assert.ErrorIs(t, err, render.ErrTooLarge)
	assert.NoDirExists(t, tilesDir)
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "hero")
	assert.Contains(t, out, "dense, grid 128, tile 2048")
	assert.Contains(t, out, "default")
}

func TestConfigDumpCommand(t *testing.T) {
	out, err := execute(t, "config", "dump", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "default_section: hero")
	assert.Contains(t, out, "footer:")
}

func TestSectionOptions(t *testing.T) {
	cfg := config.DefaultConfig()

	opts, err := sectionOptions(cfg, "", "", false)
	require.NoError(t, err)
	hero, _ := pattern.Preset("hero")
	assert.Equal(t, hero, opts)

	opts, err = sectionOptions(cfg, "footer", "123", true)
	require.NoError(t, err)
	assert.Equal(t, pattern.StringSeed("123"), *opts.Seed, "flag seeds are strings")

	opts, err = sectionOptions(cfg, "footer", "", true)
	require.NoError(t, err)
	assert.Equal(t, pattern.StringSeed(""), *opts.Seed, "an explicit empty seed is kept")

	_, err = sectionOptions(cfg, "sidebar", "", false)
	assert.Error(t, err)
}

func TestWriteBackgroundDeterministic(t *testing.T) {
	dir := t.TempDir()
	opts := pattern.Options{BaseGrid: pattern.Ptr(8.0), TileSize: pattern.Ptr(32.0)}
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	require.NoError(t, writeBackground(a, 50, 40, 1, opts))
	require.NoError(t, writeBackground(b, 50, 40, 1, opts))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)

	assert.Error(t, writeBackground(filepath.Join(dir, "c.png"), 10, 10, 1, pattern.Options{DashRate: pattern.Ptr(-1.0)}))
}
