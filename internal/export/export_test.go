package export

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/render"
)

func tinyOptions() pattern.Options {
	return pattern.Options{
		BaseGrid: pattern.Ptr(8.0),
		TileSize: pattern.Ptr(32.0),
		Seed:     pattern.Ptr(pattern.StringSeed("test-seed")),
	}
}

type recordingReporter struct {
	mu       sync.Mutex
	total    int
	updates  []int
	finished bool
}

func (r *recordingReporter) Start(total int) { r.total = total }

func (r *recordingReporter) Update(current int, _ string) {
	r.mu.Lock()
	r.updates = append(r.updates, current)
	r.mu.Unlock()
}

func (r *recordingReporter) Finish() { r.finished = true }

func TestTiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	rep := &recordingReporter{}
	paths, err := Tiles(context.Background(), Job{Dir: dir, Cols: 3, Rows: 2, Workers: 2, Options: tinyOptions()}, rep)
	require.NoError(t, err)

	require.Len(t, paths, 6)
	assert.Equal(t, filepath.Join(dir, "tile_0_0.png"), paths[0])
	assert.Equal(t, filepath.Join(dir, "tile_2_0.png"), paths[2])
	assert.Equal(t, filepath.Join(dir, "tile_0_1.png"), paths[3])

	assert.Equal(t, 6, rep.total)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, rep.updates)
	assert.True(t, rep.finished)

	cfg := tinyOptions().Resolve()
	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 3; tx++ {
			data, err := os.ReadFile(filepath.Join(dir, TileName(tx, ty)))
			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 32, img.Bounds().Dx())
			assert.Equal(t, 32, img.Bounds().Dy())

			// Tiles rendered concurrently match a tile rendered on its own.
			canvas := render.NewCanvas(32, 32, 1)
			pattern.RenderTile(canvas, tx, ty, cfg)
			var want bytes.Buffer
			require.NoError(t, canvas.EncodePNG(&want))
			_ = canvas.Close()
			assert.Equal(t, want.Bytes(), data, "tile %d,%d", tx, ty)
		}
	}
}

func TestTilesDPR(t *testing.T) {
	dir := t.TempDir()
	paths, err := Tiles(context.Background(), Job{Dir: dir, Cols: 1, Rows: 1, DPR: 2, Options: tinyOptions()}, nil)
	require.NoError(t, err)
	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
}

func TestTilesErrors(t *testing.T) {
	tests := []struct {
		name   string
		job    Job
		errMsg string
	}{
		{"no dir", Job{Cols: 1, Rows: 1}, "output directory"},
		{"no cols", Job{Dir: t.TempDir(), Rows: 1}, "cols and rows"},
		{"negative workers", Job{Dir: t.TempDir(), Cols: 1, Rows: 1, Workers: -1}, "workers"},
		{"bad options", Job{Dir: t.TempDir(), Cols: 1, Rows: 1, Options: pattern.Options{AccentRate: pattern.Ptr(3.0)}}, "accent_rate"},
		{"tile too large", Job{Dir: t.TempDir(), Cols: 1, Rows: 1, DPR: 2, Options: pattern.Options{TileSize: pattern.Ptr(5000.0)}}, "image too large"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tiles(context.Background(), tc.job, nil)
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestTilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Tiles(ctx, Job{Dir: t.TempDir(), Cols: 4, Rows: 4, Options: tinyOptions()}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{W: &buf}
	r.Start(2)
	r.Update(1, "tile_0_0.png")
	r.Finish()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"Rendering 2 tiles", "[1/2] tile_0_0.png", "Tile export complete"}, lines)
}

func TestNewReporter(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("CI", "true")
	assert.IsType(t, &CIReporter{}, NewReporter(&bytes.Buffer{}))
	t.Setenv("CI", "")
	assert.IsType(t, &TerminalReporter{}, NewReporter(&bytes.Buffer{}))
}
