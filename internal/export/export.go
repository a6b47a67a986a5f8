// Package export writes a block of background tiles to PNG files.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/render"
)

// Job describes the tiles (0..Cols-1, 0..Rows-1) to write into Dir.
type Job struct {
	Dir     string
	Cols    int
	Rows    int
	DPR     float64
	Workers int
	Options pattern.Options
}

// TileName is the file name tile (tx, ty) is written under.
func TileName(tx, ty int) string {
	return fmt.Sprintf("tile_%d_%d.png", tx, ty)
}

func (j Job) Validate() error {
	var errs []error
	if j.Dir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if j.Cols < 1 || j.Rows < 1 {
		errs = append(errs, fmt.Errorf("cols and rows must be at least 1, got %dx%d", j.Cols, j.Rows))
	}
	if j.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if err := j.Options.Validate(); err != nil {
		errs = append(errs, err)
	} else {
		size := j.Options.Resolve().TileSize
		if err := render.CheckBufferSize(size, size, j.DPR); err != nil {
			errs = append(errs, fmt.Errorf("tile: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Tiles renders every tile of job on its own canvas, Workers at a time
// (GOMAXPROCS when zero), and returns the written paths in row-major order.
// The first failure cancels the remaining tiles.
func Tiles(ctx context.Context, job Job, reporter Reporter) ([]string, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = noopReporter{}
	}
	if err := os.MkdirAll(job.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", job.Dir, err)
	}
	workers := job.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	cfg := job.Options.Resolve()
	total := job.Cols * job.Rows
	paths := make([]string, total)

	var (
		mu   sync.Mutex
		done int
	)
	reporter.Start(total)
	defer reporter.Finish()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ty := 0; ty < job.Rows; ty++ {
		for tx := 0; tx < job.Cols; tx++ {
			i := ty*job.Cols + tx
			path := filepath.Join(job.Dir, TileName(tx, ty))
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := writeTile(path, tx, ty, job.DPR, cfg); err != nil {
					return err
				}
				paths[i] = path

				mu.Lock()
				done++
				reporter.Update(done, filepath.Base(path))
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeTile(path string, tx, ty int, dpr float64, cfg pattern.Config) error {
	canvas := render.NewCanvas(cfg.TileSize, cfg.TileSize, dpr)
	defer canvas.Close()
	pattern.RenderTile(canvas, tx, ty, cfg)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := canvas.EncodePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
