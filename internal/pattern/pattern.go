// Package pattern draws the tiled square backgrounds.
//
// The visible area is split into tiles of TileSize logical pixels. Each tile
// gets its own random stream, seeded from the global seed and the tile
// coordinates, so a tile looks the same whatever the viewport size and
// whichever other tiles are drawn.
package pattern

import (
	"github.com/sugallat/squarebg/internal/render"
	"github.com/sugallat/squarebg/internal/seededrng"
)

// Render sizes the backing buffer of s to its logical size times the capped
// device pixel ratio, then draws every visible tile of cfg. A surface without
// a drawing context, or one whose buffer cannot be resized, is left alone.
// A nil Strategy in cfg means DenseGrid.
func Render(s render.Surface, cfg Config) {
	if s == nil {
		return
	}
	lw, lh := s.LogicalSize()
	dim := render.FitBuffer(lw, lh, s.DevicePixelRatio())
	if bw, bh := s.BufferSize(); bw != dim.BufferWidth || bh != dim.BufferHeight {
		if err := s.SetBufferSize(dim.BufferWidth, dim.BufferHeight); err != nil {
			return
		}
	}
	ctx := s.Context2D()
	if ctx == nil {
		return
	}

	ctx.SetTransform(dim.DPR)
	if cfg.Clear {
		ctx.ClearRect(0, 0, dim.LogicalWidth, dim.LogicalHeight)
	}

	strategy := strategyOf(&cfg)
	base := cfg.Seed.Uint32()
	VisibleTiles(dim.LogicalWidth, dim.LogicalHeight, cfg.TileSize).Each(func(tx, ty int) {
		drawTile(ctx, strategy, tx, ty, TileBounds(tx, ty, cfg.TileSize), base, &cfg)
	})
}

// RenderTile draws tile (tileX, tileY) alone with its top-left corner at the
// surface origin. The buffer is sized to one tile; the surface's logical size
// is ignored.
func RenderTile(s render.Surface, tileX, tileY int, cfg Config) {
	if s == nil {
		return
	}
	dim := render.FitBuffer(cfg.TileSize, cfg.TileSize, s.DevicePixelRatio())
	if bw, bh := s.BufferSize(); bw != dim.BufferWidth || bh != dim.BufferHeight {
		if err := s.SetBufferSize(dim.BufferWidth, dim.BufferHeight); err != nil {
			return
		}
	}
	ctx := s.Context2D()
	if ctx == nil {
		return
	}

	ctx.SetTransform(dim.DPR)
	if cfg.Clear {
		ctx.ClearRect(0, 0, dim.LogicalWidth, dim.LogicalHeight)
	}
	origin := Rect{W: cfg.TileSize, H: cfg.TileSize}
	drawTile(ctx, strategyOf(&cfg), tileX, tileY, origin, cfg.Seed.Uint32(), &cfg)
}

// PlanTile returns the cells tile (tileX, tileY) is drawn with, in world
// coordinates, without touching any surface.
func PlanTile(tileX, tileY int, cfg Config) []Cell {
	rng := seededrng.New(seededrng.HashTile(cfg.Seed.Uint32(), tileX, tileY))
	return strategyOf(&cfg).Plan(TileBounds(tileX, tileY, cfg.TileSize), &cfg, rng)
}

func drawTile(ctx render.Context2D, strategy Strategy, tx, ty int, bounds Rect, base uint32, cfg *Config) {
	rng := seededrng.New(seededrng.HashTile(base, tx, ty))
	strategy.Draw(ctx, strategy.Plan(bounds, cfg, rng), cfg)
}

func strategyOf(cfg *Config) Strategy {
	if cfg.Strategy == nil {
		return DenseGrid{}
	}
	return cfg.Strategy
}
