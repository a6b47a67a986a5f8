package pattern

import (
	"math"

	"github.com/sugallat/squarebg/internal/render"
	"github.com/sugallat/squarebg/internal/seededrng"
)

// Strategy lays out and strokes the cells of one tile. Plan consumes the
// tile's random stream; Draw only replays the result onto a context.
type Strategy interface {
	Name() string
	Plan(tile Rect, cfg *Config, rng *seededrng.Rand) []Cell
	Draw(ctx render.Context2D, cells []Cell, cfg *Config)
}

// Cell is one square of a planned tile.
type Cell struct {
	// Grid is the unit cell the square belongs to.
	Grid Rect
	// Shape is the stroked outline, snapped to pixel centres.
	Shape  Rect
	Radius float64
	Style  CellStyle
	Shadow render.Shadow
	// Cluster groups cells drawn by SparseClusters; always 0 for DenseGrid.
	Cluster int
}

// snap moves a coordinate onto a pixel centre so 1px strokes stay crisp.
func snap(v float64) float64 { return jsRound(v) + 0.5 }

// DenseGrid strokes every cell of the tile, inset by the gutter.
type DenseGrid struct{}

func (DenseGrid) Name() string { return "dense" }

func (DenseGrid) Plan(tile Rect, cfg *Config, rng *seededrng.Rand) []Cell {
	bg := cfg.BaseGrid
	if !(bg > 0) {
		return nil
	}
	size := math.Max(1, bg-2*cfg.Gutter)
	radius := jsRound(bg * cornerRadiusRatio)
	shadow := render.BlackShadow(cfg.ShadowAlpha, cfg.ShadowBlur)

	perSide := int(math.Ceil(tile.W / bg))
	cells := make([]Cell, 0, perSide*perSide)
	for y := tile.Y; y < tile.MaxY(); y += bg {
		for x := tile.X; x < tile.MaxX(); x += bg {
			cells = append(cells, Cell{
				Grid:   Rect{X: x, Y: y, W: bg, H: bg},
				Shape:  Rect{X: snap(x + cfg.Gutter), Y: snap(y + cfg.Gutter), W: size, H: size},
				Radius: radius,
				Style:  sampleStyle(rng, cfg, true),
				Shadow: shadow,
			})
		}
	}
	return cells
}

// Draw sets every stroke field per cell. Only the shadow and dash are put
// back afterwards; alpha and colour carry over to whatever draws next.
func (DenseGrid) Draw(ctx render.Context2D, cells []Cell, cfg *Config) {
	ctx.SetLineWidth(cfg.StrokeWidth)
	ctx.SetLineJoin(render.LineJoinRound)
	ctx.SetLineCap(render.LineCapButt)

	for _, c := range cells {
		ctx.SetGlobalAlpha(c.Style.Alpha)
		ctx.SetStrokeColor(c.Style.Color(cfg))
		ctx.SetLineWidth(c.Style.LineWidth)
		if c.Style.Dashed {
			ctx.SetLineDash(dashPattern)
		} else {
			ctx.SetLineDash(nil)
		}

		prev := ctx.Shadow()
		ctx.SetShadow(c.Shadow)
		ctx.StrokeRoundedRect(c.Shape.X, c.Shape.Y, c.Shape.W, c.Shape.H, c.Radius)
		ctx.SetShadow(prev)
		ctx.SetLineDash(nil)
	}
}

// Legacy layout constants.
const (
	sparseCoarseCells  = 6
	sparsePlaceChance  = 0.55
	sparseJumpChance   = 0.35
	sparseMinCluster   = 5
	sparseClusterRange = 5
	sparseMaxRadius    = 3
	sparseShadowAlpha  = 0.08
	sparseShadowBlur   = 1.0
)

// SparseClusters is the older low-density layout: coarse blocks six cells
// wide each get, with probability 0.55, a random-walk cluster of 5 to 9
// touching cells within three cells of a jittered anchor. Gutter, mid band,
// weight and dash options do not apply, and the shadow is fixed.
type SparseClusters struct{}

func (SparseClusters) Name() string { return "sparse" }

type gridPoint struct{ x, y int }

func (SparseClusters) Plan(tile Rect, cfg *Config, rng *seededrng.Rand) []Cell {
	bg := cfg.BaseGrid
	if !(bg > 0) {
		return nil
	}
	coarse := bg * sparseCoarseCells
	radius := jsRound(bg * cornerRadiusRatio)
	shadow := render.BlackShadow(sparseShadowAlpha, sparseShadowBlur)

	var cells []Cell
	cluster := 0
	for gx := tile.X; gx < tile.MaxX(); gx += coarse {
		for gy := tile.Y; gy < tile.MaxY(); gy += coarse {
			if rng.Float64() > sparsePlaceChance {
				continue
			}
			jitterX := float64(rng.Intn(3)-1) * bg
			jitterY := float64(rng.Intn(3)-1) * bg
			ax := jsRound((gx+coarse/2)/bg)*bg + jitterX
			ay := jsRound((gy+coarse/2)/bg)*bg + jitterY

			desired := sparseMinCluster + rng.Intn(sparseClusterRange)
			for _, p := range growCluster(rng, desired) {
				x := ax + float64(p.x)*bg
				y := ay + float64(p.y)*bg
				cells = append(cells, Cell{
					Grid:    Rect{X: x, Y: y, W: bg, H: bg},
					Shape:   Rect{X: snap(x), Y: snap(y), W: bg, H: bg},
					Radius:  radius,
					Style:   sampleStyle(rng, cfg, false),
					Shadow:  shadow,
					Cluster: cluster,
				})
			}
			cluster++
		}
	}
	return cells
}

// growCluster walks from the origin, sometimes jumping back to a random
// visited cell, until desired distinct cells are collected. Steps that
// leave the radius are discarded.
func growCluster(rng *seededrng.Rand, desired int) []gridPoint {
	coords := []gridPoint{{}}
	used := map[gridPoint]bool{{}: true}
	var cur gridPoint
	for len(coords) < desired {
		if rng.Chance(sparseJumpChance) {
			cur = coords[rng.Intn(len(coords))]
		}
		next := cur
		switch rng.Intn(4) {
		case 0:
			next.x++
		case 1:
			next.x--
		case 2:
			next.y++
		default:
			next.y--
		}
		if abs(next.x) > sparseMaxRadius || abs(next.y) > sparseMaxRadius {
			continue
		}
		cur = next
		if !used[cur] {
			used[cur] = true
			coords = append(coords, cur)
		}
	}
	return coords
}

func (SparseClusters) Draw(ctx render.Context2D, cells []Cell, cfg *Config) {
	cluster := -1
	for _, c := range cells {
		if c.Cluster != cluster {
			cluster = c.Cluster
			ctx.SetLineWidth(cfg.StrokeWidth)
			ctx.SetLineJoin(render.LineJoinRound)
			ctx.SetLineCap(render.LineCapButt)
		}
		ctx.SetGlobalAlpha(c.Style.Alpha)
		ctx.SetStrokeColor(c.Style.Color(cfg))

		prev := ctx.Shadow()
		ctx.SetShadow(c.Shadow)
		ctx.StrokeRoundedRect(c.Shape.X, c.Shape.Y, c.Shape.W, c.Shape.H, c.Radius)
		ctx.SetShadow(prev)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
