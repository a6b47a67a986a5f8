package pattern

import "math"

// Rect is an axis-aligned box in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Contains reports whether (x, y) lies in the closed box.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.MaxX() && y >= r.Y && y <= r.MaxY()
}

// TileRange is the block of tiles (0,0)…(Cols-1, Rows-1) drawn for a viewport.
type TileRange struct {
	Cols, Rows int
}

// VisibleTiles covers a width × height viewport with tileSize squares starting
// at the origin, padded by one extra column and row.
func VisibleTiles(width, height, tileSize float64) TileRange {
	if !(tileSize > 0) {
		return TileRange{}
	}
	return TileRange{
		Cols: int(math.Ceil(width/tileSize)) + 1,
		Rows: int(math.Ceil(height/tileSize)) + 1,
	}
}

func (r TileRange) Count() int { return r.Cols * r.Rows }

// Each visits tiles row by row.
func (r TileRange) Each(fn func(tileX, tileY int)) {
	for ty := 0; ty < r.Rows; ty++ {
		for tx := 0; tx < r.Cols; tx++ {
			fn(tx, ty)
		}
	}
}

// TileBounds is the square covered by tile (tileX, tileY).
func TileBounds(tileX, tileY int, tileSize float64) Rect {
	return Rect{X: float64(tileX) * tileSize, Y: float64(tileY) * tileSize, W: tileSize, H: tileSize}
}
