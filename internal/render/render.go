package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

const (
	// MaxDevicePixelRatio bounds backing-buffer memory on high density displays.
	MaxDevicePixelRatio = 2.0

	// MaxBufferSide is the largest backing buffer side, in device pixels,
	// that outputs are rendered at.
	MaxBufferSide = 8192
)

var ErrTooLarge = errors.New("image too large")

type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// Shadow is the drop shadow applied to every subsequent stroke.
// A zero Shadow (transparent colour) disables it.
type Shadow struct {
	Color color.NRGBA
	Blur  float64
}

// Visible reports whether drawing with s would change any pixel.
func (s Shadow) Visible() bool { return s.Color.A > 0 }

// BlackShadow is rgba(0, 0, 0, alpha) blurred by blur pixels.
func BlackShadow(alpha, blur float64) Shadow {
	return Shadow{Color: color.NRGBA{A: unitToByte(alpha)}, Blur: blur}
}

// Context2D is the stroke subset of a 2D drawing context that backgrounds need.
// Coordinates are in logical pixels once SetTransform has been applied.
type Context2D interface {
	// SetTransform replaces the current transform with a uniform scale.
	SetTransform(scale float64)
	ClearRect(x, y, width, height float64)

	SetStrokeColor(c color.NRGBA)
	SetGlobalAlpha(alpha float64)
	SetLineWidth(width float64)
	SetLineJoin(join LineJoin)
	SetLineCap(lineCap LineCap)
	// SetLineDash sets the dash pattern; an empty pattern means solid lines.
	SetLineDash(segments []float64)

	Shadow() Shadow
	SetShadow(s Shadow)

	// StrokeRoundedRect outlines an axis-aligned rectangle with rounded
	// corners. The radius is clamped to half the shorter side.
	StrokeRoundedRect(x, y, width, height, radius float64)
}

// Surface is a drawing target with a logical (CSS pixel) size backed by a
// pixel buffer that may be larger by the device pixel ratio.
type Surface interface {
	LogicalSize() (width, height float64)
	DevicePixelRatio() float64

	BufferSize() (width, height int)
	SetBufferSize(width, height int) error

	// Context2D returns nil when the surface cannot be drawn on.
	Context2D() Context2D
}

// CapDevicePixelRatio clamps dpr to [1, MaxDevicePixelRatio]. Non-finite or
// non-positive values count as 1.
func CapDevicePixelRatio(dpr float64) float64 {
	if math.IsNaN(dpr) || dpr <= 0 {
		return 1
	}
	return math.Max(1, math.Min(dpr, MaxDevicePixelRatio))
}

// Dimensions is the result of fitting a logical size to a device pixel ratio.
type Dimensions struct {
	LogicalWidth  float64
	LogicalHeight float64
	DPR           float64
	BufferWidth   int
	BufferHeight  int
}

// FitBuffer floors the logical size to whole pixels (minimum 1 per axis),
// caps dpr and computes the backing-buffer size.
func FitBuffer(width, height, dpr float64) Dimensions {
	d := Dimensions{
		LogicalWidth:  floorMin1(width),
		LogicalHeight: floorMin1(height),
		DPR:           CapDevicePixelRatio(dpr),
	}
	d.BufferWidth = int(math.Floor(d.LogicalWidth * d.DPR))
	d.BufferHeight = int(math.Floor(d.LogicalHeight * d.DPR))
	return d
}

// CheckBufferSize reports ErrTooLarge when a width × height surface at the
// capped dpr would need more than MaxBufferSide device pixels on a side.
func CheckBufferSize(width, height, dpr float64) error {
	d := FitBuffer(width, height, dpr)
	if math.Max(d.LogicalWidth, d.LogicalHeight)*d.DPR > MaxBufferSide {
		return fmt.Errorf("%w: %gx%g at dpr %g exceeds %d px per side", ErrTooLarge, width, height, d.DPR, MaxBufferSide)
	}
	return nil
}

func floorMin1(v float64) float64 {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	return math.Floor(v)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampRadius(radius, width, height float64) float64 {
	return math.Max(0, math.Min(radius, math.Min(width, height)/2))
}
