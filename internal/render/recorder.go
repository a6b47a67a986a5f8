package render

import (
	"image/color"
	"slices"
)

// StrokeOp is one recorded StrokeRoundedRect call with the state in effect.
type StrokeOp struct {
	X, Y          float64
	Width, Height float64
	Radius        float64

	Color     color.NRGBA
	Alpha     float64
	LineWidth float64
	LineJoin  LineJoin
	LineCap   LineCap
	Dash      []float64
	Shadow    Shadow
	Scale     float64
}

// Dashed reports whether the stroke used a non-empty dash pattern.
func (op StrokeOp) Dashed() bool { return len(op.Dash) > 0 }

// ClearOp is one recorded ClearRect call.
type ClearOp struct {
	X, Y, Width, Height float64
}

// Recorder is a Surface that keeps every drawing call instead of pixels.
// Setting Unavailable makes Context2D return nil.
type Recorder struct {
	Width, Height float64
	DPR           float64
	Unavailable   bool

	Strokes []StrokeOp
	Clears  []ClearOp
	Resizes int

	bufW, bufH int
	state      StrokeOp
}

var _ Surface = (*Recorder)(nil)

func NewRecorder(width, height, dpr float64) *Recorder {
	return &Recorder{
		Width:  width,
		Height: height,
		DPR:    dpr,
		state:  StrokeOp{Color: color.NRGBA{A: 0xFF}, Alpha: 1, LineWidth: 1, Scale: 1},
	}
}

func (r *Recorder) LogicalSize() (float64, float64) { return r.Width, r.Height }

func (r *Recorder) DevicePixelRatio() float64 { return CapDevicePixelRatio(r.DPR) }

func (r *Recorder) BufferSize() (int, int) { return r.bufW, r.bufH }

func (r *Recorder) SetBufferSize(width, height int) error {
	r.bufW, r.bufH = width, height
	r.Resizes++
	return nil
}

func (r *Recorder) Context2D() Context2D {
	if r.Unavailable {
		return nil
	}
	return r
}

// Reset drops recorded operations but keeps buffer size and drawing state.
func (r *Recorder) Reset() {
	r.Strokes = nil
	r.Clears = nil
}

func (r *Recorder) SetTransform(scale float64) { r.state.Scale = scale }

func (r *Recorder) ClearRect(x, y, width, height float64) {
	r.Clears = append(r.Clears, ClearOp{X: x, Y: y, Width: width, Height: height})
}

func (r *Recorder) SetStrokeColor(c color.NRGBA) { r.state.Color = c }

func (r *Recorder) SetGlobalAlpha(alpha float64) { r.state.Alpha = clampUnit(alpha) }

func (r *Recorder) SetLineWidth(width float64) { r.state.LineWidth = width }

func (r *Recorder) SetLineJoin(join LineJoin) { r.state.LineJoin = join }

func (r *Recorder) SetLineCap(lineCap LineCap) { r.state.LineCap = lineCap }

func (r *Recorder) SetLineDash(segments []float64) {
	if len(segments) == 0 {
		r.state.Dash = nil
		return
	}
	r.state.Dash = slices.Clone(segments)
}

func (r *Recorder) Shadow() Shadow { return r.state.Shadow }

func (r *Recorder) SetShadow(s Shadow) { r.state.Shadow = s }

func (r *Recorder) StrokeRoundedRect(x, y, width, height, radius float64) {
	op := r.state
	op.X, op.Y = x, y
	op.Width, op.Height = width, height
	op.Radius = clampRadius(radius, width, height)
	op.Dash = slices.Clone(r.state.Dash)
	r.Strokes = append(r.Strokes, op)
}
