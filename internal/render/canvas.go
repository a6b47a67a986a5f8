package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg"
)

var ErrNoBuffer = errors.New("canvas has no pixel buffer")

// Canvas is an offscreen raster Surface backed by a gg drawing context.
// The backing buffer is allocated on the first SetBufferSize call.
type Canvas struct {
	width  float64
	height float64
	dpr    float64

	dc    *gg.Context
	scale float64

	stroke    color.NRGBA
	alpha     float64
	lineWidth float64
	dash      []float64
	shadow    Shadow

	// err is the first stroke failure of the current render; SetTransform,
	// which starts every render, clears it.
	err error
}

var _ Surface = (*Canvas)(nil)

func NewCanvas(width, height, dpr float64) *Canvas {
	return &Canvas{
		width:     width,
		height:    height,
		dpr:       CapDevicePixelRatio(dpr),
		scale:     1,
		stroke:    color.NRGBA{A: 0xFF},
		alpha:     1,
		lineWidth: 1,
	}
}

func (c *Canvas) LogicalSize() (float64, float64) { return c.width, c.height }

func (c *Canvas) DevicePixelRatio() float64 { return c.dpr }

// SetLogicalSize changes the reported layout size; the buffer follows on the
// next render.
func (c *Canvas) SetLogicalSize(width, height float64) {
	c.width = width
	c.height = height
}

func (c *Canvas) BufferSize() (int, int) {
	if c.dc == nil {
		return 0, 0
	}
	return c.dc.Width(), c.dc.Height()
}

// SetBufferSize reallocates the pixel buffer only when the size changes.
func (c *Canvas) SetBufferSize(width, height int) error {
	if c.dc == nil {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("invalid buffer size %dx%d", width, height)
		}
		c.dc = gg.NewContext(width, height)
		c.dc.SetLineJoin(gg.LineJoinRound)
		c.dc.SetLineCap(gg.LineCapButt)
		return nil
	}
	return c.dc.Resize(width, height)
}

func (c *Canvas) Context2D() Context2D {
	if c.dc == nil {
		return nil
	}
	return c
}

// Image returns a copy of the current pixels.
func (c *Canvas) Image() image.Image {
	if c.dc == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	return c.dc.Image()
}

// EncodePNG writes the pixels, or the first stroke error if drawing failed.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.dc == nil {
		return ErrNoBuffer
	}
	if c.err != nil {
		return c.err
	}
	return c.dc.EncodePNG(w)
}

// Err returns the first stroke error, if any.
func (c *Canvas) Err() error { return c.err }

func (c *Canvas) keepErr(err error) {
	if err != nil && c.err == nil {
		c.err = fmt.Errorf("stroke: %w", err)
	}
}

func (c *Canvas) Close() error {
	if c.dc == nil {
		return nil
	}
	return c.dc.Close()
}

// Context2D implementation.

func (c *Canvas) SetTransform(scale float64) {
	c.err = nil
	c.scale = scale
	c.dc.Identity()
	c.dc.Scale(scale, scale)
}

func (c *Canvas) ClearRect(x, y, width, height float64) {
	bw, bh := c.dc.Width(), c.dc.Height()
	x0 := int(math.Floor(x * c.scale))
	y0 := int(math.Floor(y * c.scale))
	x1 := int(math.Ceil((x + width) * c.scale))
	y1 := int(math.Ceil((y + height) * c.scale))
	if x0 <= 0 && y0 <= 0 && x1 >= bw && y1 >= bh {
		c.dc.Clear()
		return
	}
	for py := max(y0, 0); py < min(y1, bh); py++ {
		for px := max(x0, 0); px < min(x1, bw); px++ {
			c.dc.SetPixel(px, py, gg.Transparent)
		}
	}
}

func (c *Canvas) SetStrokeColor(col color.NRGBA) { c.stroke = col }

func (c *Canvas) SetGlobalAlpha(alpha float64) { c.alpha = clampUnit(alpha) }

func (c *Canvas) SetLineWidth(width float64) { c.lineWidth = width }

func (c *Canvas) SetLineJoin(join LineJoin) {
	switch join {
	case LineJoinRound:
		c.dc.SetLineJoin(gg.LineJoinRound)
	case LineJoinBevel:
		c.dc.SetLineJoin(gg.LineJoinBevel)
	default:
		c.dc.SetLineJoin(gg.LineJoinMiter)
	}
}

func (c *Canvas) SetLineCap(lineCap LineCap) {
	switch lineCap {
	case LineCapRound:
		c.dc.SetLineCap(gg.LineCapRound)
	case LineCapSquare:
		c.dc.SetLineCap(gg.LineCapSquare)
	default:
		c.dc.SetLineCap(gg.LineCapButt)
	}
}

func (c *Canvas) SetLineDash(segments []float64) {
	c.dash = append(c.dash[:0], segments...)
}

func (c *Canvas) Shadow() Shadow { return c.shadow }

func (c *Canvas) SetShadow(s Shadow) { c.shadow = s }

// StrokeRoundedRect strokes the outline. A visible shadow is approximated by a
// wider, translucent stroke underneath, widened by the blur radius on each side.
func (c *Canvas) StrokeRoundedRect(x, y, width, height, radius float64) {
	r := clampRadius(radius, width, height)
	if len(c.dash) > 0 {
		c.dc.SetDash(c.dash...)
	} else {
		c.dc.ClearDash()
	}

	if c.shadow.Visible() && c.alpha > 0 {
		c.setRGBA(c.shadow.Color)
		c.dc.SetLineWidth(c.lineWidth + 2*math.Max(0, c.shadow.Blur))
		c.dc.DrawRoundedRectangle(x, y, width, height, r)
		c.keepErr(c.dc.Stroke())
	}

	c.setRGBA(c.stroke)
	c.dc.SetLineWidth(c.lineWidth)
	c.dc.DrawRoundedRectangle(x, y, width, height, r)
	c.keepErr(c.dc.Stroke())
}

func (c *Canvas) setRGBA(col color.NRGBA) {
	c.dc.SetRGBA(
		float64(col.R)/255,
		float64(col.G)/255,
		float64(col.B)/255,
		float64(col.A)/255*c.alpha,
	)
}
