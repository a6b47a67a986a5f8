package display

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"

	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/render"
)

const DefaultDevice = "/dev/fb0"

// Background fills the frame under the pattern, which is drawn with
// transparent gaps.
var Background = color.RGBA{R: 0xF8, G: 0xFA, B: 0xFC, A: 0xFF}

type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// FBDisplay shows a background section full screen on the Linux framebuffer.
type FBDisplay struct {
	Device  string
	DPR     float64
	Overlay *Overlay
	Logger  Logger

	mu      sync.Mutex
	fbDev   *fb.Device
	canvas  *render.Canvas
	running atomic.Bool
}

func NewFBDisplay(device string, dpr float64) *FBDisplay {
	return &FBDisplay{Device: device, DPR: dpr}
}

func (d *FBDisplay) Start(ctx context.Context) error {
	device := d.Device
	if device == "" {
		device = DefaultDevice
	}
	dev, err := fb.Open(device)
	if err != nil {
		return err
	}
	bounds := dev.Bounds()
	if d.Logger != nil {
		d.Logger.Infof("fb", "framebuffer open, bounds=%dx%d", bounds.Dx(), bounds.Dy())
	}

	d.mu.Lock()
	d.fbDev = dev
	d.canvas = newFrameCanvas(bounds, d.DPR)
	d.mu.Unlock()
	d.running.Store(true)
	return nil
}

func (d *FBDisplay) Stop() error {
	d.running.Store(false)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.canvas != nil {
		_ = d.canvas.Close()
		d.canvas = nil
	}
	if d.fbDev != nil {
		d.fbDev.Close()
		d.fbDev = nil
	}
	return nil
}

// Redraw renders opts over the whole framebuffer. It is safe to call from
// several goroutines; draws are serialized.
func (d *FBDisplay) Redraw(opts pattern.Options) error {
	if !d.running.Load() {
		return errors.New("framebuffer display is not running")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fbDev == nil {
		return nil
	}

	frame := image.NewRGBA(image.Rect(0, 0, d.fbDev.Bounds().Dx(), d.fbDev.Bounds().Dy()))
	if err := composeFrame(frame, d.canvas, opts.Resolve(), d.Overlay); err != nil && d.Logger != nil {
		d.Logger.Errorf("fb", "overlay: %v", err)
	}
	if err := d.canvas.Err(); err != nil && d.Logger != nil {
		d.Logger.Errorf("fb", "pattern: %v", err)
	}
	blit(d.fbDev, frame)
	if d.Logger != nil {
		d.Logger.Infof("fb", "redraw done, %dx%d", frame.Bounds().Dx(), frame.Bounds().Dy())
	}
	return nil
}

// newFrameCanvas sizes a canvas so that its buffer matches bounds at dpr.
func newFrameCanvas(bounds image.Rectangle, dpr float64) *render.Canvas {
	dpr = render.CapDevicePixelRatio(dpr)
	return render.NewCanvas(float64(bounds.Dx())/dpr, float64(bounds.Dy())/dpr, dpr)
}

// composeFrame fills frame with the background, the pattern scaled to the
// frame and the overlay. The pattern still lands in frame when the overlay
// fails.
func composeFrame(frame *image.RGBA, canvas *render.Canvas, cfg pattern.Config, ov *Overlay) error {
	draw.Draw(frame, frame.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)

	pattern.Render(canvas, cfg)
	img := canvas.Image()
	if img.Bounds().Eq(frame.Bounds()) {
		draw.Draw(frame, frame.Bounds(), img, img.Bounds().Min, draw.Over)
	} else if !img.Bounds().Empty() {
		xdraw.CatmullRom.Scale(frame, frame.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	}

	return ov.Draw(frame)
}

// blit copies frame onto dst, which may be offset, forcing full opacity.
func blit(dst draw.Image, frame *image.RGBA) {
	bounds := dst.Bounds()
	width := min(bounds.Dx(), frame.Bounds().Dx())
	height := min(bounds.Dy(), frame.Bounds().Dy())
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := frame.RGBAAt(x, y)
			dst.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
