package display

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugallat/squarebg/internal/layout"
	"github.com/sugallat/squarebg/internal/pattern"
)

func testConfig() pattern.Config {
	return pattern.Options{
		BaseGrid: pattern.Ptr(16.0),
		TileSize: pattern.Ptr(64.0),
		Seed:     pattern.Ptr(pattern.StringSeed("test-seed")),
	}.Resolve()
}

func renderFrame(t *testing.T, bounds image.Rectangle, dpr float64, ov *Overlay) *image.RGBA {
	t.Helper()
	canvas := newFrameCanvas(bounds, dpr)
	defer canvas.Close()
	frame := image.NewRGBA(bounds)
	require.NoError(t, composeFrame(frame, canvas, testConfig(), ov))
	return frame
}

func countPixels(img *image.RGBA, rect image.Rectangle, fn func(color.RGBA) bool) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if fn(img.RGBAAt(x, y)) {
				n++
			}
		}
	}
	return n
}

func isDark(c color.RGBA) bool { return c.R < 0x20 && c.G < 0x20 && c.B < 0x20 }

func TestComposeFramePattern(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)
	for _, dpr := range []float64{1, 2} {
		frame := renderFrame(t, bounds, dpr, nil)
		opaque := countPixels(frame, bounds, func(c color.RGBA) bool { return c.A == 0xFF })
		assert.Equal(t, bounds.Dx()*bounds.Dy(), opaque, "dpr %v", dpr)

		drawn := countPixels(frame, bounds, func(c color.RGBA) bool { return c != Background })
		assert.Positive(t, drawn, "dpr %v: the pattern shows over the background", dpr)
	}

	a := renderFrame(t, bounds, 1, nil)
	b := renderFrame(t, bounds, 1, nil)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestComposeFrameOddSize(t *testing.T) {
	bounds := image.Rect(0, 0, 101, 51)
	frame := renderFrame(t, bounds, 2, nil)
	assert.Equal(t, bounds, frame.Bounds())
	opaque := countPixels(frame, bounds, func(c color.RGBA) bool { return c.A == 0xFF })
	assert.Equal(t, 101*51, opaque)
}

func TestOverlayQRCode(t *testing.T) {
	bounds := image.Rect(0, 0, 400, 200)
	ov, err := NewOverlay("", "https://example.com")
	require.NoError(t, err)

	plain := renderFrame(t, bounds, 1, nil)
	withQR := renderFrame(t, bounds, 1, ov)

	area := layout.Inset(bounds, layout.SquareSide(bounds, marginFraction))
	side := layout.SquareSide(area, qrFraction)
	qrRect := layout.AnchorBottomRight(area, side, side)

	assert.Zero(t, countPixels(plain, bounds, isDark))
	assert.Positive(t, countPixels(withQR, qrRect, isDark))
	outside := countPixels(withQR, image.Rect(0, 0, qrRect.Min.X, bounds.Max.Y), isDark)
	assert.Zero(t, outside, "the code stays in its corner")
}

func TestOverlayCaption(t *testing.T) {
	bounds := image.Rect(0, 0, 400, 200)
	ov, err := NewOverlay("Sugallat", "")
	require.NoError(t, err)

	plain := renderFrame(t, bounds, 1, nil)
	captioned := renderFrame(t, bounds, 1, ov)

	var changed image.Rectangle
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if plain.RGBAAt(x, y) != captioned.RGBAAt(x, y) {
				changed = changed.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	require.False(t, changed.Empty(), "caption drew something")
	assert.Less(t, changed.Min.Y, 100)
	assert.Greater(t, changed.Max.Y, 100, "caption straddles the vertical centre")
	assert.Greater(t, changed.Min.X, 100)
	assert.Less(t, changed.Max.X, 300)
}

func TestOverlayEmpty(t *testing.T) {
	var nilOverlay *Overlay
	assert.True(t, nilOverlay.Empty())
	assert.NoError(t, nilOverlay.Draw(image.NewRGBA(image.Rect(0, 0, 4, 4))))
	assert.True(t, (&Overlay{}).Empty())
	assert.False(t, (&Overlay{Caption: "x"}).Empty())
}

func TestOverlayBasicFontFallback(t *testing.T) {
	ov := &Overlay{Caption: "fallback"}
	frame := image.NewRGBA(image.Rect(0, 0, 200, 100))
	require.NoError(t, ov.Draw(frame))
	assert.Positive(t, countPixels(frame, frame.Bounds(), func(c color.RGBA) bool { return c.A > 0 }))
}

func TestBlit(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	frame.SetRGBA(1, 2, color.RGBA{R: 10, G: 20, B: 30, A: 40})

	dst := image.NewRGBA(image.Rect(10, 10, 13, 13))
	blit(dst, frame)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xFF}, dst.RGBAAt(11, 12))
	assert.Equal(t, color.RGBA{A: 0xFF}, dst.RGBAAt(10, 10))
}

func TestQRCodeImage(t *testing.T) {
	img, err := qrCodeImage("", 64)
	require.NoError(t, err)
	assert.Nil(t, img)

	img, err = qrCodeImage("https://example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultQRCodeSizePx, img.Bounds().Dx())
}

func TestRedrawRequiresStart(t *testing.T) {
	d := NewFBDisplay("/nonexistent/fb", 1)
	assert.Error(t, d.Redraw(pattern.Options{}))
	assert.Error(t, d.Start(context.Background()))
	assert.NoError(t, d.Stop())
}
