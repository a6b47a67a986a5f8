package display

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sugallat/squarebg/internal/assets"
	"github.com/sugallat/squarebg/internal/layout"
)

// Fractions of the frame's shorter side.
const (
	marginFraction  = 0.04
	captionFraction = 0.06
	qrFraction      = 0.2
)

// Overlay is drawn on top of the pattern: a centred caption and a QR code
// in the bottom-right corner. Empty fields are skipped.
type Overlay struct {
	Caption      string
	QRURL        string
	CaptionColor color.Color

	ttFont *truetype.Font
}

var defaultCaptionColor = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xFF}

// NewOverlay parses the embedded caption font. If parsing fails the caption
// falls back to basicfont and err reports why.
func NewOverlay(caption, qrURL string) (*Overlay, error) {
	o := &Overlay{Caption: caption, QRURL: qrURL, CaptionColor: defaultCaptionColor}
	tt, err := truetype.Parse(assets.CaptionFontTTF)
	if err != nil {
		return o, err
	}
	o.ttFont = tt
	return o, nil
}

func (o *Overlay) Empty() bool { return o == nil || (o.Caption == "" && o.QRURL == "") }

// Draw composites the overlay onto dst.
func (o *Overlay) Draw(dst draw.Image) error {
	if o.Empty() {
		return nil
	}
	area := layout.Inset(dst.Bounds(), layout.SquareSide(dst.Bounds(), marginFraction))

	if o.QRURL != "" {
		side := layout.SquareSide(area, qrFraction)
		img, err := qrCodeImage(o.QRURL, side)
		if err != nil {
			return err
		}
		if img != nil && side > 0 {
			rect := layout.AnchorBottomRight(area, side, side)
			xdraw.NearestNeighbor.Scale(dst, rect, img, img.Bounds(), xdraw.Over, nil)
		}
	}

	if o.Caption != "" {
		face := o.face(layout.SquareSide(dst.Bounds(), captionFraction))
		drawTextCentered(dst, area, o.Caption, o.captionColor(), face)
	}
	return nil
}

func (o *Overlay) captionColor() color.Color {
	if o.CaptionColor == nil {
		return defaultCaptionColor
	}
	return o.CaptionColor
}

// face returns a face sizePx tall, or basicfont when no TrueType font is
// loaded or the size is degenerate.
func (o *Overlay) face(sizePx int) font.Face {
	if o.ttFont == nil || sizePx <= 0 {
		return basicfont.Face7x13
	}
	// At 72 DPI one point is one pixel.
	return truetype.NewFace(o.ttFont, &truetype.Options{Size: float64(sizePx), DPI: 72, Hinting: font.HintingFull})
}

// drawTextCentered draws text centred in area, measured with face.
func drawTextCentered(dst draw.Image, area image.Rectangle, text string, fg color.Color, face font.Face) {
	drawer := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: face}
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	textHeight := ascent + metrics.Descent.Ceil()
	textWidth := drawer.MeasureString(text).Ceil()

	box := layout.Center(area, textWidth, textHeight)
	drawer.Dot = fixed.P(box.Min.X, box.Min.Y+ascent)
	drawer.DrawString(text)
}
