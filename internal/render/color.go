package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

var ErrInvalidColor = errors.New("invalid color")

// ParseColor understands the CSS forms backgrounds are configured with:
// #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(r, g, b) and rgba(r, g, b, a).
func ParseColor(s string) (color.NRGBA, error) {
	in := strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(in, "#"):
		return parseHex(in, s)
	case strings.HasPrefix(in, "rgba(") && strings.HasSuffix(in, ")"):
		return parseFunc(in[len("rgba("):len(in)-1], 4, s)
	case strings.HasPrefix(in, "rgb(") && strings.HasSuffix(in, ")"):
		return parseFunc(in[len("rgb("):len(in)-1], 3, s)
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// MustParseColor is ParseColor for compile-time constants.
func MustParseColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FormatColor renders c in the rgba() form accepted by ParseColor.
func FormatColor(c color.NRGBA) string {
	a := strconv.FormatFloat(float64(c.A)/255, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, a)
}

func parseHex(in, orig string) (color.NRGBA, error) {
	digits := in[1:]
	switch len(digits) {
	case 3, 4, 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, orig)
	}
	if _, err := strconv.ParseUint(digits, 16, 32); err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, orig)
	}
	rgba := gg.Hex(digits)
	return color.NRGBA{
		R: unitToByte(rgba.R),
		G: unitToByte(rgba.G),
		B: unitToByte(rgba.B),
		A: unitToByte(rgba.A),
	}, nil
}

func parseFunc(args string, want int, orig string) (color.NRGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != want {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, orig)
	}
	var channels [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, orig)
		}
		channels[i] = uint8(math.Round(v))
	}
	alpha := uint8(255)
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, orig)
		}
		alpha = unitToByte(a)
	}
	return color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: alpha}, nil
}

func unitToByte(v float64) uint8 {
	return uint8(math.Round(clampUnit(v) * 255))
}
