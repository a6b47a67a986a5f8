package pattern

import (
	"image/color"

	"github.com/sugallat/squarebg/internal/seededrng"
)

// AlphaBand names the opacity range a cell's alpha was drawn from.
type AlphaBand int

const (
	BandSharp AlphaBand = iota
	BandSoft
	BandMid
)

func (b AlphaBand) String() string {
	switch b {
	case BandSoft:
		return "soft"
	case BandMid:
		return "mid"
	default:
		return "sharp"
	}
}

// CellStyle is the per-cell decision sampled from a tile's stream.
type CellStyle struct {
	Accent    bool
	Band      AlphaBand
	Alpha     float64
	LineWidth float64
	Heavy     bool
	Dashed    bool
}

// Color picks the stroke colour for the style.
func (s CellStyle) Color(cfg *Config) color.NRGBA {
	if s.Accent {
		return cfg.AccentStrokeColor
	}
	return cfg.StrokeColor
}

// sampleStyle draws one cell's style. The draw order is fixed: accent, band,
// alpha, then (when varied) weight and dash. Reordering changes every
// rendered background for a given seed.
func sampleStyle(rng *seededrng.Rand, cfg *Config, varied bool) CellStyle {
	var s CellStyle
	s.Accent = rng.Chance(cfg.AccentRate)

	midRate := 0.0
	if varied {
		midRate = cfg.MidRate
	}
	band := rng.Float64()
	switch {
	case band < cfg.SoftRate:
		s.Band = BandSoft
		s.Alpha = rng.Between(softAlphaMin, softAlphaMax)
	case band < cfg.SoftRate+midRate:
		s.Band = BandMid
		s.Alpha = rng.Between(cfg.OpacityMedMin, cfg.OpacityMedMax)
	default:
		s.Band = BandSharp
		s.Alpha = rng.Between(cfg.OpacityMin, cfg.OpacityMax)
	}

	s.LineWidth = cfg.StrokeWidth
	if !varied {
		return s
	}
	if rng.Chance(cfg.WeightVarRate) {
		s.Heavy = true
		s.LineWidth = cfg.StrokeWidth * cfg.HeavyWeight
	}
	s.Dashed = rng.Chance(cfg.DashRate)
	return s
}
