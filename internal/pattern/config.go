package pattern

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/sugallat/squarebg/internal/render"
)

// Defaults tuned for an airy look on light section backgrounds.
const (
	DefaultBaseGrid      = 56.0
	DefaultSeed          = "sugallat-blue-squares"
	DefaultStrokeColor   = "rgba(59, 130, 246, 1)"
	DefaultAccentColor   = "rgba(96, 165, 250, 1)"
	DefaultStrokeWidth   = 1.0
	DefaultHeavyWeight   = 1.75
	DefaultOpacityMin    = 0.6
	DefaultOpacityMax    = 0.85
	DefaultOpacityMedMin = 0.5
	DefaultOpacityMedMax = 0.65
	DefaultAccentRate    = 0.10
	DefaultSoftRate      = 0.30
	DefaultShadowAlpha   = 0.08
	DefaultShadowBlur    = 1.0

	// Cells per tile side when TileSize is not given.
	DefaultCellsPerTile = 16
	// Gutter as a fraction of BaseGrid when Gutter is not given.
	DefaultGutterRatio = 0.12

	softAlphaMin = 0.30
	softAlphaMax = 0.45

	cornerRadiusRatio = 0.125
)

var dashPattern = []float64{6, 4}

// Config is a fully resolved set of drawing parameters. Build one with
// DefaultConfig or Options.Resolve; the zero value is not useful.
type Config struct {
	BaseGrid float64
	TileSize float64
	Seed     Seed

	StrokeColor       color.NRGBA
	AccentStrokeColor color.NRGBA
	StrokeWidth       float64
	HeavyWeight       float64

	OpacityMin    float64
	OpacityMax    float64
	OpacityMedMin float64
	OpacityMedMax float64

	AccentRate    float64
	SoftRate      float64
	MidRate       float64
	WeightVarRate float64
	DashRate      float64

	Gutter float64

	// Strategy lays out the cells of each tile.
	Strategy Strategy

	ShadowAlpha float64
	ShadowBlur  float64
	Clear       bool
}

// DefaultConfig is what an empty Options resolves to.
func DefaultConfig() Config {
	return Options{}.Resolve()
}

// Options is the partial, caller-facing form of Config. Nil fields take
// their documented default.
type Options struct {
	BaseGrid *float64 `koanf:"base_grid" json:"base_grid,omitempty" yaml:"base_grid,omitempty"`
	// TileSize defaults to 16 × BaseGrid.
	TileSize *float64 `koanf:"tile_size" json:"tile_size,omitempty" yaml:"tile_size,omitempty"`
	Seed     *Seed    `koanf:"-" json:"seed,omitempty" yaml:"seed,omitempty"`

	StrokeColor       *string  `koanf:"stroke_color" json:"stroke_color,omitempty" yaml:"stroke_color,omitempty"`
	AccentStrokeColor *string  `koanf:"accent_stroke_color" json:"accent_stroke_color,omitempty" yaml:"accent_stroke_color,omitempty"`
	StrokeWidth       *float64 `koanf:"stroke_width" json:"stroke_width,omitempty" yaml:"stroke_width,omitempty"`
	HeavyWeight       *float64 `koanf:"heavy_weight" json:"heavy_weight,omitempty" yaml:"heavy_weight,omitempty"`

	OpacityMin    *float64 `koanf:"opacity_min" json:"opacity_min,omitempty" yaml:"opacity_min,omitempty"`
	OpacityMax    *float64 `koanf:"opacity_max" json:"opacity_max,omitempty" yaml:"opacity_max,omitempty"`
	OpacityMedMin *float64 `koanf:"opacity_med_min" json:"opacity_med_min,omitempty" yaml:"opacity_med_min,omitempty"`
	OpacityMedMax *float64 `koanf:"opacity_med_max" json:"opacity_med_max,omitempty" yaml:"opacity_med_max,omitempty"`

	AccentRate    *float64 `koanf:"accent_rate" json:"accent_rate,omitempty" yaml:"accent_rate,omitempty"`
	SoftRate      *float64 `koanf:"soft_rate" json:"soft_rate,omitempty" yaml:"soft_rate,omitempty"`
	MidRate       *float64 `koanf:"mid_rate" json:"mid_rate,omitempty" yaml:"mid_rate,omitempty"`
	WeightVarRate *float64 `koanf:"weight_var_rate" json:"weight_var_rate,omitempty" yaml:"weight_var_rate,omitempty"`
	DashRate      *float64 `koanf:"dash_rate" json:"dash_rate,omitempty" yaml:"dash_rate,omitempty"`

	// Gutter defaults to round(BaseGrid × 0.12).
	Gutter *float64 `koanf:"gutter" json:"gutter,omitempty" yaml:"gutter,omitempty"`
	// FullGrid selects DenseGrid (default) or the legacy SparseClusters layout.
	FullGrid *bool `koanf:"full_grid" json:"full_grid,omitempty" yaml:"full_grid,omitempty"`

	ShadowAlpha *float64 `koanf:"shadow_alpha" json:"shadow_alpha,omitempty" yaml:"shadow_alpha,omitempty"`
	ShadowBlur  *float64 `koanf:"shadow_blur" json:"shadow_blur,omitempty" yaml:"shadow_blur,omitempty"`
	Clear       *bool    `koanf:"clear" json:"clear,omitempty" yaml:"clear,omitempty"`
}

// Ptr is a helper for filling Options literals.
func Ptr[T any](v T) *T { return &v }

// Merge returns o with every non-nil field of over applied on top.
func (o Options) Merge(over Options) Options {
	o.BaseGrid = pick(o.BaseGrid, over.BaseGrid)
	o.TileSize = pick(o.TileSize, over.TileSize)
	o.Seed = pick(o.Seed, over.Seed)
	o.StrokeColor = pick(o.StrokeColor, over.StrokeColor)
	o.AccentStrokeColor = pick(o.AccentStrokeColor, over.AccentStrokeColor)
	o.StrokeWidth = pick(o.StrokeWidth, over.StrokeWidth)
	o.HeavyWeight = pick(o.HeavyWeight, over.HeavyWeight)
	o.OpacityMin = pick(o.OpacityMin, over.OpacityMin)
	o.OpacityMax = pick(o.OpacityMax, over.OpacityMax)
	o.OpacityMedMin = pick(o.OpacityMedMin, over.OpacityMedMin)
	o.OpacityMedMax = pick(o.OpacityMedMax, over.OpacityMedMax)
	o.AccentRate = pick(o.AccentRate, over.AccentRate)
	o.SoftRate = pick(o.SoftRate, over.SoftRate)
	o.MidRate = pick(o.MidRate, over.MidRate)
	o.WeightVarRate = pick(o.WeightVarRate, over.WeightVarRate)
	o.DashRate = pick(o.DashRate, over.DashRate)
	o.Gutter = pick(o.Gutter, over.Gutter)
	o.FullGrid = pick(o.FullGrid, over.FullGrid)
	o.ShadowAlpha = pick(o.ShadowAlpha, over.ShadowAlpha)
	o.ShadowBlur = pick(o.ShadowBlur, over.ShadowBlur)
	o.Clear = pick(o.Clear, over.Clear)
	return o
}

func pick[T any](base, over *T) *T {
	if over != nil {
		return over
	}
	return base
}

// Resolve fills defaults. Sizes are clamped so the tile loops always advance;
// colours that fail to parse fall back to the default colours. Validate
// reports those problems instead of hiding them.
func (o Options) Resolve() Config {
	cfg := Config{
		BaseGrid:          or(o.BaseGrid, DefaultBaseGrid),
		Seed:              StringSeed(DefaultSeed),
		StrokeColor:       colorOr(o.StrokeColor, DefaultStrokeColor),
		AccentStrokeColor: colorOr(o.AccentStrokeColor, DefaultAccentColor),
		StrokeWidth:       or(o.StrokeWidth, DefaultStrokeWidth),
		HeavyWeight:       or(o.HeavyWeight, DefaultHeavyWeight),
		OpacityMin:        or(o.OpacityMin, DefaultOpacityMin),
		OpacityMax:        or(o.OpacityMax, DefaultOpacityMax),
		OpacityMedMin:     or(o.OpacityMedMin, DefaultOpacityMedMin),
		OpacityMedMax:     or(o.OpacityMedMax, DefaultOpacityMedMax),
		AccentRate:        or(o.AccentRate, DefaultAccentRate),
		SoftRate:          or(o.SoftRate, DefaultSoftRate),
		MidRate:           or(o.MidRate, 0),
		WeightVarRate:     or(o.WeightVarRate, 0),
		DashRate:          or(o.DashRate, 0),
		ShadowAlpha:       or(o.ShadowAlpha, DefaultShadowAlpha),
		ShadowBlur:        or(o.ShadowBlur, DefaultShadowBlur),
		Clear:             or(o.Clear, true),
		Strategy:          DenseGrid{},
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if !or(o.FullGrid, true) {
		cfg.Strategy = SparseClusters{}
	}
	if !(cfg.BaseGrid >= 1) {
		cfg.BaseGrid = 1
	}
	cfg.TileSize = or(o.TileSize, cfg.BaseGrid*DefaultCellsPerTile)
	if !(cfg.TileSize >= cfg.BaseGrid) {
		cfg.TileSize = cfg.BaseGrid
	}
	cfg.Gutter = or(o.Gutter, jsRound(cfg.BaseGrid*DefaultGutterRatio))
	return cfg
}

// Validate reports values outside their documented ranges.
func (o Options) Validate() error {
	var errs fieldErrors
	positive := func(name string, v *float64) {
		if v != nil && !(*v > 0) {
			errs.add(name, "must be positive")
		}
	}
	unit := func(name string, v *float64) {
		if v != nil && !(*v >= 0 && *v <= 1) {
			errs.add(name, "must be within [0, 1]")
		}
	}
	colour := func(name string, v *string) {
		if v == nil {
			return
		}
		if _, err := render.ParseColor(*v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	positive("base_grid", o.BaseGrid)
	positive("tile_size", o.TileSize)
	positive("stroke_width", o.StrokeWidth)
	positive("heavy_weight", o.HeavyWeight)
	colour("stroke_color", o.StrokeColor)
	colour("accent_stroke_color", o.AccentStrokeColor)
	unit("opacity_min", o.OpacityMin)
	unit("opacity_max", o.OpacityMax)
	unit("opacity_med_min", o.OpacityMedMin)
	unit("opacity_med_max", o.OpacityMedMax)
	unit("accent_rate", o.AccentRate)
	unit("soft_rate", o.SoftRate)
	unit("mid_rate", o.MidRate)
	unit("weight_var_rate", o.WeightVarRate)
	unit("dash_rate", o.DashRate)
	unit("shadow_alpha", o.ShadowAlpha)
	if o.Gutter != nil && !(*o.Gutter >= 0) {
		errs.add("gutter", "must not be negative")
	}
	if o.ShadowBlur != nil && !(*o.ShadowBlur >= 0) {
		errs.add("shadow_blur", "must not be negative")
	}

	if o.TileSize != nil && *o.TileSize < or(o.BaseGrid, DefaultBaseGrid) {
		errs.add("tile_size", "must be at least base_grid")
	}
	cfg := o.Resolve()
	if cfg.OpacityMin > cfg.OpacityMax {
		errs.add("opacity_min", "must not exceed opacity_max")
	}
	if cfg.OpacityMedMin > cfg.OpacityMedMax {
		errs.add("opacity_med_min", "must not exceed opacity_med_max")
	}
	if cfg.SoftRate+cfg.MidRate > 1 {
		errs.add("mid_rate", "soft_rate + mid_rate must not exceed 1")
	}
	return errs.err()
}

type fieldErrors []error

func (e *fieldErrors) add(field, msg string) {
	*e = append(*e, fmt.Errorf("%s %s", field, msg))
}

func (e fieldErrors) err() error { return errors.Join(e...) }

func or[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func colorOr(v *string, def string) color.NRGBA {
	if v != nil {
		if c, err := render.ParseColor(*v); err == nil {
			return c
		}
	}
	return render.MustParseColor(def)
}

// jsRound rounds half toward positive infinity.
func jsRound(v float64) float64 {
	return math.Floor(v + 0.5)
}
