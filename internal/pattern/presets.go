package pattern

import (
	"errors"
	"fmt"
	"slices"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Settings shared by the site's page sections.
var sectionBase = Options{
	BaseGrid: Ptr(128.0),
	Seed:     Ptr(StringSeed(DefaultSeed)),
	FullGrid: Ptr(true),
}

var presets = map[string]Options{
	"default": {},
	"hero": sectionBase.Merge(Options{
		SoftRate:      Ptr(0.65),
		MidRate:       Ptr(0.2),
		OpacityMedMin: Ptr(0.4),
		OpacityMedMax: Ptr(0.5),
		AccentRate:    Ptr(0.05),
		DashRate:      Ptr(0.0),
		WeightVarRate: Ptr(0.2),
		HeavyWeight:   Ptr(2.0),
		OpacityMin:    Ptr(0.28),
		OpacityMax:    Ptr(0.42),
		ShadowAlpha:   Ptr(0.02),
	}),
	"footer": sectionBase.Merge(Options{
		SoftRate:          Ptr(0.45),
		AccentRate:        Ptr(0.08),
		OpacityMin:        Ptr(0.24),
		OpacityMax:        Ptr(0.34),
		StrokeColor:       Ptr("rgba(51, 65, 85, 1)"),
		AccentStrokeColor: Ptr("rgba(71, 85, 105, 1)"),
		ShadowAlpha:       Ptr(0.0),
	}),
}

// Preset returns the built-in options for a page section.
func Preset(name string) (Options, error) {
	o, ok := presets[name]
	if !ok {
		return Options{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return o, nil
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
