package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/render"
	"github.com/sugallat/squarebg/internal/state"
)

const (
	maxImageSide  = render.MaxBufferSide
	defaultWidth  = 1280
	defaultHeight = 720
	cacheControl  = "public, max-age=86400"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type sectionsResponse struct {
	Sections []string `json:"sections"`
	Default  string   `json:"default"`
}

type sectionResponse struct {
	Name     string          `json:"name"`
	Options  pattern.Options `json:"options"`
	Strategy string          `json:"strategy"`
	TileSize float64         `json:"tile_size"`
	Gutter   float64         `json:"gutter"`
	BaseSeed uint32          `json:"base_seed"`
}

// SectionSource is where handlers read the active sections from.
type SectionSource interface {
	Snapshot() state.State
}

type apiV1 struct {
	sections SectionSource
	metrics  *Metrics
	logger   Logger
}

func (a *apiV1) routes(r chi.Router) {
	r.Get("/background.png", a.handleBackground)
	r.Get("/tiles/{tx}/{ty}.png", a.handleTile)
	r.Get("/sections", a.handleSections)
	r.Get("/sections/{name}", a.handleSection)
}

func (a *apiV1) handleBackground(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := sideParam(q, "width", defaultWidth)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_width", err.Error())
		return
	}
	height, err := sideParam(q, "height", defaultHeight)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_height", err.Error())
		return
	}
	dpr, err := dprParam(q)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_dpr", err.Error())
		return
	}
	if math.Max(width, height)*dpr > maxImageSide {
		writeAPIError(w, http.StatusBadRequest, "image_too_large",
			fmt.Sprintf("%gx%g at dpr %g exceeds %d px per side", width, height, dpr, maxImageSide))
		return
	}
	opts, ok := a.options(w, q)
	if !ok {
		return
	}

	etag := entityTag(opts, "bg", width, height, dpr)
	if notModified(w, r, etag) {
		return
	}

	start := time.Now()
	canvas := render.NewCanvas(width, height, dpr)
	defer canvas.Close()
	pattern.Render(canvas, opts.Resolve())
	a.writePNG(w, canvas, etag, "background", start)
}

func (a *apiV1) handleTile(w http.ResponseWriter, r *http.Request) {
	tx, errX := strconv.Atoi(chi.URLParam(r, "tx"))
	ty, errY := strconv.Atoi(chi.URLParam(r, "ty"))
	if errX != nil || errY != nil || tx < 0 || ty < 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid_tile", "tile coordinates must be non-negative integers")
		return
	}
	q := r.URL.Query()
	dpr, err := dprParam(q)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_dpr", err.Error())
		return
	}
	opts, ok := a.options(w, q)
	if !ok {
		return
	}
	cfg := opts.Resolve()
	if cfg.TileSize*dpr > maxImageSide {
		writeAPIError(w, http.StatusBadRequest, "tile_too_large",
			fmt.Sprintf("tile of %g px at dpr %g exceeds %d px", cfg.TileSize, dpr, maxImageSide))
		return
	}

	etag := entityTag(opts, fmt.Sprintf("tile:%d:%d", tx, ty), cfg.TileSize, cfg.TileSize, dpr)
	if notModified(w, r, etag) {
		return
	}

	start := time.Now()
	canvas := render.NewCanvas(cfg.TileSize, cfg.TileSize, dpr)
	defer canvas.Close()
	pattern.RenderTile(canvas, tx, ty, cfg)
	a.writePNG(w, canvas, etag, "tile", start)
}

func (a *apiV1) handleSections(w http.ResponseWriter, r *http.Request) {
	snap := a.sections.Snapshot()
	writeJSON(w, http.StatusOK, sectionsResponse{Sections: snap.SectionNames(), Default: snap.DefaultSection})
}

func (a *apiV1) handleSection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	opts, ok := a.sections.Snapshot().Section(name)
	if !ok {
		writeAPIError(w, http.StatusNotFound, "unknown_section", fmt.Sprintf("no section named %q", name))
		return
	}
	cfg := opts.Resolve()
	writeJSON(w, http.StatusOK, sectionResponse{
		Name:     name,
		Options:  opts,
		Strategy: cfg.Strategy.Name(),
		TileSize: cfg.TileSize,
		Gutter:   cfg.Gutter,
		BaseSeed: cfg.Seed.Uint32(),
	})
}

// options resolves the requested section and applies query overrides. It
// writes the error response itself and returns false on failure.
func (a *apiV1) options(w http.ResponseWriter, q url.Values) (pattern.Options, bool) {
	name := q.Get("section")
	base, ok := a.sections.Snapshot().Section(name)
	if !ok {
		writeAPIError(w, http.StatusNotFound, "unknown_section", fmt.Sprintf("no section named %q", name))
		return pattern.Options{}, false
	}
	over, err := optionOverrides(q)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_option", err.Error())
		return pattern.Options{}, false
	}
	opts := base.Merge(over)
	if err := opts.Validate(); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_option", err.Error())
		return pattern.Options{}, false
	}
	return opts, true
}

func (a *apiV1) writePNG(w http.ResponseWriter, canvas *render.Canvas, etag, kind string, start time.Time) {
	var buf bytes.Buffer
	if err := canvas.EncodePNG(&buf); err != nil {
		a.logger.Errorf("web", "encode %s: %v", kind, err)
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	a.metrics.Observe(kind, time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// optionOverrides reads any pattern option given as a query parameter.
// Seeds given this way are always strings.
func optionOverrides(q url.Values) (pattern.Options, error) {
	var o pattern.Options
	floats := []struct {
		name string
		dst  **float64
	}{
		{"base_grid", &o.BaseGrid},
		{"tile_size", &o.TileSize},
		{"stroke_width", &o.StrokeWidth},
		{"heavy_weight", &o.HeavyWeight},
		{"opacity_min", &o.OpacityMin},
		{"opacity_max", &o.OpacityMax},
		{"opacity_med_min", &o.OpacityMedMin},
		{"opacity_med_max", &o.OpacityMedMax},
		{"accent_rate", &o.AccentRate},
		{"soft_rate", &o.SoftRate},
		{"mid_rate", &o.MidRate},
		{"weight_var_rate", &o.WeightVarRate},
		{"dash_rate", &o.DashRate},
		{"gutter", &o.Gutter},
		{"shadow_alpha", &o.ShadowAlpha},
		{"shadow_blur", &o.ShadowBlur},
	}
	var errs []error
	for _, f := range floats {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", f.name, raw))
			continue
		}
		*f.dst = &v
	}
	for name, dst := range map[string]**bool{"full_grid": &o.FullGrid, "clear": &o.Clear} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a boolean", name, raw))
			continue
		}
		*dst = &v
	}
	if raw := q.Get("stroke_color"); raw != "" {
		o.StrokeColor = &raw
	}
	if raw := q.Get("accent_stroke_color"); raw != "" {
		o.AccentStrokeColor = &raw
	}
	if q.Has("seed") {
		o.Seed = pattern.Ptr(pattern.StringSeed(q.Get("seed")))
	}
	return o, errors.Join(errs...)
}

func sideParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 1 || v > maxImageSide {
		return 0, fmt.Errorf("%s must be a number in [1, %d]", name, maxImageSide)
	}
	return v, nil
}

func dprParam(q url.Values) (float64, error) {
	raw := q.Get("dpr")
	if raw == "" {
		return 1, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("dpr must be a positive number")
	}
	return render.CapDevicePixelRatio(v), nil
}

// entityTag identifies an image by everything that determines its pixels.
func entityTag(opts pattern.Options, kind string, width, height, dpr float64) string {
	h := fnv.New64a()
	_ = json.NewEncoder(h).Encode(opts)
	fmt.Fprintf(h, "%s|%g|%g|%g", kind, width, height, dpr)
	return fmt.Sprintf(`"%016x"`, h.Sum64())
}

func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	if r.Header.Get("If-None-Match") != etag {
		return false
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusNotModified)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
