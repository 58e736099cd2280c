// Package config loads the renderer's TOML configuration and converts it
// into the settings of each component.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"meaningfield/field/canvas"
	"meaningfield/field/compositor"
	"meaningfield/field/driver"
	"meaningfield/field/meaning"
	"meaningfield/field/primitives"
	"meaningfield/hal"
)

const (
	StrategyUnified = "unified"
	StrategyLayered = "layered"
)

type Surface struct {
	Width       int
	Height      int
	Scale       int
	PixelFormat string
}

type Driver struct {
	Hz        int
	FixedStep time.Duration
	MaxStep   time.Duration
	MaxPixels int
	Seed      uint64
}

type Salience struct {
	Fade float64
	Keep int
}

type Compositor struct {
	Strategy     string
	Workers      int
	BandRows     int
	Overlays     bool
	OverlayRamp  float64
	Labels       bool
	LabelScale   int
	MinIntensity float64
	// Blend maps dimension names to blend mode names for the layered
	// strategy.
	Blend map[string]string
}

type Feed struct {
	Vector string
	Script string
	// Calm shows meaning.Calm when neither a vector nor a script is given.
	Calm bool
}

// Config is the full renderer configuration.
type Config struct {
	Surface    Surface
	Driver     Driver
	Salience   Salience
	Compositor Compositor
	Primitives primitives.Params
	Feed       Feed
	LogLevel   string
}

func Default() Config {
	d := driver.DefaultConfig()
	return Config{
		Surface: Surface{Width: d.Width, Height: d.Height, Scale: 1, PixelFormat: "rgba8888"},
		Driver: Driver{
			Hz:        60,
			FixedStep: d.FixedStep,
			MaxStep:   d.MaxStep,
			MaxPixels: d.MaxPixels,
		},
		Salience: Salience{Fade: meaning.DefaultFadeFactor, Keep: meaning.DefaultKeep},
		Compositor: Compositor{
			Strategy:     StrategyUnified,
			Overlays:     true,
			OverlayRamp:  0.1,
			LabelScale:   1,
			MinIntensity: 0.01,
		},
		Primitives: primitives.DefaultParams(),
		Feed:       Feed{Calm: true},
		LogLevel:   "info",
	}
}

type fileConfig struct {
	LogLevel string `toml:"log_level"`
	Surface  struct {
		Width       int    `toml:"width"`
		Height      int    `toml:"height"`
		Scale       int    `toml:"scale"`
		PixelFormat string `toml:"pixel_format"`
	} `toml:"surface"`
	Driver struct {
		Hz        int    `toml:"hz"`
		FixedStep string `toml:"fixed_step"`
		MaxStep   string `toml:"max_step"`
		MaxPixels int    `toml:"max_pixels"`
		Seed      int64  `toml:"seed"`
	} `toml:"driver"`
	Salience struct {
		Fade float64 `toml:"fade"`
		Keep int     `toml:"keep"`
	} `toml:"salience"`
	Compositor struct {
		Strategy     string            `toml:"strategy"`
		Workers      int               `toml:"workers"`
		BandRows     int               `toml:"band_rows"`
		Overlays     bool              `toml:"overlays"`
		OverlayRamp  float64           `toml:"overlay_ramp"`
		Labels       bool              `toml:"labels"`
		LabelScale   int               `toml:"label_scale"`
		MinIntensity float64           `toml:"min_intensity"`
		Blend        map[string]string `toml:"blend"`
	} `toml:"compositor"`
	Primitives struct {
		SubSpiralDepth        int     `toml:"sub_spiral_depth"`
		TetherMaxDepth        int     `toml:"tether_max_depth"`
		BranchProbability     float64 `toml:"branch_probability"`
		BranchReseedHz        float64 `toml:"branch_reseed_hz"`
		BloomMaxDepth         int     `toml:"bloom_max_depth"`
		InterferenceRings     int     `toml:"interference_rings"`
		InterferenceSpacing   float64 `toml:"interference_spacing"`
		InterferenceMaxRadius float64 `toml:"interference_max_radius"`
	} `toml:"primitives"`
	Feed struct {
		Vector string `toml:"vector"`
		Script string `toml:"script"`
		Calm   bool   `toml:"calm"`
	} `toml:"feed"`
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, 0, len(undec))
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("surface", "width") {
		cfg.Surface.Width = raw.Surface.Width
	}
	if meta.IsDefined("surface", "height") {
		cfg.Surface.Height = raw.Surface.Height
	}
	if meta.IsDefined("surface", "scale") {
		cfg.Surface.Scale = raw.Surface.Scale
	}
	if meta.IsDefined("surface", "pixel_format") {
		cfg.Surface.PixelFormat = strings.TrimSpace(raw.Surface.PixelFormat)
	}

	if meta.IsDefined("driver", "hz") {
		cfg.Driver.Hz = raw.Driver.Hz
	}
	if meta.IsDefined("driver", "fixed_step") {
		d, err := parseDuration(raw.Driver.FixedStep)
		if err != nil {
			return Config{}, fmt.Errorf("parse driver.fixed_step: %w", err)
		}
		cfg.Driver.FixedStep = d
	}
	if meta.IsDefined("driver", "max_step") {
		d, err := parseDuration(raw.Driver.MaxStep)
		if err != nil {
			return Config{}, fmt.Errorf("parse driver.max_step: %w", err)
		}
		cfg.Driver.MaxStep = d
	}
	if meta.IsDefined("driver", "max_pixels") {
		cfg.Driver.MaxPixels = raw.Driver.MaxPixels
	}
	if meta.IsDefined("driver", "seed") {
		cfg.Driver.Seed = uint64(raw.Driver.Seed)
	}

	if meta.IsDefined("salience", "fade") {
		cfg.Salience.Fade = raw.Salience.Fade
	}
	if meta.IsDefined("salience", "keep") {
		cfg.Salience.Keep = raw.Salience.Keep
	}

	c := &cfg.Compositor
	if meta.IsDefined("compositor", "strategy") {
		c.Strategy = strings.ToLower(strings.TrimSpace(raw.Compositor.Strategy))
	}
	if meta.IsDefined("compositor", "workers") {
		c.Workers = raw.Compositor.Workers
	}
	if meta.IsDefined("compositor", "band_rows") {
		c.BandRows = raw.Compositor.BandRows
	}
	if meta.IsDefined("compositor", "overlays") {
		c.Overlays = raw.Compositor.Overlays
	}
	if meta.IsDefined("compositor", "overlay_ramp") {
		c.OverlayRamp = raw.Compositor.OverlayRamp
	}
	if meta.IsDefined("compositor", "labels") {
		c.Labels = raw.Compositor.Labels
	}
	if meta.IsDefined("compositor", "label_scale") {
		c.LabelScale = raw.Compositor.LabelScale
	}
	if meta.IsDefined("compositor", "min_intensity") {
		c.MinIntensity = raw.Compositor.MinIntensity
	}
	if meta.IsDefined("compositor", "blend") {
		c.Blend = raw.Compositor.Blend
	}

	p := &cfg.Primitives
	rp := raw.Primitives
	if meta.IsDefined("primitives", "sub_spiral_depth") {
		p.SubSpiralDepth = rp.SubSpiralDepth
	}
	if meta.IsDefined("primitives", "tether_max_depth") {
		p.TetherMaxDepth = rp.TetherMaxDepth
	}
	if meta.IsDefined("primitives", "branch_probability") {
		p.BranchProbability = rp.BranchProbability
	}
	if meta.IsDefined("primitives", "branch_reseed_hz") {
		p.BranchReseedHz = rp.BranchReseedHz
	}
	if meta.IsDefined("primitives", "bloom_max_depth") {
		p.BloomMaxDepth = rp.BloomMaxDepth
	}
	if meta.IsDefined("primitives", "interference_rings") {
		p.InterferenceRings = rp.InterferenceRings
	}
	if meta.IsDefined("primitives", "interference_spacing") {
		p.InterferenceSpacing = rp.InterferenceSpacing
	}
	if meta.IsDefined("primitives", "interference_max_radius") {
		p.InterferenceMaxRadius = rp.InterferenceMaxRadius
	}

	if meta.IsDefined("feed", "vector") {
		cfg.Feed.Vector = strings.TrimSpace(raw.Feed.Vector)
	}
	if meta.IsDefined("feed", "script") {
		cfg.Feed.Script = strings.TrimSpace(raw.Feed.Script)
	}
	if meta.IsDefined("feed", "calm") {
		cfg.Feed.Calm = raw.Feed.Calm
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Surface.Width < 0 || c.Surface.Height < 0 {
		errs = append(errs, fmt.Errorf("surface size %dx%d is negative", c.Surface.Width, c.Surface.Height))
	}
	if c.Surface.Scale < 1 {
		errs = append(errs, fmt.Errorf("surface.scale must be >= 1, got %d", c.Surface.Scale))
	}
	if _, err := hal.ParsePixelFormat(c.Surface.PixelFormat); err != nil {
		errs = append(errs, fmt.Errorf("surface.pixel_format: %w", err))
	}
	if c.Driver.Hz <= 0 {
		errs = append(errs, fmt.Errorf("driver.hz must be > 0, got %d", c.Driver.Hz))
	}
	if c.Driver.FixedStep < 0 {
		errs = append(errs, fmt.Errorf("driver.fixed_step must not be negative, got %v", c.Driver.FixedStep))
	}
	if c.Driver.MaxStep <= 0 {
		errs = append(errs, fmt.Errorf("driver.max_step must be > 0, got %v", c.Driver.MaxStep))
	}
	if c.Driver.MaxPixels < 0 {
		errs = append(errs, fmt.Errorf("driver.max_pixels must not be negative, got %d", c.Driver.MaxPixels))
	}
	if !(c.Salience.Fade > 0 && c.Salience.Fade <= 1) {
		errs = append(errs, fmt.Errorf("salience.fade must be in (0,1], got %v", c.Salience.Fade))
	}
	if c.Salience.Keep < 1 || c.Salience.Keep > meaning.NumDimensions {
		errs = append(errs, fmt.Errorf("salience.keep must be in [1,%d], got %d", meaning.NumDimensions, c.Salience.Keep))
	}
	switch c.Compositor.Strategy {
	case StrategyUnified, StrategyLayered:
	default:
		errs = append(errs, fmt.Errorf("compositor.strategy must be %q or %q, got %q", StrategyUnified, StrategyLayered, c.Compositor.Strategy))
	}
	if c.Compositor.MinIntensity < 0 || c.Compositor.MinIntensity >= 1 {
		errs = append(errs, fmt.Errorf("compositor.min_intensity must be in [0,1), got %v", c.Compositor.MinIntensity))
	}
	if _, err := c.blendOverrides(); err != nil {
		errs = append(errs, err)
	}
	if p := c.Primitives.BranchProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("primitives.branch_probability must be in [0,1], got %v", p))
	}
	for _, depth := range []struct {
		key string
		v   int
	}{
		{"sub_spiral_depth", c.Primitives.SubSpiralDepth},
		{"tether_max_depth", c.Primitives.TetherMaxDepth},
		{"bloom_max_depth", c.Primitives.BloomMaxDepth},
	} {
		if depth.v < 0 {
			errs = append(errs, fmt.Errorf("primitives.%s must be >= 0, got %d", depth.key, depth.v))
		}
	}
	return errors.Join(errs...)
}

func (c Config) blendOverrides() (map[meaning.Dimension]canvas.BlendMode, error) {
	if len(c.Compositor.Blend) == 0 {
		return nil, nil
	}
	out := make(map[meaning.Dimension]canvas.BlendMode, len(c.Compositor.Blend))
	for name, mode := range c.Compositor.Blend {
		d, err := meaning.ParseDimension(name)
		if err != nil {
			return nil, fmt.Errorf("compositor.blend: %w", err)
		}
		m, err := canvas.ParseBlendMode(mode)
		if err != nil {
			return nil, fmt.Errorf("compositor.blend.%s: %w", name, err)
		}
		out[d] = m
	}
	return out, nil
}

// PixelFormat returns the parsed surface format. Call Validate first.
func (c Config) PixelFormat() hal.PixelFormat {
	f, err := hal.ParsePixelFormat(c.Surface.PixelFormat)
	if err != nil {
		return hal.PixelFormatRGBA8888
	}
	return f
}

func (c Config) SalienceOptions() []meaning.SalienceOption {
	return []meaning.SalienceOption{
		meaning.WithFadeFactor(c.Salience.Fade),
		meaning.WithKeep(c.Salience.Keep),
	}
}

func (c Config) DriverConfig() driver.Config {
	return driver.Config{
		Width:     c.Surface.Width,
		Height:    c.Surface.Height,
		MaxPixels: c.Driver.MaxPixels,
		FixedStep: c.Driver.FixedStep,
		MaxStep:   c.Driver.MaxStep,
		Seed:      c.Driver.Seed,
		Salience:  c.SalienceOptions(),
	}
}

func (c Config) UnifiedConfig() compositor.UnifiedConfig {
	return compositor.UnifiedConfig{
		Workers:     c.Compositor.Workers,
		BandRows:    c.Compositor.BandRows,
		Overlays:    c.Compositor.Overlays,
		OverlayRamp: c.Compositor.OverlayRamp,
	}
}

func (c Config) LayeredConfig() (compositor.LayeredConfig, error) {
	blend, err := c.blendOverrides()
	if err != nil {
		return compositor.LayeredConfig{}, err
	}
	return compositor.LayeredConfig{
		MinIntensity: c.Compositor.MinIntensity,
		Blend:        blend,
		Params:       c.Primitives,
	}, nil
}

// NewCompositor builds the configured strategy, wrapped with captions when
// labels are enabled.
func (c Config) NewCompositor() (compositor.Compositor, error) {
	var comp compositor.Compositor
	switch c.Compositor.Strategy {
	case StrategyLayered:
		lc, err := c.LayeredConfig()
		if err != nil {
			return nil, err
		}
		comp = compositor.NewLayered(lc)
	case StrategyUnified, "":
		comp = compositor.NewUnified(c.UnifiedConfig())
	default:
		return nil, fmt.Errorf("unknown compositor strategy %q", c.Compositor.Strategy)
	}
	if c.Compositor.Labels {
		comp = compositor.Labelled{Compositor: comp, Labels: compositor.NewLabels(c.Compositor.LabelScale)}
	}
	return comp, nil
}
