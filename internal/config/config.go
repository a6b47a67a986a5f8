package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/sugallat/squarebg/internal/pattern"
	"github.com/sugallat/squarebg/internal/web"
)

const (
	// EnvPrefix marks environment overrides. A double underscore nests:
	// SQUAREBG_SECTIONS__HERO__SOFT_RATE sets sections.hero.soft_rate.
	EnvPrefix = "SQUAREBG_"

	DefaultPath        = "squarebg.yaml"
	DefaultDevice      = "/dev/fb0"
	DefaultSectionName = "hero"
)

// Sections every config starts with. File and environment keys override
// them field by field.
var builtinSections = []string{"hero", "footer"}

type DisplayConfig struct {
	Device  string `koanf:"device" yaml:"device"`
	Section string `koanf:"section" yaml:"section,omitempty"`
	Caption string `koanf:"caption" yaml:"caption,omitempty"`
	// QRURL is encoded into a QR code in the bottom-right corner when set.
	QRURL string  `koanf:"qr_url" yaml:"qr_url,omitempty"`
	DPR   float64 `koanf:"dpr" yaml:"dpr"`
}

type Config struct {
	Server         web.ServerConfig           `koanf:"server" yaml:"server"`
	Display        DisplayConfig              `koanf:"display" yaml:"display"`
	Sections       map[string]pattern.Options `koanf:"sections" yaml:"sections"`
	DefaultSection string                     `koanf:"default_section" yaml:"default_section"`
}

func DefaultConfig() *Config {
	sections := make(map[string]pattern.Options, len(builtinSections))
	for _, name := range builtinSections {
		o, _ := pattern.Preset(name)
		sections[name] = o
	}
	return &Config{
		Server:         web.DefaultServerConfig(),
		Display:        DisplayConfig{Device: DefaultDevice, DPR: 1},
		Sections:       sections,
		DefaultSection: DefaultSectionName,
	}
}

// Load reads configuration from the given YAML file, when it exists, then
// overlays SQUAREBG_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Presets are applied below; decode file sections on their own so a
	// partial section does not wipe the preset fields it leaves out.
	builtin := cfg.Sections
	cfg.Sections = nil
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	sections := make(map[string]pattern.Options, len(builtin)+len(cfg.Sections))
	for name, o := range builtin {
		sections[name] = o
	}
	for name, o := range cfg.Sections {
		key := "sections." + name + ".seed"
		if k.Exists(key) {
			seed, err := pattern.SeedFromValue(k.Get(key))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			o.Seed = &seed
		}
		sections[name] = sections[name].Merge(o)
	}
	cfg.Sections = sections
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks every section and the server settings.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !(c.Display.DPR > 0) {
		errs = append(errs, errors.New("display.dpr must be positive"))
	}
	if c.DefaultSection == "" {
		errs = append(errs, errors.New("default_section is required"))
	} else if _, ok := c.Sections[c.DefaultSection]; !ok {
		errs = append(errs, fmt.Errorf("default_section %q is not a configured section", c.DefaultSection))
	}
	if s := c.Display.Section; s != "" {
		if _, ok := c.Sections[s]; !ok {
			errs = append(errs, fmt.Errorf("display.section %q is not a configured section", s))
		}
	}
	for _, name := range c.SectionNames() {
		if err := c.Sections[name].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sections.%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) SectionNames() []string {
	names := make([]string, 0, len(c.Sections))
	for name := range c.Sections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DisplaySection is the section shown on the framebuffer.
func (c *Config) DisplaySection() string {
	if c.Display.Section != "" {
		return c.Display.Section
	}
	return c.DefaultSection
}

// Dump writes the resolved configuration as YAML.
func (c *Config) Dump(w io.Writer) error {
	enc := yamlv3.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	return enc.Close()
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	if err := c.Dump(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Watch reloads path whenever it changes and hands each valid result to
// onChange. Invalid edits are logged and skipped. Watch blocks until ctx
// is done.
func Watch(ctx context.Context, path string, logger Logger, onChange func(*Config)) error {
	fp := file.Provider(path)
	err := fp.Watch(func(event interface{}, err error) {
		if err != nil {
			logger.Errorf("config", "watch %s: %v", path, err)
			return
		}
		cfg, err := Load(path)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			logger.Errorf("config", "reload %s: %v", path, err)
			return
		}
		logger.Infof("config", "reloaded %s", path)
		onChange(cfg)
	})
	if err != nil {
		return fmt.Errorf("watching config %s: %w", path, err)
	}
	<-ctx.Done()
	return fp.Unwatch()
}
