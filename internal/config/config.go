// Package config loads epubnav settings from defaults, an optional YAML file,
// EPUBNAV_ environment variables and command line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yuanying/epubnav/internal/headless"
	"github.com/yuanying/epubnav/internal/pagination"
	"github.com/yuanying/epubnav/internal/publication"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds epubnav configuration.
type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Spread   SpreadConfig   `mapstructure:"spread" yaml:"spread"`
	Mode     ModeConfig     `mapstructure:"mode" yaml:"mode"`
	Surface  SurfaceConfig  `mapstructure:"surface" yaml:"surface"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ViewportConfig is the pagination area in CSS pixels.
type ViewportConfig struct {
	Width      float64 `mapstructure:"width" yaml:"width"`
	Height     float64 `mapstructure:"height" yaml:"height"`
	SideMargin float64 `mapstructure:"side_margin" yaml:"side_margin"`
}

type SpreadConfig struct {
	PageCount int `mapstructure:"page_count" yaml:"page_count"` // 1 or 2
	// ReadingProgression overrides the direction declared by the book when set.
	ReadingProgression string `mapstructure:"reading_progression" yaml:"reading_progression"`
}

type ModeConfig struct {
	Scroll bool `mapstructure:"scroll" yaml:"scroll"`
}

// SurfaceConfig tunes the headless surfaces.
type SurfaceConfig struct {
	FixedExtent bool    `mapstructure:"fixed_extent" yaml:"fixed_extent"`
	LineHeight  float64 `mapstructure:"line_height" yaml:"line_height"`
	CharWidth   float64 `mapstructure:"char_width" yaml:"char_width"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	m := headless.DefaultMetrics()
	return &Config{
		Viewport: ViewportConfig{Width: 600, Height: 800, SideMargin: 20},
		Spread:   SpreadConfig{PageCount: 1},
		Surface:  SurfaceConfig{LineHeight: m.LineHeight, CharWidth: m.CharWidth},
		Logging:  LoggingConfig{Level: "normal"},
	}
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"width":        "viewport.width",
	"height":       "viewport.height",
	"side-margin":  "viewport.side_margin",
	"pages":        "spread.page_count",
	"direction":    "spread.reading_progression",
	"scroll":       "mode.scroll",
	"fixed-extent": "surface.fixed_extent",
	"log-level":    "logging.level",
}

// Load reads the configuration. cfgFile may be empty, in which case
// epubnav.yaml is looked up in the working directory and in $HOME/.epubnav;
// a missing file is not an error. Flags listed in FlagKeys that were set on
// the command line take precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EPUBNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("epubnav")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.epubnav")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("viewport.width", d.Viewport.Width)
	v.SetDefault("viewport.height", d.Viewport.Height)
	v.SetDefault("viewport.side_margin", d.Viewport.SideMargin)
	v.SetDefault("spread.page_count", d.Spread.PageCount)
	v.SetDefault("spread.reading_progression", d.Spread.ReadingProgression)
	v.SetDefault("mode.scroll", d.Mode.Scroll)
	v.SetDefault("surface.fixed_extent", d.Surface.FixedExtent)
	v.SetDefault("surface.line_height", d.Surface.LineHeight)
	v.SetDefault("surface.char_width", d.Surface.CharWidth)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("%w: viewport must be positive, got %gx%g", ErrInvalidConfig, c.Viewport.Width, c.Viewport.Height)
	case c.Viewport.SideMargin < 0 || 2*c.Viewport.SideMargin >= c.Viewport.Width:
		return fmt.Errorf("%w: side margin %g does not fit the viewport", ErrInvalidConfig, c.Viewport.SideMargin)
	case c.Spread.PageCount != 1 && c.Spread.PageCount != 2:
		return fmt.Errorf("%w: page count must be 1 or 2, got %d", ErrInvalidConfig, c.Spread.PageCount)
	case c.Surface.LineHeight <= 0 || c.Surface.CharWidth <= 0:
		return fmt.Errorf("%w: surface metrics must be positive", ErrInvalidConfig)
	}
	if rp := strings.TrimSpace(c.Spread.ReadingProgression); rp != "" && string(publication.ParseReadingProgression(rp)) != strings.ToLower(rp) {
		return fmt.Errorf("%w: unknown reading progression %q", ErrInvalidConfig, rp)
	}
	switch c.Logging.Level {
	case "none", "normal", "debug":
	default:
		return fmt.Errorf("%w: unknown logging level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// ReadingProgression returns the configured override, or declared when none
// is set.
func (c *Config) ReadingProgression(declared publication.ReadingProgression) publication.ReadingProgression {
	if strings.TrimSpace(c.Spread.ReadingProgression) == "" {
		return declared
	}
	return publication.ParseReadingProgression(c.Spread.ReadingProgression)
}

func (c *Config) PaginationViewport() pagination.Viewport {
	return pagination.Viewport{
		Width:      c.Viewport.Width,
		Height:     c.Viewport.Height,
		SideMargin: c.Viewport.SideMargin,
	}
}

// LayoutMode is the initial mode of reflowable spreads.
func (c *Config) LayoutMode() pagination.Mode {
	if c.Mode.Scroll {
		return pagination.ModeScrolling
	}
	return pagination.ModePaginated
}

func (c *Config) Metrics() headless.Metrics {
	return headless.Metrics{
		LineHeight:  c.Surface.LineHeight,
		CharWidth:   c.Surface.CharWidth,
		FixedExtent: c.Surface.FixedExtent,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# epubnav configuration
# Every key can be overridden with an EPUBNAV_ variable, e.g. EPUBNAV_VIEWPORT_WIDTH=800

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
