package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/arbor"
)

// RunConfig configures the window and frame loop started by Run.
type RunConfig struct {
	Title      string      `toml:"title" yaml:"title"`
	Width      int         `toml:"width" yaml:"width"`
	Height     int         `toml:"height" yaml:"height"`
	TPS        int         `toml:"tps" yaml:"tps"`
	Resizable  bool        `toml:"resizable" yaml:"resizable"`
	ShowFPS    bool        `toml:"show_fps" yaml:"show_fps"`
	ShowBounds bool        `toml:"show_bounds" yaml:"show_bounds"`
	ClearColor arbor.Color `toml:"clear_color" yaml:"clear_color"`

	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// LoggingConfig selects the logger built by NewLogger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
	Debug  bool   `toml:"debug" yaml:"debug"`   // engine pass stats
}

// DefaultConfig returns the configuration used for any field a config file
// leaves out.
func DefaultConfig() RunConfig {
	return RunConfig{
		Title:      "arbor",
		Width:      640,
		Height:     480,
		TPS:        60,
		ClearColor: arbor.Color{R: 0.118, G: 0.118, B: 0.157, A: 1},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a RunConfig from a TOML (.toml) or YAML (.yaml, .yml)
// file on top of DefaultConfig.
func LoadConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return RunConfig{}, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return RunConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return RunConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *RunConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps %d must be positive", c.TPS)
	}
	return nil
}

// NewLogger builds a zap logger from cfg. An unknown level falls back to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
