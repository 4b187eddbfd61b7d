// Package config loads runtime settings from flags, environment variables
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PADTABLE"

// Input backends.
const (
	BackendAuto   = "auto"
	BackendJoydev = "joydev"
	BackendSDL    = "sdl"
	BackendNone   = "none"
)

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Input struct {
	Backend  string  `mapstructure:"backend"`
	Path     string  `mapstructure:"path"`
	Deadzone float64 `mapstructure:"deadzone"`
}

type Config struct {
	Addr     string        `mapstructure:"addr"`
	Tick     time.Duration `mapstructure:"tick"`
	FullSync time.Duration `mapstructure:"full-sync"`
	Tray     bool          `mapstructure:"tray"`
	Input    Input         `mapstructure:"input"`
	Log      Log           `mapstructure:"log"`
}

// URL is the address the viewer is reachable at from this machine.
func (c *Config) URL() string {
	host := c.Addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host
}

func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %s", c.Tick))
	}
	if c.FullSync < c.Tick {
		errs = append(errs, fmt.Errorf("full-sync (%s) must not be shorter than tick (%s)", c.FullSync, c.Tick))
	}
	switch c.Input.Backend {
	case BackendAuto, BackendJoydev, BackendSDL, BackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown input backend %q", c.Input.Backend))
	}
	if c.Input.Deadzone < 0 || c.Input.Deadzone >= 1 {
		errs = append(errs, fmt.Errorf("input.deadzone must be in [0, 1), got %g", c.Input.Deadzone))
	}
	return errors.Join(errs...)
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (yaml, toml or json)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.Duration("tick", 16*time.Millisecond, "snapshot broadcast period")
	fs.Duration("full-sync", 5*time.Second, "interval between full state messages")
	fs.Bool("tray", true, "show a system tray icon (Windows only)")
	fs.String("input.backend", BackendAuto, "input backend: auto, joydev, sdl or none")
	fs.String("input.path", "/dev/input", "joydev device directory")
	fs.Float64("input.deadzone", 0.05, "stick deadzone applied by the SDL backend")
	fs.String("log.level", "info", "log level: trace, debug, info, warn, error")
	fs.String("log.file", "", "also write logs to this file")
	return fs
}

// Load parses args and merges them over environment variables, the config
// file and defaults, in that order of precedence.
func Load(name string, args []string) (*Config, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
