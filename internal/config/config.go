// Package config reads the settings shared by the oklch commands from viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Keys understood by Load.
const (
	KeyServeAddr    = "serve.addr"
	KeyServeCacheDB = "serve.cache_db"
	KeyServeMemo    = "serve.memo_size"
	KeyRasterWidth  = "raster.width"
	KeyRasterHeight = "raster.height"
	KeyWarmWorkers  = "warm.workers"
	KeyWarmStep     = "warm.step"
	KeyLogVerbosity = "log.verbosity"
)

// EnvPrefix is prepended to environment overrides, e.g. OKLCH_SERVE_ADDR.
const EnvPrefix = "OKLCH"

// EnvKeyReplacer maps dotted keys onto environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// MaxRasterSize bounds raster.width and raster.height.
const MaxRasterSize = 4096

// Config is the typed view of the viper settings.
type Config struct {
	Serve  Serve
	Raster Raster
	Warm   Warm
	Log    Log
}

type Serve struct {
	Addr string
	// CacheDB is the path of the SQLite raster cache. Empty disables it.
	CacheDB  string
	MemoSize int
}

type Raster struct {
	Width  int
	Height int
}

type Warm struct {
	Workers int
	// Step is the hue spacing, in degrees, between warmed planes.
	Step float64
}

type Log struct {
	// Verbosity follows commonlog: 0 is quiet, higher is chattier.
	Verbosity int
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServeAddr, "127.0.0.1:8080")
	v.SetDefault(KeyServeCacheDB, "")
	v.SetDefault(KeyServeMemo, 64)
	v.SetDefault(KeyRasterWidth, 256)
	v.SetDefault(KeyRasterHeight, 256)
	v.SetDefault(KeyWarmWorkers, 4)
	v.SetDefault(KeyWarmStep, 15.0)
	v.SetDefault(KeyLogVerbosity, 0)
}

// Load reads v into a Config and validates it. Unset keys take the defaults
// from SetDefaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Serve: Serve{
			Addr:     v.GetString(KeyServeAddr),
			CacheDB:  v.GetString(KeyServeCacheDB),
			MemoSize: v.GetInt(KeyServeMemo),
		},
		Raster: Raster{
			Width:  v.GetInt(KeyRasterWidth),
			Height: v.GetInt(KeyRasterHeight),
		},
		Warm: Warm{
			Workers: v.GetInt(KeyWarmWorkers),
			Step:    v.GetFloat64(KeyWarmStep),
		},
		Log: Log{
			Verbosity: v.GetInt(KeyLogVerbosity),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Serve.Addr == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyServeAddr))
	}
	if c.Serve.MemoSize < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeyServeMemo, c.Serve.MemoSize))
	}
	if c.Raster.Width < 1 || c.Raster.Width > MaxRasterSize {
		errs = append(errs, fmt.Errorf("%s must be in [1, %d], got %d", KeyRasterWidth, MaxRasterSize, c.Raster.Width))
	}
	if c.Raster.Height < 1 || c.Raster.Height > MaxRasterSize {
		errs = append(errs, fmt.Errorf("%s must be in [1, %d], got %d", KeyRasterHeight, MaxRasterSize, c.Raster.Height))
	}
	if c.Warm.Workers < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeyWarmWorkers, c.Warm.Workers))
	}
	if c.Warm.Step <= 0 || c.Warm.Step > 360 {
		errs = append(errs, fmt.Errorf("%s must be in (0, 360], got %g", KeyWarmStep, c.Warm.Step))
	}
	if c.Log.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", KeyLogVerbosity, c.Log.Verbosity))
	}
	return errors.Join(errs...)
}
