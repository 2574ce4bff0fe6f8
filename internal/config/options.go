package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (PSTOP_INTERVAL etc.).
const EnvPrefix = "PSTOP"

// Option keys shared by flags, environment and viper.
const (
	KeyConfig   = "config"
	KeyInterval = "interval"
	KeyLogFile  = "log-file"
	KeyNoColor  = "no-color"
	KeyTree     = "tree"
	KeyFilter   = "filter"
	KeyUser     = "user"
	KeySort     = "sort"
	KeyCadence  = "cadence"

	KeyGPUCadence = "gpu-cadence"
)

// DefaultCadence is how many ticks pass between expensive attribute reads.
const DefaultCadence = 3

// DefaultGPUCadence is how many ticks pass between GPU counter reads.
const DefaultGPUCadence = 3

// Options are the runtime settings for one pstop session.
type Options struct {
	ConfigPath string
	// Interval overrides update_interval_ms when non-zero.
	Interval time.Duration
	LogFile  string
	NoColor  bool
	Tree     bool
	Filter   string
	User     string
	Sort     string
	Cadence  int
	// GPUCadence is the tick interval for GPU counters, which are slow to read.
	GPUCadence int
}

// NewViper returns a viper instance that reads PSTOP_* environment
// variables, with dashes in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyCadence, DefaultCadence)
	v.SetDefault(KeyGPUCadence, DefaultGPUCadence)
	return v
}

// BindFlags binds every option flag present in flags to v.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range []string{KeyConfig, KeyInterval, KeyLogFile, KeyNoColor, KeyTree, KeyFilter, KeyUser, KeySort, KeyCadence, KeyGPUCadence} {
		f := flags.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadOptions resolves options from v. Flags set on the command line win
// over environment variables, which win over defaults.
func ReadOptions(v *viper.Viper) Options {
	return Options{
		ConfigPath: v.GetString(KeyConfig),
		Interval:   v.GetDuration(KeyInterval),
		LogFile:    v.GetString(KeyLogFile),
		NoColor:    v.GetBool(KeyNoColor),
		Tree:       v.GetBool(KeyTree),
		Filter:     v.GetString(KeyFilter),
		User:       v.GetString(KeyUser),
		Sort:       v.GetString(KeySort),
		Cadence:    v.GetInt(KeyCadence),
		GPUCadence: v.GetInt(KeyGPUCadence),
	}
}

// SettingsPath returns the explicit config path or the default location.
func (o Options) SettingsPath() (string, error) {
	if o.ConfigPath != "" {
		return o.ConfigPath, nil
	}
	return Path()
}

// Apply overlays the session options onto persisted settings.
func (o Options) Apply(s Settings) Settings {
	if o.Interval > 0 {
		s.UpdateIntervalMS = clampInterval(int(o.Interval / time.Millisecond))
	}
	if o.Tree {
		s.TreeView = true
	}
	return s
}
