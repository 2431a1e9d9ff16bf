//go:build !(rp2040 || rp2350)

package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. THERMOFUSE_LOG_LEVEL.
const EnvPrefix = "THERMOFUSE"

// SetDefaults registers scalar defaults on v so that environment variables
// for them are honoured.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("fusion.sensor_tier", d.Fusion.SensorTier)
	v.SetDefault("fusion.tier", d.Fusion.Tier)
	v.SetDefault("fusion.raw_topics", d.Fusion.RawTopics)
	v.SetDefault("fusion.queue_len", d.Fusion.QueueLen)
	v.SetDefault("report.enabled", d.Report.Enabled)
	v.SetDefault("report.tier", d.Report.Tier)
	v.SetDefault("report.window", d.Report.Window)
	v.SetDefault("load_demo.enabled", d.LoadDemo.Enabled)
	v.SetDefault("load_demo.busy_ms", d.LoadDemo.BusyMs)
	v.SetDefault("log.level", d.Log.Level)
}

// NewViper prepares a viper instance reading path (YAML, JSON or TOML by
// extension) and the environment.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	}
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads v into a Config starting from Default. Tiers and sources come
// from the file when present.
func Load(v *viper.Viper) (Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(err, "config: read")
		}
	}
	cfg := Default()
	if v.IsSet("tiers") {
		cfg.Tiers = nil
	}
	if v.IsSet("sources") {
		cfg.Sources = nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile is NewViper followed by Load.
func LoadFile(path string) (Config, error) {
	return Load(NewViper(path))
}
