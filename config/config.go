// Package config describes the firmware's tiers, sources and services.
//
// The firmware starts from Default, overlays the JSON embedded for its board
// and validates the result. The host simulator additionally reads a file and
// THERMOFUSE_* environment variables through viper (see load_host.go).
package config

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"thermofuse-go/errcode"
	"thermofuse-go/x/logx"
	"thermofuse-go/x/mathx"
)

// Source kinds.
const (
	KindLM75   = "lm75"
	KindDS3231 = "ds3231"
	KindBME280 = "bme280"
	KindDHT22  = "dht22"
)

// Limits applied by Validate.
const (
	MaxTiers       = 8
	MaxPoolSize    = 32
	MinIntervalMs  = 10
	MaxIntervalMs  = 60_000
	MaxWindow      = 100
	MaxBusyMs      = 500
	DefaultQueue   = 4
	DefaultBoardID = "pico"
)

type Config struct {
	Tiers    []Tier   `json:"tiers" mapstructure:"tiers"`
	Sources  []Source `json:"sources" mapstructure:"sources"`
	Fusion   Fusion   `json:"fusion" mapstructure:"fusion"`
	Report   Report   `json:"report" mapstructure:"report"`
	LoadDemo LoadDemo `json:"load_demo" mapstructure:"load_demo"`
	Log      Log      `json:"log" mapstructure:"log"`
}

// Tier is one priority level. Every tier but the last is bound to IRQ at
// Priority; the last runs in thread mode and ignores both.
type Tier struct {
	Name     string `json:"name" mapstructure:"name"`
	IRQ      int    `json:"irq" mapstructure:"irq"`
	Priority uint8  `json:"priority" mapstructure:"priority"`
	PoolSize int    `json:"pool_size" mapstructure:"pool_size"`
}

// Source is one temperature sensor.
type Source struct {
	Name       string `json:"name" mapstructure:"name"`
	Kind       string `json:"kind" mapstructure:"kind"`
	Address    uint16 `json:"address,omitempty" mapstructure:"address"`
	IntervalMs int    `json:"interval_ms" mapstructure:"interval_ms"`
	Required   bool   `json:"required" mapstructure:"required"`
	Disabled   bool   `json:"disabled,omitempty" mapstructure:"disabled"`
}

type Fusion struct {
	SensorTier int  `json:"sensor_tier" mapstructure:"sensor_tier"`
	Tier       int  `json:"tier" mapstructure:"tier"`
	RawTopics  bool `json:"raw_topics" mapstructure:"raw_topics"`
	QueueLen   int  `json:"queue_len" mapstructure:"queue_len"`
}

type Report struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	Tier    int  `json:"tier" mapstructure:"tier"`
	Window  int  `json:"window" mapstructure:"window"`
}

// LoadDemo busy-blocks BusyMs[i] on tier i every 100 ms.
type LoadDemo struct {
	Enabled bool  `json:"enabled" mapstructure:"enabled"`
	BusyMs  []int `json:"busy_ms" mapstructure:"busy_ms"`
}

type Log struct {
	Level string `json:"level" mapstructure:"level"`
}

// Default is the reference board: two interrupt tiers over spare NVIC lines
// and thread mode; LM75, DS3231, BME280 and DHT22 sources.
func Default() Config {
	return Config{
		Tiers: []Tier{
			{Name: "high", IRQ: 26, Priority: 6, PoolSize: 10},
			{Name: "medium", IRQ: 27, Priority: 7, PoolSize: 4},
			{Name: "low", PoolSize: 4},
		},
		Sources: []Source{
			{Name: "lm75", Kind: KindLM75, Address: 0x48, IntervalMs: 100},
			{Name: "ds3231", Kind: KindDS3231, Address: 0x68, IntervalMs: 2000},
			{Name: "bme280", Kind: KindBME280, Address: 0x77, IntervalMs: 1000},
			{Name: "dht22", Kind: KindDHT22, IntervalMs: 1000},
		},
		Fusion:   Fusion{SensorTier: 0, Tier: 1, RawTopics: true, QueueLen: DefaultQueue},
		Report:   Report{Enabled: true, Tier: 2, Window: 10},
		LoadDemo: LoadDemo{BusyMs: []int{12, 45, 140}},
		Log:      Log{Level: "info"},
	}
}

// Parse overlays JSON onto Default and validates.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, cfg.Validate()
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	// Lists replace the defaults wholesale; json would reuse their elements.
	if _, ok := keys["tiers"]; ok {
		cfg.Tiers = nil
	}
	if _, ok := keys["sources"]; ok {
		cfg.Sources = nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EmbeddedLookup resolves the JSON compiled in for a board. Tests and
// alternative builds may replace it.
var EmbeddedLookup = func(board string) ([]byte, bool) {
	b, ok := embedded[board]
	return b, ok
}

// ForBoard is Default overlaid with the board's embedded JSON, if any.
func ForBoard(board string) (Config, error) {
	raw, _ := EmbeddedLookup(board)
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: board %q", board)
	}
	return cfg, nil
}

// ThreadTier is the index of the thread-mode tier.
func (c *Config) ThreadTier() int { return len(c.Tiers) - 1 }

// Validate normalises numeric fields into range and rejects configurations
// the firmware cannot boot with.
func (c *Config) Validate() error {
	if len(c.Tiers) == 0 || len(c.Tiers) > MaxTiers {
		return invalid("tiers: need 1..8")
	}
	seenIRQ := map[int]bool{}
	var prev *Tier
	for i := range c.Tiers {
		t := &c.Tiers[i]
		if t.Name == "" {
			return invalid("tiers: unnamed tier")
		}
		t.PoolSize = mathx.Clamp(t.PoolSize, 1, MaxPoolSize)
		if i == len(c.Tiers)-1 {
			continue
		}
		if seenIRQ[t.IRQ] {
			return invalid("tiers: irq shared by two tiers: " + t.Name)
		}
		seenIRQ[t.IRQ] = true
		if prev != nil && t.Priority <= prev.Priority {
			return invalid("tiers: " + t.Name + " must be less urgent than " + prev.Name)
		}
		prev = t
	}

	last := c.ThreadTier()
	for _, tier := range []*int{&c.Fusion.SensorTier, &c.Fusion.Tier, &c.Report.Tier} {
		*tier = mathx.Clamp(*tier, 0, last)
	}

	names := map[string]bool{}
	for i := range c.Sources {
		s := &c.Sources[i]
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		switch s.Kind {
		case KindLM75, KindDS3231, KindBME280, KindDHT22:
		default:
			return invalid("sources: unknown kind " + s.Kind)
		}
		if s.Name == "" {
			s.Name = s.Kind
		}
		if names[s.Name] {
			return invalid("sources: duplicate name " + s.Name)
		}
		names[s.Name] = true
		s.IntervalMs = mathx.Clamp(s.IntervalMs, MinIntervalMs, MaxIntervalMs)
	}

	if c.Fusion.QueueLen <= 0 {
		c.Fusion.QueueLen = DefaultQueue
	}
	c.Report.Window = mathx.Clamp(c.Report.Window, 1, MaxWindow)
	for i := range c.LoadDemo.BusyMs {
		c.LoadDemo.BusyMs[i] = mathx.Clamp(c.LoadDemo.BusyMs[i], 0, MaxBusyMs)
	}
	if _, ok := logx.ParseLevel(c.Log.Level); !ok {
		return invalid("log: unknown level " + c.Log.Level)
	}
	return nil
}

// Active returns the sources that are not disabled.
func (c *Config) Active() []Source {
	out := make([]Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: msg}
}
