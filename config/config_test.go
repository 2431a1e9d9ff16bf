package config

import (
	"testing"

	"thermofuse-go/errcode"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.ThreadTier() != 2 || cfg.Report.Window != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	want := map[string]int{"lm75": 100, "ds3231": 2000, "bme280": 1000, "dht22": 1000}
	for _, s := range cfg.Sources {
		if want[s.Name] != s.IntervalMs {
			t.Fatalf("%s interval = %d", s.Name, s.IntervalMs)
		}
		if s.Required {
			t.Fatalf("%s required by default", s.Name)
		}
	}
}

func TestForBoardReplacesSources(t *testing.T) {
	cfg, err := ForBoard("pico-proto")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Sources) != 3 {
		t.Fatalf("sources = %+v", cfg.Sources)
	}
	dht := cfg.Sources[2]
	if dht.Kind != KindDHT22 || dht.Address != 0 {
		t.Fatalf("dht22 entry inherited defaults: %+v", dht)
	}
	if !cfg.Sources[0].Required || !cfg.LoadDemo.Enabled {
		t.Fatalf("overrides lost: %+v", cfg)
	}
	if len(cfg.Tiers) != 3 {
		t.Fatal("tiers not kept from defaults")
	}
}

func TestForUnknownBoardIsDefault(t *testing.T) {
	cfg, err := ForBoard("nope")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Sources) != 4 {
		t.Fatalf("sources = %d", len(cfg.Sources))
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := Default()
	cfg.Tiers[0].PoolSize = 1000
	cfg.Sources[0].IntervalMs = 1
	cfg.Report.Window = 0
	cfg.Report.Tier = 9
	cfg.LoadDemo.BusyMs = []int{-5, 9999}
	cfg.Fusion.QueueLen = 0
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Tiers[0].PoolSize != MaxPoolSize || cfg.Sources[0].IntervalMs != MinIntervalMs {
		t.Fatalf("not clamped: %+v %+v", cfg.Tiers[0], cfg.Sources[0])
	}
	if cfg.Report.Window != 1 || cfg.Report.Tier != 2 {
		t.Fatalf("report = %+v", cfg.Report)
	}
	if cfg.LoadDemo.BusyMs[0] != 0 || cfg.LoadDemo.BusyMs[1] != MaxBusyMs {
		t.Fatalf("busy = %v", cfg.LoadDemo.BusyMs)
	}
	if cfg.Fusion.QueueLen != DefaultQueue {
		t.Fatalf("queue = %d", cfg.Fusion.QueueLen)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"no tiers":      func(c *Config) { c.Tiers = nil },
		"unnamed tier":  func(c *Config) { c.Tiers[1].Name = "" },
		"shared irq":    func(c *Config) { c.Tiers[1].IRQ = c.Tiers[0].IRQ },
		"unknown kind":  func(c *Config) { c.Sources[0].Kind = "tmp117" },
		"duplicate":     func(c *Config) { c.Sources[1].Name = c.Sources[0].Name },
		"bad log level": func(c *Config) { c.Log.Level = "loud" },
		"inverted prio": func(c *Config) { c.Tiers[0].Priority, c.Tiers[1].Priority = 9, 6 },
		"equal prio":    func(c *Config) { c.Tiers[1].Priority = c.Tiers[0].Priority },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); errcode.Of(err) != errcode.InvalidParams {
			t.Fatalf("%s: err = %v", name, err)
		}
	}
}

func TestParseRejectsBadJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"tiers":`)); err == nil {
		t.Fatal("accepted truncated JSON")
	}
}

func TestActiveSkipsDisabled(t *testing.T) {
	cfg := Default()
	cfg.Sources[2].Disabled = true
	for _, s := range cfg.Active() {
		if s.Name == "bme280" {
			t.Fatal("disabled source listed")
		}
	}
}

