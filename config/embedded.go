package config

// Board overrides compiled into the firmware, keyed by board ID.

const cfgPico = `{
  "load_demo": {"enabled": false},
  "log": {"level": "info"}
}`

// The breadboard prototype has no BME280 fitted and relies on the LM75.
const cfgPicoProto = `{
  "sources": [
    {"name": "lm75", "kind": "lm75", "address": 72, "interval_ms": 100, "required": true},
    {"name": "ds3231", "kind": "ds3231", "address": 104, "interval_ms": 2000},
    {"name": "dht22", "kind": "dht22", "interval_ms": 1000}
  ],
  "load_demo": {"enabled": true}
}`

var embedded = map[string][]byte{
	"pico":       []byte(cfgPico),
	"pico-proto": []byte(cfgPicoProto),
}
