// Command boardtest is a bring-up probe: it scans the I2C bus, reads every
// configured source once without the scheduler and reports each result on
// the board console.
package main

import (
	"time"

	"thermofuse-go/board"
	"thermofuse-go/config"
	"thermofuse-go/drivers/dht22"
	"thermofuse-go/sensor"
	"thermofuse-go/x/conv"
	"thermofuse-go/x/logx"
)

const (
	scanFirst = 0x08
	scanLast  = 0x77
	rounds    = 3
	pause     = 2 * time.Second
)

func main() {
	time.Sleep(2 * time.Second)

	b, err := board.Open()
	if err != nil {
		println("board:", err.Error())
		return
	}
	cfg, _ := config.ForBoard(b.ID)
	log := logx.New(b.Log, logx.LevelDebug)

	log.Info("i2c scan", "board", b.ID, "found", scan(b))
	for i := 0; i < rounds; i++ {
		for _, s := range cfg.Active() {
			probe(b, s, log)
		}
		time.Sleep(pause)
	}
	log.Info("done")
}

// scan lists responding 7-bit addresses in hex.
func scan(b *board.Board) string {
	var out []byte
	rx := make([]byte, 1)
	for a := uint16(scanFirst); a <= scanLast; a++ {
		if err := b.I2C.Tx(a, nil, rx); err != nil {
			continue
		}
		if len(out) > 0 {
			out = append(out, ' ')
		}
		out = append(out, '0', 'x', hex[a>>4], hex[a&0x0F])
	}
	if len(out) == 0 {
		return "none"
	}
	return string(out)
}

const hex = "0123456789abcdef"

func probe(b *board.Board, s config.Source, log logx.Logger) {
	l := log.With("source", s.Name, "kind", s.Kind)
	var drv sensor.RegisterDriver
	switch s.Kind {
	case config.KindLM75:
		drv = sensor.NewLM75(b.I2C, s.Address)
	case config.KindDS3231:
		drv = sensor.NewDS3231(b.I2C, s.Address)
	case config.KindBME280:
		drv = sensor.NewBME280(b.I2C, s.Address)
	case config.KindDHT22:
		m, err := dht22.NewDecoder(b.DHT, b.Delay).Read(sleep)
		if err != nil {
			l.Warn("read failed", "err", err)
			return
		}
		l.Info("reading", "celsius", fixed(m.Temperature), "rh", fixed(m.Humidity))
		return
	default:
		l.Warn("unknown kind")
		return
	}
	if err := drv.Enable(); err != nil {
		l.Warn("enable failed", "err", err)
		return
	}
	c, err := drv.ReadCelsius()
	if err != nil {
		l.Warn("read failed", "err", err)
		return
	}
	l.Info("reading", "celsius", fixed(c))
}

func sleep(d time.Duration) error {
	time.Sleep(d)
	return nil
}

func fixed(f float32) string { return string(conv.AppendFixed(nil, float64(f), 2)) }
