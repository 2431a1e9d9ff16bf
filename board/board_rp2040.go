//go:build rp2040 || rp2350

package board

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"thermofuse-go/x/timex"
)

// Pin assignment of the reference board.
const (
	pinSDA  = machine.GP4
	pinSCL  = machine.GP5
	pinDHT  = machine.GP15
	pinTX   = machine.GP0
	pinRX   = machine.GP1
	i2cFreq = 400 * machine.KHz
	logBaud = 115200
)

// ID of the board whose embedded configuration is used.
const ID = "pico"

// Open configures I2C0, the DHT22 pin, the LED and UART0 for logs.
func Open() (*Board, error) {
	if err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       pinSDA,
		SCL:       pinSCL,
		Frequency: i2cFreq,
	}); err != nil {
		return nil, err
	}

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	dht := dhtPin{p: pinDHT}
	dht.High()

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{BaudRate: logBaud, TX: pinTX, RX: pinRX})

	return &Board{
		ID:    ID,
		I2C:   machine.I2C0,
		DHT:   dht,
		Delay: timex.SpinDelay{},
		LED:   pinOut{p: led},
		Log:   u,
	}, nil
}

// dhtPin drives the open-drain data line: output-low to pull down, input
// with pull-up to release.
type dhtPin struct{ p machine.Pin }

func (d dhtPin) Low() {
	d.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.p.Low()
}

func (d dhtPin) High() {
	d.p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (d dhtPin) Get() bool { return d.p.Get() }

type pinOut struct{ p machine.Pin }

func (o pinOut) Set(v bool) { o.p.Set(v) }
