// Package board binds the firmware to a concrete set of pins and buses.
//
// rp2040 builds drive real hardware; every other build gets a simulated
// board whose sensors live on a software I2C bus.
package board

import (
	"io"

	"tinygo.org/x/drivers"

	"thermofuse-go/activity"
	"thermofuse-go/drivers/dht22"
)

// Board is everything the application needs from the hardware.
type Board struct {
	ID    string
	I2C   drivers.I2C
	DHT   dht22.Line
	Delay dht22.Delayer
	LED   activity.Output
	Log   io.Writer
}
