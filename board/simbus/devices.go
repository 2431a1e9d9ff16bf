package simbus

import (
	"sync"

	"thermofuse-go/drivers/lm75"
)

// LM75 models an LM75-family part: each register has its own width and the
// pointer does not advance.
type LM75 struct {
	mu   sync.Mutex
	res  lm75.Resolution
	regs map[byte][]byte
	ptr  byte
}

func NewLM75(res lm75.Resolution) *LM75 {
	return &LM75{res: res, regs: map[byte][]byte{
		0x00: {0, 0},
		0x01: {0},
		0x02: {0x4B, 0},
		0x03: {0x50, 0},
	}}
}

func (d *LM75) Write(w []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ptr = w[0]
	if len(w) > 1 && d.ptr != 0x00 {
		d.regs[d.ptr] = append([]byte(nil), w[1:]...)
	}
}

func (d *LM75) Read(r []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(r, d.regs[d.ptr])
}

// SetTemperature updates the temperature register (°C).
func (d *LM75) SetTemperature(c float32) {
	w := lm75.Encode(d.res, int32(c*1000))
	d.mu.Lock()
	d.regs[0x00] = w[:]
	d.mu.Unlock()
}

// Shutdown reports the configuration shutdown bit.
func (d *LM75) Shutdown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[0x01][0]&0x01 != 0
}

// DS3231 models the RTC's temperature registers (0x11, 0x12) and control
// register (0x0E).
type DS3231 struct {
	ByteFile
}

func NewDS3231() *DS3231 {
	d := &DS3231{}
	d.Poke(0x0E, 0x9C) // EOSC set at power-up in this model
	return d
}

// SetTemperature stores c with the part's 0.25 °C resolution.
func (d *DS3231) SetTemperature(c float32) {
	q := int32(c * 4)
	if c < 0 {
		q = int32(c*4 - 0.5)
	}
	d.Poke(0x11, byte(int8(q>>2)), byte(q&3)<<6)
}

// Running reports whether the oscillator enable bit is clear.
func (d *DS3231) Running() bool { return d.Peek(0x0E)&0x80 == 0 }

// BME280 models the chip ID, temperature calibration and data registers.
// Calibration words are the datasheet's worked example.
type BME280 struct {
	ByteFile
}

const (
	bmeT1 = 27504
	bmeT2 = 26435
	bmeT3 = -1000
)

func NewBME280() *BME280 {
	d := &BME280{}
	d.Poke(0xD0, 0x60)
	s2, s3 := int16(bmeT2), int16(bmeT3)
	t1, t2, t3 := uint16(bmeT1), uint16(s2), uint16(s3)
	d.Poke(0x88, byte(t1), byte(t1>>8), byte(t2), byte(t2>>8), byte(t3), byte(t3>>8))
	return d
}

// compensate is the datasheet's integer temperature formula, in 0.01 °C.
func compensate(adc int32) int32 {
	var1 := ((adc >> 3) - (bmeT1 << 1)) * bmeT2 >> 11
	d := (adc >> 4) - bmeT1
	var2 := ((d * d) >> 12) * bmeT3 >> 14
	return ((var1+var2)*5 + 128) >> 8
}

// SetTemperature finds the raw ADC value that compensates to c.
func (d *BME280) SetTemperature(c float32) {
	target := int32(c * 100)
	lo, hi := int32(0), int32(1<<20-1)
	for lo < hi {
		mid := (lo + hi) / 2
		if compensate(mid) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	adc := lo << 4
	d.Poke(0xFA, byte(adc>>16), byte(adc>>8), byte(adc))
}
