package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Spin busy-waits for d without yielding to the scheduler. Use it only for
// sub-millisecond protocol timing where a sleep would miss signal edges.
func Spin(d time.Duration) {
	if d <= 0 {
		return
	}
	end := time.Now().Add(d)
	for time.Now().Before(end) {
	}
}

// SpinDelay implements microsecond busy delays over Spin.
type SpinDelay struct{}

func (SpinDelay) DelayMicro(us uint32) { Spin(time.Duration(us) * time.Microsecond) }
