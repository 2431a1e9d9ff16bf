package dht22

import "sync"

// Fault alters how Sim answers.
type Fault uint8

const (
	FaultNone    Fault = iota
	FaultSilent        // no sensor on the line: stays pulled up
	FaultStuckLow      // line shorted low
	FaultBadSum        // checksum byte corrupted
)

// Timings of the simulated sensor in µs.
const (
	simAckDelay = 30
	simAckLow   = 80
	simAckHigh  = 80
	simBitLow   = 50
	simZeroHigh = 26
	simOneHigh  = 70
	simEndLow   = 50
)

// Sim models a DHT22 on a virtual microsecond clock. It implements Line and
// Delayer: DelayMicro advances the clock and Get samples the waveform the
// sensor would produce after the host's last release.
type Sim struct {
	mu       sync.Mutex
	now      uint64
	driving  bool
	released bool
	start    uint64
	frame    Frame
	fault    Fault
	reads    uint32
}

// NewSim answers with m until changed.
func NewSim(m Measurement) *Sim {
	return &Sim{frame: Encode(m)}
}

func (s *Sim) Set(m Measurement) {
	s.mu.Lock()
	s.frame = Encode(m)
	s.mu.Unlock()
}

// SetFrame sends f verbatim, checksum included.
func (s *Sim) SetFrame(f Frame) {
	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
}

func (s *Sim) SetFault(f Fault) {
	s.mu.Lock()
	s.fault = f
	s.mu.Unlock()
}

// Reads counts host releases, i.e. attempted transactions.
func (s *Sim) Reads() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *Sim) Low() {
	s.mu.Lock()
	s.driving = true
	s.released = false
	s.mu.Unlock()
}

func (s *Sim) High() {
	s.mu.Lock()
	if s.driving {
		s.reads++
	}
	s.driving = false
	s.released = true
	s.start = s.now
	s.mu.Unlock()
}

func (s *Sim) DelayMicro(us uint32) {
	s.mu.Lock()
	s.now += uint64(us)
	s.mu.Unlock()
}

func (s *Sim) Get() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.driving:
		return false
	case s.fault == FaultStuckLow:
		return false
	case !s.released, s.fault == FaultSilent:
		return true
	}
	return s.levelAt(s.now - s.start)
}

// caller holds s.mu
func (s *Sim) levelAt(dt uint64) bool {
	f := s.frame
	if s.fault == FaultBadSum {
		f[4] ^= 0xFF
	}
	type seg struct {
		d     uint64
		level bool
	}
	segs := [...]seg{{simAckDelay, true}, {simAckLow, false}, {simAckHigh, true}}
	for _, sg := range segs {
		if dt < sg.d {
			return sg.level
		}
		dt -= sg.d
	}
	for i := 0; i < 40; i++ {
		if dt < simBitLow {
			return false
		}
		dt -= simBitLow
		high := uint64(simZeroHigh)
		if f[i/8]&(1<<(7-i%8)) != 0 {
			high = simOneHigh
		}
		if dt < high {
			return true
		}
		dt -= high
	}
	return dt >= simEndLow
}
