// Package conv formats numbers into caller-owned buffers for the MCU log
// path, where fmt and strconv are too heavy.
package conv

// Utoa renders n in base 10 at the tail of buf and returns that tail. A
// 20-byte buf holds any uint64; a shorter one keeps the low digits.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	for i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return buf[i:]
}

// Itoa is Utoa with a leading '-' for negative n. buf needs 20 bytes for
// any int64.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	if len(buf) == 0 {
		return buf
	}
	// unsigned negation so MinInt64 survives
	d := Utoa(buf, -uint64(n))
	i := len(buf) - len(d)
	if i == 0 {
		return d
	}
	buf[i-1] = '-'
	return buf[i-1:]
}
