package conv

// AppendFixed appends f with exactly prec fractional digits (prec <= 6),
// rounding half away from zero. No fmt/strconv dependency.
func AppendFixed(b []byte, f float64, prec int) []byte {
	if prec < 0 {
		prec = 0
	}
	if prec > 6 {
		prec = 6
	}
	if f != f {
		return append(b, "NaN"...)
	}
	scale := int64(1)
	for i := 0; i < prec; i++ {
		scale *= 10
	}
	neg := f < 0
	if neg {
		f = -f
	}
	v := int64(f*float64(scale) + 0.5)
	if neg && v != 0 {
		b = append(b, '-')
	}
	var tmp [20]byte
	b = append(b, Utoa(tmp[:], uint64(v/scale))...)
	if prec == 0 {
		return b
	}
	b = append(b, '.')
	frac := Utoa(tmp[:], uint64(v%scale))
	for i := len(frac); i < prec; i++ {
		b = append(b, '0')
	}
	return append(b, frac...)
}
