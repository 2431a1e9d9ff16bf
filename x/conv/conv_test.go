package conv

import "testing"

func TestItoaUtoa(t *testing.T) {
	var buf [24]byte
	for n, want := range map[int64]string{
		0: "0", 42: "42", -17: "-17",
		-9223372036854775808: "-9223372036854775808",
		9223372036854775807:  "9223372036854775807",
	} {
		if got := string(Itoa(buf[:], n)); got != want {
			t.Fatalf("Itoa(%d) = %q", n, got)
		}
	}
	if got := string(Utoa(buf[:], 65535)); got != "65535" {
		t.Fatalf("Utoa = %q", got)
	}
	if got := string(Utoa(buf[:3], 12345)); got != "345" {
		t.Fatalf("short buffer = %q", got)
	}
	if got := Itoa(nil, -5); len(got) != 0 {
		t.Fatalf("nil buffer = %q", got)
	}
}

func TestAppendFixed(t *testing.T) {
	cases := []struct {
		f    float64
		prec int
		want string
	}{
		{25.8, 1, "25.8"},
		{-3.05, 2, "-3.05"},
		{0.004, 2, "0.00"},
		{21.5, 2, "21.50"},
		{7, 0, "7"},
	}
	for _, c := range cases {
		if got := string(AppendFixed(nil, c.f, c.prec)); got != c.want {
			t.Fatalf("AppendFixed(%v, %d) = %q, want %q", c.f, c.prec, got, c.want)
		}
	}
}
