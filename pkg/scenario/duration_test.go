package scenario

import "testing"

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"30", 30, false},
		{"5s", 5, false},
		{"10m", 600, false},
		{"1h", 3600, false},
		{"1h30m", 5400, false},
		{"2h5m10s", 7510, false},
		{"", 0, true},
		{"bogus", 0, true},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q): expected error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFormatDurationRoundTrip(t *testing.T) {
	for _, secs := range []float64{0, 5, 60, 3600, 5400, 7510} {
		s := FormatDuration(secs)
		got, err := ParseDuration(s)
		if err != nil {
			t.Fatalf("FormatDuration(%v) = %q, reparse failed: %v", secs, s, err)
		}
		if got != secs {
			t.Errorf("round trip mismatch: %v -> %q -> %v", secs, s, got)
		}
	}
}
