package spot

import "testing"

func TestBandBoundaries(t *testing.T) {
	cases := []struct {
		freq float64
		want string
		ok   bool
	}{
		{135, "2200m", true},
		{138, "2200m", true},
		{134.9, "", false},
		{138.1, "2200m", true}, // floor(138.1) == 138, still in range
		{1800, "160m", true},
		{2000, "160m", true},
		{1999.9, "160m", true},
		{2000.9, "160m", true}, // floor(2000.9) == 2000, still in range
		{2001, "", false},
		{7000, "40m", true},
		{7300, "40m", true},
		{6999.9, "", false},
		{7300.9, "40m", true},
		{7301, "", false},
		{14000, "20m", true},
		{14350, "20m", true},
		{144000, "2m", true},
		{148000, "2m", true},
		{148000.9, "2m", true},
		{148001, "", false},
		{0, "", false},
		{99999999, "", false},
	}
	for _, c := range cases {
		got, ok := BandForFrequency(c.freq)
		if ok != c.ok || got != c.want {
			t.Errorf("BandForFrequency(%v) = (%q, %v), want (%q, %v)", c.freq, got, ok, c.want, c.ok)
		}
	}
}

func TestNewRejectsInvariantViolations(t *testing.T) {
	if _, err := New("", 14000, "W1AW", ModeCW, 10, 10, SpotTypeCQ, Time{}); err == nil {
		t.Error("New() with empty spotter should fail")
	}
	if _, err := New("W1AW-#", 14000, "", ModeCW, 10, 10, SpotTypeCQ, Time{}); err == nil {
		t.Error("New() with empty dx_call should fail")
	}
	if _, err := New("W1AW-#", 0, "K1ABC", ModeCW, 10, 10, SpotTypeCQ, Time{}); err == nil {
		t.Error("New() with zero frequency should fail")
	}
	if _, err := New("W1AW-#", -5, "K1ABC", ModeCW, 10, 10, SpotTypeCQ, Time{}); err == nil {
		t.Error("New() with negative frequency should fail")
	}
}

func TestSizeIsConsistent(t *testing.T) {
	s, err := New("W1AW-#", 14025.5, "K1ABC", ModeCW, 10, 20, SpotTypeCQ, Time{Hour: 12, Minute: 0})
	if err != nil {
		t.Fatal(err)
	}
	if s.Size() <= 0 {
		t.Error("Size() should be positive")
	}
	if s.Size() != s.Size() {
		t.Error("Size() should be stable across calls")
	}
}
