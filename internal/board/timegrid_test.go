package board

import (
	"errors"
	"testing"
)

func TestNewTimeGridOperatingWindow(t *testing.T) {
	g := NewTimeGrid(9, 21)
	if g.Len() != 24 {
		t.Fatalf("expected 24 slots, got %d", g.Len())
	}
	if l, _ := g.Label(0); l != "09:00 ~ 09:30" {
		t.Fatalf("first label = %q", l)
	}
	if l, _ := g.Label(23); l != "20:30 ~ 21:00" {
		t.Fatalf("last label = %q", l)
	}
	if _, ok := g.Label(24); ok {
		t.Fatal("row 24 should be out of range")
	}
	labels := g.Labels()
	for i := 0; i+1 < len(labels); i++ {
		_, end, _ := SplitRange(labels[i])
		start, _, _ := SplitRange(labels[i+1])
		if end != start {
			t.Fatalf("slot %d end %s does not meet slot %d start %s", i, end, i+1, start)
		}
	}
}

func TestTimeGridIndex(t *testing.T) {
	g := NewTimeGrid(9, 21)
	if i := g.Index("10:30 ~ 11:00"); i != 3 {
		t.Fatalf("Index = %d, want 3", i)
	}
	if i := g.Index("10:30 ~ 11:30"); i != -1 {
		t.Fatalf("Index of 60-minute label = %d, want -1", i)
	}
	if i := g.StartIndex("10:30"); i != 3 {
		t.Fatalf("StartIndex = %d, want 3", i)
	}
	if i := g.StartIndex("21:00"); i != -1 {
		t.Fatalf("StartIndex past close = %d, want -1", i)
	}
}

func TestMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"21:00", 1260, true},
		{"9:05", 545, true},
		{"0930", 0, false},
		{"aa:bb", 0, false},
		{"10:75", 0, false},
		{"24:00", 1440, true},
		{"24:59", 0, false},
		{"24:01", 0, false},
		{"25:00", 0, false},
	}
	for _, tc := range cases {
		got, err := Minutes(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("Minutes(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && !errors.Is(err, ErrMalformedTime) {
			t.Errorf("Minutes(%q) error = %v; want ErrMalformedTime", tc.in, err)
		}
	}
}

func TestRangeMinutes(t *testing.T) {
	s, e, err := RangeMinutes("13:00 ~ 14:00")
	if err != nil || s != 780 || e != 840 {
		t.Fatalf("RangeMinutes = %d, %d, %v", s, e, err)
	}
	if _, _, err := RangeMinutes("13:00-14:00"); !errors.Is(err, ErrMalformedTime) {
		t.Fatalf("expected ErrMalformedTime, got %v", err)
	}
}
