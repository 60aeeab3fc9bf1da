// Package board holds the reservation rules of the arcade board: the time
// grid, the program catalog, the mapping between stored reservations and
// grid cells, admission control and expiry.  Everything here is pure and
// safe for concurrent use once constructed.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SlotMinutes is the length of one grid row.
const SlotMinutes = 30

// rangeSep separates the start and end of a time range label.
const rangeSep = " ~ "

// ErrMalformedTime is returned when a label cannot be parsed as "HH:MM"
// or "HH:MM ~ HH:MM".
var ErrMalformedTime = errors.New("malformed time label")

// TimeGrid is the ordered sequence of 30-minute slot labels covering the
// operating window.
type TimeGrid struct {
	openHour  int
	closeHour int
	labels    []string
	index     map[string]int
}

// NewTimeGrid builds the slot labels from openHour (inclusive) to
// closeHour (exclusive), e.g. 9 and 21 give 24 slots from
// "09:00 ~ 09:30" to "20:30 ~ 21:00".
func NewTimeGrid(openHour, closeHour int) *TimeGrid {
	g := &TimeGrid{openHour: openHour, closeHour: closeHour, index: make(map[string]int)}
	for m := openHour * 60; m+SlotMinutes <= closeHour*60; m += SlotMinutes {
		label := FormatRange(m, m+SlotMinutes)
		g.index[label] = len(g.labels)
		g.labels = append(g.labels, label)
	}
	return g
}

// Labels returns a copy of the slot labels in order.
func (g *TimeGrid) Labels() []string {
	out := make([]string, len(g.labels))
	copy(out, g.labels)
	return out
}

// Len is the number of rows in the grid.
func (g *TimeGrid) Len() int { return len(g.labels) }

// Label returns the label of row, or false when row is outside the grid.
func (g *TimeGrid) Label(row int) (string, bool) {
	if row < 0 || row >= len(g.labels) {
		return "", false
	}
	return g.labels[row], true
}

// Index returns the row whose label equals label exactly, or -1.
func (g *TimeGrid) Index(label string) int {
	if i, ok := g.index[label]; ok {
		return i
	}
	return -1
}

// StartIndex returns the first row whose start time equals start, or -1.
func (g *TimeGrid) StartIndex(start string) int {
	for i, l := range g.labels {
		if strings.HasPrefix(l, start+rangeSep) {
			return i
		}
	}
	return -1
}

// SplitRange splits "HH:MM ~ HH:MM" into its start and end labels.
func SplitRange(label string) (string, string, error) {
	start, end, ok := strings.Cut(label, rangeSep)
	if !ok || start == "" || end == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTime, label)
	}
	return start, end, nil
}

// Minutes converts "HH:MM" into minutes since midnight.  "24:00" is the
// only accepted hour-24 value and marks the end of the day.
func Minutes(hhmm string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, hhmm)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, hhmm)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, hhmm)
	}
	return hour*60 + minute, nil
}

// RangeMinutes converts a range label into start and end minutes since
// midnight.
func RangeMinutes(label string) (int, int, error) {
	s, e, err := SplitRange(label)
	if err != nil {
		return 0, 0, err
	}
	start, err := Minutes(s)
	if err != nil {
		return 0, 0, err
	}
	end, err := Minutes(e)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatRange renders a start/end pair as a range label.
func FormatRange(start, end int) string {
	return FormatClock(start) + rangeSep + FormatClock(end)
}
