package service

import (
	"time"

	"github.com/iliyamo/arcade-reservation-board/internal/board"
	"github.com/iliyamo/arcade-reservation-board/internal/model"
)

// Snapshot is an immutable view of the board.  A new Snapshot is built for
// every reload or clock tick and published in one step; nothing mutates a
// Snapshot after it is published.
type Snapshot struct {
	// Reservations holds every stored reservation with Row recomputed
	// from its effective time and program.
	Reservations []model.Reservation
	// Clock is the board time the expiry flags were computed for.
	Clock time.Time

	cells            map[string]int
	disabledPrograms map[string]bool
	disabledTimes    map[string]bool
	expired          map[string]bool
}

// ReservationAt returns the reservation occupying the cell addressed by
// its base row.
func (s *Snapshot) ReservationAt(row, col int) (model.Reservation, bool) {
	i, ok := s.cells[board.Key(row, col)]
	if !ok {
		return model.Reservation{}, false
	}
	return s.Reservations[i], true
}

// Expired reports whether the cell's slot had elapsed at Clock.
func (s *Snapshot) Expired(row, col int) bool { return s.expired[board.Key(row, col)] }

func (s *Snapshot) ProgramDisabled(program string) bool { return s.disabledPrograms[program] }

func (s *Snapshot) TimeDisabled(label string) bool { return s.disabledTimes[label] }

// DisabledPrograms lists the disabled programs in catalog order.
func (s *Snapshot) DisabledPrograms(c *board.Catalog) []string {
	out := []string{}
	for _, p := range c.Programs() {
		if s.disabledPrograms[p] {
			out = append(out, p)
		}
	}
	return out
}

// DisabledTimes lists the disabled labels in grid order.
func (s *Snapshot) DisabledTimes(g *board.TimeGrid) []string {
	out := []string{}
	for _, l := range g.Labels() {
		if s.disabledTimes[l] {
			out = append(out, l)
		}
	}
	return out
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		cells:            map[string]int{},
		disabledPrograms: map[string]bool{},
		disabledTimes:    map[string]bool{},
		expired:          map[string]bool{},
	}
}

// withReservations returns a copy of s carrying rs.  rs must already have
// their rows resolved.
func (s *Snapshot) withReservations(r *board.Resolver, rs []model.Reservation) *Snapshot {
	next := *s
	next.Reservations = rs
	next.cells = make(map[string]int, len(rs))
	for i, res := range rs {
		col := r.Catalog().Col(res.Program)
		if col < 0 {
			continue
		}
		key := board.Key(res.Row, col)
		if _, dup := next.cells[key]; !dup {
			next.cells[key] = i
		}
	}
	return &next
}

func (s *Snapshot) withDisabled(programs, times []string) *Snapshot {
	next := *s
	next.disabledPrograms = toSet(programs)
	next.disabledTimes = toSet(times)
	return &next
}

// withClock recomputes the expiry flag of every cell on the grid.
func (s *Snapshot) withClock(r *board.Resolver, now time.Time) *Snapshot {
	next := *s
	next.Clock = now
	next.expired = make(map[string]bool)
	for row := 0; row < r.Grid().Len(); row++ {
		for col := 0; col < r.Catalog().Len(); col++ {
			if r.CellExpired(row, col, now) {
				next.expired[board.Key(row, col)] = true
			}
		}
	}
	return &next
}

func toSet(vs []string) map[string]bool {
	m := make(map[string]bool, len(vs))
	for _, v := range vs {
		m[v] = true
	}
	return m
}
