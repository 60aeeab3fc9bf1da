package board

import (
	"fmt"
	"time"
)

// MergedMinutes is the length of one booking of a merged program.
const MergedMinutes = 2 * SlotMinutes

// ResolutionWarning reports a stored reservation whose time range could
// not be placed exactly on the grid.  The accompanying row is still
// usable (row 0, or the base row of an odd match) so the board keeps
// rendering.
type ResolutionWarning struct {
	EffectiveTime string
	Program       string
	Row           int
	Reason        string
}

func (w *ResolutionWarning) Error() string {
	return fmt.Sprintf("resolve %q for %s: %s (using row %d)", w.EffectiveTime, w.Program, w.Reason, w.Row)
}

// Resolver maps between grid cells and effective time labels.
type Resolver struct {
	grid    *TimeGrid
	catalog *Catalog
}

// NewResolver binds a resolver to a grid and catalog.
func NewResolver(grid *TimeGrid, catalog *Catalog) *Resolver {
	return &Resolver{grid: grid, catalog: catalog}
}

// Grid returns the time grid.
func (r *Resolver) Grid() *TimeGrid { return r.grid }

// Catalog returns the program catalog.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// ResolveRow returns the base row of a stored reservation.  A non-nil
// error is always a *ResolutionWarning; the returned row is the fallback
// to use when the caller keeps the record.
func (r *Resolver) ResolveRow(effectiveTime, program string) (int, error) {
	if !r.catalog.IsMerged(program) {
		if i := r.grid.Index(effectiveTime); i >= 0 {
			return i, nil
		}
		return 0, &ResolutionWarning{EffectiveTime: effectiveTime, Program: program, Reason: "no matching slot"}
	}
	start, _, err := SplitRange(effectiveTime)
	if err != nil {
		return 0, &ResolutionWarning{EffectiveTime: effectiveTime, Program: program, Reason: "malformed range"}
	}
	i := r.grid.StartIndex(start)
	if i < 0 {
		return 0, &ResolutionWarning{EffectiveTime: effectiveTime, Program: program, Reason: "no slot starts at " + start}
	}
	if i%2 == 1 {
		return i - 1, &ResolutionWarning{EffectiveTime: effectiveTime, Program: program, Row: i - 1, Reason: "merged booking starts on an odd row"}
	}
	return i, nil
}

// BaseRow returns the row a cell is addressed by: merged programs collapse
// an odd row onto the even row above it.
func (r *Resolver) BaseRow(row, col int) int {
	program, ok := r.catalog.Program(col)
	if ok && r.catalog.IsMerged(program) && row%2 == 1 {
		return row - 1
	}
	return row
}

// EffectiveTimeForCell returns the time range booked by claiming (row, col).
// Merged programs yield a 60-minute range starting at the base row, so
// both rows of a pair give the same label.
func (r *Resolver) EffectiveTimeForCell(row, col int) (string, error) {
	program, ok := r.catalog.Program(col)
	if !ok {
		return "", fmt.Errorf("column %d out of range", col)
	}
	base := r.BaseRow(row, col)
	label, ok := r.grid.Label(base)
	if !ok {
		return "", fmt.Errorf("row %d out of range", row)
	}
	if !r.catalog.IsMerged(program) {
		return label, nil
	}
	start, _, err := RangeMinutes(label)
	if err != nil {
		return "", err
	}
	return FormatRange(start, start+MergedMinutes), nil
}

// CellExpired reports whether the range booked by (row, col) has fully
// elapsed at now.  Cells outside the grid are never expired.
func (r *Resolver) CellExpired(row, col int, now time.Time) bool {
	label, err := r.EffectiveTimeForCell(row, col)
	if err != nil {
		return false
	}
	return IsExpired(label, now)
}

// Key is the grid key of a cell, "{row}-{col}".
func Key(row, col int) string {
	return fmt.Sprintf("%d-%d", row, col)
}
