package board

// Program names of the default catalog.
const (
	ProgramAR         = "AR게임"
	ProgramXR         = "XR게임"
	ProgramArcadeA    = "오락게임A"
	ProgramArcadeB    = "오락게임B"
	ProgramArcadeC    = "오락게임C"
	ProgramRacingA    = "레이싱게임A"
	ProgramRacingB    = "레이싱게임B"
	ProgramBasketball = "농구게임"
	ProgramKaraokeA   = "노래방A"
	ProgramKaraokeB   = "노래방B"
	ProgramPool       = "포켓볼"
)

// Catalog is the fixed, ordered list of bookable programs.  A program's
// position is its grid column.
type Catalog struct {
	programs []string
	cols     map[string]int
	merged   map[string]bool
	groups   map[string]int
}

// NewCatalog builds a catalog.  merged lists the programs booked in
// 60-minute units; groups lists sets of programs of which one name may
// hold at most one reservation.
func NewCatalog(programs, merged []string, groups ...[]string) *Catalog {
	c := &Catalog{
		programs: append([]string(nil), programs...),
		cols:     make(map[string]int, len(programs)),
		merged:   make(map[string]bool, len(merged)),
		groups:   make(map[string]int),
	}
	for i, p := range programs {
		c.cols[p] = i
	}
	for _, p := range merged {
		c.merged[p] = true
	}
	for gi, g := range groups {
		for _, p := range g {
			c.groups[p] = gi
		}
	}
	return c
}

// DefaultCatalog returns the eleven arcade stations in board order.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		[]string{
			ProgramAR, ProgramXR, ProgramArcadeA, ProgramArcadeB, ProgramArcadeC,
			ProgramRacingA, ProgramRacingB, ProgramBasketball, ProgramKaraokeA, ProgramKaraokeB, ProgramPool,
		},
		[]string{ProgramKaraokeA, ProgramKaraokeB, ProgramPool},
		[]string{ProgramKaraokeA, ProgramKaraokeB},
		[]string{ProgramRacingA, ProgramRacingB},
	)
}

// Programs returns a copy of the program names in column order.
func (c *Catalog) Programs() []string {
	return append([]string(nil), c.programs...)
}

// Len is the number of columns.
func (c *Catalog) Len() int { return len(c.programs) }

// Program returns the program at col.
func (c *Catalog) Program(col int) (string, bool) {
	if col < 0 || col >= len(c.programs) {
		return "", false
	}
	return c.programs[col], true
}

// Col returns the column of program, or -1 when it is not in the catalog.
func (c *Catalog) Col(program string) int {
	if i, ok := c.cols[program]; ok {
		return i
	}
	return -1
}

// Has reports whether program is in the catalog.
func (c *Catalog) Has(program string) bool {
	_, ok := c.cols[program]
	return ok
}

// IsMerged reports whether program is booked in 60-minute units.
func (c *Catalog) IsMerged(program string) bool { return c.merged[program] }

// Merged returns the merged programs in column order.
func (c *Catalog) Merged() []string {
	var out []string
	for _, p := range c.programs {
		if c.merged[p] {
			out = append(out, p)
		}
	}
	return out
}

// SameGroup reports whether a and b belong to the same exclusivity group.
func (c *Catalog) SameGroup(a, b string) bool {
	ga, okA := c.groups[a]
	gb, okB := c.groups[b]
	return okA && okB && ga == gb
}

// InGroup reports whether program belongs to any exclusivity group.
func (c *Catalog) InGroup(program string) bool {
	_, ok := c.groups[program]
	return ok
}
