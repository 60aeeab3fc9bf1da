package board

import "github.com/iliyamo/arcade-reservation-board/internal/model"

// DefaultNameLimit is the number of reservations one name may hold per day.
const DefaultNameLimit = 2

// Reason identifies why a reservation was rejected.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonOverlap         Reason = "overlap"
	ReasonAdjacent        Reason = "adjacent_same_program"
	ReasonGroupLimit      Reason = "group_limit"
	ReasonNameLimit       Reason = "name_limit"
	ReasonInvalidRange    Reason = "invalid_range"
	ReasonInvalidInput    Reason = "invalid_input"
	ReasonCellTaken       Reason = "cell_taken"
	ReasonProgramDisabled Reason = "program_disabled"
	ReasonTimeDisabled    Reason = "time_disabled"
	ReasonExpired         Reason = "expired"
)

// Message is the user-facing text for the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonOverlap:
		return "you already hold a reservation at this time"
	case ReasonAdjacent:
		return "consecutive reservations of the same program are not allowed"
	case ReasonGroupLimit:
		return "only one reservation is allowed in this program group"
	case ReasonNameLimit:
		return "reservation limit per person reached"
	case ReasonInvalidRange:
		return "invalid time range"
	case ReasonInvalidInput:
		return "name is required and party size must be between 1 and 4"
	case ReasonCellTaken:
		return "this slot is already reserved"
	case ReasonProgramDisabled:
		return "this program is disabled"
	case ReasonTimeDisabled:
		return "this time slot is disabled"
	case ReasonExpired:
		return "this time slot has already passed"
	}
	return string(r)
}

// Decision is the outcome of an admission check.
type Decision struct {
	Accepted bool
	Reason   Reason
}

func accept() Decision         { return Decision{Accepted: true} }
func reject(r Reason) Decision { return Decision{Reason: r} }

// Admission applies the per-name booking rules.
type Admission struct {
	catalog   *Catalog
	nameLimit int
}

// NewAdmission returns an admission controller.  A nameLimit below 1
// falls back to DefaultNameLimit.
func NewAdmission(catalog *Catalog, nameLimit int) *Admission {
	if nameLimit < 1 {
		nameLimit = DefaultNameLimit
	}
	return &Admission{catalog: catalog, nameLimit: nameLimit}
}

// CanAdmit decides whether name may book proposedRange on proposedProgram
// given the reservations already on the board.  Only reservations held by
// the same name are considered; whether the target cell is free, and
// whether the program or time is disabled or expired, is the caller's
// concern.
func (a *Admission) CanAdmit(name, proposedRange, proposedProgram string, existing []model.Reservation) Decision {
	pStart, pEnd, err := RangeMinutes(proposedRange)
	if err != nil || pEnd <= pStart {
		return reject(ReasonInvalidRange)
	}

	count := 0
	for _, res := range existing {
		if res.Name != name {
			continue
		}
		count++
		eStart, eEnd, err := RangeMinutes(res.EffectiveTime)
		if err != nil {
			return reject(ReasonOverlap)
		}
		if !(pEnd <= eStart || eEnd <= pStart) {
			return reject(ReasonOverlap)
		}
		if res.Program == proposedProgram && (pStart == eEnd || pEnd == eStart) {
			return reject(ReasonAdjacent)
		}
	}

	if a.catalog.InGroup(proposedProgram) {
		for _, res := range existing {
			if res.Name == name && a.catalog.SameGroup(res.Program, proposedProgram) {
				return reject(ReasonGroupLimit)
			}
		}
	}

	if count >= a.nameLimit {
		return reject(ReasonNameLimit)
	}
	return accept()
}
