package service

import (
	"errors"

	"github.com/iliyamo/arcade-reservation-board/internal/board"
)

var (
	// ErrAdminDenied is returned for a wrong admin password or token.
	ErrAdminDenied = errors.New("admin authorization failed")
	// ErrUnknownProgram is returned when a toggle names a program that is
	// not in the catalog.
	ErrUnknownProgram = errors.New("unknown program")
	// ErrUnknownTime is returned when a toggle names a label that is not
	// on the time grid.
	ErrUnknownTime = errors.New("unknown time slot")
)

// RejectionError reports a proposal the board refused.
type RejectionError struct {
	Reason board.Reason
}

func (e *RejectionError) Error() string { return e.Reason.Message() }

func reject(r board.Reason) error { return &RejectionError{Reason: r} }

// IsRejection returns the rejection reason carried by err, if any.
func IsRejection(err error) (board.Reason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return board.ReasonNone, false
}
