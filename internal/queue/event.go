// Package queue defines the board events exchanged over RabbitMQ and the
// background consumer that journals them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// BoardQueueName is the durable queue every board event is routed to.
const BoardQueueName = "board.events"

// Event types.
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCancelled = "reservation.cancelled"
	TypeReservationsPurged   = "reservations.purged"
	TypeBoardReset           = "board.reset"
	TypeProgramToggled       = "program.toggled"
	TypeTimeToggled          = "time.toggled"
)

// BoardEvent describes one change to the board.  Fields that do not apply
// to a given Type are left zero and omitted from the JSON.
type BoardEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
	Program       string `json:"program,omitempty"`
	EffectiveTime string `json:"effective_time,omitempty"`
	Name          string `json:"name,omitempty"`
	People        int    `json:"people,omitempty"`
	Count         int64  `json:"count,omitempty"`
	Disabled      *bool  `json:"disabled,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// NewEvent stamps a fresh event id and the occurrence time in RFC 3339.
func NewEvent(typ string, at time.Time) BoardEvent {
	return BoardEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		OccurredAt: at.Format(time.RFC3339),
	}
}
