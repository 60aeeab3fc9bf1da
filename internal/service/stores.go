// Package service holds the board's stateful use cases: the published
// board snapshot, reservation proposals, admin toggles, the daily reset
// and the expiry purge.  Persistence is reached through the store
// interfaces below, implemented by package repository.
package service

import (
	"context"

	"github.com/iliyamo/arcade-reservation-board/internal/model"
	"github.com/iliyamo/arcade-reservation-board/internal/queue"
)

// ReservationStore persists reservations.
type ReservationStore interface {
	ListAll(ctx context.Context) ([]model.Reservation, error)
	Create(ctx context.Context, res *model.Reservation) error
	DeleteByID(ctx context.Context, id uint64) error
	DeleteAll(ctx context.Context) (int64, error)
	DeleteByIDs(ctx context.Context, ids []uint64) (int64, error)
}

// LabelStore persists a set of disabled program names or time labels.
type LabelStore interface {
	ListAll(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, value string) error
	Delete(ctx context.Context, value string) error
}

// ResetLogStore records which dates have been reset.
type ResetLogStore interface {
	Exists(ctx context.Context, date string) (bool, error)
	Insert(ctx context.Context, date string) error
}

// EventPublisher delivers board events.  Failures are logged, never
// surfaced to the caller that triggered the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BoardEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.BoardEvent) error { return nil }
