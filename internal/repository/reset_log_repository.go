package repository

import (
	"context"
	"database/sql"
)

// ResetLogRepo records the dates on which the board was wiped.
type ResetLogRepo struct {
	db *sql.DB
}

func NewResetLogRepo(db *sql.DB) *ResetLogRepo { return &ResetLogRepo{db: db} }

// Exists reports whether a reset was already recorded for date (YYYY-MM-DD).
func (r *ResetLogRepo) Exists(ctx context.Context, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reset_logs WHERE reset_date = ?)`, date).Scan(&exists)
	return exists, err
}

// Insert records a reset for date.  ErrConflict when another process got
// there first.
func (r *ResetLogRepo) Insert(ctx context.Context, date string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO reset_logs (reset_date) VALUES (?)`, date)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}
