package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/arcade-reservation-board/internal/model"
)

// ReservationRepo reads and writes the reservations table.  The row_idx
// column stores the grid row at creation time and backs the one
// reservation per cell unique key; callers recompute the row from
// effective_time and program when they load the board.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// deleteBatch bounds the number of ids in one DELETE ... IN statement.
const deleteBatch = 200

// ListAll returns every reservation ordered by id.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT id, row_idx, col, program, name, people, effective_time, created_at
               FROM reservations ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0, 32)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.Row, &res.Col, &res.Program, &res.Name,
			&res.People, &res.EffectiveTime, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Create inserts res and fills in its generated ID and CreatedAt.  A second
// reservation for the same (row, col) yields ErrConflict.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (row_idx, col, program, name, people, effective_time)
               VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, res.Row, res.Col, res.Program, res.Name, res.People, res.EffectiveTime)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Read back the server-side default.
	return r.db.QueryRowContext(ctx, `SELECT created_at FROM reservations WHERE id = ?`, res.ID).
		Scan(&res.CreatedAt)
}

// DeleteByID removes a single reservation.  ErrNotFound when no row matched.
func (r *ReservationRepo) DeleteByID(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll empties the board and returns the number of removed rows.
func (r *ReservationRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteByIDs removes the given reservations in batches inside one
// transaction and returns the number of removed rows.
func (r *ReservationRepo) DeleteByIDs(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for start := 0; start < len(ids); start += deleteBatch {
		end := start + deleteBatch
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		q := fmt.Sprintf(`DELETE FROM reservations WHERE id IN (%s)`, placeholders(len(chunk)))
		result, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}
