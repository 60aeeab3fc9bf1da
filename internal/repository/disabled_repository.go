package repository

import (
	"context"
	"database/sql"
)

// labelSet is the shared shape of disabled_programs and disabled_times:
// a single primary key column holding a program name or a time label.
type labelSet struct {
	db     *sql.DB
	table  string
	column string
}

func (s labelSet) listAll(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+s.column+` FROM `+s.table+` ORDER BY `+s.column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// insert is idempotent: disabling an already disabled label is a no-op.
func (s labelSet) insert(ctx context.Context, v string) error {
	_, err := s.db.ExecContext(ctx, `INSERT IGNORE INTO `+s.table+` (`+s.column+`) VALUES (?)`, v)
	return err
}

func (s labelSet) delete(ctx context.Context, v string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE `+s.column+` = ?`, v)
	return err
}

// DisabledProgramRepo stores programs an operator has switched off.
type DisabledProgramRepo struct{ set labelSet }

// NewDisabledProgramRepo returns a DisabledProgramRepo bound to db.
func NewDisabledProgramRepo(db *sql.DB) *DisabledProgramRepo {
	return &DisabledProgramRepo{set: labelSet{db: db, table: "disabled_programs", column: "program"}}
}

// ListAll returns every disabled program name.
func (r *DisabledProgramRepo) ListAll(ctx context.Context) ([]string, error) {
	return r.set.listAll(ctx)
}

// Insert disables program.
func (r *DisabledProgramRepo) Insert(ctx context.Context, program string) error {
	return r.set.insert(ctx, program)
}

// Delete re-enables program.
func (r *DisabledProgramRepo) Delete(ctx context.Context, program string) error {
	return r.set.delete(ctx, program)
}

// DisabledTimeRepo stores time slot labels an operator has switched off.
type DisabledTimeRepo struct{ set labelSet }

// NewDisabledTimeRepo returns a DisabledTimeRepo bound to db.
func NewDisabledTimeRepo(db *sql.DB) *DisabledTimeRepo {
	return &DisabledTimeRepo{set: labelSet{db: db, table: "disabled_times", column: "time_label"}}
}

func (r *DisabledTimeRepo) ListAll(ctx context.Context) ([]string, error) {
	return r.set.listAll(ctx)
}

func (r *DisabledTimeRepo) Insert(ctx context.Context, label string) error {
	return r.set.insert(ctx, label)
}

func (r *DisabledTimeRepo) Delete(ctx context.Context, label string) error {
	return r.set.delete(ctx, label)
}
