package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL statements of the store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const getAdvance = `SELECT amount FROM advances WHERE year = ? AND month = ?`

func (q *Queries) GetAdvance(ctx context.Context, year, month int64) (int64, error) {
	var amount int64
	err := q.db.QueryRowContext(ctx, getAdvance, year, month).Scan(&amount)
	return amount, err
}

const upsertAdvance = `INSERT INTO advances (year, month, amount, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (year, month) DO UPDATE SET amount = excluded.amount, updated_at = CURRENT_TIMESTAMP`

type UpsertAdvanceParams struct {
	Year   int64
	Month  int64
	Amount int64
}

func (q *Queries) UpsertAdvance(ctx context.Context, arg UpsertAdvanceParams) error {
	_, err := q.db.ExecContext(ctx, upsertAdvance, arg.Year, arg.Month, arg.Amount)
	return err
}

const listAdvancesByYear = `SELECT month, amount FROM advances WHERE year = ? ORDER BY month`

type ListAdvancesByYearRow struct {
	Month  int64
	Amount int64
}

func (q *Queries) ListAdvancesByYear(ctx context.Context, year int64) ([]ListAdvancesByYearRow, error) {
	rows, err := q.db.QueryContext(ctx, listAdvancesByYear, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListAdvancesByYearRow
	for rows.Next() {
		var i ListAdvancesByYearRow
		if err := rows.Scan(&i.Month, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSetting = `SELECT value FROM settings WHERE key = ?`

func (q *Queries) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getSetting, key).Scan(&value)
	return value, err
}

const upsertSetting = `INSERT INTO settings (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

func (q *Queries) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, upsertSetting, key, value)
	return err
}

const deleteSetting = `DELETE FROM settings WHERE key = ?`

func (q *Queries) DeleteSetting(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteSetting, key)
	return err
}

const createSnapshot = `INSERT INTO settlement_snapshots (
    message_id, year, month, shared_total, full_reimburse_total,
    total_billing, advance_amount, final_due, computed_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (message_id) DO NOTHING`

type CreateSnapshotParams struct {
	MessageID          sql.NullString
	Year               int64
	Month              int64
	SharedTotal        int64
	FullReimburseTotal int64
	TotalBilling       int64
	AdvanceAmount      int64
	FinalDue           int64
	ComputedAt         string
}

// CreateSnapshot returns the number of inserted rows (0 on a duplicate
// message id).
func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createSnapshot,
		arg.MessageID,
		arg.Year,
		arg.Month,
		arg.SharedTotal,
		arg.FullReimburseTotal,
		arg.TotalBilling,
		arg.AdvanceAmount,
		arg.FinalDue,
		arg.ComputedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listSnapshotsByYear = `SELECT id, message_id, year, month, shared_total, full_reimburse_total,
    total_billing, advance_amount, final_due, computed_at
FROM settlement_snapshots
WHERE year = ?
ORDER BY month, computed_at, id`

type SettlementSnapshot struct {
	ID                 int64
	MessageID          sql.NullString
	Year               int64
	Month              int64
	SharedTotal        int64
	FullReimburseTotal int64
	TotalBilling       int64
	AdvanceAmount      int64
	FinalDue           int64
	ComputedAt         string
}

func (q *Queries) ListSnapshotsByYear(ctx context.Context, year int64) ([]SettlementSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshotsByYear, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SettlementSnapshot
	for rows.Next() {
		var i SettlementSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.MessageID,
			&i.Year,
			&i.Month,
			&i.SharedTotal,
			&i.FullReimburseTotal,
			&i.TotalBilling,
			&i.AdvanceAmount,
			&i.FinalDue,
			&i.ComputedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
