package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"warikan/internal/core"
	ports "warikan/internal/sheets"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Fixed width so computed_at sorts correctly as text.
const snapshotTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ ports.AdvanceStore  = (*SQLiteRepository)(nil)
	_ ports.SettingsStore = (*SQLiteRepository)(nil)
	_ ports.SnapshotStore = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; serialising through one connection
	// avoids SQLITE_BUSY between the server and its background jobs.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetAdvance implements sheets.AdvanceStore. A month never written reads as 0.
func (r *SQLiteRepository) GetAdvance(ctx context.Context, p core.Period) (int64, error) {
	amount, err := r.queries.GetAdvance(ctx, int64(p.Year), int64(p.Month))
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get advance %s: %w", p, err)
	}
	return amount, nil
}

// SetAdvance implements sheets.AdvanceStore.
func (r *SQLiteRepository) SetAdvance(ctx context.Context, p core.Period, amount int64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("advance must not be negative: %d", amount)
	}
	err := r.queries.UpsertAdvance(ctx, UpsertAdvanceParams{
		Year:   int64(p.Year),
		Month:  int64(p.Month),
		Amount: amount,
	})
	if err != nil {
		return fmt.Errorf("set advance %s: %w", p, err)
	}

	slog.InfoContext(ctx, "Advance saved to SQLite",
		"period", p.String(),
		"amount", amount)
	return nil
}

// ListAdvances implements sheets.AdvanceStore.
func (r *SQLiteRepository) ListAdvances(ctx context.Context, year int) ([12]int64, error) {
	var out [12]int64
	rows, err := r.queries.ListAdvancesByYear(ctx, int64(year))
	if err != nil {
		return out, fmt.Errorf("list advances %d: %w", year, err)
	}
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			out[row.Month-1] = row.Amount
		}
	}
	return out, nil
}

// GetSetting implements sheets.SettingsStore. A missing key reads as "".
func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	v, err := r.queries.GetSetting(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return v, nil
}

// SetSetting implements sheets.SettingsStore. An empty value removes the key.
func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	var err error
	if strings.TrimSpace(value) == "" {
		err = r.queries.DeleteSetting(ctx, key)
	} else {
		err = r.queries.UpsertSetting(ctx, key, value)
	}
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// AppendSnapshot implements sheets.SnapshotStore.
func (r *SQLiteRepository) AppendSnapshot(ctx context.Context, s core.Snapshot) (bool, error) {
	if s.ComputedAt.IsZero() {
		s.ComputedAt = time.Now()
	}
	n, err := r.queries.CreateSnapshot(ctx, CreateSnapshotParams{
		MessageID:          sql.NullString{String: s.MessageID, Valid: s.MessageID != ""},
		Year:               int64(s.Period.Year),
		Month:              int64(s.Period.Month),
		SharedTotal:        s.SharedTotal,
		FullReimburseTotal: s.FullReimburseTotal,
		TotalBilling:       s.TotalBilling,
		AdvanceAmount:      s.AdvanceAmount,
		FinalDue:           s.FinalDue,
		ComputedAt:         s.ComputedAt.UTC().Format(snapshotTimeLayout),
	})
	if err != nil {
		return false, fmt.Errorf("create snapshot: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "Snapshot already recorded, skipping", "message_id", s.MessageID)
		return false, nil
	}
	return true, nil
}

// ListSnapshots implements sheets.SnapshotStore, oldest first per month.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, year int) ([]core.Snapshot, error) {
	rows, err := r.queries.ListSnapshotsByYear(ctx, int64(year))
	if err != nil {
		return nil, fmt.Errorf("list snapshots %d: %w", year, err)
	}
	out := make([]core.Snapshot, 0, len(rows))
	for _, row := range rows {
		computed, err := time.Parse(snapshotTimeLayout, row.ComputedAt)
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: parse computed_at: %w", row.ID, err)
		}
		out = append(out, core.Snapshot{
			ID:                 row.ID,
			MessageID:          row.MessageID.String,
			Period:             core.Period{Year: int(row.Year), Month: int(row.Month)},
			SharedTotal:        row.SharedTotal,
			FullReimburseTotal: row.FullReimburseTotal,
			TotalBilling:       row.TotalBilling,
			AdvanceAmount:      row.AdvanceAmount,
			FinalDue:           row.FinalDue,
			ComputedAt:         computed,
		})
	}
	return out, nil
}

// LatestSnapshot returns the most recent snapshot of a period.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context, p core.Period) (core.Snapshot, error) {
	all, err := r.ListSnapshots(ctx, p.Year)
	if err != nil {
		return core.Snapshot{}, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Period == p {
			return all[i], nil
		}
	}
	return core.Snapshot{}, fmt.Errorf("snapshot %s: %w", p, ErrNotFound)
}
