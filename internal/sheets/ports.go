package sheets

import (
	"context"
	"errors"

	"warikan/internal/core"
)

// ErrNoSource is returned when no ledger endpoint has been configured yet.
var ErrNoSource = errors.New("no transaction source configured")

// Ports for outbound adapters.
type (
	// TransactionSource returns the whole household ledger. Every call is a
	// full fetch; there is no incremental update.
	TransactionSource interface {
		FetchTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// AdvanceStore keeps the per-month amount the counterparty advanced
	// outside the ledger. A month never written reads as zero.
	AdvanceStore interface {
		GetAdvance(ctx context.Context, p core.Period) (int64, error)
		SetAdvance(ctx context.Context, p core.Period, amount int64) error
		// ListAdvances returns January..December of year.
		ListAdvances(ctx context.Context, year int) ([12]int64, error)
	}

	// SettingsStore is a small key-value store for dashboard settings such
	// as the ledger endpoint URL. A missing key reads as "".
	SettingsStore interface {
		GetSetting(ctx context.Context, key string) (string, error)
		SetSetting(ctx context.Context, key, value string) error
	}

	// SnapshotStore records computed settlements. AppendSnapshot reports
	// false when a snapshot with the same non-empty MessageID already exists.
	// LatestSnapshot fails with a not-found error when the period has none.
	SnapshotStore interface {
		AppendSnapshot(ctx context.Context, s core.Snapshot) (bool, error)
		ListSnapshots(ctx context.Context, year int) ([]core.Snapshot, error)
		LatestSnapshot(ctx context.Context, p core.Period) (core.Snapshot, error)
	}
)

// SettingSourceURL is the settings key holding the ledger endpoint URL.
const SettingSourceURL = "gas_url"

// AdvanceKey returns the settings-style key an advance is stored under.
func AdvanceKey(p core.Period) string {
	return "girlfriend_advance_" + p.Key()
}
