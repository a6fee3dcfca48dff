package backend

import (
	"context"
	"time"

	"warikan/internal/services"
	"warikan/internal/sheets"
)

// Store is everything the dashboard persists locally.
type Store interface {
	sheets.AdvanceStore
	sheets.SettingsStore
	sheets.SnapshotStore
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger source, the local store and an
// optional cleanup function. Settings is only set for the gas source.
type BackendResult struct {
	Source   sheets.TransactionSource
	Store    Store
	Settings *services.SourceSettings
	Cleanup  CleanupFunc
}

// Ping checks the store when it supports it.
func (r *BackendResult) Ping(ctx context.Context) error {
	if p, ok := r.Store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Source SourceType
	Store  StoreType

	// gas specific
	GASURL       string
	FetchTimeout time.Duration

	// memory source specific
	FixtureFile string

	// sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// sqlite specific
	SQLiteDBPath string
}

// SourceType selects where the ledger is read from.
type SourceType string

const (
	GASSource    SourceType = "gas"
	SheetsSource SourceType = "sheets"
	MemorySource SourceType = "memory"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case GASSource, SheetsSource, MemorySource:
		return true
	default:
		return false
	}
}

// StoreType selects where advances, settings and snapshots are kept.
type StoreType string

const (
	SQLiteStore StoreType = "sqlite"
	MemoryStore StoreType = "memory"
)

func (st StoreType) String() string {
	return string(st)
}

func (st StoreType) IsValid() bool {
	return st == SQLiteStore || st == MemoryStore
}
