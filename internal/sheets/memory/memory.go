package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"warikan/internal/core"
	ports "warikan/internal/sheets"
)

// Source serves a ledger held in memory. It backs local development and
// tests; Replace swaps the whole ledger the way a spreadsheet edit would.
type Source struct {
	mu   sync.RWMutex
	rows []core.Transaction
	err  error
}

var _ ports.TransactionSource = (*Source)(nil)

func New(rows []core.Transaction) *Source {
	return &Source{rows: append([]core.Transaction(nil), rows...)}
}

// NewFromFile loads a JSON array of ledger rows, the same shape the script
// endpoint serves. A missing file yields an empty ledger.
func NewFromFile(path string) (*Source, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var rows []core.Transaction
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return New(rows), nil
}

// FetchTransactions returns a copy of the ledger.
func (s *Source) FetchTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return append(make([]core.Transaction, 0, len(s.rows)), s.rows...), nil
}

// Replace swaps the ledger contents.
func (s *Source) Replace(rows []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]core.Transaction(nil), rows...)
}

// FailWith makes every fetch return err until called again with nil.
func (s *Source) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
