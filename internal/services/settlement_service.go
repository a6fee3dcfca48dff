package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"warikan/internal/cache"
	"warikan/internal/core"
	"warikan/internal/settlement"
	"warikan/internal/sheets"
)

const ledgerCacheKey = "ledger"

// SettlementServiceConfig holds configuration for the settlement service
type SettlementServiceConfig struct {
	// CacheTTL is how long a fetched ledger is reused (default: 5m)
	CacheTTL time.Duration
	// Now is the clock used for the default year (default: time.Now)
	Now func() time.Time
}

// Overview describes the fetched ledger: which years can be selected and
// which month should be shown first.
type Overview struct {
	Years     []int       `json:"years"`
	Latest    core.Period `json:"latest"`
	HasLatest bool        `json:"has_latest"`
	Rows      int         `json:"rows"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// SettlementService fetches the ledger, resolves advances and runs the
// calculator.
type SettlementService struct {
	source   sheets.TransactionSource
	advances sheets.AdvanceStore
	policy   settlement.Policy
	ledger   *cache.LRUCache[[]core.Transaction]
	group    singleflight.Group
	// generation is bumped on every invalidation; a fetch only caches its
	// result if no invalidation happened while it ran.
	generation atomic.Uint64
	now        func() time.Time
}

func NewSettlementService(source sheets.TransactionSource, advances sheets.AdvanceStore, policy settlement.Policy, cfg SettlementServiceConfig) *SettlementService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SettlementService{
		source:   source,
		advances: advances,
		policy:   policy,
		ledger:   cache.NewLRUCache[[]core.Transaction](1, cfg.CacheTTL),
		now:      cfg.Now,
	}
}

// Cache exposes the ledger cache so it can be registered for cleanup.
func (s *SettlementService) Cache() *cache.LRUCache[[]core.Transaction] {
	return s.ledger
}

func (s *SettlementService) Policy() settlement.Policy {
	return s.policy
}

// Transactions returns the ledger, fetching it when the cached copy is
// missing or stale. Concurrent misses share one fetch.
func (s *SettlementService) Transactions(ctx context.Context) ([]core.Transaction, time.Time, error) {
	if txs, at, ok := s.ledger.GetWithTime(ledgerCacheKey); ok {
		return txs, at, nil
	}

	ch := s.group.DoChan(ledgerCacheKey, func() (interface{}, error) {
		gen := s.generation.Load()
		// detached so one caller's cancellation does not fail the others
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
		defer cancel()

		start := time.Now()
		txs, err := s.source.FetchTransactions(fetchCtx)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() == gen {
			s.ledger.Set(ledgerCacheKey, txs)
		}
		slog.InfoContext(ctx, "Ledger fetched",
			"rows", len(txs),
			"duration_ms", time.Since(start).Milliseconds())
		return txs, nil
	})

	select {
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, time.Time{}, fmt.Errorf("fetch ledger: %w", res.Err)
		}
		txs := res.Val.([]core.Transaction)
		_, at, _ := s.ledger.GetWithTime(ledgerCacheKey)
		return txs, at, nil
	}
}

// Invalidate drops the cached ledger. The next read starts a new fetch
// even if one is still in flight.
func (s *SettlementService) Invalidate() {
	s.generation.Add(1)
	s.ledger.Purge()
	s.group.Forget(ledgerCacheKey)
}

// Refresh drops the cached ledger and fetches it again.
func (s *SettlementService) Refresh(ctx context.Context) (Overview, error) {
	s.Invalidate()
	return s.Overview(ctx)
}

// Overview summarises the current ledger.
func (s *SettlementService) Overview(ctx context.Context) (Overview, error) {
	txs, at, err := s.Transactions(ctx)
	if err != nil {
		return Overview{}, err
	}
	loc := s.policy.Location
	ov := Overview{
		Years:     settlement.AvailableYears(txs, s.now(), loc),
		Rows:      len(txs),
		FetchedAt: at,
	}
	ov.Latest, ov.HasLatest = settlement.LatestPeriod(txs, loc)
	if !ov.HasLatest {
		ov.Latest = core.PeriodOf(s.now().In(locOrLocal(loc)))
	}
	return ov, nil
}

// Monthly settles one month using the stored advance for that month.
func (s *SettlementService) Monthly(ctx context.Context, year, month int) (settlement.MonthlyReport, error) {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return settlement.MonthlyReport{}, err
	}
	txs, _, err := s.Transactions(ctx)
	if err != nil {
		return settlement.MonthlyReport{}, err
	}
	advance, err := s.advances.GetAdvance(ctx, p)
	if err != nil {
		return settlement.MonthlyReport{}, fmt.Errorf("resolve advance: %w", err)
	}
	return settlement.ComputeMonthly(txs, p.Year, p.Month, advance, s.policy), nil
}

// Yearly settles a whole year using the twelve stored advances.
func (s *SettlementService) Yearly(ctx context.Context, year int) (settlement.YearlyReport, error) {
	if _, err := core.NewPeriod(year, 1); err != nil {
		return settlement.YearlyReport{}, err
	}
	txs, _, err := s.Transactions(ctx)
	if err != nil {
		return settlement.YearlyReport{}, err
	}
	advances, err := s.advances.ListAdvances(ctx, year)
	if err != nil {
		return settlement.YearlyReport{}, fmt.Errorf("resolve advances: %w", err)
	}
	return settlement.ComputeYearly(txs, year, advances, s.policy), nil
}

// Snapshot computes a month and converts it to a storable record.
func (s *SettlementService) Snapshot(ctx context.Context, p core.Period, messageID string) (core.Snapshot, error) {
	r, err := s.Monthly(ctx, p.Year, p.Month)
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.Snapshot{
		MessageID:          messageID,
		Period:             p,
		SharedTotal:        r.SharedTotal,
		FullReimburseTotal: r.FullReimburseTotal,
		TotalBilling:       r.TotalBilling,
		AdvanceAmount:      r.AdvanceAmount,
		FinalDue:           r.FinalDue,
		ComputedAt:         s.now(),
	}, nil
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
