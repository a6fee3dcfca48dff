package services

import (
	"context"
	"fmt"
	"log/slog"

	"warikan/internal/core"
	"warikan/internal/sheets"
)

// Publisher announces that a month's settlement changed.
type Publisher interface {
	PublishRecompute(ctx context.Context, p core.Period, reason string) error
}

// AdvanceService stores the per-month advance and notifies the worker.
type AdvanceService struct {
	store     sheets.AdvanceStore
	publisher Publisher
	reason    string
}

// NewAdvanceService creates the service; publisher may be nil.
func NewAdvanceService(store sheets.AdvanceStore, publisher Publisher, reason string) *AdvanceService {
	return &AdvanceService{store: store, publisher: publisher, reason: reason}
}

// SetAdvance parses free-text input (every non-digit is dropped, empty
// means 0), stores it and returns the stored amount.
func (s *AdvanceService) SetAdvance(ctx context.Context, year, month int, input string) (int64, error) {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return 0, err
	}
	amount := core.ParseYenInput(input)
	if err := s.store.SetAdvance(ctx, p, amount); err != nil {
		return 0, fmt.Errorf("save advance: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRecompute(ctx, p, s.reason); err != nil {
			// the advance is stored; the snapshot will catch up on the next tick
			slog.ErrorContext(ctx, "Failed to publish recompute message",
				"period", p.String(), "error", err)
		}
	} else {
		slog.DebugContext(ctx, "AMQP client not available, skipping recompute message")
	}
	return amount, nil
}

// GetAdvance returns the stored advance of a month (0 when never set).
func (s *AdvanceService) GetAdvance(ctx context.Context, year, month int) (int64, error) {
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return 0, err
	}
	return s.store.GetAdvance(ctx, p)
}
