package services

import (
	"context"
	"fmt"
	"strings"

	"warikan/internal/config"
	"warikan/internal/sheets"
)

// SourceSettings resolves the ledger endpoint URL: a URL saved from the
// dashboard wins over the GAS_URL fallback.
type SourceSettings struct {
	store    sheets.SettingsStore
	fallback string
}

func NewSourceSettings(store sheets.SettingsStore, fallback string) *SourceSettings {
	return &SourceSettings{store: store, fallback: strings.TrimSpace(fallback)}
}

// SourceURL returns the configured URL or "" when none is set.
func (s *SourceSettings) SourceURL(ctx context.Context) (string, error) {
	v, err := s.store.GetSetting(ctx, sheets.SettingSourceURL)
	if err != nil {
		return "", fmt.Errorf("read source url: %w", err)
	}
	if v = strings.TrimSpace(v); v != "" {
		return v, nil
	}
	return s.fallback, nil
}

// Configured reports whether any URL is available.
func (s *SourceSettings) Configured(ctx context.Context) bool {
	u, err := s.SourceURL(ctx)
	return err == nil && u != ""
}

// SetSourceURL validates and stores the URL. An empty value clears the
// stored URL so the dashboard shows the setup form again (unless GAS_URL
// is set).
func (s *SourceSettings) SetSourceURL(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if err := config.ValidateSourceURL(raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSourceURL, err)
		}
	}
	if err := s.store.SetSetting(ctx, sheets.SettingSourceURL, raw); err != nil {
		return fmt.Errorf("save source url: %w", err)
	}
	return nil
}
