package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"warikan/internal/core"
	ports "warikan/internal/sheets"
)

// MemoryStore is the map-backed twin of SQLiteRepository used by the memory
// backend and in tests. State is lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	advances  map[core.Period]int64
	settings  map[string]string
	snapshots []core.Snapshot
	seen      map[string]struct{}
}

var (
	_ ports.AdvanceStore  = (*MemoryStore)(nil)
	_ ports.SettingsStore = (*MemoryStore)(nil)
	_ ports.SnapshotStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		advances: make(map[core.Period]int64),
		settings: make(map[string]string),
		seen:     make(map[string]struct{}),
	}
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) GetAdvance(_ context.Context, p core.Period) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.advances[p], nil
}

func (m *MemoryStore) SetAdvance(_ context.Context, p core.Period, amount int64) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if amount < 0 {
		return fmt.Errorf("advance must not be negative: %d", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advances[p] = amount
	return nil
}

func (m *MemoryStore) ListAdvances(_ context.Context, year int) ([12]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out [12]int64
	for i := range out {
		out[i] = m.advances[core.Period{Year: year, Month: i + 1}]
	}
	return out, nil
}

func (m *MemoryStore) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

func (m *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(value) == "" {
		delete(m.settings, key)
		return nil
	}
	m.settings[key] = value
	return nil
}

func (m *MemoryStore) AppendSnapshot(_ context.Context, s core.Snapshot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.MessageID != "" {
		if _, dup := m.seen[s.MessageID]; dup {
			return false, nil
		}
		m.seen[s.MessageID] = struct{}{}
	}
	if s.ComputedAt.IsZero() {
		s.ComputedAt = time.Now()
	}
	s.ID = int64(len(m.snapshots) + 1)
	m.snapshots = append(m.snapshots, s)
	return true, nil
}

func (m *MemoryStore) ListSnapshots(_ context.Context, year int) ([]core.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Snapshot, 0)
	for _, s := range m.snapshots {
		if s.Period.Year == year {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Period.Month != out[j].Period.Month {
			return out[i].Period.Month < out[j].Period.Month
		}
		return out[i].ComputedAt.Before(out[j].ComputedAt)
	})
	return out, nil
}

func (m *MemoryStore) LatestSnapshot(_ context.Context, p core.Period) (core.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var (
		latest core.Snapshot
		found  bool
	)
	for _, s := range m.snapshots {
		if s.Period == p && (!found || !s.ComputedAt.Before(latest.ComputedAt)) {
			latest, found = s, true
		}
	}
	if !found {
		return core.Snapshot{}, fmt.Errorf("snapshot %s: %w", p, ErrNotFound)
	}
	return latest, nil
}
