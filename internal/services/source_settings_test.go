package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warikan/internal/storage"
)

func TestSourceSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing configured", func(t *testing.T) {
		s := NewSourceSettings(storage.NewMemoryStore(), "")
		u, err := s.SourceURL(ctx)
		require.NoError(t, err)
		assert.Empty(t, u)
		assert.False(t, s.Configured(ctx))
	})

	t.Run("fallback used", func(t *testing.T) {
		s := NewSourceSettings(storage.NewMemoryStore(), " https://example.com/exec ")
		u, err := s.SourceURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/exec", u)
		assert.True(t, s.Configured(ctx))
	})

	t.Run("stored url wins", func(t *testing.T) {
		s := NewSourceSettings(storage.NewMemoryStore(), "https://example.com/fallback")
		require.NoError(t, s.SetSourceURL(ctx, "https://script.google.com/macros/s/abc/exec"))
		u, err := s.SourceURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://script.google.com/macros/s/abc/exec", u)
	})

	t.Run("clearing restores fallback", func(t *testing.T) {
		s := NewSourceSettings(storage.NewMemoryStore(), "https://example.com/fallback")
		require.NoError(t, s.SetSourceURL(ctx, "https://example.com/saved"))
		require.NoError(t, s.SetSourceURL(ctx, "  "))
		u, err := s.SourceURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/fallback", u)
	})

	t.Run("invalid url rejected", func(t *testing.T) {
		store := storage.NewMemoryStore()
		s := NewSourceSettings(store, "")
		err := s.SetSourceURL(ctx, "ftp://example.com")
		assert.ErrorIs(t, err, ErrInvalidSourceURL)
		assert.False(t, s.Configured(ctx))
	})
}
