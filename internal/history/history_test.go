package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(i int) Entry {
	return Entry{
		Filename:    fmt.Sprintf("form-%02d.pdf", i),
		FieldCount:  i,
		FormTitle:   fmt.Sprintf("Form %d", i),
		Provider:    "OpenAI",
		ExtractedAt: time.Date(2025, 6, 1, 12, 0, i, 0, time.UTC),
	}
}

func TestMemStoreBound(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore(10)

	for i := 1; i <= 12; i++ {
		require.NoError(t, s.Append(ctx, entry(i)))
	}

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 10, "history never exceeds its bound")

	// Most recent first; the two oldest were evicted.
	assert.Equal(t, "form-12.pdf", got[0].Filename)
	assert.Equal(t, "form-03.pdf", got[9].Filename)
}

func TestSQLiteStoreBound(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := OpenSQLite(ctx, path, 10, nil)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	for i := 1; i <= 12; i++ {
		require.NoError(t, s.Append(ctx, entry(i)))
	}

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "form-12.pdf", got[0].Filename)
	assert.Equal(t, "form-03.pdf", got[9].Filename)
	assert.Equal(t, 12, got[0].FieldCount)
	assert.Equal(t, entry(12).ExtractedAt, got[0].ExtractedAt)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := OpenSQLite(ctx, path, 10, nil)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, entry(1)))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(ctx, path, 10, nil)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	got, err := s2.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "form-01.pdf", got[0].Filename)
}
