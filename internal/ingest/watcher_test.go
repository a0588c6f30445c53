package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains the event channel until it stays quiet for the given
// window.
func collect(t *testing.T, ch <-chan string, quiet time.Duration) []string {
	t.Helper()
	var out []string
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, p)
		case <-time.After(quiet):
			return out
		}
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	require.Error(t, err)
}

func TestWatcherInitialScanFiltersAllowList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "form.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true})
	require.NoError(t, err)

	got := collect(t, evCh, 200*time.Millisecond)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "form.pdf"),
		filepath.Join(dir, "scan.png"),
	}, got)
}

func TestWatcherEmitsOnlyAllowedFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}})
	require.NoError(t, err)

	ignored := filepath.Join(dir, "readme.txt")
	wanted := filepath.Join(dir, "incoming.pdf")
	require.NoError(t, os.WriteFile(ignored, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(wanted, []byte("x"), 0o644))

	got := collect(t, evCh, 500*time.Millisecond)
	assert.Contains(t, got, wanted)
	assert.NotContains(t, got, ignored)
}

func TestWatcherDebounceCoalesces(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	// A write burst on one file must collapse into a single event.
	path := filepath.Join(dir, "burst.pdf")
	for i := 1; i <= 3; i++ {
		require.NoError(t, os.WriteFile(path, make([]byte, i), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	got := collect(t, evCh, 500*time.Millisecond)
	assert.Equal(t, []string{path}, got)
}
