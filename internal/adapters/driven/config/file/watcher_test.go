package file

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, store *ConfigStore) <-chan struct{} {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 4)
	done := make(chan error, 1)

	w := NewWatcher(store)
	w.delay = 10 * time.Millisecond
	go func() {
		done <- w.Watch(ctx, func() { changed <- struct{}{} })
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return changed
}

func TestWatcher_ReloadsOutsideEdits(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("view.page_size", 12))
	changed := startWatcher(t, store)

	require.NoError(t, os.WriteFile(store.Path(), []byte("[view]\npage_size = 96\n"), 0600))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected onChange after outside edit")
	}
	assert.Equal(t, 96, store.GetInt("view.page_size"))
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	store := newTestStore(t)
	changed := startWatcher(t, store)

	require.NoError(t, store.Set("view.display", "list"))

	select {
	case <-changed:
		t.Fatal("own write must not trigger onChange")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresInvalidFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("view.sort", "shortname"))
	changed := startWatcher(t, store)

	require.NoError(t, os.WriteFile(store.Path(), []byte("view = [broken"), 0600))

	select {
	case <-changed:
		t.Fatal("invalid file must not trigger onChange")
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, "shortname", store.GetString("view.sort"))
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWatcher(store).Watch(ctx, func() {})

	assert.NoError(t, err)
}
