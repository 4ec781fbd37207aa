package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesAndTriggersOnWrite(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0o644))

	var mu sync.Mutex
	var seen []string
	triggered := make(chan struct{}, 1)

	ignore := func(relPath string) bool { return strings.HasPrefix(relPath, ".git") }
	w, err := New(root, ignore, func(ctx context.Context, changed []string) {
		mu.Lock()
		seen = append(seen, changed...)
		mu.Unlock()
		select {
		case triggered <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n\nfunc A() {}\n"), 0o644))

	select {
	case <-triggered:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not trigger within timeout")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen, "a.go")
}

func TestWatcherIgnoresMatchedPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))

	triggered := make(chan struct{}, 1)
	ignore := func(relPath string) bool { return strings.HasPrefix(relPath, ".git") }
	w, err := New(root, ignore, func(ctx context.Context, changed []string) {
		select {
		case triggered <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0o644))

	select {
	case <-triggered:
		t.Fatal("watcher should not trigger for ignored paths")
	case <-time.After(200 * time.Millisecond):
	}
}
