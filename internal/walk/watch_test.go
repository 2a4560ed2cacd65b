package treewalk

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// startWatch runs Watch in the background, funneling results into a channel.
func startWatch(t *testing.T, root string, opts WatchOptions) (<-chan WatchResult, context.CancelFunc, <-chan error) {
	t.Helper()
	results := make(chan WatchResult, 16)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, root, opts, func(ctx context.Context, r WatchResult) error {
			results <- r
			return nil
		})
	}()

	// Give the watcher time to register before mutating the tree.
	time.Sleep(100 * time.Millisecond)
	return results, cancel, done
}

func waitForPath(t *testing.T, results <-chan WatchResult, path string, event WatchEvent) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case r := <-results:
			if r.Error != nil {
				t.Logf("watch error: %v", r.Error)
				continue
			}
			if r.Message.Path == path && r.Message.Event == event {
				return
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for %s event on %s", event, path)
		}
	}
}

func TestWatchReportsCreate(t *testing.T) {
	tempDir := t.TempDir()
	results, cancel, done := startWatch(t, tempDir, WatchOptions{
		Events: []WatchEvent{EventCreate},
	})
	defer cancel()

	file := filepath.Join(tempDir, "created.txt")
	if err := os.WriteFile(file, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	waitForPath(t, results, file, EventCreate)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
}

func TestWatchRecursiveSeedsExistingSubdirectories(t *testing.T) {
	tempDir := t.TempDir()
	sub := filepath.Join(tempDir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	results, cancel, done := startWatch(t, tempDir, WatchOptions{
		Recursive: true,
		Events:    []WatchEvent{EventCreate},
	})
	defer cancel()

	file := filepath.Join(sub, "nested.txt")
	if err := os.WriteFile(file, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	waitForPath(t, results, file, EventCreate)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
}

func TestWatchTimeout(t *testing.T) {
	tempDir := t.TempDir()

	start := time.Now()
	err := Watch(context.Background(), tempDir, WatchOptions{Timeout: 200 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Watch did not honor timeout, ran for %v", elapsed)
	}
}

func TestWatchNonexistentRoot(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), WatchOptions{}, nil)
	if err == nil {
		t.Error("Expected error for nonexistent root, got nil")
	}
}
