package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchKillFile_CancelsOnFileCreation(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	WatchKillFile(ctx, dir, cancel)

	killPath := filepath.Join(dir, sessionLogDir, killSignalDir, killSignalFile)
	if err := os.WriteFile(killPath, []byte("now"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after kill file creation")
	}
}

func TestWatchKillFile_PreexistingFileCancelsImmediately(t *testing.T) {
	dir := t.TempDir()
	signalsDir := filepath.Join(dir, sessionLogDir, killSignalDir)
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(signalsDir, killSignalFile), []byte("now"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	WatchKillFile(ctx, dir, cancel)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled for a pre-existing kill file")
	}
}
