package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewLoader_LoadsInitialConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "top_k: 7\n")

	loader, err := NewLoader(nil, path)
	require.NoError(t, err)
	require.Equal(t, 7, loader.Current().TopK)
}

func TestNewLoader_MissingFileErrors(t *testing.T) {
	_, err := NewLoader(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoader_WatchPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "top_k: 3\n")

	loader, err := NewLoader(nil, path)
	require.NoError(t, err)

	received := make(chan Config, 1)
	loader.OnReload(func(cfg Config) {
		received <- cfg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loader.Watch(ctx)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("top_k: 9\n"), 0o644))

	select {
	case cfg := <-received:
		require.Equal(t, 9, cfg.TopK)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
