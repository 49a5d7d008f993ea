package watchcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellrow/netprobe/internal/netprobecfg"
)

func TestStartWithoutPathLoadsDefaultsOnly(t *testing.T) {
	w, err := New("")
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, netprobecfg.Default(), w.Config())
}

func TestReloadInvokesCallbacksWithOldAndNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	w, err := New(path)
	require.NoError(t, err)
	defer w.Stop()
	w.reloadDelay = 0

	var gotOld, gotNew *netprobecfg.Config
	done := make(chan struct{}, 1)
	w.AddCallback(func(old, new *netprobecfg.Config) error {
		gotOld, gotNew = old, new
		done <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, "info", w.Config().Log.Level)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}

	require.NotNil(t, gotOld)
	require.NotNil(t, gotNew)
	assert.Equal(t, "info", gotOld.Log.Level)
	assert.Equal(t, "debug", gotNew.Log.Level)
	assert.Equal(t, "debug", w.Config().Log.Level)
}
