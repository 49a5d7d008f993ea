package netprobecfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasSaneTimingAndPorts(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg.Timing)
	assert.Equal(t, time.Second, cfg.Timing.ReceiveTimeout)
	assert.EqualValues(t, 4, cfg.Timing.Count)
	assert.EqualValues(t, 80, cfg.Ports.TCPDstPort)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netprobe.yaml")
	contents := "interface:\n  name: eth1\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Interface)
	assert.Equal(t, "eth1", cfg.Interface.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Untouched sections keep their built-in defaults.
	assert.EqualValues(t, 44322, cfg.Ports.TCPSrcPort)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interface: [this is not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
