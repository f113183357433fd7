package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "ven.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ven.yaml")
	require.NoError(t, os.WriteFile(path, []byte("optimize: 3\nwith:\n  - net\n  - fs\nport: 9001\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Optimize)
	require.Equal(t, 9001, cfg.Port)
	require.True(t, cfg.HasCategory("net"))
	require.False(t, cfg.HasCategory("net2"))
}

func TestLoadMalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ven.yaml")
	require.NoError(t, os.WriteFile(path, []byte("optimize: [this is not a number"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
