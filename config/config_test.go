package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harmonseq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
tracks: 2
beats_per_bar: 7
beat_unit: 8
analysis_delay: 1s
dynamo:
  table: progressions
`), 0o644))
	t.Setenv("HARMONSEQ_UNDO_DEPTH", "5")
	t.Setenv("DYNAMO_ENDPOINT", "http://localhost:8000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(":9000", cfg.Listen)
	assert.Equal(2, cfg.Tracks)
	assert.Equal(5, cfg.UndoDepth)
	assert.Equal(time.Second, cfg.AnalysisDelay)
	assert.Equal(120, cfg.TicksPerQuarter)
	assert.Equal(7, cfg.BeatsPerBar)
	assert.Equal(8, cfg.BeatUnit)
	assert.Equal(Dynamo{Endpoint: "http://localhost:8000", Region: "localhost", Table: "progressions"}, cfg.Dynamo)
	assert.True(cfg.Dynamo.Enabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracks: 0\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("beat_unit: 6\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("tracks: [\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
