package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ray-engine/pkg/types"
)

// --- config ---

func TestDecodeConfigDefaults(t *testing.T) {
	c, err := decodeConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), c)
}

func TestDecodeConfigFileAndEnv(t *testing.T) {
	t.Setenv("RAY_ENGINE_STORE_PATH", "/tmp/env.db")

	v := viper.New()
	v.SetEnvPrefix("RAY_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
bank:
  dir: banks/v3
trend:
  horizon_runs: 3
server:
  read_timeout: 5s
batch:
  workers: 0
`)))

	c, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "banks/v3", c.Bank.Dir)
	assert.Equal(t, "/tmp/env.db", c.Store.Path)
	assert.Equal(t, 3.0, c.Trend.HorizonRuns)
	assert.Equal(t, types.DefaultTrendRules().CriticalFloor, c.Trend.CriticalFloor)
	assert.Equal(t, 5*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, 1, c.Batch.Workers)
	assert.Equal(t, "pipeline-v1", c.Audit.AlgorithmVersion)
}

// --- run files ---

func TestReadRuns(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(single, []byte(`
run_id: run-1
run_number: 2
completed_at: 2026-03-01T10:00:00Z
responses:
  - question_id: R1a-1
    value: 3
`), 0o644))

	list := filepath.Join(dir, "runs.json")
	require.NoError(t, os.WriteFile(list, []byte(`[
  {"run_id": "a", "run_number": 1, "responses": []},
  {"run_id": "b", "run_number": 2, "responses": [{"question_id": "R2a-1", "value": 1}]}
]`), 0o644))

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	runs, err := readRuns(single)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, 2, runs[0].RunNumber)
	require.NotNil(t, runs[0].CompletedAt)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), runs[0].CompletedAt.UTC())
	assert.Equal(t, types.Response{QuestionID: "R1a-1", Value: 3}, runs[0].Responses[0])

	runs, err = readRuns(list)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[1].RunID)
	assert.Equal(t, 1.0, runs[1].Responses[0].Value)

	_, err = readRuns(empty)
	assert.Error(t, err)

	_, err = readRuns(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
