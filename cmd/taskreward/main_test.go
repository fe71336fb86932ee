package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskreward/internal/logx"
	"taskreward/internal/model"
	"taskreward/internal/persist"
	"taskreward/internal/store"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.Execute()
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TASKREWARD_SYNC_DATA_URL", "http://cloud.test/api/data")
	a := &app{cfgPath: filepath.Join(t.TempDir(), "nope.yml"), dataDir: "/tmp/elsewhere", logger: logx.Discard()}

	require.NoError(t, a.loadConfig())
	assert.Equal(t, "127.0.0.1:8080", a.cfg.Server.Addr)
	assert.Equal(t, "/tmp/elsewhere", a.cfg.Data.Dir)
	assert.True(t, a.cfg.Sync.Enabled())
}

func TestLoadConfig_FileAndValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskreward.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9999\"\nsync:\n  interval: 10s\n"), 0o644))

	a := &app{cfgPath: path, logger: logx.Discard()}
	require.NoError(t, a.loadConfig())
	assert.Equal(t, ":9999", a.cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, a.cfg.Sync.Interval)

	require.NoError(t, os.WriteFile(path, []byte("cloud:\n  db_driver: postgres\n"), 0o644))
	assert.Error(t, a.loadConfig())

	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o644))
	assert.Error(t, a.loadConfig())
}

func TestBackupRestoreCommands(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	disk, err := persist.NewDiskStore(dataDir)
	require.NoError(t, err)
	require.NoError(t, disk.Save(persist.KeyEarnedRewards, model.EarnedRewards{Points: 42}))

	cfg := filepath.Join(t.TempDir(), "none.yml")
	archive := filepath.Join(t.TempDir(), "b.tar.gz")
	require.NoError(t, run(t, "--config", cfg, "--data-dir", dataDir, "backup", "--out", archive))
	assert.FileExists(t, archive)

	target := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, run(t, "--config", cfg, "restore", archive, "--target", target))

	restored, err := persist.NewDiskStore(target)
	require.NoError(t, err)
	var got model.EarnedRewards
	ok, err := restored.Load(persist.KeyEarnedRewards, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, got.Points)

	assert.Error(t, run(t, "--config", cfg, "restore", archive, "--target", target))
	assert.Error(t, run(t, "--config", cfg, "restore"))
	assert.Error(t, run(t, "--config", cfg, "--data-dir", dataDir, "backup", "--out", archive+".2", "--s3"))
}

func TestSyncCommand_RequiresConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "none.yml")
	err := run(t, "--config", cfg, "--data-dir", t.TempDir(), "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestWriteReport(t *testing.T) {
	color.NoColor = true
	s := store.New(store.Options{Logger: logx.Discard()})
	done, err := s.CreateTask(store.TaskDraft{Title: "Run 5k", RewardType: model.RewardMinutes, RewardAmount: 30})
	require.NoError(t, err)
	_, err = s.CreateTask(store.TaskDraft{Title: "File taxes", RewardType: model.RewardPoints, RewardAmount: 50})
	require.NoError(t, err)
	s.CompleteTask(done.ID)

	var buf bytes.Buffer
	writeReport(&buf, s.Snapshot(), 10, false)
	out := buf.String()
	assert.Contains(t, out, "minutes  30")
	assert.Contains(t, out, "File taxes")
	assert.Contains(t, out, "+50 points")
	assert.Contains(t, out, "Task created")
	assert.Contains(t, out, "unsynced changes")

	buf.Reset()
	writeReport(&buf, s.Snapshot(), 10, true)
	assert.Contains(t, buf.String(), "Run 5k")
}
