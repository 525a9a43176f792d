package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, c.SampleRows)
	assert.Equal(t, 10, c.MaxFileMB)
	assert.Equal(t, int64(10<<20), c.MaxBytes())
	assert.Equal(t, "csv", c.ExportFormat)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "127.0.0.1:8088", c.ListenAddr)
	assert.Equal(t, 4, c.BatchWorkers)
	assert.Equal(t, "~/.tickerloom/workspaces", c.WorkspacesDir)
	assert.Equal(t, "~/.tickerloom/history.db", c.HistoryDB)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_rows: 3\nexport_format: json\n"), 0o644))
	t.Setenv("TICKERLOOM_EXPORT_FORMAT", "parquet")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.SampleRows)
	assert.Equal(t, "parquet", c.ExportFormat)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export_format: xml\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export_format")
}

func TestSetValidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)

	require.NoError(t, c.Set("sample_rows", "25"))
	assert.Equal(t, 25, c.SampleRows)
	require.NoError(t, c.Set("log_level", "DEBUG"))
	assert.Equal(t, "debug", c.LogLevel)
	require.NoError(t, c.Set("seed", "42"))
	got, err := c.Get("seed")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	assert.Error(t, c.Set("sample_rows", "0"))
	assert.Equal(t, 25, c.SampleRows, "failed Set leaves value unchanged")
	assert.Error(t, c.Set("listen_addr", "nope"))
	assert.Error(t, c.Set("batch_workers", "x"))
	assert.EqualError(t, c.Set("api_key", "k"), "unknown key: api_key")
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("export_format", "json"))
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", got.ExportFormat)
}

func TestResolvedHistoryDB(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c := &Global{HistoryDB: "~/.tickerloom/h.db"}
	p, err := c.ResolvedHistoryDB()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tickerloom", "h.db"), p)
	_, err = os.Stat(filepath.Join(home, ".tickerloom"))
	assert.NoError(t, err)

	c.HistoryDB = ""
	p, err = c.ResolvedHistoryDB()
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
