package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
	"github.com/KaramelBytes/tickerloom-cli/internal/workspace"
)

func TestAddDatasetSaveLoad(t *testing.T) {
	tdir := t.TempDir()
	f := filepath.Join(tdir, "aapl.csv")
	require.NoError(t, os.WriteFile(f, []byte(ingest.SampleCSV), 0o644))

	w := workspace.New("tech", "big caps", filepath.Join(tdir, "ws"))
	d, err := w.AddDataset(f, "daily", source.Options{}, ingest.DefaultOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, 3, d.Points)
	require.NoError(t, w.Save())

	got, err := workspace.Load(filepath.Join(tdir, "ws"))
	require.NoError(t, err)
	require.Len(t, got.Datasets, 1)
	ld := got.Datasets[d.ID]
	require.NotNil(t, ld)
	assert.Equal(t, "aapl.csv", ld.Name)
	assert.Equal(t, []string{"AAPL"}, ld.Preview.Symbols)
	assert.InDelta(t, 159.8, float64(ld.CurrentPrice), 1e-9)

	sum, err := got.Summary()
	require.NoError(t, err)
	assert.Contains(t, sum, "--- Dataset: aapl.csv (daily) ---")
	assert.Contains(t, sum, "range: 2024-01-01 to 2024-01-03, points: 3, symbols: AAPL")
	assert.Contains(t, sum, "change: +1.62%")
}

func TestAddDatasetRejectsBadFile(t *testing.T) {
	tdir := t.TempDir()
	f := filepath.Join(tdir, "bad.csv")
	require.NoError(t, os.WriteFile(f, []byte("Date,Close\n2024-01-01,1"), 0o644))

	w := workspace.New("x", "", tdir)
	_, err := w.AddDataset(f, "", source.Options{}, ingest.DefaultOptions())
	var fe *ingest.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, w.Datasets)
}

func TestUndefinedChangeSurvivesSave(t *testing.T) {
	tdir := t.TempDir()
	f := filepath.Join(tdir, "z.csv")
	require.NoError(t, os.WriteFile(f, []byte("Date,Open,High,Low,Close,Volume\n2024-01-01,1,1,1,0,1\n2024-01-02,1,1,1,0,1"), 0o644))

	w := workspace.New("z", "", filepath.Join(tdir, "ws"))
	_, err := w.AddDataset(f, "", source.Options{}, ingest.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, w.Save())

	got, err := workspace.Load(filepath.Join(tdir, "ws"))
	require.NoError(t, err)
	sum, err := got.Summary()
	require.NoError(t, err)
	assert.Contains(t, sum, "change: n/a")
}

func TestLoadMissing(t *testing.T) {
	_, err := workspace.Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workspace not found")
}

func TestSummaryEmpty(t *testing.T) {
	_, err := workspace.New("e", "", t.TempDir()).Summary()
	assert.EqualError(t, err, "no datasets added to workspace")
}
