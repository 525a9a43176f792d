package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tickerloom-cli/internal/export"
	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/workspace"
)

// resetFlags restores every flag to its default so Changed state and bound
// variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns what it wrote to Out.
func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(ingest.SampleCSV), 0o644))
	return p
}

func TestCLI_Init_Add_List(t *testing.T) {
	home := setupHome(t)
	data := writeSample(t, home, "aapl.csv")

	runCmd(t, "init", "itest", "-d", "integration test")
	runCmd(t, "add", "-w", "itest", data, "--desc", "daily bars")
	runCmd(t, "list", "--datasets", "-w", "itest")

	dir, err := resolveWorkspaceDirByName("itest")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tickerloom", "workspaces", "itest"), dir)
	w, err := workspace.Load(dir)
	require.NoError(t, err)
	require.Len(t, w.Datasets, 1)
	for _, d := range w.Datasets {
		assert.Equal(t, "aapl.csv", d.Name)
		assert.Equal(t, "daily bars", d.Description)
		assert.Equal(t, 3, d.Points)
	}

	_, err = execCmd("init", "itest")
	assert.ErrorContains(t, err, "workspace already exists")
	_, err = execCmd("list")
	assert.ErrorContains(t, err, "exactly one of")
}

func TestIngestStatsAndJSON(t *testing.T) {
	home := setupHome(t)
	data := writeSample(t, home, "aapl.csv")

	out := runCmd(t, "ingest", data)
	assert.Contains(t, out, "✓ Parsed aapl.csv: 3 records, 3 points (2024-01-01 to 2024-01-03)")
	assert.Contains(t, out, "Symbols: AAPL")
	assert.Contains(t, out, "Change: +2.55 (+1.62%)")

	a := runCmd(t, "ingest", data, "--json", "--seed", "9")
	b := runCmd(t, "ingest", data, "--json", "--seed", "9")
	assert.JSONEq(t, a, b)
	assert.Contains(t, a, `"sentimentData"`)
}

func TestIngestReportsFormatError(t *testing.T) {
	home := setupHome(t)
	bad := filepath.Join(home, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date,Close\n2024-01-01,1\n"), 0o644))

	_, err := execCmd("ingest", bad)
	var fe *ingest.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Missing required columns: Open, High, Low, Volume", err.Error())
}

func TestIngestRecordAndHistory(t *testing.T) {
	home := setupHome(t)
	data := writeSample(t, home, "aapl.csv")
	bad := filepath.Join(home, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Date\n"), 0o644))

	runCmd(t, "ingest", data, "--record")
	_, err := execCmd("ingest", bad, "--record")
	require.Error(t, err)

	out := runCmd(t, "history")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "✗"), lines[0])
	assert.Contains(t, lines[0], "bad.csv")
	assert.Contains(t, lines[1], "aapl.csv  3 points  2024-01-01 to 2024-01-03  159.80 (+1.62%)")

	js := runCmd(t, "history", "--json", "-n", "1")
	assert.Contains(t, js, `"source": "bad.csv"`)
	assert.NotContains(t, js, "aapl.csv")
}

func TestExportParquet(t *testing.T) {
	home := setupHome(t)
	data := writeSample(t, home, "aapl.csv")
	out := filepath.Join(home, "aapl.parquet")

	msg := runCmd(t, "export", data, "-f", "parquet", "-o", out)
	assert.Contains(t, msg, "Exported 3 points")
	points, err := parquet.ReadFile[export.Point](out)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, export.Point{Date: "2024-01-03", Close: 159.8, Symbol: "AAPL"}, points[2])

	_, err = execCmd("export", data, "-f", "xml")
	assert.ErrorContains(t, err, "unsupported --format")
}

func TestExportDefaultsFromConfig(t *testing.T) {
	home := setupHome(t)
	data := writeSample(t, home, "aapl.csv")
	runCmd(t, "config", "set", "export_format", "json")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	runCmd(t, "export", data)
	b, err := os.ReadFile(filepath.Join(home, "aapl.series.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"close": 159.8`)
}

func TestConfigShowAndSet(t *testing.T) {
	setupHome(t)
	runCmd(t, "config", "set", "sample_rows", "4")
	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "sample_rows: 4\n")
	assert.Contains(t, out, "listen_addr: 127.0.0.1:8088\n")

	_, err := execCmd("config", "set", "sample_rows", "0")
	assert.Error(t, err)
	_, err = execCmd("config", "set", "nope", "1")
	assert.ErrorContains(t, err, "unknown key")
}

func TestSampleAndDemo(t *testing.T) {
	home := setupHome(t)
	assert.Equal(t, ingest.SampleCSV+"\n", runCmd(t, "sample", "-"))

	p := filepath.Join(home, "s.csv")
	runCmd(t, "sample", p)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "2024-01-03,157.25,160.00,156.00,159.80,1100000,AAPL")

	out := runCmd(t, "demo", "tsla", "--days", "5", "--seed", "1")
	assert.Contains(t, out, `"symbols": [`)
	assert.Contains(t, out, `"TSLA"`)
	assert.Contains(t, out, `"overallSentiment": "greed"`)

	_, err = execCmd("demo", "tsla", "--days", "1")
	assert.Error(t, err)
}
