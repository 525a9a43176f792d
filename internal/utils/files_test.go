package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, SafeWriteFile(p, []byte("{}")))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandHome("~/.tickerloom/history.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tickerloom", "history.db"), got)

	got, err = ExpandHome("/tmp/x/../y")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/y", got)
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, EnsureDir(nested))
	require.NoError(t, os.WriteFile(filepath.Join(root, "workspace.json"), []byte("{}"), 0o644))

	got, err := FindRoot(nested, "workspace.json")
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = FindRoot(t.TempDir(), "nope.json")
	assert.Error(t, err)
}
