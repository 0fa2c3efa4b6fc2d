package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := Open(dir, nil)
	require.NoError(t, err, "Open should succeed on a temp dir.")
	t.Cleanup(func() { _ = f.Close() })
	return f, dir
}

func TestOpen_CreatesMissingRoot_Succeeds(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "workspace")
	f, err := Open(dir, nil)
	require.NoError(t, err)
	defer f.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, f.Dir())
}

func TestOpen_EmptyDir_Fails(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestCreateDir_New_Succeeds(t *testing.T) {
	f, dir := openTemp(t)
	require.NoError(t, f.CreateDir("demo/sub"))

	info, err := os.Stat(filepath.Join(dir, "demo", "sub"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateDir_Existing_FailsWithIoError(t *testing.T) {
	f, _ := openTemp(t)
	require.NoError(t, f.CreateDir("demo"))

	err := f.CreateDir("demo")
	require.Error(t, err)
	assert.Equal(t, mcperrors.KindIoError, mcperrors.KindOf(err), "Existing directory should be an I/O failure.")
	assert.Contains(t, err.Error(), "already exists")
}

func TestWriteFile_CreatesParents_Succeeds(t *testing.T) {
	f, dir := openTemp(t)
	require.NoError(t, f.WriteFile("proj/cmd/main.go", "package main\n"))

	data, err := os.ReadFile(filepath.Join(dir, "proj", "cmd", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))

	got, err := f.ReadFile("proj/cmd/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", got)
}

func TestWriteFile_Overwrites_Succeeds(t *testing.T) {
	f, _ := openTemp(t)
	require.NoError(t, f.WriteFile("README.md", "first version"))
	require.NoError(t, f.WriteFile("README.md", "v2"))

	got, err := f.ReadFile("README.md")
	require.NoError(t, err)
	assert.Equal(t, "v2", got, "Shorter content should truncate the old file.")
}

func TestWriteFile_OutsideRoot_Fails(t *testing.T) {
	f, _ := openTemp(t)
	for _, p := range []string{"../escape.txt", "/etc/passwd", "a/../../b", ""} {
		assert.Error(t, f.WriteFile(p, "x"), "Expected %q to be refused.", p)
	}
}

func TestWriteFile_SymlinkEscape_Fails(t *testing.T) {
	f, dir := openTemp(t)
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "link")))

	err := f.WriteFile("link/owned.txt", "x")
	require.Error(t, err, "Writes through a symlink leaving the root must fail.")
	_, statErr := os.Stat(filepath.Join(outside, "owned.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadFile_Missing_FailsWithIoError(t *testing.T) {
	f, _ := openTemp(t)
	_, err := f.ReadFile("nope.txt")
	require.Error(t, err)
	assert.Equal(t, mcperrors.KindIoError, mcperrors.KindOf(err))
}
