package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_RelativeResolvesAgainstCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir(filepath.Join("uploads", "images"))
	require.NoError(t, err)

	want := filepath.Join(tmp, "uploads", "images")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureDir_AbsoluteAndIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	got, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = EnsureDir(dir)
	assert.NoError(t, err)
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := EnsureDir(filepath.Join(blocker, "sub"))
	assert.Error(t, err)
}

func TestIsPlainName(t *testing.T) {
	assert.True(t, IsPlainName("abc.jpg"))
	assert.True(t, IsPlainName("thumb_abc.jpg"))
	assert.False(t, IsPlainName(""))
	assert.False(t, IsPlainName("."))
	assert.False(t, IsPlainName(".."))
	assert.False(t, IsPlainName("../etc/passwd"))
	assert.False(t, IsPlainName("a/b.jpg"))
	assert.False(t, IsPlainName(`a\b.jpg`))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o640))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o640))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "f"), []byte("x"), 0o600)
	assert.Error(t, err)
}
