package files

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touch creates name in dir with the given modification time offset.
func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mt := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mt, mt))
	return path
}

func TestIsDataFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"highs.xlsx", true},
		{"HIGHS.XLSX", true},
		{"macro.xlsm", true},
		{"legacy.xls", false},
		{"export.csv", true},
		{"notes.txt", false},
		{"~$highs.xlsx", false},
		{".hidden.csv", false},
		{"xlsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDataFile(tt.name))
		})
	}
}

func TestFindDataFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.xlsx", time.Hour)
	touch(t, dir, "a.csv", 2*time.Hour)
	touch(t, dir, "readme.md", 0)
	touch(t, dir, "~$b.xlsx", 0)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755))

	files, err := NewDiscovery("").FindDataFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.csv", files[0].Name, "oldest first")
	assert.Equal(t, "b.xlsx", files[1].Name)
	assert.EqualValues(t, 1, files[1].Size)
}

func TestFindDataFiles_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "data"), 0o755))
	touch(t, filepath.Join(base, "data"), "highs.xlsx", 0)

	files, err := NewDiscovery(base).FindDataFiles("data")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(base, "data", "highs.xlsx"), files[0].Path)
}

func TestFindDataFiles_MissingDir(t *testing.T) {
	_, err := NewDiscovery("").FindDataFiles(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFindFilesByPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "52week_high_0101.xlsx", time.Hour)
	touch(t, dir, "52week_high_0102.xlsx", 0)
	touch(t, dir, "other.xlsx", 0)

	files, err := NewDiscovery("").FindFilesByPattern(dir, "52week_high_*.xlsx")
	require.NoError(t, err)
	require.Len(t, files, 2)

	_, err = NewDiscovery("").FindFilesByPattern(dir, "[")
	assert.Error(t, err)
}

func TestResolveSource(t *testing.T) {
	dir := t.TempDir()
	old := touch(t, dir, "52week_high_old.xlsx", 2*time.Hour)
	newest := touch(t, dir, "52week_high_new.xlsx", time.Hour)
	unrelated := touch(t, dir, "scratch.csv", 0)

	d := NewDiscovery("")

	got, err := d.ResolveSource(old, "")
	require.NoError(t, err)
	assert.Equal(t, old, got, "a file is used as is")

	got, err = d.ResolveSource(dir, "")
	require.NoError(t, err)
	assert.Equal(t, unrelated, got)

	got, err = d.ResolveSource(dir, "52week_high_*")
	require.NoError(t, err)
	assert.Equal(t, newest, got)
}

func TestResolveSource_Errors(t *testing.T) {
	d := NewDiscovery("")

	_, err := d.ResolveSource(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	empty := t.TempDir()
	_, err = d.ResolveSource(empty, "")
	assert.ErrorIs(t, err, ErrNoDataFile)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}
