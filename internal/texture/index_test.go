package texture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "a.tga"))
	touch(t, filepath.Join(dir, "0sub", "c.tga"))
	touch(t, filepath.Join(dir, "c.png"))
	touch(t, filepath.Join(dir, "GUN.TGA"))
	touch(t, filepath.Join(dir, "readme.txt"))
	touch(t, filepath.Join(dir, "model.fbx"))

	idx := BuildIndex(dir)

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []string{"a", "c", "gun"}, idx.Stems())

	// TGA wins over other formats for the same stem, in either
	// discovery order.
	path, ok := idx.ResolvePath("a")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "a.tga"), path)

	path, ok = idx.ResolvePath("c")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "0sub", "c.tga"), path)
}

func TestResolvePathNameForms(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "gun.tga"))
	idx := BuildIndex(dir)

	want := filepath.Join(dir, "gun.tga")
	for _, name := range []string{
		"gun",
		"gun.tga",
		"GUN.TGA",
		"texture/gun.tga",
		`Models\texture\gun.tga`,
	} {
		path, ok := idx.ResolvePath(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, path, name)
	}

	_, ok := idx.ResolvePath("missing")
	assert.False(t, ok)
}

func TestBuildIndexEmptyDir(t *testing.T) {
	idx := BuildIndex(t.TempDir())
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Stems())

	// A missing directory indexes nothing rather than failing.
	idx = BuildIndex(filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, 0, idx.Len())
}
