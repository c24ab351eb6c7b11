package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NickyBoy89/propmigrate/tree"
	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/main/java/Task.java":        "class Task {}",
		"src/main/groovy/Plugin.groovy":  "class Plugin {}",
		"src/main/resources/notes.txt":   "",
		"build/generated/Generated.java": "class Generated {}",
		".gradle/Cached.java":            "class Cached {}",
		"build.gradle":                   "",
	})

	paths, err := Discover(dir, filepath.Join(dir, "src/main/java/Task.java"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "src/main/groovy/Plugin.groovy"),
		filepath.Join(dir, "src/main/java/Task.java"),
	}, paths)

	_, err = Discover(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Task.java":     "class Task {\n    String label;\n}\n",
		"Broken.java":   "class Broken {\n    void run() {\n        int x = ;\n    }\n}\n",
		"Plugin.groovy": "class Plugin {}\n",
	})
	paths := []string{
		filepath.Join(dir, "Task.java"),
		filepath.Join(dir, "Broken.java"),
		filepath.Join(dir, "Plugin.groovy"),
	}

	units, err := Load(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, units, 3)
	for i, unit := range units {
		assert.Equal(t, paths[i], unit.Path)
	}
	assert.Equal(t, "Broken", units[1].Types[0].Name)
	assert.Equal(t, tree.Groovy, units[2].Dialect)

	_, err = Load(context.Background(), []string{filepath.Join(dir, "Missing.java")}, 1)
	assert.Error(t, err)
}

func TestWriteKeepsPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Task.java")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, Write(path, []byte("new")))
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(contents))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTracked(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/Task.java":   "class Task {}",
		"src/Plugin.java": "class Plugin {}",
	})

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("src/Task.java")
	require.NoError(t, err)

	tracked, err := OpenTracked(filepath.Join(dir, "src"))
	require.NoError(t, err)

	task := filepath.Join(dir, "src", "Task.java")
	plugin := filepath.Join(dir, "src", "Plugin.java")
	assert.True(t, tracked.Contains(task))
	assert.False(t, tracked.Contains(plugin))
	assert.Equal(t, []string{task}, tracked.Filter([]string{task, plugin}))

	_, err = OpenTracked(t.TempDir())
	assert.Error(t, err)
}
