package pack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip creates a zip file with the given entries
func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.jar"))
	assert.Error(t, err)
}

func TestReadFiles(t *testing.T) {
	r, err := Open(writeZip(t, map[string]string{
		"install_profile.json": `{"spec": 1}`,
		"version.json":         `{"id": "x"}`,
		"data/client.lzma":     "lzma",
	}))
	require.NoError(t, err)

	files, err := r.ReadFiles("install_profile.json", "version.json", "missing.json")
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, `{"id": "x"}`, string(files["version.json"]))

	buf, err := r.ReadFile("data/client.lzma")
	require.NoError(t, err)
	assert.Equal(t, "lzma", string(buf))

	_, err = r.ReadFile("nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	names, err := r.Names()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"install_profile.json", "version.json", "data/client.lzma"}, names)
}

func TestExtractTo(t *testing.T) {
	r, err := Open(writeZip(t, map[string]string{
		"maven/net/neoforged/a/1/a-1.jar": "a",
		"maven/net/neoforged/b/1/b-1.jar": "b",
		"other.txt":                       "x",
	}))
	require.NoError(t, err)

	dir := t.TempDir()
	n, err := r.ExtractTo(dir, func(name string) bool { return strings.HasPrefix(name, "maven/") })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dir, "maven", "net", "neoforged", "a", "1", "a-1.jar"))
	assert.NoFileExists(t, filepath.Join(dir, "other.txt"))
}

func TestExtractToRejectsEscapingPaths(t *testing.T) {
	r, err := Open(writeZip(t, map[string]string{"../evil.txt": "x"}))
	require.NoError(t, err)

	dir := t.TempDir()
	n, err := r.ExtractTo(dir, func(string) bool { return true })
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestExtract(t *testing.T) {
	r, err := Open(writeZip(t, map[string]string{"lwjgl.so": "native", "META-INF/MANIFEST.MF": "x"}))
	require.NoError(t, err)

	dir := t.TempDir()
	n, err := r.Extract(func(name string) (string, bool) {
		if strings.HasPrefix(name, "META-INF/") {
			return "", false
		}
		return filepath.Join(dir, "flat-"+name), true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err := os.ReadFile(filepath.Join(dir, "flat-lwjgl.so"))
	require.NoError(t, err)
	assert.Equal(t, "native", string(got))
}

func TestMainClass(t *testing.T) {
	manifest := "Manifest-Version: 1.0\r\n" +
		"Main-Class: net.minecraftforge.installertools.Cons\r\n" +
		" oleTool\r\n" +
		"Created-By: 17\r\n" +
		"\r\n" +
		"Name: net/minecraftforge/\r\n" +
		"Main-Class: ignored\r\n"

	r, err := Open(writeZip(t, map[string]string{ManifestPath: manifest}))
	require.NoError(t, err)

	main, err := r.MainClass()
	require.NoError(t, err)
	assert.Equal(t, "net.minecraftforge.installertools.ConsoleTool", main)
}

func TestMainClassMissing(t *testing.T) {
	r, err := Open(writeZip(t, map[string]string{ManifestPath: "Manifest-Version: 1.0\n"}))
	require.NoError(t, err)

	_, err = r.MainClass()
	assert.ErrorIs(t, err, ErrNoMainClass)

	r, err = Open(writeZip(t, map[string]string{"a.class": ""}))
	require.NoError(t, err)
	_, err = r.MainClass()
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
