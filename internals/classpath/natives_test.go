package classpath

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJar(t *testing.T, path string, files map[string]string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestIsNativeEntry(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"liblwjgl.so", true},
		{"lwjgl.dll", true},
		{"liblwjgl.dylib", true},
		{"libjinput-osx.jnilib", true},
		{"LWJGL.DLL", true},
		{"META-INF/MANIFEST.MF", false},
		{"META-INF/liblwjgl.so", false},
		{"linux/x64/org/lwjgl/liblwjgl.so", false},
		{"org/lwjgl/Version.class", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNativeEntry(tt.name))
		})
	}
}

func TestExtractNatives(t *testing.T) {
	dir := t.TempDir()
	natives := filepath.Join(dir, "natives")
	stale := touch(t, filepath.Join(natives, "stale.so"))

	jar := writeJar(t, filepath.Join(dir, "lwjgl-natives-linux.jar"), map[string]string{
		"liblwjgl.so":          "native",
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
		"org/lwjgl/Foo.class":  "class",
	})
	other := writeJar(t, filepath.Join(dir, "glfw-natives.jar"), map[string]string{
		"libglfw.so": "glfw",
	})

	n, err := ExtractNatives([]string{jar, filepath.Join(dir, "missing.jar"), other}, natives, cmdlog.Discard())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoFileExists(t, stale)
	content, err := os.ReadFile(filepath.Join(natives, "liblwjgl.so"))
	require.NoError(t, err)
	assert.Equal(t, "native", string(content))
	assert.FileExists(t, filepath.Join(natives, "libglfw.so"))
	assert.NoFileExists(t, filepath.Join(natives, "MANIFEST.MF"))

	require.NoError(t, CleanNatives(natives))
	assert.NoDirExists(t, natives)
}

func TestNativeJars(t *testing.T) {
	i := testInstance(t, loaders.Vanilla, "")
	seed(t, i, "org.lwjgl:lwjgl:3.3.1", "org.lwjgl:lwjgl:3.3.1:natives-linux")
	legacy := touch(t, filepath.Join(i.LibrariesDir(), "org", "lwjgl", "lwjgl-platform", "2.9.4", "lwjgl-platform-2.9.4-natives-linux.jar"))

	got := NativeJars(i, i.LibrariesDir(), []string{
		"org.lwjgl:lwjgl:3.3.1",
		"org.lwjgl:lwjgl:3.3.1:natives-linux",
		"org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar",
		"org.lwjgl:lwjgl:3.3.1:natives-windows",
	})
	assert.Equal(t, []string{"lwjgl-3.3.1-natives-linux.jar", "lwjgl-platform-2.9.4-natives-linux.jar"}, bases(got))
	assert.Equal(t, legacy, got[1])
}
