package minecraft

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// otherOS returns an os name that is not the current one
func otherOS() string {
	if CurrentOS() == "osx" {
		return "windows"
	}
	return "osx"
}

func body(path string) []byte { return []byte("body of " + path) }

func libServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jar" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(body(r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testVersion(t *testing.T, base string) *Version {
	t.Helper()
	lib := func(name, path string) string {
		return fmt.Sprintf(`{"name": %q, "downloads": {"artifact": {"path": %q, "url": %q, "sha1": %q}}}`,
			name, path, base+"/"+path, downloadmgr.Sha1Hex(body("/"+path)))
	}

	nativeKey := CurrentOS()
	probe := Library{Natives: map[string]string{nativeKey: "natives-${arch}"}}
	classifier, _ := probe.NativeClassifier()
	nativePath := "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-" + classifier + ".jar"

	raw := fmt.Sprintf(`{
		"id": "1.20.1",
		"type": "release",
		"mainClass": "net.minecraft.client.main.Main",
		"assetIndex": {"id": "5", "url": %q, "sha1": ""},
		"downloads": {"client": {"url": %q, "sha1": %q}},
		"arguments": {
			"game": ["--username", "${auth_player_name}", {"rules": [{"action": "allow", "features": {"is_demo_user": true}}], "value": "--demo"}],
			"jvm": [{"rules": [{"action": "allow", "os": {"name": %q}}], "value": ["-XstartOnFirstThread"]}, "-cp", "${classpath}"]
		},
		"libraries": [
			%s,
			{"name": "ca.weblite:java-objc-bridge:1.1", "rules": [{"action": "allow", "os": {"name": %q}}],
			 "downloads": {"artifact": {"path": "ca/weblite/java-objc-bridge/1.1/java-objc-bridge-1.1.jar", "url": %q, "sha1": ""}}},
			{"name": "org.lwjgl.lwjgl:lwjgl-platform:2.9.4", "natives": {%q: "natives-${arch}"},
			 "downloads": {"classifiers": {%q: {"path": %q, "url": %q, "sha1": %q}}}}
		]
	}`,
		base+"/index.json",
		base+"/client.jar", downloadmgr.Sha1Hex(body("/client.jar")),
		otherOS(),
		lib("com.mojang:brigadier:1.0.18", "com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar"),
		otherOS(), base+"/missing.jar",
		nativeKey, classifier, nativePath, base+"/"+nativePath, downloadmgr.Sha1Hex(body("/"+nativePath)),
	)

	v, err := ParseVersion([]byte(raw))
	require.NoError(t, err)
	return v
}

func TestParseVersion(t *testing.T) {
	v := testVersion(t, "https://example.com")
	assert.Equal(t, "1.20.1", v.ID)
	assert.Equal(t, "net.minecraft.client.main.Main", v.MainClass)
	assert.Equal(t, DefaultJavaMajor, v.RequiredJavaMajor())
	assert.Len(t, v.Libraries, 3)

	// feature gated arguments are never included
	assert.Equal(t, []string{"--username", "${auth_player_name}"}, v.GameArgs())
	// rule for another os is skipped
	assert.Equal(t, []string{"-cp", "${classpath}"}, v.JVMArgs())
}

func TestParseVersionInvalid(t *testing.T) {
	_, err := ParseVersion([]byte(`{"id": 1`))
	assert.Equal(t, merrors.KindParse, merrors.KindOf(err))
}

func TestRequiredJavaMajor(t *testing.T) {
	v, err := ParseVersion([]byte(`{"id": "1.21", "javaVersion": {"component": "java-runtime-delta", "majorVersion": 21}}`))
	require.NoError(t, err)
	assert.Equal(t, 21, v.RequiredJavaMajor())
}

func TestLegacyGameArgs(t *testing.T) {
	v, err := ParseVersion([]byte(`{"id": "1.12.2", "minecraftArguments": "--username ${auth_player_name}  --version ${version_name}"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"--username", "${auth_player_name}", "--version", "${version_name}"}, v.GameArgs())
	assert.Empty(t, v.JVMArgs())
}

func TestNativeClassifier(t *testing.T) {
	lib := Library{Natives: map[string]string{"windows": "natives-windows-${arch}", "linux": "natives-linux"}}

	got, ok := lib.nativeClassifierFor("windows", "amd64")
	assert.True(t, ok)
	assert.Equal(t, "natives-windows-64", got)

	got, ok = lib.nativeClassifierFor("windows", "386")
	assert.True(t, ok)
	assert.Equal(t, "natives-windows-32", got)

	got, ok = lib.nativeClassifierFor("linux", "amd64")
	assert.True(t, ok)
	assert.Equal(t, "natives-linux", got)

	_, ok = lib.nativeClassifierFor("osx", "arm64")
	assert.False(t, ok)
}

func TestDownloadLibraries(t *testing.T) {
	srv := libServer(t)
	v := testVersion(t, srv.URL)
	libs := t.TempDir()

	m := downloadmgr.New(srv.Client(), cmdlog.Discard())
	included, err := v.DownloadLibraries(context.Background(), libs, m)
	require.NoError(t, err)

	// the osx only library is skipped, the natives only library contributes no classpath entry
	assert.Equal(t, []string{"com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar"}, included)
	assert.FileExists(t, filepath.Join(libs, "com", "mojang", "brigadier", "1.0.18", "brigadier-1.0.18.jar"))
	assert.NoFileExists(t, filepath.Join(libs, "ca", "weblite", "java-objc-bridge", "1.1", "java-objc-bridge-1.1.jar"))

	natives := v.NativeJars(libs)
	require.Len(t, natives, 1)
	assert.FileExists(t, natives[0])
}

func TestDownloadLibrariesFailure(t *testing.T) {
	srv := libServer(t)
	v, err := ParseVersion([]byte(fmt.Sprintf(`{"id": "x", "libraries": [
		{"name": "a:b:1", "downloads": {"artifact": {"path": "a/b/1/b-1.jar", "url": %q, "sha1": ""}}}
	]}`, srv.URL+"/missing.jar")))
	require.NoError(t, err)

	_, err = v.DownloadLibraries(context.Background(), t.TempDir(), downloadmgr.New(srv.Client(), cmdlog.Discard()))
	require.Error(t, err)
	assert.Equal(t, merrors.KindDownloadFailed, merrors.KindOf(err))
}

func TestDownloadClientAndSave(t *testing.T) {
	srv := libServer(t)
	v := testVersion(t, srv.URL)
	dir := t.TempDir()

	m := downloadmgr.New(srv.Client(), cmdlog.Discard())
	dest := filepath.Join(dir, "client.jar")
	require.NoError(t, v.DownloadClient(context.Background(), m, dest))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body("/client.jar"), got)

	require.NoError(t, Save([]byte(`{"id":"1.20.1"}`), dir, "1.20.1"))
	assert.FileExists(t, filepath.Join(dir, "1.20.1.json"))
}
