package loaders

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/stretchr/testify/require"
)

// testEnv is a fake of every remote endpoint the installers talk to
type testEnv struct {
	srv     *httptest.Server
	mux     *http.ServeMux
	loaders *Loaders
	dl      *downloadmgr.Manager
	tools   *fakeTools

	mu   sync.Mutex
	hits map[string]int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{mux: http.NewServeMux(), hits: map[string]int{}, tools: &fakeTools{}}
	env.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.hits[r.URL.Path]++
		env.mu.Unlock()
		env.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(env.srv.Close)

	logger := cmdlog.Discard()
	mc := minecraft.New(env.srv.Client(), logger)
	mc.ManifestURL = env.srv.URL + "/mc/manifest.json"

	env.loaders = New(Options{
		HTTP:            env.srv.Client(),
		Logger:          logger,
		Minecraft:       mc,
		FabricMetaURL:   env.srv.URL + "/fabric",
		QuiltMetaURL:    env.srv.URL + "/quilt",
		ForgeMaven:      env.srv.URL + "/forge",
		NeoForgeMaven:   env.srv.URL + "/neoforged",
		MojangLibraries: env.srv.URL + "/mojang",
		Tools:           env.tools,
	})
	env.dl = downloadmgr.New(env.srv.Client(), logger)
	return env
}

func (e *testEnv) hitCount(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits[path]
}

func (e *testEnv) serve(path string, body []byte) {
	e.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	})
}

func (e *testEnv) context(t *testing.T, mc, loader string) Context {
	return Context{
		MinecraftVersion: mc,
		LoaderVersion:    loader,
		InstanceDir:      t.TempDir(),
		LibsDir:          t.TempDir(),
		Downloader:       e.dl,
	}
}

// serveVanilla serves a manifest with a single version and its client and library
func (e *testEnv) serveVanilla(id string) {
	client := []byte("client jar")
	lib := []byte("lib jar")
	descriptor := fmt.Sprintf(`{
		"id": %[1]q,
		"type": "release",
		"mainClass": "net.minecraft.client.main.Main",
		"assetIndex": {"id": "5", "url": "%[2]s/mc/index.json"},
		"javaVersion": {"majorVersion": 17},
		"arguments": {"game": ["--version", "${version_name}"], "jvm": ["-cp", "${classpath}"]},
		"downloads": {"client": {"url": "%[2]s/mc/client.jar", "sha1": %[3]q}},
		"libraries": [
			{"name": "com.mojang:brigadier:1.0.18", "downloads": {"artifact": {
				"path": "com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar",
				"url": "%[2]s/mc/brigadier.jar", "sha1": %[4]q}}}
		]
	}`, id, e.srv.URL, downloadmgr.Sha1Hex(client), downloadmgr.Sha1Hex(lib))

	manifest := fmt.Sprintf(`{"versions": [{"id": %q, "type": "release", "url": "%s/mc/%s.json"}]}`, id, e.srv.URL, id)
	e.serve("/mc/manifest.json", []byte(manifest))
	e.serve("/mc/"+id+".json", []byte(descriptor))
	e.serve("/mc/client.jar", client)
	e.serve("/mc/brigadier.jar", lib)
}

// fakeTools records tool invocations instead of running java
type fakeTools struct {
	mu   sync.Mutex
	runs []Tool
	code int
	err  error
	// inspect is called while the tool "runs"
	inspect func(Tool)
}

func (f *fakeTools) Run(ctx context.Context, tool Tool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, tool)
	if f.inspect != nil {
		f.inspect(tool)
	}
	return f.code, f.err
}

// zipBytes builds a zip archive in memory
func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
