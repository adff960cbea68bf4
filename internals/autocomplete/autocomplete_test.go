package autocomplete

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `{
	"latest": {"release": "1.20.1", "snapshot": "23w31a"},
	"versions": [
		{"id": "23w31a", "type": "snapshot"},
		{"id": "1.20.1", "type": "release", "releaseTime": "2023-06-12T13:25:51+00:00"},
		{"id": "1.19.4", "type": "release", "releaseTime": "2023-03-14T12:56:18+00:00"}
	]
}`

func completer(t *testing.T) (*AutoCompleter, *int32, *httptest.Server) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(manifest))
	}))
	t.Cleanup(srv.Close)

	mc := minecraft.New(srv.Client(), cmdlog.Discard())
	mc.ManifestURL = srv.URL
	return &AutoCompleter{Minecraft: mc, CacheDir: t.TempDir(), GlobalDir: t.TempDir()}, &hits, srv
}

func TestVersionsAreCached(t *testing.T) {
	a, hits, _ := completer(t)

	versions, err := a.Versions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "1.20.1", versions[0].ID)
	assert.FileExists(t, a.cacheFile())

	// in memory
	_, err = a.Versions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	// from the cache file
	fresh := &AutoCompleter{Minecraft: a.Minecraft, CacheDir: a.CacheDir}
	versions, err = fresh.Versions(context.Background())
	require.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestStaleCacheIsUsedOffline(t *testing.T) {
	a, _, srv := completer(t)
	_, err := a.Versions(context.Background())
	require.NoError(t, err)

	a.storage.LastFetch = time.Now().Add(-2 * maxAge)
	raw, err := json.Marshal(&a.storage)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(a.cacheFile(), raw, 0644))
	srv.Close()

	offline := &AutoCompleter{Minecraft: a.Minecraft, CacheDir: a.CacheDir}
	versions, err := offline.Versions(context.Background())
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestCompleteVersions(t *testing.T) {
	a, _, _ := completer(t)

	matches, directive := a.CompleteVersions("1.20")
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "1.20.1\treleased ")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestCompleteInstances(t *testing.T) {
	a, _, _ := completer(t)
	for _, name := range []string{"survival", "modded"} {
		i, err := instances.New(name, "1.20.1", loaders.Fabric, "0.15.7", 0, a.GlobalDir)
		require.NoError(t, err)
		require.NoError(t, i.Save())
	}

	matches, _ := a.CompleteInstances("mo")
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "modded\t")
	assert.Contains(t, matches[0], "1.20.1 fabric 0.15.7")
}

func TestCompleteLoaders(t *testing.T) {
	matches, _ := CompleteLoaders("f")
	assert.Equal(t, []string{"fabric", "forge"}, matches)
}
