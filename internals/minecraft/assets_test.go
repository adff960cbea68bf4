package minecraft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport sends every request to the test server
type rewriteTransport struct {
	target string
	hits   *int32
}

func (r rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(r.hits, 1)
	clone := req.Clone(req.Context())
	clone.URL.Scheme = "http"
	clone.URL.Host = strings.TrimPrefix(r.target, "http://")
	return http.DefaultTransport.RoundTrip(clone)
}

func TestAssetObject(t *testing.T) {
	obj := AssetObject{Hash: "fe32f3b8f4b5e1c4d0a4f6d3f3b5c2e1a9d8c7b6"}
	assert.Equal(t, "fe/fe32f3b8f4b5e1c4d0a4f6d3f3b5c2e1a9d8c7b6", obj.UnixPath())
	assert.Equal(t, ResourcesURL+"/fe/fe32f3b8f4b5e1c4d0a4f6d3f3b5c2e1a9d8c7b6", obj.DownloadURL())
}

func TestDownloadAssets(t *testing.T) {
	sound := []byte("ogg")
	lang := []byte("{}")
	soundHash := downloadmgr.Sha1Hex(sound)
	langHash := downloadmgr.Sha1Hex(lang)

	index, err := json.Marshal(AssetIndex{Objects: map[string]AssetObject{
		"minecraft/sounds/a.ogg":    {Hash: soundHash, Size: int64(len(sound))},
		"minecraft/sounds/b.ogg":    {Hash: soundHash, Size: int64(len(sound))},
		"minecraft/lang/en_us.json": {Hash: langHash, Size: int64(len(lang))},
	}})
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.json":
			w.Write(index)
		case "/" + soundHash[:2] + "/" + soundHash:
			w.Write(sound)
		case "/" + langHash[:2] + "/" + langHash:
			w.Write(lang)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var hits int32
	client := &http.Client{Transport: rewriteTransport{target: srv.URL, hits: &hits}}
	c := New(client, cmdlog.Discard())
	m := downloadmgr.New(client, cmdlog.Discard())
	ref := &AssetIndexRef{ID: "5", URL: srv.URL + "/index.json", Sha1: downloadmgr.Sha1Hex(index)}
	dir := t.TempDir()

	require.NoError(t, c.DownloadAssets(context.Background(), ref, dir, m))
	assert.FileExists(t, filepath.Join(dir, "indexes", "5.json"))
	assert.FileExists(t, filepath.Join(dir, "objects", soundHash[:2], soundHash))
	assert.FileExists(t, filepath.Join(dir, "objects", langHash[:2], langHash))
	// index + two distinct objects
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	// everything exists now
	require.NoError(t, c.DownloadAssets(context.Background(), ref, dir, m))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestDownloadAssetsNoIndex(t *testing.T) {
	c := New(nil, cmdlog.Discard())
	assert.NoError(t, c.DownloadAssets(context.Background(), nil, t.TempDir(), nil))
}
