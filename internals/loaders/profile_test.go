package loaders

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveFabricProfile serves a profile with two libraries. One uses the default maven,
// the other one declares its repository.
func (e *testEnv) serveFabricProfile(mc, loader, mainClass string) {
	profile := fmt.Sprintf(`{
		"id": "fabric-loader-%[2]s-%[1]s",
		"inheritsFrom": %[1]q,
		%[3]s,
		"arguments": {"game": [], "jvm": ["-DFabricMcEmu= net.minecraft.client.main.Main "]},
		"libraries": [
			{"name": "net.fabricmc:intermediary:%[1]s", "url": "%[4]s/fabric-maven/"},
			{"name": "org.ow2.asm:asm:9.6"}
		]
	}`, mc, loader, mainClass, e.srv.URL)
	e.serve(fmt.Sprintf("/fabric/versions/loader/%s/%s/profile/json", mc, loader), []byte(profile))
	e.serve(fmt.Sprintf("/fabric-maven/net/fabricmc/intermediary/%[1]s/intermediary-%[1]s.jar", mc), []byte("intermediary"))
}

// seedLibrary creates a library that the default maven would serve
func seedLibrary(t *testing.T, libsDir string, rel string) {
	t.Helper()
	p := filepath.Join(libsDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), os.ModePerm))
	require.NoError(t, os.WriteFile(p, []byte(rel), 0o644))
}

func TestFabricInstall(t *testing.T) {
	env := newTestEnv(t)
	env.serveFabricProfile("1.20.1", "0.15.0", `"mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient"`)

	ic := env.context(t, "1.20.1", "0.15.0")
	seedLibrary(t, ic.LibsDir, "org/ow2/asm/asm/9.6/asm-9.6.jar")

	installer, err := env.loaders.Installer(Fabric)
	require.NoError(t, err)
	result, err := installer.Install(context.Background(), ic)
	require.NoError(t, err)

	assert.Equal(t, "net.fabricmc.loader.impl.launch.knot.KnotClient", result.MainClass)
	assert.Equal(t, []string{
		"net.fabricmc:intermediary:1.20.1",
		"org.ow2.asm:asm:9.6",
		"net.fabricmc:fabric-loader:0.15.0",
	}, result.Libraries)
	assert.Equal(t, []string{"-DFabricMcEmu= net.minecraft.client.main.Main "}, result.ExtraJVMArgs)
	assert.Empty(t, result.ExtraGameArgs)
	assert.Empty(t, result.AssetIndexID)

	assert.FileExists(t, filepath.Join(ic.InstanceDir, "fabric-1.20.1-0.15.0.json"))
	assert.FileExists(t, filepath.Join(ic.LibsDir, "net", "fabricmc", "intermediary", "1.20.1", "intermediary-1.20.1.jar"))
}

func TestFabricMissingMainClass(t *testing.T) {
	env := newTestEnv(t)
	env.serveFabricProfile("1.20.1", "0.15.0", `"mainClass": ""`)

	installer, err := env.loaders.Installer(Fabric)
	require.NoError(t, err)
	_, err = installer.Install(context.Background(), env.context(t, "1.20.1", "0.15.0"))
	assert.Equal(t, merrors.KindLoaderAPI, merrors.KindOf(err))
}

func TestProfileStatusErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc("/quilt/versions/loader/1.20.1/0.20.0/profile/json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	quilt, err := env.loaders.Installer(Quilt)
	require.NoError(t, err)

	_, err = quilt.Install(context.Background(), env.context(t, "1.20.1", "0.20.0"))
	assert.Equal(t, merrors.KindLoaderAPI, merrors.KindOf(err))
	assert.True(t, merrors.IsRecoverable(err))

	// unknown versions are a 404 and retrying does not help
	_, err = quilt.Install(context.Background(), env.context(t, "1.20.1", "0.0.0"))
	assert.Equal(t, merrors.KindLoaderAPI, merrors.KindOf(err))
	assert.False(t, merrors.IsRecoverable(err))
}

func TestEnsureLoaderArtifact(t *testing.T) {
	libs := ensureLoaderArtifact([]string{"net.fabricmc:intermediary:1.21.1"}, "net.fabricmc:fabric-loader:0.16.10")
	assert.Equal(t, []string{"net.fabricmc:intermediary:1.21.1", "net.fabricmc:fabric-loader:0.16.10"}, libs)

	libs = ensureLoaderArtifact([]string{"net.fabricmc:fabric-loader:0.16.10"}, "net.fabricmc:fabric-loader:0.16.10")
	assert.Len(t, libs, 1)
}
