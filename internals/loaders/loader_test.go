package loaders

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"vanilla", Vanilla, false},
		{"Fabric", Fabric, false},
		{" quilt ", Quilt, false},
		{"FORGE", Forge, false},
		{"neoforge", NeoForge, false},
		{"", Vanilla, false},
		{"liteloader", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Equal(t, merrors.KindLoader, merrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerge(t *testing.T) {
	base := &Result{
		MainClass:     "net.minecraft.client.main.Main",
		ExtraJVMArgs:  []string{"-cp", "${classpath}"},
		ExtraGameArgs: []string{"--version", "${version_name}"},
		Libraries:     []string{"com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar"},
		AssetIndexID:  "5",
		AssetIndexURL: "https://example.com/5.json",
		JavaMajor:     17,
	}
	loader := &Result{
		MainClass:    "net.fabricmc.loader.impl.launch.knot.KnotClient",
		ExtraJVMArgs: []string{"-DFabricMcEmu= net.minecraft.client.main.Main "},
		Libraries:    []string{"net.fabricmc:fabric-loader:0.15.0"},
	}

	merged := Merge(base, loader)
	assert.Equal(t, "net.fabricmc.loader.impl.launch.knot.KnotClient", merged.MainClass)
	assert.Equal(t, []string{"-cp", "${classpath}", "-DFabricMcEmu= net.minecraft.client.main.Main "}, merged.ExtraJVMArgs)
	assert.Equal(t, []string{"--version", "${version_name}"}, merged.ExtraGameArgs)
	assert.Len(t, merged.Libraries, 2)
	// unset optional fields inherit the vanilla value
	assert.Equal(t, "5", merged.AssetIndexID)
	assert.Equal(t, 17, merged.JavaMajor)
	// base is not modified
	assert.Len(t, base.Libraries, 1)

	merged = Merge(base, &Result{JavaMajor: 21})
	assert.Equal(t, "net.minecraft.client.main.Main", merged.MainClass)
	assert.Equal(t, 21, merged.JavaMajor)
}

func TestInstallVanillaOnly(t *testing.T) {
	env := newTestEnv(t)
	env.serveVanilla("1.20.1")
	ic := env.context(t, "1.20.1", "")

	result, err := env.loaders.Install(context.Background(), Vanilla, ic)
	require.NoError(t, err)

	assert.Equal(t, "net.minecraft.client.main.Main", result.MainClass)
	assert.Equal(t, []string{"com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar"}, result.Libraries)
	assert.Equal(t, "5", result.AssetIndexID)
	assert.Equal(t, 17, result.JavaMajor)
	assert.FileExists(t, filepath.Join(ic.InstanceDir, ClientJar))
	assert.FileExists(t, filepath.Join(ic.InstanceDir, "1.20.1.json"))
	assert.FileExists(t, filepath.Join(ic.LibsDir, "com", "mojang", "brigadier", "1.0.18", "brigadier-1.0.18.jar"))

	// no loader endpoint was touched
	for path := range env.hits {
		assert.Regexp(t, "^/mc/", path)
	}
}

func TestInstallLoaderWithoutVersionIsVanilla(t *testing.T) {
	env := newTestEnv(t)
	env.serveVanilla("1.20.1")

	result, err := env.loaders.Install(context.Background(), Fabric, env.context(t, "1.20.1", ""))
	require.NoError(t, err)
	assert.Equal(t, "net.minecraft.client.main.Main", result.MainClass)
	for path := range env.hits {
		assert.NotRegexp(t, "^/fabric", path)
	}
}

func TestInstallFabricOverridesMainClass(t *testing.T) {
	env := newTestEnv(t)
	env.serveVanilla("1.20.1")
	env.serveFabricProfile("1.20.1", "0.15.0", `"mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient"`)

	ic := env.context(t, "1.20.1", "0.15.0")
	seedLibrary(t, ic.LibsDir, "org/ow2/asm/asm/9.6/asm-9.6.jar")

	result, err := env.loaders.Install(context.Background(), Fabric, ic)
	require.NoError(t, err)
	assert.Equal(t, "net.fabricmc.loader.impl.launch.knot.KnotClient", result.MainClass)
	assert.Contains(t, result.Libraries, "com/mojang/brigadier/1.0.18/brigadier-1.0.18.jar")
	assert.Contains(t, result.Libraries, "net.fabricmc:fabric-loader:0.15.0")
	assert.Equal(t, "5", result.AssetIndexID)
}

func TestInstallVanillaUnknownVersion(t *testing.T) {
	env := newTestEnv(t)
	env.serveVanilla("1.20.1")

	_, err := env.loaders.Install(context.Background(), Vanilla, env.context(t, "0.0.1", ""))
	assert.Error(t, err)
}

func TestInstallerUnknownType(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.loaders.Installer(Type("rift"))
	assert.Equal(t, merrors.KindLoader, merrors.KindOf(err))
}

func TestMergeLegacyForgeReplacesGameArgs(t *testing.T) {
	base := &Result{
		MainClass:     "net.minecraft.client.main.Main",
		ExtraGameArgs: []string{"--username", "${auth_player_name}", "--version", "${version_name}"},
	}
	forge := &Result{
		MainClass: "net.minecraft.launchwrapper.Launch",
		ExtraGameArgs: []string{
			"--username", "${auth_player_name}", "--version", "${version_name}",
			"--tweakClass", "net.minecraftforge.fml.common.launcher.FMLTweaker",
		},
		ReplacesGameArgs: true,
	}

	merged := Merge(base, forge)
	assert.Equal(t, forge.ExtraGameArgs, merged.ExtraGameArgs)
	count := 0
	for _, arg := range merged.ExtraGameArgs {
		if arg == "--username" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
