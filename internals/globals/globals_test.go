package globals

import (
	"path/filepath"
	"testing"

	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v, "/home/alex")
	BindEnv(v)
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadConfig(testViper(t))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/home/alex", ".mclaunch"), cfg.DataDir)
	assert.Equal(t, 8, cfg.Download.Parallelism)
	assert.Equal(t, float64(0), cfg.Download.RateLimit)
	assert.Equal(t, minecraft.DefaultManifestURL, cfg.ManifestURL)
	assert.Equal(t, loaders.FabricMetaURL, cfg.Fabric.MetaURL)
	assert.Equal(t, []string{"forge", "neoforge"}, cfg.Classpath.SkipLocalDiscoveryFor)
	assert.True(t, cfg.Classpath.KeepCPWWithModulePath)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MCLAUNCH_DOWNLOAD_PARALLELISM", "3")
	t.Setenv("MCLAUNCH_JAVA_PATH", "/opt/java/bin/java")

	cfg, err := LoadConfig(testViper(t))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Download.Parallelism)
	assert.Equal(t, "/opt/java/bin/java", cfg.Java.Path)
}

func TestParallelismFloor(t *testing.T) {
	v := testViper(t)
	v.Set("download.parallelism", 0)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Download.Parallelism)
}

func TestPolicy(t *testing.T) {
	v := testViper(t)
	v.Set("classpath.skip_local_discovery_for", []string{"fabric"})
	v.Set("classpath.keep_cpw_with_module_path", false)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	policy, err := cfg.Policy()
	require.NoError(t, err)

	assert.Equal(t, map[loaders.Type]bool{loaders.Fabric: true}, policy.SkipLocalDiscovery)
	assert.False(t, policy.KeepCPWWithModulePath)
	assert.True(t, policy.DropBootstrapJars)

	cfg.Classpath.SkipLocalDiscoveryFor = []string{"liteloader"}
	_, err = cfg.Policy()
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	cfg, err := LoadConfig(testViper(t))
	require.NoError(t, err)
	cfg.ManifestURL = "http://localhost/manifest.json"
	cfg.Download.Parallelism = 2

	env := Setup(cfg)
	assert.Equal(t, 2, env.Downloads.Parallelism)
	assert.Equal(t, "http://localhost/manifest.json", env.Minecraft.ManifestURL)
	assert.NotNil(t, env.Loaders)
}
