// Package globals holds the configuration and the shared clients of the cli.
package globals

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/classpath"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/minepkg/mclaunch/internals/ownhttp"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of all config environment variables (MCLAUNCH_DATA_DIR …)
const EnvPrefix = "MCLAUNCH"

var (
	// Viper is the config source of the cli
	Viper = viper.New()
	// Current is set up by the root command before any subcommand runs
	Current *Env
)

// Config is the effective configuration
type Config struct {
	DataDir     string `mapstructure:"data_dir" toml:"data_dir"`
	Verbose     bool   `mapstructure:"verbose" toml:"verbose"`
	ManifestURL string `mapstructure:"manifest_url" toml:"manifest_url"`

	Download struct {
		Parallelism int     `mapstructure:"parallelism" toml:"parallelism"`
		RateLimit   float64 `mapstructure:"rate_limit" toml:"rate_limit"`
	} `mapstructure:"download" toml:"download"`

	HTTP struct {
		UserAgent string `mapstructure:"user_agent" toml:"user_agent"`
	} `mapstructure:"http" toml:"http"`

	Java struct {
		Path string `mapstructure:"path" toml:"path"`
	} `mapstructure:"java" toml:"java"`

	Memory struct {
		MaxMB int `mapstructure:"max_mb" toml:"max_mb"`
	} `mapstructure:"memory" toml:"memory"`

	Classpath struct {
		SkipLocalDiscoveryFor []string `mapstructure:"skip_local_discovery_for" toml:"skip_local_discovery_for"`
		KeepCPWWithModulePath bool     `mapstructure:"keep_cpw_with_module_path" toml:"keep_cpw_with_module_path"`
	} `mapstructure:"classpath" toml:"classpath"`

	Fabric struct {
		MetaURL string `mapstructure:"meta_url" toml:"meta_url"`
	} `mapstructure:"fabric" toml:"fabric"`

	Quilt struct {
		MetaURL string `mapstructure:"meta_url" toml:"meta_url"`
	} `mapstructure:"quilt" toml:"quilt"`
}

// SetDefaults registers every config key with its default value.
// Keys without a default are not picked up from the environment by viper.
func SetDefaults(v *viper.Viper, home string) {
	v.SetDefault("data_dir", filepath.Join(home, ".mclaunch"))
	v.SetDefault("verbose", false)
	v.SetDefault("manifest_url", minecraft.DefaultManifestURL)
	v.SetDefault("download.parallelism", downloadmgr.DefaultParallelism)
	v.SetDefault("download.rate_limit", 0)
	v.SetDefault("http.user_agent", ownhttp.DefaultUserAgent)
	v.SetDefault("java.path", "")
	v.SetDefault("memory.max_mb", 0)
	v.SetDefault("classpath.skip_local_discovery_for", []string{string(loaders.Forge), string(loaders.NeoForge)})
	v.SetDefault("classpath.keep_cpw_with_module_path", true)
	v.SetDefault("fabric.meta_url", loaders.FabricMetaURL)
	v.SetDefault("quilt.meta_url", loaders.QuiltMetaURL)
}

// BindEnv makes every key overridable with a MCLAUNCH_ prefixed environment variable.
// Dots become underscores: MCLAUNCH_DOWNLOAD_PARALLELISM
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig reads the effective configuration out of v
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if cfg.Download.Parallelism < 1 {
		cfg.Download.Parallelism = 1
	}
	return cfg, nil
}

// Policy returns the classpath policy described by the config
func (c *Config) Policy() (classpath.Policy, error) {
	policy := classpath.DefaultPolicy()
	policy.KeepCPWWithModulePath = c.Classpath.KeepCPWWithModulePath
	policy.SkipLocalDiscovery = make(map[loaders.Type]bool, len(c.Classpath.SkipLocalDiscoveryFor))
	for _, name := range c.Classpath.SkipLocalDiscoveryFor {
		t, err := loaders.ParseType(name)
		if err != nil {
			return policy, errors.Wrap(err, "classpath.skip_local_discovery_for")
		}
		policy.SkipLocalDiscovery[t] = true
	}
	return policy, nil
}

// Env bundles the clients every command needs
type Env struct {
	Config    *Config
	Logger    *log.Logger
	Downloads *downloadmgr.Manager
	Minecraft *minecraft.Client
	Loaders   *loaders.Loaders
}

// Setup builds the shared clients for cfg
func Setup(cfg *Config) *Env {
	logger := cmdlog.New(cmdlog.Options{Verbose: cfg.Verbose, Output: os.Stderr})
	client := ownhttp.NewWithOptions(ownhttp.Options{
		UserAgent: cfg.HTTP.UserAgent,
		RateLimit: cfg.Download.RateLimit,
	})

	downloads := downloadmgr.New(client, logger)
	downloads.Parallelism = cfg.Download.Parallelism

	mc := minecraft.New(client, logger)
	if cfg.ManifestURL != "" {
		mc.ManifestURL = cfg.ManifestURL
	}

	java := cfg.Java.Path
	if java == "" {
		java = "java"
	}

	return &Env{
		Config:    cfg,
		Logger:    logger,
		Downloads: downloads,
		Minecraft: mc,
		Loaders: loaders.New(loaders.Options{
			HTTP:          client,
			Logger:        logger,
			Minecraft:     mc,
			FabricMetaURL: cfg.Fabric.MetaURL,
			QuiltMetaURL:  cfg.Quilt.MetaURL,
			Tools:         &loaders.JavaToolRunner{Java: java, Logger: logger},
		}),
	}
}
