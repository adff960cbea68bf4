package config

import (
	"fmt"

	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/pelletier/go-toml"
	"github.com/spf13/cobra"
)

const (
	configKindString = iota
	configKindBool
	configKindInt
	configKindFloat
	configKindList
)

type configEntry struct {
	kind int
	help string
}

var config = map[string]configEntry{
	"data_dir":                            {configKindString, "directory for instances and libraries"},
	"verbose":                             {configKindBool, "print debug output"},
	"manifest_url":                        {configKindString, "minecraft version manifest"},
	"download.parallelism":                {configKindInt, "concurrent downloads"},
	"download.rate_limit":                 {configKindFloat, "requests per second, 0 is unlimited"},
	"http.user_agent":                     {configKindString, "user agent of all requests"},
	"java.path":                           {configKindString, "java binary, empty searches JAVA_HOME and PATH"},
	"memory.max_mb":                       {configKindInt, "default maximum memory, 0 uses 2048 capped to half of the system memory"},
	"classpath.skip_local_discovery_for":  {configKindList, "loaders whose instance library folders are not scanned"},
	"classpath.keep_cpw_with_module_path": {configKindBool, "keep the cpw.mods bootstrap jars when a module path is used"},
	"fabric.meta_url":                     {configKindString, "fabric metadata api"},
	"quilt.meta_url":                      {configKindString, "quilt metadata api"},
}

// SubCmd is the config command. Without a subcommand it prints the effective configuration
var SubCmd = commands.New(&cobra.Command{
	Use:   "config",
	Short: "Prints or manages the global configuration",
	Args:  cobra.NoArgs,
}, &printRunner{}).Command

type printRunner struct{}

func (p *printRunner) RunE(cmd *cobra.Command, args []string) error {
	out, err := toml.Marshal(globals.Current.Config)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
