package cmd

import (
	"path/filepath"

	"github.com/minepkg/mclaunch/internals/autocomplete"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/spf13/cobra"
)

// newCompleter returns a completer. Completions run without the persistent pre-run hooks,
// so the config might not be loaded yet
func newCompleter() *autocomplete.AutoCompleter {
	if globals.Current == nil {
		if err := initConfig(); err != nil {
			return nil
		}
	}
	env := globals.Current
	return &autocomplete.AutoCompleter{
		Minecraft: env.Minecraft,
		CacheDir:  filepath.Join(env.Config.DataDir, "cache"),
		GlobalDir: env.Config.DataDir,
	}
}

func completeInstances(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	c := newCompleter()
	if c == nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return c.CompleteInstances(toComplete)
}

func completeVersions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	c := newCompleter()
	if c == nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return c.CompleteVersions(toComplete)
}

func completeLoader(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return autocomplete.CompleteLoaders(toComplete)
}

// completeLoaderArgs completes `<loader> <minecraft-version>`
func completeLoaderArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return autocomplete.CompleteLoaders(toComplete)
	case 1:
		return completeVersions(cmd, args, toComplete)
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
