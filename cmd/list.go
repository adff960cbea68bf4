package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/utils"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := commands.New(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Lists all installed instances",
		Args:    cobra.NoArgs,
	}, &listRunner{})

	return cmd.Command
}

type listRunner struct{}

func (l *listRunner) RunE(cmd *cobra.Command, args []string) error {
	list, err := instances.List(globals.Current.Config.DataDir)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No instances yet. Create one with \"mclaunch install <name> --mc <version>\"")
		return nil
	}

	for _, i := range list {
		version := i.MinecraftVersion
		if i.Loader != loaders.Vanilla && i.LoaderVersion != "" {
			version += " " + string(i.Loader) + " " + utils.PrettyVersion(i.LoaderVersion)
		}
		played := "never played"
		if i.LastPlayed != nil {
			played = "played " + humanize.Time(*i.LastPlayed)
		}
		fmt.Printf("%-20s %-36s %s %s\n", i.Name, version, stateLabel(i.State), gchalk.Gray(played))
	}
	return nil
}

func stateLabel(s instances.State) string {
	switch s {
	case instances.StateReady:
		return gchalk.Green(string(s))
	case instances.StateError:
		return gchalk.Red(string(s))
	}
	return gchalk.Yellow(string(s))
}
