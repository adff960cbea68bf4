package cmd

import (
	"fmt"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/utils"
	"github.com/spf13/cobra"
)

func newLoadersCmd() *cobra.Command {
	runner := &loadersRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "loaders <fabric|quilt|forge|neoforge> <minecraft-version>",
		Short:   "Lists the loader versions available for a minecraft version",
		Example: "  mclaunch loaders neoforge 1.21.1",
		Args:    cobra.ExactArgs(2),

		ValidArgsFunction: completeLoaderArgs,
	}, runner)

	cmd.Flags().IntVarP(&runner.limit, "limit", "n", 20, "Maximum amount of versions to print (0 prints all)")

	return cmd.Command
}

type loadersRunner struct {
	limit int
}

func (l *loadersRunner) RunE(cmd *cobra.Command, args []string) error {
	t, err := loaders.ParseType(args[0])
	if err != nil {
		return &commands.CliError{
			Text:        err.Error(),
			Suggestions: []string{"Use one of: fabric, quilt, forge, neoforge"},
		}
	}
	mc := args[1]

	versions, err := globals.Current.Loaders.ListVersions(cmd.Context(), t, mc)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Printf("No %s versions found for minecraft %s\n", t, mc)
		return nil
	}

	fmt.Printf("%s versions for minecraft %s %s\n", t, mc, gchalk.Gray(fmt.Sprintf("(%d total)", len(versions))))
	if l.limit > 0 && len(versions) > l.limit {
		versions = versions[:l.limit]
	}
	for _, v := range versions {
		fmt.Println("  " + utils.PrettyVersion(v))
	}
	return nil
}
