package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/spf13/cobra"
)

func newVersionsCmd() *cobra.Command {
	runner := &versionsRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "versions",
		Short: "Lists released minecraft versions",
		Args:  cobra.NoArgs,
	}, runner)

	cmd.Flags().IntVarP(&runner.limit, "limit", "n", 20, "Maximum amount of versions to print (0 prints all)")
	cmd.Flags().BoolVar(&runner.snapshots, "snapshots", false, "Include snapshots and old versions")

	return cmd.Command
}

type versionsRunner struct {
	limit     int
	snapshots bool
}

func (v *versionsRunner) RunE(cmd *cobra.Command, args []string) error {
	env := globals.Current
	manifest, err := env.Minecraft.FetchManifest(cmd.Context())
	if err != nil {
		return err
	}

	versions := manifest.Releases()
	if v.snapshots {
		versions = manifest.Versions
	}
	if v.limit > 0 && len(versions) > v.limit {
		versions = versions[:v.limit]
	}

	for _, version := range versions {
		line := fmt.Sprintf("%-20s %s", version.ID, gchalk.Gray(humanize.Time(version.ReleaseTime)))
		if version.ID == manifest.Latest.Release {
			line += " " + gchalk.Green("(latest)")
		}
		if version.Type != "release" {
			line += " " + gchalk.Yellow(version.Type)
		}
		fmt.Println(line)
	}
	return nil
}
