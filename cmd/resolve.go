package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/spf13/cobra"
)

var defaultRepositories = []string{
	maven.MojangLibraries,
	maven.MavenCentral,
	maven.FabricMaven,
	maven.QuiltMaven,
	maven.ForgeMaven,
	maven.NeoForgeMaven,
}

func newResolveCmd() *cobra.Command {
	runner := &resolveRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "resolve <group:artifact:version[:classifier][@packaging]>",
		Short:   "Downloads a maven artifact and its dependencies into the shared libraries directory",
		Example: "  mclaunch resolve org.ow2.asm:asm-tree:9.7",
		Args:    cobra.ExactArgs(1),
	}, runner)

	cmd.Flags().StringSliceVar(&runner.repositories, "repo", defaultRepositories, "Repositories to try, in order")

	return cmd.Command
}

type resolveRunner struct {
	repositories []string
}

func (r *resolveRunner) RunE(cmd *cobra.Command, args []string) error {
	env := globals.Current
	libsDir := filepath.Join(env.Config.DataDir, "libraries")

	resolver := maven.NewResolver(env.Downloads, libsDir, r.repositories, env.Logger)
	paths, err := resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Println(p)
	}
	env.Logger.Info("resolved", "coordinate", args[0], "jars", len(paths), "visited", resolver.Visited())
	return nil
}
