package cmd

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/minepkg/mclaunch/internals/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newInstallCmd() *cobra.Command {
	runner := &installRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "install <name>",
		Aliases: []string{"isntall", "i"},
		Short:   "Creates (or reinstalls) an instance",
		Long: `Creates the instance <name>, downloads minecraft, the mod loader and all assets.
Without --mc the latest release is used. Without --loader-version you can pick one
interactively, or the newest version is used when not running in a terminal.`,
		Example: `
  mclaunch install survival
  mclaunch install modded --mc 1.20.1 --loader forge --loader-version 47.2.0`,
		Args: cobra.ExactArgs(1),
	}, runner)

	cmd.Flags().StringVarP(&runner.mc, "mc", "m", "", "Minecraft version (default is the latest release)")
	cmd.Flags().StringVarP(&runner.loader, "loader", "l", "vanilla", "Mod loader: vanilla, fabric, quilt, forge or neoforge")
	cmd.Flags().StringVar(&runner.loaderVersion, "loader-version", "", "Mod loader version")
	cmd.Flags().IntVar(&runner.memory, "memory", 0, "Maximum memory in MiB (default from config)")
	cmd.Flags().StringVar(&runner.java, "java", "", "Java binary used for this instance")
	cmd.Flags().BoolVarP(&runner.force, "force", "f", false, "Reinstall an existing instance")
	cmd.RegisterFlagCompletionFunc("mc", completeVersions)
	cmd.RegisterFlagCompletionFunc("loader", completeLoader)

	return cmd.Command
}

type installRunner struct {
	mc            string
	loader        string
	loaderVersion string
	memory        int
	java          string
	force         bool
}

func (i *installRunner) RunE(cmd *cobra.Command, args []string) error {
	env := globals.Current
	ctx := cmd.Context()
	name := args[0]

	t, err := loaders.ParseType(i.loader)
	if err != nil {
		return &commands.CliError{
			Text:        err.Error(),
			Suggestions: []string{"Use one of: vanilla, fabric, quilt, forge, neoforge"},
		}
	}

	instance, err := i.prepareInstance(ctx, env, name, t)
	if err != nil {
		return err
	}

	fmt.Println(commands.Heading("📦 ", fmt.Sprintf("Installing %s (%s)", instance.Name, describe(instance))))

	if err := instance.Scaffold(); err != nil {
		return err
	}
	instance.State = instances.StateInstalling
	if err := instance.Save(); err != nil {
		return err
	}

	start := time.Now()
	if err := install(ctx, env, instance); err != nil {
		instance.State = instances.StateError
		if saveErr := instance.Save(); saveErr != nil {
			env.Logger.Warn("could not save instance state", "err", saveErr)
		}
		return err
	}

	instance.State = instances.StateReady
	if err := instance.Save(); err != nil {
		return err
	}

	fmt.Println(commands.KeyValue("  main class", instance.MainClass))
	fmt.Println(commands.KeyValue("  libraries", len(instance.Libraries)))
	fmt.Println(commands.KeyValue("  directory", instance.Dir))
	fmt.Printf("\n%s Installed in %s. Start it with %s\n",
		commands.Emoji("✅"),
		time.Since(start).Round(time.Second),
		gchalk.Bold("mclaunch launch "+instance.Name),
	)
	return nil
}

// prepareInstance resolves versions and creates the instance record
func (i *installRunner) prepareInstance(ctx context.Context, env *globals.Env, name string, t loaders.Type) (*instances.Instance, error) {
	existing, err := instances.Open(name, env.Config.DataDir)
	switch {
	case err == nil && !i.force:
		return nil, &commands.CliError{
			Text:        fmt.Sprintf("instance %s already exists (%s)", name, describe(existing)),
			Suggestions: []string{"Use --force to reinstall it", "Launch it with \"mclaunch launch " + name + "\""},
		}
	case err != nil && err != instances.ErrNoInstance:
		return nil, err
	}

	mc := i.mc
	if mc == "" {
		manifest, err := env.Minecraft.FetchManifest(ctx)
		if err != nil {
			return nil, err
		}
		mc = manifest.Latest.Release
		env.Logger.Info("using latest minecraft release", "minecraft", mc)
	}

	lv := i.loaderVersion
	if t != loaders.Vanilla && lv == "" {
		lv, err = i.pickLoaderVersion(ctx, env, t, mc)
		if err != nil {
			return nil, err
		}
	}

	memory := i.memory
	if memory == 0 {
		memory = env.Config.Memory.MaxMB
	}

	instance, err := instances.New(name, mc, t, lv, memory, env.Config.DataDir)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		instance.ID = existing.ID
		instance.CreatedAt = existing.CreatedAt
		instance.LastPlayed = existing.LastPlayed
	}
	instance.JavaPath = i.java
	return instance, nil
}

func (i *installRunner) pickLoaderVersion(ctx context.Context, env *globals.Env, t loaders.Type, mc string) (string, error) {
	versions, err := env.Loaders.ListVersions(ctx, t, mc)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", &commands.CliError{
			Text:        fmt.Sprintf("%s has no versions for minecraft %s", t, mc),
			Suggestions: []string{"Check the available versions with \"mclaunch loaders " + string(t) + " " + mc + "\""},
		}
	}

	if !commands.IsInteractive() {
		env.Logger.Info("using newest loader version", "loader", t, "version", versions[0])
		return versions[0], nil
	}
	return utils.SelectVersion(fmt.Sprintf("Which %s version?", t), versions)
}

// install runs the loader install and downloads the assets
func install(ctx context.Context, env *globals.Env, instance *instances.Instance) error {
	spinner := commands.NewMaybeSpinner(commands.IsInteractive() && !env.Config.Verbose)
	spinner.Msg = "Downloading …"
	var transferred uint64
	env.Downloads.OnProgress = func(p downloadmgr.Progress) {
		total := atomic.AddUint64(&transferred, uint64(p.Bytes))
		if p.Total == 0 {
			return
		}
		spinner.Update(fmt.Sprintf("%s/%s files (%s)", utils.HumanCount(p.Completed), utils.HumanCount(p.Total), humanize.Bytes(total)))
	}
	defer func() { env.Downloads.OnProgress = nil }()

	spinner.Start()
	defer spinner.Stop()

	res, err := env.Loaders.Install(ctx, instance.Loader, instance.InstallContext(env.Downloads))
	if err != nil {
		return errors.Wrapf(err, "installing %s", describe(instance))
	}

	if res.AssetIndexURL != "" {
		spinner.Update("Downloading assets …")
		ref := &minecraft.AssetIndexRef{ID: res.AssetIndexID, URL: res.AssetIndexURL}
		if err := env.Minecraft.DownloadAssets(ctx, ref, instance.AssetsDir(), env.Downloads); err != nil {
			return err
		}
	}

	instance.Apply(res)
	env.Logger.Debug("install done", "transferred", humanize.Bytes(atomic.LoadUint64(&transferred)))
	return nil
}

func describe(i *instances.Instance) string {
	if i.Loader == loaders.Vanilla || i.LoaderVersion == "" {
		return "minecraft " + i.MinecraftVersion
	}
	return fmt.Sprintf("minecraft %s with %s %s", i.MinecraftVersion, i.Loader, i.LoaderVersion)
}
