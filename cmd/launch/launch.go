package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/classpath"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/java"
	"github.com/minepkg/mclaunch/internals/launch"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// statsInterval is how often resource usage is logged in verbose mode
const statsInterval = 30 * time.Second

// New returns the launch command
func New() *cobra.Command {
	runner := &launchRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "launch <name>",
		Aliases: []string{"run", "start", "play"},
		Short:   "Launches an installed instance",
		Args:    cobra.ExactArgs(1),
	}, runner)

	cmd.Flags().StringVarP(&runner.player, "player", "p", "", "Offline player name")
	cmd.Flags().IntVar(&runner.memory, "memory", 0, "Overwrite the maximum memory in MiB")
	cmd.Flags().StringVar(&runner.java, "java", "", "Overwrite the java binary")
	cmd.Flags().BoolVar(&runner.printCmd, "print-cmd", false, "Only print the java command, do not launch")

	return cmd.Command
}

type launchRunner struct {
	player   string
	memory   int
	java     string
	printCmd bool
}

func (l *launchRunner) RunE(cmd *cobra.Command, args []string) error {
	env := globals.Current
	ctx := cmd.Context()

	instance, err := instances.Open(args[0], env.Config.DataDir)
	if err != nil {
		return err
	}
	if instance.State != instances.StateReady {
		return &commands.CliError{
			Text:        fmt.Sprintf("instance %s is not ready (state %s)", instance.Name, instance.State),
			Suggestions: []string{"Reinstall it with \"mclaunch install " + instance.Name + " --force\""},
		}
	}
	l.applyOverwrites(instance, env.Config)

	policy, err := env.Config.Policy()
	if err != nil {
		return err
	}
	cp, err := classpath.New(policy, env.Logger).Build(instance, instance.LibrariesDir(), instance.Libraries)
	if err != nil {
		return err
	}

	if err := extractNatives(instance, env); err != nil {
		return err
	}

	launcher := launch.New(launch.Options{
		Logger:  env.Logger,
		Java:    &java.PathFinder{Logger: env.Logger},
		Session: minecraft.OfflineSession{PlayerName: l.player},
	})

	if l.printCmd {
		c, _, err := launcher.Command(ctx, instance, cp)
		if err != nil {
			return err
		}
		fmt.Println((&launch.Handle{Cmd: c}).CommandLine())
		return nil
	}

	fmt.Println(commands.Heading("⛏  ", "Launching Minecraft"))
	handle, err := launcher.Launch(ctx, instance, cp)
	if err != nil {
		return err
	}

	instance.MarkPlayed(time.Now())
	if err := instance.Save(); err != nil {
		env.Logger.Warn("could not save instance", "err", err)
	}

	return wait(ctx, env, handle)
}

func (l *launchRunner) applyOverwrites(i *instances.Instance, cfg *globals.Config) {
	if l.memory > 0 {
		i.MaxMemoryMB = l.memory
	} else if i.MaxMemoryMB == 0 {
		i.MaxMemoryMB = cfg.Memory.MaxMB
	}

	switch {
	case l.java != "":
		i.JavaPath = l.java
	case i.JavaPath == "":
		i.JavaPath = cfg.Java.Path
	}
}

// extractNatives unpacks the native libraries of the instance libraries and of the
// saved vanilla descriptor (natives only libraries are not part of the instance record)
func extractNatives(i *instances.Instance, env *globals.Env) error {
	jars := classpath.NativeJars(i, i.LibrariesDir(), i.Libraries)

	descriptor := filepath.Join(i.Dir, i.MinecraftVersion+".json")
	raw, err := os.ReadFile(descriptor)
	switch {
	case err == nil:
		version, err := minecraft.ParseVersion(raw)
		if err != nil {
			return err
		}
		jars = append(jars, version.NativeJars(i.LibrariesDir())...)
	case !os.IsNotExist(err):
		return err
	}

	slices.Sort(jars)
	jars = slices.Compact(jars)
	n, err := classpath.ExtractNatives(jars, i.NativesDir(), env.Logger)
	if err != nil {
		return err
	}
	env.Logger.Debug("extracted natives", "files", n, "jars", len(jars))
	return nil
}

// wait streams the game output until the process exits
func wait(ctx context.Context, env *globals.Env, h *launch.Handle) error {
	statsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if env.Config.Verbose {
		go logStats(statsCtx, env, h)
	}

	out := &output{}
	var streams errgroup.Group
	streams.Go(func() error { return out.stream(h.Stdout, os.Stdout) })
	streams.Go(func() error { return out.stream(h.Stderr, os.Stderr) })
	if err := streams.Wait(); err != nil {
		env.Logger.Debug("output stream closed", "err", err)
	}

	err := h.Wait()
	if err == nil {
		fmt.Println("\nMinecraft was stopped normally")
		return nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		// 130 is ctrl-c
		if exitErr.ExitCode() == 130 {
			fmt.Println("\nMinecraft was stopped normally")
			return nil
		}
		report := out.crashReport()
		if report == "" {
			report = filepath.Join(h.Cmd.Dir, "crash-reports")
		}
		return &commands.CliError{
			Text: fmt.Sprintf("minecraft exited with code %d", exitErr.ExitCode()),
			Suggestions: []string{
				"Check the crash report " + gchalk.Bold(report),
				"Print the command with --print-cmd and run it manually",
			},
		}
	}
	return err
}

func logStats(ctx context.Context, env *globals.Env, h *launch.Handle) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := h.Stats(ctx)
			if err != nil {
				return
			}
			env.Logger.Debug("game stats", "cpu", fmt.Sprintf("%.1f%%", stats.CPUPercent), "memory", humanize.IBytes(stats.RSS))
		}
	}
}
