package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/cmd/config"
	"github.com/minepkg/mclaunch/cmd/launch"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	internalLaunch "github.com/minepkg/mclaunch/internals/launch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set by main
var Version = "dev"

var (
	cfgFile       string
	disableColors bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mclaunch",
	Short: "Installs and launches minecraft with fabric, quilt, forge or neoforge",
	Long:  "Install minecraft instances with any mod loader and launch them from the terminal",

	Example: `
  mclaunch install survival --mc 1.20.1 --loader fabric
  mclaunch install modded --mc 1.21.1 --loader neoforge --loader-version 21.1.77
  mclaunch launch survival`,

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	internalLaunch.LauncherVersion = Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, commands.Render(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	globals.SetDefaults(globals.Viper, home)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mclaunch/config.toml)")
	flags.BoolVarP(&disableColors, "no-color", "", false, "disable color output")
	flags.BoolP("verbose", "v", false, "print debug output")
	flags.String("data-dir", "", "directory for instances and libraries (default is $HOME/.mclaunch)")
	globals.Viper.BindPFlag("verbose", flags.Lookup("verbose"))
	globals.Viper.BindPFlag("data_dir", flags.Lookup("data-dir"))

	launchCmd := launch.New()
	launchCmd.ValidArgsFunction = completeInstances

	rootCmd.AddCommand(
		newVersionsCmd(),
		newLoadersCmd(),
		newInstallCmd(),
		newListCmd(),
		newResolveCmd(),
		launchCmd,
		config.SubCmd,
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if disableColors || os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		gchalk.SetLevel(gchalk.LevelNone)
		commands.EmojiEnabled = false
	}

	v := globals.Viper
	globals.BindEnv(v)
	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(v.GetString("data_dir"))
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	// If a config file is found, read it in.
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); cfgFile != "" || !notFound {
			return &commands.CliError{
				Text: "could not read config file",
				Err:  err,
				Suggestions: []string{
					"Fix the file or remove it: " + filepath.Join(v.GetString("data_dir"), "config.toml"),
				},
			}
		}
	}

	cfg, err := globals.LoadConfig(v)
	if err != nil {
		return err
	}
	globals.Current = globals.Setup(cfg)
	globals.Current.Logger.Debug("config loaded", "file", v.ConfigFileUsed(), "data_dir", cfg.DataDir)
	return nil
}
