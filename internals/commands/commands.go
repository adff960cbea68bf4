package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command is a cobra command that renders returned errors for humans
type Command struct {
	*cobra.Command
	runner Runner
}

// Runner implements the actual command
type Runner interface {
	RunE(cmd *cobra.Command, args []string) error
}

// New wires run into cmd. Errors returned by run are printed and exit the process with code 1
func New(cmd *cobra.Command, run Runner) *Command {
	build := &Command{
		cmd,
		run,
	}
	build.Command.Run = func(cmd *cobra.Command, args []string) {
		err := run.RunE(cmd, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, Render(err))
			os.Exit(1)
		}
	}

	return build
}

// Render returns the error box for err. A *CliError also renders its suggestions
func Render(err error) string {
	var asCliErr *CliError
	if errors.As(err, &asCliErr) {
		return asCliErr.RichError() + "\n"
	}
	return ErrorBox(err.Error(), "")
}
