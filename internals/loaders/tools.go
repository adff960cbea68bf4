package loaders

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
)

// Tool is one invocation of a java program, for example a forge processor
type Tool struct {
	Classpath []string
	MainClass string
	Args      []string
	// Dir is the working directory
	Dir string
}

// JavaArgs returns the arguments passed to the java binary
func (t Tool) JavaArgs() []string {
	args := make([]string, 0, len(t.Args)+3)
	args = append(args, "-cp", strings.Join(t.Classpath, string(os.PathListSeparator)), t.MainClass)
	return append(args, t.Args...)
}

// ToolRunner runs java tools. It returns the exit code of the tool; an error means
// the tool could not be run at all.
type ToolRunner interface {
	Run(ctx context.Context, tool Tool) (int, error)
}

// JavaToolRunner runs tools in a java subprocess
type JavaToolRunner struct {
	// Java is the java binary. Defaults to "java"
	Java   string
	Logger *log.Logger
}

// Run runs the tool and waits for it to exit
func (j *JavaToolRunner) Run(ctx context.Context, tool Tool) (int, error) {
	java := j.Java
	if java == "" {
		java = "java"
	}
	logger := cmdlog.OrDefault(j.Logger)

	cmd := exec.CommandContext(ctx, java, tool.JavaArgs()...)
	cmd.Dir = tool.Dir
	out, err := cmd.CombinedOutput()
	if len(out) != 0 {
		logger.Debug("tool output", "main", tool.MainClass, "output", string(out))
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, &merrors.Error{Kind: merrors.KindJavaExecution, Op: "running " + tool.MainClass, Err: err}
	}
	return 0, nil
}
