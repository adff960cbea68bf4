// Package launch turns an installed instance and its classpath into a running game process.
package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/java"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/shirou/gopsutil/v3/process"
)

var (
	// LauncherName is passed as minecraft.launcher.brand
	LauncherName = "mclaunch"
	// LauncherVersion is overwritten at build time
	LauncherVersion = "0.1.0"
)

// Starter starts a prepared command
type Starter interface {
	Start(cmd *exec.Cmd) error
}

// ExecStarter starts the command as an os process
type ExecStarter struct{}

// Start implements Starter
func (ExecStarter) Start(cmd *exec.Cmd) error { return cmd.Start() }

// Options configure a Launcher
type Options struct {
	Logger *log.Logger
	// Java finds a java binary when the instance has no valid java path. Defaults to java.PathFinder
	Java java.Finder
	// Starter defaults to ExecStarter
	Starter Starter
	// Session is used for the auth placeholders. Defaults to an offline session
	Session minecraft.LaunchAuthData
	// Env is appended to the environment of the game
	Env []string
}

// Launcher launches instances
type Launcher struct {
	opts   Options
	logger *log.Logger
}

// New returns a Launcher
func New(opts Options) *Launcher {
	opts.Logger = cmdlog.OrDefault(opts.Logger)
	if opts.Java == nil {
		opts.Java = &java.PathFinder{Logger: opts.Logger}
	}
	if opts.Starter == nil {
		opts.Starter = ExecStarter{}
	}
	if opts.Session == nil {
		opts.Session = minecraft.OfflineSession{}
	}
	return &Launcher{opts: opts, logger: opts.Logger}
}

// Handle is a started game process. Read Stdout and Stderr before calling Wait
type Handle struct {
	Cmd    *exec.Cmd
	Java   string
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// Pid returns the process id or 0 if the process was not started
func (h *Handle) Pid() int {
	if h.Cmd.Process == nil {
		return 0
	}
	return h.Cmd.Process.Pid
}

// Wait waits for the process to exit
func (h *Handle) Wait() error {
	return h.Cmd.Wait()
}

// CommandLine returns the command in a copy & paste friendly form
func (h *Handle) CommandLine() string {
	parts := make([]string, len(h.Cmd.Args))
	for n, arg := range h.Cmd.Args {
		parts[n] = shellQuote(arg)
	}
	return strings.Join(parts, " ")
}

// Stats are resource usage numbers of a running game
type Stats struct {
	CPUPercent float64
	RSS        uint64
}

// Stats returns the current cpu and memory usage of the game
func (h *Handle) Stats(ctx context.Context) (*Stats, error) {
	pid := h.Pid()
	if pid == 0 {
		return nil, merrors.New(merrors.KindJavaExecution, "process is not running")
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, err
	}
	cpu, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		return nil, err
	}
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{CPUPercent: cpu, RSS: mem.RSS}, nil
}

// Launch starts the game and returns immediately. Monitoring the process is up to the caller
func (l *Launcher) Launch(ctx context.Context, i *instances.Instance, cp string) (*Handle, error) {
	cmd, javaBin, err := l.Command(ctx, i, cp)
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, merrors.New(merrors.KindJavaExecution, "stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, merrors.New(merrors.KindJavaExecution, "stderr pipe: %w", err)
	}

	h := &Handle{Cmd: cmd, Java: javaBin, Stdout: stdout, Stderr: stderr}
	l.logger.Info("launching minecraft", "instance", i.Name, "java", javaBin)
	l.logger.Debug("launch command", "cmd", h.CommandLine())

	if err := l.opts.Starter.Start(cmd); err != nil {
		return nil, merrors.New(merrors.KindJavaExecution, "starting %s: %w", javaBin, err)
	}
	return h, nil
}

// Command builds the game command without starting it
func (l *Launcher) Command(ctx context.Context, i *instances.Instance, cp string) (*exec.Cmd, string, error) {
	if strings.TrimSpace(i.MainClass) == "" {
		return nil, "", merrors.New(merrors.KindMissingMainClass, "instance %s has no main class, install it first", i.Name)
	}
	if strings.TrimSpace(cp) == "" {
		return nil, "", merrors.New(merrors.KindEmptyClasspath, "refusing to launch %s with an empty classpath", i.Name)
	}

	major := i.RequiredJavaMajor
	if major == 0 {
		major = java.RequiredMajorFor(i.MinecraftVersion)
	}
	javaBin, err := l.resolveJava(ctx, i, major)
	if err != nil {
		return nil, "", err
	}

	if err := DetectASMIncompatibility(i, major); err != nil {
		l.logger.Warn(err.Error())
	}

	paths := Paths{
		Natives:   i.NativesDir(),
		Libraries: i.LibrariesDir(),
		GameDir:   i.GameDir(),
		Assets:    i.AssetsDir(),
	}
	if err := os.MkdirAll(paths.GameDir, 0755); err != nil {
		return nil, "", merrors.IO(paths.GameDir, err)
	}

	args := l.Args(i, cp, paths)
	cmd := exec.Command(javaBin, args...)
	cmd.Dir = paths.GameDir
	cmd.Env = nativeLibraryEnv(os.Environ(), paths.Natives)
	// some things may rely on PWD
	cmd.Env = append(cmd.Env, "PWD="+paths.GameDir)
	cmd.Env = append(cmd.Env, l.opts.Env...)
	return cmd, javaBin, nil
}

// Args returns the complete argument list passed to java
func (l *Launcher) Args(i *instances.Instance, cp string, paths Paths) []string {
	args := []string{
		fmt.Sprintf("-Xmx%dM", MaxMemoryMB(i.MaxMemoryMB)),
		fmt.Sprintf("-Xms%dM", MinMemoryMB),
		"-Djava.library.path=" + paths.Natives,
		"-DlibraryDirectory=" + paths.Libraries,
		"-Dminecraft.launcher.brand=" + LauncherName,
		"-Dminecraft.launcher.version=" + LauncherVersion,
	}

	jvmArgs := SanitizeJVMArgs(i, i.JVMArgs, paths, cp)
	args = append(args, loaderWorkarounds(i, jvmArgs)...)

	args = append(args, "-cp", cp, i.MainClass)
	return append(args, SanitizeGameArgs(i, i.GameArgs, paths, l.opts.Session)...)
}

func (l *Launcher) resolveJava(ctx context.Context, i *instances.Instance, major int) (string, error) {
	if java.Valid(i.JavaPath) {
		return i.JavaPath, nil
	}
	if i.JavaPath != "" {
		l.logger.Warn("configured java path is not usable, searching for java", "path", i.JavaPath)
	}
	return l.opts.Java.Find(ctx, major)
}

// nativeLibraryEnv prefixes the platform library search path with the natives directory
func nativeLibraryEnv(env []string, natives string) []string {
	name := "LD_LIBRARY_PATH"
	switch runtime.GOOS {
	case "windows":
		name = "PATH"
	case "darwin":
		name = "DYLD_LIBRARY_PATH"
	}

	value := natives
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		k, existing, ok := strings.Cut(kv, "=")
		if ok && strings.EqualFold(k, name) {
			if strings.TrimSpace(existing) != "" {
				value = natives + string(os.PathListSeparator) + existing
			}
			continue
		}
		out = append(out, kv)
	}
	return append(out, name+"="+value)
}

func shellQuote(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		safe := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			strings.ContainsRune("-_./:\\=", r)
		if !safe {
			return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		}
	}
	return s
}
