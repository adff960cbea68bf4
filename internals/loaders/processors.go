package loaders

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/minepkg/mclaunch/internals/pack"
)

// runProcessors runs every client side processor of the profile in order.
// A non zero exit code is logged but does not fail the installation.
func (f *forgeInstaller) runProcessors(ctx context.Context, ic Context, archive *pack.Reader, profile *InstallProfile) error {
	if len(profile.Processors) == 0 {
		return nil
	}

	dataDir, err := os.MkdirTemp("", "mclaunch-installer-*")
	if err != nil {
		return merrors.IO(os.TempDir(), err)
	}
	defer os.RemoveAll(dataDir)

	data, err := resolveData(archive, profile.Data, ic.LibsDir, dataDir)
	if err != nil {
		return err
	}

	vars := map[string]string{
		"SIDE":              "client",
		"MINECRAFT_JAR":     filepath.Join(ic.InstanceDir, ClientJar),
		"MINECRAFT_VERSION": ic.MinecraftVersion,
		"ROOT":              ic.InstanceDir,
		"INSTALLER":         archive.Path(),
		"LIBRARY_DIR":       ic.LibsDir,
	}
	for k, v := range data {
		vars[k] = v
	}
	replacerArgs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		replacerArgs = append(replacerArgs, "{"+k+"}", v)
	}
	replacer := strings.NewReplacer(replacerArgs...)

	for i := range profile.Processors {
		proc := &profile.Processors[i]
		if !proc.RunsOnClient() {
			f.logger.Debug("skipping server processor", "jar", proc.Jar)
			continue
		}

		tool, err := f.processorTool(proc, ic, replacer)
		if err != nil {
			return err
		}

		f.logger.Info("running processor", "jar", proc.Jar, "step", i+1, "of", len(profile.Processors))
		code, err := f.tools.Run(ctx, *tool)
		if err != nil {
			return err
		}
		if code != 0 {
			f.logger.Warn("processor exited with non zero code", "jar", proc.Jar, "code", code)
		}
	}
	return nil
}

// processorTool builds the invocation of one processor
func (f *forgeInstaller) processorTool(proc *Processor, ic Context, replacer *strings.Replacer) (*Tool, error) {
	jar, err := maven.Parse(proc.Jar)
	if err != nil {
		return nil, err
	}
	jarPath := filepath.Join(ic.LibsDir, jar.LocalPath())

	classpath := make([]string, 0, len(proc.Classpath)+1)
	for _, coordinate := range append([]string{proc.Jar}, proc.Classpath...) {
		artifact, err := maven.Parse(coordinate)
		if err != nil {
			return nil, err
		}
		p := filepath.Join(ic.LibsDir, artifact.LocalPath())
		if _, err := os.Stat(p); err == nil {
			classpath = append(classpath, p)
		}
	}
	if len(classpath) == 0 {
		return nil, merrors.New(merrors.KindEmptyClasspath, "processor %s has no classpath entries", proc.Jar)
	}

	args := make([]string, 0, len(proc.Args))
	for _, arg := range proc.Args {
		if path, ok := coordinatePath(arg, ic.LibsDir); ok {
			args = append(args, path)
			continue
		}
		args = append(args, replacer.Replace(arg))
	}

	return &Tool{
		Classpath: classpath,
		MainClass: f.processorMainClass(jarPath),
		Args:      args,
		Dir:       ic.InstanceDir,
	}, nil
}

func (f *forgeInstaller) processorMainClass(jarPath string) string {
	jar, err := pack.Open(jarPath)
	if err == nil {
		main, err := jar.MainClass()
		if err == nil {
			return main
		}
		f.logger.Debug("processor jar has no main class", "jar", jarPath, "err", err)
	}
	return defaultProcessorMain
}

// coordinatePath turns `[group:artifact:version]` into the path inside libsDir
func coordinatePath(value string, libsDir string) (string, bool) {
	if len(value) < 2 || value[0] != '[' || value[len(value)-1] != ']' {
		return "", false
	}
	artifact, err := maven.Parse(value[1 : len(value)-1])
	if err != nil {
		return "", false
	}
	return filepath.Join(libsDir, artifact.LocalPath()), true
}

// resolveData resolves the client values of the profile data entries:
// coordinates become library paths, quoted values are literals and
// absolute values are files inside the installer that get extracted to dataDir
func resolveData(archive *pack.Reader, data map[string]SidedValue, libsDir string, dataDir string) (map[string]string, error) {
	resolved := make(map[string]string, len(data))
	extract := make(map[string]string)

	for key, value := range data {
		v := value.Client
		switch {
		case v == "":
			continue
		case v[0] == '[':
			if path, ok := coordinatePath(v, libsDir); ok {
				resolved[key] = path
				continue
			}
			resolved[key] = v
		case len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'':
			resolved[key] = v[1 : len(v)-1]
		case v[0] == '/':
			name := strings.TrimPrefix(v, "/")
			dest := filepath.Join(dataDir, filepath.FromSlash(name))
			extract[name] = dest
			resolved[key] = dest
		default:
			resolved[key] = v
		}
	}

	if len(extract) != 0 {
		if _, err := archive.Extract(func(name string) (string, bool) {
			dest, ok := extract[name]
			return dest, ok
		}); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}
