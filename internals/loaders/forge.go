package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/minepkg/mclaunch/internals/pack"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

const (
	installProfileName = "install_profile.json"
	versionJSONName    = "version.json"
	// embeddedMaven is the folder installers ship libraries in
	embeddedMaven = "maven/"
	// defaultProcessorMain is used when a processor jar has no Main-Class
	defaultProcessorMain = "net.minecraftforge.installertools.ConsoleTool"
)

// InstallProfile is the `install_profile.json` of a forge or neoforge installer
type InstallProfile struct {
	Spec       int                   `json:"spec"`
	Version    string                `json:"version"`
	Minecraft  string                `json:"minecraft"`
	Data       map[string]SidedValue `json:"data"`
	Processors []Processor           `json:"processors"`
	Libraries  minecraft.Libraries   `json:"libraries"`
}

// SidedValue is a data entry of an install profile
type SidedValue struct {
	Client string `json:"client"`
	Server string `json:"server"`
}

// Processor is a post processing step of an install profile
type Processor struct {
	Sides     []string          `json:"sides,omitempty"`
	Jar       string            `json:"jar"`
	Classpath []string          `json:"classpath"`
	Args      []string          `json:"args"`
	Outputs   map[string]string `json:"outputs,omitempty"`
}

// RunsOnClient reports whether the processor has to run for a client install
func (p *Processor) RunsOnClient() bool {
	return len(p.Sides) == 0 || slices.Contains(p.Sides, "client")
}

// forgeInstaller installs loaders distributed as forge style installer jars
type forgeInstaller struct {
	name Type
	// installerURLs returns the candidate installer urls, tried in order
	installerURLs func(mc, loader string) []string
	repositories  []string
	// runtimeOnly limits the result libraries to the version.json ones.
	// Install profile libraries are then only downloaded for the processors
	runtimeOnly bool
	tools       ToolRunner
	logger      *log.Logger
}

func newForge(opts Options) *forgeInstaller {
	return &forgeInstaller{
		name: Forge,
		installerURLs: func(mc, loader string) []string {
			id := forgeID(mc, loader)
			return []string{fmt.Sprintf("%s/net/minecraftforge/forge/%s/forge-%s-installer.jar", opts.ForgeMaven, id, id)}
		},
		repositories: []string{opts.ForgeMaven, opts.MojangLibraries},
		tools:        opts.Tools,
		logger:       opts.Logger,
	}
}

func newNeoForge(opts Options) *forgeInstaller {
	return &forgeInstaller{
		name: NeoForge,
		installerURLs: func(mc, loader string) []string {
			modern := fmt.Sprintf("%s/net/neoforged/neoforge/%s/neoforge-%s-installer.jar", opts.NeoForgeMaven, loader, loader)
			legacy := fmt.Sprintf("%s/net/neoforged/forge/%s/forge-%s-installer.jar", opts.NeoForgeMaven, loader, loader)
			if isLegacyNeoForge(mc, loader) {
				return []string{legacy, modern}
			}
			return []string{modern, legacy}
		},
		repositories: []string{opts.NeoForgeMaven, opts.MojangLibraries},
		runtimeOnly:  true,
		tools:        opts.Tools,
		logger:       opts.Logger,
	}
}

// forgeID is `<mc>-<loader>` unless the loader version already carries the prefix
func forgeID(mc, loader string) string {
	if strings.HasPrefix(loader, mc+"-") {
		return loader
	}
	return mc + "-" + loader
}

// isLegacyNeoForge reports whether the version was published as net.neoforged:forge (1.20.1 only)
func isLegacyNeoForge(mc, loader string) bool {
	return mc == "1.20.1" || strings.HasPrefix(loader, "1.20.1-") || strings.HasPrefix(loader, "47.")
}

// Install downloads the installer, installs its libraries and runs the client processors.
// The installer jar is removed afterwards in every case.
func (f *forgeInstaller) Install(ctx context.Context, ic Context) (*Result, error) {
	f.logger.Info("installing "+f.name.String(), "minecraft", ic.MinecraftVersion, "loader", ic.LoaderVersion)

	installerPath, err := f.downloadInstaller(ctx, ic)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(installerPath); err != nil && !os.IsNotExist(err) {
			f.logger.Warn("could not remove installer", "path", installerPath, "err", err)
		}
	}()

	archive, err := pack.Open(installerPath)
	if err != nil {
		return nil, err
	}
	profile, version, rawVersion, err := f.readInstaller(archive)
	if err != nil {
		return nil, err
	}

	versionID := fmt.Sprintf("%s-%s-%s", f.name, ic.MinecraftVersion, ic.LoaderVersion)
	if err := minecraft.Save(rawVersion, ic.InstanceDir, versionID); err != nil {
		return nil, err
	}

	libraries := unionLibraries(profile.Libraries, version.Libraries)
	if err := f.installLibraries(ctx, ic, archive, libraries); err != nil {
		return nil, err
	}

	if err := f.runProcessors(ctx, ic, archive, profile); err != nil {
		return nil, err
	}

	f.logger.Info(f.name.String()+" installed", "loader", ic.LoaderVersion, "libraries", len(libraries))
	return &Result{
		MainClass:     version.MainClass,
		ExtraJVMArgs:  version.JVMArgs(),
		ExtraGameArgs: version.GameArgs(),
		Libraries:     f.resultLibraries(libraries, version.Libraries),
		// pre 1.13 version files repeat the complete vanilla argument string
		ReplacesGameArgs: version.Arguments == nil && version.MinecraftArguments != "",
	}, nil
}

// resultLibraries returns the library names that end up on the classpath
func (f *forgeInstaller) resultLibraries(all, runtime minecraft.Libraries) []string {
	if f.runtimeOnly {
		names := make([]string, 0, len(runtime))
		for _, lib := range runtime {
			names = append(names, lib.Name)
		}
		return names
	}
	names := make([]string, 0, len(all))
	for _, lib := range all {
		names = append(names, lib.Name)
	}
	slices.Sort(names)
	return names
}

func (f *forgeInstaller) downloadInstaller(ctx context.Context, ic Context) (string, error) {
	candidates := f.installerURLs(ic.MinecraftVersion, ic.LoaderVersion)
	dest := filepath.Join(ic.InstanceDir, fmt.Sprintf("%s-%s-installer.jar", f.name, ic.LoaderVersion))

	var first error
	for i, url := range candidates {
		err := ic.Downloader.DownloadFile(ctx, url, dest, "")
		if err == nil {
			return dest, nil
		}
		if first == nil {
			first = err
		}
		if i+1 < len(candidates) {
			f.logger.Info("installer not found, trying next location", "url", url, "next", candidates[i+1])
		}
	}
	return "", errors.Wrapf(first, "downloading %s installer %s", f.name, ic.LoaderVersion)
}

func (f *forgeInstaller) readInstaller(archive *pack.Reader) (*InstallProfile, *minecraft.Version, []byte, error) {
	files, err := archive.ReadFiles(installProfileName, versionJSONName)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, name := range []string{installProfileName, versionJSONName} {
		if _, ok := files[name]; !ok {
			return nil, nil, nil, merrors.Loader("%s installer has no %s", f.name, name)
		}
	}

	profile := &InstallProfile{}
	if err := json.Unmarshal(files[installProfileName], profile); err != nil {
		return nil, nil, nil, merrors.Parse(installProfileName, err)
	}
	version, err := minecraft.ParseVersion(files[versionJSONName])
	if err != nil {
		return nil, nil, nil, err
	}
	if version.MainClass == "" {
		return nil, nil, nil, merrors.Loader("%s %s has no main class", f.name, versionJSONName)
	}
	return profile, version, files[versionJSONName], nil
}

// unionLibraries returns all libraries of a and b, deduplicated by name. The first occurrence wins
func unionLibraries(a, b minecraft.Libraries) minecraft.Libraries {
	seen := make(map[string]struct{}, len(a)+len(b))
	union := make(minecraft.Libraries, 0, len(a)+len(b))
	for _, libs := range []minecraft.Libraries{a, b} {
		for _, lib := range libs {
			if _, ok := seen[lib.Name]; ok {
				continue
			}
			seen[lib.Name] = struct{}{}
			union = append(union, lib)
		}
	}
	return union
}

// installLibraries extracts libraries shipped inside the installer and downloads the rest.
// A library that can not be fetched from any repository is only a warning:
// processor outputs are listed as libraries but are created by the processors.
func (f *forgeInstaller) installLibraries(ctx context.Context, ic Context, archive *pack.Reader, libraries minecraft.Libraries) error {
	type pending struct {
		lib      minecraft.Library
		artifact maven.Artifact
		dest     string
	}

	missing := make([]pending, 0, len(libraries))
	for _, lib := range libraries {
		artifact, err := maven.Parse(lib.Name)
		if err != nil {
			return err
		}
		dest := filepath.Join(ic.LibsDir, artifact.LocalPath())
		if downloadmgr.NeedsDownload(dest, lib.Sha1()) {
			missing = append(missing, pending{lib, artifact, dest})
		}
	}
	if len(missing) == 0 {
		return nil
	}

	embedded := make(map[string]string, len(missing))
	for _, p := range missing {
		embedded[embeddedMaven+p.artifact.RepoPath()] = p.dest
	}
	extracted, err := archive.Extract(func(name string) (string, bool) {
		dest, ok := embedded[name]
		return dest, ok
	})
	if err != nil {
		return err
	}
	if extracted != 0 {
		f.logger.Debug("extracted embedded libraries", "count", extracted)
	}

	resolver := maven.NewResolver(ic.Downloader, ic.LibsDir, f.repositories, f.logger)
	var (
		mu     sync.Mutex
		failed []string
	)
	g := errgroup.Group{}
	g.SetLimit(downloadmgr.DefaultParallelism)
	for _, p := range missing {
		p := p
		if !downloadmgr.NeedsDownload(p.dest, p.lib.Sha1()) {
			continue
		}
		g.Go(func() error {
			if err := f.fetchLibrary(ctx, ic, resolver, p.lib, p.artifact, p.dest); err != nil {
				f.logger.Warn("could not download library", "library", p.lib.Name, "err", err)
				mu.Lock()
				failed = append(failed, p.lib.Name)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	if len(failed) != 0 {
		f.logger.Warn("some libraries are missing", "loader", f.name, "count", len(failed))
	}
	return nil
}

// fetchLibrary tries the url declared by the library and then every repository
func (f *forgeInstaller) fetchLibrary(ctx context.Context, ic Context, resolver *maven.Resolver, lib minecraft.Library, artifact maven.Artifact, dest string) error {
	if lib.Downloads.Artifact != nil && lib.Downloads.Artifact.URL != "" {
		err := ic.Downloader.DownloadFile(ctx, lib.Downloads.Artifact.URL, dest, lib.Sha1())
		if err == nil {
			return nil
		}
		f.logger.Debug("declared url failed, trying repositories", "library", lib.Name, "err", err)
	}
	_, err := resolver.Fetch(ctx, artifact)
	return err
}
