// Package loaders installs minecraft and its mod loaders.
//
// Every loader implements Installer and returns a Result. Vanilla always runs first
// because every loader builds on top of the vanilla client.
package loaders

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/minepkg/mclaunch/internals/minecraft"
)

// Type is a mod loader
type Type string

const (
	// Vanilla is plain minecraft without a mod loader
	Vanilla Type = "vanilla"
	// Fabric is https://fabricmc.net
	Fabric Type = "fabric"
	// Quilt is https://quiltmc.org
	Quilt Type = "quilt"
	// Forge is https://minecraftforge.net
	Forge Type = "forge"
	// NeoForge is https://neoforged.net
	NeoForge Type = "neoforge"
)

// Types lists all supported loaders
var Types = []Type{Vanilla, Fabric, Quilt, Forge, NeoForge}

// ParseType parses a loader name (case insensitive)
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Vanilla, Fabric, Quilt, Forge, NeoForge:
		return t, nil
	case "":
		return Vanilla, nil
	}
	return "", merrors.Loader("unknown loader %q", s)
}

func (t Type) String() string { return string(t) }

// IsForgeLike reports whether the loader uses the forge installer format
func (t Type) IsForgeLike() bool {
	return t == Forge || t == NeoForge
}

// Result is the outcome of one install pass.
// Empty optional fields mean "unknown" and inherit the previous value when merged.
type Result struct {
	MainClass     string   `json:"main_class"`
	ExtraJVMArgs  []string `json:"extra_jvm_args"`
	ExtraGameArgs []string `json:"extra_game_args"`
	// Libraries are coordinates or paths relative to the libraries directory
	Libraries     []string `json:"libraries"`
	AssetIndexID  string   `json:"asset_index_id,omitempty"`
	AssetIndexURL string   `json:"asset_index_url,omitempty"`
	JavaMajor     int      `json:"java_major,omitempty"`

	// ReplacesGameArgs is set if ExtraGameArgs are a complete replacement
	// of the base game arguments instead of an addition
	ReplacesGameArgs bool `json:"replaces_game_args,omitempty"`
}

// Downloader is the download manager as used by the installers
type Downloader = minecraft.Downloader

// Context is everything an installer needs to know
type Context struct {
	MinecraftVersion string
	LoaderVersion    string
	// InstanceDir receives the client jar and the installer documents
	InstanceDir string
	// LibsDir is the shared maven style library directory
	LibsDir    string
	Downloader Downloader
}

// Installer is implemented by every loader
type Installer interface {
	Install(ctx context.Context, ic Context) (*Result, error)
}

// Options configure a Loaders factory. Zero values use the public endpoints.
type Options struct {
	HTTP   *http.Client
	Logger *log.Logger
	// Minecraft is used to look up vanilla versions
	Minecraft *minecraft.Client

	FabricMetaURL string
	QuiltMetaURL  string
	// Repositories used by the forge style installers and the version listing
	ForgeMaven      string
	NeoForgeMaven   string
	MojangLibraries string

	// Tools runs forge processors. Defaults to a JavaToolRunner using `java` from PATH
	Tools ToolRunner
}

// Loaders creates installers that share one http client, logger and tool runner
type Loaders struct {
	opts   Options
	logger *log.Logger
}

// New returns a new Loaders factory
func New(opts Options) *Loaders {
	if opts.HTTP == nil {
		opts.HTTP = http.DefaultClient
	}
	opts.Logger = cmdlog.OrDefault(opts.Logger)
	if opts.Minecraft == nil {
		opts.Minecraft = minecraft.New(opts.HTTP, opts.Logger)
	}
	if opts.FabricMetaURL == "" {
		opts.FabricMetaURL = FabricMetaURL
	}
	if opts.QuiltMetaURL == "" {
		opts.QuiltMetaURL = QuiltMetaURL
	}
	if opts.ForgeMaven == "" {
		opts.ForgeMaven = maven.ForgeMaven
	}
	if opts.NeoForgeMaven == "" {
		opts.NeoForgeMaven = maven.NeoForgeMaven
	}
	if opts.MojangLibraries == "" {
		opts.MojangLibraries = maven.MojangLibraries
	}
	if opts.Tools == nil {
		opts.Tools = &JavaToolRunner{Java: "java", Logger: opts.Logger}
	}
	return &Loaders{opts: opts, logger: opts.Logger}
}

// Installer returns the installer for t
func (l *Loaders) Installer(t Type) (Installer, error) {
	switch t {
	case Vanilla:
		return &VanillaInstaller{client: l.opts.Minecraft, logger: l.logger}, nil
	case Fabric:
		return newFabric(l.opts), nil
	case Quilt:
		return newQuilt(l.opts), nil
	case Forge:
		return newForge(l.opts), nil
	case NeoForge:
		return newNeoForge(l.opts), nil
	}
	return nil, merrors.Loader("unknown loader %q", t)
}

// Install runs the vanilla pass and then (for loader != vanilla with a loader version)
// the loader pass. The loader result is merged on top of the vanilla result.
func (l *Loaders) Install(ctx context.Context, t Type, ic Context) (*Result, error) {
	vanilla, err := l.Installer(Vanilla)
	if err != nil {
		return nil, err
	}
	base, err := vanilla.Install(ctx, ic)
	if err != nil {
		return nil, err
	}

	if t == Vanilla || ic.LoaderVersion == "" {
		if t != Vanilla {
			l.logger.Warn("no loader version given, installing vanilla only", "loader", t)
		}
		return base, nil
	}

	installer, err := l.Installer(t)
	if err != nil {
		return nil, err
	}
	loader, err := installer.Install(ctx, ic)
	if err != nil {
		return nil, err
	}
	return Merge(base, loader), nil
}

// Merge returns base overlaid with loader: the loader main class wins, lists are appended
// and unset optional fields inherit the base value
func Merge(base, loader *Result) *Result {
	merged := &Result{
		MainClass:     base.MainClass,
		ExtraJVMArgs:  append(append([]string{}, base.ExtraJVMArgs...), loader.ExtraJVMArgs...),
		ExtraGameArgs: append(append([]string{}, base.ExtraGameArgs...), loader.ExtraGameArgs...),
		Libraries:     append(append([]string{}, base.Libraries...), loader.Libraries...),
		AssetIndexID:  base.AssetIndexID,
		AssetIndexURL: base.AssetIndexURL,
		JavaMajor:     base.JavaMajor,
	}
	if loader.MainClass != "" {
		merged.MainClass = loader.MainClass
	}
	if loader.ReplacesGameArgs {
		merged.ExtraGameArgs = append([]string{}, loader.ExtraGameArgs...)
	}
	if loader.AssetIndexID != "" {
		merged.AssetIndexID = loader.AssetIndexID
		merged.AssetIndexURL = loader.AssetIndexURL
	}
	if loader.JavaMajor != 0 {
		merged.JavaMajor = loader.JavaMajor
	}
	return merged
}
