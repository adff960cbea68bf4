package instances

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/merrors"
)

// ConfigFile is the name of the persisted instance record
const ConfigFile = "instance.json"

var (
	// ErrNoInstance is returned if a directory contains no instance.json
	ErrNoInstance = &commands.CliError{
		Text: "No instance.json file was found in the instance directory",
		Help: "Create a new instance with \"mclaunch install <name> --mc <version>\"",
	}

	validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
	idChars   = []byte("abcdefghijklmnopqrstuvwxyz0123456789")
)

// State is the install state of an instance
type State string

const (
	// StateCreated means only the record exists
	StateCreated State = "created"
	// StateInstalling is set while files are being downloaded
	StateInstalling State = "installing"
	// StateReady means the instance can be launched
	StateReady State = "ready"
	// StateError is set when the last install failed
	StateError State = "error"
)

// Instance describes a locally installed minecraft instance
type Instance struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	MinecraftVersion string       `json:"minecraft_version"`
	Loader           loaders.Type `json:"loader"`
	LoaderVersion    string       `json:"loader_version,omitempty"`
	// JavaPath overrides java discovery when it points to a valid binary
	JavaPath    string     `json:"java_path,omitempty"`
	MaxMemoryMB int        `json:"max_memory_mb"`
	State       State      `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	LastPlayed  *time.Time `json:"last_played,omitempty"`

	MainClass         string   `json:"main_class,omitempty"`
	AssetIndex        string   `json:"asset_index,omitempty"`
	RequiredJavaMajor int      `json:"required_java_major,omitempty"`
	Libraries         []string `json:"libraries"`
	JVMArgs           []string `json:"jvm_args"`
	GameArgs          []string `json:"game_args"`

	// Dir is the directory of this instance
	Dir string `json:"-"`
	// GlobalDir is the directory containing the shared libraries.
	// it defaults to $HOME/.mclaunch
	GlobalDir string `json:"-"`
}

// New returns a new instance record. Nothing is written to disk
func New(name, mcVersion string, loader loaders.Type, loaderVersion string, maxMemoryMB int, globalDir string) (*Instance, error) {
	if !validName.MatchString(name) {
		return nil, &commands.CliError{
			Text: "invalid instance name " + strings.TrimSpace(name),
			Help: "Names may contain letters, digits, dots, dashes and underscores",
		}
	}
	if mcVersion == "" {
		return nil, merrors.New(merrors.KindOther, "minecraft version is required")
	}

	return &Instance{
		ID:               uniuri.NewLenChars(12, idChars),
		Name:             name,
		MinecraftVersion: mcVersion,
		Loader:           loader,
		LoaderVersion:    loaderVersion,
		MaxMemoryMB:      maxMemoryMB,
		State:            StateCreated,
		CreatedAt:        time.Now().UTC(),
		Libraries:        []string{},
		JVMArgs:          []string{},
		GameArgs:         []string{},
		Dir:              filepath.Join(InstancesDir(globalDir), name),
		GlobalDir:        globalDir,
	}, nil
}

// InstancesDir returns the directory holding all instances
func InstancesDir(globalDir string) string {
	return filepath.Join(globalDir, "instances")
}

// GameDir is the working directory of the game (the .minecraft equivalent)
func (i *Instance) GameDir() string {
	return filepath.Join(i.Dir, "minecraft")
}

// ModsDir returns the path to the mods directory
func (i *Instance) ModsDir() string {
	return filepath.Join(i.GameDir(), "mods")
}

// AssetsDir returns the path to the assets directory
func (i *Instance) AssetsDir() string {
	return filepath.Join(i.GameDir(), "assets")
}

// VersionsDir contains version jars created by loader installers
func (i *Instance) VersionsDir() string {
	return filepath.Join(i.GameDir(), "versions")
}

// NativesDir is recreated on every launch
func (i *Instance) NativesDir() string {
	return filepath.Join(i.Dir, "natives")
}

// ClientJar is the client jar downloaded by the vanilla install
func (i *Instance) ClientJar() string {
	return filepath.Join(i.Dir, loaders.ClientJar)
}

// LibrariesDir returns the path to the shared libraries directory
func (i *Instance) LibrariesDir() string {
	return filepath.Join(i.GlobalDir, "libraries")
}

// LocalLibrariesDirs are the instance scoped library roots some installers write to
func (i *Instance) LocalLibrariesDirs() []string {
	return []string{
		filepath.Join(i.Dir, "libraries"),
		filepath.Join(i.GameDir(), "libraries"),
	}
}

// ConfigPath returns the path of the persisted record
func (i *Instance) ConfigPath() string {
	return filepath.Join(i.Dir, ConfigFile)
}

// VersionName is the version id shown in game, "<mc>-<loader version>" for modded instances
func (i *Instance) VersionName() string {
	if strings.TrimSpace(i.LoaderVersion) == "" {
		return i.MinecraftVersion
	}
	return i.MinecraftVersion + "-" + i.LoaderVersion
}

// InstallContext returns the loader context for installing into this instance
func (i *Instance) InstallContext(d loaders.Downloader) loaders.Context {
	return loaders.Context{
		MinecraftVersion: i.MinecraftVersion,
		LoaderVersion:    i.LoaderVersion,
		InstanceDir:      i.Dir,
		LibsDir:          i.LibrariesDir(),
		Downloader:       d,
	}
}

// Apply writes a merged install result back into the instance.
// Libraries keep their declared order, later duplicates are dropped.
func (i *Instance) Apply(res *loaders.Result) {
	i.MainClass = res.MainClass
	i.JVMArgs = append([]string{}, res.ExtraJVMArgs...)
	i.GameArgs = append([]string{}, res.ExtraGameArgs...)
	if res.AssetIndexID != "" {
		i.AssetIndex = res.AssetIndexID
	}
	if res.JavaMajor != 0 {
		i.RequiredJavaMajor = res.JavaMajor
	}

	seen := make(map[string]bool, len(res.Libraries))
	libs := make([]string, 0, len(res.Libraries))
	for _, lib := range res.Libraries {
		if seen[lib] {
			continue
		}
		seen[lib] = true
		libs = append(libs, lib)
	}
	i.Libraries = libs
}

// MarkPlayed sets LastPlayed
func (i *Instance) MarkPlayed(t time.Time) {
	t = t.UTC()
	i.LastPlayed = &t
}
