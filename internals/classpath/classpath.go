// Package classpath builds the -cp argument for launching an instance.
//
// The order of entries matters. Forge style loaders boot through
// bootstraplauncher, modlauncher and securejarhandler and will crash if other
// copies of them, or an older asm, are found first.
package classpath

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/minepkg/mclaunch/internals/merrors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// BootstrapLauncherMain is the main class of modern forge and neoforge
	BootstrapLauncherMain = "cpw.mods.bootstraplauncher.BootstrapLauncher"

	asmGroup       = "org.ow2.asm"
	bootstrapGroup = "cpw.mods"
)

var (
	// bootstrapArtifacts are loaded by BootstrapLauncher in its own module layer
	bootstrapArtifacts = []string{"securejarhandler", "modlauncher", "jarhandling"}

	// sensitivePrefixes only keep their newest version when found by local discovery
	sensitivePrefixes = []string{
		"securejarhandler-",
		"modlauncher-",
		"jarhandling-",
		"bootstraplauncher-",
		"fmlloader-",
		"fmlcore-",
	}

	// hoisted fragments are moved to the front, in this order
	hoisted = []string{"bootstraplauncher", "modlauncher", "securejarhandler"}
)

// Policy holds the loader specific heuristics of the builder
type Policy struct {
	// SkipLocalDiscovery disables scanning the instance library roots for these loaders.
	// Installer tools left in those roots break the forge bootstrap
	SkipLocalDiscovery map[loaders.Type]bool
	// DropBootstrapJars keeps the cpw.mods bootstrap jars off the classpath when a
	// forge style instance starts through BootstrapLauncher
	DropBootstrapJars bool
	// KeepCPWWithModulePath keeps the cpw.mods bootstrap jars when the JVM args
	// declare a module path. If false they are always dropped in that case
	KeepCPWWithModulePath bool
}

// DefaultPolicy returns the policy that works for current forge and neoforge releases
func DefaultPolicy() Policy {
	return Policy{
		SkipLocalDiscovery: map[loaders.Type]bool{
			loaders.Forge:    true,
			loaders.NeoForge: true,
		},
		DropBootstrapJars:     true,
		KeepCPWWithModulePath: true,
	}
}

func (p Policy) dropBootstrap(i *instances.Instance) bool {
	if usesModulePath(i.JVMArgs) {
		return !p.KeepCPWWithModulePath
	}
	return p.DropBootstrapJars && i.Loader.IsForgeLike() && i.MainClass == BootstrapLauncherMain
}

// Separator returns the platform classpath separator
func Separator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// Builder builds classpaths
type Builder struct {
	Policy Policy
	logger *log.Logger
}

// New returns a Builder
func New(policy Policy, logger *log.Logger) *Builder {
	return &Builder{Policy: policy, logger: cmdlog.OrDefault(logger)}
}

// Build builds the classpath with the default policy
func Build(i *instances.Instance, libsDir string, declared []string) (string, error) {
	return New(DefaultPolicy(), nil).Build(i, libsDir, declared)
}

type versioned struct {
	raw     string
	version string
}

// Build returns the joined classpath for the instance.
// declared contains library coordinates or paths relative to libsDir.
func (b *Builder) Build(i *instances.Instance, libsDir string, declared []string) (string, error) {
	entries, err := b.Entries(i, libsDir, declared)
	if err != nil {
		return "", err
	}
	return strings.Join(entries, Separator()), nil
}

// Entries returns the ordered classpath entries
func (b *Builder) Entries(i *instances.Instance, libsDir string, declared []string) ([]string, error) {
	dropBootstrap := b.Policy.dropBootstrap(i)

	// 1. declared libraries. only the newest asm per artifact survives and goes first
	bestASM := map[string]versioned{}
	var rest []string
	for _, raw := range declared {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if a, err := maven.Parse(raw); err == nil {
			if dropBootstrap && a.Group == bootstrapGroup && slices.Contains(bootstrapArtifacts, a.ID) {
				b.logger.Debug("keeping bootstrap jar off the classpath", "lib", raw)
				continue
			}
			if a.Group == asmGroup {
				key := a.ID + ":" + a.Classifier
				if best, ok := bestASM[key]; !ok || CompareVersions(a.Version, best.version) > 0 {
					bestASM[key] = versioned{raw: raw, version: a.Version}
				}
				continue
			}
		}

		if entry, ok := resolveEntry(i, libsDir, raw); ok {
			rest = append(rest, entry)
		} else {
			b.logger.Debug("library not found on disk", "lib", raw)
		}
	}

	asm := maps.Values(bestASM)
	slices.SortFunc(asm, func(x, y versioned) int {
		if c := CompareVersions(x.version, y.version); c != 0 {
			return -c
		}
		return strings.Compare(y.raw, x.raw)
	})

	var entries []string
	for _, c := range asm {
		if entry, ok := resolveEntry(i, libsDir, c.raw); ok {
			entries = append(entries, entry)
		}
	}
	entries = append(entries, rest...)

	// 2. jars installers left in the instance library roots
	if b.Policy.SkipLocalDiscovery[i.Loader] {
		b.logger.Debug("skipping local library discovery", "loader", i.Loader)
	} else {
		entries = append(entries, b.discoverLocal(i, entries, dropBootstrap)...)
	}

	// 3. version jars
	versionJars := requiredVersionJars(i)
	if len(versionJars) == 0 && i.Loader != loaders.Vanilla {
		b.logger.Warn("no version jars found, the game might not start", "loader", i.Loader)
	}
	entries = append(entries, versionJars...)

	// 4. the client jar
	if fileExists(i.ClientJar()) {
		entries = append(entries, absPath(i.ClientJar()))
	} else {
		global := filepath.Join(i.VersionsDir(), i.MinecraftVersion, i.MinecraftVersion+".jar")
		if fileExists(global) {
			entries = append(entries, absPath(global))
		}
	}

	entries = Dedupe(entries)
	if len(entries) == 0 {
		return nil, merrors.New(merrors.KindEmptyClasspath, "no libraries or client jar found for %s", i.Name)
	}
	Hoist(entries)
	return entries, nil
}

func (b *Builder) discoverLocal(i *instances.Instance, included []string, dropBootstrap bool) []string {
	seen := map[string]bool{}
	for _, entry := range included {
		seen[fileKey(filepath.Base(entry))] = true
	}

	newest := map[string]versioned{}
	var other []string
	for _, root := range i.LocalLibrariesDirs() {
		for _, jar := range findJars(root) {
			name := fileKey(filepath.Base(jar))
			if seen[name] {
				continue
			}
			if dropBootstrap && hasAnyPrefix(name, sensitivePrefixes[:3]) {
				continue
			}

			if prefix, ok := matchPrefix(name, sensitivePrefixes); ok {
				version := strings.TrimSuffix(strings.TrimPrefix(name, prefix), filepath.Ext(name))
				artifact := strings.TrimSuffix(prefix, "-")
				if cur, ok := newest[artifact]; !ok || CompareVersions(version, cur.version) > 0 {
					newest[artifact] = versioned{raw: jar, version: version}
				}
				continue
			}
			seen[name] = true
			other = append(other, jar)
		}
	}

	sensitive := maps.Values(newest)
	slices.SortFunc(sensitive, func(x, y versioned) int {
		if c := CompareVersions(x.version, y.version); c != 0 {
			return -c
		}
		return strings.Compare(x.raw, y.raw)
	})

	found := make([]string, 0, len(sensitive)+len(other))
	for _, c := range sensitive {
		found = append(found, absPath(c.raw))
	}
	for _, jar := range other {
		found = append(found, absPath(jar))
	}
	if len(found) != 0 {
		b.logger.Debug("found local library jars", "count", len(found))
	}
	return found
}

// Dedupe removes repeated entries and keeps the first occurrence.
// Entries are compared case insensitive on windows
func Dedupe(entries []string) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		key := fileKey(entry)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, entry)
	}
	return out
}

// Hoist moves bootstraplauncher, modlauncher and securejarhandler jars to the
// front in that order. Everything else keeps its relative order
func Hoist(entries []string) {
	score := func(entry string) int {
		lower := strings.ToLower(filepath.Base(entry))
		for i, fragment := range hoisted {
			if strings.Contains(lower, fragment) {
				return i
			}
		}
		return len(hoisted)
	}
	slices.SortStableFunc(entries, func(a, b string) int { return score(a) - score(b) })
}

func usesModulePath(jvmArgs []string) bool {
	for _, arg := range jvmArgs {
		arg = strings.TrimSpace(arg)
		switch {
		case arg == "--module-path", arg == "-p", arg == "--add-modules":
			return true
		case strings.HasPrefix(arg, "--module-path="), strings.HasPrefix(arg, "--add-modules="):
			return true
		}
	}
	return false
}

// resolveEntry finds a declared library on disk. raw may be an absolute path, a path
// relative to one of the library roots or a maven coordinate
func resolveEntry(i *instances.Instance, libsDir, raw string) (string, bool) {
	if filepath.IsAbs(raw) {
		if isJar(raw) && fileExists(raw) {
			return absPath(raw), true
		}
		return "", false
	}

	roots := append([]string{libsDir}, i.LocalLibrariesDirs()...)
	candidates := make([]string, 0, 2*len(roots)+1)
	for _, root := range roots {
		candidates = append(candidates, filepath.Join(root, filepath.FromSlash(raw)))
	}
	candidates = append(candidates, filepath.Join(i.Dir, filepath.FromSlash(raw)))
	if a, err := maven.Parse(raw); err == nil {
		for _, root := range roots {
			candidates = append(candidates, filepath.Join(root, a.LocalPath()))
		}
	}

	for _, candidate := range candidates {
		if isJar(candidate) && fileExists(candidate) {
			return absPath(candidate), true
		}
	}
	return "", false
}

// requiredVersionJars returns the existing `versions/<id>/<id>.jar` files for the
// ids the loader is known to produce
func requiredVersionJars(i *instances.Instance) []string {
	mc := i.MinecraftVersion
	ids := []string{mc}
	if lv := strings.TrimSpace(i.LoaderVersion); lv != "" {
		switch i.Loader {
		case loaders.Forge:
			ids = append(ids, mc+"-"+lv, "forge-"+mc+"-"+lv)
		case loaders.NeoForge:
			ids = append(ids, mc+"-"+lv, "neoforge-"+lv, mc+"-neoforge-"+lv, lv)
		}
	}

	var jars []string
	for _, id := range ids {
		jar := filepath.Join(i.VersionsDir(), id, id+".jar")
		if fileExists(jar) {
			jars = append(jars, absPath(jar))
		}
	}
	return jars
}

func findJars(root string) []string {
	var jars []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// missing roots and unreadable directories are skipped
			return nil
		}
		if !d.IsDir() && isJar(path) {
			jars = append(jars, path)
		}
		return nil
	})
	return jars
}

func isJar(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jar" || ext == ".zip"
}

func fileExists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func fileKey(name string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(name)
	}
	return name
}

func hasAnyPrefix(s string, prefixes []string) bool {
	_, ok := matchPrefix(s, prefixes)
	return ok
}

func matchPrefix(s string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return p, true
		}
	}
	return "", false
}
