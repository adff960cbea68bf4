package launch

import (
	"strconv"
	"strings"

	"github.com/minepkg/mclaunch/internals/classpath"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/java"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/minecraft"
)

// DefaultClientID is sent as ${clientid} when the session does not provide one
const DefaultClientID = "00000000402B5328"

// Paths are the directories substituted into launch arguments
type Paths struct {
	Natives   string
	Libraries string
	GameDir   string
	Assets    string
}

// v for variable
func v(s string) string {
	return "${" + s + "}"
}

func replacer(vars map[string]string) *strings.Replacer {
	pairs := make([]string, 0, len(vars)*2)
	for k, val := range vars {
		pairs = append(pairs, v(k), val)
	}
	return strings.NewReplacer(pairs...)
}

// substitute replaces all known variables. Arguments that still contain a
// variable afterwards are dropped. A dropped value also drops the option before it
func substitute(args []string, r *strings.Replacer) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		resolved := r.Replace(arg)
		if strings.Contains(resolved, "${") {
			if !strings.HasPrefix(arg, "-") {
				out = dropDanglingOption(out)
			}
			continue
		}
		out = append(out, resolved)
	}
	return out
}

// dropDanglingOption removes a trailing option that expects a separate value
func dropDanglingOption(args []string) []string {
	if len(args) == 0 {
		return args
	}
	last := args[len(args)-1]
	if strings.HasPrefix(last, "-") && !strings.Contains(last, "=") {
		return args[:len(args)-1]
	}
	return args
}

// SanitizeJVMArgs substitutes the instance JVM arguments. Classpath options and their
// value are removed because the classpath is always added by Launch
func SanitizeJVMArgs(i *instances.Instance, raw []string, paths Paths, cp string) []string {
	r := replacer(map[string]string{
		"natives_directory":   paths.Natives,
		"library_directory":   paths.Libraries,
		"classpath":           cp,
		"classpath_separator": classpath.Separator(),
		"game_directory":      paths.GameDir,
		"version_name":        i.VersionName(),
		"version":             i.LoaderVersion,
		"mc_version":          i.MinecraftVersion,
		"launcher_name":       LauncherName,
		"launcher_version":    LauncherVersion,
	})

	filtered := make([]string, 0, len(raw))
	for n := 0; n < len(raw); n++ {
		switch raw[n] {
		case "-cp", "-classpath", "--class-path":
			n++
			continue
		}
		filtered = append(filtered, raw[n])
	}
	return substitute(filtered, r)
}

// SanitizeGameArgs substitutes the instance game arguments with session and path values
func SanitizeGameArgs(i *instances.Instance, raw []string, paths Paths, session minecraft.LaunchAuthData) []string {
	assetIndex := i.AssetIndex
	if assetIndex == "" {
		assetIndex = "legacy"
	}
	xuid := session.GetXUID()
	if xuid == "" {
		xuid = "0"
	}
	clientID := DefaultClientID
	if withID, ok := session.(interface{ GetClientID() string }); ok && withID.GetClientID() != "" {
		clientID = withID.GetClientID()
	}

	r := replacer(map[string]string{
		"auth_player_name":  session.GetPlayerName(),
		"auth_uuid":         session.GetUUID(),
		"auth_access_token": session.GetAccessToken(),
		"auth_session":      session.GetAccessToken(),
		"auth_xuid":         xuid,
		"clientid":          clientID,
		"user_type":         session.GetUserType(),
		"user_properties":   "{}",
		"version_name":      i.VersionName(),
		"version":           i.LoaderVersion,
		"mc_version":        i.MinecraftVersion,
		"version_type":      "release",
		"game_directory":    paths.GameDir,
		"assets_root":       paths.Assets,
		"game_assets":       paths.Assets,
		"assets_index_name": assetIndex,
	})

	args := sanitizeWindowSize(substitute(raw, r))
	return ensureFMLArgs(i, args)
}

// sanitizeWindowSize drops --width and --height options without a valid number
func sanitizeWindowSize(args []string) []string {
	out := make([]string, 0, len(args))
	for n := 0; n < len(args); n++ {
		arg := args[n]
		if arg != "--width" && arg != "--height" {
			out = append(out, arg)
			continue
		}
		if n+1 >= len(args) {
			continue
		}
		value := args[n+1]
		if _, err := strconv.ParseUint(value, 10, 32); err != nil {
			if !strings.HasPrefix(value, "-") {
				n++
			}
			continue
		}
		out = append(out, arg, value)
		n++
	}
	return out
}

func containsFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func ensureFMLArgs(i *instances.Instance, args []string) []string {
	if !i.Loader.IsForgeLike() {
		return args
	}
	if !containsFlag(args, "--fml.mcVersion") {
		args = append(args, "--fml.mcVersion", i.MinecraftVersion)
	}

	lv := strings.TrimSpace(i.LoaderVersion)
	if lv == "" {
		return args
	}
	flag := "--fml.forgeVersion"
	if i.Loader == loaders.NeoForge {
		flag = "--fml.neoForgeVersion"
	}
	if !containsFlag(args, flag) {
		args = append(args, flag, lv)
	}
	return args
}

var modernForgeArgs = [][2]string{
	{"--add-modules", "ALL-SYSTEM"},
	{"--add-opens", "java.base/java.util.jar=ALL-UNNAMED"},
	{"--add-opens", "java.base/java.lang=ALL-UNNAMED"},
	{"--add-opens", "java.base/java.util=ALL-UNNAMED"},
	{"--add-opens", "java.base/java.lang.invoke=ALL-UNNAMED"},
	{"--add-opens", "java.base/java.lang.reflect=ALL-UNNAMED"},
	{"--add-opens", "java.base/java.nio.file=ALL-UNNAMED"},
	{"--add-opens", "java.base/sun.security.util=ALL-UNNAMED"},
	{"--add-exports", "java.base/sun.security.action=ALL-UNNAMED"},
	{"--add-opens", "java.base/java.io=ALL-UNNAMED"},
	{"--add-opens", "java.base/java.net=ALL-UNNAMED"},
	{"--add-opens", "java.base/sun.nio.ch=ALL-UNNAMED"},
}

// loaderWorkarounds adds the module flags and system properties forge and neoforge
// need but do not always declare
func loaderWorkarounds(i *instances.Instance, args []string) []string {
	if !i.Loader.IsForgeLike() {
		return args
	}

	if java.RequiredMajorFor(i.MinecraftVersion) >= 17 {
		for _, pair := range modernForgeArgs {
			args = ensurePair(args, pair[0], pair[1])
		}
	}

	if i.Loader != loaders.NeoForge {
		return args
	}
	args = ensureArg(args, "--add-modules=jdk.naming.dns")
	args = ensureArg(args, "--add-opens=java.base/java.util.jar=ALL-UNNAMED")
	args = setProperty(args, "ignoreList", "bootstraplauncher,neon-fml")
	// the early display window crashes on some drivers
	args = setProperty(args, "fml.earlyprogresswindow", "false")
	args = setProperty(args, "forge.earlywindow", "false")
	args = setProperty(args, "neoforge.earlydisplay", "false")
	return args
}

func ensurePair(args []string, flag, value string) []string {
	if containsFlag(args, flag+"="+value) {
		return args
	}
	for n := 0; n+1 < len(args); n++ {
		if args[n] == flag && args[n+1] == value {
			return args
		}
	}
	return append(args, flag, value)
}

func ensureArg(args []string, arg string) []string {
	if containsFlag(args, arg) {
		return args
	}
	return append(args, arg)
}

func setProperty(args []string, property, value string) []string {
	prefix := "-D" + property + "="
	out := args[:0]
	for _, a := range args {
		if !strings.HasPrefix(a, prefix) {
			out = append(out, a)
		}
	}
	return append(out, prefix+value)
}
