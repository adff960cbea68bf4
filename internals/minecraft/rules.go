package minecraft

import "runtime"

// Rule is a rule that can be applied to an argument or library.
// It can be used to determine if the argument or library should be applied to a specific OS.
type Rule struct {
	Action   string          `json:"action"`
	OS       OS              `json:"os"`
	Features map[string]bool `json:"features,omitempty"`
}

// OS defines the feature of an OS that can be used in a [Rule] to determine if it should be applied.
type OS struct {
	Name string `json:"name,omitempty"`
	// Version of the os (can be a regex string). It is not evaluated
	Version string `json:"version,omitempty"`
	// Arch of the system
	Arch string `json:"arch,omitempty"`
}

// CurrentOS returns the mojang name of the running os: windows, osx or linux
func CurrentOS() string {
	return osName(runtime.GOOS)
}

func osName(goos string) string {
	switch goos {
	case "windows":
		return "windows"
	case "darwin":
		return "osx"
	default:
		return "linux"
	}
}

func archName(goarch string) string {
	switch goarch {
	case "amd64", "x86_64":
		return "x64"
	case "386", "i386":
		return "x86"
	case "arm":
		return "arm32"
	}
	// note: we don't know how other platforms are named
	return goarch
}

// matches reports whether the rule targets the given platform.
// A rule without os name matches every os.
func (r Rule) matches(os string, arch string) bool {
	// feature gated rules (demo user, custom resolution …) are never active
	if len(r.Features) != 0 {
		return false
	}
	if r.OS.Name != "" && r.OS.Name != os {
		return false
	}
	if r.OS.Arch != "" && r.OS.Arch != arch {
		return false
	}
	return true
}

// Allowed evaluates rules for the current platform
func Allowed(rules []Rule) bool {
	return allowedFor(rules, CurrentOS(), archName(runtime.GOARCH))
}

// allowedFor evaluates rules in declaration order. No rules means allowed.
// Otherwise every matching rule overwrites the decision and the last one wins.
func allowedFor(rules []Rule, os string, arch string) bool {
	if len(rules) == 0 {
		return true
	}

	allowed := false
	for _, rule := range rules {
		if rule.matches(os, arch) {
			allowed = rule.Action == "allow"
		}
	}
	return allowed
}
