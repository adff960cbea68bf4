package launch

import (
	"strings"

	"github.com/minepkg/mclaunch/internals/classpath"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/minepkg/mclaunch/internals/merrors"
)

// asmSupportsJava21 reports whether an asm version can read java 21 class files (9.7+)
func asmSupportsJava21(version string) bool {
	parts := classpath.NumericParts(version)
	var major, minor uint64
	if len(parts) > 0 {
		major = parts[0]
	}
	if len(parts) > 1 {
		minor = parts[1]
	}
	return major > 9 || (major == 9 && minor >= 7)
}

// DetectASMIncompatibility returns an error if a forge style instance ships an asm
// library that is too old for java 21. It returns nil for everything else
func DetectASMIncompatibility(i *instances.Instance, javaMajor int) error {
	if javaMajor < 21 || !i.Loader.IsForgeLike() {
		return nil
	}

	var versions []string
	tooOld := false
	for _, lib := range i.Libraries {
		a, err := maven.Parse(lib)
		if err != nil || a.Group != "org.ow2.asm" {
			continue
		}
		versions = append(versions, a.Version)
		if !asmSupportsJava21(a.Version) {
			tooOld = true
		}
	}
	if !tooOld {
		return nil
	}
	return merrors.Loader(
		"%s %s ships asm [%s] which cannot read java %d classes (9.7 or newer is required), update the loader",
		i.Loader, i.LoaderVersion, strings.Join(versions, ", "), javaMajor,
	)
}
