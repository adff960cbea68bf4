package classpath

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/minepkg/mclaunch/internals/pack"
)

var nativeExtensions = []string{".dll", ".so", ".dylib", ".jnilib"}

// IsNativeEntry reports whether a jar entry is a top level shared library
func IsNativeEntry(name string) bool {
	if strings.Contains(name, "META-INF") || strings.ContainsAny(name, `/\`) {
		return false
	}
	ext := strings.ToLower(path.Ext(name))
	for _, e := range nativeExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// NativeJars returns the declared libraries that carry a natives classifier, resolved on disk
func NativeJars(i *instances.Instance, libsDir string, declared []string) []string {
	var jars []string
	for _, raw := range declared {
		raw = strings.TrimSpace(raw)
		if a, err := maven.Parse(raw); err == nil {
			if !strings.HasPrefix(a.Classifier, "natives") {
				continue
			}
		} else if !strings.Contains(filepath.Base(raw), "-natives-") {
			continue
		}
		if entry, ok := resolveEntry(i, libsDir, raw); ok {
			jars = append(jars, entry)
		}
	}
	return jars
}

// ExtractNatives clears nativesDir and extracts the shared libraries of all jars into it.
// Missing or unreadable jars are skipped with a warning. It returns the number of
// extracted files.
func ExtractNatives(jars []string, nativesDir string, logger *log.Logger) (int, error) {
	logger = cmdlog.OrDefault(logger)
	if err := os.RemoveAll(nativesDir); err != nil {
		return 0, merrors.IO(nativesDir, err)
	}
	if err := os.MkdirAll(nativesDir, 0755); err != nil {
		return 0, merrors.IO(nativesDir, err)
	}

	total := 0
	for _, jar := range jars {
		r, err := pack.Open(jar)
		if err != nil {
			logger.Warn("skipping native jar", "jar", jar, "err", err)
			continue
		}
		n, err := r.Extract(func(name string) (string, bool) {
			if !IsNativeEntry(name) {
				return "", false
			}
			return filepath.Join(nativesDir, name), true
		})
		if err != nil {
			logger.Warn("could not extract natives", "jar", jar, "err", err)
		}
		logger.Debug("extracted natives", "jar", filepath.Base(jar), "files", n)
		total += n
	}
	return total, nil
}

// CleanNatives removes the natives directory
func CleanNatives(nativesDir string) error {
	if err := os.RemoveAll(nativesDir); err != nil {
		return merrors.IO(nativesDir, err)
	}
	return nil
}
