// Package java maps game versions to the java release they need and finds
// a java binary to run them with.
package java

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/merrors"
)

var (
	java21 = semver.MustParse("1.20.5")
	java17 = semver.MustParse("1.17.0")

	snapshotRe = regexp.MustCompile(`^(\d{2})w\d{2}[a-z]$`)
)

// RequiredMajorFor returns the java feature release a minecraft version needs.
// Snapshots like "24w14a" are mapped by their year.
func RequiredMajorFor(mcVersion string) int {
	if m := snapshotRe.FindStringSubmatch(mcVersion); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year >= 24 {
			return 21
		}
		return 17
	}

	v, err := semver.NewVersion(mcVersion)
	if err != nil {
		return 17
	}
	// "1.20.5-pre1" needs the same java as 1.20.5
	release := semver.New(v.Major(), v.Minor(), v.Patch(), "", "")

	switch {
	case !release.LessThan(java21):
		return 21
	case !release.LessThan(java17):
		return 17
	default:
		return 8
	}
}

// Finder locates a java binary for a feature release
type Finder interface {
	Find(ctx context.Context, major int) (string, error)
}

// Bin returns the path of the java executable inside a java home directory
func Bin(home string) string {
	bin := "bin/java"
	if runtime.GOOS == "windows" {
		bin = "bin/java.exe"
	}
	return filepath.Join(home, bin)
}

// Valid reports whether path points to an existing regular file
func Valid(path string) bool {
	if path == "" {
		return false
	}
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}

// PathFinder uses JAVA_HOME and falls back to the first java on PATH.
// It does not probe the binary, so the major version is only logged.
type PathFinder struct {
	Logger *log.Logger
	// Getenv defaults to os.Getenv
	Getenv func(string) string
	// LookPath defaults to exec.LookPath
	LookPath func(string) (string, error)
}

// Find implements Finder
func (p *PathFinder) Find(ctx context.Context, major int) (string, error) {
	logger := cmdlog.OrDefault(p.Logger)
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	lookPath := p.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	if home := getenv("JAVA_HOME"); home != "" {
		if bin := Bin(home); Valid(bin) {
			logger.Debug("using java from JAVA_HOME", "path", bin, "wanted", major)
			return bin, nil
		}
		logger.Warn("JAVA_HOME does not contain a java binary", "home", home)
	}

	bin, err := lookPath("java")
	if err != nil {
		return "", merrors.New(merrors.KindJavaNotFound, "no java %d binary found in JAVA_HOME or PATH: %w", major, err)
	}
	logger.Debug("using java from PATH", "path", bin, "wanted", major)
	return bin, nil
}
