package minecraft

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
)

// DefaultJavaMajor is used when a version does not declare a java version
const DefaultJavaMajor = 17

// Downloader is the part of the download manager used here
type Downloader interface {
	DownloadFile(ctx context.Context, url string, dest string, sha1 string) error
	DownloadBatch(ctx context.Context, entries []downloadmgr.Entry) []downloadmgr.Failure
}

// Version is a version.json descriptor that is used to install and launch minecraft instances
type Version struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	// MinecraftArguments are used before 1.13
	MinecraftArguments string `json:"minecraftArguments,omitempty"`
	// Arguments is the new (complicated) system
	Arguments *Arguments `json:"arguments,omitempty"`
	Downloads struct {
		Client *Artifact `json:"client,omitempty"`
		Server *Artifact `json:"server,omitempty"`
	} `json:"downloads"`
	Libraries    Libraries      `json:"libraries"`
	MainClass    string         `json:"mainClass"`
	Assets       string         `json:"assets,omitempty"`
	AssetIndex   *AssetIndexRef `json:"assetIndex,omitempty"`
	InheritsFrom string         `json:"inheritsFrom,omitempty"`
	JavaVersion  *struct {
		Component    string `json:"component"`
		MajorVersion int    `json:"majorVersion"`
	} `json:"javaVersion,omitempty"`
}

// AssetIndexRef points to the asset index of a version
type AssetIndexRef struct {
	ID        string `json:"id"`
	Sha1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
	URL       string `json:"url"`
}

// ParseVersion parses a version descriptor
func ParseVersion(data []byte) (*Version, error) {
	v := &Version{}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, merrors.Parse("version descriptor", err)
	}
	return v, nil
}

// RequiredJavaMajor returns the java major version hint or DefaultJavaMajor
func (v *Version) RequiredJavaMajor() int {
	if v.JavaVersion == nil || v.JavaVersion.MajorVersion == 0 {
		return DefaultJavaMajor
	}
	return v.JavaVersion.MajorVersion
}

// GameArgs returns the game arguments allowed on this platform.
// Falls back to the legacy space separated `minecraftArguments`.
func (v *Version) GameArgs() []string {
	if v.Arguments != nil && len(v.Arguments.Game) != 0 {
		return resolveArguments(v.Arguments.Game)
	}
	return strings.Fields(v.MinecraftArguments)
}

// JVMArgs returns the jvm arguments allowed on this platform.
// Versions before 1.13 do not declare any.
func (v *Version) JVMArgs() []string {
	if v.Arguments == nil {
		return []string{}
	}
	return resolveArguments(v.Arguments.JVM)
}

// Save writes the raw descriptor to `<dir>/<id>.json`
func Save(raw []byte, dir string, id string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return merrors.IO(dir, err)
	}
	target := filepath.Join(dir, id+".json")
	if err := os.WriteFile(target, raw, 0o644); err != nil {
		return merrors.IO(target, err)
	}
	return nil
}

// DownloadClient downloads the client jar to dest. Nothing happens for versions without a client.
func (v *Version) DownloadClient(ctx context.Context, d Downloader, dest string) error {
	client := v.Downloads.Client
	if client == nil || client.URL == "" {
		return nil
	}
	if !downloadmgr.NeedsDownload(dest, client.Sha1) {
		return nil
	}
	return d.DownloadFile(ctx, client.URL, dest, client.Sha1)
}

// DownloadLibraries downloads every library allowed on this platform (and its native classifier).
// It returns the classpath entry of every included library: the artifact path relative to
// libsDir if known, the coordinate otherwise.
func (v *Version) DownloadLibraries(ctx context.Context, libsDir string, d Downloader) ([]string, error) {
	included := make([]string, 0, len(v.Libraries))
	entries := make([]downloadmgr.Entry, 0, len(v.Libraries))
	seen := make(map[string]struct{})
	add := func(e downloadmgr.Entry) {
		if _, ok := seen[e.Dest]; ok {
			return
		}
		seen[e.Dest] = struct{}{}
		entries = append(entries, e)
	}

	for i := range v.Libraries {
		lib := &v.Libraries[i]
		if !lib.Allowed() {
			continue
		}

		native, hasNative := lib.NativeArtifact()
		// natives only libraries (lwjgl-platform …) have no main artifact
		if lib.Downloads.Artifact != nil || !hasNative {
			relPath := lib.Filepath()
			add(downloadmgr.Entry{
				URL:  lib.DownloadURL(),
				Dest: filepath.Join(libsDir, filepath.FromSlash(relPath)),
				Sha1: lib.Sha1(),
			})
			if lib.Downloads.Artifact != nil && lib.Downloads.Artifact.Path != "" {
				included = append(included, relPath)
			} else {
				included = append(included, lib.Name)
			}
		}

		if hasNative {
			add(downloadmgr.Entry{
				URL:  native.URL,
				Dest: filepath.Join(libsDir, filepath.FromSlash(native.Path)),
				Sha1: native.Sha1,
				Size: native.SizeBytes(),
			})
		}
	}

	failures := d.DownloadBatch(ctx, downloadmgr.FilterMissing(entries))
	if len(failures) != 0 {
		return nil, errors.Wrapf(failures[0].Err, "downloading libraries of %s (%d failed)", v.ID, len(failures))
	}
	return included, nil
}

// NativeJars returns the absolute paths of all native classifier jars of this version
func (v *Version) NativeJars(libsDir string) []string {
	var jars []string
	for i := range v.Libraries {
		lib := &v.Libraries[i]
		if !lib.Allowed() {
			continue
		}
		if native, ok := lib.NativeArtifact(); ok {
			jars = append(jars, filepath.Join(libsDir, filepath.FromSlash(native.Path)))
		}
	}
	return jars
}
