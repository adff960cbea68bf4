package minecraft

import (
	"path"
	"runtime"
	"strings"

	"github.com/minepkg/mclaunch/internals/maven"
)

// Libraries as a collection of minecraft libs
type Libraries []Library

// Required returns only the libraries allowed on the current platform
func (l Libraries) Required() Libraries {
	required := make(Libraries, 0, len(l))
	for _, lib := range l {
		if lib.Allowed() {
			required = append(required, lib)
		}
	}
	return required
}

// Library is a minecraft library
type Library struct {
	// Name is the maven coordinate of the library
	Name      string `json:"name"`
	Downloads struct {
		Artifact *Artifact `json:"artifact,omitempty"`
		// Classifiers is a list of additional artifacts.
		// It is used to download native libraries.
		// The `Natives` field is used to determine which classifier to use.
		// This field is no longer used after 1.19
		Classifiers map[string]Artifact `json:"classifiers,omitempty"`
	} `json:"downloads,omitempty"`
	// URL is a maven repository base (used by loader profiles)
	URL string `json:"url,omitempty"`
	// Rules is a list of rules that determine whether this library should be included.
	// If no rules are specified, the library is included by default.
	Rules []Rule `json:"rules,omitempty"`
	// Natives is a map of OS names to native classifiers.
	// This field is no longer used after 1.19
	// Newer library versions extract the native library from a jar at runtime.
	Natives map[string]string `json:"natives,omitempty"`
}

// Allowed reports whether the library rules allow the current platform
func (l *Library) Allowed() bool {
	return Allowed(l.Rules)
}

// NativeClassifier returns the native classifier for the current platform with `${arch}` replaced
func (l *Library) NativeClassifier() (string, bool) {
	return l.nativeClassifierFor(CurrentOS(), runtime.GOARCH)
}

func (l *Library) nativeClassifierFor(os string, goarch string) (string, bool) {
	classifier, ok := l.Natives[os]
	if !ok || classifier == "" {
		return "", false
	}
	arch := "32"
	if strings.HasSuffix(goarch, "64") {
		arch = "64"
	}
	return strings.ReplaceAll(classifier, "${arch}", arch), true
}

// Filepath returns the slash separated path of the main artifact relative to the libraries folder
func (l *Library) Filepath() string {
	if l.Downloads.Artifact != nil && l.Downloads.Artifact.Path != "" {
		return l.Downloads.Artifact.Path
	}
	a, err := maven.Parse(l.Name)
	if err != nil {
		// not a coordinate, best effort
		return path.Join(strings.Split(l.Name, ":")...)
	}
	return a.RepoPath()
}

// DownloadURL returns the download url of the main artifact
func (l *Library) DownloadURL() string {
	switch {
	case l.Downloads.Artifact != nil && l.Downloads.Artifact.URL != "":
		return l.Downloads.Artifact.URL
	case l.URL != "":
		return strings.TrimRight(l.URL, "/") + "/" + l.Filepath()
	default:
		return maven.MojangLibraries + "/" + l.Filepath()
	}
}

// Sha1 returns the sha1 of the main artifact if known
func (l *Library) Sha1() string {
	if l.Downloads.Artifact != nil {
		return l.Downloads.Artifact.Sha1
	}
	return ""
}

// NativeArtifact returns the native classifier artifact for the current platform
func (l *Library) NativeArtifact() (Artifact, bool) {
	classifier, ok := l.NativeClassifier()
	if !ok {
		return Artifact{}, false
	}
	native, ok := l.Downloads.Classifiers[classifier]
	if !ok || native.URL == "" || native.Path == "" {
		return Artifact{}, false
	}
	return native, true
}
