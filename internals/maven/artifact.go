// Package maven implements maven coordinates, pom documents and a
// transitive dependency resolver working on a maven style libraries directory.
package maven

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/minepkg/mclaunch/internals/merrors"
)

// Well known repositories of the minecraft ecosystem
const (
	MojangLibraries = "https://libraries.minecraft.net"
	MavenCentral    = "https://repo1.maven.org/maven2"
	ForgeMaven      = "https://maven.minecraftforge.net"
	FabricMaven     = "https://maven.fabricmc.net"
	QuiltMaven      = "https://maven.quiltmc.org/repository/release"
	NeoForgeMaven   = "https://maven.neoforged.net/releases"
)

// DefaultPackaging is used when a coordinate has no `@packaging` suffix
const DefaultPackaging = "jar"

// Artifact is a parsed maven coordinate.
// It is a value type, two artifacts are equal if all fields are equal.
type Artifact struct {
	Group      string
	ID         string
	Version    string
	Classifier string
	Packaging  string
}

// Parse parses `group:artifact:version[:classifier][@packaging]`
func Parse(coordinate string) (Artifact, error) {
	coord := strings.TrimSpace(coordinate)
	packaging := DefaultPackaging
	if idx := strings.LastIndexByte(coord, '@'); idx != -1 {
		packaging = coord[idx+1:]
		coord = coord[:idx]
	}

	parts := strings.Split(coord, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return Artifact{}, invalidCoordinate(coordinate)
	}
	for _, p := range parts {
		if p == "" {
			return Artifact{}, invalidCoordinate(coordinate)
		}
	}
	if packaging == "" {
		return Artifact{}, invalidCoordinate(coordinate)
	}

	a := Artifact{
		Group:     parts[0],
		ID:        parts[1],
		Version:   parts[2],
		Packaging: packaging,
	}
	if len(parts) == 4 {
		a.Classifier = parts[3]
	}
	return a, nil
}

// MustParse is like Parse but panics on invalid input
func MustParse(coordinate string) Artifact {
	a, err := Parse(coordinate)
	if err != nil {
		panic(err)
	}
	return a
}

func invalidCoordinate(coordinate string) error {
	return merrors.New(merrors.KindInvalidCoordinate, "%q is not a valid maven coordinate", coordinate)
}

// String returns the coordinate. `@packaging` is only appended if it is not the default
func (a Artifact) String() string {
	s := a.Group + ":" + a.ID + ":" + a.Version
	if a.Classifier != "" {
		s += ":" + a.Classifier
	}
	if a.packaging() != DefaultPackaging {
		s += "@" + a.packaging()
	}
	return s
}

func (a Artifact) packaging() string {
	if a.Packaging == "" {
		return DefaultPackaging
	}
	return a.Packaging
}

// GroupPath returns the group as a slash separated path (`net/sf/jopt-simple`)
func (a Artifact) GroupPath() string {
	return strings.ReplaceAll(a.Group, ".", "/")
}

// FileName returns `artifactId-version[-classifier].packaging`
func (a Artifact) FileName() string {
	name := a.ID + "-" + a.Version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	return name + "." + a.packaging()
}

// RepoPath returns the slash separated path inside a maven repository
func (a Artifact) RepoPath() string {
	return path.Join(a.GroupPath(), a.ID, a.Version, a.FileName())
}

// LocalPath returns the path relative to a libraries directory using the os separator
func (a Artifact) LocalPath() string {
	return filepath.FromSlash(a.RepoPath())
}

// URL returns the download url of this artifact in the given repository
func (a Artifact) URL(repoBase string) string {
	return strings.TrimRight(repoBase, "/") + "/" + a.RepoPath()
}

// WithPackaging returns a copy with a different packaging (eg. "pom")
func (a Artifact) WithPackaging(packaging string) Artifact {
	a.Packaging = packaging
	return a
}

// WithClassifier returns a copy with a different classifier
func (a Artifact) WithClassifier(classifier string) Artifact {
	a.Classifier = classifier
	return a
}

// IsPom reports whether this artifact only consists of a pom file
func (a Artifact) IsPom() bool {
	return a.packaging() == "pom"
}
