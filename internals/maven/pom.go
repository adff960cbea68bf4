package maven

import (
	"encoding/xml"
	"strings"

	"github.com/minepkg/mclaunch/internals/merrors"
)

// Pom is the subset of a pom.xml needed for dependency resolution
type Pom struct {
	XMLName    xml.Name   `xml:"project"`
	GroupID    string     `xml:"groupId"`
	ArtifactID string     `xml:"artifactId"`
	Version    string     `xml:"version"`
	Packaging  string     `xml:"packaging"`
	Parent     *PomParent `xml:"parent"`
	Properties Properties `xml:"properties"`
	// Dependencies declared by this artifact
	Dependencies []Dependency `xml:"dependencies>dependency"`
	// DependencyManagement only pins versions, it does not add dependencies
	DependencyManagement []Dependency `xml:"dependencyManagement>dependencies>dependency"`
}

// PomParent references the parent pom
type PomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Artifact returns the pom artifact of the parent
func (p PomParent) Artifact() Artifact {
	return Artifact{Group: p.GroupID, ID: p.ArtifactID, Version: p.Version, Packaging: "pom"}
}

// Dependency is a single <dependency> entry
type Dependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
}

// IsOptional reports whether <optional>true</optional> is set
func (d Dependency) IsOptional() bool {
	return strings.EqualFold(strings.TrimSpace(d.Optional), "true")
}

// Properties are the free form <properties> of a pom
type Properties map[string]string

// UnmarshalXML reads every child element of <properties> as key value pair
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

// ParsePom parses a pom document
func ParsePom(data []byte) (*Pom, error) {
	pom := &Pom{}
	if err := xml.Unmarshal(data, pom); err != nil {
		return nil, merrors.Parse("pom", err)
	}
	return pom, nil
}

// CompileDependencies returns all non optional dependencies with compile scope.
// A missing scope means compile.
func (p *Pom) CompileDependencies() []Dependency {
	deps := make([]Dependency, 0, len(p.Dependencies))
	for _, dep := range p.Dependencies {
		scope := strings.TrimSpace(dep.Scope)
		if scope != "" && scope != "compile" {
			continue
		}
		if dep.IsOptional() {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}

// ResolveVersion returns the version of dep. A dependency without a version is looked up
// in the dependency management section by group and artifact id.
// Returns false if the version can not be determined.
func (p *Pom) ResolveVersion(dep Dependency) (string, bool) {
	version := p.interpolate(dep.Version)
	if version == "" {
		group := p.interpolate(dep.GroupID)
		for _, managed := range p.DependencyManagement {
			if p.interpolate(managed.GroupID) == group && managed.ArtifactID == dep.ArtifactID {
				version = p.interpolate(managed.Version)
				break
			}
		}
	}

	if version == "" || strings.Contains(version, "${") {
		return "", false
	}
	return version, true
}

// effectiveVersion is the version of the project, inherited from the parent if unset
func (p *Pom) effectiveVersion() string {
	if p.Version == "" && p.Parent != nil {
		return p.Parent.Version
	}
	return p.Version
}

func (p *Pom) effectiveGroupID() string {
	if p.GroupID == "" && p.Parent != nil {
		return p.Parent.GroupID
	}
	return p.GroupID
}

// interpolate replaces the well known ${project.*} placeholders and <properties> references.
// Unknown placeholders are left as is.
func (p *Pom) interpolate(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "${") {
		return s
	}

	pairs := []string{
		"${project.version}", p.effectiveVersion(),
		"${pom.version}", p.effectiveVersion(),
		"${version}", p.effectiveVersion(),
		"${project.groupId}", p.effectiveGroupID(),
		"${project.artifactId}", p.ArtifactID,
	}
	if p.Parent != nil {
		pairs = append(pairs, "${project.parent.version}", p.Parent.Version)
	}
	for k, v := range p.Properties {
		pairs = append(pairs, "${"+k+"}", v)
	}

	// properties may reference each other, a few rounds are enough for real world poms
	replacer := strings.NewReplacer(pairs...)
	for i := 0; i < 4 && strings.Contains(s, "${"); i++ {
		next := replacer.Replace(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

// inherit merges the parts of a parent pom that influence version resolution.
// Values of p always win.
func (p *Pom) inherit(parent *Pom) {
	if p.Properties == nil {
		p.Properties = Properties{}
	}
	for k, v := range parent.Properties {
		if _, ok := p.Properties[k]; !ok {
			p.Properties[k] = v
		}
	}

	// parent placeholders refer to the parent project
	for _, managed := range parent.DependencyManagement {
		managed.GroupID = parent.interpolate(managed.GroupID)
		managed.Version = parent.interpolate(managed.Version)
		p.DependencyManagement = append(p.DependencyManagement, managed)
	}
}

// Metadata is a maven-metadata.xml document listing all versions of an artifact
type Metadata struct {
	XMLName    xml.Name `xml:"metadata"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// ParseMetadata parses a maven-metadata.xml document
func ParseMetadata(data []byte) (*Metadata, error) {
	meta := &Metadata{}
	if err := xml.Unmarshal(data, meta); err != nil {
		return nil, merrors.Parse("maven metadata", err)
	}
	return meta, nil
}
