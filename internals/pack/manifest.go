package pack

import (
	"strings"

	"github.com/magiconair/properties"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
)

// ManifestPath is the location of the jar manifest
const ManifestPath = "META-INF/MANIFEST.MF"

// ErrNoMainClass is returned for jars without a Main-Class attribute
var ErrNoMainClass = errors.New("jar manifest has no Main-Class")

// Manifest returns the main attributes of the jar manifest
func (r *Reader) Manifest() (*properties.Properties, error) {
	raw, err := r.ReadFile(ManifestPath)
	if err != nil {
		return nil, err
	}
	return ParseManifest(raw)
}

// MainClass returns the Main-Class attribute of the jar manifest
func (r *Reader) MainClass() (string, error) {
	m, err := r.Manifest()
	if err != nil {
		return "", err
	}
	main, ok := m.Get("Main-Class")
	if !ok || main == "" {
		return "", errors.Wrap(ErrNoMainClass, r.path)
	}
	return main, nil
}

// ParseManifest parses a MANIFEST.MF document. Only the main section is kept
func ParseManifest(raw []byte) (*properties.Properties, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	// a line starting with a single space continues the previous one
	text = strings.ReplaceAll(text, "\n ", "")
	if end := strings.Index(text, "\n\n"); end != -1 {
		text = text[:end]
	}

	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes([]byte(text))
	if err != nil {
		return nil, merrors.Parse("jar manifest", err)
	}
	return p, nil
}
