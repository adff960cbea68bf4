package maven

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
)

// maxParentDepth bounds <parent> chains
const maxParentDepth = 8

// Fetcher downloads a single file. sha1 may be empty
type Fetcher interface {
	DownloadFile(ctx context.Context, url string, dest string, sha1 string) error
}

// Resolver resolves artifacts and their compile scope dependencies into a
// maven style libraries directory. A Resolver is a session: every coordinate is only
// visited once during its lifetime. It is not safe for concurrent use.
type Resolver struct {
	// Repositories are tried in order for every file
	Repositories []string
	LibsDir      string

	fetcher Fetcher
	logger  *log.Logger
	visited map[string]struct{}
}

// NewResolver returns a new resolver session
func NewResolver(fetcher Fetcher, libsDir string, repositories []string, logger *log.Logger) *Resolver {
	return &Resolver{
		Repositories: repositories,
		LibsDir:      libsDir,
		fetcher:      fetcher,
		logger:       cmdlog.OrDefault(logger),
		visited:      make(map[string]struct{}),
	}
}

// Visited returns the number of coordinates seen in this session
func (r *Resolver) Visited() int {
	return len(r.visited)
}

// Resolve downloads coordinate and all of its transitive compile dependencies.
// It returns the local paths of every jar involved, including already present ones.
// Broken or missing dependency poms are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, coordinate string) ([]string, error) {
	root, err := Parse(coordinate)
	if err != nil {
		return nil, err
	}

	var collected []string
	// explicit worklist instead of recursion, popped from the end (depth first)
	work := []Artifact{root}
	for len(work) > 0 {
		if err := ctx.Err(); err != nil {
			return collected, err
		}

		artifact := work[len(work)-1]
		work = work[:len(work)-1]

		key := artifact.String()
		if _, seen := r.visited[key]; seen {
			continue
		}
		r.visited[key] = struct{}{}

		jarErr := errNoJar
		if !artifact.IsPom() {
			var jarPath string
			jarPath, jarErr = r.Fetch(ctx, artifact)
			if jarErr == nil {
				collected = append(collected, jarPath)
			} else {
				// might be a pom only artifact, continue with the pom
				r.logger.Debug("jar not available", "artifact", key, "err", jarErr)
			}
		}

		pom, err := r.loadPom(ctx, artifact, 0)
		if err != nil {
			if artifact == root && jarErr != nil {
				// neither jar nor pom of the requested artifact exist
				if jarErr == errNoJar {
					return nil, errors.Wrapf(err, "resolving %s", key)
				}
				return nil, errors.Wrapf(jarErr, "resolving %s", key)
			}
			r.logger.Warn("skipping dependencies", "artifact", key, "err", err)
			continue
		}

		deps := r.dependencyArtifacts(pom, key)
		// reverse push keeps declaration order when popping
		for i := len(deps) - 1; i >= 0; i-- {
			work = append(work, deps[i])
		}
	}

	return collected, nil
}

var errNoJar = errors.New("pom packaging")

func (r *Resolver) dependencyArtifacts(pom *Pom, owner string) []Artifact {
	deps := pom.CompileDependencies()
	artifacts := make([]Artifact, 0, len(deps))
	for _, dep := range deps {
		version, ok := pom.ResolveVersion(dep)
		if !ok {
			r.logger.Warn("can not resolve dependency version, skipping", "dependency", dep.GroupID+":"+dep.ArtifactID, "of", owner)
			continue
		}

		packaging := dep.Type
		if packaging == "" {
			packaging = DefaultPackaging
		}
		artifacts = append(artifacts, Artifact{
			Group:      pom.interpolate(dep.GroupID),
			ID:         dep.ArtifactID,
			Version:    version,
			Classifier: dep.Classifier,
			Packaging:  packaging,
		})
	}
	return artifacts
}

// Fetch makes sure the artifact exists in the libraries directory by trying
// every repository in order. It returns the local path.
func (r *Resolver) Fetch(ctx context.Context, artifact Artifact) (string, error) {
	dest := filepath.Join(r.LibsDir, artifact.LocalPath())
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	if len(r.Repositories) == 0 {
		return "", merrors.New(merrors.KindOther, "no repositories configured for %s", artifact)
	}

	var lastErr error
	for _, repo := range r.Repositories {
		err := r.fetcher.DownloadFile(ctx, artifact.URL(repo), dest, "")
		if err == nil {
			return dest, nil
		}
		r.logger.Debug("repository failed", "repo", repo, "artifact", artifact.String(), "err", err)
		lastErr = err
	}
	return "", lastErr
}

// loadPom fetches (or reuses the on disk copy of) the pom of artifact and
// merges its parents.
func (r *Resolver) loadPom(ctx context.Context, artifact Artifact, depth int) (*Pom, error) {
	pomPath, err := r.Fetch(ctx, artifact.WithPackaging("pom").WithClassifier(""))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(pomPath)
	if err != nil {
		return nil, merrors.IO(pomPath, err)
	}
	pom, err := ParsePom(data)
	if err != nil {
		return nil, err
	}

	if pom.Parent != nil && pom.Parent.Version != "" && depth < maxParentDepth {
		parent, err := r.loadPom(ctx, pom.Parent.Artifact(), depth+1)
		if err != nil {
			// versions that need the parent will be skipped later on
			r.logger.Debug("parent pom not available", "artifact", artifact.String(), "err", err)
		} else {
			pom.inherit(parent)
		}
	}
	return pom, nil
}
