package loaders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/minepkg/mclaunch/internals/maven"
	"golang.org/x/exp/slices"
)

type metaLoaderEntry struct {
	Loader struct {
		Version string `json:"version"`
		Stable  bool   `json:"stable"`
	} `json:"loader"`
}

// ListVersions returns the loader versions available for a minecraft version, newest first
func (l *Loaders) ListVersions(ctx context.Context, t Type, mc string) ([]string, error) {
	var (
		versions []string
		err      error
	)
	switch t {
	case Vanilla:
		return []string{}, nil
	case Fabric:
		versions, err = l.metaVersions(ctx, l.opts.FabricMetaURL, mc, true)
	case Quilt:
		versions, err = l.metaVersions(ctx, l.opts.QuiltMetaURL, mc, false)
	case Forge:
		versions, err = l.forgeVersions(ctx, mc)
	case NeoForge:
		versions, err = l.neoForgeVersions(ctx, mc)
	default:
		_, err = ParseType(string(t))
	}
	if err != nil {
		return nil, err
	}
	return sortVersions(versions), nil
}

func (l *Loaders) metaVersions(ctx context.Context, base string, mc string, stableOnly bool) ([]string, error) {
	entries := []metaLoaderEntry{}
	target := fmt.Sprintf("%s/versions/loader/%s", strings.TrimRight(base, "/"), url.PathEscape(mc))
	if err := fetchJSON(ctx, l.opts.HTTP, target, &entries); err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if stableOnly && !e.Loader.Stable {
			continue
		}
		versions = append(versions, e.Loader.Version)
	}
	return versions, nil
}

func (l *Loaders) metadata(ctx context.Context, target string) ([]string, error) {
	body, err := fetch(ctx, l.opts.HTTP, target)
	if err != nil {
		return nil, err
	}
	metadata, err := maven.ParseMetadata(body)
	if err != nil {
		return nil, err
	}
	return metadata.Versioning.Versions, nil
}

func (l *Loaders) forgeVersions(ctx context.Context, mc string) ([]string, error) {
	all, err := l.metadata(ctx, l.opts.ForgeMaven+"/net/minecraftforge/forge/maven-metadata.xml")
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0)
	for _, v := range all {
		if rest := strings.TrimPrefix(v, mc+"-"); rest != v {
			versions = append(versions, rest)
		}
	}
	return versions, nil
}

func (l *Loaders) neoForgeVersions(ctx context.Context, mc string) ([]string, error) {
	all, err := l.metadata(ctx, l.opts.NeoForgeMaven+"/net/neoforged/neoforge/maven-metadata.xml")
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0)
	for _, v := range all {
		if IsNeoForgeCompatible(v, mc) {
			versions = append(versions, v)
		}
	}

	// 1.20.1 was published as net.neoforged:forge
	if mc == "1.20.1" {
		legacy, err := l.metadata(ctx, l.opts.NeoForgeMaven+"/net/neoforged/forge/maven-metadata.xml")
		if err != nil {
			return nil, err
		}
		versions = append(versions, legacy...)
	}
	return versions, nil
}

// IsNeoForgeCompatible reports whether a neoforge version belongs to a minecraft version.
// NeoForge `<major>.<minor>.x` targets minecraft `1.<major>.<minor>`.
func IsNeoForgeCompatible(version, mc string) bool {
	mcParts := numericParts(strings.TrimPrefix(mc, "1."), 2)
	loaderParts := numericParts(version, 2)
	if len(mcParts) < 2 || len(loaderParts) < 2 {
		return false
	}
	return mcParts[0] == loaderParts[0] && mcParts[1] == loaderParts[1]
}

// numericParts returns up to n leading dot separated numeric parts. Parts that are not
// numbers are skipped
func numericParts(s string, n int) []uint64 {
	parts := make([]uint64, 0, n)
	for _, p := range strings.Split(s, ".") {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			continue
		}
		parts = append(parts, v)
		if len(parts) == n {
			break
		}
	}
	return parts
}

// versionSortKey splits on everything that is not a letter or digit.
// Parts that are not numbers count as 0
func versionSortKey(version string) []uint64 {
	fields := strings.FieldsFunc(version, func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	key := make([]uint64, 0, len(fields))
	for _, f := range fields {
		v, _ := strconv.ParseUint(f, 10, 64)
		key = append(key, v)
	}
	return key
}

func compareKeys(a, b []uint64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return len(a) - len(b)
}

// sortVersions sorts newest first and removes duplicates
func sortVersions(versions []string) []string {
	slices.SortStableFunc(versions, func(a, b string) int {
		if c := compareKeys(versionSortKey(a), versionSortKey(b)); c != 0 {
			return -c
		}
		return strings.Compare(b, a)
	})
	return slices.Compact(versions)
}
