// Package autocomplete provides shell completions for instance names and minecraft versions.
package autocomplete

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/minepkg/mclaunch/internals/instances"
	"github.com/minepkg/mclaunch/internals/loaders"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/spf13/cobra"
)

// maxAge is how long the cached version list is used without refetching
const maxAge = time.Hour

// AutoCompleter completes cli arguments. Minecraft versions are cached in CacheDir
// so completion stays fast and works offline
type AutoCompleter struct {
	Minecraft *minecraft.Client
	CacheDir  string
	GlobalDir string

	storage struct {
		LastFetch time.Time                   `json:"last_fetch"`
		Versions  []minecraft.ManifestVersion `json:"versions"`
	}
}

func (a *AutoCompleter) cacheFile() string {
	return filepath.Join(a.CacheDir, "versions.json")
}

func (a *AutoCompleter) isOutdated() bool {
	return time.Since(a.storage.LastFetch) > maxAge
}

// Versions returns the released minecraft versions, newest first.
// The local cache is used if it is fresh or the manifest can not be fetched.
func (a *AutoCompleter) Versions(ctx context.Context) ([]minecraft.ManifestVersion, error) {
	// already in memory and fresh
	if a.storage.Versions != nil && !a.isOutdated() {
		return a.storage.Versions, nil
	}

	raw, err := os.ReadFile(a.cacheFile())
	if err != nil {
		return a.fetchVersions(ctx)
	}
	if err := json.Unmarshal(raw, &a.storage); err != nil {
		// corrupted cache
		return a.fetchVersions(ctx)
	}

	if a.isOutdated() {
		versions, err := a.fetchVersions(ctx)
		if err == nil {
			return versions, nil
		}
		// offline: the stale list is better than nothing
	}
	return a.storage.Versions, nil
}

func (a *AutoCompleter) fetchVersions(ctx context.Context) ([]minecraft.ManifestVersion, error) {
	manifest, err := a.Minecraft.FetchManifest(ctx)
	if err != nil {
		return nil, err
	}
	versions := manifest.Releases()

	a.storage.Versions = versions
	a.storage.LastFetch = time.Now()
	raw, err := json.Marshal(&a.storage)
	if err != nil {
		return versions, err
	}
	if err := os.MkdirAll(a.CacheDir, 0755); err != nil {
		return versions, err
	}
	return versions, os.WriteFile(a.cacheFile(), raw, 0644)
}

// CompleteVersions completes minecraft release versions
func (a *AutoCompleter) CompleteVersions(toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// error is ignored on purpose, completion can not report it
	versions, _ := a.Versions(ctx)

	var matches []string
	for _, v := range versions {
		if strings.HasPrefix(v.ID, toComplete) {
			matches = append(matches, fmt.Sprintf("%s\treleased %s", v.ID, humanize.Time(v.ReleaseTime)))
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// CompleteInstances completes the names of installed instances
func (a *AutoCompleter) CompleteInstances(toComplete string) ([]string, cobra.ShellCompDirective) {
	list, _ := instances.List(a.GlobalDir)

	var matches []string
	for _, i := range list {
		if !strings.HasPrefix(i.Name, toComplete) {
			continue
		}
		desc := i.MinecraftVersion
		if i.Loader != loaders.Vanilla && i.LoaderVersion != "" {
			desc += " " + string(i.Loader) + " " + i.LoaderVersion
		}
		state := lipgloss.NewStyle().Width(10).Render(string(i.State))
		matches = append(matches, fmt.Sprintf("%s\t%s | %s", i.Name, state, desc))
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// CompleteLoaders completes loader names
func CompleteLoaders(toComplete string) ([]string, cobra.ShellCompDirective) {
	var matches []string
	for _, t := range loaders.Types {
		if strings.HasPrefix(string(t), toComplete) {
			matches = append(matches, string(t))
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
