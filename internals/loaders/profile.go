package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/maven"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
)

const (
	// FabricMetaURL is the fabric metadata api
	FabricMetaURL = "https://meta.fabricmc.net/v2"
	// QuiltMetaURL is the quilt metadata api
	QuiltMetaURL = "https://meta.quiltmc.org/v3"
)

// Profile is a launcher profile served by the fabric and quilt meta apis
type Profile struct {
	ID           string           `json:"id"`
	InheritsFrom string           `json:"inheritsFrom,omitempty"`
	MainClass    string           `json:"mainClass"`
	Libraries    []ProfileLibrary `json:"libraries"`
	Arguments    *struct {
		JVM  []string `json:"jvm"`
		Game []string `json:"game"`
	} `json:"arguments,omitempty"`
}

// ProfileLibrary is a library of a profile. URL is the maven repository, not the file
type ProfileLibrary struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Sha1 string `json:"sha1,omitempty"`
}

// profileInstaller installs loaders that publish launcher profiles (fabric and quilt)
type profileInstaller struct {
	name    Type
	metaURL string
	// defaultMaven is used for libraries without url
	defaultMaven string
	// loaderArtifact is the coordinate of the loader itself without version
	loaderArtifact string

	http   *http.Client
	logger *log.Logger
}

func newFabric(opts Options) *profileInstaller {
	return &profileInstaller{
		name:           Fabric,
		metaURL:        opts.FabricMetaURL,
		defaultMaven:   maven.FabricMaven,
		loaderArtifact: "net.fabricmc:fabric-loader",
		http:           opts.HTTP,
		logger:         opts.Logger,
	}
}

func newQuilt(opts Options) *profileInstaller {
	return &profileInstaller{
		name:           Quilt,
		metaURL:        opts.QuiltMetaURL,
		defaultMaven:   maven.QuiltMaven,
		loaderArtifact: "org.quiltmc:quilt-loader",
		http:           opts.HTTP,
		logger:         opts.Logger,
	}
}

// Install fetches the profile, saves it next to the instance and downloads all its libraries
func (p *profileInstaller) Install(ctx context.Context, ic Context) (*Result, error) {
	p.logger.Info("installing "+p.name.String(), "minecraft", ic.MinecraftVersion, "loader", ic.LoaderVersion)

	profile, raw, err := p.fetchProfile(ctx, ic.MinecraftVersion, ic.LoaderVersion)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(ic.InstanceDir, os.ModePerm); err != nil {
		return nil, merrors.IO(ic.InstanceDir, err)
	}
	profilePath := filepath.Join(ic.InstanceDir, fmt.Sprintf("%s-%s-%s.json", p.name, ic.MinecraftVersion, ic.LoaderVersion))
	if err := os.WriteFile(profilePath, raw, 0o644); err != nil {
		return nil, merrors.IO(profilePath, err)
	}

	libraries, err := p.installLibraries(ctx, profile, ic)
	if err != nil {
		return nil, err
	}
	libraries = ensureLoaderArtifact(libraries, p.loaderArtifact+":"+ic.LoaderVersion)

	result := &Result{
		MainClass:     profile.MainClass,
		ExtraJVMArgs:  []string{},
		ExtraGameArgs: []string{},
		Libraries:     libraries,
	}
	if profile.Arguments != nil {
		result.ExtraJVMArgs = append(result.ExtraJVMArgs, profile.Arguments.JVM...)
		result.ExtraGameArgs = append(result.ExtraGameArgs, profile.Arguments.Game...)
	}

	p.logger.Info(p.name.String()+" installed", "loader", ic.LoaderVersion, "libraries", len(libraries))
	return result, nil
}

func (p *profileInstaller) profileURL(mc, loader string) string {
	return fmt.Sprintf("%s/versions/loader/%s/%s/profile/json",
		strings.TrimRight(p.metaURL, "/"), url.PathEscape(mc), url.PathEscape(loader))
}

func (p *profileInstaller) fetchProfile(ctx context.Context, mc, loader string) (*Profile, []byte, error) {
	target := p.profileURL(mc, loader)
	raw, err := fetch(ctx, p.http, target)
	if err != nil {
		return nil, nil, err
	}

	profile, err := parseProfile(raw)
	if err != nil {
		return nil, nil, err
	}
	if profile.MainClass == "" {
		return nil, nil, merrors.LoaderAPI("%s profile %s has no main class", p.name, target)
	}
	return profile, raw, nil
}

func parseProfile(raw []byte) (*Profile, error) {
	profile := &Profile{}
	if err := json.Unmarshal(raw, profile); err != nil {
		return nil, merrors.Parse("loader profile", err)
	}
	return profile, nil
}

// installLibraries downloads every profile library concurrently and returns their coordinates
func (p *profileInstaller) installLibraries(ctx context.Context, profile *Profile, ic Context) ([]string, error) {
	names := make([]string, 0, len(profile.Libraries))
	entries := make([]downloadmgr.Entry, 0, len(profile.Libraries))
	for _, lib := range profile.Libraries {
		artifact, err := maven.Parse(lib.Name)
		if err != nil {
			return nil, err
		}
		repo := lib.URL
		if repo == "" {
			repo = p.defaultMaven
		}
		entries = append(entries, downloadmgr.Entry{
			URL:  artifact.URL(repo),
			Dest: filepath.Join(ic.LibsDir, artifact.LocalPath()),
			Sha1: lib.Sha1,
		})
		names = append(names, lib.Name)
	}

	failures := ic.Downloader.DownloadBatch(ctx, downloadmgr.FilterMissing(entries))
	if len(failures) != 0 {
		return nil, errors.Wrapf(failures[0].Err, "downloading %s libraries (%d failed)", p.name, len(failures))
	}
	return names, nil
}

// ensureLoaderArtifact appends the loader coordinate if the profile did not list it
func ensureLoaderArtifact(libraries []string, coordinate string) []string {
	for _, lib := range libraries {
		if lib == coordinate {
			return libraries
		}
	}
	return append(libraries, coordinate)
}
