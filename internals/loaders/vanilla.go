package loaders

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/minecraft"
	"github.com/pkg/errors"
)

// ClientJar is the file name of the client jar inside the instance directory
const ClientJar = "client.jar"

// VanillaInstaller installs the plain minecraft client
type VanillaInstaller struct {
	client *minecraft.Client
	logger *log.Logger
}

// Install fetches the version descriptor, saves it to the instance directory and downloads
// the client jar and every library allowed on this platform
func (v *VanillaInstaller) Install(ctx context.Context, ic Context) (*Result, error) {
	v.logger.Info("installing vanilla", "minecraft", ic.MinecraftVersion)

	version, raw, err := v.client.FetchVersion(ctx, ic.MinecraftVersion)
	if err != nil {
		return nil, err
	}
	if err := minecraft.Save(raw, ic.InstanceDir, ic.MinecraftVersion); err != nil {
		return nil, err
	}

	if err := version.DownloadClient(ctx, ic.Downloader, filepath.Join(ic.InstanceDir, ClientJar)); err != nil {
		return nil, errors.Wrap(err, "downloading client jar")
	}

	libs, err := version.DownloadLibraries(ctx, ic.LibsDir, ic.Downloader)
	if err != nil {
		return nil, err
	}

	result := &Result{
		MainClass:     version.MainClass,
		ExtraJVMArgs:  version.JVMArgs(),
		ExtraGameArgs: version.GameArgs(),
		Libraries:     libs,
		JavaMajor:     version.RequiredJavaMajor(),
	}
	if version.AssetIndex != nil {
		result.AssetIndexID = version.AssetIndex.ID
		result.AssetIndexURL = version.AssetIndex.URL
	}

	v.logger.Info("vanilla installed", "minecraft", ic.MinecraftVersion, "libraries", len(libs))
	return result, nil
}
