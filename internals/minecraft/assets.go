package minecraft

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
)

// ResourcesURL is the base url of all asset objects
const ResourcesURL = "https://resources.download.minecraft.net"

// AssetIndex is just a map containing AssetObjects
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is one minecraft asset
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// UnixPath returns the path including the folder
// example: fe/fe32f3b8…
func (a *AssetObject) UnixPath() string {
	return a.Hash[:2] + "/" + a.Hash
}

// DownloadURL returns the download url for this asset
func (a *AssetObject) DownloadURL() string {
	return ResourcesURL + "/" + a.UnixPath()
}

// DownloadAssets downloads the asset index to `<assetsDir>/indexes/<id>.json` and
// every object to `<assetsDir>/objects/<hash[:2]>/<hash>`.
// Objects that already exist with the right hash are skipped.
func (c *Client) DownloadAssets(ctx context.Context, ref *AssetIndexRef, assetsDir string, d Downloader) error {
	if ref == nil || ref.URL == "" {
		return nil
	}

	indexPath := filepath.Join(assetsDir, "indexes", ref.ID+".json")
	if downloadmgr.NeedsDownload(indexPath, ref.Sha1) {
		if err := d.DownloadFile(ctx, ref.URL, indexPath, ref.Sha1); err != nil {
			return errors.Wrap(err, "downloading asset index")
		}
	}

	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return merrors.IO(indexPath, err)
	}
	index := AssetIndex{}
	if err := json.Unmarshal(raw, &index); err != nil {
		return merrors.Parse("asset index", err)
	}

	entries := make([]downloadmgr.Entry, 0, len(index.Objects))
	seen := make(map[string]struct{}, len(index.Objects))
	for _, obj := range index.Objects {
		if len(obj.Hash) < 2 {
			continue
		}
		// many assets share the same object
		if _, ok := seen[obj.Hash]; ok {
			continue
		}
		seen[obj.Hash] = struct{}{}
		entries = append(entries, downloadmgr.Entry{
			URL:  obj.DownloadURL(),
			Dest: filepath.Join(assetsDir, "objects", obj.Hash[:2], obj.Hash),
			Sha1: obj.Hash,
			Size: obj.Size,
		})
	}

	missing := downloadmgr.FilterMissing(entries)
	c.logger.Info("downloading assets", "index", ref.ID, "missing", len(missing), "total", len(entries))

	failures := d.DownloadBatch(ctx, missing)
	if len(failures) != 0 {
		return errors.Wrapf(failures[0].Err, "%d of %d assets failed to download", len(failures), len(missing))
	}
	return nil
}
