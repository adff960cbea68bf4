package minecraft

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"github.com/minepkg/mclaunch/internals/downloadmgr"
	"github.com/minepkg/mclaunch/internals/merrors"
)

// DefaultManifestURL lists every released minecraft version
const DefaultManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

var (
	// ErrVersionNotFound is returned if a version is not part of the manifest
	ErrVersionNotFound = errors.New("version not found in manifest")
)

// Manifest is the upstream version catalog
type Manifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []ManifestVersion `json:"versions"`
}

// ManifestVersion is one entry of the manifest
type ManifestVersion struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
	Sha1        string    `json:"sha1,omitempty"`
}

// Find returns the entry with the given id
func (m *Manifest) Find(id string) (*ManifestVersion, bool) {
	for i := range m.Versions {
		if m.Versions[i].ID == id {
			return &m.Versions[i], true
		}
	}
	return nil, false
}

// Releases returns only versions of type "release" in manifest order (newest first)
func (m *Manifest) Releases() []ManifestVersion {
	releases := make([]ManifestVersion, 0, len(m.Versions))
	for _, v := range m.Versions {
		if v.Type == "release" {
			releases = append(releases, v)
		}
	}
	return releases
}

// Client fetches manifests and version descriptors
type Client struct {
	http   *http.Client
	logger *log.Logger
	// ManifestURL defaults to DefaultManifestURL
	ManifestURL string
}

// New returns a new Client. A nil httpClient uses http.DefaultClient
func New(httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:        httpClient,
		logger:      cmdlog.OrDefault(logger),
		ManifestURL: DefaultManifestURL,
	}
}

// FetchManifest fetches the version manifest
func (c *Client) FetchManifest(ctx context.Context) (*Manifest, error) {
	body, err := c.get(ctx, c.ManifestURL)
	if err != nil {
		return nil, err
	}
	manifest := &Manifest{}
	if err := json.Unmarshal(body, manifest); err != nil {
		return nil, merrors.Parse("version manifest", err)
	}
	return manifest, nil
}

// FetchVersion looks up id in the manifest and fetches its descriptor.
// The raw descriptor is returned too, so it can be persisted verbatim.
func (c *Client) FetchVersion(ctx context.Context, id string) (*Version, []byte, error) {
	manifest, err := c.FetchManifest(ctx)
	if err != nil {
		return nil, nil, err
	}
	entry, ok := manifest.Find(id)
	if !ok {
		return nil, nil, &merrors.Error{Kind: merrors.KindOther, Op: "minecraft " + id, Err: ErrVersionNotFound}
	}

	raw, err := c.get(ctx, entry.URL)
	if err != nil {
		return nil, nil, err
	}
	if entry.Sha1 != "" {
		if actual := downloadmgr.Sha1Hex(raw); actual != entry.Sha1 {
			return nil, nil, merrors.Sha1Mismatch(entry.URL, entry.Sha1, actual)
		}
	}

	version, err := ParseVersion(raw)
	if err != nil {
		return nil, nil, err
	}
	return version, raw, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, merrors.HTTP(url, err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, merrors.HTTP(url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, merrors.DownloadFailed(url, res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, merrors.HTTP(url, err)
	}
	return body, nil
}
