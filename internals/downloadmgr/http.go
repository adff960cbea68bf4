package downloadmgr

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minepkg/mclaunch/internals/merrors"
)

var defaultClient = http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// DownloadFile downloads url to dest. Parent directories are created.
// If expectedSha1 is set the in memory body is validated first and nothing is written on mismatch.
// The file is closed before DownloadFile returns.
func (m *Manager) DownloadFile(ctx context.Context, url string, dest string, expectedSha1 string) error {
	n, err := m.download(ctx, url, dest, expectedSha1)
	if err != nil {
		return err
	}
	m.notify(Progress{URL: url, Dest: dest, Bytes: n})
	return nil
}

func (m *Manager) download(ctx context.Context, url string, dest string, expectedSha1 string) (int, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return 0, merrors.IO(dir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, merrors.HTTP(url, err)
	}

	res, err := m.client.Do(req)
	if err != nil {
		return 0, merrors.HTTP(url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return 0, merrors.DownloadFailed(url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, merrors.HTTP(url, err)
	}

	if expectedSha1 != "" {
		actual := Sha1Hex(body)
		if !strings.EqualFold(actual, expectedSha1) {
			return 0, merrors.Sha1Mismatch(dest, expectedSha1, actual)
		}
	}

	if err := writeFile(dest, body); err != nil {
		return 0, err
	}
	m.logger.Debug("downloaded", "url", url, "dest", dest)
	return len(body), nil
}

func writeFile(dest string, body []byte) error {
	f, err := os.Create(dest)
	if err != nil {
		return merrors.IO(dest, err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return merrors.IO(dest, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return merrors.IO(dest, err)
	}
	if err := f.Close(); err != nil {
		return merrors.IO(dest, err)
	}
	return nil
}

// Sha1Hex returns the lowercase hex sha1 of data
func Sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// NeedsDownload reports whether dest is missing or (if expected is set) has a different sha1
func NeedsDownload(dest string, expected string) bool {
	if expected == "" {
		_, err := os.Stat(dest)
		return err != nil
	}
	f, err := os.Open(dest)
	if err != nil {
		return true
	}
	defer f.Close()

	hasher := sha1.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return true
	}
	return !strings.EqualFold(hex.EncodeToString(hasher.Sum(nil)), expected)
}

// FilterMissing returns the entries that still need to be downloaded
func FilterMissing(entries []Entry) []Entry {
	missing := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if NeedsDownload(e.Dest, e.Sha1) {
			missing = append(missing, e)
		}
	}
	return missing
}
