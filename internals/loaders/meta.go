package loaders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/minepkg/mclaunch/internals/merrors"
)

// fetch GETs url and returns the body. Non 2xx responses are loader api errors
func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, merrors.HTTP(url, err)
	}
	req.Header.Set("Accept", "application/json, application/xml")

	res, err := client.Do(req)
	if err != nil {
		return nil, merrors.HTTP(url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if res.StatusCode >= 500 {
			return nil, merrors.LoaderAPI("%s returned %d: %w", url, res.StatusCode, merrors.ErrServerError)
		}
		return nil, merrors.LoaderAPI("%s returned %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, merrors.HTTP(url, err)
	}
	return body, nil
}

// fetchJSON GETs url and decodes the json body into v
func fetchJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	body, err := fetch(ctx, client, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return merrors.Parse(url, err)
	}
	return nil
}
