package ownhttp

import "net/http"

// AddHeaderTransport sets the User-Agent header on every request that does not have one
type AddHeaderTransport struct {
	T         http.RoundTripper
	UserAgent string
}

func (adt *AddHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		// RoundTrippers must not modify the original request
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", adt.UserAgent)
	}
	return adt.T.RoundTrip(req)
}

// NewAddHeaderTransport wraps T. A nil T uses http.DefaultTransport
func NewAddHeaderTransport(T http.RoundTripper, userAgent string) *AddHeaderTransport {
	if T == nil {
		T = http.DefaultTransport
	}
	return &AddHeaderTransport{T, userAgent}
}
