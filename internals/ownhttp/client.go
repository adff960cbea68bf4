package ownhttp

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent with every request unless overwritten in Options
const DefaultUserAgent = "mclaunch/0.1.0 (+https://github.com/minepkg/mclaunch)"

// Options configure the shared http client
type Options struct {
	UserAgent string
	// RateLimit is the maximum amount of requests per second. 0 disables throttling
	RateLimit float64
	// Timeout for the complete request. 0 means no timeout (large downloads)
	Timeout time.Duration
}

// New returns a new http.Client with the AddHeaderTransport (setting the User-Agent header)
func New() *http.Client {
	return NewWithOptions(Options{})
}

// NewWithOptions returns a new http.Client that sets the User-Agent header and
// optionally throttles requests
func NewWithOptions(opts Options) *http.Client {
	var transport http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   16,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		transport = NewThrottleTransport(transport, rate.NewLimiter(rate.Limit(opts.RateLimit), burst))
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &http.Client{
		Transport: NewAddHeaderTransport(transport, ua),
		Timeout:   opts.Timeout,
	}
}
