package ownhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAgentIsSet(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewWithOptions(Options{UserAgent: "test-agent/1"})
	res, err := client.Get(srv.URL)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "test-agent/1", got)
}

func TestExplicitUserAgentWins(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")

	res, err := New().Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "custom", got)
}

func TestThrottle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewWithOptions(Options{RateLimit: 10})
	start := time.Now()
	for i := 0; i < 12; i++ {
		res, err := client.Get(srv.URL)
		require.NoError(t, err)
		res.Body.Close()
	}
	// burst of 10, the remaining two have to wait for new tokens
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}
