package downloadmgr

import (
	"context"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/minepkg/mclaunch/internals/cmdlog"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism is the amount of concurrent downloads of a batch
const DefaultParallelism = 8

// Entry is a single file to download
type Entry struct {
	URL  string
	Dest string
	// Sha1 is optional. If set the body is validated before it is written
	Sha1 string
	// Size is optional and only informational
	Size int64
}

// Failure is a failed Entry of a batch
type Failure struct {
	Entry Entry
	Err   error
}

func (f Failure) Error() string {
	return f.Entry.URL + ": " + f.Err.Error()
}

// Progress is emitted after every completed file
type Progress struct {
	URL   string
	Dest  string
	Bytes int
	// Completed and Total are only set for batch downloads
	Completed int
	Total     int
}

// Manager downloads files with bounded parallelism.
// It is safe for concurrent use and meant to be shared by every installer.
type Manager struct {
	client *http.Client
	logger *log.Logger

	// Parallelism is the amount of concurrent downloads used by DownloadBatch
	Parallelism int
	// OnProgress is called after every successfully written file. It can not influence the result
	OnProgress func(p Progress)
}

// New returns a new download manager. A nil client uses the default client
func New(client *http.Client, logger *log.Logger) *Manager {
	if client == nil {
		client = &defaultClient
	}
	return &Manager{
		client:      client,
		logger:      cmdlog.OrDefault(logger),
		Parallelism: DefaultParallelism,
	}
}

// DownloadBatch downloads all entries and returns every failed one.
// A failing entry never stops the others, the caller decides if partial success is acceptable.
// No order is guaranteed between entries.
func (m *Manager) DownloadBatch(ctx context.Context, entries []Entry) []Failure {
	if len(entries) == 0 {
		return nil
	}

	var (
		mu        sync.Mutex
		failures  []Failure
		completed int
	)

	g := errgroup.Group{}
	g.SetLimit(m.parallelism())

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			n, err := m.download(ctx, entry.URL, entry.Dest, entry.Sha1)

			mu.Lock()
			if err != nil {
				failures = append(failures, Failure{Entry: entry, Err: err})
				mu.Unlock()
				m.logger.Debug("download failed", "url", entry.URL, "err", err)
				return nil
			}
			completed++
			p := Progress{URL: entry.URL, Dest: entry.Dest, Bytes: n, Completed: completed, Total: len(entries)}
			mu.Unlock()

			m.notify(p)
			return nil
		})
	}
	// never returns an error, failures are collected above
	_ = g.Wait()

	return failures
}

func (m *Manager) parallelism() int {
	if m.Parallelism < 1 {
		return DefaultParallelism
	}
	return m.Parallelism
}

func (m *Manager) notify(p Progress) {
	if m.OnProgress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("progress observer panicked", "panic", r)
		}
	}()
	m.OnProgress(p)
}
