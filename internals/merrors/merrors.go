// Package merrors contains the error kinds shared by the installer and launch pipeline.
// Every *Error carries a coarse recoverability flag so callers can decide between
// retrying and giving up.
package merrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error
type Kind uint8

const (
	// KindOther is anything that does not fit a more specific kind
	KindOther Kind = iota
	// KindIO is a filesystem failure
	KindIO
	// KindHTTP is a transport level failure (dns, tls, connection reset …)
	KindHTTP
	// KindDownloadFailed is a response with a non success status
	KindDownloadFailed
	// KindSha1Mismatch is returned when a downloaded body does not match its digest
	KindSha1Mismatch
	// KindInvalidCoordinate is a malformed maven coordinate
	KindInvalidCoordinate
	// KindParse is a malformed json, xml or pom document
	KindParse
	// KindLoader is a structural failure in a loader install flow
	KindLoader
	// KindLoaderAPI is a failure reported by a loader metadata api
	KindLoaderAPI
	// KindJavaNotFound is returned when no usable java binary exists
	KindJavaNotFound
	// KindJavaExecution is a failure to start a java process
	KindJavaExecution
	// KindEmptyClasspath is returned when nothing could be put on the classpath
	KindEmptyClasspath
	// KindMissingMainClass is returned when an instance has no main class to launch
	KindMissingMainClass
)

var kindNames = map[Kind]string{
	KindOther:             "other",
	KindIO:                "io",
	KindHTTP:              "http",
	KindDownloadFailed:    "download failed",
	KindSha1Mismatch:      "sha1 mismatch",
	KindInvalidCoordinate: "invalid maven coordinate",
	KindParse:             "parse",
	KindLoader:            "loader",
	KindLoaderAPI:         "loader api",
	KindJavaNotFound:      "java not found",
	KindJavaExecution:     "java execution",
	KindEmptyClasspath:    "empty classpath",
	KindMissingMainClass:  "missing main class",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is the error type returned by all pipeline packages
type Error struct {
	Kind Kind
	// Op is a short description of what was attempted
	Op string
	// Path is set for filesystem and integrity errors
	Path string
	// URL is set for network errors
	URL string
	// Status is the http status code of a KindDownloadFailed error
	Status int
	// Expected and Actual are set for KindSha1Mismatch
	Expected string
	Actual   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	switch e.Kind {
	case KindIO:
		fmt.Fprintf(&b, "io error at %s", e.Path)
	case KindDownloadFailed:
		fmt.Fprintf(&b, "download of %s failed with status %d", e.URL, e.Status)
	case KindSha1Mismatch:
		fmt.Fprintf(&b, "sha1 mismatch for %s (expected %s, got %s)", e.Path, e.Expected, e.Actual)
	case KindHTTP:
		fmt.Fprintf(&b, "request to %s failed", e.URL)
	default:
		b.WriteString(e.Kind.String())
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Recoverable reports whether retrying the failed operation could succeed
func (e *Error) Recoverable() bool {
	switch e.Kind {
	case KindIO, KindHTTP, KindSha1Mismatch:
		return true
	case KindDownloadFailed:
		return e.Status >= 500 || e.Status == http.StatusTooManyRequests
	case KindLoaderAPI:
		return errors.Is(e.Err, ErrServerError)
	default:
		return false
	}
}

var (
	// ErrServerError marks a loader api failure caused by a 5xx response
	ErrServerError = errors.New("server error")
)

// IsRecoverable walks the error chain and reports the recoverability of the first *Error.
// Errors that are not an *Error are treated as terminal.
func IsRecoverable(err error) bool {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Recoverable()
	}
	return false
}

// KindOf returns the kind of the first *Error in the chain
func KindOf(err error) Kind {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Kind
	}
	return KindOther
}

// IO wraps a filesystem error
func IO(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Err: err}
}

// HTTP wraps a transport error
func HTTP(url string, err error) *Error {
	return &Error{Kind: KindHTTP, URL: url, Err: err}
}

// DownloadFailed is returned for a response with a non success status code
func DownloadFailed(url string, status int) *Error {
	return &Error{Kind: KindDownloadFailed, URL: url, Status: status}
}

// Sha1Mismatch is returned when the digest of a download does not match
func Sha1Mismatch(path, expected, actual string) *Error {
	return &Error{Kind: KindSha1Mismatch, Path: path, Expected: expected, Actual: actual}
}

// Parse wraps a document decoding error
func Parse(what string, err error) *Error {
	return &Error{Kind: KindParse, Op: "parse " + what, Err: err}
}

// Loader returns a loader protocol error
func Loader(format string, a ...interface{}) *Error {
	return &Error{Kind: KindLoader, Err: fmt.Errorf(format, a...)}
}

// LoaderAPI returns a loader metadata api error
func LoaderAPI(format string, a ...interface{}) *Error {
	return &Error{Kind: KindLoaderAPI, Err: fmt.Errorf(format, a...)}
}

// New returns an error of the given kind with a formatted message
func New(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, a...)}
}
