// Package pack reads and extracts entries of zip and jar archives
package pack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/mholt/archiver/v3"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/pkg/errors"
)

var (
	// ErrEntryNotFound is returned if an archive does not contain the requested entry
	ErrEntryNotFound = errors.New("entry not found in archive")
)

// Reader for a zip (or jar) file on disk
type Reader struct {
	path string
	zip  *archiver.Zip
}

// Open returns a Reader for the archive at path
func Open(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, merrors.IO(path, err)
	}
	return &Reader{path: path, zip: archiver.NewZip()}, nil
}

// Path returns the archive location
func (r *Reader) Path() string {
	return r.path
}

func (r *Reader) walk(fn func(name string, f archiver.File) error) error {
	err := r.zip.Walk(r.path, func(f archiver.File) error {
		if f.IsDir() {
			return nil
		}
		return fn(entryName(f), f)
	})
	if err != nil {
		return errors.Wrapf(err, "reading %s", r.path)
	}
	return nil
}

// entryName returns the full slash separated name. f.Name() only has the base name.
// archiver walks zips with klauspost/compress, so that is the header type
func entryName(f archiver.File) string {
	switch h := f.Header.(type) {
	case zip.FileHeader:
		return h.Name
	case *zip.FileHeader:
		return h.Name
	}
	return f.Name()
}

// Names returns the names of all files in the archive
func (r *Reader) Names() ([]string, error) {
	var names []string
	err := r.walk(func(name string, f archiver.File) error {
		names = append(names, name)
		return nil
	})
	return names, err
}

// ReadFiles returns the content of every requested entry that exists
func (r *Reader) ReadFiles(names ...string) (map[string][]byte, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	found := make(map[string][]byte, len(names))
	err := r.walk(func(name string, f archiver.File) error {
		if _, ok := wanted[name]; !ok {
			return nil
		}
		buf, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		found[name] = buf
		if len(found) == len(wanted) {
			return archiver.ErrStopWalk
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ReadFile returns the content of a single entry
func (r *Reader) ReadFile(name string) ([]byte, error) {
	files, err := r.ReadFiles(name)
	if err != nil {
		return nil, err
	}
	buf, ok := files[name]
	if !ok {
		return nil, errors.Wrapf(ErrEntryNotFound, "%s in %s", name, filepath.Base(r.path))
	}
	return buf, nil
}

// ExtractFunc maps an entry name to its destination. Returning false skips the entry
type ExtractFunc func(name string) (dest string, ok bool)

// Extract writes every entry selected by target and returns how many were written.
// Existing files are overwritten.
func (r *Reader) Extract(target ExtractFunc) (int, error) {
	written := 0
	err := r.walk(func(name string, f archiver.File) error {
		dest, ok := target(name)
		if !ok {
			return nil
		}
		if err := writeEntry(f, dest); err != nil {
			return err
		}
		written++
		return nil
	})
	return written, err
}

// ExtractTo extracts the entries accepted by keep below dir, keeping their relative path
func (r *Reader) ExtractTo(dir string, keep func(name string) bool) (int, error) {
	var invalid error
	n, err := r.Extract(func(name string) (string, bool) {
		if !keep(name) {
			return "", false
		}
		if err := sanitizeExtractPath(name, dir); err != nil {
			invalid = err
			return "", false
		}
		return filepath.Join(dir, filepath.FromSlash(name)), true
	})
	if err != nil {
		return n, err
	}
	return n, invalid
}

func writeEntry(src io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return merrors.IO(dest, err)
	}
	target, err := os.Create(dest)
	if err != nil {
		return merrors.IO(dest, err)
	}
	if _, err := io.Copy(target, src); err != nil {
		target.Close()
		return merrors.IO(dest, err)
	}
	if err := target.Close(); err != nil {
		return merrors.IO(dest, err)
	}
	return nil
}

// stolen from https://github.com/mholt/archiver/v3/blob/e4ef56d48eb029648b0e895bb0b6a393ef0829c3/archiver.go#L110-L119
func sanitizeExtractPath(filePath string, destination string) error {
	// to avoid zip slip (writing outside of the destination), we resolve
	// the target path, and make sure it's nested in the intended
	// destination, or bail otherwise.
	destpath := filepath.Join(destination, filePath)
	if !strings.HasPrefix(destpath, filepath.Clean(destination)+string(os.PathSeparator)) {
		return fmt.Errorf("%s: illegal file path", filePath)
	}
	return nil
}
