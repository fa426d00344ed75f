// Package fileutil provides the destination-file handling shared by shift and restore.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrExists is returned in non-force mode when the destination already exists.
	ErrExists = errors.New("destination already exists")
	// ErrNotRegular is returned when the destination exists but is not a regular file.
	ErrNotRegular = errors.New("destination is not a regular file")
)

// Destination is an output file under construction.
// Nothing is left at Path unless Commit succeeds, except in non-force mode
// where the reserved file is removed again by Abort.
type Destination struct {
	// File receives the output bytes.
	File *os.File
	// Path is the final location of the output.
	Path string

	// tmpName is set in force mode, where the output is renamed over Path on commit.
	tmpName string
	closed  bool
}

// OpenDestination prepares path for writing.
//
// With force unset the file is created exclusively and ErrExists is returned if it is already present.
// With force set the output goes to a temporary sibling that replaces path on Commit,
// so an existing file keeps its content if the write fails.
func OpenDestination(path string, force bool, perm fs.FileMode) (*Destination, error) {
	if !force {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm) //nolint:gosec // path is built by the caller
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return nil, fmt.Errorf("%w: %q", ErrExists, path)
			}

			return nil, fmt.Errorf("creating %q: %w", path, err)
		}

		return &Destination{File: file, Path: path}, nil
	}

	if info, err := os.Lstat(path); err == nil && !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q", ErrNotRegular, path)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		tmpFile.Close()           //nolint:errcheck,gosec // best-effort cleanup
		os.Remove(tmpFile.Name()) //nolint:errcheck,gosec // best-effort cleanup

		return nil, fmt.Errorf("setting file permissions: %w", err)
	}

	return &Destination{File: tmpFile, Path: path, tmpName: tmpFile.Name()}, nil
}

// Commit closes the output and moves it into place.
func (d *Destination) Commit() error {
	d.closed = true

	if err := d.File.Close(); err != nil {
		d.remove()

		return fmt.Errorf("closing output file: %w", err)
	}

	if d.tmpName == "" {
		return nil
	}

	if err := os.Rename(d.tmpName, d.Path); err != nil {
		os.Remove(d.tmpName) //nolint:errcheck,gosec // best-effort cleanup

		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// Abort closes and discards the output. It is a no-op after Commit.
func (d *Destination) Abort() {
	if d.closed {
		return
	}

	d.closed = true

	d.File.Close() //nolint:errcheck,gosec // best-effort cleanup
	d.remove()
}

// Name is the file currently being written: the temporary file in force mode,
// Path otherwise.
func (d *Destination) Name() string {
	if d.tmpName != "" {
		return d.tmpName
	}

	return d.Path
}

// CleanupOnError aborts the destination if *errp is non-nil.
// Meant to be deferred right after OpenDestination.
func (d *Destination) CleanupOnError(errp *error) {
	if *errp != nil {
		d.Abort()
	}
}

func (d *Destination) remove() {
	if d.tmpName != "" {
		os.Remove(d.tmpName) //nolint:errcheck,gosec // best-effort cleanup

		return
	}

	os.Remove(d.Path) //nolint:errcheck,gosec // best-effort cleanup
}

// FinalizeOutput optionally preserves timestamps and returns the output file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}
