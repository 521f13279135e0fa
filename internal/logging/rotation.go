package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Rotation describes one rollover of a diagnostic log file.
type Rotation struct {
	Path   string
	Backup string
	// Size is the byte count of the file that was rolled over.
	Size int64
	// Err joins any backup rename or removal failures. The fresh file is
	// open regardless.
	Err error
}

// RotatingWriter writes the diagnostic log to a file and rolls it over to
// numbered backups (path.1 newest) once it would exceed its size limit. It is
// safe for concurrent use.
type RotatingWriter struct {
	mu       sync.Mutex
	f        *os.File
	path     string
	limit    int64
	keep     int
	size     int64
	onRotate func(Rotation)
}

// NewRotatingWriter opens path for appending, creating its directory.
// Non-positive limits fall back to 10 MB and 3 backups. onRotate, when set,
// runs after each rollover without the writer's lock held, so it may log.
func NewRotatingWriter(path string, maxSizeMB, maxBackups int, onRotate func(Rotation)) (*RotatingWriter, error) {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxBackups <= 0 {
		maxBackups = 3
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	rw := &RotatingWriter{
		path:     path,
		limit:    int64(maxSizeMB) * 1024 * 1024,
		keep:     maxBackups,
		onRotate: onRotate,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

// Path returns the active log file.
func (rw *RotatingWriter) Path() string {
	return rw.path
}

// Write appends p, rolling the file over first when p would push a non-empty
// file past the limit. A single oversized write still lands in one file.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	var rolled *Rotation
	if rw.size > 0 && rw.size+int64(len(p)) > rw.limit {
		r, err := rw.rollover()
		if err != nil {
			rw.mu.Unlock()
			return 0, fmt.Errorf("log rotation: %w", err)
		}
		rolled = &r
	}
	n, err := rw.f.Write(p)
	rw.size += int64(n)
	rw.mu.Unlock()

	if rolled != nil && rw.onRotate != nil {
		rw.onRotate(*rolled)
	}
	return n, err
}

// Close closes the active file.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.f == nil {
		return nil
	}
	err := rw.f.Close()
	rw.f = nil
	return err
}

// TeeWriter returns an io.Writer that writes to both w1 and w2.
func TeeWriter(w1, w2 io.Writer) io.Writer {
	return io.MultiWriter(w1, w2)
}

func (rw *RotatingWriter) open() error {
	f, err := os.OpenFile(rw.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	rw.f = f
	rw.size = info.Size()
	return nil
}

// rollover shifts backups up by one, dropping the oldest, and reopens path.
// Only a failure to reopen is fatal; shuffle problems are reported in
// Rotation.Err.
func (rw *RotatingWriter) rollover() (Rotation, error) {
	r := Rotation{Path: rw.path, Backup: rw.backup(1), Size: rw.size}
	var errs []error

	if rw.f != nil {
		if err := rw.f.Close(); err != nil {
			errs = append(errs, err)
		}
		rw.f = nil
	}

	if err := os.Remove(rw.backup(rw.keep)); err != nil && !os.IsNotExist(err) {
		errs = append(errs, err)
	}
	for i := rw.keep; i >= 1; i-- {
		if err := os.Rename(rw.backup(i-1), rw.backup(i)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	r.Err = errors.Join(errs...)

	if err := rw.open(); err != nil {
		return r, err
	}
	return r, nil
}

func (rw *RotatingWriter) backup(index int) string {
	if index == 0 {
		return rw.path
	}
	return fmt.Sprintf("%s.%d", rw.path, index)
}
