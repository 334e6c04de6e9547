package library

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Report is the output sink for the replay. It is passed explicitly through
// the command processor rather than held as package state.
type Report struct {
	w   *bufio.Writer
	c   io.Closer
	err error
}

// NewReport wraps an arbitrary writer, typically a buffer in tests.
func NewReport(w io.Writer) *Report {
	return &Report{w: bufio.NewWriter(w)}
}

// CreateReport opens (truncating) the report file at path.
func CreateReport(path string) (*Report, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report file: %w", err)
	}
	return &Report{w: bufio.NewWriter(f), c: f}, nil
}

// WriteLine appends one report line. Write errors are sticky and surface
// from Close, so callers emit unconditionally.
func (r *Report) WriteLine(line string) {
	if r.err != nil {
		return
	}
	if _, err := r.w.WriteString(line + "\n"); err != nil {
		r.err = err
	}
}

// Close flushes buffered lines and closes the underlying file, returning the
// first error encountered during the run.
func (r *Report) Close() error {
	if r.err != nil {
		return r.err
	}
	if err := r.w.Flush(); err != nil {
		return err
	}
	if r.c != nil {
		return r.c.Close()
	}
	return nil
}
