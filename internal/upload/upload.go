// Package upload validates a selected CSV file and parses it.
//
// A file arrives as a single Selection regardless of how the user picked it
// (file input or drag-and-drop). Accept either rejects it with one of the
// sentinel errors below, or returns the raw bytes together with the parsed
// table. Rejection never has side effects.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/csvclassify/internal/tabular"
)

// DefaultMaxFileSize is the largest accepted upload (10 MiB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var (
	ErrNoFile       = errors.New("no file provided")
	ErrNotCSV       = errors.New("not a csv file")
	ErrFileTooLarge = errors.New("file too large")
	ErrEmptyFile    = errors.New("empty file")
)

// Selection is a "file selected" event.
type Selection struct {
	Name    string
	Size    int64
	Content io.Reader
}

// File describes an accepted upload.
type File struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SizeKB formats the size the way the upload summary shows it.
func (f File) SizeKB() string {
	return fmt.Sprintf("%.1f KB", float64(f.Size)/1024)
}

// Accepted is a validated, parsed upload. Data holds the file exactly as
// received so it can be forwarded to the classification service unchanged.
type Accepted struct {
	File  File
	Data  []byte
	Table tabular.Table
}

// Coordinator validates and parses uploads.
type Coordinator struct {
	maxSize int64
}

// NewCoordinator creates a Coordinator rejecting files larger than maxSize
// bytes. A non-positive maxSize selects DefaultMaxFileSize.
func NewCoordinator(maxSize int64) *Coordinator {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Coordinator{maxSize: maxSize}
}

// MaxSize returns the configured size limit in bytes.
func (c *Coordinator) MaxSize() int64 {
	return c.maxSize
}

// Validate checks the file name and declared size.
func (c *Coordinator) Validate(name string, size int64) error {
	if name == "" {
		return ErrNoFile
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return fmt.Errorf("%w: %s", ErrNotCSV, name)
	}
	if size > c.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, c.maxSize)
	}
	return nil
}

// Accept validates sel, reads it and parses it. The declared size is
// re-checked against the bytes actually read.
func (c *Coordinator) Accept(sel Selection) (*Accepted, error) {
	if sel.Content == nil {
		return nil, ErrNoFile
	}
	if err := c.Validate(sel.Name, sel.Size); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(sel.Content, c.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", sel.Name, err)
	}
	if int64(len(data)) > c.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes read", ErrFileTooLarge, c.maxSize)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode file %s: %w", sel.Name, err)
	}

	tbl := tabular.Parse(text)
	if tbl.Empty() {
		return nil, fmt.Errorf("%w: %s has no data rows", ErrEmptyFile, sel.Name)
	}

	return &Accepted{
		File:  File{Name: sel.Name, Size: int64(len(data))},
		Data:  data,
		Table: tbl,
	}, nil
}

// decodeText decodes data as UTF-8, dropping a leading byte order mark and
// replacing invalid sequences with U+FFFD.
func decodeText(data []byte) (string, error) {
	r := transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder())
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
