// Package vocabfile serialises the final ordered vocabulary as a UTF-8 text
// file, one entry per line, and publishes it atomically: the file is written
// under a temporary name and renamed into place only after a successful
// sync, so readers never observe a partially-written vocabulary.
package vocabfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Writer writes vocabulary files into a fixed destination directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer that publishes into dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// AutoName derives a destination name that is unique within this process;
// callers sharing a workspace across processes should additionally reserve
// the name through the workspace registry.
func AutoName() string {
	return fmt.Sprintf("vocab_%d", time.Now().UnixNano())
}

// Entry is one output line: the token and the score emitted alongside it
// when frequency storage is enabled.
type Entry struct {
	Token string
	Score float64
}

// Write publishes the ordered entries under the given name and returns the
// final path. With storeFrequency each line is "<score> <token>", otherwise
// the token alone. Any failure leaves no visible file behind.
func (w *Writer) Write(name string, entries []Entry, storeFrequency bool) (string, error) {
	if name == "" {
		return "", fmt.Errorf("writing vocabulary: name must not be empty")
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating vocabulary directory: %w", err)
	}
	finalPath := filepath.Join(w.dir, name)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp vocabulary file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	buf := bufio.NewWriter(f)
	for _, e := range entries {
		if storeFrequency {
			if _, err := buf.WriteString(strconv.FormatFloat(e.Score, 'g', -1, 64)); err != nil {
				return "", fmt.Errorf("writing vocabulary entry: %w", err)
			}
			if err := buf.WriteByte(' '); err != nil {
				return "", fmt.Errorf("writing vocabulary entry: %w", err)
			}
		}
		if _, err := buf.WriteString(e.Token); err != nil {
			return "", fmt.Errorf("writing vocabulary entry: %w", err)
		}
		if err := buf.WriteByte('\n'); err != nil {
			return "", fmt.Errorf("writing vocabulary entry: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return "", fmt.Errorf("flushing vocabulary file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing vocabulary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing vocabulary file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("publishing vocabulary file: %w", err)
	}
	return finalPath, nil
}
