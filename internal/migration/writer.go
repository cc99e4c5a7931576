package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fabric-tools/adf2fabric/internal/jsontree"
	"github.com/spf13/afero"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ErrDuplicateArtifact is returned by WriteJSON for a path already written in
// this run.
var ErrDuplicateArtifact = errors.New("artifact already written")

// Writer stores migration artifacts under a root directory. In dry-run mode
// it records the paths it would have written and touches nothing.
type Writer struct {
	fs     afero.Fs
	root   string
	dryRun bool

	mu      sync.Mutex
	written []string
	seen    map[string]bool
}

func NewWriter(fs afero.Fs, root string, dryRun bool) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs, root: root, dryRun: dryRun, seen: map[string]bool{}}
}

// WriteJSON writes v as indented JSON to rel under the root and returns the
// full path. Each path can be written once per Writer; paths that differ only
// in case count as the same file.
func (w *Writer) WriteJSON(rel string, v any) (string, error) {
	full := filepath.Join(w.root, rel)
	b, err := jsontree.MarshalIndent(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", rel, err)
	}
	if err := w.claim(full); err != nil {
		return "", err
	}
	if !w.dryRun {
		if err := w.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", filepath.Dir(full), err)
		}
		if err := afero.WriteFile(w.fs, full, b, os.FileMode(0o644)); err != nil {
			return "", fmt.Errorf("write %s: %w", full, err)
		}
	}
	w.mu.Lock()
	w.written = append(w.written, full)
	w.mu.Unlock()
	return full, nil
}

func (w *Writer) claim(full string) error {
	key := strings.ToLower(full)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[key] {
		return fmt.Errorf("%w: %s", ErrDuplicateArtifact, full)
	}
	w.seen[key] = true
	return nil
}

// Written returns the sorted artifact paths written (or planned) so far.
func (w *Writer) Written() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]string(nil), w.written...)
	sort.Strings(out)
	return out
}

// DryRun reports whether the writer skips filesystem writes.
func (w *Writer) DryRun() bool {
	return w.dryRun
}

// FileName turns an item name into a safe file name with the given
// extension.
func FileName(name, ext string) string {
	safe := unsafeFileChars.ReplaceAllString(name, "_")
	if safe == "" || safe == "." || safe == ".." {
		safe = "_"
	}
	return safe + ext
}

// UniqueFileNames returns one file name per item name, in order. Names that
// sanitize to the same file, ignoring case, get "-2", "-3" and so on in
// input order.
func UniqueFileNames(names []string, ext string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, name := range names {
		base := strings.TrimSuffix(FileName(name, ext), ext)
		candidate := base
		for n := 2; used[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		used[strings.ToLower(candidate)] = true
		out[i] = candidate + ext
	}
	return out
}
