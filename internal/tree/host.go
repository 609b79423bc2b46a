package tree

import (
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// HostTree is an in-memory Tree.
//
// Thread-safety: all methods are safe for concurrent use.
type HostTree struct {
	Base

	mu    sync.RWMutex
	files map[string][]byte
}

// Empty returns a new tree with no files.
func Empty() *HostTree {
	return &HostTree{files: make(map[string][]byte)}
}

// NormalizePath cleans p, roots it at "/" and applies NFC normalization so
// visually identical paths map to the same entry.
func NormalizePath(p string) string {
	p = norm.NFC.String(strings.ReplaceAll(p, "\\", "/"))
	return path.Clean("/" + p)
}

func (t *HostTree) Exists(p string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.files[NormalizePath(p)]
	return ok
}

func (t *HostTree) Read(p string) ([]byte, error) {
	p = NormalizePath(p)

	t.mu.RLock()
	defer t.mu.RUnlock()

	content, ok := t.files[p]
	if !ok {
		return nil, &PathError{Op: "read", Path: p, Err: ErrFileNotFound}
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (t *HostTree) Create(p string, content []byte) error {
	p = NormalizePath(p)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.files[p]; ok {
		return &PathError{Op: "create", Path: p, Err: ErrFileExists}
	}
	t.files[p] = append([]byte(nil), content...)
	return nil
}

func (t *HostTree) Overwrite(p string, content []byte) error {
	p = NormalizePath(p)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.files[p]; !ok {
		return &PathError{Op: "overwrite", Path: p, Err: ErrFileNotFound}
	}
	t.files[p] = append([]byte(nil), content...)
	return nil
}

func (t *HostTree) Delete(p string) error {
	p = NormalizePath(p)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.files[p]; !ok {
		return &PathError{Op: "delete", Path: p, Err: ErrFileNotFound}
	}
	delete(t.files, p)
	return nil
}

func (t *HostTree) Files() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.files))
	for p := range t.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Copy returns a new HostTree holding every file of src.
func Copy(src Tree) (*HostTree, error) {
	out := Empty()
	for _, p := range src.Files() {
		b, err := src.Read(p)
		if err != nil {
			return nil, err
		}
		out.files[NormalizePath(p)] = b
	}
	return out, nil
}
