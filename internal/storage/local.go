package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalArchive stores run artifacts on the local filesystem. Used when
// no Azure storage account is configured.
type LocalArchive struct {
	root string
}

var _ Archive = (*LocalArchive)(nil)

func NewLocalArchive(root string) (*LocalArchive, error) {
	if root == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &LocalArchive{root: root}, nil
}

func (a *LocalArchive) Store(name string, data []byte) error {
	path := filepath.Join(a.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating archive subdirectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing archive file %s: %w", name, err)
	}
	return nil
}

func (a *LocalArchive) Retrieve(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, fmt.Errorf("reading archive file %s: %w", name, err)
	}
	return data, nil
}

func (a *LocalArchive) List(prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(a.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(a.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (a *LocalArchive) Delete(name string) error {
	if err := os.Remove(filepath.Join(a.root, filepath.FromSlash(name))); err != nil {
		return fmt.Errorf("deleting archive file %s: %w", name, err)
	}
	return nil
}
