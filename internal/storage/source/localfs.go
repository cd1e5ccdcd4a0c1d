package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/newthinker/sigchart/internal/core"
)

// LocalFS implements Source for a local directory
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a new LocalFS source
func NewLocalFS(basePath string) (*LocalFS, error) {
	if basePath == "" {
		return nil, core.WrapError(core.ErrConfigMissing, errors.New("localfs path is empty"))
	}
	return &LocalFS{basePath: basePath}, nil
}

func (l *LocalFS) fullPath(name string) string {
	return filepath.Join(l.basePath, name)
}

func (l *LocalFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(l.fullPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("%s not found", name))
	}
	if err != nil {
		return nil, core.WrapError(core.ErrSourceUnavailable, err)
	}
	return f, nil
}

func (l *LocalFS) Put(ctx context.Context, name string, r io.Reader) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(l.basePath, 0755); err != nil {
		return fmt.Errorf("creating base path: %w", err)
	}

	tmp, err := os.CreateTemp(l.basePath, "."+name+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), l.fullPath(name))
}

func (l *LocalFS) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.basePath)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, core.WrapError(core.ErrSourceUnavailable, err)
	}

	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && isCSV(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (l *LocalFS) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidName(name); err != nil {
		return false, err
	}
	info, err := os.Stat(l.fullPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
