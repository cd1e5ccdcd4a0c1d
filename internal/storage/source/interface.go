// Package source reads the default CSV datasets from a local directory or
// an S3-compatible bucket.
package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/newthinker/sigchart/internal/config"
	"github.com/newthinker/sigchart/internal/core"
)

// Source defines the interface for dataset backends
type Source interface {
	// Open streams the named file. Missing files yield core.ErrNoData.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Put stores a file under name, replacing any existing one
	Put(ctx context.Context, name string, r io.Reader) error

	// List returns the CSV file names available
	List(ctx context.Context) ([]string, error)

	// Exists checks if the named file exists
	Exists(ctx context.Context, name string) (bool, error)
}

// New builds the backend selected by cfg.Source.
func New(cfg config.DataConfig) (Source, error) {
	switch cfg.Source {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown data source %q", cfg.Source))
	}
}

// ValidName rejects names that would escape the data root.
func ValidName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || path.Clean(name) != name {
		return core.WrapError(core.ErrNoData, fmt.Errorf("invalid file name %q", name))
	}
	return nil
}

func isCSV(name string) bool {
	return strings.EqualFold(path.Ext(name), ".csv")
}
