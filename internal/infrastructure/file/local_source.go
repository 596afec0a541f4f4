package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrOutsideBaseDir = errors.New("import path escapes base directory")
	ErrNotCSV         = errors.New("import path is not a .csv file")
)

// LocalSource opens import files from a base directory on local disk.
// Relative paths are resolved against BaseDir. Neither relative nor absolute
// paths may leave it.
type LocalSource struct {
	BaseDir string
}

func NewLocalSource(baseDir string) *LocalSource {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalSource{BaseDir: baseDir}
}

func (s *LocalSource) Open(ctx context.Context, sourcePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(sourcePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return file, nil
}

func (s *LocalSource) resolve(sourcePath string) (string, error) {
	if !strings.EqualFold(filepath.Ext(sourcePath), ".csv") {
		return "", fmt.Errorf("%w: %s", ErrNotCSV, sourcePath)
	}

	base, err := filepath.Abs(s.BaseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}

	path := filepath.Clean(sourcePath)
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBaseDir, sourcePath)
	}
	return path, nil
}
