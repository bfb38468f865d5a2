package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Loader resolves a source identifier to its text content.
// Implementations return ErrSourceMissing when the source does not exist.
type Loader interface {
	Load(ctx context.Context, source string) (string, error)
}

// FileLoader reads sources as UTF-8 files relative to Dir.
type FileLoader struct {
	Dir string
}

func (l FileLoader) Load(_ context.Context, source string) (string, error) {
	path := source
	if l.Dir != "" && !filepath.IsAbs(source) {
		path = filepath.Join(l.Dir, source)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
