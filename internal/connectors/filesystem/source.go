package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
)

// Ensure Source implements the interfaces.
var (
	_ driven.LayerSource  = (*Source)(nil)
	_ driven.LayerWatcher = (*Source)(nil)
)

// Source offers the layer files of one directory. Subdirectories are not
// searched.
type Source struct {
	dir string
}

// NewSource creates a layer source for dir.
func NewSource(dir string) (*Source, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: layer directory is empty", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	return &Source{dir: abs}, nil
}

// Name identifies the source as dir:<absolute path>.
func (s *Source) Name() string {
	return "dir:" + s.dir
}

// ListLayers returns the layer files in the directory, ascending by id.
func (s *Source) ListLayers(ctx context.Context) ([]domain.LayerFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}

	var files []domain.LayerFile
	for _, e := range entries {
		if !e.Type().IsRegular() || isHidden(e.Name()) {
			continue
		}
		id, ok := domain.ParseLayerFileName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, layerFile(id, filepath.Join(s.dir, e.Name()), info))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].LayerID < files[j].LayerID })
	return files, nil
}

// FetchLayer reads a layer file, dating it by its modification time.
func (s *Source) FetchLayer(ctx context.Context, file domain.LayerFile) (domain.RawLayer, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawLayer{}, err
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return domain.RawLayer{}, fmt.Errorf("stat %s: %w", file.Path, err)
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return domain.RawLayer{}, fmt.Errorf("read %s: %w", file.Path, err)
	}

	modified := info.ModTime().UTC()
	return domain.RawLayer{
		LayerID:      file.LayerID,
		ReleaseYear:  modified.Year(),
		ReleaseMonth: modified.Month(),
		Text:         string(data),
	}, nil
}

func layerFile(id int, path string, info os.FileInfo) domain.LayerFile {
	return domain.LayerFile{
		LayerID:  id,
		Path:     path,
		Revision: info.ModTime().UTC().Format(time.RFC3339Nano),
	}
}

// isHidden reports whether a file name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
