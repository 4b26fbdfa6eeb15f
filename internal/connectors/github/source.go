package github

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.LayerSource = (*Source)(nil)

// Source offers the <path>/<id>.tl files of a GitHub repository as layers.
//
// ListLayers pins the branch head; FetchLayer reads file contents at that
// commit so a run sees one consistent snapshot.
type Source struct {
	client *Client
	cfg    Config

	mu  sync.Mutex
	ref string
}

// NewSource creates a layer source for the repository in cfg.
func NewSource(client *Client, cfg Config) *Source {
	return &Source{client: client, cfg: cfg}
}

// Name identifies the source as github:owner/repo@branch.
func (s *Source) Name() string {
	return fmt.Sprintf("github:%s/%s@%s", s.cfg.Owner, s.cfg.Repo, s.cfg.Branch)
}

// ListLayers walks the tree of the branch head down to the layer directory
// and returns the layer files in it, ascending by id.
func (s *Source) ListLayers(ctx context.Context) ([]domain.LayerFile, error) {
	head, err := s.client.LatestCommit(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Branch, "")
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", s.cfg.Branch, err)
	}

	treeSHA := head.GetCommit().GetTree().GetSHA()
	for _, segment := range strings.Split(s.cfg.Path, "/") {
		tree, err := s.client.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, treeSHA)
		if err != nil {
			return nil, err
		}
		treeSHA = ""
		for _, e := range tree.Entries {
			if e.GetType() == "tree" && e.GetPath() == segment {
				treeSHA = e.GetSHA()
				break
			}
		}
		if treeSHA == "" {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, s.cfg.Path)
		}
	}

	dir, err := s.client.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, treeSHA)
	if err != nil {
		return nil, err
	}

	var files []domain.LayerFile
	for _, e := range dir.Entries {
		if e.GetType() != "blob" {
			continue
		}
		id, ok := domain.ParseLayerFileName(e.GetPath())
		if !ok {
			logger.Debug("github: ignoring %s", e.GetPath())
			continue
		}
		files = append(files, domain.LayerFile{
			LayerID:  id,
			Path:     s.cfg.filePath(e.GetPath()),
			Revision: e.GetSHA(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].LayerID < files[j].LayerID })

	s.mu.Lock()
	s.ref = head.GetSHA()
	s.mu.Unlock()

	logger.Debug("github: %d layer files at %s", len(files), head.GetSHA())
	return files, nil
}

// FetchLayer reads a layer file and dates it by the newest commit that
// touched it.
func (s *Source) FetchLayer(ctx context.Context, file domain.LayerFile) (domain.RawLayer, error) {
	s.mu.Lock()
	ref := s.ref
	s.mu.Unlock()
	if ref == "" {
		ref = s.cfg.Branch
	}

	commit, err := s.client.LatestCommit(ctx, s.cfg.Owner, s.cfg.Repo, ref, file.Path)
	if err != nil {
		return domain.RawLayer{}, fmt.Errorf("date %s: %w", path.Base(file.Path), err)
	}
	date := commit.GetCommit().GetCommitter().GetDate()
	if date.IsZero() {
		date = commit.GetCommit().GetAuthor().GetDate()
	}
	if date.IsZero() {
		return domain.RawLayer{}, fmt.Errorf("date %s: commit %s has no date", path.Base(file.Path), commit.GetSHA())
	}

	text, err := s.client.GetFileContent(ctx, s.cfg.Owner, s.cfg.Repo, file.Path, ref)
	if err != nil {
		return domain.RawLayer{}, fmt.Errorf("fetch %s: %w", path.Base(file.Path), err)
	}

	utc := date.UTC()
	return domain.RawLayer{
		LayerID:      file.LayerID,
		ReleaseYear:  utc.Year(),
		ReleaseMonth: utc.Month(),
		Text:         text,
	}, nil
}
