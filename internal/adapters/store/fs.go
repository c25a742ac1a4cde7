package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

// FSStore keeps one JSON file per document under <root>/<collection>/<id>.json.
// This matches the layout earlier tooling wrote, so an existing out/ tree
// keeps working. Listing is newest-first by file mtime.
type FSStore struct {
	root   string
	logger *zap.Logger
}

func NewFSStore(root string, logger *zap.Logger) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{root: root, logger: logger}, nil
}

func (s *FSStore) path(collection, id string) string {
	return filepath.Join(s.root, collection, id+".json")
}

func (s *FSStore) Load(ctx context.Context, collection, id string) ([]byte, error) {
	doc, err := os.ReadFile(s.path(collection, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *FSStore) Save(ctx context.Context, collection, id string, doc []byte) error {
	path := s.path(collection, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, doc, 0o644)
}

func (s *FSStore) List(ctx context.Context, collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type fileInfo struct {
		id    string
		mtime int64
	}
	var files []fileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			id:    strings.TrimSuffix(entry.Name(), ".json"),
			mtime: info.ModTime().UnixNano(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime > files[j].mtime })

	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.id
	}
	return ids, nil
}
