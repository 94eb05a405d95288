package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ts4z/ggsc/he"
	"github.com/ts4z/ggsc/paytable"
	"github.com/ts4z/ggsc/textutil"
)

const fileSuffix = ".json"

// FileStorage writes each export to <dir>/<tournament name>.json.
type FileStorage struct {
	dir string
}

var _ StructureStorage = &FileStorage{}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

func (s *FileStorage) Close() {
	// No resources to clean up
}

func (s *FileStorage) path(name string) (string, error) {
	if name == "" || !textutil.ValidTournamentName(name) {
		return "", he.HTTPCodedErrorf(400, "invalid tournament name %q", name)
	}
	return filepath.Join(s.dir, name+fileSuffix), nil
}

// SaveStructure writes the export with four-space indentation.  The file is
// written beside its final name and renamed over it.
func (s *FileStorage) SaveStructure(ctx context.Context, e *paytable.Export) (string, error) {
	path, err := s.path(e.TournamentName())
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding structure: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".ggsc-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *FileStorage) FetchStructure(ctx context.Context, name string) (*paytable.Export, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, he.New(404, fmt.Errorf("no such structure %q", name))
	}
	if err != nil {
		return nil, err
	}
	e := &paytable.Export{}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return e, nil
}

func (s *FileStorage) FetchStructureSlugs(ctx context.Context) ([]*paytable.StructureSlug, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+fileSuffix))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	slugs := []*paytable.StructureSlug{}
	for _, m := range matches {
		slugs = append(slugs, &paytable.StructureSlug{
			Name:     strings.TrimSuffix(filepath.Base(m), fileSuffix),
			Location: m,
		})
	}
	return slugs, nil
}
