package dbcache

import (
	"context"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ts4z/ggsc/paytable"
	"github.com/ts4z/ggsc/state"
	"github.com/ts4z/ggsc/varz"
)

var lookups = varz.NewCounterVec("structure_lookups_total", "structure fetches by cache result", "result")

// StructureStorage caches fetched structures by name.  Callers get clones,
// so they may modify what they're handed.
type StructureStorage struct {
	cache *lru.Cache[string, *paytable.Export]
	next  state.StructureStorage
}

var _ state.StructureStorage = (*StructureStorage)(nil)

func NewStructureStorage(size int, nx state.StructureStorage) *StructureStorage {
	cache, err := lru.New[string, *paytable.Export](size)
	if err != nil {
		log.Fatalf("Failed to create structure cache: %v", err)
	}
	return &StructureStorage{
		cache: cache,
		next:  nx,
	}
}

func (s *StructureStorage) Close() {
	s.cache.Purge()
	s.next.Close()
}

// SaveStructure refreshes the cached copy after a successful save.
//
// TODO: writes from other server instances aren't seen until the entry is
// evicted; this needs a notification from storage when there's more than
// one instance.
func (s *StructureStorage) SaveStructure(ctx context.Context, e *paytable.Export) (string, error) {
	name := e.TournamentName()
	loc, err := s.next.SaveStructure(ctx, e)
	if err != nil {
		s.cache.Remove(name)
		return "", err
	}
	s.cache.Add(name, e.Clone())
	return loc, nil
}

func (s *StructureStorage) FetchStructure(ctx context.Context, name string) (*paytable.Export, error) {
	if e, ok := s.cache.Get(name); ok {
		lookups.WithLabelValues("hit").Inc()
		return e.Clone(), nil
	}
	lookups.WithLabelValues("miss").Inc()
	e, err := s.next.FetchStructure(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Add(name, e.Clone())
	return e, nil
}

// FetchStructureSlugs isn't cached.
func (s *StructureStorage) FetchStructureSlugs(ctx context.Context) ([]*paytable.StructureSlug, error) {
	return s.next.FetchStructureSlugs(ctx)
}
