package state

// package state manages persistence of prize structures.

import (
	"context"

	"github.com/ts4z/ggsc/paytable"
)

type Closer interface {
	Close()
}

// StructureStorage keeps exports keyed by tournament name.  Saving a name
// that already exists replaces it.
type StructureStorage interface {
	Closer

	// SaveStructure stores e and returns where it went, for humans.
	SaveStructure(ctx context.Context, e *paytable.Export) (string, error)
	FetchStructure(ctx context.Context, name string) (*paytable.Export, error)
	FetchStructureSlugs(ctx context.Context) ([]*paytable.StructureSlug, error)
}
