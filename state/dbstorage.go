package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jonboulle/clockwork"

	"github.com/ts4z/ggsc/dep"
	"github.com/ts4z/ggsc/he"
	"github.com/ts4z/ggsc/paytable"
	"github.com/ts4z/ggsc/textutil"
)

// The document column is json rather than jsonb so prize order survives.
const createTable = `CREATE TABLE IF NOT EXISTS prize_structures (
	name       text PRIMARY KEY,
	document   json NOT NULL,
	updated_at timestamptz NOT NULL
)`

// DBStorage keeps exports in Postgres.
type DBStorage struct {
	db    *sql.DB
	clock clockwork.Clock
}

var _ StructureStorage = &DBStorage{}

// NewDBStorage takes ownership of db and creates the table if needed.
func NewDBStorage(ctx context.Context, db *sql.DB, clock clockwork.Clock) (*DBStorage, error) {
	s := &DBStorage{
		db:    dep.Required(db),
		clock: dep.Required(clock),
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("creating prize_structures: %w", err)
	}
	return s, nil
}

func (s *DBStorage) Close() {
	if err := s.db.Close(); err != nil {
		log.Printf("closing database: %v", err)
	}
}

func location(name string) string {
	return "prize_structures/" + name
}

func (s *DBStorage) SaveStructure(ctx context.Context, e *paytable.Export) (string, error) {
	name := e.TournamentName()
	if name == "" || !textutil.ValidTournamentName(name) {
		return "", he.HTTPCodedErrorf(400, "invalid tournament name %q", name)
	}
	doc, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encoding structure: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prize_structures (name, document, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		name, string(doc), s.clock.Now())
	if err != nil {
		return "", err
	}
	return location(name), nil
}

func (s *DBStorage) FetchStructure(ctx context.Context, name string) (*paytable.Export, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM prize_structures WHERE name=$1`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, he.New(404, fmt.Errorf("no such structure %q", name))
	}
	if err != nil {
		return nil, err
	}
	e := &paytable.Export{}
	if err := json.Unmarshal(doc, e); err != nil {
		return nil, fmt.Errorf("decoding structure %q: %w", name, err)
	}
	return e, nil
}

func (s *DBStorage) FetchStructureSlugs(ctx context.Context) ([]*paytable.StructureSlug, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM prize_structures ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slugs := []*paytable.StructureSlug{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		slugs = append(slugs, &paytable.StructureSlug{Name: name, Location: location(name)})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return slugs, nil
}
