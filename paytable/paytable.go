// Package paytable builds prize structures from parsed payouts and holds
// the export record they're saved in.
package paytable

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ts4z/ggsc/payout"
)

// Prizes maps rank to prize amount, remembering the order ranks were set.
type Prizes struct {
	ranks   []string
	amounts map[string]float64
}

func NewPrizes() *Prizes {
	return &Prizes{amounts: map[string]float64{}}
}

// Set stores amount under rank, replacing an existing rank in place.
func (p *Prizes) Set(rank string, amount float64) {
	if p.amounts == nil {
		p.amounts = map[string]float64{}
	}
	if _, ok := p.amounts[rank]; !ok {
		p.ranks = append(p.ranks, rank)
	}
	p.amounts[rank] = amount
}

func (p *Prizes) Get(rank string) (float64, bool) {
	a, ok := p.amounts[rank]
	return a, ok
}

func (p *Prizes) Len() int {
	return len(p.ranks)
}

// Ranks returns the ranks in the order they were set.
func (p *Prizes) Ranks() []string {
	return append([]string(nil), p.ranks...)
}

func (p *Prizes) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, rank := range p.ranks {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(rank)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.amounts[rank])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the document.
func (p *Prizes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("prizes: expected object, got %v", tok)
	}
	*p = Prizes{amounts: map[string]float64{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		rank, ok := tok.(string)
		if !ok {
			return fmt.Errorf("prizes: expected rank, got %v", tok)
		}
		var amount float64
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("prizes: rank %q: %w", rank, err)
		}
		p.Set(rank, amount)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Structure is one prize structure.
type Structure struct {
	Name   string  `json:"name"`
	Chips  int     `json:"chips"`
	Prizes *Prizes `json:"prizes"`
}

// Export is the document the structure import reads.  Name is always "/"
// and Folders always empty.
type Export struct {
	Name       string       `json:"name"`
	Folders    []string     `json:"folders"`
	Structures []*Structure `json:"structures"`
}

// TournamentName is the name of the first structure, which is what the
// export is saved under.
func (e *Export) TournamentName() string {
	if len(e.Structures) == 0 {
		return ""
	}
	return e.Structures[0].Name
}

// StructureSlug is a lightweight representation of a saved structure for
// lists.
type StructureSlug struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Build makes an export holding one structure.
//
// Each distinct amount is paid to the first rank that showed it, so tied
// ranks collapse onto the best of them.  After that, the last player is
// written under their own rank, overwriting that rank if it's already
// there and appending it if not.  That can list an amount twice when the
// last player ties someone above them.
//
// Build doesn't check for zero amounts or an empty mapping.
func Build(name string, chips int, players *payout.Players) *Export {
	firstRank := map[float64]string{}
	var amounts []float64
	entries := players.Entries()
	for _, e := range entries {
		if _, ok := firstRank[e.Amount]; !ok {
			firstRank[e.Amount] = e.Rank
			amounts = append(amounts, e.Amount)
		}
	}

	prizes := NewPrizes()
	for _, a := range amounts {
		prizes.Set(firstRank[a], a)
	}
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		prizes.Set(last.Rank, last.Amount)
	}

	return &Export{
		Name:    "/",
		Folders: []string{},
		Structures: []*Structure{
			{Name: name, Chips: chips, Prizes: prizes},
		},
	}
}

func (p *Prizes) Clone() *Prizes {
	clone := NewPrizes()
	for _, r := range p.ranks {
		clone.Set(r, p.amounts[r])
	}
	return clone
}

func (e *Export) Clone() *Export {
	clone := &Export{
		Name:       e.Name,
		Folders:    append([]string{}, e.Folders...),
		Structures: make([]*Structure, len(e.Structures)),
	}
	for i, s := range e.Structures {
		cs := *s
		if s.Prizes != nil {
			cs.Prizes = s.Prizes.Clone()
		}
		clone.Structures[i] = &cs
	}
	return clone
}
