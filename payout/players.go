package payout

import (
	"bytes"
	"encoding/json"
)

// Entry is one paid finisher.
type Entry struct {
	Rank   string  `json:"-" yaml:"rank"`
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// Players maps rank to entry, remembering the order ranks first appeared.
// Setting a rank that is already present replaces the entry in place.
//
// The zero value is not usable; call NewPlayers.
type Players struct {
	order  []string
	byRank map[string]Entry
}

func NewPlayers() *Players {
	return &Players{byRank: map[string]Entry{}}
}

// Set stores e under e.Rank.  Last write wins.
func (p *Players) Set(e Entry) {
	if _, ok := p.byRank[e.Rank]; !ok {
		p.order = append(p.order, e.Rank)
	}
	p.byRank[e.Rank] = e
}

func (p *Players) Get(rank string) (Entry, bool) {
	e, ok := p.byRank[rank]
	return e, ok
}

func (p *Players) Len() int {
	return len(p.order)
}

// Entries returns the entries in insertion order.
func (p *Players) Entries() []Entry {
	out := make([]Entry, 0, len(p.order))
	for _, rank := range p.order {
		out = append(out, p.byRank[rank])
	}
	return out
}

// HasZeroAmount reports whether any entry pays exactly zero, which
// usually means the wrong parser was used.
func (p *Players) HasZeroAmount() bool {
	for _, e := range p.byRank {
		if e.Amount == 0 {
			return true
		}
	}
	return false
}

// MarshalJSON writes {"rank": {"name": ..., "amount": ...}, ...} in
// insertion order.
func (p *Players) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, rank := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(rank)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.byRank[rank])
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
