// Package inmem has a dao.Store that keeps everything in memory. Nothing is
// kept after the process exits.
package inmem

import (
	"github.com/dekarrin/chomsky/server/dao"
)

type store struct {
	grammars *InMemoryGrammarsRepository
}

// NewDatastore creates an empty in-memory store.
func NewDatastore() dao.Store {
	return &store{
		grammars: NewGrammarsRepository(),
	}
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grammars
}

func (s *store) Close() error {
	return s.grammars.Close()
}
