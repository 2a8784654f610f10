package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dekarrin/chomsky/internal/util"
	"github.com/dekarrin/chomsky/server/dao"
	"github.com/google/uuid"
)

func NewGrammarsRepository() *InMemoryGrammarsRepository {
	return &InMemoryGrammarsRepository{
		grammars: make(map[uuid.UUID]dao.Grammar),
	}
}

type InMemoryGrammarsRepository struct {
	mtx      sync.RWMutex
	grammars map[uuid.UUID]dao.Grammar
}

func (imgr *InMemoryGrammarsRepository) Close() error {
	return nil
}

func (imgr *InMemoryGrammarsRepository) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	g.ID = newUUID
	g.Created = time.Now()
	g.Source = g.Source.Copy()
	g.Normalized = g.Normalized.Copy()

	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	if _, ok := imgr.grammars[g.ID]; ok {
		return dao.Grammar{}, dao.ErrConstraintViolation
	}
	imgr.grammars[g.ID] = g

	return copyGrammar(g), nil
}

func (imgr *InMemoryGrammarsRepository) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	all := make([]dao.Grammar, 0, len(imgr.grammars))
	for k := range imgr.grammars {
		all = append(all, copyGrammar(imgr.grammars[k]))
	}

	all = util.SortBy(all, func(l, r dao.Grammar) bool {
		if !l.Created.Equal(r.Created) {
			return l.Created.Before(r.Created)
		}
		return l.ID.String() < r.ID.String()
	})

	return all, nil
}

func (imgr *InMemoryGrammarsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	imgr.mtx.RLock()
	defer imgr.mtx.RUnlock()

	g, ok := imgr.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	return copyGrammar(g), nil
}

func (imgr *InMemoryGrammarsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	imgr.mtx.Lock()
	defer imgr.mtx.Unlock()

	g, ok := imgr.grammars[id]
	if !ok {
		return dao.Grammar{}, dao.ErrNotFound
	}

	delete(imgr.grammars, id)

	return g, nil
}

func copyGrammar(g dao.Grammar) dao.Grammar {
	g.Source = g.Source.Copy()
	g.Normalized = g.Normalized.Copy()
	return g
}
