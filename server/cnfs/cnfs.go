// Package cnfs has services for normalizing grammars and managing the stored
// ones, decoupled from the API that accesses them.
package cnfs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dekarrin/chomsky"
	"github.com/dekarrin/chomsky/grammar"
	"github.com/dekarrin/chomsky/internal/cfgfile"
	"github.com/dekarrin/chomsky/server/dao"
	"github.com/dekarrin/chomsky/server/serr"
	"github.com/google/uuid"
)

// Service is a service for normalizing grammars and keeping the results in
// server persistence.
//
// The zero-value of Service is not ready to be used; assign a valid DAO store
// to DB before attempting to use it.
type Service struct {
	// DB is the persistence store of the service.
	DB dao.Store

	// MaxRules is the most productions a submitted grammar may have. 0 or
	// less is no limit.
	MaxRules int

	// IterationLimit bounds each normalization stage. 0 is no limit.
	IterationLimit int

	// Logger receives the per-stage lines of each normalization. Nil turns
	// them off.
	Logger *log.Logger
}

// Normalize converts the given grammar to Chomsky Normal Form without storing
// it. The returned Grammar has no ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the grammar cannot be read
// or is too big, it will match ErrBadArgument. If it is valid but could not be
// normalized, it will match ErrGrammar.
func (svc Service) Normalize(ctx context.Context, name string, src dao.RuleSet) (dao.Grammar, error) {
	terms := make([]cfgfile.TerminalDef, len(src.Terminals))
	for i := range src.Terminals {
		terms[i] = cfgfile.TerminalDef{Symbol: src.Terminals[i].Symbol, Class: src.Terminals[i].Class}
	}

	def, err := cfgfile.NewDefinition(name, src.Start, terms, src.Rules)
	if err != nil {
		return dao.Grammar{}, serr.New(err.Error(), serr.ErrBadArgument)
	}

	n, err := chomsky.FromDefinition(def)
	if err != nil {
		return dao.Grammar{}, serr.New(err.Error(), serr.ErrBadArgument)
	}

	if svc.MaxRules > 0 && n.Original().RuleCount() > svc.MaxRules {
		msg := fmt.Sprintf("grammar has %d productions but at most %d are allowed", n.Original().RuleCount(), svc.MaxRules)
		return dao.Grammar{}, serr.New(msg, serr.ErrBadArgument)
	}

	n.IterationLimit = svc.IterationLimit
	n.Logger = svc.Logger
	if err := n.Normalize(); err != nil {
		if errors.Is(err, grammar.ErrIterationLimit) {
			return dao.Grammar{}, serr.New("normalization took too long", err, serr.ErrGrammar)
		}
		return dao.Grammar{}, serr.New("", err, serr.ErrGrammar)
	}

	return dao.Grammar{
		Name:       name,
		Source:     toRuleSet(cfgfile.FromGrammar(name, n.Original())),
		Normalized: toRuleSet(cfgfile.FromGrammar(name, n.Normalized())),
	}, nil
}

// CreateGrammar normalizes the given grammar and stores it along with the
// result.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. The errors returned by
// Normalize may be returned. If the error occured due to an unexpected problem
// with the DB, it will match ErrDB.
func (svc Service) CreateGrammar(ctx context.Context, name string, src dao.RuleSet) (dao.Grammar, error) {
	g, err := svc.Normalize(ctx, name, src)
	if err != nil {
		return dao.Grammar{}, err
	}

	created, err := svc.DB.Grammars().Create(ctx, g)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Grammar{}, serr.New("a grammar with that ID already exists", serr.ErrAlreadyExists)
		}
		return dao.Grammar{}, serr.WrapDB("could not create grammar", err)
	}

	return created, nil
}

// SaveResult stores a grammar that was already normalized, such as one
// loaded from a file by the batch normalizer. r.Normalized must be set.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If r was never normalized, it
// will match ErrBadArgument. If the error occured due to an unexpected problem
// with the DB, it will match ErrDB.
func (svc Service) SaveResult(ctx context.Context, r chomsky.Result) (dao.Grammar, error) {
	if r.Original == nil || r.Normalized == nil {
		return dao.Grammar{}, serr.New("grammar has not been normalized", serr.ErrBadArgument)
	}

	g := dao.Grammar{
		Name:       r.Name,
		Source:     toRuleSet(cfgfile.FromGrammar(r.Name, r.Original)),
		Normalized: toRuleSet(cfgfile.FromGrammar(r.Name, r.Normalized)),
	}

	created, err := svc.DB.Grammars().Create(ctx, g)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Grammar{}, serr.New("a grammar with that ID already exists", serr.ErrAlreadyExists)
		}
		return dao.Grammar{}, serr.WrapDB("could not create grammar", err)
	}

	return created, nil
}

// GetGrammar returns the stored grammar with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match ErrNotFound. If the error occured due to an unexpected
// problem with the DB, it will match ErrDB. Finally, if the ID is not valid, it
// will match ErrBadArgument.
func (svc Service) GetGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not get grammar", err)
	}

	return g, nil
}

// GetAllGrammars returns all grammars currently in persistence.
func (svc Service) GetAllGrammars(ctx context.Context) ([]dao.Grammar, error) {
	all, err := svc.DB.Grammars().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("could not get grammars", err)
	}

	return all, nil
}

// DeleteGrammar deletes the grammar with the given ID. It returns the deleted
// grammar just after it was deleted.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match ErrNotFound. If the error occured due to an unexpected
// problem with the DB, it will match ErrDB. Finally, if the ID is not valid, it
// will match ErrBadArgument.
func (svc Service) DeleteGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not delete grammar", err)
	}

	return g, nil
}

func toRuleSet(def cfgfile.Definition) dao.RuleSet {
	rs := dao.RuleSet{Start: def.Start}
	for _, t := range def.Terminals {
		rs.Terminals = append(rs.Terminals, dao.Terminal{Symbol: t.Symbol, Class: t.Class})
	}
	for _, r := range def.Rules {
		rs.Rules = append(rs.Rules, r.String())
	}
	return rs
}
