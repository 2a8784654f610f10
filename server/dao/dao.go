// Package dao provides data access objects for use in the normalization
// server.
package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Grammars() GrammarRepository
	Close() error
}

// GrammarRepository holds grammars submitted to the server along with their
// normalized forms.
type GrammarRepository interface {
	// Create creates a new Grammar. All attributes except for auto-generated
	// fields are taken from the provided Grammar.
	Create(ctx context.Context, g Grammar) (Grammar, error)
	GetAll(ctx context.Context) ([]Grammar, error)
	GetByID(ctx context.Context, id uuid.UUID) (Grammar, error)
	Delete(ctx context.Context, id uuid.UUID) (Grammar, error)
	Close() error
}

// Grammar is a stored grammar and the result of normalizing it.
type Grammar struct {
	ID         uuid.UUID
	Name       string
	Source     RuleSet
	Normalized RuleSet
	Created    time.Time
}

// Terminal is a terminal symbol and the class it stands for.
type Terminal struct {
	Symbol string
	Class  string
}

// RuleSet is a complete grammar in the notation of CFG files: terminals
// declared with their classes, and rules written as "HEAD -> ALT | ALT".
type RuleSet struct {
	Start     string
	Terminals []Terminal
	Rules     []string
}

// Copy returns a deep copy of the RuleSet.
func (rs RuleSet) Copy() RuleSet {
	cp := RuleSet{Start: rs.Start}
	if rs.Terminals != nil {
		cp.Terminals = make([]Terminal, len(rs.Terminals))
		copy(cp.Terminals, rs.Terminals)
	}
	if rs.Rules != nil {
		cp.Rules = make([]string, len(rs.Rules))
		copy(cp.Rules, rs.Rules)
	}
	return cp
}

// ProductionCount returns the number of productions in the rule set, counting
// each alternative of a rule.
func (rs RuleSet) ProductionCount() int {
	var count int
	for _, r := range rs.Rules {
		count += strings.Count(r, "|") + 1
	}
	return count
}

// MarshalBinary converts the RuleSet into a slice of bytes that can be decoded
// with UnmarshalBinary.
func (rs RuleSet) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(rs.Start)...)

	data = append(data, rezi.EncInt(len(rs.Terminals))...)
	for _, t := range rs.Terminals {
		data = append(data, rezi.EncString(t.Symbol)...)
		data = append(data, rezi.EncString(t.Class)...)
	}

	data = append(data, rezi.EncInt(len(rs.Rules))...)
	for _, r := range rs.Rules {
		data = append(data, rezi.EncString(r)...)
	}

	return data, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into rs.
// All of rs's fields will be replaced by the fields decoded from data.
func (rs *RuleSet) UnmarshalBinary(data []byte) error {
	var decoded RuleSet
	var n int
	var err error

	decoded.Start, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	data = data[n:]

	var termCount int
	termCount, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("terminal count: %w", err)
	}
	data = data[n:]
	if termCount < 0 {
		return fmt.Errorf("terminal count: %w: %d", ErrDecodingFailure, termCount)
	}

	for i := 0; i < termCount; i++ {
		var t Terminal
		t.Symbol, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("terminal[%d].symbol: %w", i, err)
		}
		data = data[n:]

		t.Class, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("terminal[%d].class: %w", i, err)
		}
		data = data[n:]

		decoded.Terminals = append(decoded.Terminals, t)
	}

	var ruleCount int
	ruleCount, n, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("rule count: %w", err)
	}
	data = data[n:]
	if ruleCount < 0 {
		return fmt.Errorf("rule count: %w: %d", ErrDecodingFailure, ruleCount)
	}

	for i := 0; i < ruleCount; i++ {
		var r string
		r, n, err = rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("rule[%d]: %w", i, err)
		}
		data = data[n:]

		decoded.Rules = append(decoded.Rules, r)
	}

	*rs = decoded
	return nil
}
