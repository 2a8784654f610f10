package api

import (
	"time"

	"github.com/dekarrin/chomsky/server/dao"
)

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received
// from and sent to the client.

type InfoModel struct {
	Version struct {
		Server  string `json:"server"`
		Chomsky string `json:"chomsky"`
	} `json:"version"`
	Limits struct {
		MaxRules       int `json:"max_rules,omitempty"`
		IterationLimit int `json:"iteration_limit,omitempty"`
	} `json:"limits"`
}

type TerminalModel struct {
	Symbol string `json:"symbol"`
	Class  string `json:"class,omitempty"`
}

type RuleSetModel struct {
	Start     string          `json:"start,omitempty"`
	Terminals []TerminalModel `json:"terminals,omitempty"`
	Rules     []string        `json:"rules"`
}

// GrammarRequest is the body of a request to normalize or store a grammar.
type GrammarRequest struct {
	Name      string          `json:"name,omitempty"`
	Start     string          `json:"start,omitempty"`
	Terminals []TerminalModel `json:"terminals,omitempty"`
	Rules     []string        `json:"rules"`
}

type GrammarModel struct {
	URI        string       `json:"uri,omitempty"`
	ID         string       `json:"id,omitempty"`
	Name       string       `json:"name,omitempty"`
	Created    string       `json:"created,omitempty"`
	Source     RuleSetModel `json:"source"`
	Normalized RuleSetModel `json:"normalized"`
}

func (gr GrammarRequest) ruleSet() dao.RuleSet {
	rs := dao.RuleSet{Start: gr.Start, Rules: gr.Rules}
	for _, t := range gr.Terminals {
		rs.Terminals = append(rs.Terminals, dao.Terminal{Symbol: t.Symbol, Class: t.Class})
	}
	return rs
}

func ruleSetModel(rs dao.RuleSet) RuleSetModel {
	m := RuleSetModel{Start: rs.Start, Rules: rs.Rules}
	if m.Rules == nil {
		m.Rules = []string{}
	}
	for _, t := range rs.Terminals {
		tm := TerminalModel{Symbol: t.Symbol}
		if t.Class != t.Symbol {
			tm.Class = t.Class
		}
		m.Terminals = append(m.Terminals, tm)
	}
	return m
}

// grammarModel converts a dao.Grammar to its model. Grammars that have not
// been stored get no URI, ID, or creation time.
func grammarModel(g dao.Grammar) GrammarModel {
	m := GrammarModel{
		Name:       g.Name,
		Source:     ruleSetModel(g.Source),
		Normalized: ruleSetModel(g.Normalized),
	}
	if !g.Created.IsZero() {
		m.URI = PathPrefix + "/grammars/" + g.ID.String()
		m.ID = g.ID.String()
		m.Created = g.Created.Format(time.RFC3339)
	}
	return m
}
