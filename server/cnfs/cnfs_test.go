package cnfs

import (
	"context"
	"testing"

	"github.com/dekarrin/chomsky"
	"github.com/dekarrin/chomsky/internal/cfgfile"
	"github.com/dekarrin/chomsky/server/dao"
	"github.com/dekarrin/chomsky/server/dao/inmem"
	"github.com/dekarrin/chomsky/server/serr"
	"github.com/stretchr/testify/assert"
)

var balanced = dao.RuleSet{
	Terminals: []dao.Terminal{{Symbol: "a", Class: "OPEN"}, {Symbol: "b", Class: "CLOSE"}},
	Rules:     []string{"S -> a S b | ε"},
}

func Test_Service_Normalize(t *testing.T) {
	testCases := []struct {
		name      string
		src       dao.RuleSet
		maxRules  int
		iterLimit int
		expectErr error
	}{
		{name: "balanced", src: balanced},
		{name: "within rule limit", src: balanced, maxRules: 2},
		{name: "over rule limit", src: balanced, maxRules: 1, expectErr: serr.ErrBadArgument},
		{name: "bad rule", src: dao.RuleSet{Rules: []string{"S a"}}, expectErr: serr.ErrBadArgument},
		{name: "no rules", src: dao.RuleSet{}, expectErr: serr.ErrBadArgument},
		{
			name:      "iteration limit",
			src:       dao.RuleSet{Rules: []string{"S -> a b c d e"}},
			iterLimit: 1,
			expectErr: serr.ErrGrammar,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			svc := Service{DB: inmem.NewDatastore(), MaxRules: tc.maxRules, IterationLimit: tc.iterLimit}

			actual, err := svc.Normalize(context.Background(), "g", tc.src)

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal("S", actual.Source.Start)
			assert.Equal([]string{"S -> a S b | ε"}, actual.Source.Rules)
			assert.Equal("start$1", actual.Normalized.Start)
			assert.Equal(balanced.Terminals, actual.Normalized.Terminals)
		})
	}
}

func Test_Service_GrammarLifecycle(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	svc := Service{DB: inmem.NewDatastore()}

	created, err := svc.CreateGrammar(ctx, "balanced", balanced)
	if !assert.NoError(err) {
		return
	}

	got, err := svc.GetGrammar(ctx, created.ID.String())
	assert.NoError(err)
	assert.Equal(created, got)

	all, err := svc.GetAllGrammars(ctx)
	assert.NoError(err)
	assert.Len(all, 1)

	_, err = svc.DeleteGrammar(ctx, created.ID.String())
	assert.NoError(err)

	_, err = svc.GetGrammar(ctx, created.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.DeleteGrammar(ctx, created.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.GetGrammar(ctx, "not-a-uuid")
	assert.ErrorIs(err, serr.ErrBadArgument)
}

func Test_Service_SaveResult(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	def, err := cfgfile.NewDefinition("balanced", "", []cfgfile.TerminalDef{{Symbol: "a", Class: "OPEN"}, {Symbol: "b", Class: "CLOSE"}}, balanced.Rules)
	if !assert.NoError(err) {
		return
	}
	n, err := chomsky.FromDefinition(def)
	if !assert.NoError(err) {
		return
	}

	svc := Service{DB: inmem.NewDatastore()}

	_, err = svc.SaveResult(ctx, n.Result())
	assert.ErrorIs(err, serr.ErrBadArgument)

	if !assert.NoError(n.Normalize()) {
		return
	}
	saved, err := svc.SaveResult(ctx, n.Result())
	if !assert.NoError(err) {
		return
	}

	assert.Equal("balanced", saved.Name)
	assert.Equal("S", saved.Source.Start)
	assert.Equal("start$1", saved.Normalized.Start)

	got, err := svc.GetGrammar(ctx, saved.ID.String())
	assert.NoError(err)
	assert.Equal(saved, got)
}
