package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dekarrin/chomsky/server/dao"
	"github.com/dekarrin/chomsky/server/result"
	"github.com/dekarrin/chomsky/server/serr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_errorResult(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectStatus int
	}{
		{name: "not found", err: serr.ErrNotFound, expectStatus: http.StatusNotFound},
		{name: "bad argument", err: serr.New("no rules given", serr.ErrBadArgument), expectStatus: http.StatusBadRequest},
		{name: "grammar", err: serr.New("normalization took too long", serr.ErrGrammar), expectStatus: http.StatusUnprocessableEntity},
		{name: "already exists", err: serr.New("", serr.ErrAlreadyExists), expectStatus: http.StatusConflict},
		{name: "db", err: serr.WrapDB("could not get grammar", errors.New("disk on fire")), expectStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := errorResult(tc.err, "do thing")

			assert.Equal(tc.expectStatus, actual.Status)
			assert.True(actual.IsErr)
			assert.Contains(actual.InternalMsg, "do thing")
		})
	}
}

func Test_grammarModel(t *testing.T) {
	assert := assert.New(t)

	id := uuid.MustParse("6f0d8b4c-7c2a-4e38-9d2c-1a5f3f0e9b11")
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	g := dao.Grammar{
		ID:      id,
		Name:    "balanced",
		Created: created,
		Source: dao.RuleSet{
			Start:     "S",
			Terminals: []dao.Terminal{{Symbol: "a", Class: "a"}, {Symbol: "b", Class: "CLOSE"}},
			Rules:     []string{"S -> a S b | ε"},
		},
	}

	actual := grammarModel(g)

	assert.Equal(PathPrefix+"/grammars/"+id.String(), actual.URI)
	assert.Equal(id.String(), actual.ID)
	assert.Equal("2024-03-01T12:30:00Z", actual.Created)
	assert.Equal([]TerminalModel{{Symbol: "a"}, {Symbol: "b", Class: "CLOSE"}}, actual.Source.Terminals)
	assert.Equal([]string{}, actual.Normalized.Rules)
}

func Test_grammarModel_Unstored(t *testing.T) {
	assert := assert.New(t)

	actual := grammarModel(dao.Grammar{Name: "x"})

	assert.Empty(actual.URI)
	assert.Empty(actual.ID)
	assert.Empty(actual.Created)
}

func Test_GrammarRequest_ruleSet(t *testing.T) {
	assert := assert.New(t)

	req := GrammarRequest{
		Start:     "S",
		Terminals: []TerminalModel{{Symbol: "a", Class: "OPEN"}},
		Rules:     []string{"S -> a"},
	}

	assert.Equal(dao.RuleSet{
		Start:     "S",
		Terminals: []dao.Terminal{{Symbol: "a", Class: "OPEN"}},
		Rules:     []string{"S -> a"},
	}, req.ruleSet())
}

func Test_Endpoint(t *testing.T) {
	testCases := []struct {
		name         string
		ep           EndpointFunc
		expectStatus int
		expectBody   string
	}{
		{
			name:         "ok result",
			ep:           func(req *http.Request) result.Result { return result.OK(map[string]int{"n": 1}) },
			expectStatus: http.StatusOK,
			expectBody:   `{"n":1}`,
		},
		{
			name:         "unpopulated result",
			ep:           func(req *http.Request) result.Result { return result.Result{} },
			expectStatus: http.StatusInternalServerError,
		},
		{
			name:         "unmarshalable result",
			ep:           func(req *http.Request) result.Result { return result.OK(make(chan int)) },
			expectStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			w := httptest.NewRecorder()
			Endpoint(tc.ep)(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(tc.expectStatus, w.Code)
			if tc.expectBody != "" {
				assert.Equal(tc.expectBody, strings.TrimSpace(w.Body.String()))
			}
		})
	}
}

func Test_parseJSON(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
		expectErr   error
	}{
		{name: "valid", contentType: "application/json", body: `{"rules": ["S -> a"]}`},
		{name: "with charset", contentType: "application/json; charset=utf-8", body: `{"rules": []}`},
		{name: "malformed", contentType: "application/json", body: `{"rules": `, expectErr: serr.ErrBodyUnmarshal},
		{name: "wrong content type", contentType: "text/plain", body: `{}`, expectErr: errors.New("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.contentType)

			var v GrammarRequest
			err := parseJSON(req, &v)

			if tc.expectErr == nil {
				assert.NoError(err)
				return
			}
			assert.Error(err)
			if errors.Is(tc.expectErr, serr.ErrBodyUnmarshal) {
				assert.ErrorIs(err, serr.ErrBodyUnmarshal)
			}
		})
	}
}
