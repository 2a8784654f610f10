package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dekarrin/chomsky/internal/version"
	"github.com/dekarrin/chomsky/server/api"
	"github.com/stretchr/testify/assert"
)

const balancedReq = `{
	"name": "balanced",
	"terminals": [{"symbol": "a", "class": "OPEN"}, {"symbol": "b", "class": "CLOSE"}],
	"rules": ["S -> a S b | ε"]
}`

func newTestServer(t *testing.T, cfg Config) *Server {
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	t.Cleanup(func() { srv.db.Close() })
	return srv
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func Test_Server_Normalize(t *testing.T) {
	testCases := []struct {
		name         string
		cfg          Config
		body         string
		contentType  string
		expectStatus int
	}{
		{name: "balanced", body: balancedReq, expectStatus: http.StatusOK},
		{name: "malformed JSON", body: `{"rules": [`, expectStatus: http.StatusBadRequest},
		{name: "not JSON", body: balancedReq, contentType: "text/plain", expectStatus: http.StatusBadRequest},
		{name: "bad rule", body: `{"rules": ["S a b"]}`, expectStatus: http.StatusBadRequest},
		{name: "no rules", body: `{"rules": []}`, expectStatus: http.StatusBadRequest},
		{
			name:         "too many rules",
			cfg:          Config{MaxRules: 1},
			body:         balancedReq,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "iteration limit",
			cfg:          Config{IterationLimit: 1},
			body:         `{"rules": ["S -> a b c d e"]}`,
			expectStatus: http.StatusUnprocessableEntity,
		},
		{
			name:         "body too big",
			cfg:          Config{MaxBodyBytes: 10},
			body:         balancedReq,
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			srv := newTestServer(t, tc.cfg)

			req := httptest.NewRequest(http.MethodPost, api.PathPrefix+"/normalize", strings.NewReader(tc.body))
			ct := tc.contentType
			if ct == "" {
				ct = "application/json"
			}
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()

			srv.Handler().ServeHTTP(w, req)

			assert.Equal(tc.expectStatus, w.Code)
			if tc.expectStatus != http.StatusOK {
				return
			}

			var resp api.GrammarModel
			if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp)) {
				return
			}
			assert.Equal("balanced", resp.Name)
			assert.Empty(resp.ID)
			assert.Empty(resp.URI)
			assert.Equal("S", resp.Source.Start)
			assert.Equal([]string{"S -> a S b | ε"}, resp.Source.Rules)
			assert.Equal("start$1", resp.Normalized.Start)
			assert.Equal([]api.TerminalModel{{Symbol: "a", Class: "OPEN"}, {Symbol: "b", Class: "CLOSE"}}, resp.Normalized.Terminals)
		})
	}
}

func Test_Server_GrammarLifecycle(t *testing.T) {
	assert := assert.New(t)

	srv := newTestServer(t, Config{})

	// create
	w := do(srv, http.MethodPost, api.PathPrefix+"/grammars", balancedReq)
	if !assert.Equal(http.StatusCreated, w.Code) {
		return
	}
	var created api.GrammarModel
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &created)) {
		return
	}
	assert.NotEmpty(created.ID)
	assert.NotEmpty(created.Created)
	assert.Equal(api.PathPrefix+"/grammars/"+created.ID, created.URI)
	assert.Equal(created.URI, w.Header().Get("Location"))

	// get one
	w = do(srv, http.MethodGet, created.URI, "")
	assert.Equal(http.StatusOK, w.Code)
	var got api.GrammarModel
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(created, got)

	// get all
	w = do(srv, http.MethodGet, api.PathPrefix+"/grammars", "")
	assert.Equal(http.StatusOK, w.Code)
	var all []api.GrammarModel
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal([]api.GrammarModel{created}, all)

	// delete
	w = do(srv, http.MethodDelete, created.URI, "")
	assert.Equal(http.StatusNoContent, w.Code)
	assert.Empty(w.Body.String())

	// gone now
	w = do(srv, http.MethodGet, created.URI, "")
	assert.Equal(http.StatusNotFound, w.Code)
	w = do(srv, http.MethodDelete, created.URI, "")
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_Server_Routing(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		path         string
		expectStatus int
	}{
		{name: "unknown path", method: http.MethodGet, path: api.PathPrefix + "/users", expectStatus: http.StatusNotFound},
		{name: "outside api", method: http.MethodGet, path: "/index.html", expectStatus: http.StatusNotFound},
		{name: "id is not a uuid", method: http.MethodGet, path: api.PathPrefix + "/grammars/12", expectStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: api.PathPrefix + "/grammars", expectStatus: http.StatusMethodNotAllowed},
		{name: "normalize is post only", method: http.MethodGet, path: api.PathPrefix + "/normalize", expectStatus: http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, Config{})

			w := do(srv, tc.method, tc.path, "")

			assert.Equal(t, tc.expectStatus, w.Code)
		})
	}
}

func Test_Server_Info(t *testing.T) {
	assert := assert.New(t)

	srv := newTestServer(t, Config{MaxRules: 25})

	w := do(srv, http.MethodGet, api.PathPrefix+"/info", "")

	assert.Equal(http.StatusOK, w.Code)
	var info api.InfoModel
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &info)) {
		return
	}
	assert.Equal(version.ServerCurrent, info.Version.Server)
	assert.Equal(version.Current, info.Version.Chomsky)
	assert.Equal(25, info.Limits.MaxRules)
	assert.Equal(DefaultIterationLimit, info.Limits.IterationLimit)
}

func Test_Server_SQLite(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	cfg := Config{DB: Database{Type: DatabaseSQLite, DataDir: dir}}

	srv := newTestServer(t, cfg)
	w := do(srv, http.MethodPost, api.PathPrefix+"/grammars", balancedReq)
	if !assert.Equal(http.StatusCreated, w.Code) {
		return
	}
	var created api.GrammarModel
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	assert.NoError(srv.db.Close())

	reopened := newTestServer(t, cfg)
	w = do(reopened, http.MethodGet, created.URI, "")
	assert.Equal(http.StatusOK, w.Code)
	var got api.GrammarModel
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(created, got)
}
