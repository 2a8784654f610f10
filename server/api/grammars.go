package api

import (
	"net/http"

	"github.com/dekarrin/chomsky/server/result"
	"github.com/google/uuid"
)

// HTTPNormalize returns a HandlerFunc that normalizes the grammar in the
// request body and returns the result without storing anything.
func (api API) HTTPNormalize() http.HandlerFunc {
	return Endpoint(api.epNormalize)
}

// POST /normalize: normalize a grammar.
func (api API) epNormalize(req *http.Request) result.Result {
	var body GrammarRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), "%s", err.Error())
	}

	g, err := api.Backend.Normalize(req.Context(), body.Name, body.ruleSet())
	if err != nil {
		return errorResult(err, "normalize")
	}

	return result.OK(grammarModel(g), "normalized grammar with %d productions", g.Source.ProductionCount())
}

// HTTPCreateGrammar returns a HandlerFunc that normalizes the grammar in the
// request body and stores it.
func (api API) HTTPCreateGrammar() http.HandlerFunc {
	return Endpoint(api.epCreateGrammar)
}

// POST /grammars: normalize and store a grammar.
func (api API) epCreateGrammar(req *http.Request) result.Result {
	var body GrammarRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), "%s", err.Error())
	}

	g, err := api.Backend.CreateGrammar(req.Context(), body.Name, body.ruleSet())
	if err != nil {
		return errorResult(err, "create grammar")
	}

	resp := grammarModel(g)
	return result.Created(resp, "created grammar %s", resp.ID).WithHeader("Location", resp.URI)
}

// HTTPGetAllGrammars returns a HandlerFunc that retrieves all stored grammars.
func (api API) HTTPGetAllGrammars() http.HandlerFunc {
	return Endpoint(api.epGetAllGrammars)
}

// GET /grammars: get all grammars.
func (api API) epGetAllGrammars(req *http.Request) result.Result {
	all, err := api.Backend.GetAllGrammars(req.Context())
	if err != nil {
		return errorResult(err, "get all grammars")
	}

	resp := make([]GrammarModel, len(all))
	for i := range all {
		resp[i] = grammarModel(all[i])
	}

	return result.OK(resp, "got all %d grammars", len(resp))
}

// HTTPGetGrammar returns a HandlerFunc that retrieves one stored grammar.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return Endpoint(api.epGetGrammar)
}

// GET /grammars/{id}: get a grammar.
func (api API) epGetGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)

	g, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		return errorResult(err, "get grammar "+id.String())
	}

	return result.OK(grammarModel(g), "got grammar %s", id)
}

// HTTPDeleteGrammar returns a HandlerFunc that deletes a stored grammar.
func (api API) HTTPDeleteGrammar() http.HandlerFunc {
	return Endpoint(api.epDeleteGrammar)
}

// DELETE /grammars/{id}: delete a grammar.
func (api API) epDeleteGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)

	_, err := api.Backend.DeleteGrammar(req.Context(), id.String())
	if err != nil {
		return errorResult(err, "delete grammar "+id.String())
	}

	return result.NoContent("deleted grammar %s", id)
}

// requireIDParam gets the ID of the main entity being referenced in the URI and
// returns it. It panics if the key is not there or is not parsable.
func requireIDParam(r *http.Request) uuid.UUID {
	id, err := getURLParam(r, "id", uuid.Parse)
	if err != nil {
		panic(err.Error())
	}
	return id
}
