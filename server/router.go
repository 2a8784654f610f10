package server

import (
	"net/http"
	"strings"

	"github.com/dekarrin/chomsky/server/api"
	"github.com/dekarrin/chomsky/server/middle"
	"github.com/dekarrin/chomsky/server/result"
	"github.com/go-chi/chi/v5"
)

var (
	paramTypePats = map[string]string{
		"uuid": "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	}
)

// p is a quick parameter in a URI, made very small to ease readability in route
// listings.
func p(nameType string) string {
	var name string
	var pat string

	parts := strings.SplitN(nameType, ":", 2)
	name = parts[0]
	if len(parts) == 2 {
		// we have a type, if it's a name in the paramTypePats map use that else
		// treat it as a normal pattern
		pat = parts[1]

		if translatedPat, ok := paramTypePats[parts[1]]; ok {
			pat = translatedPat
		}
	}

	if pat == "" {
		return "{" + name + "}"
	}
	return "{" + name + ":" + pat + "}"
}

func newRouter(a api.API, maxBody int64) chi.Router {
	r := chi.NewRouter()

	r.Use(middle.DontPanic())
	r.Use(middle.MaxBodySize(maxBody))

	r.Mount(api.PathPrefix, newAPIRouter(a))

	r.NotFound(api.Endpoint(func(req *http.Request) result.Result {
		return result.NotFound()
	}))

	return r
}

func newAPIRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Mount("/normalize", newNormalizeRouter(a))
	r.Mount("/grammars", newGrammarsRouter(a))
	r.Mount("/info", newInfoRouter(a))
	r.HandleFunc("/info/", RedirectNoTrailingSlash)

	r.NotFound(api.Endpoint(func(req *http.Request) result.Result {
		return result.NotFound()
	}))
	r.MethodNotAllowed(api.Endpoint(func(req *http.Request) result.Result {
		return result.MethodNotAllowed(req)
	}))

	return r
}

func newNormalizeRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Post("/", a.HTTPNormalize())

	return r
}

func newGrammarsRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetAllGrammars())
	r.Post("/", a.HTTPCreateGrammar())

	r.Route("/"+p("id:uuid"), func(r chi.Router) {
		r.Get("/", a.HTTPGetGrammar())
		r.Delete("/", a.HTTPDeleteGrammar())
	})
	r.HandleFunc("/"+p("id:uuid")+"/", RedirectNoTrailingSlash)

	return r
}

func newInfoRouter(a api.API) chi.Router {
	r := chi.NewRouter()

	r.Get("/", a.HTTPGetInfo())

	return r
}

// RedirectNoTrailingSlash is an http.HandlerFunc that redirects to the same URL as the
// request but with no trailing slash.
func RedirectNoTrailingSlash(w http.ResponseWriter, req *http.Request) {
	redirPath := strings.TrimRight(req.URL.Path, "/")
	api.LogHTTPResponse("INFO", req, http.StatusPermanentRedirect, "redirect -> "+redirPath)
	result.Redirection(redirPath).WriteResponse(w)
}
