package api

import (
	"net/http"

	"github.com/dekarrin/chomsky/internal/version"
	"github.com/dekarrin/chomsky/server/result"
)

// HTTPGetInfo returns a HandlerFunc that retrieves information on the API and
// server.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return Endpoint(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.Chomsky = version.Current
	resp.Limits.MaxRules = api.Backend.MaxRules
	resp.Limits.IterationLimit = api.Backend.IterationLimit

	return result.OK(resp, "client got API info")
}
