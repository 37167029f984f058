package server

import (
	"net/http"

	"github.com/dekarrin/rexlex/internal/server/middle"
	"github.com/dekarrin/rexlex/internal/server/result"
	"github.com/dekarrin/rexlex/internal/version"
)

// InfoModel is the wire shape of HTTPGetInfo's response.
type InfoModel struct {
	Version  string `json:"version"`
	LoggedIn bool   `json:"logged_in"`
}

// HTTPGetInfo returns a HandlerFunc that reports server version info and
// whether the caller presented a valid bearer token.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	loggedIn, _ := req.Context().Value(middle.AuthLoggedIn).(bool)

	resp := InfoModel{
		Version:  version.Current,
		LoggedIn: loggedIn,
	}
	return result.OK(resp, "got API info")
}
