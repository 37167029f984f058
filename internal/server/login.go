package server

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/dekarrin/rexlex/internal/server/result"
	"github.com/dekarrin/rexlex/internal/server/serr"
	"github.com/dekarrin/rexlex/internal/server/token"
)

type LoginRequest struct {
	APIKey string `json:"api_key"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// HTTPLogin returns a HandlerFunc that exchanges a valid API key for a
// bearer token usable on the tokenize/rulesets routes.
func (api API) HTTPLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epLogin)
}

func (api API) epLogin(req *http.Request) result.Result {
	var loginData LoginRequest
	if err := parseJSON(req, &loginData); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.APIKey == "" {
		return result.BadRequest("api_key: property is empty or missing from request", "empty api_key")
	}

	if err := bcrypt.CompareHashAndPassword(api.KeyHash, []byte(loginData.APIKey)); err != nil {
		return result.Unauthorized(serr.ErrBadCredentials.Error(), "login attempt: %s", err.Error())
	}

	tok, err := token.Generate(api.Secret)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	return result.Created(LoginResponse{Token: tok}, "issued login token")
}
