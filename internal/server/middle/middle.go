// Package middle contains middleware for use with cmd/lexserve.
package middle

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dekarrin/rexlex/internal/server/result"
	"github.com/dekarrin/rexlex/internal/server/token"
)

type mwFunc http.HandlerFunc

func (sf mwFunc) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	sf(w, req)
}

// Middleware is a function that takes a handler and returns a new handler
// which wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

// AuthKey is a key in the context of a request populated by an AuthHandler.
type AuthKey int64

// AuthLoggedIn is the context key an AuthHandler stores whether the caller
// presented a valid bearer token under. There is no AuthUser: this domain
// has exactly one bounded API key, not a user table, so there is nothing
// further to identify beyond logged-in-or-not.
const AuthLoggedIn AuthKey = iota

// AuthHandler is middleware that will accept a request, extract the bearer
// token used for authentication, and validate it against secret.
//
// AuthLoggedIn is added to the request context before the request is
// passed to the next step in the chain (only applies for optional auth; for
// required auth, not being logged in results in an HTTP error being
// returned before the request reaches the next handler).
type AuthHandler struct {
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *AuthHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool

	tok, err := token.Get(req)
	if err != nil {
		if ah.required {
			r := result.Unauthorized("", err.Error())
			time.Sleep(ah.unauthedDelay)
			r.WriteResponse(w)
			return
		}
	} else {
		if err := token.Validate(tok, ah.secret); err != nil {
			if ah.required {
				r := result.Unauthorized("", err.Error())
				time.Sleep(ah.unauthedDelay)
				r.WriteResponse(w)
				return
			}
		} else {
			loggedIn = true
		}
	}

	ctx := context.WithValue(req.Context(), AuthLoggedIn, loggedIn)
	req = req.WithContext(ctx)
	ah.next.ServeHTTP(w, req)
}

// RequireAuth returns a Middleware that rejects any request without a valid
// bearer token signed with secret.
func RequireAuth(secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      true,
			next:          next,
		}
	}
}

// OptionalAuth returns a Middleware that validates a bearer token if one is
// present, but allows the request through either way.
func OptionalAuth(secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &AuthHandler{
			secret:        secret,
			unauthedDelay: unauthDelay,
			required:      false,
			next:          next,
		}
	}
}

// DontPanic returns a Middleware that recovers from a panic in the handler
// chain and writes out a generic HTTP-500 instead of crashing the server.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, r *http.Request) {
			defer panicTo500(w)
			next.ServeHTTP(w, r)
		})
	}
}

func panicTo500(w http.ResponseWriter) (panicVal interface{}) {
	if panicErr := recover(); panicErr != nil {
		r := result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		)
		r.WriteResponse(w)
		return true
	}
	return false
}
