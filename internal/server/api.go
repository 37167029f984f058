// Package server implements the HTTP API cmd/lexserve exposes: a bounded,
// single-API-key-authenticated service for registering named rule sets and
// tokenizing text against them. Adapted from tunaq's server/api package:
// the same EndpointFunc/Result/panic-recovery/request-logging shape, wired
// to a rule-set registry instead of a multi-user game backend.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dekarrin/rexlex/internal/server/dao"
	"github.com/dekarrin/rexlex/internal/server/result"
	"github.com/dekarrin/rexlex/internal/server/serr"
)

// API holds parameters for endpoints needed to run and a DAO store that
// performs persistence. To use API, create one and then assign the result
// of its HTTP* methods as handlers to a chi router.
type API struct {
	// Store is the DAO the API calls to persist and retrieve rule sets.
	Store dao.Store

	// UnauthDelay is the amount of time a request pauses before responding
	// with an HTTP-401, HTTP-403, or HTTP-500, to deprioritize such
	// requests from processing and I/O.
	UnauthDelay time.Duration

	// Secret is used to sign and verify bearer JWTs.
	Secret []byte

	// KeyHash is the bcrypt hash of the single configured API key that
	// POST /login checks presented keys against.
	KeyHash []byte
}

// requireIDParam gets the ID of the rule set being referenced in the URI
// and returns it. It panics if the key is not there or is not parsable;
// the panic is caught by panicTo500 in the handler chain.
func requireIDParam(r *http.Request) uuid.UUID {
	id, err := getURLParam(r, "id", uuid.Parse)
	if err != nil {
		panic(err.Error())
	}
	return id
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		return val, fmt.Errorf("parameter does not exist")
	}

	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}

// parseJSON decodes req's body into v, which must be a pointer. The body is
// restored after reading so later handlers in the chain may read it again.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")

	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	err = json.Unmarshal(bodyData, v)
	if err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}

	return nil
}

// EndpointFunc is the signature every epXxx handler method implements;
// httpEndpoint adapts one into an http.HandlerFunc.
type EndpointFunc func(req *http.Request) result.Result

func httpEndpoint(unauthDelay time.Duration, ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		r := ep(req)

		if r.Status == 0 {
			logHTTPResponse("ERROR", req, http.StatusInternalServerError, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		if err := r.PrepareMarshaledResponse(); err != nil {
			newResp := result.Err(r.Status, "An internal server error occurred", "could not marshal JSON response: "+err.Error())
			newResp.WriteResponse(w)
			return
		}

		if r.IsErr {
			logHTTPResponse("ERROR", req, r.Status, r.InternalMsg)
		} else {
			logHTTPResponse("INFO", req, r.Status, r.InternalMsg)
		}

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			time.Sleep(unauthDelay)
		}

		r.WriteResponse(w)
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicVal interface{}) {
	if panicErr := recover(); panicErr != nil {
		result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		).WriteResponse(w)
		return true
	}
	return false
}

func logHTTPResponse(level string, req *http.Request, respStatus int, msg string) {
	if len(level) > 5 {
		level = level[0:5]
	}
	for len(level) < 5 {
		level += " "
	}

	remoteAddrParts := strings.SplitN(req.RemoteAddr, ":", 2)
	remoteIP := remoteAddrParts[0]

	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, respStatus, msg)
}
