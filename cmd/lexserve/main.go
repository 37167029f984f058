/*
Lexserve starts an HTTP tokenizer service and begins listening for new
connections.

Usage:

	lexserve [flags]
	lexserve [flags] -l [[ADDRESS]:PORT]

Once started, lexserve listens for HTTP requests and responds to them using
a small REST API: POST /login exchanges the configured API key for a bearer
token, POST /rulesets registers a named rule set, GET /rulesets lists them,
GET /rulesets/{id} and DELETE /rulesets/{id} read and remove one, and POST
/tokenize runs a registered rule set's tokenizer over a body of text. The
listen address defaults to localhost:8080; this can be changed with the
--listen/-l flag or the LEXSERVE_LISTEN_ADDRESS environment variable.

If a JWT token secret is not given, one is generated randomly at startup.
As a consequence, in this mode of operation all tokens become invalid as
soon as the server shuts down; suitable for testing, but a secret must be
given via either the CLI flag or environment variable for production use.

The flags are:

	-v, --version
		Give the current version of lexserve and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. Defaults to the value of LEXSERVE_LISTEN_ADDRESS, and if that
		is not given, to localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing bearer tokens. Defaults to the
		value of LEXSERVE_TOKEN_SECRET. If no secret is specified, a random
		one is generated and all issued tokens become invalid at shutdown.

	-k, --api-key API_KEY
		The API key POST /login accepts. Defaults to the value of
		LEXSERVE_API_KEY. Required unless that environment variable is set.

	--db DIRECTORY
		Directory to store the sqlite-backed rule set registry in. Defaults
		to the value of LEXSERVE_DATA_DIR, and if that is not given, to
		./lexserve-data.
*/
package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/dekarrin/rexlex/internal/server"
	"github.com/dekarrin/rexlex/internal/server/dao/sqlite"
	"github.com/dekarrin/rexlex/internal/server/middle"
	"github.com/dekarrin/rexlex/internal/version"
)

const (
	EnvListen = "LEXSERVE_LISTEN_ADDRESS"
	EnvSecret = "LEXSERVE_TOKEN_SECRET"
	EnvAPIKey = "LEXSERVE_API_KEY"
	EnvDataDir = "LEXSERVE_DATA_DIR"

	defaultUnauthDelay = 500 * time.Millisecond
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of lexserve and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagAPIKey  = pflag.StringP("api-key", "k", "", "The API key POST /login accepts.")
	flagDB      = pflag.String("db", "", "Directory to store the rule set registry in.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("lexserve %s\n", version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	addr, port, err := resolveListenAddr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err)
		os.Exit(1)
	}

	apiKey := os.Getenv(EnvAPIKey)
	if pflag.Lookup("api-key").Changed {
		apiKey = *flagAPIKey
	}
	if apiKey == "" {
		fmt.Fprintf(os.Stderr, "No API key configured; give one with --api-key or %s.\nDo -h for help.\n", EnvAPIKey)
		os.Exit(1)
	}
	keyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not hash API key: %s\n", err)
		os.Exit(1)
	}

	secret := resolveSecret()

	dataDir := os.Getenv(EnvDataDir)
	if pflag.Lookup("db").Changed {
		dataDir = *flagDB
	}
	if dataDir == "" {
		dataDir = "./lexserve-data"
	}
	if err := os.MkdirAll(dataDir, 0770); err != nil {
		fmt.Fprintf(os.Stderr, "Could not create data directory: %s\n", err)
		os.Exit(1)
	}

	store, err := sqlite.NewDatastore(dataDir)
	if err != nil {
		log.Fatalf("FATAL could not open rule set registry: %s", err)
	}
	defer store.Close()

	api := server.API{
		Store:       store,
		UnauthDelay: defaultUnauthDelay,
		Secret:      secret,
		KeyHash:     keyHash,
	}

	log.Printf("INFO  Starting lexserve %s on %s:%d...", version.Current, addr, port)
	if err := http.ListenAndServe(fmt.Sprintf("%s:%d", addr, port), newRouter(api)); err != nil {
		log.Fatalf("FATAL server exited: %s", err)
	}
}

func newRouter(api server.API) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(server.RequestID)
	r.Use(middle.DontPanic())

	r.Post("/login", api.HTTPLogin())

	r.Group(func(r chi.Router) {
		r.Use(middle.OptionalAuth(api.Secret, api.UnauthDelay))
		r.Get("/info", api.HTTPGetInfo())
	})

	r.Group(func(r chi.Router) {
		r.Use(middle.RequireAuth(api.Secret, api.UnauthDelay))

		r.Post("/tokenize", api.HTTPTokenize())

		r.Post("/rulesets", api.HTTPCreateRuleSet())
		r.Get("/rulesets", api.HTTPGetAllRuleSets())
		r.Get("/rulesets/{id}", api.HTTPGetRuleSet())
		r.Delete("/rulesets/{id}", api.HTTPDeleteRuleSet())
	})

	return r
}

func resolveListenAddr() (addr string, port int, err error) {
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		return "localhost", 8080, nil
	}

	bindParts := strings.SplitN(listenAddr, ":", 2)
	if len(bindParts) != 2 {
		return "", 0, errors.New("listen address is not in ADDRESS:PORT or :PORT format")
	}

	port, err = strconv.Atoi(bindParts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%q is not a valid port number", bindParts[1])
	}

	addr = bindParts[0]
	if addr == "" {
		addr = "localhost"
	}
	return addr, port, nil
}

func resolveSecret() []byte {
	secretStr := os.Getenv(EnvSecret)
	if pflag.Lookup("secret").Changed {
		secretStr = *flagSecret
	}
	if secretStr != "" {
		return []byte(secretStr)
	}

	secret := make([]byte, 64)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("FATAL could not generate token secret: %s", err)
	}
	log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	return secret
}
