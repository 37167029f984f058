// Package token issues and validates the bearer JWTs cmd/lexserve hands out
// from POST /login, grounded on the same HS512 MapClaims shape tunaq's
// server package used for per-user tokens, collapsed here to a single
// bounded API key rather than a user lookup: there is no user table in
// this domain, only one configured key, so the signing secret is fixed at
// server startup instead of being derived per-user from a password hash.
package token

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer  = "lexserve"
	subject = "lexserve-client"
)

// Generate returns a new bearer token signed with secret, valid for one
// hour.
func Generate(secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"iss":        issuer,
		"sub":        subject,
		"exp":        time.Now().Add(time.Hour).Unix(),
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(secret)
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// Get extracts the bearer token from req's Authorization header.
func Get(req *http.Request) (string, error) {
	hdr := req.Header.Get("Authorization")
	if hdr == "" {
		return "", fmt.Errorf("no Authorization header present")
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(hdr, prefix) {
		return "", fmt.Errorf("Authorization header is not a bearer token")
	}

	return strings.TrimPrefix(hdr, prefix), nil
}

// Validate checks that tok was signed with secret, is unexpired, and uses
// the issuer/method this package generates tokens with.
func Validate(tok string, secret []byte) error {
	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))

	return err
}
