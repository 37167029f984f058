// Package dao provides data access objects for use in cmd/lexserve.
package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories cmd/lexserve needs.
type Store interface {
	RuleSets() RuleSetRepository
	Close() error
}

// RuleEntry is one (pattern, action name) pairing belonging to a lexer
// state, the persisted counterpart of ruleset.Rule.
type RuleEntry struct {
	Pattern    string
	ActionName string
	State      string
}

// RuleSet is a named, ordered group of RuleEntry values plus the state
// tokenizing should begin in, as registered over the HTTP API and
// persisted so cmd/lexserve survives restarts.
type RuleSet struct {
	ID         uuid.UUID // PK, NOT NULL
	Name       string    // UNIQUE, NOT NULL
	StartState string    // NOT NULL
	NoCase     bool      // NOT NULL
	Rules      []RuleEntry
	Created    time.Time // NOT NULL
	Modified   time.Time // NOT NULL
}

type RuleSetRepository interface {
	// Create creates a new RuleSet. All attributes except for
	// auto-generated fields are taken from the provided RuleSet.
	Create(ctx context.Context, rs RuleSet) (RuleSet, error)
	GetByID(ctx context.Context, id uuid.UUID) (RuleSet, error)
	GetByName(ctx context.Context, name string) (RuleSet, error)
	GetAll(ctx context.Context) ([]RuleSet, error)
	Update(ctx context.Context, id uuid.UUID, rs RuleSet) (RuleSet, error)
	Delete(ctx context.Context, id uuid.UUID) (RuleSet, error)

	// Close closes the connection.
	Close() error
}
