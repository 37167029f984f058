package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rexlex/internal/server/dao"
)

func Test_RuleSets_CreateThenGetByID_roundTrips(t *testing.T) {
	assert := assert.New(t)

	store, err := NewDatastore(t.TempDir())
	if !assert.NoError(err) {
		return
	}
	defer store.Close()

	ctx := context.Background()
	rules := []dao.RuleEntry{
		{Pattern: "[a-z]+", ActionName: "word", State: "default"},
		{Pattern: "[0-9]+", ActionName: "number", State: "default"},
	}

	created, err := store.RuleSets().Create(ctx, dao.RuleSet{
		Name:       "basic",
		StartState: "default",
		NoCase:     true,
		Rules:      rules,
	})
	if !assert.NoError(err) {
		return
	}
	assert.NotEqual([16]byte{}, created.ID)

	got, err := store.RuleSets().GetByID(ctx, created.ID)
	if !assert.NoError(err) {
		return
	}
	assert.Equal("basic", got.Name)
	assert.Equal("default", got.StartState)
	assert.True(got.NoCase)
	assert.Equal(rules, got.Rules)
}

func Test_RuleSets_GetByName(t *testing.T) {
	assert := assert.New(t)

	store, err := NewDatastore(t.TempDir())
	if !assert.NoError(err) {
		return
	}
	defer store.Close()

	ctx := context.Background()
	_, err = store.RuleSets().Create(ctx, dao.RuleSet{Name: "named", StartState: "default"})
	if !assert.NoError(err) {
		return
	}

	got, err := store.RuleSets().GetByName(ctx, "named")
	if !assert.NoError(err) {
		return
	}
	assert.Equal("named", got.Name)
}

func Test_RuleSets_Create_duplicateNameIsConstraintViolation(t *testing.T) {
	assert := assert.New(t)

	store, err := NewDatastore(t.TempDir())
	if !assert.NoError(err) {
		return
	}
	defer store.Close()

	ctx := context.Background()
	_, err = store.RuleSets().Create(ctx, dao.RuleSet{Name: "dup", StartState: "default"})
	if !assert.NoError(err) {
		return
	}

	_, err = store.RuleSets().Create(ctx, dao.RuleSet{Name: "dup", StartState: "default"})
	assert.ErrorIs(err, dao.ErrConstraintViolation)
}

func Test_RuleSets_GetByID_missingIsNotFound(t *testing.T) {
	assert := assert.New(t)

	store, err := NewDatastore(t.TempDir())
	if !assert.NoError(err) {
		return
	}
	defer store.Close()

	id := uuid.New()

	_, err = store.RuleSets().GetByID(context.Background(), id)
	assert.ErrorIs(err, dao.ErrNotFound)
}

func Test_RuleSets_Delete_removesRow(t *testing.T) {
	assert := assert.New(t)

	store, err := NewDatastore(t.TempDir())
	if !assert.NoError(err) {
		return
	}
	defer store.Close()

	ctx := context.Background()
	created, err := store.RuleSets().Create(ctx, dao.RuleSet{Name: "gone", StartState: "default"})
	if !assert.NoError(err) {
		return
	}

	_, err = store.RuleSets().Delete(ctx, created.ID)
	if !assert.NoError(err) {
		return
	}

	_, err = store.RuleSets().GetByID(ctx, created.ID)
	assert.ErrorIs(err, dao.ErrNotFound)
}
