package rexlex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Builder_runsActionsInOrder(t *testing.T) {
	assert := assert.New(t)

	var got []string
	b := NewBuilder()
	_, err := b.AddRule("(?i)[a-z]+", func(text string) { got = append(got, "WORD:"+text) })
	if !assert.NoError(err) {
		return
	}
	_, err = b.AddRule("[0-9]+", func(text string) { got = append(got, "NUM:"+text) })
	if !assert.NoError(err) {
		return
	}

	tz, err := b.Finish()
	if !assert.NoError(err) {
		return
	}

	tz.Run("abc 123 def")

	assert.Equal([]string{"WORD:abc", "NUM:123", "WORD:def"}, got)
}

func Test_Builder_addRuleErrorLeavesBuilderUsable(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	_, err := b.AddRule("(unterminated", func(string) {})
	assert.Error(err)

	_, err = b.AddRule("a", func(string) {})
	assert.NoError(err)

	tz, err := b.Finish()
	if !assert.NoError(err) {
		return
	}
	assert.Equal(1, tz.NumRules())
}

func Test_Builder_finishEmptyIsError(t *testing.T) {
	assert := assert.New(t)

	_, err := NewBuilder().Finish()
	assert.Error(err)
}

func Test_Tokenizer_reportsSkips(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder()
	_, err := b.AddRule("[a-z]+", func(string) {})
	if !assert.NoError(err) {
		return
	}
	tz, err := b.Finish()
	if !assert.NoError(err) {
		return
	}

	var skipped []string
	tz.RunWithSkips("ab 12 cd", func(pos int, text string) {
		skipped = append(skipped, text)
	})
	assert.Equal([]string{" ", "1", "2", " "}, skipped)
}
