package rexlex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rexlex/internal/types"
)

func Test_Lexer_singleState(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("default")
	lx.AddClass(NewTokenClass("word", "word"), "default")
	lx.AddClass(NewTokenClass("num", "number"), "default")

	if !assert.NoError(errOf(lx.AddPattern("(?i)[a-z]+", LexAs("word"), "default"))) {
		return
	}
	if !assert.NoError(errOf(lx.AddPattern("[0-9]+", LexAs("num"), "default"))) {
		return
	}
	if !assert.NoError(errOf(lx.AddPattern(" +", Discard(), "default"))) {
		return
	}

	stream, err := lx.Lex("hello 42 world")
	if !assert.NoError(err) {
		return
	}

	var got []string
	for stream.HasNext() {
		tok := stream.Next()
		got = append(got, tok.Class().ID()+":"+tok.Lexeme())
	}
	assert.Equal([]string{"word:hello", "num:42", "word:world"}, got)
}

func Test_Lexer_stateSwitching(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("default")
	lx.AddClass(NewTokenClass("word", "word"), "default")
	lx.AddClass(NewTokenClass("strbody", "string body"), "instring")

	if !assert.NoError(errOf(lx.AddPattern("[a-z]+", LexAs("word"), "default"))) {
		return
	}
	if !assert.NoError(errOf(lx.AddPattern(`"`, SwapState("instring"), "default"))) {
		return
	}
	if !assert.NoError(errOf(lx.AddPattern(" +", Discard(), "default"))) {
		return
	}
	if !assert.NoError(errOf(lx.AddPattern(`[^"]+`, LexAs("strbody"), "instring"))) {
		return
	}
	if !assert.NoError(errOf(lx.AddPattern(`"`, SwapState("default"), "instring"))) {
		return
	}

	stream, err := lx.Lex(`a "bee" c`)
	if !assert.NoError(err) {
		return
	}

	var got []string
	for stream.HasNext() {
		tok := stream.Next()
		got = append(got, tok.Class().ID()+":"+tok.Lexeme())
	}
	assert.Equal([]string{"word:a", "strbody:bee", "word:c"}, got)
}

func Test_Lexer_addPatternRejectsUnknownClass(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("default")
	err := lx.AddPattern("a", LexAs("nope"), "default")
	assert.Error(err)
}

func Test_Lexer_addPatternRejectsEmptyStateTarget(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("default")
	err := lx.AddPattern("a", SwapState(""), "default")
	assert.Error(err)
}

func Test_Lexer_unmatchedInputIsTokenError(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("default")
	lx.AddClass(NewTokenClass("word", "word"), "default")
	if !assert.NoError(errOf(lx.AddPattern("[a-z]+", LexAs("word"), "default"))) {
		return
	}

	stream, err := lx.Lex("ab1cd")
	if !assert.NoError(err) {
		return
	}

	tok1 := stream.Next()
	assert.Equal("ab", tok1.Lexeme())

	tok2 := stream.Next()
	assert.Equal(types.TokenError.ID(), tok2.Class().ID())

	tok3 := stream.Next()
	assert.Equal("cd", tok3.Lexeme())
}

func Test_Lexer_immediateLexFailsOnError(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer("default")
	lx.AddClass(NewTokenClass("word", "word"), "default")
	if !assert.NoError(errOf(lx.AddPattern("[a-z]+", LexAs("word"), "default"))) {
		return
	}

	_, err := lx.ImmediatelyLex("ab1")
	assert.Error(err)
}

func errOf(err error) error { return err }
