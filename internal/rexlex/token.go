package rexlex

import (
	"fmt"

	"github.com/dekarrin/rexlex/internal/types"
)

// token is the concrete types.Token implementation this package produces.
// The teacher's own lexerToken never grew a String method despite the
// interface requiring one; lexToken completes that contract.
type lexToken struct {
	class   types.TokenClass
	lexed   string
	linePos int
	lineNum int
	line    string
}

func (t lexToken) Class() types.TokenClass { return t.class }
func (t lexToken) Lexeme() string          { return t.lexed }
func (t lexToken) LinePos() int            { return t.linePos }
func (t lexToken) Line() int               { return t.lineNum }
func (t lexToken) FullLine() string        { return t.line }

func (t lexToken) String() string {
	return fmt.Sprintf("(%s) %q [line %d, pos %d]", t.class.Human(), t.lexed, t.lineNum, t.linePos)
}

// lexerClass is the TokenClass implementation backing AddClass.
type lexerClass struct {
	id    string
	human string
}

func (c lexerClass) ID() string    { return c.id }
func (c lexerClass) Human() string { return c.human }

func (c lexerClass) Equal(o any) bool {
	other, ok := o.(types.TokenClass)
	if !ok {
		return false
	}
	return other.ID() == c.id
}

// NewTokenClass returns a TokenClass with the given id and human-readable
// name, for use with Lexer.AddClass.
func NewTokenClass(id string, human string) types.TokenClass {
	return lexerClass{id: id, human: human}
}
