package reparse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rexlex/internal/lexerr"
	"github.com/dekarrin/rexlex/internal/retree"
)

func Test_Parse_stringForm(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "single char", input: "a", expect: `Atom('a')`},
		{name: "concatenation", input: "ab", expect: `Concat(Atom('a'), Atom('b'))`},
		{name: "alternation", input: "a|b", expect: `Alt(Atom('a'), Atom('b'))`},
		{name: "star", input: "a*", expect: `Iter(Atom('a'))`},
		{name: "double star is left-folded", input: "b**", expect: `Iter(Iter(Atom('b')))`},
		{name: "plus", input: "a+", expect: `PosIter(Atom('a'))`},
		{name: "optional", input: "a?", expect: `Opt(Atom('a'))`},
		{name: "grouping", input: "(a|b)c", expect: `Concat(Alt(Atom('a'), Atom('b')), Atom('c'))`},
		{name: "any char", input: ".", expect: `AnyChar`},
		{name: "epsilon escape", input: `\e`, expect: `Epsilon`},
		{name: "escaped metachar", input: `\*`, expect: `Atom('*')`},
		{name: "case-insensitive prefix", input: "(?i)a", expect: `Atom('a',i)`},
		{name: "empty alternative branch", input: "a|", expect: `Alt(Atom('a'), Epsilon)`},
		{name: "leading alternative branch", input: "|a", expect: `Alt(Epsilon, Atom('a'))`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			term, err := Parse(tc.input)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, term.String())
		})
	}
}

func Test_Parse_charClass(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect retree.CharClassData
	}{
		{
			name:  "simple range",
			input: "[a-z]",
			expect: retree.CharClassData{Positive: true, Predicates: []retree.Predicate{
				{Kind: retree.PredRange, Lo: 'a', Hi: 'z'},
			}},
		},
		{
			name:  "negated class",
			input: "[^a-z]",
			expect: retree.CharClassData{Positive: false, Predicates: []retree.Predicate{
				{Kind: retree.PredRange, Lo: 'a', Hi: 'z'},
			}},
		},
		{
			name:  "individual members",
			input: "[abc]",
			expect: retree.CharClassData{Positive: true, Predicates: []retree.Predicate{
				{Kind: retree.PredIndividual, Lo: 'a'},
				{Kind: retree.PredIndividual, Lo: 'b'},
				{Kind: retree.PredIndividual, Lo: 'c'},
			}},
		},
		{
			name:  "trailing hyphen is literal",
			input: "[a-]",
			expect: retree.CharClassData{Positive: true, Predicates: []retree.Predicate{
				{Kind: retree.PredIndividual, Lo: 'a'},
				{Kind: retree.PredIndividual, Lo: '-'},
			}},
		},
		{
			name:  "leading hyphen is literal",
			input: "[-a]",
			expect: retree.CharClassData{Positive: true, Predicates: []retree.Predicate{
				{Kind: retree.PredIndividual, Lo: '-'},
				{Kind: retree.PredIndividual, Lo: 'a'},
			}},
		},
		{
			name:  "hyphen as range endpoint",
			input: "[--z]",
			expect: retree.CharClassData{Positive: true, Predicates: []retree.Predicate{
				{Kind: retree.PredRange, Lo: '-', Hi: 'z'},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			term, err := Parse(tc.input)
			if !assert.NoError(err) {
				return
			}
			if !assert.Equal(retree.OpCharClass, term.Op) {
				return
			}
			assert.True(tc.expect.Equal(term.Class), "got %s, want %s", term.Class.String(), tc.expect.String())
		})
	}
}

func Test_Parse_errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "unbalanced open paren", input: "(a"},
		{name: "unbalanced close paren", input: "a)"},
		{name: "unterminated char class", input: "[a-z"},
		{name: "trailing backslash", input: `a\`},
		{name: "leading star", input: "*a"},
		{name: "out of order range", input: "[z-a]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := Parse(tc.input)
			if !assert.Error(err) {
				return
			}
			var parseErr *lexerr.ParseError
			assert.ErrorAs(err, &parseErr)
		})
	}
}
