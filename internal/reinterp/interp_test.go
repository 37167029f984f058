package reinterp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rexlex/internal/reparse"
	"github.com/dekarrin/rexlex/internal/reprog"
	"github.com/dekarrin/rexlex/internal/retrans"
)

func mustCompile(t *testing.T, patterns ...string) *reprog.Program {
	t.Helper()
	tr := retrans.New()
	for i, pat := range patterns {
		term, err := reparse.Parse(pat)
		if err != nil {
			t.Fatalf("parse %q: %v", pat, err)
		}
		if err := tr.Compile(term, i); err != nil {
			t.Fatalf("compile %q: %v", pat, err)
		}
	}
	prog, err := tr.Finish()
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	return prog
}

// scenario 2: two single-char matches of the same rule back to back.
func Test_Apply_scenario2_alternation(t *testing.T) {
	assert := assert.New(t)

	prog := mustCompile(t, "a|b")
	s := NewScanner(prog)
	tokens, skips := s.Apply("ab")

	assert.Empty(skips)
	if !assert.Len(tokens, 2) {
		return
	}
	assert.Equal(Token{Rule: 0, Pos: 0, Text: "a"}, tokens[0])
	assert.Equal(Token{Rule: 0, Pos: 1, Text: "b"}, tokens[1])
}

// scenario 3: longest match wins even against an earlier-declared rule.
func Test_Apply_scenario3_longestWins(t *testing.T) {
	assert := assert.New(t)

	prog := mustCompile(t, "a*", "a")
	s := NewScanner(prog)
	tokens, skips := s.Apply("aaa")

	assert.Empty(skips)
	if !assert.Len(tokens, 1) {
		return
	}
	assert.Equal(Token{Rule: 0, Pos: 0, Text: "aaa"}, tokens[0])
}

// scenario 4: a+b requires at least one 'a', matches greedily then the 'b'.
func Test_Apply_scenario4_positiveIteration(t *testing.T) {
	assert := assert.New(t)

	prog := mustCompile(t, "a+b")
	s := NewScanner(prog)
	tokens, skips := s.Apply("aaab")

	assert.Empty(skips)
	if !assert.Len(tokens, 1) {
		return
	}
	assert.Equal(Token{Rule: 0, Pos: 0, Text: "aaab"}, tokens[0])
}

// scenario 5: b** parses/compiles to a nested-Iteration term and matches
// the empty string, "b", and "bb" with maximal length.
func Test_Apply_scenario5_doubleStarMaximalLength(t *testing.T) {
	assert := assert.New(t)

	prog := mustCompile(t, "b**")
	s := NewScanner(prog)

	for _, tc := range []struct {
		input    string
		wantLen  int
		wantText string
	}{
		{"", 0, ""},
		{"b", 1, "b"},
		{"bb", 2, "bb"},
	} {
		matches := s.AllMatchesAt(tc.input, 0)
		best, ok := Best(matches)
		if !assert.True(ok, "input %q", tc.input) {
			continue
		}
		assert.Equal(tc.wantLen, best.Len, "input %q", tc.input)
		assert.Equal(tc.wantText, tc.input[:best.Len], "input %q", tc.input)
	}
}

// scenario 6: negated class skips the excluded char, matches everything else.
func Test_Apply_scenario6_negatedClass(t *testing.T) {
	assert := assert.New(t)

	prog := mustCompile(t, "[^x]")
	s := NewScanner(prog)
	tokens, skips := s.Apply("xyz")

	if !assert.Len(skips, 1) {
		return
	}
	assert.Equal(Skip{Pos: 0, Text: "x"}, skips[0])

	if !assert.Len(tokens, 2) {
		return
	}
	assert.Equal(Token{Rule: 0, Pos: 1, Text: "y"}, tokens[0])
	assert.Equal(Token{Rule: 0, Pos: 2, Text: "z"}, tokens[1])
}

// scenario 1: a mixed-rule tokenization run, including a skipped space.
func Test_Apply_scenario1_mixedRules(t *testing.T) {
	assert := assert.New(t)

	prog := mustCompile(t, "(?i)[a-z]+", "[0-9,.]*[0-9]+", "[.,?!]")
	s := NewScanner(prog)
	tokens, skips := s.Apply("Hello, world 42!")

	if !assert.Len(skips, 1) {
		return
	}
	assert.Equal(" ", skips[0].Text)

	wantTexts := []string{"Hello", ",", "world", "42", "!"}
	wantRules := []int{0, 2, 0, 1, 2}
	if !assert.Len(tokens, len(wantTexts)) {
		return
	}
	for i, tok := range tokens {
		assert.Equal(wantTexts[i], tok.Text, "token %d", i)
		assert.Equal(wantRules[i], tok.Rule, "token %d", i)
	}
}

func Test_Best_tieBreaksOnLowestRule(t *testing.T) {
	assert := assert.New(t)

	best, ok := Best([]MatchRecord{{Len: 3, Rule: 2}, {Len: 3, Rule: 0}, {Len: 1, Rule: 1}})
	if !assert.True(ok) {
		return
	}
	assert.Equal(MatchRecord{Len: 3, Rule: 0}, best)
}

func Test_Best_emptyHasNoMatch(t *testing.T) {
	assert := assert.New(t)

	_, ok := Best(nil)
	assert.False(ok)
}
