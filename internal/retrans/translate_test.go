package retrans

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/rexlex/internal/reparse"
	"github.com/dekarrin/rexlex/internal/reprog"
)

func compilePattern(t *testing.T, pattern string) *reprog.Program {
	t.Helper()
	term, err := reparse.Parse(pattern)
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	tr := New()
	if err := tr.Compile(term, 0); err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	prog, err := tr.Finish()
	if err != nil {
		t.Fatalf("finish %q: %v", pattern, err)
	}
	return prog
}

func Test_Translator_emitsValidatableProgram(t *testing.T) {
	patterns := []string{
		"a", "ab", "a|b", "a*", "a+", "a?", "(a|b)*c", "[a-z]+", ".", `\e`,
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			assert := assert.New(t)
			prog := compilePattern(t, pattern)
			assert.NoError(prog.Validate())
			assert.Equal(1, prog.NumRules())
		})
	}
}

func Test_Translator_multipleRules(t *testing.T) {
	assert := assert.New(t)

	tr := New()
	for i, pattern := range []string{"if", "[a-z]+", "[0-9]+"} {
		term, err := reparse.Parse(pattern)
		if !assert.NoError(err) {
			return
		}
		if err := tr.Compile(term, i); !assert.NoError(err) {
			return
		}
	}

	prog, err := tr.Finish()
	if !assert.NoError(err) {
		return
	}
	assert.Equal(3, prog.NumRules())
	assert.NoError(prog.Validate())

	matchRules := 0
	for _, instr := range prog.Instructions {
		if instr.Op == reprog.OpMatch {
			assert.Equal(matchRules, instr.Rule)
			matchRules++
		}
	}
	assert.Equal(3, matchRules)
}

func Test_Translator_alternationPrefersLeftBranch(t *testing.T) {
	assert := assert.New(t)

	prog := compilePattern(t, "a|b")
	// first instruction must be the Split reserved for the Alt node, with A
	// pointing at the left branch immediately following it.
	first := prog.At(0)
	if !assert.Equal(reprog.OpSplit, first.Op) {
		return
	}
	assert.Equal(reprog.Label(1), first.A)
}

func Test_Translator_finishRejectsEmptyProgram(t *testing.T) {
	assert := assert.New(t)

	tr := New()
	_, err := tr.Finish()
	assert.Error(err)
}

func Test_Translator_iterationPrefersBodyOverExit(t *testing.T) {
	assert := assert.New(t)

	prog := compilePattern(t, "a*")
	// Iteration emits: [0] placeholder later patched to Split(body, exit), [1] body, [2] jump(0)
	split := prog.At(0)
	if !assert.Equal(reprog.OpSplit, split.Op) {
		return
	}
	assert.Equal(reprog.Label(1), split.A)
}
