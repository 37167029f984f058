// Package rexlex is the public facade: Builder/Tokenizer wired to
// internal/reparse, internal/retrans, and internal/reinterp, plus a
// multi-state Lexer built on top of that core, replacing the regexp-backed
// lexerTemplate this module started from.
package rexlex

import (
	"fmt"

	"github.com/dekarrin/rexlex/internal/lexerr"
	"github.com/dekarrin/rexlex/internal/reinterp"
	"github.com/dekarrin/rexlex/internal/reparse"
	"github.com/dekarrin/rexlex/internal/reprog"
	"github.com/dekarrin/rexlex/internal/retrans"
)

// Action is the callable a rule_id maps to: given the matched slice of
// text, it performs a pure side effect. This is spec.md §6's "mapping from
// rule_id to a callable (slice_of_text) -> ()" taken literally, for callers
// that want the bare core without the state-machine/token-class layer in
// lexer.go.
type Action func(text string)

// Builder accumulates rules (pattern + action) and produces a Tokenizer.
// NewBuilder, AddRule, and Finish are spec.md §6's programmatic interface
// of the core.
type Builder struct {
	tr      *retrans.Translator
	actions []Action
}

// NewBuilder returns a fresh Builder with no rules.
func NewBuilder() *Builder {
	return &Builder{tr: retrans.New()}
}

// AddRule parses pattern, translates it, and appends it to the in-progress
// program as the next rule_id (assigned sequentially from 0), bound to
// action. A parse or translate failure aborts only this rule: the Builder
// remains usable for further AddRule calls, per spec.md §7's propagation
// policy.
func (b *Builder) AddRule(pattern string, action Action) (*Builder, error) {
	term, err := reparse.Parse(pattern)
	if err != nil {
		return b, err
	}

	ruleID := len(b.actions)
	if err := b.tr.Compile(term, ruleID); err != nil {
		return b, err
	}
	b.actions = append(b.actions, action)
	return b, nil
}

// Finish grounds the program's labels and yields a ready Tokenizer bound to
// the accumulated action vector. A Builder with no rules cannot Finish.
func (b *Builder) Finish() (*Tokenizer, error) {
	prog, err := b.tr.Finish()
	if err != nil {
		return nil, err
	}
	return &Tokenizer{
		prog:    prog,
		actions: b.actions,
		scanner: reinterp.NewScanner(prog),
	}, nil
}

// Tokenizer runs the interpreter's outer apply loop over a text, invoking
// one Action per accepted token, in left-to-right order.
type Tokenizer struct {
	prog    *reprog.Program
	actions []Action
	scanner *reinterp.Scanner
}

// Run tokenizes text, invoking actions[rule] for every match the outer
// apply loop accepts. Unmatched runs are skipped, not reported, per
// spec.md §7: "an input with no match at some position is not an error."
// Callers that need visibility into skipped input should use RunWithSkips.
func (tz *Tokenizer) Run(text string) {
	tz.RunWithSkips(text, nil)
}

// RunWithSkips is Run, but additionally invokes onSkip (if non-nil) once
// per unmatched character the outer loop advanced over.
func (tz *Tokenizer) RunWithSkips(text string, onSkip func(pos int, text string)) {
	tokens, skips := tz.scanner.Apply(text)
	if onSkip != nil {
		for _, sk := range skips {
			onSkip(sk.Pos, sk.Text)
		}
	}
	for _, tok := range tokens {
		if tok.Rule < 0 || tok.Rule >= len(tz.actions) {
			panic(fmt.Sprintf("rexlex: token matched undefined rule %d", tok.Rule))
		}
		action := tz.actions[tok.Rule]
		if action != nil {
			action(tok.Text)
		}
	}
}

// FromProgram builds a Tokenizer directly from an already-compiled prog,
// binding actions[rule] to each Match instruction's rule id. It is the
// counterpart to Program/Tokenizer.Program used to resume from a cached
// program without reparsing and retranslating the rules that produced it.
func FromProgram(prog *reprog.Program, actions []Action) *Tokenizer {
	return &Tokenizer{
		prog:    prog,
		actions: actions,
		scanner: reinterp.NewScanner(prog),
	}
}

// Program exposes the compiled bytecode for diagnostics (e.g. cmd/lexrun's
// --print-program flag). This is not a stable interface, per spec.md §6.
func (tz *Tokenizer) Program() *reprog.Program {
	return tz.prog
}

// NumRules returns the number of rules this Tokenizer was built with.
func (tz *Tokenizer) NumRules() int {
	return len(tz.actions)
}

// wrapBuildError wraps a build failure in a lexerr.Error annotated with
// context, returning nil for a nil err. Nothing in this package calls it;
// Lexer annotates its build failures with lexerr.New directly.
func wrapBuildError(context string, err error) error {
	if err == nil {
		return nil
	}
	return lexerr.New(context, err)
}
