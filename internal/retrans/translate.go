// Package retrans lowers an internal/retree term tree to an
// internal/reprog bytecode program. This is the piece tunaq's own
// RegexToNFA left as a TODO; in place of NFA-with-pointers it emits the
// flat, label-based Program the rest of this module operates on.
package retrans

import (
	"github.com/dekarrin/rexlex/internal/lexerr"
	"github.com/dekarrin/rexlex/internal/reprog"
	"github.com/dekarrin/rexlex/internal/retree"
)

// Translator accumulates bytecode across one or more calls to Compile, one
// per rule, and grounds every label reference on Finish.
type Translator struct {
	prog *reprog.Program
}

// New creates a Translator with an empty program.
func New() *Translator {
	return &Translator{prog: &reprog.Program{}}
}

// Compile appends the bytecode for term to the in-progress program as rule
// ruleID, following spec.md §4.2's emission schema, then registers its entry
// point and appends a terminating Match instruction.
//
// ruleID values must be supplied in increasing order starting at 0, one per
// call; this is the order internal/reprog.Program.Validate checks against
// Program.Starts.
//
// Compile rejects a term containing a named character-class predicate
// (":alpha:" and friends) rather than translating it: named predicates are
// rejected at translate time, per the Open Questions resolved in DESIGN.md.
func (tr *Translator) Compile(term *retree.Term, ruleID int) error {
	if HasNamedPredicate(term) {
		return lexerr.New("named character class predicates are not supported", lexerr.ErrParse)
	}
	start := reprog.Label(tr.prog.Len())
	tr.prog.AddStart(start)
	tr.emit(term)
	tr.prog.Emit(reprog.Instruction{Op: reprog.OpMatch, Rule: ruleID})
	return nil
}

// emit writes the bytecode for term, threading control flow to len(program)
// the same way spec.md §4.2 describes each case: every construct's successor
// is simply "whatever gets emitted next," since the program is append-only
// and labels are recorded, never relocated.
func (tr *Translator) emit(term *retree.Term) {
	switch term.Op {
	case retree.OpEpsilon:
		l := tr.prog.Len()
		tr.prog.Emit(reprog.Instruction{Op: reprog.OpJump, Target: reprog.Label(l + 1)})

	case retree.OpAtom:
		l := tr.prog.Len()
		tr.prog.Emit(reprog.Instruction{
			Op: reprog.OpChar, Char: term.Char, NoCase: term.NoCase,
			Goto: reprog.Label(l + 1),
		})

	case retree.OpAnyChar:
		l := tr.prog.Len()
		tr.prog.Emit(reprog.Instruction{Op: reprog.OpAnyChar, Goto: reprog.Label(l + 1)})

	case retree.OpCharClass:
		l := tr.prog.Len()
		tr.prog.Emit(reprog.Instruction{
			Op: reprog.OpCharClass, Class: groundClass(term.Class), NoCase: term.NoCase,
			Goto: reprog.Label(l + 1),
		})

	case retree.OpConcat:
		tr.emit(term.Children[0])
		tr.emit(term.Children[1])

	case retree.OpAlt:
		splitPos := tr.prog.Emit(reprog.Instruction{}) // placeholder
		tr.emit(term.Children[0])
		jumpPos := tr.prog.Emit(reprog.Instruction{}) // placeholder
		l2 := reprog.Label(tr.prog.Len())
		tr.emit(term.Children[1])
		l3 := reprog.Label(tr.prog.Len())
		tr.prog.Patch(splitPos, reprog.Instruction{Op: reprog.OpSplit, A: splitPos + 1, B: l2})
		tr.prog.Patch(jumpPos, reprog.Instruction{Op: reprog.OpJump, Target: l3})

	case retree.OpIter:
		l1 := reprog.Label(tr.prog.Len())
		tr.prog.Emit(reprog.Instruction{}) // placeholder, patched below
		l2 := reprog.Label(tr.prog.Len())
		tr.emit(term.Children[0])
		tr.prog.Emit(reprog.Instruction{Op: reprog.OpJump, Target: l1})
		l3 := reprog.Label(tr.prog.Len())
		tr.prog.Patch(l1, reprog.Instruction{Op: reprog.OpSplit, A: l2, B: l3})

	case retree.OpOpt:
		splitPos := tr.prog.Emit(reprog.Instruction{}) // placeholder
		tr.emit(term.Children[0])
		l2 := reprog.Label(tr.prog.Len())
		tr.prog.Patch(splitPos, reprog.Instruction{Op: reprog.OpSplit, A: splitPos + 1, B: l2})

	case retree.OpPosIter:
		l1 := reprog.Label(tr.prog.Len())
		tr.emit(term.Children[0])
		tr.prog.Emit(reprog.Instruction{Op: reprog.OpSplit, A: l1, B: reprog.Label(tr.prog.Len() + 1)})

	default:
		panic("retrans: unknown term op")
	}
}

// groundClass converts a retree.CharClassData, as produced by the parser,
// into the concrete reprog.ClassSpec the VM executes. Named predicates never
// reach here: they are rejected earlier, at Compile time, by the caller
// checking Term.Class.HasNamed() (see Translator.Compile's contract in
// DESIGN.md) — groundClass panics if one slips through, since that is a
// translator bug, not a malformed-pattern condition.
func groundClass(d retree.CharClassData) reprog.ClassSpec {
	preds := make([]reprog.ClassPred, len(d.Predicates))
	for i, p := range d.Predicates {
		switch p.Kind {
		case retree.PredRange:
			preds[i] = reprog.ClassPred{Kind: reprog.PredRange, Lo: p.Lo, Hi: p.Hi}
		case retree.PredIndividual:
			preds[i] = reprog.ClassPred{Kind: reprog.PredIndividual, Lo: p.Lo}
		default:
			panic("retrans: named predicate reached translation")
		}
	}
	return reprog.ClassSpec{Positive: d.Positive, Predicates: preds}
}

// HasNamedPredicate reports whether term (or any of its descendants)
// contains a character class with a named predicate ("named predicates are
// rejected at translate time" per the Open Questions resolved in
// DESIGN.md). Compile runs this check itself and returns a *lexerr.Error
// wrapping lexerr.ErrParse when it holds, so groundClass never sees a named
// predicate.
func HasNamedPredicate(term *retree.Term) bool {
	if term.Op == retree.OpCharClass && term.Class.HasNamed() {
		return true
	}
	for _, c := range term.Children {
		if HasNamedPredicate(c) {
			return true
		}
	}
	return false
}

// Finish grounds the program: it validates every label and rule count via
// reprog.Program.Validate, and returns an empty-program error if no rules
// were ever compiled.
func (tr *Translator) Finish() (*reprog.Program, error) {
	if tr.prog.NumRules() == 0 {
		return nil, lexerr.New("cannot finish an empty program", lexerr.ErrEmptyProgram)
	}
	if err := tr.prog.Validate(); err != nil {
		if rangeErr, ok := err.(*reprog.LabelRangeError); ok {
			return nil, lexerr.NewUnresolvedLabelError(rangeErr.PC)
		}
		return nil, lexerr.New("invalid program", err)
	}
	return tr.prog, nil
}
