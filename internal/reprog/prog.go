// Package reprog holds the flat, position-independent bytecode program that
// internal/retrans emits and internal/reinterp executes. Instructions refer
// to each other by integer index into a slice, never by pointer; this keeps
// a Program trivially copyable and sparse-set-indexable, and sidesteps
// cyclic ownership entirely (see spec.md §9).
package reprog

import (
	"fmt"
	"strings"
)

// Label is an index into a Program's instruction slice. During emission some
// labels are placeholders (see internal/retrans); after Finish every Label
// that appears in an Instruction is a valid offset.
type Label int

// OpCode tags the kind of an Instruction.
type OpCode int

const (
	OpChar OpCode = iota
	OpAnyChar
	OpCharClass
	OpMatch
	OpSplit
	OpJump
)

func (op OpCode) String() string {
	switch op {
	case OpChar:
		return "char"
	case OpAnyChar:
		return "any"
	case OpCharClass:
		return "class"
	case OpMatch:
		return "match"
	case OpSplit:
		return "split"
	case OpJump:
		return "jump"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// Instruction is one VM opcode. Only the fields relevant to Op are
// meaningful; this mirrors the "explicit goto" design spec.md §3 settles on
// in place of the source's mixed fall-through/goto instruction families.
type Instruction struct {
	Op OpCode

	// Char / CharClass / AnyChar
	Char   rune
	Class  ClassSpec
	NoCase bool
	Goto   Label

	// Match
	Rule int

	// Split
	A, B Label

	// Jump
	Target Label
}

// PredKind tags the kind of a ClassPred. It mirrors internal/retree.PredKind
// but is redefined here so reprog has no dependency on the term-tree
// package; the program model must stand alone to be serializable and to be
// the sole input internal/reinterp depends on.
type PredKind int

const (
	PredRange PredKind = iota
	PredIndividual
)

// ClassPred is one member of a grounded character class. Named predicates
// never reach reprog: internal/retrans rejects them at translate time (spec
// decision, see DESIGN.md), so ClassSpec only needs to represent the two
// predicate kinds the VM actually executes.
type ClassPred struct {
	Kind PredKind
	Lo   rune
	Hi   rune
}

func (p ClassPred) matches(c rune, noCase bool) bool {
	if p.Kind == PredIndividual {
		if noCase {
			return foldRune(c) == foldRune(p.Lo)
		}
		return c == p.Lo
	}
	if c >= p.Lo && c <= p.Hi {
		return true
	}
	if noCase {
		fc := foldRune(c)
		return fc >= foldRune(p.Lo) && fc <= foldRune(p.Hi)
	}
	return false
}

// ClassSpec is the grounded form of internal/retree.CharClassData: a
// positivity flag plus an ordered predicate list, with the same
// accumulate-then-reconcile matching rule (spec.md §9's fix for the
// negated-class bug).
type ClassSpec struct {
	Positive   bool
	Predicates []ClassPred
}

func (d ClassSpec) Matches(c rune, noCase bool) bool {
	anyHit := false
	for _, p := range d.Predicates {
		if p.matches(c, noCase) {
			anyHit = true
			break
		}
	}
	if d.Positive {
		return anyHit
	}
	return !anyHit
}

// Program is a flat, ordered instruction sequence plus one entry-point label
// per compiled rule, in the order the rules were compiled.
type Program struct {
	Instructions []Instruction
	Starts       []Label
}

// MatchesChar reports whether c satisfies instr.Char under instr.NoCase. It
// is only meaningful for OpChar instructions.
func (instr Instruction) MatchesChar(c rune) bool {
	if instr.NoCase {
		return foldRune(instr.Char) == foldRune(c)
	}
	return instr.Char == c
}

// Len returns the number of instructions in the program.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Emit appends instr to the program and returns the Label it was written
// at. Used by internal/retrans during rule compilation.
func (p *Program) Emit(instr Instruction) Label {
	p.Instructions = append(p.Instructions, instr)
	return Label(len(p.Instructions) - 1)
}

// Patch overwrites the instruction already written at at. Used by
// internal/retrans to ground placeholder Split/Jump instructions once their
// targets are known.
func (p *Program) Patch(at Label, instr Instruction) {
	p.Instructions[at] = instr
}

// At returns the instruction written at label.
func (p *Program) At(label Label) Instruction {
	return p.Instructions[label]
}

// AddStart registers label as the entry point of the rule most recently
// compiled. Rule ids are assigned by position in Starts.
func (p *Program) AddStart(label Label) {
	p.Starts = append(p.Starts, label)
}

// NumRules returns the number of compiled rules (== number of Match
// instructions == len(Starts)).
func (p *Program) NumRules() int {
	return len(p.Starts)
}

// Validate checks the invariants Finish is responsible for establishing:
// every label referenced by an instruction resolves to a valid offset, and
// exactly NumRules Match instructions exist, carrying rule ids 0..NumRules-1
// in compiled order. It returns lexerr-compatible errors but does not import
// lexerr itself, to keep reprog free of the error-formatting package; see
// internal/retrans.Finish for the wrapping call site.
func (p *Program) Validate() error {
	n := Label(len(p.Instructions))
	checkLabel := func(pc int, l Label) error {
		if l < 0 || l >= n {
			return &LabelRangeError{PC: pc}
		}
		return nil
	}

	var matchRules []int
	for pc, instr := range p.Instructions {
		switch instr.Op {
		case OpChar, OpAnyChar, OpCharClass:
			if err := checkLabel(pc, instr.Goto); err != nil {
				return err
			}
		case OpSplit:
			if err := checkLabel(pc, instr.A); err != nil {
				return err
			}
			if err := checkLabel(pc, instr.B); err != nil {
				return err
			}
		case OpJump:
			if err := checkLabel(pc, instr.Target); err != nil {
				return err
			}
		case OpMatch:
			matchRules = append(matchRules, instr.Rule)
		default:
			return &LabelRangeError{PC: pc}
		}
	}

	if len(matchRules) != len(p.Starts) {
		return &RuleCountError{Matches: len(matchRules), Starts: len(p.Starts)}
	}
	for i, r := range matchRules {
		if r != i {
			return &RuleCountError{Matches: len(matchRules), Starts: len(p.Starts)}
		}
	}
	return nil
}

// LabelRangeError reports the instruction (PC) that references a label
// outside [0, program length), or whose opcode is unknown.
type LabelRangeError struct {
	PC int
}

func (e *LabelRangeError) Error() string {
	return fmt.Sprintf("instruction %d has an out-of-range label", e.PC)
}

// RuleCountError reports a mismatch between the number of Match
// instructions emitted and the number of registered rule starts.
type RuleCountError struct {
	Matches int
	Starts  int
}

func (e *RuleCountError) Error() string {
	return fmt.Sprintf("program has %d match instructions but %d rule starts", e.Matches, e.Starts)
}

// String renders one line per instruction, "NNN: opname args" per spec.md
// §6's print_program contract. This is a debugging aid, not a stable
// interface.
func (p *Program) String() string {
	var sb strings.Builder
	for i, instr := range p.Instructions {
		sb.WriteString(fmt.Sprintf("%3d: %s\n", i, instr.String()))
	}
	return sb.String()
}

func (instr Instruction) String() string {
	switch instr.Op {
	case OpChar:
		flag := ""
		if instr.NoCase {
			flag = " nocase"
		}
		return fmt.Sprintf("char %q%s -> %d", instr.Char, flag, instr.Goto)
	case OpAnyChar:
		return fmt.Sprintf("any -> %d", instr.Goto)
	case OpCharClass:
		flag := ""
		if instr.NoCase {
			flag = " nocase"
		}
		return fmt.Sprintf("class%s -> %d", flag, instr.Goto)
	case OpMatch:
		return fmt.Sprintf("match rule=%d", instr.Rule)
	case OpSplit:
		return fmt.Sprintf("split %d, %d", instr.A, instr.B)
	case OpJump:
		return fmt.Sprintf("jump %d", instr.Target)
	default:
		return instr.Op.String()
	}
}
