package retree

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// foldCaser performs the single-rune case folding this package relies on for
// (?i) matching. Full Unicode case mappings are more than a one-to-one rune
// map in general (tunaq already pulls in x/text for this class of problem,
// see server code using x/text elsewhere); for v1 we only need the
// single-char fold the spec calls for, so the fold is only ever applied to
// one rune at a time.
var foldCaser = cases.Fold()

// foldRune returns the canonical case-folded form of r. If folding a single
// rune produces something other than a single rune (not expected for the
// ASCII/Latin patterns this lexer targets), r is returned unchanged.
func foldRune(r rune) rune {
	folded := []rune(foldCaser.String(string(r)))
	if len(folded) != 1 {
		return r
	}
	return folded[0]
}

// PredKind tags the kind of a class predicate.
type PredKind int

const (
	PredRange PredKind = iota
	PredIndividual
	PredNamed
)

// Predicate is one member of a character class: a range, a single character,
// or a named class (rejected at translate time in v1).
type Predicate struct {
	Kind PredKind
	Lo   rune // Range, Individual
	Hi   rune // Range only
	Name string
}

func (p Predicate) String() string {
	switch p.Kind {
	case PredRange:
		return fmt.Sprintf("%q-%q", p.Lo, p.Hi)
	case PredIndividual:
		return fmt.Sprintf("%q", p.Lo)
	case PredNamed:
		return fmt.Sprintf(":%s:", p.Name)
	default:
		return "?"
	}
}

func (p Predicate) Equal(o Predicate) bool {
	return p.Kind == o.Kind && p.Lo == o.Lo && p.Hi == o.Hi && p.Name == o.Name
}

// matches reports whether c is accepted by this single predicate, folding
// case on both the range endpoints and the candidate when noCase is set.
func (p Predicate) matches(c rune, noCase bool) bool {
	switch p.Kind {
	case PredIndividual:
		if noCase {
			return foldRune(c) == foldRune(p.Lo)
		}
		return c == p.Lo
	case PredRange:
		if c >= p.Lo && c <= p.Hi {
			return true
		}
		if noCase {
			fc := foldRune(c)
			return fc >= foldRune(p.Lo) && fc <= foldRune(p.Hi)
		}
		return false
	case PredNamed:
		// Named predicates are rejected at translate time; a CharClassData
		// should never reach interpretation with one still present.
		panic(fmt.Sprintf("retree: named predicate %q reached matching", p.Name))
	default:
		return false
	}
}

// CharClassData is the (positive, predicates) pair described by spec.md §3.
// Matching accumulates whether ANY predicate hit, then reconciles that with
// the positivity flag: a positive class accepts on any hit, a negated class
// accepts only when nothing hit. This is deliberately not "return true the
// moment something hits" — that formulation silently breaks negated classes.
type CharClassData struct {
	Positive   bool
	Predicates []Predicate
}

func (d CharClassData) Matches(c rune, noCase bool) bool {
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

// HasNamed reports whether any predicate in the class is a Named predicate.
func (d CharClassData) HasNamed() bool {
	for _, p := range d.Predicates {
		if p.Kind == PredNamed {
			return true
		}
	}
	return false
}

func (d CharClassData) String() string {
	var sb strings.Builder
	if !d.Positive {
		sb.WriteRune('^')
	}
	for i, p := range d.Predicates {
		if i > 0 {
			sb.WriteRune(' ')
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}

func (d CharClassData) Equal(o CharClassData) bool {
	if d.Positive != o.Positive || len(d.Predicates) != len(o.Predicates) {
		return false
	}
	for i := range d.Predicates {
		if !d.Predicates[i].Equal(o.Predicates[i]) {
			return false
		}
	}
	return true
}
