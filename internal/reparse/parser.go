// Package reparse is a hand-written recursive-descent parser from regex
// pattern text to an internal/retree term tree. The grammar is the one
// spec.md §4.1 gives; this file follows its production names so the two can
// be read side by side.
package reparse

import (
	"unicode/utf8"

	"github.com/dekarrin/rexlex/internal/lexerr"
	"github.com/dekarrin/rexlex/internal/retree"
)

// Parse parses pattern and returns the term tree whose concrete syntax is
// pattern, or a *lexerr.ParseError describing the first unparseable byte.
// The entire input must be consumed; trailing garbage is an error.
func Parse(pattern string) (*retree.Term, error) {
	p := &parser{src: pattern}

	const prefix = "(?i)"
	if len(pattern) >= len(prefix) && pattern[:len(prefix)] == prefix {
		p.noCase = true
		p.pos = len(prefix)
	}

	term, err := p.parseAlt()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, lexerr.NewParseError(p.pos, "unexpected trailing input")
	}

	term.Validate()
	return term, nil
}

type parser struct {
	src    string
	pos    int
	noCase bool
}

// peek returns the rune at the current position without consuming it, and
// whether one was available (false at end of input).
func (p *parser) peek() (rune, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	if r == utf8.RuneError && size <= 1 {
		return 0, false
	}
	return r, true
}

// advance consumes the rune at the current position.
func (p *parser) advance() {
	_, size := utf8.DecodeRuneInString(p.src[p.pos:])
	if size == 0 {
		size = 1
	}
	p.pos += size
}

func isConcTerminator(ch rune, ok bool) bool {
	if !ok {
		return true
	}
	switch ch {
	case '|', ')', '*', '+', '?':
		return true
	}
	return false
}

func isMeta(ch rune) bool {
	switch ch {
	case '|', '*', '+', '?', '(', ')', '[', ']', '.', '\\':
		return true
	}
	return false
}

// alt := conc ('|' alt)?
func (p *parser) parseAlt() (*retree.Term, error) {
	left, err := p.parseConc()
	if err != nil {
		return nil, err
	}

	if ch, ok := p.peek(); ok && ch == '|' {
		p.advance()
		right, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		return retree.Alt(left, right), nil
	}
	return left, nil
}

// conc := iter (conc)?, stopping when lookahead is a terminator.
func (p *parser) parseConc() (*retree.Term, error) {
	ch, ok := p.peek()
	if isConcTerminator(ch, ok) {
		return retree.Epsilon(), nil
	}

	left, err := p.parseIter()
	if err != nil {
		return nil, err
	}

	ch, ok = p.peek()
	if isConcTerminator(ch, ok) {
		return left, nil
	}

	right, err := p.parseConc()
	if err != nil {
		return nil, err
	}
	return retree.Concat(left, right), nil
}

// iter := atom ('*'|'+'|'?')*, folded left-associatively so "b**" parses as
// Iteration(Iteration(Atom('b'))) rather than via left recursion.
func (p *parser) parseIter() (*retree.Term, error) {
	term, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for {
		ch, ok := p.peek()
		if !ok {
			return term, nil
		}
		switch ch {
		case '*':
			p.advance()
			term = retree.Iter(term)
		case '+':
			p.advance()
			term = retree.PosIter(term)
		case '?':
			p.advance()
			term = retree.Opt(term)
		default:
			return term, nil
		}
	}
}

// atom := '(' regex ')' | '\' escape | '[' ccls ']' | '.' | CHAR
func (p *parser) parseAtom() (*retree.Term, error) {
	ch, ok := p.peek()
	if !ok {
		return nil, lexerr.NewParseError(p.pos, "unexpected end of pattern")
	}

	switch ch {
	case '(':
		p.advance()
		inner, err := p.parseAlt()
		if err != nil {
			return nil, err
		}
		closeCh, ok := p.peek()
		if !ok || closeCh != ')' {
			return nil, lexerr.NewParseError(p.pos, "unbalanced '('")
		}
		p.advance()
		return inner, nil
	case '\\':
		p.advance()
		return p.parseEscape()
	case '[':
		p.advance()
		return p.parseCharClass()
	case '.':
		p.advance()
		return retree.AnyChar(), nil
	default:
		if isMeta(ch) {
			return nil, lexerr.NewParseError(p.pos, "unexpected metacharacter")
		}
		p.advance()
		return retree.Atom(ch, p.noCase), nil
	}
}

// escape handles '\e' -> Epsilon and '\c' -> Atom(c) for any other c; a
// trailing backslash is an error.
func (p *parser) parseEscape() (*retree.Term, error) {
	ch, ok := p.peek()
	if !ok {
		return nil, lexerr.NewParseError(p.pos, "trailing backslash")
	}
	p.advance()
	if ch == 'e' {
		return retree.Epsilon(), nil
	}
	return retree.Atom(ch, p.noCase), nil
}

// ccls := '^'? (ccelt)*, terminated by ']'.
// ccelt := ccchar ('-' ccchar)?
func (p *parser) parseCharClass() (*retree.Term, error) {
	start := p.pos - 1 // position of '[' for error reporting

	positive := true
	if ch, ok := p.peek(); ok && ch == '^' {
		positive = false
		p.advance()
	}

	var preds []retree.Predicate
	for {
		ch, ok := p.peek()
		if !ok {
			return nil, lexerr.NewParseError(start, "unterminated character class")
		}
		if ch == ']' {
			p.advance()
			break
		}

		lo := ch
		p.advance()

		if dashCh, ok := p.peek(); ok && dashCh == '-' {
			p.advance()
			hiCh, ok := p.peek()
			if ok && hiCh != ']' {
				p.advance()
				if hiCh < lo {
					return nil, lexerr.NewParseError(p.pos, "character range out of order")
				}
				preds = append(preds, retree.Predicate{Kind: retree.PredRange, Lo: lo, Hi: hiCh})
				continue
			}
			// trailing '-' (or '-' immediately before ']'): both lo and the
			// dash itself are literal members of the class.
			preds = append(preds, retree.Predicate{Kind: retree.PredIndividual, Lo: lo})
			preds = append(preds, retree.Predicate{Kind: retree.PredIndividual, Lo: '-'})
			continue
		}

		preds = append(preds, retree.Predicate{Kind: retree.PredIndividual, Lo: lo})
	}

	data := retree.CharClassData{Positive: positive, Predicates: preds}
	return retree.CharClass(data, p.noCase), nil
}
