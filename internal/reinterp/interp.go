// Package reinterp is the breadth-first bytecode interpreter: the inner
// "find all matches starting here" scan and the outer "tokenize the whole
// input" loop described in spec.md §4.3.
package reinterp

import (
	"unicode/utf8"

	"github.com/dekarrin/rexlex/internal/reprog"
	"github.com/dekarrin/rexlex/internal/sparseset"
)

// MatchRecord is one completed match from a single scan start: the byte
// length consumed and the rule that matched.
type MatchRecord struct {
	Len  int
	Rule int
}

// Scanner holds the two thread lists all_matches_at needs, sized once to
// the program length and reused across scan starts so tokenizing a whole
// input allocates its sparse sets exactly once.
type Scanner struct {
	prog  *reprog.Program
	clist *sparseset.Set
	nlist *sparseset.Set
}

// NewScanner prepares a Scanner for repeated calls to AllMatchesAt against
// prog. prog must already be Validate()-clean.
func NewScanner(prog *reprog.Program) *Scanner {
	n := prog.Len()
	return &Scanner{
		prog:  prog,
		clist: sparseset.New(n),
		nlist: sparseset.New(n),
	}
}

// AllMatchesAt runs the inner loop starting at byte offset in text: it seeds
// clist with every rule's entry point, then repeatedly decodes one char (or
// the end-of-text sentinel), dispatches every pc currently in clist —
// Split/Jump add to clist itself at the current frontier, character-
// consuming instructions add their goto to nlist iff they accept the
// current char, Match is recorded — and swaps clist/nlist, until clist is
// empty. The insert-if-absent sparse set makes this terminate even on
// cyclic Split/Jump graphs (spec.md §8 property 6).
func (s *Scanner) AllMatchesAt(text string, offset int) []MatchRecord {
	s.clist.Clear()
	s.nlist.Clear()

	startOffset := offset
	for _, start := range s.prog.Starts {
		s.clist.Insert(int(start))
	}

	var matches []MatchRecord

	for s.clist.Len() > 0 {
		ch, size, atEnd := decodeAt(text, offset)

		for i := 0; i < s.clist.Len(); i++ {
			pc := s.clist.At(i)
			instr := s.prog.At(reprog.Label(pc))

			switch instr.Op {
			case reprog.OpSplit:
				s.clist.Insert(int(instr.A))
				s.clist.Insert(int(instr.B))
			case reprog.OpJump:
				s.clist.Insert(int(instr.Target))
			case reprog.OpChar:
				if !atEnd && instr.MatchesChar(ch) {
					s.nlist.Insert(int(instr.Goto))
				}
			case reprog.OpAnyChar:
				if !atEnd {
					s.nlist.Insert(int(instr.Goto))
				}
			case reprog.OpCharClass:
				if !atEnd && instr.Class.Matches(ch, instr.NoCase) {
					s.nlist.Insert(int(instr.Goto))
				}
			case reprog.OpMatch:
				matches = append(matches, MatchRecord{Len: offset - startOffset, Rule: instr.Rule})
			}
		}

		s.clist, s.nlist = s.nlist, s.clist
		s.nlist.Clear()
		offset += size
	}

	return matches
}

// decodeAt decodes the rune at text[offset:]. atEnd is true at end of text,
// in which case ch and size are both zero: the distinguished end-sentinel
// matches no Char, CharClass, or AnyChar instruction.
func decodeAt(text string, offset int) (ch rune, size int, atEnd bool) {
	if offset >= len(text) {
		return 0, 0, true
	}
	r, n := utf8.DecodeRuneInString(text[offset:])
	return r, n, false
}

// Best selects the preferred match from a set of matches accumulated at one
// scan start: greatest Len, ties broken by smallest Rule. This is
// leftmost-longest with earliest-declared-rule priority (spec.md §4.3).
func Best(matches []MatchRecord) (MatchRecord, bool) {
	if len(matches) == 0 {
		return MatchRecord{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Len > best.Len || (m.Len == best.Len && m.Rule < best.Rule) {
			best = m
		}
	}
	return best, true
}

// Token is one accepted lexeme from Apply: the rule that matched, its byte
// offset in the original text, and its matched text.
type Token struct {
	Rule int
	Pos  int
	Text string
}

// Skip is one character Apply advanced over with no match (consecutive
// unmatched characters each get their own Skip), with the
// policy spec.md §7 describes: "an input with no match at some position is
// not an error; the outer loop advances." Callers that want to treat an
// unmatched run as an error can inspect the Skips Apply returns.
type Skip struct {
	Pos  int
	Text string
}

// Apply runs the outer tokenize loop over the whole of text: at each
// position it takes all_matches_at, and if any matched, takes Best and
// records a Token, advancing by the match length (or by one char if the
// match was zero-length, guaranteeing forward progress); if none matched,
// it records a Skip and advances by one char.
func (s *Scanner) Apply(text string) ([]Token, []Skip) {
	var tokens []Token
	var skips []Skip

	pos := 0
	for pos < len(text) {
		matches := s.AllMatchesAt(text, pos)
		_, charSize, _ := decodeAt(text, pos)
		if charSize == 0 {
			charSize = 1
		}

		m, ok := Best(matches)
		if !ok {
			skips = append(skips, Skip{Pos: pos, Text: text[pos : pos+charSize]})
			pos += charSize
			continue
		}

		tokens = append(tokens, Token{Rule: m.Rule, Pos: pos, Text: text[pos : pos+m.Len]})
		if m.Len > charSize {
			pos += m.Len
		} else {
			pos += charSize
		}
	}

	return tokens, skips
}
