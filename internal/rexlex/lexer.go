package rexlex

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/rexlex/internal/lexerr"
	"github.com/dekarrin/rexlex/internal/reinterp"
	"github.com/dekarrin/rexlex/internal/reparse"
	"github.com/dekarrin/rexlex/internal/retrans"
	"github.com/dekarrin/rexlex/internal/types"
	"github.com/dekarrin/rexlex/internal/util"
)

type ruleEntry struct {
	pattern string
	action  RuleAction
}

// Lexer is the multi-state driver built on top of Builder/Tokenizer: each
// state owns its own compiled program, and a RuleAction may additionally
// swap the active state, the way a classic lex/flex "start condition" does.
// It is the replacement for the teacher's regexp-backed lexerTemplate.
type Lexer struct {
	startState string
	patterns   map[string][]ruleEntry
	classes    map[string]map[string]types.TokenClass
}

// NewLexer returns an empty Lexer that begins tokenizing in startState.
func NewLexer(startState string) *Lexer {
	return &Lexer{
		startState: startState,
		patterns:   map[string][]ruleEntry{},
		classes:    map[string]map[string]types.TokenClass{},
	}
}

// AddClass registers cl as usable by rules added to forState. If a class
// with the same ID was already added for that state, it is replaced.
func (lx *Lexer) AddClass(cl types.TokenClass, forState string) {
	stateClasses, ok := lx.classes[forState]
	if !ok {
		stateClasses = map[string]types.TokenClass{}
	}
	stateClasses[cl.ID()] = cl
	lx.classes[forState] = stateClasses
}

// AddPattern registers pattern (parsed and compiled on each Lex call) as
// a rule of forState, bound to action. An ActionScan or ActionScanAndState
// action must name a class already added to forState with AddClass; an
// ActionState or ActionScanAndState action must name a non-empty State.
func (lx *Lexer) AddPattern(pattern string, action RuleAction, forState string) error {
	if action.Type == ActionScan || action.Type == ActionScanAndState {
		stateClasses := lx.classes[forState]
		if _, ok := stateClasses[action.ClassID]; !ok {
			known := make([]string, 0, len(stateClasses))
			for id := range stateClasses {
				known = append(known, id)
			}
			if len(known) == 0 {
				return fmt.Errorf("%q is not a defined token class on state %q; add it with AddClass first", action.ClassID, forState)
			}
			return fmt.Errorf("%q is not a defined token class on state %q; defined classes are %s", action.ClassID, forState, util.MakeTextList(known))
		}
	}
	if action.Type == ActionState || action.Type == ActionScanAndState {
		if action.State == "" {
			return fmt.Errorf("action includes a state shift but does not name a state to shift to")
		}
	}

	lx.patterns[forState] = append(lx.patterns[forState], ruleEntry{pattern: pattern, action: action})
	return nil
}

// compiledState is one state's compiled program plus the RuleAction bound
// to each of its rule ids.
type compiledState struct {
	scanner *reinterp.Scanner
	actions []RuleAction
}

func (lx *Lexer) compileState(state string) (*compiledState, error) {
	entries := lx.patterns[state]
	tr := retrans.New()
	actions := make([]RuleAction, len(entries))

	for i, e := range entries {
		term, err := reparse.Parse(e.pattern)
		if err != nil {
			return nil, lexerr.New(fmt.Sprintf("state %q, rule %d (%q)", state, i, e.pattern), err)
		}
		if err := tr.Compile(term, i); err != nil {
			return nil, lexerr.New(fmt.Sprintf("state %q, rule %d (%q)", state, i, e.pattern), err)
		}
		actions[i] = e.action
	}

	prog, err := tr.Finish()
	if err != nil {
		return nil, lexerr.New(fmt.Sprintf("state %q", state), err)
	}
	return &compiledState{scanner: reinterp.NewScanner(prog), actions: actions}, nil
}

// Lex compiles every state's rules and returns a lazily-evaluated
// types.TokenStream over input. Errors here are build-time (a state failed
// to compile); lexical errors encountered while scanning are reported as
// types.TokenError tokens from the returned stream, per convention.
func (lx *Lexer) Lex(input string) (types.TokenStream, error) {
	compiled := make(map[string]*compiledState, len(lx.patterns))
	for state := range lx.patterns {
		cs, err := lx.compileState(state)
		if err != nil {
			return nil, err
		}
		compiled[state] = cs
	}
	if _, ok := compiled[lx.startState]; !ok {
		return nil, fmt.Errorf("rexlex: start state %q has no patterns", lx.startState)
	}

	return &lazyStream{
		text:        input,
		state:       lx.startState,
		compiled:    compiled,
		classes:     lx.classes,
		curLine:     1,
		curPos:      1,
		curFullLine: lineAt(input, 0),
	}, nil
}

// ImmediatelyLex is Lex, but eagerly drains the whole stream and fails on
// the first lexical error, per spec.md §7's "abort this rule" policy
// extended to "abort this lex" for drivers that want all-or-nothing
// tokenization.
func (lx *Lexer) ImmediatelyLex(input string) (types.TokenStream, error) {
	lazy, err := lx.Lex(input)
	if err != nil {
		return nil, err
	}

	var tokens []types.Token
	for lazy.HasNext() {
		tok := lazy.Next()
		if tok.Class().ID() == types.TokenError.ID() {
			return nil, lexerr.New(fmt.Sprintf("line %d, pos %d", tok.Line(), tok.LinePos()), fmt.Errorf("%s", tok.Lexeme()))
		}
		tokens = append(tokens, tok)
	}
	return &immediateTokenStream{tokens: tokens}, nil
}

// lazyStream is the types.TokenStream Lex returns: it scans one token at a
// time, re-using each state's reinterp.Scanner, advancing through states
// rules until it has a token to hand back (Discard and state-only rules
// consume input without producing one).
type lazyStream struct {
	text     string
	pos      int
	state    string
	compiled map[string]*compiledState
	classes  map[string]map[string]types.TokenClass

	curLine     int
	curPos      int
	curFullLine string

	done   bool
	peeked types.Token
	hasPk  bool
}

func charSizeAt(text string, pos int) int {
	if pos >= len(text) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(text[pos:])
	if size == 0 {
		size = 1
	}
	return size
}

// lineAt returns the full text of the line containing byte offset pos.
func lineAt(text string, pos int) string {
	if pos > len(text) {
		pos = len(text)
	}
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	rel := strings.IndexByte(text[pos:], '\n')
	end := len(text)
	if rel >= 0 {
		end = pos + rel
	}
	return text[start:end]
}

// advance moves the stream's cursor from s.pos to newPos, tracking line and
// column over the consumed span, and returns the consumed text.
func (s *lazyStream) advance(newPos int) string {
	consumed := s.text[s.pos:newPos]
	for _, r := range consumed {
		if r == '\n' {
			s.curLine++
			s.curPos = 1
		} else {
			s.curPos++
		}
	}
	s.pos = newPos
	s.curFullLine = lineAt(s.text, s.pos)
	return consumed
}

func (s *lazyStream) endOfTextToken() lexToken {
	return lexToken{class: types.TokenEndOfText, line: s.curFullLine, linePos: s.curPos, lineNum: s.curLine}
}

func (s *lazyStream) errorToken(msg string) lexToken {
	return lexToken{class: types.TokenError, lexed: msg, line: s.curFullLine, linePos: s.curPos, lineNum: s.curLine}
}

// computeNext runs the state machine until it has a token to return or
// reaches the end of input. It never blocks: every branch either returns a
// token or makes forward progress on s.pos.
func (s *lazyStream) computeNext() types.Token {
	for {
		if s.pos >= len(s.text) {
			s.done = true
			return s.endOfTextToken()
		}

		cs, ok := s.compiled[s.state]
		if !ok {
			s.done = true
			return s.errorToken(fmt.Sprintf("lexer entered undefined state %q", s.state))
		}

		matches := cs.scanner.AllMatchesAt(s.text, s.pos)
		m, ok := reinterp.Best(matches)
		if !ok {
			charSize := charSizeAt(s.text, s.pos)
			badChar := s.text[s.pos : s.pos+charSize]
			s.advance(s.pos + charSize)
			return s.errorToken(fmt.Sprintf("unexpected character %q", badChar))
		}

		action := cs.actions[m.Rule]
		charSize := charSizeAt(s.text, s.pos)
		newPos := s.pos + m.Len
		if charSize > m.Len {
			newPos = s.pos + charSize
		}
		lineNum, linePos, fullLine := s.curLine, s.curPos, s.curFullLine
		matchedText := s.text[s.pos : s.pos+m.Len]
		s.advance(newPos)

		switch action.Type {
		case ActionNone:
			continue
		case ActionState:
			s.state = action.State
			continue
		case ActionScan:
			return lexToken{
				class: s.resolveClass(action.ClassID), lexed: matchedText,
				lineNum: lineNum, linePos: linePos, line: fullLine,
			}
		case ActionScanAndState:
			tok := lexToken{
				class: s.resolveClass(action.ClassID), lexed: matchedText,
				lineNum: lineNum, linePos: linePos, line: fullLine,
			}
			s.state = action.State
			return tok
		default:
			panic("rexlex: unknown ActionType")
		}
	}
}

func (s *lazyStream) resolveClass(classID string) types.TokenClass {
	for _, stateClasses := range s.classes {
		if cl, ok := stateClasses[classID]; ok {
			return cl
		}
	}
	return types.MakeDefaultClass(classID)
}

func (s *lazyStream) Next() types.Token {
	if s.hasPk {
		tok := s.peeked
		s.hasPk = false
		return tok
	}
	if s.done {
		return s.endOfTextToken()
	}
	return s.computeNext()
}

func (s *lazyStream) Peek() types.Token {
	if !s.hasPk {
		if s.done {
			return s.endOfTextToken()
		}
		s.peeked = s.computeNext()
		s.hasPk = true
	}
	return s.peeked
}

func (s *lazyStream) HasNext() bool {
	return s.Peek().Class().ID() != types.TokenEndOfText.ID()
}

// immediateTokenStream is a pre-drained types.TokenStream, as produced by
// Lexer.ImmediatelyLex.
type immediateTokenStream struct {
	tokens []types.Token
	cur    int
}

func (s *immediateTokenStream) Next() types.Token {
	if s.cur >= len(s.tokens) {
		return lexToken{class: types.TokenEndOfText}
	}
	t := s.tokens[s.cur]
	s.cur++
	return t
}

func (s *immediateTokenStream) Peek() types.Token {
	if s.cur >= len(s.tokens) {
		return lexToken{class: types.TokenEndOfText}
	}
	return s.tokens[s.cur]
}

func (s *immediateTokenStream) HasNext() bool {
	return s.cur < len(s.tokens)
}
