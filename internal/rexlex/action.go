package rexlex

// ActionType tags what a RuleAction does when its pattern wins a match.
type ActionType int

const (
	// ActionNone discards the matched text: no token is produced, no state
	// change happens. Used for whitespace and comments.
	ActionNone ActionType = iota
	// ActionScan emits a token of ClassID.
	ActionScan
	// ActionState swaps the active lexer state to State; no token is
	// produced. Used to enter a sub-mode (e.g. a quoted-string state) on
	// seeing a delimiter that is not itself part of any token.
	ActionState
	// ActionScanAndState emits a token of ClassID and swaps to State.
	ActionScanAndState
)

// RuleAction is what AddPattern binds a compiled rule to. Build one with
// SwapState, LexAs, LexAndSwapState, or Discard.
type RuleAction struct {
	Type    ActionType
	ClassID string
	State   string
}

// SwapState returns a RuleAction that transitions the lexer to toState
// without producing a token.
func SwapState(toState string) RuleAction {
	return RuleAction{Type: ActionState, State: toState}
}

// LexAs returns a RuleAction that emits a token of the given class ID.
func LexAs(classID string) RuleAction {
	return RuleAction{Type: ActionScan, ClassID: classID}
}

// LexAndSwapState returns a RuleAction that emits a token of classID and
// then transitions the lexer to newState.
func LexAndSwapState(classID string, newState string) RuleAction {
	return RuleAction{Type: ActionScanAndState, ClassID: classID, State: newState}
}

// Discard returns a RuleAction that produces no token and causes no state
// change; the matched text is simply skipped.
func Discard() RuleAction {
	return RuleAction{}
}
