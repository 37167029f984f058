// Package ruleset loads rule sets — ordered (pattern, action name) pairs
// plus a starting state — from either of two external formats: the plain
// line-based rule file spec.md §6 documents, or a richer TOML document that
// additionally groups rules by lexer state. Neither format knows about the
// action callables themselves; those are supplied by the driver (cmd/lexrun,
// cmd/lexserve) keyed by ActionName, per spec.md §1's non-goal of keeping
// the action callback set an external collaborator.
package ruleset

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultState is the implicit state name used for rule sets loaded from
// the line-based format, which has no notion of lexer states.
const DefaultState = "default"

// Rule is one (pattern, action) pairing belonging to a state.
type Rule struct {
	Pattern    string
	ActionName string
	State      string
}

// RuleSet is an ordered group of Rules plus the state tokenizing should
// begin in.
type RuleSet struct {
	Rules      []Rule
	StartState string
}

// LoadLines parses the plain rule-file format: UTF-8 text, one pattern per
// line, blank lines ignored, lines beginning with '#' are comments. Rules
// are assigned a generated action name ("rule0", "rule1", ...) in line
// order, all in DefaultState; callers that need a specific class-to-rule
// mapping should use LoadTOML instead.
func LoadLines(data []byte) (*RuleSet, error) {
	rs := &RuleSet{StartState: DefaultState}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rs.Rules = append(rs.Rules, Rule{
			Pattern:    line,
			ActionName: fmt.Sprintf("rule%d", len(rs.Rules)),
			State:      DefaultState,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	if len(rs.Rules) == 0 {
		return nil, fmt.Errorf("rule file %d lines in: no patterns found", lineNo)
	}
	return rs, nil
}

// tomlDoc is the shape of a TOML rule-set document:
//
//	start = "default"
//
//	[[state]]
//	name = "default"
//	  [[state.rule]]
//	  pattern = "(?i)[a-z]+"
//	  action  = "word"
type tomlDoc struct {
	Start  string      `toml:"start"`
	States []tomlState `toml:"state"`
}

type tomlState struct {
	Name  string     `toml:"name"`
	Rules []tomlRule `toml:"rule"`
}

type tomlRule struct {
	Pattern string `toml:"pattern"`
	Action  string `toml:"action"`
}

// LoadTOML parses the richer TOML rule-set format, which can name multiple
// lexer states and give each rule its own action name.
func LoadTOML(data []byte) (*RuleSet, error) {
	var doc tomlDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parse rule set TOML: %w", err)
	}

	if doc.Start == "" {
		return nil, fmt.Errorf("rule set TOML: missing required \"start\" state name")
	}
	if len(doc.States) == 0 {
		return nil, fmt.Errorf("rule set TOML: no [[state]] tables defined")
	}

	rs := &RuleSet{StartState: doc.Start}
	startFound := false
	for _, st := range doc.States {
		if st.Name == "" {
			return nil, fmt.Errorf("rule set TOML: a [[state]] table is missing \"name\"")
		}
		if st.Name == doc.Start {
			startFound = true
		}
		for _, r := range st.Rules {
			if r.Pattern == "" {
				return nil, fmt.Errorf("rule set TOML: state %q has a rule with no pattern", st.Name)
			}
			if r.Action == "" {
				return nil, fmt.Errorf("rule set TOML: state %q, pattern %q has no action", st.Name, r.Pattern)
			}
			rs.Rules = append(rs.Rules, Rule{Pattern: r.Pattern, ActionName: r.Action, State: st.Name})
		}
	}
	if !startFound {
		return nil, fmt.Errorf("rule set TOML: start state %q is not defined by any [[state]] table", doc.Start)
	}

	return rs, nil
}
