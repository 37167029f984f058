package server

import (
	"errors"
	"net/http"

	"github.com/dekarrin/rexlex/internal/rexlex"
	"github.com/dekarrin/rexlex/internal/server/dao"
	"github.com/dekarrin/rexlex/internal/server/result"
	"github.com/dekarrin/rexlex/internal/server/serr"
)

// RuleModel is the wire shape of one dao.RuleEntry.
type RuleModel struct {
	Pattern string `json:"pattern"`
	Action  string `json:"action"`
	State   string `json:"state,omitempty"`
}

// RuleSetModel is the wire shape of a dao.RuleSet, both for registration
// requests and for responses.
type RuleSetModel struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name"`
	StartState string      `json:"start_state"`
	NoCase     bool        `json:"no_case"`
	Rules      []RuleModel `json:"rules"`
}

func ruleSetToModel(rs dao.RuleSet) RuleSetModel {
	m := RuleSetModel{
		ID:         rs.ID.String(),
		Name:       rs.Name,
		StartState: rs.StartState,
		NoCase:     rs.NoCase,
	}
	for _, r := range rs.Rules {
		m.Rules = append(m.Rules, RuleModel{Pattern: r.Pattern, Action: r.ActionName, State: r.State})
	}
	return m
}

func modelToRuleSet(m RuleSetModel) dao.RuleSet {
	rs := dao.RuleSet{
		Name:       m.Name,
		StartState: m.StartState,
		NoCase:     m.NoCase,
	}
	for _, r := range m.Rules {
		state := r.State
		if state == "" {
			state = m.StartState
		}
		rs.Rules = append(rs.Rules, dao.RuleEntry{Pattern: r.Pattern, ActionName: r.Action, State: state})
	}
	return rs
}

// validateRuleSet checks that every rule's pattern is parseable and
// compiles as a whole program, the same check cmd/lexrun's buildTokenizer
// performs on a loaded ruleset.RuleSet, but without keeping the result:
// callers that need a live Tokenizer build one again via buildTokenizer.
func validateRuleSet(rs dao.RuleSet) error {
	if rs.Name == "" {
		return errors.New("name: property is empty or missing from request")
	}
	if rs.StartState == "" {
		return errors.New("start_state: property is empty or missing from request")
	}
	if len(rs.Rules) == 0 {
		return errors.New("rules: at least one rule is required")
	}

	b := rexlex.NewBuilder()
	for _, r := range rs.Rules {
		if r.ActionName == "" {
			return errors.New("rules: every rule requires an action name")
		}
		if _, err := b.AddRule(r.Pattern, nil); err != nil {
			return errors.New("rule " + r.Pattern + ": " + err.Error())
		}
	}
	if _, err := b.Finish(); err != nil {
		return err
	}
	return nil
}

// HTTPCreateRuleSet returns a HandlerFunc that registers a new named rule
// set.
func (api API) HTTPCreateRuleSet() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateRuleSet)
}

func (api API) epCreateRuleSet(req *http.Request) result.Result {
	var m RuleSetModel
	if err := parseJSON(req, &m); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	rs := modelToRuleSet(m)
	if err := validateRuleSet(rs); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	created, err := api.Store.RuleSets().Create(req.Context(), rs)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return result.Conflict("rule set '"+rs.Name+"' already exists", "rule set '%s' already exists", rs.Name)
		}
		return result.InternalServerError("could not create rule set: " + err.Error())
	}

	return result.Created(ruleSetToModel(created), "rule set '%s' successfully registered", created.Name)
}

// HTTPGetAllRuleSets returns a HandlerFunc that lists every registered rule
// set.
func (api API) HTTPGetAllRuleSets() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllRuleSets)
}

func (api API) epGetAllRuleSets(req *http.Request) result.Result {
	all, err := api.Store.RuleSets().GetAll(req.Context())
	if err != nil {
		return result.InternalServerError("could not get rule sets: " + err.Error())
	}

	models := make([]RuleSetModel, len(all))
	for i, rs := range all {
		models[i] = ruleSetToModel(rs)
	}

	return result.OK(models, "got all rule sets")
}

// HTTPGetRuleSet returns a HandlerFunc that gets a single rule set by ID.
func (api API) HTTPGetRuleSet() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetRuleSet)
}

func (api API) epGetRuleSet(req *http.Request) result.Result {
	id := requireIDParam(req)

	rs, err := api.Store.RuleSets().GetByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) || errors.Is(err, dao.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not get rule set: " + err.Error())
	}

	return result.OK(ruleSetToModel(rs), "got rule set '%s'", rs.Name)
}

// HTTPDeleteRuleSet returns a HandlerFunc that removes a registered rule
// set.
func (api API) HTTPDeleteRuleSet() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteRuleSet)
}

func (api API) epDeleteRuleSet(req *http.Request) result.Result {
	id := requireIDParam(req)

	deleted, err := api.Store.RuleSets().Delete(req.Context(), id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete rule set: " + err.Error())
	}

	return result.NoContent("rule set '%s' successfully deleted", deleted.Name)
}
