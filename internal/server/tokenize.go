package server

import (
	"errors"
	"net/http"

	"github.com/dekarrin/rexlex/internal/rexlex"
	"github.com/dekarrin/rexlex/internal/server/dao"
	"github.com/dekarrin/rexlex/internal/server/result"
)

// TokenizeRequest names a registered rule set and gives the text to run it
// over.
type TokenizeRequest struct {
	RuleSet string `json:"ruleset"`
	Text    string `json:"text"`
}

// TokenModel is the wire shape of one accepted token.
type TokenModel struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

// TokenizeResponse is the ordered list of tokens a rule set's actions
// accepted from the request's text.
type TokenizeResponse struct {
	Tokens []TokenModel `json:"tokens"`
}

// buildTokenizer compiles rs into a rexlex.Tokenizer whose actions append
// each accepted token to the returned slice, in the order the tokens occur
// in the text, the same
// print-to-stdout-replaced-with-append adaptation cmd/lexrun's
// buildTokenizer makes for --cache misses.
func buildTokenizer(rs dao.RuleSet) (*rexlex.Tokenizer, *[]TokenModel, error) {
	tokens := &[]TokenModel{}

	b := rexlex.NewBuilder()
	for _, r := range rs.Rules {
		actionName := r.ActionName
		if _, err := b.AddRule(r.Pattern, func(text string) {
			*tokens = append(*tokens, TokenModel{Action: actionName, Text: text})
		}); err != nil {
			return nil, nil, err
		}
	}

	tz, err := b.Finish()
	if err != nil {
		return nil, nil, err
	}
	return tz, tokens, nil
}

// HTTPTokenize returns a HandlerFunc that runs a registered rule set's
// tokenizer over the request's text and returns the matched token stream.
func (api API) HTTPTokenize() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epTokenize)
}

func (api API) epTokenize(req *http.Request) result.Result {
	var tr TokenizeRequest
	if err := parseJSON(req, &tr); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if tr.RuleSet == "" {
		return result.BadRequest("ruleset: property is empty or missing from request", "empty ruleset")
	}

	rs, err := api.Store.RuleSets().GetByName(req.Context(), tr.RuleSet)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return result.NotFound("no such rule set '%s'", tr.RuleSet)
		}
		return result.InternalServerError("could not load rule set: " + err.Error())
	}

	tz, tokens, err := buildTokenizer(rs)
	if err != nil {
		return result.InternalServerError("could not compile rule set '%s': %s", rs.Name, err.Error())
	}

	tz.Run(tr.Text)

	return result.OK(TokenizeResponse{Tokens: *tokens}, "tokenized %d byte(s) against rule set '%s'", len(tr.Text), rs.Name)
}
