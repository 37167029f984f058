package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/dekarrin/rexlex/internal/server/dao/sqlite"
	"github.com/dekarrin/rexlex/internal/server/token"
)

// chiRouteContext builds a request context carrying chi URL params, so
// handlers that call chi.URLParam can be exercised without standing up a
// full router.
func chiRouteContext(params map[string]string) context.Context {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
}

func newTestAPI(t *testing.T) API {
	store, err := sqlite.NewDatastore(t.TempDir())
	if err != nil {
		t.Fatalf("could not build test store: %s", err)
	}
	t.Cleanup(func() { store.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("test-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("could not hash test key: %s", err)
	}

	return API{
		Store:       store,
		UnauthDelay: 0,
		Secret:      []byte("test-secret"),
		KeyHash:     hash,
	}
}

func doJSON(t *testing.T, h http.HandlerFunc, method, path string, body interface{}, authTok string) *httptest.ResponseRecorder {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("could not marshal request body: %s", err)
		}
		bodyReader = bytes.NewBuffer(data)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if authTok != "" {
		req.Header.Set("Authorization", "Bearer "+authTok)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func Test_Login_validKeyIssuesToken(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)

	w := doJSON(t, api.HTTPLogin(), http.MethodPost, "/login", LoginRequest{APIKey: "test-key"}, "")
	if !assert.Equal(http.StatusCreated, w.Code) {
		return
	}

	var resp LoginResponse
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp)) {
		return
	}
	assert.NotEmpty(resp.Token)
	assert.NoError(token.Validate(resp.Token, api.Secret))
}

func Test_Login_badKeyIsUnauthorized(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)

	w := doJSON(t, api.HTTPLogin(), http.MethodPost, "/login", LoginRequest{APIKey: "wrong"}, "")
	assert.Equal(http.StatusUnauthorized, w.Code)
}

func Test_CreateRuleSet_thenTokenize(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)

	createBody := RuleSetModel{
		Name:       "words",
		StartState: "default",
		NoCase:     false,
		Rules: []RuleModel{
			{Pattern: "[a-z]+", Action: "word"},
			{Pattern: " +", Action: "space"},
		},
	}

	w := doJSON(t, api.HTTPCreateRuleSet(), http.MethodPost, "/rulesets", createBody, "")
	if !assert.Equal(http.StatusCreated, w.Code) {
		return
	}

	w = doJSON(t, api.HTTPTokenize(), http.MethodPost, "/tokenize", TokenizeRequest{RuleSet: "words", Text: "ab cd"}, "")
	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}

	var resp TokenizeResponse
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp)) {
		return
	}
	if !assert.Len(resp.Tokens, 3) {
		return
	}
	assert.Equal("word", resp.Tokens[0].Action)
	assert.Equal("ab", resp.Tokens[0].Text)
	assert.Equal("space", resp.Tokens[1].Action)
	assert.Equal("word", resp.Tokens[2].Action)
	assert.Equal("cd", resp.Tokens[2].Text)
}

func Test_CreateRuleSet_duplicateNameIsConflict(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)

	body := RuleSetModel{Name: "dup", StartState: "default", Rules: []RuleModel{{Pattern: "a", Action: "a"}}}

	w := doJSON(t, api.HTTPCreateRuleSet(), http.MethodPost, "/rulesets", body, "")
	assert.Equal(http.StatusCreated, w.Code)

	w = doJSON(t, api.HTTPCreateRuleSet(), http.MethodPost, "/rulesets", body, "")
	assert.Equal(http.StatusConflict, w.Code)
}

func Test_CreateRuleSet_badPatternIsBadRequest(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)

	body := RuleSetModel{Name: "bad", StartState: "default", Rules: []RuleModel{{Pattern: "(unterminated", Action: "a"}}}

	w := doJSON(t, api.HTTPCreateRuleSet(), http.MethodPost, "/rulesets", body, "")
	assert.Equal(http.StatusBadRequest, w.Code)
}

func Test_Tokenize_unknownRuleSetIsNotFound(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)

	w := doJSON(t, api.HTTPTokenize(), http.MethodPost, "/tokenize", TokenizeRequest{RuleSet: "nope", Text: "x"}, "")
	assert.Equal(http.StatusNotFound, w.Code)
}

func Test_GetAllRuleSets_andDelete(t *testing.T) {
	assert := assert.New(t)
	api := newTestAPI(t)

	body := RuleSetModel{Name: "listed", StartState: "default", Rules: []RuleModel{{Pattern: "a", Action: "a"}}}
	w := doJSON(t, api.HTTPCreateRuleSet(), http.MethodPost, "/rulesets", body, "")
	if !assert.Equal(http.StatusCreated, w.Code) {
		return
	}

	var created RuleSetModel
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &created)) {
		return
	}

	w = doJSON(t, api.HTTPGetAllRuleSets(), http.MethodGet, "/rulesets", nil, "")
	if !assert.Equal(http.StatusOK, w.Code) {
		return
	}
	var all []RuleSetModel
	if !assert.NoError(json.Unmarshal(w.Body.Bytes(), &all)) {
		return
	}
	assert.Len(all, 1)

	req := httptest.NewRequest(http.MethodDelete, "/rulesets/"+created.ID, nil)
	rc := chiRouteContext(map[string]string{"id": created.ID})
	req = req.WithContext(rc)
	wDel := httptest.NewRecorder()
	api.HTTPDeleteRuleSet().ServeHTTP(wDel, req)
	assert.Equal(http.StatusNoContent, wDel.Code)
}

// newTestAPI sets UnauthDelay to zero, so the 401/403/500 responses the
// other tests provoke do not sleep before being written.
func Test_unauthedDelay_zeroInTests(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, time.Duration(0), api.UnauthDelay)
}
