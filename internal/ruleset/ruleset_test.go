package ruleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LoadLines(t *testing.T) {
	assert := assert.New(t)

	data := []byte("# a comment\n\n(?i)[a-z]+\n\n[0-9]+\n# trailing comment\n[.,?!]\n")
	rs, err := LoadLines(data)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(DefaultState, rs.StartState)
	if !assert.Len(rs.Rules, 3) {
		return
	}
	assert.Equal("(?i)[a-z]+", rs.Rules[0].Pattern)
	assert.Equal("rule0", rs.Rules[0].ActionName)
	assert.Equal("[0-9]+", rs.Rules[1].Pattern)
	assert.Equal("rule1", rs.Rules[1].ActionName)
	assert.Equal("[.,?!]", rs.Rules[2].Pattern)
	assert.Equal("rule2", rs.Rules[2].ActionName)
	for _, r := range rs.Rules {
		assert.Equal(DefaultState, r.State)
	}
}

func Test_LoadLines_emptyIsError(t *testing.T) {
	assert := assert.New(t)

	_, err := LoadLines([]byte("# only comments\n\n"))
	assert.Error(err)
}

func Test_LoadTOML(t *testing.T) {
	assert := assert.New(t)

	data := []byte(`
start = "default"

[[state]]
name = "default"

  [[state.rule]]
  pattern = "[a-z]+"
  action = "word"

  [[state.rule]]
  pattern = "\""
  action = "quote"

[[state]]
name = "instring"

  [[state.rule]]
  pattern = "[^\"]+"
  action = "strbody"
`)

	rs, err := LoadTOML(data)
	if !assert.NoError(err) {
		return
	}

	assert.Equal("default", rs.StartState)
	if !assert.Len(rs.Rules, 3) {
		return
	}
	assert.Equal(Rule{Pattern: "[a-z]+", ActionName: "word", State: "default"}, rs.Rules[0])
	assert.Equal(Rule{Pattern: `"`, ActionName: "quote", State: "default"}, rs.Rules[1])
	assert.Equal(Rule{Pattern: `[^"]+`, ActionName: "strbody", State: "instring"}, rs.Rules[2])
}

func Test_LoadTOML_missingStartIsError(t *testing.T) {
	assert := assert.New(t)

	_, err := LoadTOML([]byte(`
start = "nope"

[[state]]
name = "default"
  [[state.rule]]
  pattern = "a"
  action = "a"
`))
	assert.Error(err)
}

func Test_LoadTOML_ruleWithoutActionIsError(t *testing.T) {
	assert := assert.New(t)

	_, err := LoadTOML([]byte(`
start = "default"

[[state]]
name = "default"
  [[state.rule]]
  pattern = "a"
`))
	assert.Error(err)
}
