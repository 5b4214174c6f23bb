package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json fence", input: "```json\n{\"risk_factors\": []}\n```", expected: `{"risk_factors": []}`},
		{name: "bare fence", input: "```\n{\"a\": 1}\n```", expected: `{"a": 1}`},
		{name: "other language tag", input: "```javascript\n{\"a\": 1}\n```", expected: `{"a": 1}`},
		{name: "plain object", input: `{"a": 1}`, expected: `{"a": 1}`},
		{name: "preamble", input: "Here is your analysis:\n{\"overall_analysis\": \"ok\"}", expected: `{"overall_analysis": "ok"}`},
		{name: "array after preamble", input: "Tips:\n[\"a\", \"b\"]", expected: `["a", "b"]`},
		{name: "trailing chatter", input: "{\"a\": 1}\n\nHope this helps!", expected: `{"a": 1}`},
		{name: "escaped quotes", input: `Result: {"m": "say \"hi\" {now}"}`, expected: `{"m": "say \"hi\" {now}"}`},
		{name: "nested", input: `x {"a": {"b": [1, {"c": 2}]}} y`, expected: `{"a": {"b": [1, {"c": 2}]}}`},
		{name: "no json", input: "  sorry, cannot help  ", expected: "sorry, cannot help"},
		{name: "unbalanced", input: `{"a": 1`, expected: `{"a": 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"k": [1, 2]}`, extractJSONObject(`{"k": [1, 2]} tail`))
	assert.Equal(t, `{"t": "Hello {name}!"}`, extractJSONObject(`{"t": "Hello {name}!"}`))
	assert.Equal(t, "", extractJSONObject(""))
	assert.Equal(t, "", extractJSONObject("not json"))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[[1, 2], [3]]`, extractJSONArray(`[[1, 2], [3]] extra`))
	assert.Equal(t, `[{"id": "]"}]`, extractJSONArray(`[{"id": "]"}]`))
	assert.Equal(t, "", extractJSONArray(""))
	assert.Equal(t, "", extractJSONArray("nope"))
}
