package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("advisor.json", "narrative")
	require.NoError(t, err)
	assert.Contains(t, prompt, "overall_analysis")
	assert.Contains(t, prompt, "{{.RiskValue}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("chat.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() { assert.NotEmpty(t, MustGet("chat.json", "fallback")) })
}

func TestFormat(t *testing.T) {
	result := Format("Risk {{.RiskValue}} for {{.Name}}, {{.Name}}!", map[string]string{
		"RiskValue": "25",
		"Name":      "Ana",
	})
	assert.Equal(t, "Risk 25 for Ana, Ana!", result)
}

func TestFormat_LeavesUnknownPlaceholders(t *testing.T) {
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", map[string]string{}))
	assert.Equal(t, "No placeholders", Format("No placeholders", map[string]string{"Key": "v"}))
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render("chat.json", "conversation", map[string]string{
		"System":  "SYS",
		"Context": "{}",
		"History": "(none)",
		"Message": "Is travel cover worth it?",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "SYS")
	assert.Contains(t, out, "Customer: Is travel cover worth it?")
	assert.NotContains(t, out, "{{.")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("chat.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"conversation", "fallback", "system"}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get("advisor.json", "narrative")
	require.NoError(t, err)
	prompt2, err := Get("advisor.json", "narrative")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
