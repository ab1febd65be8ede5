package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSceneDescription(t *testing.T) {
	t.Run("fenced JSON block", func(t *testing.T) {
		raw := "Here is the analysis:\n```json\n{\"subjects\": [\"a girl\", \"a dog\"], \"setting\": \"a park\", \"mood\": \"playful\", \"details\": [\"a red ball\"]}\n```"
		scene := parseSceneDescription(raw)
		require.NotNil(t, scene)
		assert.Equal(t, []string{"a girl", "a dog"}, scene.Subjects)
		assert.Equal(t, "a park", scene.Setting)
		assert.Equal(t, "playful", scene.Mood)
		assert.Equal(t, []string{"a red ball"}, scene.Details)
		assert.Equal(t, raw, scene.RawText)
	})

	t.Run("bare JSON body", func(t *testing.T) {
		raw := `{"subjects": ["a boy"], "setting": "a beach"}`
		scene := parseSceneDescription(raw)
		assert.Equal(t, []string{"a boy"}, scene.Subjects)
		assert.Equal(t, "a beach", scene.Setting)
		assert.Equal(t, "peaceful", scene.Mood)
	})

	t.Run("prose falls back to generic scene", func(t *testing.T) {
		raw := "I see a lovely family photo at the beach."
		scene := parseSceneDescription(raw)
		assert.Equal(t, []string{"child", "character"}, scene.Subjects)
		assert.Equal(t, "a cozy, familiar place", scene.Setting)
		assert.Equal(t, "peaceful", scene.Mood)
		assert.Equal(t, raw, scene.RawText)
	})

	t.Run("empty JSON object falls back to generic scene", func(t *testing.T) {
		scene := parseSceneDescription("{}")
		assert.Equal(t, []string{"child", "character"}, scene.Subjects)
	})
}

func TestExtractFencedBlock(t *testing.T) {
	t.Run("with language tag", func(t *testing.T) {
		block, ok := extractFencedBlock("```json\n{\"a\": 1}\n```")
		require.True(t, ok)
		assert.Equal(t, "{\"a\": 1}\n", block)
	})

	t.Run("without language tag", func(t *testing.T) {
		block, ok := extractFencedBlock("```\n{\"a\": 1}\n```")
		require.True(t, ok)
		assert.Equal(t, "{\"a\": 1}\n", block)
	})

	t.Run("JSON on the opening line", func(t *testing.T) {
		block, ok := extractFencedBlock("```{\"a\": 1}```")
		require.True(t, ok)
		assert.Equal(t, "{\"a\": 1}", block)
	})

	t.Run("unterminated fence", func(t *testing.T) {
		_, ok := extractFencedBlock("```json\n{\"a\": 1}")
		assert.False(t, ok)
	})

	t.Run("no fence", func(t *testing.T) {
		_, ok := extractFencedBlock("{\"a\": 1}")
		assert.False(t, ok)
	})
}
