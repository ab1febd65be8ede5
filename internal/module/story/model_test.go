package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationBucket_Spec(t *testing.T) {
	tests := []struct {
		bucket         DurationBucket
		wantWords      int
		wantParagraphs int
		wantSeconds    int
	}{
		{DurationShort, 300, 5, 300},
		{DurationMedium, 600, 8, 600},
		{DurationLong, 900, 12, 900},
		{DurationBucket("epic"), 600, 8, 600},
		{DurationBucket(""), 600, 8, 600},
	}

	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			spec := tt.bucket.Spec()
			assert.Equal(t, tt.wantWords, spec.Words)
			assert.Equal(t, tt.wantParagraphs, spec.Paragraphs)
			assert.Equal(t, tt.wantSeconds, spec.Seconds)
		})
	}
}

func TestResolveDurationSeconds(t *testing.T) {
	assert.Equal(t, 300, ResolveDurationSeconds("short"))
	assert.Equal(t, 600, ResolveDurationSeconds("medium"))
	assert.Equal(t, 900, ResolveDurationSeconds("long"))
	assert.Equal(t, 600, ResolveDurationSeconds("unknown"))
	assert.Equal(t, 450, ResolveDurationSeconds("450"))
	assert.Equal(t, 600, ResolveDurationSeconds("-5"))
	assert.Equal(t, 600, ResolveDurationSeconds("0"))
}

func TestTheme(t *testing.T) {
	t.Run("validity", func(t *testing.T) {
		assert.True(t, ThemeAdventure.IsValid())
		assert.True(t, ThemeBedtime.IsValid())
		assert.False(t, Theme("horror").IsValid())
	})

	t.Run("phrase fallback", func(t *testing.T) {
		assert.Equal(t, themePhrases[ThemeBedtime], ThemeBedtime.Phrase())
		assert.Equal(t, themePhrases[ThemeAdventure], Theme("horror").Phrase())
	})
}
