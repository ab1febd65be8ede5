package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lullaby-ai/server/internal/port/outbound"
)

// paragraphCutFloor is how deep a paragraph break must sit for truncation to
// prefer it over the raw character cut.
const paragraphCutFloor = 2000

// synthesizeNarration converts the story text to audio and uploads it. The
// returned asset always carries the (possibly truncated) source text; on
// error its AudioURL stays nil and the caller proceeds without audio.
func (p *Pipeline) synthesizeNarration(ctx context.Context, storyID uuid.UUID, text, voiceID, language string) (*NarrationAsset, error) {
	source := TruncateForSpeech(text, p.config.NarrationMaxChars)
	asset := &NarrationAsset{SourceText: source}

	audio, err := p.speech.Synthesize(ctx, &outbound.SpeechRequest{
		Input:    source,
		Voice:    voiceID,
		Language: LanguageCode(language),
	})
	if err != nil {
		return asset, newStageError(KindSynthesis, "speech synthesis", err)
	}

	key := fmt.Sprintf("stories/%s/narration.mp3", storyID)
	url, err := p.media.Upload(ctx, key, audio, "audio/mpeg")
	if err != nil {
		return asset, newStageError(KindSynthesis, "narration upload", err)
	}

	asset.AudioURL = &url
	return asset, nil
}

// TruncateForSpeech caps the text at maxChars. When the cap cuts the text,
// the cut is moved back to the last blank-line paragraph break, provided
// that break sits deep enough in the text; the break itself is kept.
func TruncateForSpeech(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 5000
	}
	if len(text) <= maxChars {
		return text
	}

	cut := cutBeforeRune(text, maxChars)
	if i := strings.LastIndex(cut, "\n\n"); i > paragraphCutFloor {
		return text[:i+2]
	}
	return cut
}

// cutBeforeRune slices the string at the byte offset, backed off so the cut
// never lands inside a multi-byte rune.
func cutBeforeRune(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
