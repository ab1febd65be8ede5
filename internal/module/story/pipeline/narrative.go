package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lullaby-ai/server/internal/port/outbound"
)

const narrativeSystemPrompt = "You are a professional children's bedtime author. " +
	"You write warm, gentle stories that help young children wind down and fall asleep."

// DefaultTitle is the placeholder used when no title can be extracted from
// the model response.
const DefaultTitle = "A Bedtime Story"

// titleInstructions holds per-language templates for the title repair call.
var titleInstructions = map[string]string{
	"french":   "Réponds uniquement avec un titre d'histoire court, de 2 à 6 mots, en français.",
	"spanish":  "Responde únicamente con un título de cuento corto, de 2 a 6 palabras, en español.",
	"german":   "Antworte nur mit einem kurzen Geschichtentitel aus 2 bis 6 Wörtern, auf Deutsch.",
	"japanese": "2〜6語の短い物語のタイトルだけを日本語で答えてください。",
	"chinese":  "请只回复一个2到6个词的简短故事标题，用中文。",
}

// generateNarrative calls the text model with the composed prompt and parses
// the response into a title and body. A defective title (still the default
// placeholder, or apparently untranslated for a non-English target) triggers
// one repair call against the title model.
func (p *Pipeline) generateNarrative(ctx context.Context, prompt, language string) (*GeneratedStory, error) {
	text, err := p.text.Complete(ctx, &outbound.ChatRequest{
		System: narrativeSystemPrompt,
		User:   prompt,
	})
	if err != nil {
		return nil, newStageError(KindGeneration, "narrative generation", err)
	}

	title, content := splitTitle(text)
	if content == "" {
		return nil, newStageError(KindGeneration, "narrative generation", errors.New("model returned empty story body"))
	}

	generated := &GeneratedStory{Title: title, Content: content}

	if titleDefective(generated.Title, language) {
		fixed, err := p.regenerateTitle(ctx, generated.Content, language)
		if err != nil {
			p.logger.Warn("title repair failed, keeping original title", zap.Error(err))
		} else if fixed != "" {
			generated.Title = fixed
		}
	}

	return generated, nil
}

// splitTitle extracts the title from the model response: a "Title: ..." line
// or a leading markdown heading, stripped from the body. When neither is
// present the whole text becomes the body under the default title.
func splitTitle(text string) (string, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return DefaultTitle, ""
	}

	line, rest, _ := strings.Cut(trimmed, "\n")
	line = strings.TrimSpace(line)

	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "title:") {
		title := strings.TrimSpace(line[len("title:"):])
		title = strings.Trim(title, "\"“”")
		if title != "" {
			return title, strings.TrimSpace(rest)
		}
		return DefaultTitle, strings.TrimSpace(rest)
	}

	if strings.HasPrefix(line, "#") {
		title := strings.TrimSpace(strings.TrimLeft(line, "# "))
		if title != "" {
			return title, strings.TrimSpace(rest)
		}
	}

	return DefaultTitle, trimmed
}

// titleDefective reports whether the title needs a repair call: it is still
// the default placeholder, or the target language is not English yet the
// title is ASCII-only. The ASCII check is an approximation and will misfire
// for languages that legitimately render in Latin script.
func titleDefective(title, language string) bool {
	if title == DefaultTitle {
		return true
	}
	return !isEnglish(language) && isASCII(title)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return s != ""
}

// regenerateTitle issues a cheap model call whose only job is a short title
// in the target language, derived from an excerpt of the story.
func (p *Pipeline) regenerateTitle(ctx context.Context, content, language string) (string, error) {
	instruction, ok := titleInstructions[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		instruction = fmt.Sprintf("Reply with only a short story title, 2 to 6 words, written in %s.", language)
	}

	excerpt := cutBeforeRune(content, 300)

	title, err := p.titler.Complete(ctx, &outbound.ChatRequest{
		System:    instruction,
		User:      excerpt,
		MaxTokens: 60,
	})
	if err != nil {
		return "", newStageError(KindGeneration, "title repair", err)
	}

	title = strings.TrimSpace(title)
	title = strings.TrimPrefix(title, "Title:")
	title = strings.Trim(strings.TrimSpace(title), "\"“”")
	return title, nil
}

// FallbackStory returns the offline filler story used when the narrative
// model is unreachable or returns an unusable response.
func FallbackStory() *GeneratedStory {
	return &GeneratedStory{
		Title: DefaultTitle,
		Content: strings.Join([]string{
			"Once upon a time, as the sun slipped below the hills, a little one snuggled deep under a soft warm blanket.",
			"Outside the window, the stars blinked awake one by one, and the moon smiled its quiet silver smile.",
			"A gentle breeze drifted through the trees, carrying the sleepy songs of birds settling into their nests.",
			"The little one's eyes grew heavy, and every breath became slower, softer, like waves hushing along a shore.",
			"And wrapped in warmth and starlight, the little one drifted off into the sweetest of dreams. Goodnight.",
		}, "\n\n"),
	}
}
