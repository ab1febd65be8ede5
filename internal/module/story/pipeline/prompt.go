package pipeline

import (
	"fmt"
	"strings"

	"github.com/lullaby-ai/server/internal/module/story"
)

// placeholderNames is used when the request names no characters.
var placeholderNames = []string{"the child", "the little one", "the dreamer"}

// ComposePrompt deterministically assembles the generation prompt from the
// analyzed scenes and the request parameters. It has no failure mode.
func ComposePrompt(scenes []*SceneDescription, characters []story.CharacterInput, theme story.Theme, bucket story.DurationBucket, language string) string {
	names := characterNames(characters)
	spec := bucket.Spec()

	var b strings.Builder

	fmt.Fprintf(&b, "Write a children's bedtime story: %s.\n\n", theme.Phrase())

	b.WriteString("Scenes from the family's photos:\n")
	for i, scene := range scenes {
		name := names[i%len(names)]
		fmt.Fprintf(&b, "Scene %d with %s: %s\n", i+1, name, describeScene(scene))
	}
	b.WriteString("\n")

	if described := describedCharacters(characters); len(described) > 0 {
		b.WriteString("Characters:\n")
		for _, c := range described {
			if c.Description != "" {
				fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
			} else {
				fmt.Fprintf(&b, "- %s\n", c.Name)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Guidelines:\n")
	fmt.Fprintf(&b, "- Aim for around %d words in about %d paragraphs.\n", spec.Words, spec.Paragraphs)
	b.WriteString("- Start with a warm, engaging opening, then let the tone grow gradually calmer toward a sleepy, soothing ending.\n")
	b.WriteString("- Begin your response with a single line of the form \"Title: <story title>\".\n")
	fmt.Fprintf(&b, "- Write the entire story, including the title, in %s.\n", language)

	return b.String()
}

// characterNames returns the usable character names for scene assignment,
// falling back to the placeholder triplet when none are named.
func characterNames(characters []story.CharacterInput) []string {
	names := make([]string, 0, len(characters))
	for _, c := range characters {
		if name := strings.TrimSpace(c.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return placeholderNames
	}
	return names
}

func describedCharacters(characters []story.CharacterInput) []story.CharacterInput {
	out := make([]story.CharacterInput, 0, len(characters))
	for _, c := range characters {
		if strings.TrimSpace(c.Name) != "" {
			out = append(out, c)
		}
	}
	return out
}

func describeScene(scene *SceneDescription) string {
	parts := make([]string, 0, 3)
	if len(scene.Subjects) > 0 {
		parts = append(parts, strings.Join(scene.Subjects, " and "))
	}
	if scene.Setting != "" {
		parts = append(parts, "in "+scene.Setting)
	}
	if scene.Mood != "" {
		parts = append(parts, "with a "+scene.Mood+" mood")
	}
	if len(scene.Details) > 0 {
		parts = append(parts, "("+strings.Join(scene.Details, ", ")+")")
	}
	if len(parts) == 0 {
		return "a quiet moment before bedtime"
	}
	return strings.Join(parts, " ")
}
