package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sceneAnalysisPrompt = `Describe this photo for a children's bedtime story.
Respond with a JSON object of this exact shape:
{"subjects": ["who or what is in the photo"], "setting": "where the photo takes place", "mood": "the overall feeling", "details": ["small notable details"]}
Keep every value short and child-friendly.`

// analyzeScenes produces one scene description per image URL. Analyses run
// concurrently; a failed or unparseable analysis yields a generic scene so
// the composer always receives one description per image.
func (p *Pipeline) analyzeScenes(ctx context.Context, imageURLs []string, log *zap.Logger) []*SceneDescription {
	scenes := make([]*SceneDescription, len(imageURLs))

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range imageURLs {
		g.Go(func() error {
			raw, err := p.vision.DescribeImage(gctx, sceneAnalysisPrompt, url)
			if err != nil {
				log.Warn("scene analysis failed, using generic description", zap.Int("index", i), zap.Error(err))
				scenes[i] = genericScene("")
				return nil
			}
			scenes[i] = parseSceneDescription(raw)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors, failures degrade to generic scenes

	if len(scenes) == 0 {
		scenes = []*SceneDescription{genericScene("")}
	}
	return scenes
}

// parseSceneDescription parses the model response defensively: a fenced JSON
// block first, then the whole body, then a generic fallback.
func parseSceneDescription(raw string) *SceneDescription {
	if block, ok := extractFencedBlock(raw); ok {
		if scene := unmarshalScene(block, raw); scene != nil {
			return scene
		}
	}
	if scene := unmarshalScene(raw, raw); scene != nil {
		return scene
	}
	return genericScene(raw)
}

func unmarshalScene(data, raw string) *SceneDescription {
	var scene SceneDescription
	if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &scene); err != nil {
		return nil
	}
	if len(scene.Subjects) == 0 && scene.Setting == "" {
		return nil
	}
	if scene.Mood == "" {
		scene.Mood = "peaceful"
	}
	scene.RawText = raw
	return &scene
}

func genericScene(raw string) *SceneDescription {
	return &SceneDescription{
		Subjects: []string{"child", "character"},
		Setting:  "a cozy, familiar place",
		Mood:     "peaceful",
		RawText:  raw,
	}
}

// extractFencedBlock returns the contents of the first ``` fence, tolerating
// an optional language tag after the opening backticks.
func extractFencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		// Drop the language tag line ("json", etc.)
		if tag := strings.TrimSpace(rest[:nl]); tag == "" || !strings.ContainsAny(tag, "{}[]") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
