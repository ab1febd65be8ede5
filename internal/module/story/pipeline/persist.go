package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/lullaby-ai/server/internal/module/story"
)

// persist writes the story row and its child rows. The story insert is the
// only fatal operation; child inserts are best effort once the parent row
// is committed.
func (p *Pipeline) persist(
	ctx context.Context,
	storyID, userID uuid.UUID,
	req *story.GenerationRequest,
	generated *GeneratedStory,
	narration *NarrationAsset,
	imageURLs []string,
	scenes []*SceneDescription,
	log *zap.Logger,
) (*story.Story, error) {
	musicID := p.resolveMusic(ctx, req.BackgroundMusic, log)

	storagePath := fmt.Sprintf("stories/%s", storyID)
	voiceID := req.VoiceID
	now := time.Now()

	persisted := &story.Story{
		ID:                storyID,
		UserID:            userID,
		Title:             generated.Title,
		TextContent:       generated.Content,
		Theme:             req.Theme,
		DurationSeconds:   story.ResolveDurationSeconds(req.Duration),
		Language:          req.Language,
		AudioURL:          narration.AudioURL,
		BackgroundMusicID: musicID,
		VoiceProfileID:    &voiceID,
		StoragePath:       &storagePath,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := p.repo.CreateStory(ctx, persisted); err != nil {
		return nil, newStageError(KindPersistence, "persist story", err)
	}

	if err := p.repo.CreateImages(ctx, imageRows(storyID, imageURLs, scenes)); err != nil {
		log.Warn("persisting image rows failed", zap.Error(newStageError(KindChildPersistence, "persist images", err)))
	}
	if err := p.repo.CreateCharacters(ctx, characterRows(storyID, req.Characters)); err != nil {
		log.Warn("persisting character rows failed", zap.Error(newStageError(KindChildPersistence, "persist characters", err)))
	}

	return persisted, nil
}

// resolveMusic maps the request's background music reference to a track ID.
// UUID-shaped references pass through unchanged; anything else is treated as
// a category name, resolving to nil when no track matches.
func (p *Pipeline) resolveMusic(ctx context.Context, ref string, log *zap.Logger) *uuid.UUID {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, "none") {
		return nil
	}

	if id, err := uuid.Parse(ref); err == nil {
		return &id
	}

	track, err := p.repo.FindMusicByCategory(ctx, ref)
	if err != nil {
		log.Debug("background music lookup failed", zap.String("category", ref), zap.Error(err))
		return nil
	}
	return &track.ID
}

func imageRows(storyID uuid.UUID, imageURLs []string, scenes []*SceneDescription) []*story.StoryImage {
	rows := make([]*story.StoryImage, 0, len(imageURLs))
	for i, url := range imageURLs {
		row := &story.StoryImage{
			StoryID:       storyID,
			URL:           url,
			SequenceIndex: i + 1,
		}
		if i < len(scenes) && scenes[i] != nil {
			row.Subjects = pq.StringArray(scenes[i].Subjects)
			row.Setting = scenes[i].Setting
			row.Mood = scenes[i].Mood
			row.Details = pq.StringArray(scenes[i].Details)
			row.RawAnalysis = scenes[i].RawText
		}
		rows = append(rows, row)
	}
	return rows
}

func characterRows(storyID uuid.UUID, characters []story.CharacterInput) []*story.StoryCharacter {
	rows := make([]*story.StoryCharacter, 0, len(characters))
	for _, c := range characters {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		rows = append(rows, &story.StoryCharacter{
			StoryID:     storyID,
			Name:        name,
			Description: c.Description,
		})
	}
	return rows
}
