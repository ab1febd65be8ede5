package story

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for story data access.
type Repository interface {
	// Story operations
	CreateStory(ctx context.Context, story *Story) error
	CreateImages(ctx context.Context, images []*StoryImage) error
	CreateCharacters(ctx context.Context, characters []*StoryCharacter) error
	GetStory(ctx context.Context, id, userID uuid.UUID) (*Story, error)
	ListStories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Story, error)
	ListImages(ctx context.Context, storyID uuid.UUID) ([]*StoryImage, error)

	// Background music operations
	FindMusicByCategory(ctx context.Context, category string) (*BackgroundMusic, error)
}

type repository struct {
	db *gorm.DB

	// Music tracks are a small, rarely-changing catalog.
	musicCache *gocache.Cache
}

// NewRepository creates a new story repository. musicTTL bounds how long
// category lookups are served from memory.
func NewRepository(db *gorm.DB, musicTTL time.Duration) Repository {
	if musicTTL <= 0 {
		musicTTL = 10 * time.Minute
	}
	return &repository{
		db:         db,
		musicCache: gocache.New(musicTTL, 2*musicTTL),
	}
}

// --- Story Operations ---

func (r *repository) CreateStory(ctx context.Context, story *Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *repository) CreateImages(ctx context.Context, images []*StoryImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(images).Error
}

func (r *repository) CreateCharacters(ctx context.Context, characters []*StoryCharacter) error {
	if len(characters) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(characters).Error
}

func (r *repository) GetStory(ctx context.Context, id, userID uuid.UUID) (*Story, error) {
	var story Story
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&story).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return &story, nil
}

func (r *repository) ListStories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Story, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var stories []*Story
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *repository) ListImages(ctx context.Context, storyID uuid.UUID) ([]*StoryImage, error) {
	var images []*StoryImage
	err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("sequence_index ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// --- Background Music Operations ---

func (r *repository) FindMusicByCategory(ctx context.Context, category string) (*BackgroundMusic, error) {
	key := strings.ToLower(strings.TrimSpace(category))

	if cached, ok := r.musicCache.Get(key); ok {
		if track, ok := cached.(*BackgroundMusic); ok {
			return track, nil
		}
	}

	var track BackgroundMusic
	err := r.db.WithContext(ctx).
		Where("LOWER(category) = ?", key).
		Order("name ASC").
		First(&track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMusicNotFound
		}
		return nil, err
	}

	r.musicCache.Set(key, &track, gocache.DefaultExpiration)
	return &track, nil
}
