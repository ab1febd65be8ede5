package story

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Theme represents the narrative theme of a story.
type Theme string

const (
	ThemeAdventure   Theme = "adventure"
	ThemeFantasy     Theme = "fantasy"
	ThemeBedtime     Theme = "bedtime"
	ThemeEducational Theme = "educational"
	ThemeCustomized  Theme = "customized"
)

// IsValid checks if the theme is a known theme.
func (t Theme) IsValid() bool {
	switch t {
	case ThemeAdventure, ThemeFantasy, ThemeBedtime, ThemeEducational, ThemeCustomized:
		return true
	default:
		return false
	}
}

var themePhrases = map[Theme]string{
	ThemeAdventure:   "an exciting adventure story with gentle thrills and a happy ending",
	ThemeFantasy:     "a magical fantasy story full of wonder and friendly enchantment",
	ThemeBedtime:     "a calm and peaceful story perfect for transitioning to sleep",
	ThemeEducational: "a gently educational story that weaves a small lesson into a soothing tale",
	ThemeCustomized:  "a personalized story woven closely around the children and scenes provided",
}

// Phrase returns the descriptive phrase used in generation prompts. Unknown
// themes use the adventure phrase.
func (t Theme) Phrase() string {
	if phrase, ok := themePhrases[t]; ok {
		return phrase
	}
	return themePhrases[ThemeAdventure]
}

// DurationBucket represents the requested story length.
type DurationBucket string

const (
	DurationShort  DurationBucket = "short"
	DurationMedium DurationBucket = "medium"
	DurationLong   DurationBucket = "long"
)

// DurationSpec holds the generation targets for a duration bucket.
type DurationSpec struct {
	Words      int
	Paragraphs int
	Seconds    int
}

var durationTable = map[DurationBucket]DurationSpec{
	DurationShort:  {Words: 300, Paragraphs: 5, Seconds: 300},
	DurationMedium: {Words: 600, Paragraphs: 8, Seconds: 600},
	DurationLong:   {Words: 900, Paragraphs: 12, Seconds: 900},
}

// Spec returns the generation targets for the bucket. Unknown buckets use
// the medium targets.
func (b DurationBucket) Spec() DurationSpec {
	if spec, ok := durationTable[b]; ok {
		return spec
	}
	return durationTable[DurationMedium]
}

// ResolveDurationSeconds maps a duration value to seconds. Numeric strings
// pass through as-is; anything else is treated as a bucket name.
func ResolveDurationSeconds(v string) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return DurationBucket(v).Spec().Seconds
}

// Story is the durable record of one completed generation.
type Story struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title             string     `json:"title" gorm:"not null"`
	TextContent       string     `json:"text_content" gorm:"column:text_content;not null"`
	Theme             string     `json:"theme" gorm:"not null"`
	DurationSeconds   int        `json:"duration_seconds" gorm:"column:duration_seconds;not null"`
	Language          string     `json:"language" gorm:"not null"`
	AudioURL          *string    `json:"audio_url,omitempty" gorm:"column:audio_url"`
	BackgroundMusicID *uuid.UUID `json:"background_music_id,omitempty" gorm:"column:background_music_id;type:uuid"`
	VoiceProfileID    *string    `json:"voice_profile_id,omitempty" gorm:"column:voice_profile_id"`
	StoragePath       *string    `json:"storage_path,omitempty" gorm:"column:storage_path"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the database table name.
func (Story) TableName() string {
	return "stories"
}

// StoryImage is a source photo attached to a story, with its scene analysis.
type StoryImage struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoryID       uuid.UUID      `json:"story_id" gorm:"type:uuid;not null;index"`
	URL           string         `json:"url" gorm:"not null"`
	SequenceIndex int            `json:"sequence_index" gorm:"column:sequence_index;not null"`
	Subjects      pq.StringArray `json:"subjects" gorm:"type:text[]"`
	Setting       string         `json:"setting"`
	Mood          string         `json:"mood"`
	Details       pq.StringArray `json:"details" gorm:"type:text[]"`
	RawAnalysis   string         `json:"raw_analysis,omitempty" gorm:"column:raw_analysis"`
	CreatedAt     time.Time      `json:"created_at" gorm:"column:created_at"`
}

// TableName returns the database table name.
func (StoryImage) TableName() string {
	return "story_images"
}

// StoryCharacter is a named character attached to a story.
type StoryCharacter struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoryID     uuid.UUID `json:"story_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

// TableName returns the database table name.
func (StoryCharacter) TableName() string {
	return "story_characters"
}

// BackgroundMusic is a curated music track selectable by category.
type BackgroundMusic struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string    `json:"name" gorm:"not null"`
	Category string    `json:"category" gorm:"not null;index"`
	URL      string    `json:"url" gorm:"not null"`
}

// TableName returns the database table name.
func (BackgroundMusic) TableName() string {
	return "background_music"
}
