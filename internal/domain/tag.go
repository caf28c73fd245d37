package domain

import "time"

// TagCandidate is the raw output of one tag-generation call for one image.
// Rows are append-only: they record what the model produced, per import
// attempt, and are never updated.
type TagCandidate struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageID       int64       `gorm:"not null;index:idx_tag_candidates_image" json:"image_id"`
	ImageURL      string      `gorm:"type:text" json:"image_url"`
	Tags          StringArray `gorm:"type:text" json:"tags"`
	Model         string      `gorm:"type:text" json:"model"`
	PromptVersion string      `gorm:"type:text" json:"prompt_version"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (TagCandidate) TableName() string {
	return "image_tag_candidates"
}

// Tag is one canonical (image, tag text, source) triple.
type Tag struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageID   int64     `gorm:"not null;uniqueIndex:idx_image_tags_unique" json:"image_id"`
	Tag       string    `gorm:"type:text;not null;uniqueIndex:idx_image_tags_unique;index:idx_image_tags_tag" json:"tag"`
	Source    string    `gorm:"type:text;uniqueIndex:idx_image_tags_unique" json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "image_tags"
}

// TagCategory maps a tag text to a broad category for one image. The mapping
// is global per tag text: once a text is categorized, every image carrying it
// inherits the category without another model call.
type TagCategory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageID   int64     `gorm:"not null;index:idx_tag_categories_image" json:"image_id"`
	Tag       string    `gorm:"type:text;not null;index:idx_tag_categories_tag" json:"tag"`
	Category  string    `gorm:"type:text;not null" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (TagCategory) TableName() string {
	return "image_tag_categories"
}
