package domain

import (
	"github.com/pgvector/pgvector-go"
)

// Category is one node of the two-level browse taxonomy. Top-level categories
// have a nil ParentID; children point at a top-level id. Nothing deeper is
// allowed, which the repository validates on insert.
type Category struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string           `gorm:"type:text;not null" json:"name"`
	Slug        string           `gorm:"type:text;not null;uniqueIndex:idx_categories_slug" json:"slug"`
	ParentID    *int64           `gorm:"index:idx_categories_parent" json:"parent_id,omitempty"`
	Description string           `gorm:"type:text" json:"description"`
	Vector      *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
}

func (Category) TableName() string {
	return "image_categories"
}

// CategoryMatch is a closest-category lookup row.
type CategoryMatch struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Distance float64 `json:"distance"`
}
