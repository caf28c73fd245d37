package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Image represents one imported media asset with its metadata and embedding.
// The canonical URL is the identity: the importer never creates two rows for
// the same URL.
type Image struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	URL         string           `gorm:"type:text;not null;uniqueIndex:idx_images_url" json:"url"`
	Title       string           `gorm:"type:text" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Categories  StringArray      `gorm:"type:text" json:"categories"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	Mime        string           `gorm:"type:text" json:"mime"`
	TakenAt     *string          `gorm:"type:text" json:"taken_at,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
	Source      string           `gorm:"type:text" json:"source"`
	Attribution string           `gorm:"type:text" json:"attribution"`
	LicenseName string           `gorm:"type:text" json:"license_name"`
	LicenseURL  string           `gorm:"type:text" json:"license_url"`
	Owner       string           `gorm:"type:text" json:"owner"`
	InfoURL     string           `gorm:"type:text" json:"info_url"`
	Featured    bool             `gorm:"default:false;index:idx_images_featured" json:"featured"`
	Vector      *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
}

// TableName returns the database table name for Image.
func (Image) TableName() string {
	return "images"
}

// ImageSearchResult is one similarity-search row. Distance is the vector
// distance to the query, TotalCount the size of the whole result set for the
// query (identical on every row, used for pagination).
type ImageSearchResult struct {
	Image
	Distance   float64 `json:"distance"`
	TotalCount int64   `json:"-"`
}
