package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
)

// TagRepository handles tag, tag-candidate and tag-category data operations.
type TagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// InsertCandidate records the raw output of one tag-generation call.
func (r *TagRepository) InsertCandidate(ctx context.Context, candidate *domain.TagCandidate) error {
	return r.db.WithContext(ctx).Create(candidate).Error
}

// InsertTags writes canonical tag rows for an image. Re-imports of the same
// image produce the same triples, which the unique index absorbs.
func (r *TagRepository) InsertTags(ctx context.Context, tags []domain.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "image_id"}, {Name: "tag"}, {Name: "source"}},
		DoNothing: true,
	}).Create(&tags).Error
}

// MappedTagTexts returns the set of tag texts that already have a category
// mapping. The normalizer uses it to avoid re-sending categorized tags.
func (r *TagRepository) MappedTagTexts(ctx context.Context) (map[string]struct{}, error) {
	var texts []string
	if err := r.db.WithContext(ctx).
		Model(&domain.TagCategory{}).
		Distinct("tag").
		Pluck("tag", &texts).Error; err != nil {
		return nil, err
	}
	mapped := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		mapped[t] = struct{}{}
	}
	return mapped, nil
}

// ListTagsPage returns one page of raw tags in deterministic order. The
// normalizer pages through the corpus with this, so the order must be stable
// across runs.
func (r *TagRepository) ListTagsPage(ctx context.Context, limit, offset int) ([]domain.Tag, error) {
	var tags []domain.Tag
	if err := r.db.WithContext(ctx).
		Order("tag ASC").
		Order("image_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// InsertTagCategory writes one (image, tag, category) mapping row.
func (r *TagRepository) InsertTagCategory(ctx context.Context, mapping *domain.TagCategory) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

// TagsByImage returns all tags for an image.
func (r *TagRepository) TagsByImage(ctx context.Context, imageID int64) ([]domain.Tag, error) {
	var tags []domain.Tag
	if err := r.db.WithContext(ctx).
		Where("image_id = ?", imageID).
		Order("tag ASC").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ImagesByTag returns the IDs of images carrying the given tag text.
func (r *TagRepository) ImagesByTag(ctx context.Context, tag string) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Tag{}).
		Where("tag = ?", tag).
		Pluck("image_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
