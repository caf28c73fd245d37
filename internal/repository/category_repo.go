package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
)

// ErrInvalidParent is returned when a category insert would break the
// two-level taxonomy: a child may only point at a top-level category.
var ErrInvalidParent = errors.New("parent category is not top-level")

// CategoryRepository handles category data operations.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category, validating that a non-nil parent is itself a
// top-level category. The schema only has a self-referencing parent_id, so
// nothing else enforces the two-level shape.
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ParentID != nil {
		var parent domain.Category
		if err := r.db.WithContext(ctx).First(&parent, "id = ?", *category.ParentID).Error; err != nil {
			return fmt.Errorf("failed to resolve parent category: %w", err)
		}
		if parent.ParentID != nil {
			return ErrInvalidParent
		}
	}
	return r.db.WithContext(ctx).Create(category).Error
}

// GetBySlug retrieves a category by its slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListTopLevel returns all top-level categories ordered by name.
func (r *CategoryRepository) ListTopLevel(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListChildren returns the children of a top-level category ordered by name.
func (r *CategoryRepository) ListChildren(ctx context.Context, parentID int64) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListMissingVector returns categories whose embedding has not been computed
// yet, for the backfill worker.
func (r *CategoryRepository) ListMissingVector(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).
		Where("vector IS NULL").
		Order("id ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateVector stores the embedding on a category row.
func (r *CategoryRepository) UpdateVector(ctx context.Context, id int64, vec []float32) error {
	v := pgvector.NewVector(vec)
	return r.db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ?", id).
		Update("vector", &v).Error
}

// ClosestCategories ranks embedded categories by distance to an image vector.
func (r *CategoryRepository) ClosestCategories(ctx context.Context, vec []float32, limit int) ([]domain.CategoryMatch, error) {
	query := pgvector.NewVector(vec)
	var matches []domain.CategoryMatch
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, slug,
		       vector <=> ? AS distance
		FROM image_categories
		WHERE vector IS NOT NULL
		ORDER BY distance
		LIMIT ?`,
		query, limit,
	).Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("closest-category query failed: %w", err)
	}
	return matches, nil
}
