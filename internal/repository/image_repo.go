package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
)

// searchColumns are the image columns returned by similarity queries. The
// vector itself is deliberately excluded from result rows.
const searchColumns = "id, url, title, description, categories, width, height, mime, added_at, source, attribution, license_name, license_url, owner, info_url, featured"

// ImageRepository handles image data operations.
type ImageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new ImageRepository.
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// GetByID retrieves an image by its ID.
func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	var image domain.Image
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByURL retrieves an image by its canonical URL. This is the dedup gate:
// a hit means the importer must skip the remaining pipeline stages.
func (r *ImageRepository) GetByURL(ctx context.Context, url string) (*domain.Image, error) {
	var image domain.Image
	if err := r.db.WithContext(ctx).First(&image, "url = ?", url).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// Upsert creates or updates an image keyed by its canonical URL. The unique
// url index makes concurrent imports of the same file converge on one row;
// the returned record carries the row ID either way.
func (r *ImageRepository) Upsert(ctx context.Context, image *domain.Image) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		UpdateAll: true,
	}).Create(image).Error
}

// UpdateVectorByURL stores the embedding on the image row.
func (r *ImageRepository) UpdateVectorByURL(ctx context.Context, url string, vec []float32) error {
	v := pgvector.NewVector(vec)
	return r.db.WithContext(ctx).Model(&domain.Image{}).
		Where("url = ?", url).
		Update("vector", &v).Error
}

// SetFeatured flips the featured flag on an image.
func (r *ImageRepository) SetFeatured(ctx context.Context, id int64, featured bool) error {
	return r.db.WithContext(ctx).Model(&domain.Image{}).
		Where("id = ?", id).
		Update("featured", featured).Error
}

// ListCollection returns a page of the collection ordered featured-first then
// newest-first, with the exact total row count.
func (r *ImageRepository) ListCollection(ctx context.Context, limit, offset int) ([]domain.Image, int64, error) {
	var images []domain.Image
	if err := r.db.WithContext(ctx).
		Order("featured DESC").
		Order("added_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&images).Error; err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Image{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return images, total, nil
}

// LatestFeatured returns the most recently added featured image.
func (r *ImageRepository) LatestFeatured(ctx context.Context) (*domain.Image, error) {
	var image domain.Image
	if err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("added_at DESC").
		First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// RandomImages returns up to limit images in random order.
func (r *ImageRepository) RandomImages(ctx context.Context, limit int) ([]domain.Image, error) {
	var images []domain.Image
	if err := r.db.WithContext(ctx).
		Order("random()").
		Limit(limit).
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// ListMissingVector returns up to limit images that have not been embedded
// yet, oldest first.
func (r *ImageRepository) ListMissingVector(ctx context.Context, limit int) ([]domain.Image, error) {
	var images []domain.Image
	if err := r.db.WithContext(ctx).
		Where("vector IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// SearchByVector ranks embedded images by cosine distance to the query
// vector. Every row carries total_count, the size of the full result set, so
// callers can paginate without a second query.
func (r *ImageRepository) SearchByVector(ctx context.Context, vec []float32, limit, offset int) ([]domain.ImageSearchResult, error) {
	query := pgvector.NewVector(vec)
	var results []domain.ImageSearchResult
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT %s,
		       vector <=> ? AS distance,
		       count(*) OVER () AS total_count
		FROM images
		WHERE vector IS NOT NULL
		ORDER BY distance
		LIMIT ? OFFSET ?`, searchColumns),
		query, limit, offset,
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return results, nil
}

// ClosestImages returns images within a similarity threshold of the given
// vector, ordered by similarity. With featuredOnly set, only featured images
// qualify (used when picking a representative thumbnail for a category).
func (r *ImageRepository) ClosestImages(ctx context.Context, vec []float32, threshold float64, featuredOnly bool, limit, offset int) ([]domain.ImageSearchResult, error) {
	query := pgvector.NewVector(vec)
	featuredClause := ""
	if featuredOnly {
		featuredClause = "AND featured = true"
	}

	var results []domain.ImageSearchResult
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT %s,
		       vector <=> ? AS distance,
		       count(*) OVER () AS total_count
		FROM images
		WHERE vector IS NOT NULL
		  AND 1 - (vector <=> ?) >= ?
		  %s
		ORDER BY distance
		LIMIT ? OFFSET ?`, searchColumns, featuredClause),
		query, query, threshold, limit, offset,
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("closest-image query failed: %w", err)
	}
	return results, nil
}

// RelatedImages returns the nearest neighbors of an image's own stored
// vector, excluding the image itself.
func (r *ImageRepository) RelatedImages(ctx context.Context, imageID int64, limit int) ([]domain.ImageSearchResult, error) {
	var results []domain.ImageSearchResult
	err := r.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT %s,
		       vector <=> (SELECT vector FROM images WHERE id = ?) AS distance
		FROM images
		WHERE id <> ?
		  AND vector IS NOT NULL
		ORDER BY distance
		LIMIT ?`, searchColumns),
		imageID, imageID, limit,
	).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("related-image query failed: %w", err)
	}
	return results, nil
}
