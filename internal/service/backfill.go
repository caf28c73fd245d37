package service

import (
	"context"
	"fmt"
	"time"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
)

// backfillCategoryStore is the slice of the category repository the backfill uses.
type backfillCategoryStore interface {
	ListMissingVector(ctx context.Context) ([]domain.Category, error)
	UpdateVector(ctx context.Context, id int64, vec []float32) error
}

// backfillImageStore is the slice of the image repository the backfill uses.
type backfillImageStore interface {
	ListMissingVector(ctx context.Context, limit int) ([]domain.Image, error)
	UpdateVectorByURL(ctx context.Context, url string, vec []float32) error
}

// backfillTagStore supplies the tags needed to rebuild an image's canonical text.
type backfillTagStore interface {
	TagsByImage(ctx context.Context, imageID int64) ([]domain.Tag, error)
}

// VectorBackfill embeds rows whose vector column is still NULL: categories
// from their name and description, images from the same canonical text the
// import pipeline uses. A fixed delay between model calls keeps the worker
// under the provider's rate limit; per-row failures are recorded and the run
// continues.
type VectorBackfill struct {
	categories backfillCategoryStore
	images     backfillImageStore
	tags       backfillTagStore
	embedder   Embedder

	batchSize int
	rateLimit time.Duration
	sleep     SleepFunc
}

// VectorBackfillConfig holds configuration for the backfill worker.
type VectorBackfillConfig struct {
	BatchSize int
	RateLimit time.Duration
	Sleep     SleepFunc
}

// NewVectorBackfill creates a new backfill worker.
func NewVectorBackfill(categories backfillCategoryStore, images backfillImageStore, tags backfillTagStore, embedder Embedder, cfg *VectorBackfillConfig) *VectorBackfill {
	b := &VectorBackfill{
		categories: categories,
		images:     images,
		tags:       tags,
		embedder:   embedder,
		batchSize:  50,
		rateLimit:  1500 * time.Millisecond,
		sleep:      sleepContext,
	}
	if cfg == nil {
		return b
	}
	if cfg.BatchSize > 0 {
		b.batchSize = cfg.BatchSize
	}
	if cfg.RateLimit > 0 {
		b.rateLimit = cfg.RateLimit
	}
	if cfg.Sleep != nil {
		b.sleep = cfg.Sleep
	}
	return b
}

// BackfillFailure records one row the backfill could not embed.
type BackfillFailure struct {
	ID    int64
	Error error
}

// RunCategories embeds every category missing a vector. It returns the
// number embedded and the rows that failed.
func (b *VectorBackfill) RunCategories(ctx context.Context) (int, []BackfillFailure, error) {
	ctx = logger.WithField(ctx, logger.FieldComponent, "category-backfill")

	rows, err := b.categories.ListMissingVector(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list categories missing vector: %w", err)
	}
	logger.CtxInfo(ctx, "Categories missing vector: count=%d", len(rows))

	var failures []BackfillFailure
	done := 0
	for i := range rows {
		if err := ctx.Err(); err != nil {
			return done, failures, err
		}
		category := &rows[i]

		text := category.Name
		if category.Description != "" {
			text = category.Name + ". " + category.Description
		}
		vec, err := b.embedder.Embed(ctx, text)
		if err != nil {
			logger.CtxWarn(ctx, "Failed to embed category: id=%d slug=%s error=%v", category.ID, category.Slug, err)
			failures = append(failures, BackfillFailure{ID: category.ID, Error: err})
			continue
		}
		if err := b.categories.UpdateVector(ctx, category.ID, vec); err != nil {
			logger.CtxWarn(ctx, "Failed to store category vector: id=%d error=%v", category.ID, err)
			failures = append(failures, BackfillFailure{ID: category.ID, Error: err})
			continue
		}
		done++
		logger.CtxInfo(ctx, "Category vector saved: id=%d slug=%s", category.ID, category.Slug)
		b.sleep(ctx, b.rateLimit)
	}
	return done, failures, nil
}

// RunImages embeds images left without a vector, batch by batch until none
// remain. Rows that fail are skipped within the run but stay unembedded, so
// they are picked up again by the next run.
func (b *VectorBackfill) RunImages(ctx context.Context) (int, []BackfillFailure, error) {
	ctx = logger.WithField(ctx, logger.FieldComponent, "image-backfill")

	var failures []BackfillFailure
	failed := make(map[int64]struct{})
	done := 0
	for {
		if err := ctx.Err(); err != nil {
			return done, failures, err
		}

		rows, err := b.images.ListMissingVector(ctx, b.batchSize)
		if err != nil {
			return done, failures, fmt.Errorf("list images missing vector: %w", err)
		}

		progressed := false
		for i := range rows {
			image := &rows[i]
			if _, ok := failed[image.ID]; ok {
				continue
			}
			progressed = true

			tagRows, err := b.tags.TagsByImage(ctx, image.ID)
			if err != nil {
				return done, failures, fmt.Errorf("load tags for image %d: %w", image.ID, err)
			}
			tags := make([]string, 0, len(tagRows))
			for _, t := range tagRows {
				tags = append(tags, t.Tag)
			}

			vec, err := b.embedder.Embed(ctx, EmbeddingText(image, tags))
			if err != nil {
				logger.CtxWarn(ctx, "Failed to embed image: image_id=%d error=%v", image.ID, err)
				failures = append(failures, BackfillFailure{ID: image.ID, Error: err})
				failed[image.ID] = struct{}{}
				continue
			}
			if err := b.images.UpdateVectorByURL(ctx, image.URL, vec); err != nil {
				logger.CtxWarn(ctx, "Failed to store image vector: image_id=%d error=%v", image.ID, err)
				failures = append(failures, BackfillFailure{ID: image.ID, Error: err})
				failed[image.ID] = struct{}{}
				continue
			}
			done++
			logger.CtxInfo(ctx, "Image vector saved: image_id=%d", image.ID)
			b.sleep(ctx, b.rateLimit)
		}

		if !progressed {
			logger.CtxInfo(ctx, "Image backfill complete: embedded=%d failed=%d", done, len(failures))
			return done, failures, nil
		}
	}
}
