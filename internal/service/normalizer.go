package service

import (
	"context"
	"fmt"
	"time"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
)

// Categorizer assigns one broad category to each tag.
type Categorizer interface {
	CategorizeTags(ctx context.Context, tags []string) (map[string]string, error)
}

// normalizerTagStore is the slice of the tag repository the normalizer uses.
type normalizerTagStore interface {
	MappedTagTexts(ctx context.Context) (map[string]struct{}, error)
	ListTagsPage(ctx context.Context, limit, offset int) ([]domain.Tag, error)
	InsertTagCategory(ctx context.Context, tc *domain.TagCategory) error
}

// TagNormalizer walks the tag table in pages and assigns a category to every
// tag text not mapped yet. The mapped set is loaded once up front and
// extended as rows land, so a rerun over an unchanged table makes no model
// calls at all. The page offset advances whether or not a page produced new
// work, which makes the walk resumable after a mid-run failure.
type TagNormalizer struct {
	store       normalizerTagStore
	categorizer Categorizer

	pageSize  int
	batchSize int
	rateLimit time.Duration
	sleep     SleepFunc
}

// TagNormalizerConfig holds configuration for the normalizer worker.
type TagNormalizerConfig struct {
	PageSize  int
	BatchSize int
	RateLimit time.Duration
	Sleep     SleepFunc
}

// NewTagNormalizer creates a new tag normalizer worker.
func NewTagNormalizer(store normalizerTagStore, categorizer Categorizer, cfg *TagNormalizerConfig) *TagNormalizer {
	n := &TagNormalizer{
		store:       store,
		categorizer: categorizer,
		pageSize:    1000,
		batchSize:   200,
		rateLimit:   2 * time.Second,
		sleep:       sleepContext,
	}
	if cfg == nil {
		return n
	}
	if cfg.PageSize > 0 {
		n.pageSize = cfg.PageSize
	}
	if cfg.BatchSize > 0 {
		n.batchSize = cfg.BatchSize
	}
	if cfg.RateLimit > 0 {
		n.rateLimit = cfg.RateLimit
	}
	if cfg.Sleep != nil {
		n.sleep = cfg.Sleep
	}
	return n
}

// Run walks the whole tag table once. It returns the number of distinct tag
// texts categorized during this run.
func (n *TagNormalizer) Run(ctx context.Context) (int, error) {
	ctx = logger.WithField(ctx, logger.FieldComponent, "tag-normalizer")

	mapped, err := n.store.MappedTagTexts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load mapped tags: %w", err)
	}
	logger.CtxInfo(ctx, "Loaded mapped tag texts: count=%d", len(mapped))

	offset := 0
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		rows, err := n.store.ListTagsPage(ctx, n.pageSize, offset)
		if err != nil {
			return processed, fmt.Errorf("list tags at offset %d: %w", offset, err)
		}
		if len(rows) == 0 {
			logger.CtxInfo(ctx, "All tags processed: total=%d", processed)
			return processed, nil
		}

		// Distinct unmapped tag texts in this page, capped to one model call.
		seen := make(map[string]struct{}, len(rows))
		var batch []string
		for _, row := range rows {
			if _, ok := mapped[row.Tag]; ok {
				continue
			}
			if _, ok := seen[row.Tag]; ok {
				continue
			}
			seen[row.Tag] = struct{}{}
			if len(batch) < n.batchSize {
				batch = append(batch, row.Tag)
			}
		}

		if len(batch) == 0 {
			offset += n.pageSize
			continue
		}

		logger.CtxInfo(ctx, "Categorizing tags: count=%d offset=%d", len(batch), offset)
		categories, err := n.categorizer.CategorizeTags(ctx, batch)
		if err != nil {
			return processed, fmt.Errorf("categorize batch at offset %d: %w", offset, err)
		}

		for _, tag := range batch {
			category, ok := categories[tag]
			if !ok || category == "" {
				logger.CtxWarn(ctx, "No category assigned for tag: tag=%q", tag)
				continue
			}
			for _, row := range rows {
				if row.Tag != tag {
					continue
				}
				tc := &domain.TagCategory{ImageID: row.ImageID, Tag: row.Tag, Category: category}
				if err := n.store.InsertTagCategory(ctx, tc); err != nil {
					logger.CtxWarn(ctx, "Failed to insert tag category: image_id=%d tag=%q error=%v", row.ImageID, row.Tag, err)
					continue
				}
				mapped[row.Tag] = struct{}{}
			}
			n.sleep(ctx, n.rateLimit)
		}

		processed += len(batch)
		offset += n.pageSize
	}
}
