package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
	"github.com/maggie-r-m-88/commonscapes/internal/source/wikimedia"
)

// MetadataFetcher retrieves file metadata from the external media repository.
type MetadataFetcher interface {
	FetchImageInfo(ctx context.Context, filename string) (*wikimedia.ImageInfo, error)
}

// TagGenerator produces discovery tags for an image draft.
type TagGenerator interface {
	GenerateTags(ctx context.Context, image *domain.Image) ([]string, error)
	Model() string
}

// Embedder produces embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// importImageStore is the slice of the image repository the importer needs.
type importImageStore interface {
	GetByURL(ctx context.Context, url string) (*domain.Image, error)
	Upsert(ctx context.Context, image *domain.Image) error
	UpdateVectorByURL(ctx context.Context, url string, vec []float32) error
}

// importTagStore is the slice of the tag repository the importer needs.
type importTagStore interface {
	InsertCandidate(ctx context.Context, candidate *domain.TagCandidate) error
	InsertTags(ctx context.Context, tags []domain.Tag) error
}

// ImportService runs the enrichment pipeline for one Commons file at a time:
// fetch, normalize, dedup, persist, tag, embed. A single-flight group keyed
// by filename keeps concurrent imports of the same file from racing the
// dedup gate; the unique url constraint backstops distinct filenames that
// resolve to the same upload.
type ImportService struct {
	fetcher  MetadataFetcher
	images   importImageStore
	tags     importTagStore
	tagger   TagGenerator
	embedder Embedder

	promptVersion string
	inflight      singleflight.Group
}

// ImportServiceConfig holds configuration for the import service.
type ImportServiceConfig struct {
	PromptVersion string
}

// NewImportService creates a new import orchestrator.
func NewImportService(
	fetcher MetadataFetcher,
	images importImageStore,
	tags importTagStore,
	tagger TagGenerator,
	embedder Embedder,
	cfg *ImportServiceConfig,
) *ImportService {
	promptVersion := "v1"
	if cfg != nil && cfg.PromptVersion != "" {
		promptVersion = cfg.PromptVersion
	}
	return &ImportService{
		fetcher:       fetcher,
		images:        images,
		tags:          tags,
		tagger:        tagger,
		embedder:      embedder,
		promptVersion: promptVersion,
	}
}

// ImportResult reports what the pipeline did for one filename.
type ImportResult struct {
	Skipped      bool          `json:"skipped"`
	ID           int64         `json:"id"`
	Meta         *domain.Image `json:"meta,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	VectorLength int           `json:"vector_length,omitempty"`
}

// Import runs the pipeline for one filename. Callers importing the same
// filename concurrently share one in-flight run and its result.
func (s *ImportService) Import(ctx context.Context, filename string) (*ImportResult, error) {
	v, err, _ := s.inflight.Do(filename, func() (interface{}, error) {
		return s.doImport(ctx, filename)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ImportResult), nil
}

func (s *ImportService) doImport(ctx context.Context, filename string) (*ImportResult, error) {
	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldComponent: "import",
		logger.FieldFilename:  filename,
	})

	// Stage 1: fetch metadata from the external repository.
	info, err := s.fetcher.FetchImageInfo(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	if info == nil {
		return nil, ErrNotFound
	}

	// Stage 2: normalize into an image draft.
	meta := wikimedia.ExtractMetadata(filename, info)

	// Stage 3: dedup by canonical URL. A hit short-circuits the pipeline.
	existing, err := s.images.GetByURL(ctx, meta.URL)
	if err == nil {
		logger.CtxInfo(ctx, "Image already exists, skipping import: id=%d", existing.ID)
		return &ImportResult{Skipped: true, ID: existing.ID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("dedup check: %w", err)
	}

	// Stage 4: persist the draft, keyed on url so a rerun is idempotent.
	if err := s.images.Upsert(ctx, meta); err != nil {
		return nil, fmt.Errorf("persist metadata: %w", err)
	}
	ctx = logger.WithField(ctx, logger.FieldImageID, meta.ID)
	logger.CtxInfo(ctx, "Metadata persisted: url=%s", meta.URL)

	// Stage 5: generate tags. The candidate row is an audit record; failing
	// to write it does not abort the import.
	tags, err := s.tagger.GenerateTags(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("generate tags: %w", err)
	}
	logger.CtxInfo(ctx, "Tags generated: count=%d", len(tags))

	candidate := &domain.TagCandidate{
		ImageID:       meta.ID,
		ImageURL:      meta.URL,
		Tags:          tags,
		Model:         s.tagger.Model(),
		PromptVersion: s.promptVersion,
	}
	if err := s.tags.InsertCandidate(ctx, candidate); err != nil {
		logger.CtxWarn(ctx, "Failed to persist tag candidate: error=%v", err)
	}

	tagRows := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		tagRows = append(tagRows, domain.Tag{ImageID: meta.ID, Tag: t, Source: s.tagger.Model()})
	}
	if err := s.tags.InsertTags(ctx, tagRows); err != nil {
		logger.CtxWarn(ctx, "Failed to persist tags: error=%v", err)
	}

	// Stage 6: embed the canonical text.
	vector, err := s.embedder.Embed(ctx, EmbeddingText(meta, tags))
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}

	// Stage 7: store the vector. Failure leaves an un-embedded row behind,
	// which the search path tolerates, so the import still reports success.
	if err := s.images.UpdateVectorByURL(ctx, meta.URL, vector); err != nil {
		logger.CtxWarn(ctx, "Failed to persist vector: error=%v", err)
	} else {
		logger.CtxInfo(ctx, "Embedding persisted: length=%d", len(vector))
	}

	return &ImportResult{
		Skipped:      false,
		ID:           meta.ID,
		Meta:         meta,
		Tags:         tags,
		VectorLength: len(vector),
	}, nil
}

// EmbeddingText builds the canonical text an image's vector derives from:
// title, description, categories and generated tags, space-joined. If any of
// those change, the vector must be recomputed from the same concatenation.
func EmbeddingText(image *domain.Image, tags []string) string {
	parts := []string{
		image.Title,
		image.Description,
		strings.Join(image.Categories, " "),
		strings.Join(tags, " "),
	}
	return strings.Join(parts, " ")
}
