package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
	"github.com/maggie-r-m-88/commonscapes/internal/source/wikimedia"
)

// searchImageStore is the slice of the image repository the search paths use.
type searchImageStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Image, error)
	SearchByVector(ctx context.Context, vec []float32, limit, offset int) ([]domain.ImageSearchResult, error)
	ClosestImages(ctx context.Context, vec []float32, threshold float64, featuredOnly bool, limit, offset int) ([]domain.ImageSearchResult, error)
	RelatedImages(ctx context.Context, imageID int64, limit int) ([]domain.ImageSearchResult, error)
	ListCollection(ctx context.Context, limit, offset int) ([]domain.Image, int64, error)
	LatestFeatured(ctx context.Context) (*domain.Image, error)
	RandomImages(ctx context.Context, limit int) ([]domain.Image, error)
}

// searchCategoryStore is the slice of the category repository the search paths use.
type searchCategoryStore interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListTopLevel(ctx context.Context) ([]domain.Category, error)
	ListChildren(ctx context.Context, parentID int64) ([]domain.Category, error)
	ClosestCategories(ctx context.Context, vec []float32, limit int) ([]domain.CategoryMatch, error)
}

// SearchService serves every read path: free-text similarity search,
// category browsing, related images, taxonomy placement, the curated
// collection and the featured home screen.
type SearchService struct {
	images     searchImageStore
	categories searchCategoryStore
	embedder   Embedder

	defaultPageSize   int
	categoryThreshold float64
	relatedCount      int
	taxonomyCount     int
	thumbWidth        int
	heroWidth         int
}

// SearchServiceConfig holds tunables for the read paths.
type SearchServiceConfig struct {
	DefaultPageSize   int
	CategoryThreshold float64
	RelatedCount      int
	TaxonomyCount     int
	ThumbWidth        int
	HeroWidth         int
}

// NewSearchService creates a new search service.
func NewSearchService(images searchImageStore, categories searchCategoryStore, embedder Embedder, cfg *SearchServiceConfig) *SearchService {
	s := &SearchService{
		images:            images,
		categories:        categories,
		embedder:          embedder,
		defaultPageSize:   20,
		categoryThreshold: 0.19,
		relatedCount:      6,
		taxonomyCount:     2,
		thumbWidth:        1280,
		heroWidth:         2000,
	}
	if cfg == nil {
		return s
	}
	if cfg.DefaultPageSize > 0 {
		s.defaultPageSize = cfg.DefaultPageSize
	}
	if cfg.CategoryThreshold > 0 {
		s.categoryThreshold = cfg.CategoryThreshold
	}
	if cfg.RelatedCount > 0 {
		s.relatedCount = cfg.RelatedCount
	}
	if cfg.TaxonomyCount > 0 {
		s.taxonomyCount = cfg.TaxonomyCount
	}
	if cfg.ThumbWidth > 0 {
		s.thumbWidth = cfg.ThumbWidth
	}
	if cfg.HeroWidth > 0 {
		s.heroWidth = cfg.HeroWidth
	}
	return s
}

// ImageView is the shape every read path returns an image in. The vector
// never leaves the service; Similarity is set only on similarity-ranked
// paths.
type ImageView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ThumbURL    string    `json:"thumb_url"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Attribution string    `json:"attribution,omitempty"`
	LicenseName string    `json:"license_name,omitempty"`
	LicenseURL  string    `json:"license_url,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	InfoURL     string    `json:"info_url,omitempty"`
	Featured    bool      `json:"featured"`
	AddedAt     time.Time `json:"added_at"`
	Similarity  *float64  `json:"similarity,omitempty"`
}

func (s *SearchService) imageView(img *domain.Image, thumbWidth int) ImageView {
	return ImageView{
		ID:          img.ID,
		Title:       img.Title,
		Description: img.Description,
		URL:         img.URL,
		ThumbURL:    wikimedia.ThumbURL(img.URL, thumbWidth),
		Width:       img.Width,
		Height:      img.Height,
		Attribution: img.Attribution,
		LicenseName: img.LicenseName,
		LicenseURL:  img.LicenseURL,
		Owner:       img.Owner,
		InfoURL:     img.InfoURL,
		Featured:    img.Featured,
		AddedAt:     img.AddedAt,
	}
}

func (s *SearchService) rankedView(r *domain.ImageSearchResult) ImageView {
	view := s.imageView(&r.Image, s.thumbWidth)
	similarity := 1 - r.Distance
	view.Similarity = &similarity
	return view
}

// SearchResult is a page of similarity-ranked images.
type SearchResult struct {
	Results  []ImageView `json:"results"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int64       `json:"total"`
}

func (s *SearchService) normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.defaultPageSize
	}
	return page, pageSize
}

// Search embeds the query text and returns the nearest images by cosine
// distance, newest intent first by similarity.
func (s *SearchService) Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error) {
	page, pageSize = s.normalizePage(page, pageSize)
	ctx = logger.WithField(ctx, logger.FieldComponent, "search")

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := s.images.SearchByVector(ctx, vec, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Results:  make([]ImageView, 0, len(rows)),
		Page:     page,
		PageSize: pageSize,
	}
	for i := range rows {
		result.Results = append(result.Results, s.rankedView(&rows[i]))
	}
	if len(rows) > 0 {
		result.Total = rows[0].TotalCount
	}
	logger.CtxDebug(ctx, "Search completed: query=%q results=%d total=%d", query, len(rows), result.Total)
	return result, nil
}

// GetImage returns one image by id.
func (s *SearchService) GetImage(ctx context.Context, id int64) (*ImageView, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	view := s.imageView(img, s.thumbWidth)
	return &view, nil
}

// Related returns the images nearest to the given image's vector, excluding
// the image itself. An image that has not been embedded yet has no neighbors.
func (s *SearchService) Related(ctx context.Context, imageID int64) ([]ImageView, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if img.Vector == nil {
		return []ImageView{}, nil
	}

	rows, err := s.images.RelatedImages(ctx, imageID, s.relatedCount)
	if err != nil {
		return nil, err
	}
	views := make([]ImageView, 0, len(rows))
	for i := range rows {
		views = append(views, s.rankedView(&rows[i]))
	}
	return views, nil
}

// Taxonomy places an image in the category tree by returning the categories
// whose vectors are nearest to the image's vector.
func (s *SearchService) Taxonomy(ctx context.Context, imageID int64) ([]domain.CategoryMatch, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if img.Vector == nil {
		return []domain.CategoryMatch{}, nil
	}
	return s.categories.ClosestCategories(ctx, img.Vector.Slice(), s.taxonomyCount)
}

// CategoryImages returns the images whose similarity to the category vector
// clears the category threshold, paged. A category that has not been
// embedded yet matches nothing.
func (s *SearchService) CategoryImages(ctx context.Context, slug string, page, pageSize int) (*SearchResult, error) {
	page, pageSize = s.normalizePage(page, pageSize)

	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	result := &SearchResult{Results: []ImageView{}, Page: page, PageSize: pageSize}
	if category.Vector == nil {
		return result, nil
	}

	rows, err := s.images.ClosestImages(ctx, category.Vector.Slice(), s.categoryThreshold, false, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		result.Results = append(result.Results, s.rankedView(&rows[i]))
	}
	if len(rows) > 0 {
		result.Total = rows[0].TotalCount
	}
	return result, nil
}

// CategoryView is a category plus its children and a representative image.
type CategoryView struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description,omitempty"`
	Thumbnail   *ImageView     `json:"thumbnail,omitempty"`
	Children    []CategoryView `json:"children,omitempty"`
}

// ListCategories returns the two-level category tree. Each top-level
// category carries the featured image nearest to its vector as a thumbnail.
func (s *SearchService) ListCategories(ctx context.Context) ([]CategoryView, error) {
	parents, err := s.categories.ListTopLevel(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CategoryView, 0, len(parents))
	for i := range parents {
		parent := &parents[i]
		view := CategoryView{
			ID:          parent.ID,
			Name:        parent.Name,
			Slug:        parent.Slug,
			Description: parent.Description,
		}

		children, err := s.categories.ListChildren(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		for j := range children {
			view.Children = append(view.Children, CategoryView{
				ID:          children[j].ID,
				Name:        children[j].Name,
				Slug:        children[j].Slug,
				Description: children[j].Description,
			})
		}

		if parent.Vector != nil {
			rows, err := s.images.ClosestImages(ctx, parent.Vector.Slice(), 0, true, 1, 0)
			if err != nil {
				return nil, err
			}
			if len(rows) > 0 {
				thumb := s.rankedView(&rows[0])
				view.Thumbnail = &thumb
			}
		}

		views = append(views, view)
	}
	return views, nil
}

// CategoryChildren returns the children of one top-level category by slug.
func (s *SearchService) CategoryChildren(ctx context.Context, slug string) ([]CategoryView, error) {
	parent, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	children, err := s.categories.ListChildren(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	views := make([]CategoryView, 0, len(children))
	for i := range children {
		views = append(views, CategoryView{
			ID:          children[i].ID,
			Name:        children[i].Name,
			Slug:        children[i].Slug,
			Description: children[i].Description,
		})
	}
	return views, nil
}

// Collection returns the full collection, featured images first, newest
// first within each group.
func (s *SearchService) Collection(ctx context.Context, page, pageSize int) (*SearchResult, error) {
	page, pageSize = s.normalizePage(page, pageSize)

	rows, total, err := s.images.ListCollection(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{
		Results:  make([]ImageView, 0, len(rows)),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	for i := range rows {
		result.Results = append(result.Results, s.imageView(&rows[i], s.thumbWidth))
	}
	return result, nil
}

// FeaturedHome is the home screen payload: the latest featured image at hero
// width plus a random grid at thumbnail width.
type FeaturedHome struct {
	Hero *ImageView  `json:"hero,omitempty"`
	Grid []ImageView `json:"grid"`
}

// FeaturedHomeScreen returns the hero and grid for the landing page. The
// grid never repeats the hero.
func (s *SearchService) FeaturedHomeScreen(ctx context.Context, gridCount int) (*FeaturedHome, error) {
	if gridCount < 1 {
		gridCount = s.defaultPageSize
	}

	home := &FeaturedHome{Grid: []ImageView{}}

	hero, err := s.images.LatestFeatured(ctx)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var heroID int64
	if hero != nil {
		view := s.imageView(hero, s.heroWidth)
		home.Hero = &view
		heroID = hero.ID
	}

	// Fetch one extra so dropping the hero still fills the grid.
	rows, err := s.images.RandomImages(ctx, gridCount+1)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == heroID {
			continue
		}
		if len(home.Grid) >= gridCount {
			break
		}
		home.Grid = append(home.Grid, s.imageView(&rows[i], s.thumbWidth))
	}
	return home, nil
}
