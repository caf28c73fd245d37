package service

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
)

type fakeSearchImageStore struct {
	byID        map[int64]*domain.Image
	searchRows  []domain.ImageSearchResult
	closestRows []domain.ImageSearchResult
	relatedRows []domain.ImageSearchResult
	collection  []domain.Image
	total       int64
	featured    *domain.Image
	random      []domain.Image

	closestThreshold float64
	closestFeatured  bool
	searchLimit      int
	searchOffset     int
}

func (f *fakeSearchImageStore) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	if img, ok := f.byID[id]; ok {
		return img, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSearchImageStore) SearchByVector(ctx context.Context, vec []float32, limit, offset int) ([]domain.ImageSearchResult, error) {
	f.searchLimit, f.searchOffset = limit, offset
	return f.searchRows, nil
}

func (f *fakeSearchImageStore) ClosestImages(ctx context.Context, vec []float32, threshold float64, featuredOnly bool, limit, offset int) ([]domain.ImageSearchResult, error) {
	f.closestThreshold, f.closestFeatured = threshold, featuredOnly
	return f.closestRows, nil
}

func (f *fakeSearchImageStore) RelatedImages(ctx context.Context, imageID int64, limit int) ([]domain.ImageSearchResult, error) {
	return f.relatedRows, nil
}

func (f *fakeSearchImageStore) ListCollection(ctx context.Context, limit, offset int) ([]domain.Image, int64, error) {
	return f.collection, f.total, nil
}

func (f *fakeSearchImageStore) LatestFeatured(ctx context.Context) (*domain.Image, error) {
	if f.featured == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.featured, nil
}

func (f *fakeSearchImageStore) RandomImages(ctx context.Context, limit int) ([]domain.Image, error) {
	if limit < len(f.random) {
		return f.random[:limit], nil
	}
	return f.random, nil
}

type fakeSearchCategoryStore struct {
	bySlug   map[string]*domain.Category
	topLevel []domain.Category
	children map[int64][]domain.Category
	matches  []domain.CategoryMatch
}

func (f *fakeSearchCategoryStore) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if c, ok := f.bySlug[slug]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSearchCategoryStore) ListTopLevel(ctx context.Context) ([]domain.Category, error) {
	return f.topLevel, nil
}

func (f *fakeSearchCategoryStore) ListChildren(ctx context.Context, parentID int64) ([]domain.Category, error) {
	return f.children[parentID], nil
}

func (f *fakeSearchCategoryStore) ClosestCategories(ctx context.Context, vec []float32, limit int) ([]domain.CategoryMatch, error) {
	if limit < len(f.matches) {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

func commonsImage(id int64, name string) domain.Image {
	return domain.Image{
		ID:  id,
		URL: "https://upload.wikimedia.org/wikipedia/commons/a/a9/" + name,
	}
}

func embeddedImage(id int64, name string) *domain.Image {
	img := commonsImage(id, name)
	v := pgvector.NewVector([]float32{0.1, 0.2})
	img.Vector = &v
	return &img
}

func TestSearchPaginationAndSimilarity(t *testing.T) {
	images := &fakeSearchImageStore{
		searchRows: []domain.ImageSearchResult{
			{Image: commonsImage(1, "A.jpg"), Distance: 0.10, TotalCount: 37},
			{Image: commonsImage(2, "B.jpg"), Distance: 0.25, TotalCount: 37},
		},
	}
	svc := NewSearchService(images, &fakeSearchCategoryStore{}, &fakeEmbedder{vec: []float32{0.5}}, &SearchServiceConfig{
		DefaultPageSize: 14,
		ThumbWidth:      1280,
	})

	result, err := svc.Search(context.Background(), "sunset over water", 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Page != 2 || result.PageSize != 14 {
		t.Errorf("page = %d/%d, want 2/14", result.Page, result.PageSize)
	}
	if images.searchOffset != 14 {
		t.Errorf("offset = %d, want 14", images.searchOffset)
	}
	if result.Total != 37 {
		t.Errorf("total = %d, want 37", result.Total)
	}
	if len(result.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(result.Results))
	}

	first := result.Results[0]
	if first.Similarity == nil || *first.Similarity != 0.9 {
		t.Errorf("similarity = %v, want 0.9", first.Similarity)
	}
	wantThumb := "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a9/A.jpg/1280px-A.jpg"
	if first.ThumbURL != wantThumb {
		t.Errorf("thumb = %q, want %q", first.ThumbURL, wantThumb)
	}
}

func TestRelatedWithoutVectorIsEmpty(t *testing.T) {
	img := commonsImage(7, "Plain.jpg")
	images := &fakeSearchImageStore{
		byID: map[int64]*domain.Image{7: &img},
		relatedRows: []domain.ImageSearchResult{
			{Image: commonsImage(8, "Other.jpg"), Distance: 0.2},
		},
	}
	svc := NewSearchService(images, &fakeSearchCategoryStore{}, &fakeEmbedder{}, nil)

	views, err := svc.Related(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("views = %d, want 0: un-embedded images have no neighbors", len(views))
	}
}

func TestRelatedReturnsNeighbors(t *testing.T) {
	images := &fakeSearchImageStore{
		byID: map[int64]*domain.Image{7: embeddedImage(7, "Hero.jpg")},
		relatedRows: []domain.ImageSearchResult{
			{Image: commonsImage(8, "Other.jpg"), Distance: 0.2},
			{Image: commonsImage(9, "Third.jpg"), Distance: 0.3},
		},
	}
	svc := NewSearchService(images, &fakeSearchCategoryStore{}, &fakeEmbedder{}, nil)

	views, err := svc.Related(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if views[0].ID != 8 {
		t.Errorf("first neighbor = %d, want 8", views[0].ID)
	}
}

func TestCategoryImagesUsesThreshold(t *testing.T) {
	vec := pgvector.NewVector([]float32{0.3, 0.4})
	categories := &fakeSearchCategoryStore{
		bySlug: map[string]*domain.Category{
			"mountains": {ID: 1, Name: "Mountains", Slug: "mountains", Vector: &vec},
		},
	}
	images := &fakeSearchImageStore{
		closestRows: []domain.ImageSearchResult{
			{Image: commonsImage(1, "Peak.jpg"), Distance: 0.5, TotalCount: 9},
		},
	}
	svc := NewSearchService(images, categories, &fakeEmbedder{}, &SearchServiceConfig{
		CategoryThreshold: 0.19,
	})

	result, err := svc.CategoryImages(context.Background(), "mountains", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if images.closestThreshold != 0.19 {
		t.Errorf("threshold = %v, want 0.19", images.closestThreshold)
	}
	if images.closestFeatured {
		t.Error("category browsing must not filter to featured images")
	}
	if result.Total != 9 {
		t.Errorf("total = %d, want 9", result.Total)
	}
}

func TestCategoryImagesUnknownSlug(t *testing.T) {
	svc := NewSearchService(&fakeSearchImageStore{}, &fakeSearchCategoryStore{}, &fakeEmbedder{}, nil)
	_, err := svc.CategoryImages(context.Background(), "nope", 1, 10)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryImagesWithoutVectorIsEmpty(t *testing.T) {
	categories := &fakeSearchCategoryStore{
		bySlug: map[string]*domain.Category{
			"new": {ID: 2, Name: "New", Slug: "new"},
		},
	}
	images := &fakeSearchImageStore{
		closestRows: []domain.ImageSearchResult{
			{Image: commonsImage(1, "X.jpg"), Distance: 0.1, TotalCount: 1},
		},
	}
	svc := NewSearchService(images, categories, &fakeEmbedder{}, nil)

	result, err := svc.CategoryImages(context.Background(), "new", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("results = %d, want 0", len(result.Results))
	}
}

func TestTaxonomyPlacement(t *testing.T) {
	images := &fakeSearchImageStore{
		byID: map[int64]*domain.Image{5: embeddedImage(5, "Lake.jpg")},
	}
	categories := &fakeSearchCategoryStore{
		matches: []domain.CategoryMatch{
			{ID: 1, Name: "Landscapes", Slug: "landscapes", Distance: 0.1},
			{ID: 2, Name: "Water/Seascapes", Slug: "water-seascapes", Distance: 0.15},
			{ID: 3, Name: "Plants", Slug: "plants", Distance: 0.4},
		},
	}
	svc := NewSearchService(images, categories, &fakeEmbedder{}, &SearchServiceConfig{TaxonomyCount: 2})

	matches, err := svc.Taxonomy(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	if matches[0].Slug != "landscapes" {
		t.Errorf("first match = %q", matches[0].Slug)
	}
}

func TestListCategoriesTreeAndThumbnails(t *testing.T) {
	vec := pgvector.NewVector([]float32{0.1})
	categories := &fakeSearchCategoryStore{
		topLevel: []domain.Category{
			{ID: 1, Name: "Landscapes", Slug: "landscapes", Vector: &vec},
			{ID: 2, Name: "Miscellaneous", Slug: "miscellaneous"},
		},
		children: map[int64][]domain.Category{
			1: {{ID: 3, Name: "Mountains", Slug: "mountains"}},
		},
	}
	images := &fakeSearchImageStore{
		closestRows: []domain.ImageSearchResult{
			{Image: commonsImage(11, "Rep.jpg"), Distance: 0.1},
		},
	}
	svc := NewSearchService(images, categories, &fakeEmbedder{}, nil)

	views, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if len(views[0].Children) != 1 || views[0].Children[0].Slug != "mountains" {
		t.Errorf("children = %+v", views[0].Children)
	}
	if views[0].Thumbnail == nil || views[0].Thumbnail.ID != 11 {
		t.Errorf("thumbnail = %+v", views[0].Thumbnail)
	}
	if !images.closestFeatured {
		t.Error("category thumbnails must come from featured images")
	}
	// Without a vector there is no thumbnail to pick.
	if views[1].Thumbnail != nil {
		t.Errorf("unexpected thumbnail on un-embedded category")
	}
}

func TestFeaturedHomeExcludesHeroFromGrid(t *testing.T) {
	hero := commonsImage(1, "Hero.jpg")
	hero.Featured = true
	images := &fakeSearchImageStore{
		featured: &hero,
		random: []domain.Image{
			commonsImage(1, "Hero.jpg"),
			commonsImage(2, "B.jpg"),
			commonsImage(3, "C.jpg"),
		},
	}
	svc := NewSearchService(images, &fakeSearchCategoryStore{}, &fakeEmbedder{}, &SearchServiceConfig{
		ThumbWidth: 1280,
		HeroWidth:  2000,
	})

	home, err := svc.FeaturedHomeScreen(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if home.Hero == nil || home.Hero.ID != 1 {
		t.Fatalf("hero = %+v", home.Hero)
	}
	wantHero := "https://upload.wikimedia.org/wikipedia/commons/thumb/a/a9/Hero.jpg/2000px-Hero.jpg"
	if home.Hero.ThumbURL != wantHero {
		t.Errorf("hero thumb = %q, want %q", home.Hero.ThumbURL, wantHero)
	}
	if len(home.Grid) != 2 {
		t.Fatalf("grid = %d, want 2", len(home.Grid))
	}
	for _, item := range home.Grid {
		if item.ID == 1 {
			t.Error("grid repeats the hero")
		}
	}
}

func TestFeaturedHomeWithoutFeaturedImage(t *testing.T) {
	images := &fakeSearchImageStore{
		random: []domain.Image{commonsImage(2, "B.jpg")},
	}
	svc := NewSearchService(images, &fakeSearchCategoryStore{}, &fakeEmbedder{}, nil)

	home, err := svc.FeaturedHomeScreen(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if home.Hero != nil {
		t.Errorf("hero = %+v, want nil", home.Hero)
	}
	if len(home.Grid) != 1 {
		t.Errorf("grid = %d, want 1", len(home.Grid))
	}
}
