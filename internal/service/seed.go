package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/maggie-r-m-88/commonscapes/internal/domain"
	"github.com/maggie-r-m-88/commonscapes/internal/logger"
)

// seedCategoryStore is the slice of the category repository the seeder uses.
type seedCategoryStore interface {
	Create(ctx context.Context, category *domain.Category) error
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type seedCategory struct {
	name        string
	parent      string
	description string
}

// defaultTaxonomy is the built-in two-level category tree. Children name
// their parent by name; the seeder resolves IDs at insert time.
var defaultTaxonomy = []seedCategory{
	{name: "Architecture", description: "Buildings, bridges, monuments, city skylines, man-made structures, architectural elements"},
	{name: "Cityscapes", parent: "Architecture", description: "Urban streets, city skylines, city views, architectural landscapes"},
	{name: "Buildings", parent: "Architecture", description: "Individual buildings, houses, skyscrapers, temples, castles"},
	{name: "Bridges", parent: "Architecture", description: "Bridges of all kinds, spanning rivers or valleys, urban or rural"},
	{name: "Monuments", parent: "Architecture", description: "Statues, memorials, historic monuments, iconic structures"},

	{name: "Landscapes", description: "Natural outdoor environments, wide vistas, terrain, scenery"},
	{name: "Mountains", parent: "Landscapes", description: "Mountain ranges, hills, peaks, natural highlands"},
	{name: "Desert", parent: "Landscapes", description: "Sand dunes, arid landscapes, deserts, dry terrain"},
	{name: "Jungle", parent: "Landscapes", description: "Dense tropical forests, jungles, exotic vegetation"},
	{name: "Forest", parent: "Landscapes", description: "Wooded areas, trees, greenery, temperate forests"},
	{name: "Coast/Beach", parent: "Landscapes", description: "Beaches, coastlines, shoreline, ocean views"},

	{name: "Water/Seascapes", description: "Bodies of water, oceans, rivers, lakes, seascapes, aquatic environments"},
	{name: "Rivers/Lakes", parent: "Water/Seascapes", description: "Freshwater rivers, lakes, ponds, streams"},
	{name: "Ocean/Sea", parent: "Water/Seascapes", description: "Oceans, seas, coastal waters, open water views"},

	{name: "Animals", description: "Living creatures, wildlife, fauna, land or water animals"},
	{name: "Land Animals", parent: "Animals", description: "Mammals, reptiles, birds, insects, terrestrial wildlife"},
	{name: "Water Animals", parent: "Animals", description: "Fish, marine mammals, amphibians, aquatic wildlife"},

	{name: "Plants", description: "Vegetation, flora, plants, trees, flowers, greenery"},
	{name: "Trees", parent: "Plants", description: "Individual or grouped trees, forests, woods"},
	{name: "Flowers", parent: "Plants", description: "Flowers, blossoms, floral arrangements, flowering plants"},
	{name: "General Vegetation", parent: "Plants", description: "Grass, shrubs, general plants not specified above"},

	{name: "Art", description: "Creative works, visual art, human-made aesthetic creations"},
	{name: "Statues", parent: "Art", description: "Sculptures, stone or metal statues, monuments, figurines"},
	{name: "Paintings", parent: "Art", description: "Paintings, murals, canvases, wall art, traditional or modern"},
	{name: "Street Art", parent: "Art", description: "Graffiti, murals, urban art, public installations"},
	{name: "Other Artwork", parent: "Art", description: "Miscellaneous artwork not fitting above, mixed media"},

	{name: "Culture", description: "Human cultural expressions, traditions, heritage, rituals"},
	{name: "Religion", parent: "Culture", description: "Churches, temples, shrines, religious symbols, sacred sites"},
	{name: "Folklore/Traditions", parent: "Culture", description: "Myths, legends, traditional costumes, rituals, local folklore"},
	{name: "Festivals", parent: "Culture", description: "Festivals, parades, celebrations, public cultural events"},

	{name: "Miscellaneous", description: "Images that don't fit into any other category"},
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a category name into its URL slug.
func Slugify(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// SeedCategories inserts the built-in taxonomy, parents before children.
// Categories whose slug already exists are left untouched, so the seeder is
// safe to run repeatedly. It returns the number of rows inserted.
func SeedCategories(ctx context.Context, store seedCategoryStore) (int, error) {
	ctx = logger.WithField(ctx, logger.FieldComponent, "seed-categories")

	parentIDs := make(map[string]int64, len(defaultTaxonomy))
	inserted := 0

	insert := func(sc seedCategory) error {
		slug := Slugify(sc.name)

		existing, err := store.GetBySlug(ctx, slug)
		if err == nil {
			if sc.parent == "" {
				parentIDs[sc.name] = existing.ID
			}
			logger.CtxDebug(ctx, "Category already present: slug=%s", slug)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up category %q: %w", slug, err)
		}

		category := &domain.Category{
			Name:        sc.name,
			Slug:        slug,
			Description: sc.description,
		}
		if sc.parent != "" {
			parentID, ok := parentIDs[sc.parent]
			if !ok {
				return fmt.Errorf("category %q references unknown parent %q", sc.name, sc.parent)
			}
			category.ParentID = &parentID
		}
		if err := store.Create(ctx, category); err != nil {
			return fmt.Errorf("insert category %q: %w", sc.name, err)
		}
		if sc.parent == "" {
			parentIDs[sc.name] = category.ID
		}
		inserted++
		logger.CtxInfo(ctx, "Inserted category: name=%q slug=%s", sc.name, slug)
		return nil
	}

	for _, sc := range defaultTaxonomy {
		if sc.parent == "" {
			if err := insert(sc); err != nil {
				return inserted, err
			}
		}
	}
	for _, sc := range defaultTaxonomy {
		if sc.parent != "" {
			if err := insert(sc); err != nil {
				return inserted, err
			}
		}
	}
	return inserted, nil
}
