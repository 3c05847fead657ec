package main

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

// seedNamespace roots the deterministic ids so re-runs upsert the same rows.
var seedNamespace = uuid.MustParse("6f1c2a9e-3b7d-4c5e-9a1f-0d2e4b6c8a10")

type theme struct {
	name        string
	description string
	nouns       []string
	tags        []string
}

var themes = []theme{
	{"Summer Sale", "Light pieces for hot days", []string{"Hat", "Sandals", "Linen Shirt", "Sunglasses", "Beach Towel"}, []string{"summer", "sale"}},
	{"Kitchen", "Tools and tableware", []string{"Mug", "Teapot", "Chef Knife", "Cutting Board", "Apron"}, []string{"kitchen", "home"}},
	{"Stationery", "Paper goods and pens", []string{"Notebook", "Fountain Pen", "Planner", "Sticker Set", "Desk Tray"}, []string{"paper", "office"}},
	{"Outdoor", "Gear for the trail", []string{"Water Bottle", "Headlamp", "Daypack", "Rain Jacket", "Camp Stool"}, []string{"outdoor", "travel"}},
}

var adjectives = []string{"Classic", "Everyday", "Handmade", "Compact", "Deluxe", "Vintage", "Organic", "Minimal"}

func seedID(kind string, n int) string {
	return uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("%s:%d", kind, n))).String()
}

// generate builds catalogCount catalogs with itemsPerCatalog items each.
// Output depends only on the arguments and rng's seed. The last catalog is
// hidden when more than one is generated, so visibility filtering has data.
func generate(rng *rand.Rand, catalogCount, itemsPerCatalog int) ([]domain.Catalog, []domain.Item) {
	catalogs := make([]domain.Catalog, 0, catalogCount)
	items := make([]domain.Item, 0, catalogCount*itemsPerCatalog)

	for c := range catalogCount {
		th := themes[c%len(themes)]
		name := th.name
		if c >= len(themes) {
			name = fmt.Sprintf("%s %d", th.name, c/len(themes)+1)
		}
		cat := domain.Catalog{
			ID:          seedID("catalog", c),
			Name:        name,
			Description: th.description,
			IsVisible:   catalogCount == 1 || c != catalogCount-1,
		}
		catalogs = append(catalogs, cat)

		for i := range itemsPerCatalog {
			noun := th.nouns[i%len(th.nouns)]
			adj := adjectives[rng.Intn(len(adjectives))]
			cents := 299 + rng.Intn(9700)
			items = append(items, domain.Item{
				ID:          seedID("item", c*itemsPerCatalog+i),
				CatalogID:   cat.ID,
				Name:        fmt.Sprintf("%s %s", adj, noun),
				Description: fmt.Sprintf("%s %s from the %s collection.", adj, noun, name),
				Price:       decimal.NewNullDecimal(decimal.New(int64(cents), -2)),
				Tags:        append([]string(nil), th.tags...),
				IsFeatured:  rng.Intn(5) == 0,
				IsVisible:   rng.Intn(20) != 0,
			})
		}
	}
	return catalogs, items
}
