package view

import (
	"context"
	"errors"
	"testing"

	"github.com/marcheligne/storefront/internal/catalog"
)

// fakeCatalog counts calls so tests can assert what was (not) fetched.
type fakeCatalog struct {
	categories []catalog.Category
	products   map[string][]catalog.Product
	results    []catalog.Product

	categoryCalls int
	productCalls  int
	searchCalls   int

	err error
}

func (f *fakeCatalog) MainCategories(ctx context.Context) ([]catalog.Category, error) {
	f.categoryCalls++
	return f.categories, f.err
}

func (f *fakeCatalog) ProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	f.productCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products[categoryID], nil
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestSelectCategory_LoadsBeforeSwitching(t *testing.T) {
	fc := &fakeCatalog{products: map[string][]catalog.Product{
		"fruits": {{ID: "p1", Name: "Pomme"}},
	}}
	c := NewController(fc)

	state, products, err := c.SelectCategory(context.Background(), State{Region: RegionCategoryGrid}, catalog.Category{ID: "fruits", Name: "Fruits", Slug: "fruits"})
	if err != nil {
		t.Fatalf("SelectCategory error: %v", err)
	}
	if state.Region != RegionCategoryProducts {
		t.Fatalf("expected CategoryProducts region, got %s", state.Region)
	}
	if state.CategoryName != "Fruits" || len(products) != 1 {
		t.Fatalf("unexpected state/products: %+v / %+v", state, products)
	}
}

func TestSelectCategory_KeepsPriorStateOnError(t *testing.T) {
	fc := &fakeCatalog{err: errors.New("down")}
	c := NewController(fc)

	prior := State{Region: RegionSearchResults, Query: "lait"}
	state, _, err := c.SelectCategory(context.Background(), prior, catalog.Category{ID: "fruits"})
	if err == nil {
		t.Fatal("expected error")
	}
	if state != prior {
		t.Fatalf("prior state must survive a failed load, got %+v", state)
	}
}

func TestSearch_MinimumLength(t *testing.T) {
	fc := &fakeCatalog{results: []catalog.Product{{ID: "p1"}}}
	c := NewController(fc)
	prior := State{Region: RegionCategoryGrid}

	// two characters: never fetches
	state, _, err := c.Search(context.Background(), prior, "po")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if fc.searchCalls != 0 {
		t.Fatalf("2-char query must not fetch, got %d calls", fc.searchCalls)
	}
	if state != prior {
		t.Fatalf("2-char query must not change state, got %+v", state)
	}

	// three characters: fetches and switches
	state, products, err := c.Search(context.Background(), prior, "pom")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if fc.searchCalls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", fc.searchCalls)
	}
	if state.Region != RegionSearchResults || state.Query != "pom" || len(products) != 1 {
		t.Fatalf("unexpected search result state: %+v", state)
	}
}

func TestSearch_EmptyQueryReturnsToGrid(t *testing.T) {
	fc := &fakeCatalog{}
	c := NewController(fc)

	state, _, err := c.Search(context.Background(), State{Region: RegionSearchResults, Query: "pomme"}, "")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if state.Region != RegionCategoryGrid || state.Query != "" {
		t.Fatalf("expected grid state, got %+v", state)
	}
	if fc.searchCalls != 0 {
		t.Fatal("clearing the query must not fetch")
	}
}

func TestEncodeLocation(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{State{Region: RegionCategoryGrid}, ""},
		{State{Region: RegionSearchResults, Query: "lait"}, ""},
		{State{Region: RegionCategoryProducts, CategoryID: "c1", CategorySlug: "fruits"}, "?category=fruits"},
		{State{Region: RegionCategoryProducts, CategoryID: "c1"}, "?category=c1"},
		{State{Region: RegionCategoryProducts, CategorySlug: "jus de fruits"}, "?category=jus+de+fruits"},
	}
	for _, c := range cases {
		if got := EncodeLocation(c.state); got != c.want {
			t.Errorf("EncodeLocation(%+v) = %q, want %q", c.state, got, c.want)
		}
	}
}

func TestResolveLocation(t *testing.T) {
	fc := &fakeCatalog{
		categories: []catalog.Category{
			{ID: "c1", Name: "Fruits", Slug: "fruits"},
			{ID: "c2", Name: "Crémerie"},
		},
		products: map[string][]catalog.Product{
			"c1": {{ID: "p1"}},
			"c2": {{ID: "p2"}},
		},
	}
	c := NewController(fc)
	ctx := context.Background()

	// empty ref: grid, no category fetch
	state, _, err := c.ResolveLocation(ctx, "")
	if err != nil || state.Region != RegionCategoryGrid {
		t.Fatalf("empty ref: state %+v err %v", state, err)
	}
	if fc.categoryCalls != 0 {
		t.Fatal("empty ref must not fetch categories")
	}

	// slug ref
	state, products, err := c.ResolveLocation(ctx, "fruits")
	if err != nil {
		t.Fatalf("ResolveLocation error: %v", err)
	}
	if state.Region != RegionCategoryProducts || state.CategoryID != "c1" || len(products) != 1 {
		t.Fatalf("slug resolve failed: %+v", state)
	}

	// id fallback for categories without a slug
	state, _, err = c.ResolveLocation(ctx, "c2")
	if err != nil || state.CategoryName != "Crémerie" {
		t.Fatalf("id resolve failed: %+v err %v", state, err)
	}

	// unknown ref lands on the grid
	state, _, err = c.ResolveLocation(ctx, "ghost")
	if err != nil || state.Region != RegionCategoryGrid {
		t.Fatalf("unknown ref: state %+v err %v", state, err)
	}
}

func TestRestore(t *testing.T) {
	fc := &fakeCatalog{
		products: map[string][]catalog.Product{"c1": {{ID: "p1"}}},
		results:  []catalog.Product{{ID: "p9"}},
	}
	c := NewController(fc)
	ctx := context.Background()

	saved := State{Region: RegionCategoryProducts, CategoryID: "c1", CategoryName: "Fruits"}
	state, products, err := c.Restore(ctx, saved)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if state != saved || len(products) != 1 {
		t.Fatalf("category restore failed: %+v", state)
	}

	state, products, err = c.Restore(ctx, State{Region: RegionSearchResults, Query: "pomme"})
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if state.Region != RegionSearchResults || len(products) != 1 {
		t.Fatalf("search restore failed: %+v", state)
	}

	state, _, err = c.Restore(ctx, State{})
	if err != nil || state.Region != RegionCategoryGrid {
		t.Fatalf("grid restore failed: %+v err %v", state, err)
	}
}
