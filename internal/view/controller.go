// Package view decides which page region is visible and keeps that choice in
// sync with the address bar. State is explicit and passed through every
// operation; the controller holds no mutable globals.
package view

import (
	"context"
	"fmt"
	"net/url"

	"github.com/marcheligne/storefront/internal/catalog"
)

// Region is one of the three mutually exclusive page regions.
type Region int

const (
	RegionCategoryGrid Region = iota
	RegionCategoryProducts
	RegionSearchResults
)

func (r Region) String() string {
	switch r {
	case RegionCategoryGrid:
		return "category-grid"
	case RegionCategoryProducts:
		return "category-products"
	case RegionSearchResults:
		return "search-results"
	default:
		return fmt.Sprintf("region(%d)", int(r))
	}
}

// MinQueryLength is the shortest query that triggers a search.
const MinQueryLength = 3

// State captures everything needed to restore a view: the visible region,
// the selected category and the active query.
type State struct {
	Region       Region
	CategoryID   string
	CategoryName string
	CategorySlug string
	Query        string
}

// Catalog is the read-only data source the controller consumes.
type Catalog interface {
	MainCategories(ctx context.Context) ([]catalog.Category, error)
	ProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error)
	SearchProducts(ctx context.Context, query string) ([]catalog.Product, error)
}

// Controller drives region transitions.
type Controller struct {
	catalog Catalog
}

// NewController creates a Controller over the given catalog.
func NewController(cat Catalog) *Controller {
	return &Controller{catalog: cat}
}

// SelectCategory loads the category's products, then returns the
// CategoryProducts state. Products load before the region switches so the
// caller never shows an empty or stale view. On error the prior state is
// returned unchanged.
func (c *Controller) SelectCategory(ctx context.Context, prior State, cat catalog.Category) (State, []catalog.Product, error) {
	products, err := c.catalog.ProductsByCategory(ctx, cat.ID)
	if err != nil {
		return prior, nil, fmt.Errorf("load category products: %w", err)
	}
	return State{
		Region:       RegionCategoryProducts,
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		CategorySlug: cat.Slug,
	}, products, nil
}

// Search runs a query of at least MinQueryLength characters and returns the
// SearchResults state. An empty query falls back to the grid; a query below
// the minimum leaves the prior state untouched and fetches nothing.
func (c *Controller) Search(ctx context.Context, prior State, query string) (State, []catalog.Product, error) {
	if query == "" {
		return c.ClearSearch(prior), nil, nil
	}
	if len([]rune(query)) < MinQueryLength {
		return prior, nil, nil
	}
	products, err := c.catalog.SearchProducts(ctx, query)
	if err != nil {
		return prior, nil, fmt.Errorf("search products: %w", err)
	}
	return State{Region: RegionSearchResults, Query: query}, products, nil
}

// ClearSearch returns to the category grid, dropping query and category.
func (c *Controller) ClearSearch(State) State {
	return State{Region: RegionCategoryGrid}
}

// EncodeLocation maps a state to the address-bar query string, so a reload
// or a shared link restores the same view. Only the category is encoded;
// slug preferred, id as fallback.
func EncodeLocation(s State) string {
	if s.Region != RegionCategoryProducts {
		return ""
	}
	ref := s.CategorySlug
	if ref == "" {
		ref = s.CategoryID
	}
	if ref == "" {
		return ""
	}
	return "?category=" + url.QueryEscape(ref)
}

// ResolveLocation maps an address-bar category reference back to a state,
// resolving slug-or-id against the loaded category list. An unknown or empty
// reference lands on the category grid.
func (c *Controller) ResolveLocation(ctx context.Context, categoryRef string) (State, []catalog.Product, error) {
	grid := State{Region: RegionCategoryGrid}
	if categoryRef == "" {
		return grid, nil, nil
	}
	cats, err := c.catalog.MainCategories(ctx)
	if err != nil {
		return grid, nil, fmt.Errorf("load categories: %w", err)
	}
	for _, cat := range cats {
		if (cat.Slug != "" && cat.Slug == categoryRef) || cat.ID == categoryRef {
			return c.SelectCategory(ctx, grid, cat)
		}
	}
	return grid, nil, nil
}

// Restore re-materializes a previously saved state, re-fetching whatever the
// region needs. Back/forward navigation hands the preserved state here.
func (c *Controller) Restore(ctx context.Context, saved State) (State, []catalog.Product, error) {
	switch saved.Region {
	case RegionCategoryProducts:
		products, err := c.catalog.ProductsByCategory(ctx, saved.CategoryID)
		if err != nil {
			return State{Region: RegionCategoryGrid}, nil, fmt.Errorf("restore category: %w", err)
		}
		return saved, products, nil
	case RegionSearchResults:
		return c.Search(ctx, State{Region: RegionCategoryGrid}, saved.Query)
	default:
		return State{Region: RegionCategoryGrid}, nil, nil
	}
}
