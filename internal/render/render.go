// Package render projects catalog and cart state into HTML fragments.
// Every renderer is a pure function of its inputs: rendering twice with
// unchanged state yields identical output.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marcheligne/storefront/internal/cart"
	"github.com/marcheligne/storefront/internal/catalog"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Renderer holds the parsed template set.
type Renderer struct {
	tmpl   *template.Template
	logger zerolog.Logger
}

// New parses the embedded templates.
func New(logger zerolog.Logger) (*Renderer, error) {
	tmpl, err := template.New("storefront").
		Funcs(template.FuncMap{
			"placeholder": func() string { return PlaceholderImage },
		}).
		ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// Template exposes the parsed set so the gin engine can serve full pages.
func (r *Renderer) Template() *template.Template { return r.tmpl }

// TileView is one product tile ready for templating.
type TileView struct {
	ID            string
	Name          string
	Price         string
	ImageURL      string
	WeightDisplay string
	Origin        string
	Labels        []string
	Quantity      int
	DetailURL     string
}

// CategoryView is one category card.
type CategoryView struct {
	Name     string
	ImageURL string
	URL      string
}

// LineView is one cart line ready for templating.
type LineView struct {
	ID        string
	Name      string
	UnitPrice string
	Quantity  int
	LineTotal string
}

// CartView feeds the sidebar, preview and badge templates.
type CartView struct {
	Lines     []LineView
	Total     string
	ItemCount int
	MoreCount int
}

// previewMaxLines caps how many distinct lines the preview shows.
const previewMaxLines = 3

// BuildTiles merges products with the current cart quantities and the origin
// country lookup.
func BuildTiles(products []catalog.Product, lines []cart.Line, countries map[string]string) []TileView {
	tiles := make([]TileView, 0, len(products))
	for _, p := range products {
		tiles = append(tiles, TileView{
			ID:            p.ID,
			Name:          p.Name,
			Price:         FormatPrice(p.UnitPrice),
			ImageURL:      NormalizeImageURL(p.ImageURL),
			WeightDisplay: FormatWeight(p.Weight, p.WeightUnit, p.WeightText),
			Origin:        countries[p.OriginCountryID],
			Labels:        p.Labels,
			Quantity:      cart.Quantity(lines, p.ID),
			DetailURL:     "/product/" + p.ID,
		})
	}
	return tiles
}

// BuildCategories prepares category cards, slugs preferred in URLs.
func BuildCategories(cats []catalog.Category) []CategoryView {
	views := make([]CategoryView, 0, len(cats))
	for _, c := range cats {
		ref := c.Slug
		if ref == "" {
			ref = c.ID
		}
		views = append(views, CategoryView{
			Name:     c.Name,
			ImageURL: NormalizeImageURL(c.ImageURL),
			URL:      "/category/" + ref,
		})
	}
	return views
}

// BuildCartView prepares the full cart for the sidebar.
func BuildCartView(lines []cart.Line) CartView {
	return buildCartView(lines, len(lines))
}

// BuildPreview truncates to the first lines and counts the rest. Totals are
// computed over the full cart; truncation is presentation only.
func BuildPreview(lines []cart.Line) CartView {
	return buildCartView(lines, previewMaxLines)
}

func buildCartView(lines []cart.Line, maxLines int) CartView {
	shown := lines
	more := 0
	if len(lines) > maxLines {
		shown = lines[:maxLines]
		more = len(lines) - maxLines
	}
	views := make([]LineView, 0, len(shown))
	for _, l := range shown {
		views = append(views, LineView{
			ID:        l.ID,
			Name:      l.Name,
			UnitPrice: FormatPrice(l.UnitPrice),
			Quantity:  l.Quantity,
			LineTotal: FormatPrice(l.UnitPrice * float64(l.Quantity)),
		})
	}
	return CartView{
		Lines:     views,
		Total:     FormatPrice(cart.Total(lines)),
		ItemCount: cart.ItemCount(lines),
		MoreCount: more,
	}
}

// ProductTiles renders the tile grid, or the empty-state message.
func (r *Renderer) ProductTiles(tiles []TileView, emptyMessage string) string {
	return r.fragment("tiles", map[string]any{"Tiles": tiles, "EmptyMessage": emptyMessage})
}

// Categories renders the category grid.
func (r *Renderer) Categories(cats []CategoryView) string {
	return r.fragment("categories", map[string]any{"Categories": cats})
}

// Sidebar renders the full cart panel.
func (r *Renderer) Sidebar(view CartView) string {
	return r.fragment("cart-sidebar", view)
}

// Preview renders the truncated cart preview.
func (r *Renderer) Preview(view CartView) string {
	return r.fragment("cart-preview", view)
}

// Badge renders the header item-count badge.
func (r *Renderer) Badge(view CartView) string {
	return r.fragment("cart-badge", view)
}

// ProductDetail renders the detail block for one product.
func (r *Renderer) ProductDetail(tile TileView) string {
	return r.fragment("product-detail", tile)
}

// TileControl renders just the action control for one tile, used by the
// refresh bundle after a mutation.
func (r *Renderer) TileControl(productID string, quantity int) string {
	return r.fragment("tile-control", TileView{ID: productID, Quantity: quantity})
}

// fragment renders one named template. A missing name or a failed execution
// degrades to an empty fragment with a diagnostic log entry; no render is
// ever fatal to the page.
func (r *Renderer) fragment(name string, data any) string {
	t := r.tmpl.Lookup(name)
	if t == nil {
		r.logger.Error().Str("fragment", name).Msg("missing template")
		return ""
	}
	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		r.logger.Error().Err(err).Str("fragment", name).Msg("fragment render failed")
		return ""
	}
	return buf.String()
}
