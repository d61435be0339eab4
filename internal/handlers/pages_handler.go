package handlers

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcheligne/storefront/internal/catalog"
	"github.com/marcheligne/storefront/internal/render"
	"github.com/marcheligne/storefront/internal/view"
)

// CatalogAPI is everything the page handlers read. Satisfied by
// *catalog.Store; tests inject fakes.
type CatalogAPI interface {
	view.Catalog
	ProductByID(ctx context.Context, id string) (*catalog.Product, error)
	OriginCountries(ctx context.Context) ([]catalog.OriginCountry, error)
}

// pageData feeds the "page" template.
type pageData struct {
	Title   string
	Query   string
	Cart    render.CartView
	Heading string
	BackURL string
	Content template.HTML
}

type pageServer struct {
	cfg  HandlerConfig
	ctrl *view.Controller

	countriesOnce sync.Once
	countries     map[string]string
}

// RegisterPageRoutes registers the browsable pages. It returns the shared
// origin-country lookup so the live search routes can reuse the same
// load-once cache.
func RegisterPageRoutes(r *gin.Engine, cfg HandlerConfig) func(ctx context.Context) map[string]string {
	ps := &pageServer{
		cfg:  cfg,
		ctrl: view.NewController(cfg.Catalog),
	}

	r.GET("/", ps.home)
	r.GET("/category/:slug", ps.categoryPage)
	r.GET("/search", ps.searchPage)
	r.GET("/product/:id", ps.productPage)

	return ps.originCountries
}

// home serves the category grid, or jumps straight to a category's products
// when the address already encodes one (?category=slug).
func (ps *pageServer) home(c *gin.Context) {
	ctx := c.Request.Context()
	state, products, err := ps.ctrl.ResolveLocation(ctx, c.Query("category"))
	if err != nil {
		ps.cfg.Logger.Error().Err(err).Msg("resolve location failed")
		state = view.State{Region: view.RegionCategoryGrid}
	}
	if state.Region == view.RegionCategoryProducts {
		ps.renderProducts(c, state, products)
		return
	}
	ps.renderGrid(c)
}

func (ps *pageServer) categoryPage(c *gin.Context) {
	ctx := c.Request.Context()
	state, products, err := ps.ctrl.ResolveLocation(ctx, c.Param("slug"))
	if err != nil {
		ps.cfg.Logger.Error().Err(err).Str("slug", c.Param("slug")).Msg("category load failed")
	}
	if state.Region != view.RegionCategoryProducts {
		// unknown slug or data-source failure: fall back to the grid
		c.Redirect(http.StatusFound, "/")
		return
	}
	ps.renderProducts(c, state, products)
}

func (ps *pageServer) searchPage(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("q")

	start := time.Now()
	state, products, err := ps.ctrl.Search(ctx, view.State{Region: view.RegionCategoryGrid}, query)
	if err != nil {
		// degrade to an empty result list, never an error page
		ps.cfg.Logger.Error().Err(err).Str("query", query).Msg("search failed")
		state = view.State{Region: view.RegionSearchResults, Query: query}
		products = nil
	}
	if state.Region != view.RegionSearchResults {
		// empty or sub-minimum query: nothing to search
		c.Redirect(http.StatusFound, "/")
		return
	}
	ps.cfg.Metrics.RecordSearchLatency(ctx, time.Since(start))

	lines := ps.cfg.Cart.Get(ctx, cartID(c))
	tiles := render.BuildTiles(products, lines, ps.originCountries(ctx))
	ps.renderPage(c, pageData{
		Title:   "Recherche — Le Marché",
		Query:   state.Query,
		Cart:    render.BuildCartView(lines),
		Heading: "Résultats pour « " + state.Query + " »",
		BackURL: "/",
		Content: template.HTML(ps.cfg.Renderer.ProductTiles(tiles, "Aucun résultat")),
	})
}

func (ps *pageServer) productPage(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	product, err := ps.cfg.Catalog.ProductByID(ctx, id)
	if err != nil {
		ps.cfg.Logger.Error().Err(err).Str("product_id", id).Msg("product load failed")
	}
	if product == nil {
		lines := ps.cfg.Cart.Get(ctx, cartID(c))
		ps.renderPage(c, pageData{
			Title:   "Produit introuvable — Le Marché",
			Cart:    render.BuildCartView(lines),
			Heading: "Produit introuvable",
			BackURL: "/",
			Content: template.HTML(`<p class="no-products">Ce produit n'existe plus</p>`),
		})
		return
	}

	lines := ps.cfg.Cart.Get(ctx, cartID(c))
	tile := render.BuildTiles([]catalog.Product{*product}, lines, ps.originCountries(ctx))[0]
	ps.renderPage(c, pageData{
		Title:   product.Name + " — Le Marché",
		Cart:    render.BuildCartView(lines),
		BackURL: "/",
		Content: template.HTML(ps.cfg.Renderer.ProductDetail(tile)),
	})
}

func (ps *pageServer) renderGrid(c *gin.Context) {
	ctx := c.Request.Context()
	cats, err := ps.cfg.Catalog.MainCategories(ctx)
	if err != nil {
		// empty grid plus a log entry; the page itself stays up
		ps.cfg.Logger.Error().Err(err).Msg("category grid load failed")
		cats = nil
	}
	lines := ps.cfg.Cart.Get(ctx, cartID(c))
	ps.renderPage(c, pageData{
		Title:   "Le Marché",
		Cart:    render.BuildCartView(lines),
		Content: template.HTML(ps.cfg.Renderer.Categories(render.BuildCategories(cats))),
	})
}

func (ps *pageServer) renderProducts(c *gin.Context, state view.State, products []catalog.Product) {
	ctx := c.Request.Context()
	lines := ps.cfg.Cart.Get(ctx, cartID(c))
	tiles := render.BuildTiles(products, lines, ps.originCountries(ctx))
	ps.renderPage(c, pageData{
		Title:   state.CategoryName + " — Le Marché",
		Cart:    render.BuildCartView(lines),
		Heading: state.CategoryName,
		BackURL: "/",
		Content: template.HTML(ps.cfg.Renderer.ProductTiles(tiles, "Aucun produit trouvé")),
	})
}

func (ps *pageServer) renderPage(c *gin.Context, data pageData) {
	c.HTML(http.StatusOK, "page", data)
}

// originCountries loads the country lookup once and reuses it for the life
// of the process; it only ever decorates tiles, so a failed load just means
// undecorated tiles.
func (ps *pageServer) originCountries(ctx context.Context) map[string]string {
	ps.countriesOnce.Do(func() {
		ps.countries = map[string]string{}
		countries, err := ps.cfg.Catalog.OriginCountries(ctx)
		if err != nil {
			ps.cfg.Logger.Warn().Err(err).Msg("origin countries load failed")
			return
		}
		for _, country := range countries {
			ps.countries[country.ID] = country.Name
		}
	})
	return ps.countries
}
