package handlers

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcheligne/storefront/internal/catalog"
	"github.com/marcheligne/storefront/internal/render"
	"github.com/marcheligne/storefront/internal/validation"
	"github.com/marcheligne/storefront/internal/view"
)

// searchHub holds one live Searcher per connected visitor. Keystrokes arrive
// on /search/input; debounced results stream back over /search/live.
type searchHub struct {
	cfg HandlerConfig

	mu       sync.Mutex
	sessions map[string]*view.Searcher

	countries func(ctx context.Context) map[string]string
}

// RegisterSearchRoutes registers the live search endpoints.
func RegisterSearchRoutes(r *gin.Engine, cfg HandlerConfig, countries func(ctx context.Context) map[string]string) {
	hub := &searchHub{
		cfg:       cfg,
		sessions:  map[string]*view.Searcher{},
		countries: countries,
	}
	r.GET("/search/live", hub.stream)
	r.POST("/search/input", hub.input)
}

func (h *searchHub) searchFunc() view.SearchFunc {
	return func(ctx context.Context, query string) ([]catalog.Product, error) {
		start := time.Now()
		products, err := h.cfg.Catalog.SearchProducts(ctx, query)
		if err == nil {
			h.cfg.Metrics.RecordSearchLatency(ctx, time.Since(start))
		}
		return products, err
	}
}

// stream opens the event stream for one visitor, replacing any previous one.
func (h *searchHub) stream(c *gin.Context) {
	id := cartID(c)
	searcher := view.NewSearcher(h.searchFunc(), 0)

	h.mu.Lock()
	if prev, ok := h.sessions[id]; ok {
		prev.Close()
	}
	h.sessions[id] = searcher
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.sessions[id] == searcher {
			delete(h.sessions, id)
		}
		h.mu.Unlock()
		searcher.Close()
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case res := <-searcher.Results():
			h.emit(c, res)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// input feeds one search-box edit into the visitor's live session.
func (h *searchHub) input(c *gin.Context) {
	var req validation.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
		return
	}

	h.mu.Lock()
	searcher, ok := h.sessions[cartID(c)]
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "no_live_search_session"})
		return
	}

	// the fetch must outlive this request; the searcher owns its lifetime
	searcher.Input(context.Background(), req.Query)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// emit renders one result set as an SSE event. A cleared query tells the
// page to fall back to the category grid.
func (h *searchHub) emit(c *gin.Context, res view.Result) {
	if res.Query == "" {
		c.SSEvent("clear", gin.H{"region": view.RegionCategoryGrid.String()})
		return
	}
	if res.Err != nil {
		// degrade to an empty result list, never an error event
		h.cfg.Logger.Error().Err(res.Err).Str("query", res.Query).Msg("live search failed")
		res.Products = nil
	}
	ctx := c.Request.Context()
	lines := h.cfg.Cart.Get(ctx, cartID(c))
	tiles := render.BuildTiles(res.Products, lines, h.countries(ctx))
	c.SSEvent("results", gin.H{
		"region": view.RegionSearchResults.String(),
		"query":  res.Query,
		"html":   h.cfg.Renderer.ProductTiles(tiles, "Aucun résultat"),
	})
}
