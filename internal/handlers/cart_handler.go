package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marcheligne/storefront/internal/cart"
	"github.com/marcheligne/storefront/internal/metrics"
	"github.com/marcheligne/storefront/internal/render"
	"github.com/marcheligne/storefront/internal/validation"
)

// HandlerConfig groups dependencies for the storefront handlers.
type HandlerConfig struct {
	Cart     *cart.Store
	Catalog  CatalogAPI
	Renderer *render.Renderer
	Metrics  *metrics.Publisher
	Logger   zerolog.Logger
}

const cartCookie = "cart_id"

// cartID reads the visitor's cart id cookie, minting one on first touch.
// One visitor, one cart, one fixed storage key.
func cartID(c *gin.Context) string {
	if id, err := c.Cookie(cartCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(cartCookie, id, 60*60*24*365, "/", "", false, true)
	return id
}

// RegisterCartRoutes registers the cart API.
//
// Every mutation responds with a refresh bundle: freshly rendered fragments
// for all cart surfaces (badge, sidebar, preview, the touched tile control),
// so the page swaps them in one pass and every visible view agrees with the
// store.
func RegisterCartRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()

	r.GET("/cart", func(c *gin.Context) {
		lines := cfg.Cart.Get(c.Request.Context(), cartID(c))
		c.JSON(http.StatusOK, gin.H{
			"lines":      linesPayload(lines),
			"item_count": cart.ItemCount(lines),
			"total":      cart.Total(lines),
		})
	})

	r.GET("/cart/fragment", func(c *gin.Context) {
		lines := cfg.Cart.Get(c.Request.Context(), cartID(c))
		var frag string
		switch view := c.Query("view"); view {
		case "sidebar":
			frag = cfg.Renderer.Sidebar(render.BuildCartView(lines))
		case "preview":
			frag = cfg.Renderer.Preview(render.BuildPreview(lines))
		case "badge":
			frag = cfg.Renderer.Badge(render.BuildCartView(lines))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_view", "view": view})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(frag))
	})

	r.POST("/cart/items", func(c *gin.Context) {
		var req validation.AddItemRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}
		qty := req.Quantity
		if qty == 0 {
			qty = 1
		}
		id := cartID(c)
		lines, err := cfg.Cart.Add(c.Request.Context(), id, req.ProductID, req.Name, req.UnitPrice, qty)
		if err != nil {
			cfg.Logger.Error().Err(err).Str("cart_id", id).Msg("add to cart failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_write_failed"})
			return
		}
		cfg.Metrics.CountCartMutation(c.Request.Context(), cart.ActionAdd)
		c.JSON(http.StatusOK, refreshBundle(cfg.Renderer, lines, req.ProductID))
	})

	r.POST("/cart/items/:id/quantity", func(c *gin.Context) {
		var req validation.ChangeQuantityRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		id := cartID(c)
		productID := c.Param("id")
		lines, err := cfg.Cart.ChangeQuantity(c.Request.Context(), id, productID, req.Delta)
		if err != nil {
			cfg.Logger.Error().Err(err).Str("cart_id", id).Msg("change quantity failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_write_failed"})
			return
		}
		cfg.Metrics.CountCartMutation(c.Request.Context(), cart.ActionChange)
		c.JSON(http.StatusOK, refreshBundle(cfg.Renderer, lines, productID))
	})

	r.DELETE("/cart/items/:id", func(c *gin.Context) {
		id := cartID(c)
		productID := c.Param("id")
		lines, err := cfg.Cart.Remove(c.Request.Context(), id, productID)
		if err != nil {
			cfg.Logger.Error().Err(err).Str("cart_id", id).Msg("remove line failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_write_failed"})
			return
		}
		cfg.Metrics.CountCartMutation(c.Request.Context(), cart.ActionRemove)
		c.JSON(http.StatusOK, refreshBundle(cfg.Renderer, lines, productID))
	})

	r.DELETE("/cart", func(c *gin.Context) {
		id := cartID(c)
		if err := cfg.Cart.Clear(c.Request.Context(), id); err != nil {
			cfg.Logger.Error().Err(err).Str("cart_id", id).Msg("clear cart failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cart_write_failed"})
			return
		}
		cfg.Metrics.CountCartMutation(c.Request.Context(), cart.ActionClear)
		c.JSON(http.StatusOK, refreshBundle(cfg.Renderer, nil, ""))
	})

	r.POST("/checkout", func(c *gin.Context) {
		// checkout is deliberately a stub; orders are out of scope
		c.JSON(http.StatusNotImplemented, gin.H{"error": "checkout_not_implemented"})
	})
}

// refreshBundle re-renders every cart surface from the post-mutation lines.
func refreshBundle(r *render.Renderer, lines []cart.Line, productID string) gin.H {
	full := render.BuildCartView(lines)
	fragments := gin.H{
		"badge":   r.Badge(full),
		"sidebar": r.Sidebar(full),
		"preview": r.Preview(render.BuildPreview(lines)),
	}
	if productID != "" {
		fragments["tile_control"] = r.TileControl(productID, cart.Quantity(lines, productID))
	}
	return gin.H{
		"item_count": full.ItemCount,
		"total":      cart.Total(lines),
		"fragments":  fragments,
	}
}

func linesPayload(lines []cart.Line) []cart.Line {
	if lines == nil {
		return []cart.Line{}
	}
	return lines
}

// PublishCartEvents subscribes an SQS publisher to cart changes; downstream
// analytics consume the queue. Returns the unsubscribe func.
func PublishCartEvents(store *cart.Store, publish func(ctx context.Context, ev cart.Event) error, logger zerolog.Logger) func() {
	return store.Subscribe(func(ctx context.Context, ev cart.Event) {
		if err := publish(ctx, ev); err != nil {
			logger.Warn().Err(err).Str("cart_id", ev.CartID).Msg("cart event publish failed")
		}
	})
}
