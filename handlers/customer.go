package handlers

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"food-storefront/models"
	"food-storefront/store"

	"github.com/gin-gonic/gin"
)

type AddToCartRequest struct {
	FoodID   string `json:"food_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type UpdateCartLineRequest struct {
	// 0 removes the line
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

type PlaceOrderRequest struct {
	DeliveryAddress string               `json:"delivery_address"`
	AddressID       string               `json:"address_id"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" binding:"omitempty,oneof=cod online"`
}

// ── Cart ─────────────────────────────────────────────────────────────────────

// GetCart returns the cart lines with the price breakdown
func (h *Handler) GetCart(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.cartResponse(c, http.StatusOK, st)
}

func (h *Handler) cartResponse(c *gin.Context, status int, st store.State) {
	quote := h.store.Quote(st)
	lines := st.Cart
	if lines == nil {
		lines = []models.CartLine{}
	}
	items := 0
	for _, l := range lines {
		items += l.Quantity
	}
	c.JSON(status, gin.H{"lines": lines, "item_count": items, "quote": quote})
}

// AddToCart adds a catalog item, merging with an existing line
func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.store.AddFoodToCart(c.Request.Context(), req.FoodID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.cartResponse(c, http.StatusCreated, st)
}

// UpdateCartLine sets the quantity of one line
func (h *Handler) UpdateCartLine(c *gin.Context) {
	var req UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.store.UpdateQuantity(c.Request.Context(), c.Param("lineId"), *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.cartResponse(c, http.StatusOK, st)
}

// RemoveCartLine drops one line; unknown lines are ignored
func (h *Handler) RemoveCartLine(c *gin.Context) {
	st, err := h.store.RemoveFromCart(c.Request.Context(), c.Param("lineId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.cartResponse(c, http.StatusOK, st)
}

func (h *Handler) ClearCart(c *gin.Context) {
	st, err := h.store.ClearCart(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.cartResponse(c, http.StatusOK, st)
}

// ── Wishlist & favorites ─────────────────────────────────────────────────────

func (h *Handler) GetWishlist(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	entries := st.Wishlist
	if entries == nil {
		entries = []models.WishlistEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "wishlist": entries})
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	var req struct {
		FoodID string `json:"food_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	food, ok := st.FindFood(req.FoodID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food item not found"})
		return
	}
	if st, err = h.store.AddToWishlist(c.Request.Context(), food); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(st.Wishlist), "wishlist": st.Wishlist})
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	st, err := h.store.RemoveFromWishlist(c.Request.Context(), c.Param("foodId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	entries := st.Wishlist
	if entries == nil {
		entries = []models.WishlistEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "wishlist": entries})
}

// GetFavorites resolves the signed-in user's favorite ids against the catalog
func (h *Handler) GetFavorites(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.favoritesResponse(c, st)
}

func (h *Handler) favoritesResponse(c *gin.Context, st store.State) {
	foods := []models.FoodItem{}
	if st.User != nil {
		for _, id := range st.User.Favorites {
			// deleted catalog items drop out silently
			if f, ok := st.FindFood(id); ok {
				foods = append(foods, f)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(foods), "favorites": foods})
}

func (h *Handler) AddFavorite(c *gin.Context) {
	id := c.Param("foodId")
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if _, ok := st.FindFood(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food item not found"})
		return
	}
	if st, err = h.store.AddFavorite(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	h.favoritesResponse(c, st)
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	st, err := h.store.RemoveFavorite(c.Request.Context(), c.Param("foodId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.favoritesResponse(c, st)
}

// ── Checkout & orders ────────────────────────────────────────────────────────

// GetCheckout previews the bill and the default delivery address
func (h *Handler) GetCheckout(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if len(st.Cart) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}
	resp := gin.H{
		"lines":           st.Cart,
		"quote":           h.store.Quote(st),
		"payment_methods": []models.PaymentMethod{models.PaymentCOD, models.PaymentOnline},
	}
	if addr, ok := defaultAddress(st.User); ok {
		resp["default_address"] = addr
	}
	c.JSON(http.StatusOK, resp)
}

func defaultAddress(u *models.User) (models.Address, bool) {
	if u == nil || len(u.Addresses) == 0 {
		return models.Address{}, false
	}
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return u.Addresses[0], true
}

// PlaceOrder checks out the cart
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if st.User == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ended, please sign in again"})
		return
	}

	address := strings.TrimSpace(req.DeliveryAddress)
	if req.AddressID != "" {
		i := slices.IndexFunc(st.User.Addresses, func(a models.Address) bool { return a.ID == req.AddressID })
		if i < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Saved address not found"})
			return
		}
		address = st.User.Addresses[i].FullAddress
	}
	if address == "" {
		if a, ok := defaultAddress(st.User); ok {
			address = a.FullAddress
		}
	}
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery address required"})
		return
	}

	order, err := h.store.PlaceOrder(c.Request.Context(), address, req.PaymentMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":            "Order placed successfully",
		"order":              order,
		"estimated_delivery": order.EstimatedDelivery,
	})
}

// GetMyOrders returns the signed-in user's orders, newest first
func (h *Handler) GetMyOrders(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	orders := newestFirst(st.SessionOrders())
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns a single order's full detail with history
func (h *Handler) GetOrderDetail(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, ok := st.FindOrder(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if st.User == nil || order.UserID != st.User.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	elapsed := time.Since(order.CreatedAt).Minutes()
	c.JSON(http.StatusOK, gin.H{
		"order":           order,
		"minutes_elapsed": int(elapsed),
		"auto_progress":   h.driver.Pending(order.ID),
	})
}

func newestFirst(orders []models.Order) []models.Order {
	out := slices.Clone(orders)
	slices.SortStableFunc(out, func(a, b models.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if out == nil {
		out = []models.Order{}
	}
	return out
}
