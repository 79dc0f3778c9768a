package handlers

import (
	"net/http"

	"food-storefront/models"

	"github.com/gin-gonic/gin"
)

// AdminGetAllOrders returns every order with a per-status summary (admin only)
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	var orders []models.Order
	for _, o := range st.Orders {
		if status := c.Query("status"); status != "" && string(o.Status) != status {
			continue
		}
		if userID := c.Query("user_id"); userID != "" && o.UserID != userID {
			continue
		}
		orders = append(orders, o)
	}
	orders = newestFirst(orders)

	// Admin dashboard: aggregate by status
	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.StatusDelivered {
			totalRevenue += o.Total
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": totalRevenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

// AdminGetAllUsers returns registered customers without credentials (admin only)
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	users := make([]models.User, 0, len(st.Users))
	for _, u := range st.Users {
		users = append(users, u.Public())
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminGetStats returns the dashboard figures
func (h *Handler) AdminGetStats(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": st.Stats()})
}

// AdminListFoods returns the whole catalog including unavailable items
func (h *Handler) AdminListFoods(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	foods := st.Foods
	if foods == nil {
		foods = []models.FoodItem{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(foods), "foods": foods})
}

// AdminForceOrderStatus moves an order forward by hand. Automatic progression
// stops for that order.
func (h *Handler) AdminForceOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
		Reason string             `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	note := "[ADMIN OVERRIDE]"
	if req.Reason != "" {
		note += " " + req.Reason
	}
	st, err := h.store.UpdateOrderStatus(c.Request.Context(), orderID, req.Status, models.ActorAdmin, note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	// unknown ids commit as a no-op
	order, ok := st.FindOrder(orderID)
	if !ok || len(order.History) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	prevStatus := order.History[len(order.History)-1].From

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated by admin",
		"order_id":        orderID,
		"previous_status": prevStatus,
		"new_status":      req.Status,
		"auto_progress":   h.driver.Pending(orderID),
	})
}
