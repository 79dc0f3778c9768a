package handlers

import (
	"net/http"

	"food-storefront/models"
	"food-storefront/statemachine"

	"github.com/gin-gonic/gin"
)

// ListMenu returns the catalog (public)
func (h *Handler) ListMenu(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := st.FilterMenu(c.Query("search"), c.Query("category"))
	if c.Query("available") == "true" || c.Query("is_veg") == "true" {
		var kept []models.FoodItem
		for _, f := range items {
			if c.Query("available") == "true" && !f.IsAvailable {
				continue
			}
			if c.Query("is_veg") == "true" && !f.IsVegetarian {
				continue
			}
			kept = append(kept, f)
		}
		items = kept
	}
	if items == nil {
		items = []models.FoodItem{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "menu": items})
}

// GetCategories lists menu categories, "All" first
func (h *Handler) GetCategories(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": append([]string{"All"}, st.Categories()...)})
}

// GetFoodItem returns a single catalog item
func (h *Handler) GetFoodItem(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	food, ok := st.FindFood(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Food item not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"food": food})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range statemachine.Lifecycle() {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	schedule := []gin.H{}
	for _, step := range h.driver.Schedule() {
		schedule = append(schedule, gin.H{"status": step.Status, "after": step.After.String()})
	}
	c.JSON(http.StatusOK, gin.H{
		"lifecycle":        statemachine.Lifecycle(),
		"state_machine":    statemachine.GetAllTransitions(),
		"terminal_states":  terminal,
		"auto_progression": schedule,
		"description":      "Storefront Order Lifecycle State Machine",
	})
}

// GetTheme returns the stored UI theme
func (h *Handler) GetTheme(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": st.Theme})
}

// SetTheme stores the UI theme preference
func (h *Handler) SetTheme(c *gin.Context) {
	var req struct {
		Theme models.Theme `json:"theme" binding:"required,oneof=light dark"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.store.SetTheme(c.Request.Context(), req.Theme)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": st.Theme})
}
