package handlers

import (
	"net/http"
	"strings"

	"food-storefront/models"

	"github.com/gin-gonic/gin"
)

// ── Catalog Management ───────────────────────────────────────────────────────

type CreateFoodRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" binding:"required,gt=0"`
	Image        string   `json:"image" binding:"omitempty,url"`
	Category     string   `json:"category" binding:"required"`
	Rating       float64  `json:"rating" binding:"gte=0,lte=5"`
	PrepTime     string   `json:"prep_time"`
	IsVegetarian bool     `json:"is_vegetarian"`
	IsSpicy      bool     `json:"is_spicy"`
	Ingredients  []string `json:"ingredients"`
	Calories     int      `json:"calories" binding:"gte=0"`
}

// AddFoodItem adds a new item to the catalog, available immediately
func (h *Handler) AddFoodItem(c *gin.Context) {
	var req CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.store.AddFood(c.Request.Context(), models.FoodItem{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Image:        req.Image,
		Category:     strings.TrimSpace(req.Category),
		Rating:       req.Rating,
		PrepTime:     req.PrepTime,
		IsVegetarian: req.IsVegetarian,
		IsSpicy:      req.IsSpicy,
		IsAvailable:  true,
		Ingredients:  req.Ingredients,
		Calories:     req.Calories,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food item added", "item": item})
}

// UpdateFoodItem applies a partial edit. Carts keep the price they were filled at.
func (h *Handler) UpdateFoodItem(c *gin.Context) {
	var patch models.FoodPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Price != nil && *patch.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than 0"})
		return
	}
	item, err := h.store.UpdateFood(c.Request.Context(), c.Param("itemId"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item updated", "item": item})
}

// DeleteFoodItem removes an item from the catalog
func (h *Handler) DeleteFoodItem(c *gin.Context) {
	if err := h.store.DeleteFood(c.Request.Context(), c.Param("itemId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food item deleted"})
}

// ToggleFoodItem flips availability
func (h *Handler) ToggleFoodItem(c *gin.Context) {
	item, err := h.store.ToggleFoodAvailability(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability updated", "item": item})
}
