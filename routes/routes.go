package routes

import (
	"net/http"

	"food-storefront/handlers"
	"food-storefront/middleware"
	"food-storefront/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Food Storefront API",
		})
	})

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.POST("/admin/auth/login", h.AdminLogin)
		public.POST("/admin/auth/register", h.AdminRegister)

		// Catalog (no auth needed)
		public.GET("/menu", h.ListMenu)
		public.GET("/menu/categories", h.GetCategories)
		public.GET("/menu/:id", h.GetFoodItem)

		// Theme is a device preference, signed in or not
		public.GET("/theme", h.GetTheme)
		public.PUT("/theme", h.SetTheme)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(auth.AuthRequired())
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/profile", h.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.PUT("/profile", h.UpdateProfile)

		customer.GET("/cart", h.GetCart)
		customer.POST("/cart", h.AddToCart)
		customer.DELETE("/cart", h.ClearCart)
		customer.PUT("/cart/:lineId", h.UpdateCartLine)
		customer.DELETE("/cart/:lineId", h.RemoveCartLine)

		customer.GET("/wishlist", h.GetWishlist)
		customer.POST("/wishlist", h.AddToWishlist)
		customer.DELETE("/wishlist/:foodId", h.RemoveFromWishlist)

		customer.GET("/favorites", h.GetFavorites)
		customer.POST("/favorites/:foodId", h.AddFavorite)
		customer.DELETE("/favorites/:foodId", h.RemoveFavorite)

		customer.GET("/checkout", h.GetCheckout)
		customer.POST("/checkout", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:id/status", h.AdminForceOrderStatus)
		admin.GET("/users", h.AdminGetAllUsers)
		admin.GET("/stats", h.AdminGetStats)

		admin.GET("/foods", h.AdminListFoods)
		admin.POST("/foods", h.AddFoodItem)
		admin.PUT("/foods/:itemId", h.UpdateFoodItem)
		admin.DELETE("/foods/:itemId", h.DeleteFoodItem)
		admin.PUT("/foods/:itemId/toggle", h.ToggleFoodItem)
	}
}
