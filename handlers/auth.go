package handlers

import (
	"net/http"

	"food-storefront/models"
	"food-storefront/store"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1"`
	ProfilePhoto *string          `json:"profile_photo" binding:"omitempty,url"`
	Addresses    []models.Address `json:"addresses" binding:"omitempty,dive"`
}

// Register creates a customer account and signs it in
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.issueToken(c, http.StatusCreated, "Account created successfully", user)
}

// Login authenticates a customer and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok, err := h.store.Login(c.Request.Context(), req.Email, req.Password)
	h.finishLogin(c, user, ok, err)
}

// AdminLogin authenticates one of the storefront owners
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, ok, err := h.store.AdminLogin(c.Request.Context(), req.Email, req.Password)
	h.finishLogin(c, user, ok, err)
}

func (h *Handler) finishLogin(c *gin.Context, user models.User, ok bool, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	h.issueToken(c, http.StatusOK, "Login successful", user)
}

// AdminRegister claims one of the limited admin slots
func (h *Handler) AdminRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, err := h.store.RegisterAdmin(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin account created, sign in to continue",
		"admin": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
		},
	})
}

// Logout ends the store session; outstanding tokens stop working
func (h *Handler) Logout(c *gin.Context) {
	if err := h.store.Logout(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *Handler) issueToken(c *gin.Context, status int, message string, user models.User) {
	token, err := h.auth.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(status, gin.H{
		"message": message,
		"token":   token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// GetProfile returns the signed-in user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	st, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if st.User == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": st.User.Public()})
}

// UpdateProfile edits name, photo and saved addresses
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.store.UpdateProfile(c.Request.Context(), store.UpdateProfile{
		DisplayName:  req.Name,
		ProfilePhoto: req.ProfilePhoto,
		Addresses:    req.Addresses,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": st.User.Public()})
}
