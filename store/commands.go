package store

import (
	"time"

	"food-storefront/models"
	"food-storefront/pricing"
)

// Command is one state transition. Every identifier and timestamp a
// transition needs travels on the command so Reduce stays deterministic.
type Command interface {
	Name() string
}

type AddToCart struct {
	Food     models.FoodItem
	Quantity int
	LineID   string // used only when a new line is created
}

type RemoveFromCart struct {
	LineID string
}

type UpdateQuantity struct {
	LineID   string
	Quantity int
}

type ClearCart struct{}

type AddToWishlist struct {
	Food    models.FoodItem
	EntryID string
	At      time.Time
}

type RemoveFromWishlist struct {
	FoodID string
}

type AddOrder struct {
	Order models.Order
}

type UpdateOrderStatus struct {
	OrderID string
	Status  models.OrderStatus
	Actor   models.Actor
	At      time.Time
	Note    string
}

// PlaceOrder turns the current cart into a pending order.
type PlaceOrder struct {
	OrderID           string
	At                time.Time
	EstimatedDelivery time.Time
	Address           string
	Payment           models.PaymentMethod
	Pricing           pricing.Config
}

// SetSession signs a user in, or out when User is nil.
type SetSession struct {
	User *models.User
}

type SetTheme struct {
	Theme models.Theme
}

type RegisterUser struct {
	User models.User
}

type RegisterAdmin struct {
	Admin models.Admin
	Limit int
}

// UpdateProfile edits the signed-in user; nil fields are left untouched.
type UpdateProfile struct {
	DisplayName  *string
	ProfilePhoto *string
	Addresses    []models.Address
}

type AddFavorite struct {
	FoodID string
}

type RemoveFavorite struct {
	FoodID string
}

type AddFood struct {
	Food models.FoodItem
}

type UpdateFood struct {
	ID    string
	Patch models.FoodPatch
}

type DeleteFood struct {
	ID string
}

type ToggleFoodAvailability struct {
	ID string
}

func (AddToCart) Name() string              { return "add_to_cart" }
func (RemoveFromCart) Name() string         { return "remove_from_cart" }
func (UpdateQuantity) Name() string         { return "update_quantity" }
func (ClearCart) Name() string              { return "clear_cart" }
func (AddToWishlist) Name() string          { return "add_to_wishlist" }
func (RemoveFromWishlist) Name() string     { return "remove_from_wishlist" }
func (AddOrder) Name() string               { return "add_order" }
func (UpdateOrderStatus) Name() string      { return "update_order_status" }
func (PlaceOrder) Name() string             { return "place_order" }
func (SetSession) Name() string             { return "set_session" }
func (SetTheme) Name() string               { return "set_theme" }
func (RegisterUser) Name() string           { return "register_user" }
func (RegisterAdmin) Name() string          { return "register_admin" }
func (UpdateProfile) Name() string          { return "update_profile" }
func (AddFavorite) Name() string            { return "add_favorite" }
func (RemoveFavorite) Name() string         { return "remove_favorite" }
func (AddFood) Name() string                { return "add_food" }
func (UpdateFood) Name() string             { return "update_food" }
func (DeleteFood) Name() string             { return "delete_food" }
func (ToggleFoodAvailability) Name() string { return "toggle_food_availability" }
