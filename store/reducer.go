package store

import (
	"fmt"
	"slices"
	"strings"

	"food-storefront/models"
	"food-storefront/pricing"
	"food-storefront/statemachine"
)

// Reduce applies cmd to s and returns the next state. It never mutates s; on
// error the returned state is s itself.
func Reduce(s State, cmd Command) (State, error) {
	switch c := cmd.(type) {
	case AddToCart:
		return addToCart(s, c), nil
	case RemoveFromCart:
		return removeFromCart(s, c.LineID), nil
	case UpdateQuantity:
		return updateQuantity(s, c), nil
	case ClearCart:
		s.Cart = nil
		return s, nil
	case AddToWishlist:
		return addToWishlist(s, c), nil
	case RemoveFromWishlist:
		return removeFromWishlist(s, c.FoodID), nil
	case AddOrder:
		s.Orders = appendClipped(s.Orders, c.Order)
		return s, nil
	case UpdateOrderStatus:
		return updateOrderStatus(s, c)
	case PlaceOrder:
		return placeOrder(s, c)
	case SetSession:
		if c.User == nil {
			s.User = nil
			return s, nil
		}
		u := cloneUser(*c.User)
		s.User = &u
		return s, nil
	case SetTheme:
		s.Theme = c.Theme
		return s, nil
	case RegisterUser:
		return registerUser(s, c)
	case RegisterAdmin:
		return registerAdmin(s, c)
	case UpdateProfile:
		return updateProfile(s, c)
	case AddFavorite:
		return editSessionUser(s, func(u *models.User) {
			if !slices.Contains(u.Favorites, c.FoodID) {
				u.Favorites = append(u.Favorites, c.FoodID)
			}
		})
	case RemoveFavorite:
		return editSessionUser(s, func(u *models.User) {
			u.Favorites = filter(u.Favorites, func(id string) bool { return id != c.FoodID })
		})
	case AddFood:
		s.Foods = appendClipped(s.Foods, c.Food)
		return s, nil
	case UpdateFood:
		return editFood(s, c.ID, c.Patch.Apply)
	case DeleteFood:
		if _, ok := s.FindFood(c.ID); !ok {
			return s, fmt.Errorf("delete food %s: %w", c.ID, ErrFoodNotFound)
		}
		s.Foods = filter(s.Foods, func(f models.FoodItem) bool { return f.ID != c.ID })
		return s, nil
	case ToggleFoodAvailability:
		return editFood(s, c.ID, func(f models.FoodItem) models.FoodItem {
			f.IsAvailable = !f.IsAvailable
			return f
		})
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func addToCart(s State, c AddToCart) State {
	if c.Quantity <= 0 {
		return s
	}
	for i, l := range s.Cart {
		if l.Food.ID != c.Food.ID {
			continue
		}
		cart := slices.Clone(s.Cart)
		cart[i].Quantity = l.Quantity + c.Quantity
		cart[i].Total = pricing.LineTotal(l.Food, cart[i].Quantity)
		s.Cart = cart
		return s
	}
	s.Cart = appendClipped(s.Cart, models.CartLine{
		ID:       c.LineID,
		Food:     c.Food,
		Quantity: c.Quantity,
		Total:    pricing.LineTotal(c.Food, c.Quantity),
	})
	return s
}

func removeFromCart(s State, lineID string) State {
	if _, ok := s.FindLine(lineID); !ok {
		return s
	}
	s.Cart = filter(s.Cart, func(l models.CartLine) bool { return l.ID != lineID })
	return s
}

func updateQuantity(s State, c UpdateQuantity) State {
	if c.Quantity <= 0 {
		return removeFromCart(s, c.LineID)
	}
	i := slices.IndexFunc(s.Cart, func(l models.CartLine) bool { return l.ID == c.LineID })
	if i < 0 {
		return s
	}
	cart := slices.Clone(s.Cart)
	cart[i].Quantity = c.Quantity
	cart[i].Total = pricing.LineTotal(cart[i].Food, c.Quantity)
	s.Cart = cart
	return s
}

func addToWishlist(s State, c AddToWishlist) State {
	if slices.ContainsFunc(s.Wishlist, func(e models.WishlistEntry) bool { return e.Food.ID == c.Food.ID }) {
		return s
	}
	s.Wishlist = appendClipped(s.Wishlist, models.WishlistEntry{ID: c.EntryID, Food: c.Food, AddedAt: c.At})
	if s.User != nil && !slices.Contains(s.User.Wishlist, c.Food.ID) {
		s, _ = editSessionUser(s, func(u *models.User) {
			u.Wishlist = append(u.Wishlist, c.Food.ID)
		})
	}
	return s
}

func removeFromWishlist(s State, foodID string) State {
	if !slices.ContainsFunc(s.Wishlist, func(e models.WishlistEntry) bool { return e.Food.ID == foodID }) {
		return s
	}
	s.Wishlist = filter(s.Wishlist, func(e models.WishlistEntry) bool { return e.Food.ID != foodID })
	if s.User != nil && slices.Contains(s.User.Wishlist, foodID) {
		s, _ = editSessionUser(s, func(u *models.User) {
			u.Wishlist = filter(u.Wishlist, func(id string) bool { return id != foodID })
		})
	}
	return s
}

func updateOrderStatus(s State, c UpdateOrderStatus) (State, error) {
	i := slices.IndexFunc(s.Orders, func(o models.Order) bool { return o.ID == c.OrderID })
	if i < 0 {
		return s, nil
	}
	current := s.Orders[i]
	if err := statemachine.CanTransition(current.Status, c.Status, c.Actor); err != nil {
		return s, fmt.Errorf("order %s: %w", c.OrderID, err)
	}
	orders := slices.Clone(s.Orders)
	orders[i].Status = c.Status
	orders[i].History = appendClipped(current.History, models.StatusChange{
		From: current.Status,
		To:   c.Status,
		By:   c.Actor,
		At:   c.At,
		Note: c.Note,
	})
	s.Orders = orders
	return s, nil
}

func placeOrder(s State, c PlaceOrder) (State, error) {
	if len(s.Cart) == 0 {
		return s, ErrEmptyCart
	}
	lines := slices.Clone(s.Cart)
	quote := pricing.Compute(lines, c.Pricing)
	payment := c.Payment
	if payment == "" {
		payment = models.PaymentCOD
	}
	order := models.Order{
		ID:                c.OrderID,
		Lines:             lines,
		Subtotal:          quote.Subtotal,
		Tax:               quote.Tax,
		DeliveryFee:       quote.DeliveryFee,
		Total:             quote.Total,
		DeliveryAddress:   c.Address,
		PaymentMethod:     payment,
		Status:            models.StatusPending,
		CreatedAt:         c.At,
		EstimatedDelivery: c.EstimatedDelivery,
		History: []models.StatusChange{
			{To: models.StatusPending, By: models.ActorCustomer, At: c.At, Note: "order placed"},
		},
	}
	if s.User != nil {
		order.UserID = s.User.ID
		order.UserName = s.User.Name
		s, _ = editSessionUser(s, func(u *models.User) {
			u.OrderIDs = append(u.OrderIDs, c.OrderID)
		})
	}
	s.Orders = appendClipped(s.Orders, order)
	s.Cart = nil
	return s, nil
}

func registerUser(s State, c RegisterUser) (State, error) {
	if _, taken := s.FindUserByEmail(c.User.Email); taken {
		return s, fmt.Errorf("register %s: %w", c.User.Email, ErrEmailTaken)
	}
	u := cloneUser(c.User)
	if u.Role == "" {
		u.Role = models.RoleCustomer
	}
	s.Users = appendClipped(s.Users, u)
	s.User = &u
	return s, nil
}

func registerAdmin(s State, c RegisterAdmin) (State, error) {
	if len(s.Admins) >= c.Limit {
		return s, fmt.Errorf("%w: only %d admins allowed", ErrAdminLimitReached, c.Limit)
	}
	if _, exists := s.FindAdminByEmail(c.Admin.Email); exists {
		return s, fmt.Errorf("register admin %s: %w", c.Admin.Email, ErrAdminExists)
	}
	s.Admins = appendClipped(s.Admins, c.Admin)
	return s, nil
}

func updateProfile(s State, c UpdateProfile) (State, error) {
	return editSessionUser(s, func(u *models.User) {
		if c.DisplayName != nil {
			u.Name = strings.TrimSpace(*c.DisplayName)
		}
		if c.ProfilePhoto != nil {
			u.ProfilePhoto = *c.ProfilePhoto
		}
		if c.Addresses != nil {
			u.Addresses = slices.Clone(c.Addresses)
		}
	})
}

// editSessionUser applies edit to a private copy of the signed-in user and
// mirrors the result into the registered users list.
func editSessionUser(s State, edit func(u *models.User)) (State, error) {
	if s.User == nil {
		return s, ErrNoSession
	}
	u := cloneUser(*s.User)
	edit(&u)
	s.User = &u
	if i := slices.IndexFunc(s.Users, func(r models.User) bool { return r.ID == u.ID }); i >= 0 {
		users := slices.Clone(s.Users)
		users[i] = cloneUser(u)
		// the session copy may have been restored without its credential
		users[i].PasswordHash = s.Users[i].PasswordHash
		s.Users = users
	}
	return s, nil
}

func editFood(s State, id string, edit func(models.FoodItem) models.FoodItem) (State, error) {
	i := slices.IndexFunc(s.Foods, func(f models.FoodItem) bool { return f.ID == id })
	if i < 0 {
		return s, fmt.Errorf("food %s: %w", id, ErrFoodNotFound)
	}
	foods := slices.Clone(s.Foods)
	foods[i] = edit(foods[i])
	foods[i].ID = id
	s.Foods = foods
	return s, nil
}

func cloneUser(u models.User) models.User {
	u.Addresses = slices.Clone(u.Addresses)
	u.Favorites = slices.Clone(u.Favorites)
	u.Wishlist = slices.Clone(u.Wishlist)
	u.OrderIDs = slices.Clone(u.OrderIDs)
	return u
}

// appendClipped appends without ever writing into xs's backing array.
func appendClipped[T any](xs []T, v ...T) []T {
	return append(slices.Clip(xs), v...)
}

// filter returns the elements of xs that keep accepts, or nil if none.
func filter[T any](xs []T, keep func(T) bool) []T {
	var out []T
	for _, x := range xs {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}
