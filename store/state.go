package store

import (
	"strings"

	"food-storefront/models"
)

// State is the whole session. Slices are shared between snapshots and must be
// treated as read-only; Reduce always builds new backing arrays.
type State struct {
	User     *models.User
	Cart     []models.CartLine
	Wishlist []models.WishlistEntry
	Orders   []models.Order // every order placed on this device, the admin ledger
	Theme    models.Theme
	Foods    []models.FoodItem
	Users    []models.User
	Admins   []models.Admin
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalOrders      int                        `json:"total_orders"`
	TotalRevenue     float64                    `json:"total_revenue"`
	DeliveredRevenue float64                    `json:"delivered_revenue"`
	TotalCustomers   int                        `json:"total_customers"`
	TotalFoods       int                        `json:"total_foods"`
	PendingOrders    int                        `json:"pending_orders"`
	DeliveredOrders  int                        `json:"delivered_orders"`
	ByStatus         map[models.OrderStatus]int `json:"by_status"`
}

func (s State) FindFood(id string) (models.FoodItem, bool) {
	for _, f := range s.Foods {
		if f.ID == id {
			return f, true
		}
	}
	return models.FoodItem{}, false
}

func (s State) FindOrder(id string) (models.Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func (s State) FindLine(id string) (models.CartLine, bool) {
	for _, l := range s.Cart {
		if l.ID == id {
			return l, true
		}
	}
	return models.CartLine{}, false
}

func (s State) FindUserByEmail(email string) (models.User, bool) {
	for _, u := range s.Users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s State) FindAdminByEmail(email string) (models.Admin, bool) {
	for _, a := range s.Admins {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}
	return models.Admin{}, false
}

// SessionOrders returns the signed-in user's orders, oldest first.
func (s State) SessionOrders() []models.Order {
	if s.User == nil {
		return nil
	}
	var orders []models.Order
	for _, o := range s.Orders {
		if o.UserID == s.User.ID {
			orders = append(orders, o)
		}
	}
	return orders
}

// Categories lists distinct catalog categories in first-seen order.
func (s State) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range s.Foods {
		if f.Category == "" || seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		out = append(out, f.Category)
	}
	return out
}

// FilterMenu matches search case-insensitively against name and description.
// An empty category or "All" matches every category.
func (s State) FilterMenu(search, category string) []models.FoodItem {
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []models.FoodItem
	for _, f := range s.Foods {
		if category != "" && category != "All" && f.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(f.Name), needle) &&
			!strings.Contains(strings.ToLower(f.Description), needle) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (s State) Stats() Stats {
	st := Stats{
		TotalOrders:    len(s.Orders),
		TotalCustomers: len(s.Users),
		TotalFoods:     len(s.Foods),
		ByStatus:       make(map[models.OrderStatus]int),
	}
	for _, o := range s.Orders {
		st.TotalRevenue += o.Total
		st.ByStatus[o.Status]++
		switch o.Status {
		case models.StatusPending:
			st.PendingOrders++
		case models.StatusDelivered:
			st.DeliveredOrders++
			st.DeliveredRevenue += o.Total
		}
	}
	return st
}
