package models

import "time"

type FoodItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Image        string    `json:"image"`
	Category     string    `json:"category"`
	Rating       float64   `json:"rating"`
	PrepTime     string    `json:"prep_time"`
	IsVegetarian bool      `json:"is_vegetarian"`
	IsSpicy      bool      `json:"is_spicy"`
	IsAvailable  bool      `json:"is_available"`
	Ingredients  []string  `json:"ingredients,omitempty"`
	Calories     int       `json:"calories,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FoodPatch carries a partial admin edit; nil fields are left untouched
type FoodPatch struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Image        *string  `json:"image"`
	Category     *string  `json:"category"`
	Rating       *float64 `json:"rating"`
	PrepTime     *string  `json:"prep_time"`
	IsVegetarian *bool    `json:"is_vegetarian"`
	IsSpicy      *bool    `json:"is_spicy"`
	IsAvailable  *bool    `json:"is_available"`
	Ingredients  []string `json:"ingredients"`
	Calories     *int     `json:"calories"`
}

// Apply returns a copy of f with the patch fields overlaid
func (p FoodPatch) Apply(f FoodItem) FoodItem {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Price != nil {
		f.Price = *p.Price
	}
	if p.Image != nil {
		f.Image = *p.Image
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Rating != nil {
		f.Rating = *p.Rating
	}
	if p.PrepTime != nil {
		f.PrepTime = *p.PrepTime
	}
	if p.IsVegetarian != nil {
		f.IsVegetarian = *p.IsVegetarian
	}
	if p.IsSpicy != nil {
		f.IsSpicy = *p.IsSpicy
	}
	if p.IsAvailable != nil {
		f.IsAvailable = *p.IsAvailable
	}
	if p.Ingredients != nil {
		f.Ingredients = append([]string(nil), p.Ingredients...)
	}
	if p.Calories != nil {
		f.Calories = *p.Calories
	}
	return f
}

// CartLine is one aggregated row in the cart, keyed by food item
type CartLine struct {
	ID       string   `json:"id"`
	Food     FoodItem `json:"food"`
	Quantity int      `json:"quantity"`
	Total    float64  `json:"total"`
}

// WishlistEntry is a saved-for-later reference to a food item
type WishlistEntry struct {
	ID      string    `json:"id"`
	Food    FoodItem  `json:"food"`
	AddedAt time.Time `json:"added_at"`
}
