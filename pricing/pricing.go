// Package pricing derives the bill for a cart. The cart view and checkout both
// call Compute so the two can never disagree.
package pricing

import (
	"math"

	"food-storefront/models"
)

// Config holds the storefront's pricing constants.
type Config struct {
	TaxRate               float64 `yaml:"tax_rate" validate:"gte=0,lt=1"`
	FreeDeliveryThreshold float64 `yaml:"free_delivery_threshold" validate:"gte=0"`
	DeliveryFee           float64 `yaml:"delivery_fee" validate:"gte=0"`
}

// DefaultConfig is 5% tax, free delivery above 500, otherwise a flat 40.
func DefaultConfig() Config {
	return Config{
		TaxRate:               0.05,
		FreeDeliveryThreshold: 500,
		DeliveryFee:           40,
	}
}

// Quote is the priced breakdown of a cart.
type Quote struct {
	Subtotal             float64 `json:"subtotal"`
	Tax                  float64 `json:"tax"`
	DeliveryFee          float64 `json:"delivery_fee"`
	Total                float64 `json:"total"`
	AmountToFreeDelivery float64 `json:"amount_to_free_delivery"`
}

// Compute prices lines under cfg.
func Compute(lines []models.CartLine, cfg Config) Quote {
	var q Quote
	for _, l := range lines {
		q.Subtotal += l.Total
	}
	q.Tax = math.Round(q.Subtotal * cfg.TaxRate)
	if q.Subtotal <= cfg.FreeDeliveryThreshold {
		q.DeliveryFee = cfg.DeliveryFee
		q.AmountToFreeDelivery = cfg.FreeDeliveryThreshold - q.Subtotal
	}
	q.Total = q.Subtotal + q.Tax + q.DeliveryFee
	return q
}

// LineTotal is quantity × unit price.
func LineTotal(food models.FoodItem, quantity int) float64 {
	return float64(quantity) * food.Price
}
