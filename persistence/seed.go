package persistence

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"food-storefront/models"
)

var catalogDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SeedFoods is the catalog a fresh storefront starts with.
func SeedFoods() []models.FoodItem {
	item := func(id, name, desc string, price float64, image, category string, rating float64, veg, spicy bool, prep string, ingredients []string, calories int) models.FoodItem {
		return models.FoodItem{
			ID:           id,
			Name:         name,
			Description:  desc,
			Price:        price,
			Image:        "https://images.pexels.com/photos/" + image + "?auto=compress&cs=tinysrgb&w=800",
			Category:     category,
			Rating:       rating,
			PrepTime:     prep,
			IsVegetarian: veg,
			IsSpicy:      spicy,
			IsAvailable:  true,
			Ingredients:  ingredients,
			Calories:     calories,
			CreatedAt:    catalogDate,
		}
	}
	return []models.FoodItem{
		item("1", "Margherita Pizza", "Classic Italian pizza with fresh tomatoes, mozzarella, and basil", 299,
			"2147491/pexels-photo-2147491.jpeg", "Pizza", 4.8, true, false, "20-25 min",
			[]string{"Tomato sauce", "Fresh mozzarella", "Fresh basil", "Olive oil"}, 220),
		item("2", "Chicken Burger", "Juicy grilled chicken breast with lettuce, tomato, and our special sauce", 249,
			"1639562/pexels-photo-1639562.jpeg", "Burgers", 4.6, false, false, "15-20 min",
			[]string{"Chicken breast", "Lettuce", "Tomato", "Special sauce", "Brioche bun"}, 450),
		item("3", "Caesar Salad", "Fresh romaine lettuce with parmesan, croutons, and Caesar dressing", 199,
			"1213710/pexels-photo-1213710.jpeg", "Salads", 4.4, true, false, "10-15 min",
			[]string{"Romaine lettuce", "Parmesan cheese", "Croutons", "Caesar dressing"}, 180),
		item("4", "Spicy Pad Thai", "Traditional Thai stir-fried noodles with vegetables and spicy sauce", 279,
			"1640777/pexels-photo-1640777.jpeg", "Asian", 4.7, false, true, "18-22 min",
			[]string{"Rice noodles", "Vegetables", "Spicy sauce", "Herbs"}, 380),
		item("5", "Chocolate Lava Cake", "Decadent chocolate cake with a molten center, served with vanilla ice cream", 149,
			"1639564/pexels-photo-1639564.jpeg", "Desserts", 4.9, true, false, "12-15 min",
			[]string{"Dark chocolate", "Vanilla ice cream", "Butter", "Eggs"}, 320),
		item("6", "Fresh Fruit Smoothie", "Blend of fresh seasonal fruits with yogurt and honey", 129,
			"1092730/pexels-photo-1092730.jpeg", "Beverages", 4.5, true, false, "5-8 min",
			[]string{"Fresh fruits", "Yogurt", "Honey", "Ice"}, 150),
		item("7", "BBQ Ribs", "Tender pork ribs with our signature BBQ sauce", 399,
			"1639565/pexels-photo-1639565.jpeg", "BBQ", 4.8, false, false, "30-35 min",
			[]string{"Pork ribs", "BBQ sauce", "Spices", "Herbs"}, 520),
		item("8", "Seafood Pasta", "Fresh seafood with linguine in a creamy white wine sauce", 349,
			"1640774/pexels-photo-1640774.jpeg", "Pasta", 4.6, false, false, "25-30 min",
			[]string{"Linguine", "Fresh seafood", "White wine sauce", "Herbs"}, 480),
	}
}

type seedAccount struct {
	id, name, email, password string
}

var (
	seedAdmins = []seedAccount{
		{"1", "Zuvai Owner 1", "owner1@zuvai.com", "zuvai2024@owner1"},
		{"2", "Zuvai Owner 2", "owner2@zuvai.com", "zuvai2024@owner2"},
	}
	demoAccount = seedAccount{"demo-1", "Demo User", "user@demo.com", "demo123"}
)

// SeedAdmins returns the two pre-provisioned owner accounts with hashed passwords.
func SeedAdmins(cost int, now time.Time) ([]models.Admin, error) {
	admins := make([]models.Admin, 0, len(seedAdmins))
	for _, a := range seedAdmins {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash admin %s: %w", a.email, err)
		}
		admins = append(admins, models.Admin{
			ID:           a.id,
			Email:        a.email,
			PasswordHash: string(hash),
			Name:         a.name,
			RegisteredAt: now,
		})
	}
	return admins, nil
}

// DemoUser is the optional customer account for trying the storefront out.
func DemoUser(cost int, now time.Time) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoAccount.password), cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash demo user: %w", err)
	}
	return models.User{
		ID:           demoAccount.id,
		Name:         demoAccount.name,
		Email:        demoAccount.email,
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		Addresses: []models.Address{
			{ID: "1", Title: "Home", FullAddress: "123 Demo Street, Demo City, 12345", IsDefault: true},
		},
		CreatedAt: now,
	}, nil
}
