package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"food-storefront/models"
)

func menuState() State {
	return State{Foods: []models.FoodItem{
		{ID: "1", Name: "Butter Chicken", Description: "Creamy tomato gravy", Category: "Main Course"},
		{ID: "2", Name: "Paneer Tikka", Description: "Grilled cottage cheese", Category: "Starters"},
		{ID: "3", Name: "Gulab Jamun", Description: "Milk dumplings in syrup", Category: "Desserts"},
		{ID: "4", Name: "Dal Makhani", Description: "Black lentils, butter", Category: "Main Course"},
	}}
}

func TestFilterMenu(t *testing.T) {
	st := menuState()
	ids := func(items []models.FoodItem) []string {
		var out []string
		for _, f := range items {
			out = append(out, f.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(st.FilterMenu("", "All")))
	assert.Equal(t, []string{"1", "4"}, ids(st.FilterMenu("", "Main Course")))
	assert.Equal(t, []string{"1", "4"}, ids(st.FilterMenu("BUTTER", "")))
	assert.Equal(t, []string{"4"}, ids(st.FilterMenu("lentil", "Main Course")))
	assert.Nil(t, st.FilterMenu("pizza", "All"))
}

func TestCategoriesKeepFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"Main Course", "Starters", "Desserts"}, menuState().Categories())
}

func TestStats(t *testing.T) {
	st := State{
		Users: []models.User{{ID: "u1"}, {ID: "u2"}},
		Foods: menuState().Foods,
		Orders: []models.Order{
			{ID: "o1", Status: models.StatusPending, Total: 100},
			{ID: "o2", Status: models.StatusDelivered, Total: 250},
			{ID: "o3", Status: models.StatusPreparing, Total: 50},
		},
	}
	stats := st.Stats()
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 400.0, stats.TotalRevenue)
	assert.Equal(t, 250.0, stats.DeliveredRevenue)
	assert.Equal(t, 2, stats.TotalCustomers)
	assert.Equal(t, 4, stats.TotalFoods)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
	assert.Equal(t, 1, stats.ByStatus[models.StatusPreparing])
}

func TestSessionOrdersFilterBySignedInUser(t *testing.T) {
	st := State{Orders: []models.Order{{ID: "a", UserID: "u1"}, {ID: "b", UserID: "u2"}, {ID: "c", UserID: "u1"}}}
	assert.Nil(t, st.SessionOrders())

	st.User = &models.User{ID: "u1"}
	orders := st.SessionOrders()
	assert.Len(t, orders, 2)
	assert.Equal(t, "c", orders[1].ID)
}
