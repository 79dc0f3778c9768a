package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/handlers"
	"food-storefront/lifecycle"
	"food-storefront/middleware"
	"food-storefront/models"
	"food-storefront/persistence"
	"food-storefront/routes"
	"food-storefront/store"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	admins, err := persistence.SeedAdmins(bcrypt.MinCost, time.Now())
	require.NoError(t, err)
	s := store.New(store.State{
		Foods:  persistence.SeedFoods(),
		Admins: admins,
		Theme:  models.ThemeLight,
	}, store.WithBcryptCost(bcrypt.MinCost), store.WithLogger(log))

	// long enough that nothing fires during a test
	d := lifecycle.New(s, lifecycle.WithSchedule([]lifecycle.Step{
		{Status: models.StatusConfirmed, After: time.Hour},
		{Status: models.StatusPreparing, After: 2 * time.Hour},
		{Status: models.StatusOutForDelivery, After: 3 * time.Hour},
		{Status: models.StatusDelivered, After: 4 * time.Hour},
	}))
	s.Observe(d)
	t.Cleanup(s.Close)
	t.Cleanup(d.Stop)

	auth := middleware.NewAuth("test-secret-at-least-16", time.Hour, s)
	r := gin.New()
	routes.SetupRoutes(r, handlers.New(s, auth, d, log), auth)
	return &api{t: t, router: r, store: s}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (a *api) register(email string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Asha", "email": email, "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	return body["token"].(string)
}

func (a *api) adminLogin() string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/admin/auth/login", "", gin.H{
		"email": "owner1@zuvai.com", "password": "zuvai2024@owner1",
	})
	require.Equal(a.t, http.StatusOK, code, body)
	return body["token"].(string)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
}

func TestRegisterThenProfile(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")

	code, body := a.do(http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	code, _ = a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Other", "email": "ASHA@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)
}

func TestUpdateProfile(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")

	code, body := a.do(http.MethodPut, "/api/profile", token, gin.H{
		"name": "  Asha Rao ",
		"addresses": []gin.H{
			{"id": "home", "title": "Home", "full_address": "12 MG Road", "is_default": true},
		},
	})
	require.Equal(t, http.StatusOK, code, body)
	user := body["user"].(map[string]any)
	assert.Equal(t, "Asha Rao", user["name"])
	assert.Len(t, user["addresses"], 1)

	// a saved default address is enough to check out
	a.do(http.MethodPost, "/api/cart", token, gin.H{"food_id": "3", "quantity": 1})
	code, body = a.do(http.MethodPost, "/api/checkout", token, gin.H{})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "12 MG Road", body["order"].(map[string]any)["delivery_address"])
	assert.Equal(t, "Asha Rao", body["order"].(map[string]any)["user_name"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	a := newAPI(t)
	a.register("asha@example.com")

	code, _ := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "asha@example.com", body["user"].(map[string]any)["email"])
}

func TestLoginWhileSessionsChange(t *testing.T) {
	a := newAPI(t)
	a.register("ravi@example.com")
	a.register("asha@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ctx.Err() == nil {
			_ = a.store.Logout(ctx)
			_, _, _ = a.store.Login(ctx, "ravi@example.com", "secret123")
		}
	}()

	for i := 0; i < 50; i++ {
		code, body := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "secret123"})
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "asha@example.com", body["user"].(map[string]any)["email"])
	}
	cancel()
	<-done
}

func TestCartAndCheckout(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")

	code, _ := a.do(http.MethodPost, "/api/cart", token, gin.H{"food_id": "1", "quantity": 1})
	require.Equal(t, http.StatusCreated, code)
	code, body := a.do(http.MethodPost, "/api/cart", token, gin.H{"food_id": "1", "quantity": 1})
	require.Equal(t, http.StatusCreated, code)

	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	assert.EqualValues(t, 2, lines[0].(map[string]any)["quantity"])
	assert.EqualValues(t, 2, body["item_count"])
	quote := body["quote"].(map[string]any)
	assert.EqualValues(t, 598, quote["subtotal"])
	assert.EqualValues(t, 30, quote["tax"])
	assert.EqualValues(t, 0, quote["delivery_fee"])
	assert.EqualValues(t, 628, quote["total"])

	code, body = a.do(http.MethodPost, "/api/checkout", token, gin.H{"delivery_address": "12 MG Road"})
	require.Equal(t, http.StatusCreated, code, body)
	order := body["order"].(map[string]any)
	assert.Equal(t, "pending", order["status"])
	assert.EqualValues(t, 628, order["total"])
	orderID := order["id"].(string)

	code, body = a.do(http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["item_count"])

	code, body = a.do(http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = a.do(http.MethodGet, "/api/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["auto_progress"])
}

func TestCartLineUpdateToZeroRemovesIt(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")

	_, body := a.do(http.MethodPost, "/api/cart", token, gin.H{"food_id": "3", "quantity": 2})
	lineID := body["lines"].([]any)[0].(map[string]any)["id"].(string)

	code, body := a.do(http.MethodPut, "/api/cart/"+lineID, token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["lines"])
}

func TestCheckoutWithEmptyCart(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")

	code, _ := a.do(http.MethodPost, "/api/checkout", token, gin.H{"delivery_address": "12 MG Road"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUnknownFoodIsNotFound(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")

	code, _ := a.do(http.MethodPost, "/api/cart", token, gin.H{"food_id": "999", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminForceStatus(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")
	a.do(http.MethodPost, "/api/cart", token, gin.H{"food_id": "2", "quantity": 1})
	_, body := a.do(http.MethodPost, "/api/checkout", token, gin.H{"delivery_address": "12 MG Road"})
	orderID := body["order"].(map[string]any)["id"].(string)

	admin := a.adminLogin()
	code, body := a.do(http.MethodPut, "/api/admin/orders/"+orderID+"/status", admin, gin.H{
		"status": "preparing", "reason": "rush",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "pending", body["previous_status"])
	assert.Equal(t, "preparing", body["new_status"])
	assert.Equal(t, false, body["auto_progress"])

	code, _ = a.do(http.MethodPut, "/api/admin/orders/"+orderID+"/status", admin, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = a.do(http.MethodPut, "/api/admin/orders/missing/status", admin, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = a.do(http.MethodGet, "/api/admin/orders?status=preparing", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
}

func TestAdminRegistrationIsCapped(t *testing.T) {
	a := newAPI(t)
	code, _ := a.do(http.MethodPost, "/api/admin/auth/register", "", gin.H{
		"name": "Third", "email": "owner3@zuvai.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	a := newAPI(t)
	token := a.register("asha@example.com")

	code, _ := a.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.do(http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestSignInElsewhereEndsPreviousSession(t *testing.T) {
	a := newAPI(t)
	first := a.register("asha@example.com")
	a.register("ravi@example.com")

	code, _ := a.do(http.MethodGet, "/api/cart", first, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoleGuards(t *testing.T) {
	a := newAPI(t)

	code, _ := a.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(http.MethodGet, "/api/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	customer := a.register("asha@example.com")
	code, _ = a.do(http.MethodGet, "/api/admin/stats", customer, nil)
	assert.Equal(t, http.StatusForbidden, code)

	admin := a.adminLogin()
	code, _ = a.do(http.MethodGet, "/api/cart", admin, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, body := a.do(http.MethodGet, "/api/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 8, body["stats"].(map[string]any)["total_foods"])
}

func TestMenu(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(http.MethodGet, "/api/menu", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 8, body["count"])

	_, body = a.do(http.MethodGet, "/api/menu?category=Pizza", "", nil)
	assert.EqualValues(t, 1, body["count"])

	_, body = a.do(http.MethodGet, "/api/menu?is_veg=true", "", nil)
	assert.EqualValues(t, 4, body["count"])

	_, body = a.do(http.MethodGet, "/api/menu/categories", "", nil)
	assert.Equal(t, "All", body["categories"].([]any)[0])

	code, _ = a.do(http.MethodGet, "/api/menu/999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTheme(t *testing.T) {
	a := newAPI(t)

	code, body := a.do(http.MethodPut, "/api/theme", "", gin.H{"theme": "dark"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "dark", body["theme"])

	code, _ = a.do(http.MethodPut, "/api/theme", "", gin.H{"theme": "blue"})
	assert.Equal(t, http.StatusBadRequest, code)

	_, body = a.do(http.MethodGet, "/api/theme", "", nil)
	assert.Equal(t, "dark", body["theme"])
}

func TestAdminManagesCatalog(t *testing.T) {
	a := newAPI(t)
	admin := a.adminLogin()

	code, body := a.do(http.MethodPost, "/api/admin/foods", admin, gin.H{
		"name": "Masala Dosa", "price": 149, "category": "South Indian", "is_vegetarian": true,
	})
	require.Equal(t, http.StatusCreated, code, body)
	id := body["item"].(map[string]any)["id"].(string)

	code, body = a.do(http.MethodPut, "/api/admin/foods/"+id+"/toggle", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["item"].(map[string]any)["is_available"])

	code, _ = a.do(http.MethodPut, "/api/admin/foods/"+id, admin, gin.H{"price": -1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodDelete, "/api/admin/foods/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodDelete, "/api/admin/foods/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
