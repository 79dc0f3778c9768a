package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/config"
	"food-storefront/kv"
)

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Server.GinMode = "test"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Storage = kv.Config{Driver: kv.DriverSQLite, DSN: filepath.Join(t.TempDir(), "storefront.db")}
	return cfg
}

func request(t *testing.T, a *App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func TestSeedThenServe(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	log := zaptest.NewLogger(t)

	written, err := Seed(ctx, cfg, log, false)
	require.NoError(t, err)
	assert.Len(t, written, 2)

	written, err = Seed(ctx, cfg, log, false)
	require.NoError(t, err)
	assert.Empty(t, written)

	a, err := New(ctx, cfg, log)
	require.NoError(t, err)
	defer a.Close()

	code, body := request(t, a, http.MethodGet, "/api/menu", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 8, body["count"])

	code, body = request(t, a, http.MethodPost, "/api/admin/auth/login",
		`{"email":"owner2@zuvai.com","password":"zuvai2024@owner2"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	log := zaptest.NewLogger(t)

	a, err := New(ctx, cfg, log)
	require.NoError(t, err)
	code, _ := request(t, a, http.MethodPut, "/api/theme", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = request(t, a, http.MethodPost, "/api/auth/register",
		`{"name":"Asha","email":"asha@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, code)
	require.NoError(t, a.Close())

	a, err = New(ctx, cfg, log)
	require.NoError(t, err)
	defer a.Close()

	_, body := request(t, a, http.MethodGet, "/api/theme", "")
	assert.Equal(t, "dark", body["theme"])

	st, err := a.Store().Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.User)
	assert.Equal(t, "asha@example.com", st.User.Email)

	code, _ = request(t, a, http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, code)
}

func TestResetClearsStorage(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	log := zaptest.NewLogger(t)

	_, err := Seed(ctx, cfg, log, false)
	require.NoError(t, err)

	deleted, err := Reset(ctx, cfg, log)
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	written, err := Seed(ctx, cfg, log, false)
	require.NoError(t, err)
	assert.Len(t, written, 2)
}

func TestNewFailsOnBadStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage = kv.Config{Driver: kv.DriverRedis, RedisURL: "not a url"}
	_, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
