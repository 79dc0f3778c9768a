package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/kv"
	"food-storefront/models"
	"food-storefront/store"
)

// countingKV records every Set and Delete and can be told to fail writes.
type countingKV struct {
	*kv.Memory
	mu      sync.Mutex
	sets    map[string]int
	deletes map[string]int
	fail    bool
}

func newCountingKV() *countingKV {
	return &countingKV{Memory: kv.NewMemory(), sets: make(map[string]int), deletes: make(map[string]int)}
}

func (c *countingKV) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("disk full")
	}
	c.deletes[key]++
	return c.Memory.Delete(ctx, key)
}

func (c *countingKV) deleted(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deletes[key]
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("disk full")
	}
	c.sets[key]++
	return c.Memory.Set(ctx, key, value)
}

func (c *countingKV) reset() {
	c.mu.Lock()
	c.sets = make(map[string]int)
	c.deletes = make(map[string]int)
	c.mu.Unlock()
}

func (c *countingKV) written() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.sets))
	for k, v := range c.sets {
		out[k] = v
	}
	return out
}

func newBridge(backend kv.Store, opts ...Option) *Bridge {
	return NewBridge(backend, append([]Option{WithBcryptCost(bcrypt.MinCost)}, opts...)...)
}

func TestFirstLoadSeeds(t *testing.T) {
	ctx := context.Background()
	backend := newCountingKV()

	st, err := newBridge(backend).Load(ctx)
	require.NoError(t, err)

	assert.Len(t, st.Foods, 8)
	require.Len(t, st.Admins, 2)
	assert.Equal(t, "owner1@zuvai.com", st.Admins[0].Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(st.Admins[0].PasswordHash), []byte("zuvai2024@owner1")))
	assert.Equal(t, models.ThemeLight, st.Theme)
	assert.Empty(t, st.Users)
	assert.Nil(t, st.User)

	keys, err := backend.Keys(ctx, DefaultPrefix)
	require.NoError(t, err)
	assert.Len(t, keys, len(Keys())-1)
	assert.NotContains(t, keys, DefaultPrefix+KeySession)
	assert.Zero(t, backend.deleted(DefaultPrefix+KeySession))
}

func TestSignOutRemovesSessionKey(t *testing.T) {
	ctx := context.Background()
	backend := newCountingKV()
	b := newBridge(backend)
	initial, err := b.Load(ctx)
	require.NoError(t, err)
	s := store.New(initial, store.WithObserver(b), store.WithBcryptCost(bcrypt.MinCost))
	defer s.Close()

	_, err = s.Register(ctx, "Asha", "asha@example.com", "secret1")
	require.NoError(t, err)
	_, err = backend.Get(ctx, DefaultPrefix+KeySession)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	_, err = backend.Get(ctx, DefaultPrefix+KeySession)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// later commits leave the absent key alone
	_, err = s.SetTheme(ctx, models.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.deleted(DefaultPrefix+KeySession))

	after, err := newBridge(backend).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, after.User)
	assert.Len(t, after.Users, 1)
}

func TestUnreadableSessionIsRemoved(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(ctx, DefaultPrefix+KeySession, []byte(`{"id":`)))

	st, err := newBridge(backend).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, st.User)
	_, err = backend.Get(ctx, DefaultPrefix+KeySession)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(ctx, "other:keep", []byte(`1`)))
	require.NoError(t, backend.Set(ctx, DefaultPrefix+"legacy", []byte(`1`)))
	b := newBridge(backend)
	_, err := b.Load(ctx)
	require.NoError(t, err)

	deleted, err := b.Reset(ctx)
	require.NoError(t, err)
	assert.Len(t, deleted, len(Keys()))
	assert.Contains(t, deleted, DefaultPrefix+"legacy")

	keys, err := backend.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"other:keep"}, keys)

	// a fresh load seeds again
	st, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Foods, 8)
}

func TestStoredEmptyCatalogIsNotReseeded(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(ctx, DefaultPrefix+KeyFoods, []byte(`[]`)))

	st, err := newBridge(backend).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Foods)
	assert.Len(t, st.Admins, 2)
}

func TestDemoUserIsOptional(t *testing.T) {
	ctx := context.Background()

	st, err := newBridge(kv.NewMemory(), WithDemoUser(true)).Load(ctx)
	require.NoError(t, err)
	require.Len(t, st.Users, 1)
	assert.Equal(t, "user@demo.com", st.Users[0].Email)

	st, err = newBridge(kv.NewMemory()).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Users)
}

func TestOnlyChangedSlicesAreWritten(t *testing.T) {
	ctx := context.Background()
	backend := newCountingKV()
	b := newBridge(backend)
	initial, err := b.Load(ctx)
	require.NoError(t, err)
	backend.reset()

	s := store.New(initial, store.WithObserver(b))
	defer s.Close()

	_, err = s.AddFoodToCart(ctx, "1", 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{DefaultPrefix + KeyCart: 1}, backend.written())

	backend.reset()
	_, err = s.SetTheme(ctx, models.ThemeDark)
	require.NoError(t, err)
	_, err = s.SetTheme(ctx, models.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{DefaultPrefix + KeyTheme: 1}, backend.written())
}

func TestStateSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()

	b := newBridge(backend)
	initial, err := b.Load(ctx)
	require.NoError(t, err)
	s := store.New(initial, store.WithObserver(b), store.WithBcryptCost(bcrypt.MinCost))
	_, err = s.Register(ctx, "Asha", "asha@example.com", "secret1")
	require.NoError(t, err)
	_, err = s.AddFoodToCart(ctx, "1", 1)
	require.NoError(t, err)
	order, err := s.PlaceOrder(ctx, "12 MG Road", models.PaymentOnline)
	require.NoError(t, err)
	_, err = s.AddFoodToCart(ctx, "5", 3)
	require.NoError(t, err)
	_, err = s.AddToWishlist(ctx, initial.Foods[2])
	require.NoError(t, err)
	before, err := s.Snapshot(ctx)
	require.NoError(t, err)
	s.Close()

	after, err := newBridge(backend).Load(ctx)
	require.NoError(t, err)

	require.NotNil(t, after.User)
	assert.Equal(t, before.User.ID, after.User.ID)
	assert.Empty(t, after.User.PasswordHash)
	assert.Equal(t, before.Users[0].PasswordHash, after.Users[0].PasswordHash)
	require.Len(t, after.Cart, 1)
	assert.Equal(t, 3, after.Cart[0].Quantity)
	assert.Len(t, after.Wishlist, 1)
	require.Len(t, after.Orders, 1)
	assert.Equal(t, order.ID, after.Orders[0].ID)
	assert.Equal(t, order.Total, after.Orders[0].Total)
	assert.True(t, order.CreatedAt.Equal(after.Orders[0].CreatedAt))
}

func TestWriteFailuresAreLoggedNotFatal(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	backend := newCountingKV()
	b := newBridge(backend, WithLogger(zap.New(core)))
	initial, err := b.Load(ctx)
	require.NoError(t, err)

	s := store.New(initial, store.WithObserver(b))
	defer s.Close()

	backend.mu.Lock()
	backend.fail = true
	backend.mu.Unlock()

	st, err := s.SetTheme(ctx, models.ThemeDark)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, st.Theme)
	assert.Equal(t, 1, logs.FilterMessage("persisting state failed").Len())

	backend.mu.Lock()
	backend.fail = false
	backend.mu.Unlock()

	// the next commit carries the slice that failed
	_, err = s.ClearCart(ctx)
	require.NoError(t, err)
	raw, err := backend.Get(ctx, DefaultPrefix+KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(raw))
}

func TestUnreadableSliceIsDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	require.NoError(t, backend.Set(ctx, DefaultPrefix+KeyCart, []byte(`{not json`)))

	st, err := newBridge(backend).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Cart)

	raw, err := backend.Get(ctx, DefaultPrefix+KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	b := newBridge(backend, WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }))

	wrote, err := b.Seed(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultPrefix + KeyFoods, DefaultPrefix + KeyAdmins}, wrote)

	wrote, err = b.Seed(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, wrote)

	wrote, err = b.Seed(ctx, true)
	require.NoError(t, err)
	assert.Len(t, wrote, 2)
}
