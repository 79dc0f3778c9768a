// Package persistence mirrors the store into a key-value backend: one key per
// state slice, loaded eagerly at startup and rewritten whole when it changes.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/kv"
	"food-storefront/models"
	"food-storefront/store"
)

type Option func(*Bridge)

func WithPrefix(prefix string) Option {
	return func(b *Bridge) { b.prefix = prefix }
}

func WithLogger(log *zap.Logger) Option {
	return func(b *Bridge) {
		if log != nil {
			b.log = log
		}
	}
}

// WithBcryptCost sets the cost used when hashing seeded passwords.
func WithBcryptCost(cost int) Option {
	return func(b *Bridge) { b.cost = cost }
}

// WithDemoUser adds the demo customer when no users have been saved yet.
func WithDemoUser(enabled bool) Option {
	return func(b *Bridge) { b.demo = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

// Bridge is a store.Observer. It remembers the last encoding written for each
// key so an unchanged slice is never rewritten. The session key exists only
// while someone is signed in.
type Bridge struct {
	kv     kv.Store
	prefix string
	log    *zap.Logger
	cost   int
	demo   bool
	now    func() time.Time

	mu      sync.Mutex
	written map[string][]byte
}

func NewBridge(backend kv.Store, opts ...Option) *Bridge {
	b := &Bridge{
		kv:      backend,
		prefix:  DefaultPrefix,
		log:     zap.NewNop(),
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		written: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) key(name string) string { return b.prefix + name }

// Load reads every slice. Catalog and admin accounts are seeded only when
// their key has never been written; a stored empty list stays empty.
func (b *Bridge) Load(ctx context.Context) (store.State, error) {
	var st store.State
	missing := make(map[string]bool)
	for _, name := range Keys() {
		raw, err := b.kv.Get(ctx, b.key(name))
		if errors.Is(err, kv.ErrNotFound) {
			missing[name] = true
			b.remember(name, nil)
			continue
		}
		if err != nil {
			return store.State{}, fmt.Errorf("load %s: %w", name, err)
		}
		if err := decode(&st, name, raw); err != nil {
			b.log.Warn("discarding unreadable slice", zap.String("key", b.key(name)), zap.Error(err))
			missing[name] = true
			continue
		}
		b.remember(name, raw)
	}

	now := b.now().UTC()
	if missing[KeyFoods] {
		st.Foods = SeedFoods()
		b.log.Info("seeded catalog", zap.Int("items", len(st.Foods)))
	}
	if missing[KeyAdmins] {
		admins, err := SeedAdmins(b.cost, now)
		if err != nil {
			return store.State{}, err
		}
		st.Admins = admins
		b.log.Info("seeded admin accounts", zap.Int("admins", len(admins)))
	}
	if missing[KeyUsers] && b.demo {
		demo, err := DemoUser(b.cost, now)
		if err != nil {
			return store.State{}, err
		}
		st.Users = []models.User{demo}
	}
	if missing[KeyTheme] {
		st.Theme = models.ThemeLight
	}

	if err := b.sync(ctx, st); err != nil {
		return st, fmt.Errorf("write initial state: %w", err)
	}
	b.log.Info("state loaded",
		zap.Int("foods", len(st.Foods)),
		zap.Int("orders", len(st.Orders)),
		zap.Int("users", len(st.Users)),
		zap.Bool("signed_in", st.User != nil))
	return st, nil
}

// Seed writes the seed catalog and admin accounts. Existing keys are kept
// unless force is set. It returns the keys it wrote.
func (b *Bridge) Seed(ctx context.Context, force bool) ([]string, error) {
	var wrote []string
	put := func(name string, v any) error {
		if !force {
			_, err := b.kv.Get(ctx, b.key(name))
			if err == nil {
				return nil
			}
			if !errors.Is(err, kv.ErrNotFound) {
				return fmt.Errorf("check %s: %w", name, err)
			}
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := b.kv.Set(ctx, b.key(name), data); err != nil {
			return err
		}
		b.remember(name, data)
		wrote = append(wrote, b.key(name))
		return nil
	}

	if err := put(KeyFoods, SeedFoods()); err != nil {
		return wrote, err
	}
	admins, err := SeedAdmins(b.cost, b.now().UTC())
	if err != nil {
		return wrote, err
	}
	if err := put(KeyAdmins, admins); err != nil {
		return wrote, err
	}
	return wrote, nil
}

// Committed implements store.Observer. Failed writes are logged; the slice is
// written again in full the next time any command commits.
func (b *Bridge) Committed(cmd store.Command, _, next store.State) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.sync(ctx, next); err != nil {
		b.log.Warn("persisting state failed", zap.String("command", cmd.Name()), zap.Error(err))
	}
}

func (b *Bridge) sync(ctx context.Context, st store.State) error {
	var errs []error
	for _, name := range Keys() {
		data, err := encode(st, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode %s: %w", name, err))
			continue
		}
		b.mu.Lock()
		prev, seen := b.written[name]
		b.mu.Unlock()
		if data == nil {
			// nothing to store: the key should not exist
			if seen && prev == nil {
				continue
			}
			if err := b.kv.Delete(ctx, b.key(name)); err != nil {
				errs = append(errs, err)
				continue
			}
			b.remember(name, nil)
			b.log.Debug("slice deleted", zap.String("key", b.key(name)))
			continue
		}
		if seen && bytes.Equal(prev, data) {
			continue
		}
		if err := b.kv.Set(ctx, b.key(name), data); err != nil {
			errs = append(errs, err)
			continue
		}
		b.remember(name, data)
		b.log.Debug("slice written", zap.String("key", b.key(name)), zap.Int("bytes", len(data)))
	}
	return errors.Join(errs...)
}

// Reset deletes every key under the bridge prefix, including keys no current
// slice maps to. It returns the deleted keys.
func (b *Bridge) Reset(ctx context.Context) ([]string, error) {
	keys, err := b.kv.Keys(ctx, b.prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", b.prefix, err)
	}
	var deleted []string
	for _, k := range keys {
		if err := b.kv.Delete(ctx, k); err != nil {
			return deleted, err
		}
		deleted = append(deleted, k)
	}
	b.mu.Lock()
	b.written = make(map[string][]byte)
	b.mu.Unlock()
	b.log.Info("storage reset", zap.Int("keys", len(deleted)))
	return deleted, nil
}

func (b *Bridge) remember(name string, data []byte) {
	b.mu.Lock()
	b.written[name] = data
	b.mu.Unlock()
}

func encode(st store.State, name string) ([]byte, error) {
	switch name {
	case KeySession:
		if st.User == nil {
			return nil, nil
		}
		return json.Marshal(st.User.Public())
	case KeyCart:
		return json.Marshal(st.Cart)
	case KeyWishlist:
		return json.Marshal(st.Wishlist)
	case KeyOrders:
		return json.Marshal(st.Orders)
	case KeyTheme:
		return json.Marshal(st.Theme)
	case KeyFoods:
		return json.Marshal(st.Foods)
	case KeyUsers:
		return json.Marshal(st.Users)
	case KeyAdmins:
		return json.Marshal(st.Admins)
	}
	return nil, fmt.Errorf("unknown slice %q", name)
}

func decode(st *store.State, name string, raw []byte) error {
	switch name {
	case KeySession:
		return into(raw, &st.User)
	case KeyCart:
		return into(raw, &st.Cart)
	case KeyWishlist:
		return into(raw, &st.Wishlist)
	case KeyOrders:
		return into(raw, &st.Orders)
	case KeyTheme:
		return into(raw, &st.Theme)
	case KeyFoods:
		return into(raw, &st.Foods)
	case KeyUsers:
		return into(raw, &st.Users)
	case KeyAdmins:
		return into(raw, &st.Admins)
	}
	return fmt.Errorf("unknown slice %q", name)
}

// into leaves dst untouched when raw does not decode.
func into[T any](raw []byte, dst *T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}
