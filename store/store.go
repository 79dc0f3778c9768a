package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"food-storefront/models"
	"food-storefront/pricing"
)

// DefaultAdminLimit is the number of back-office accounts a storefront may hold.
const DefaultAdminLimit = 2

// Observer is notified after every committed command, on the store goroutine.
// Implementations must not call back into the store synchronously.
type Observer interface {
	Committed(cmd Command, prev, next State)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(cmd Command, prev, next State)

func (f ObserverFunc) Committed(cmd Command, prev, next State) { f(cmd, prev, next) }

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the id generator; the default is UUIDv7.
func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithPricing(cfg pricing.Config) Option {
	return func(s *Store) { s.pricing = cfg }
}

func WithAdminLimit(n int) Option {
	return func(s *Store) { s.adminLimit = n }
}

func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.bcryptCost = cost }
}

// WithDeliveryWindow sets how far after placement the estimated delivery lies.
func WithDeliveryWindow(d time.Duration) Option {
	return func(s *Store) { s.deliveryWindow = d }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

type envelope struct {
	cmd   Command // nil for a snapshot read
	reply chan result
}

type result struct {
	state State
	err   error
}

// Store owns one session's State. A single goroutine applies commands in
// arrival order, so every update sees the result of the one before it.
type Store struct {
	commands  chan envelope
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	obsMu     sync.Mutex
	observers []Observer

	state State

	now            func() time.Time
	newID          func() string
	log            *zap.Logger
	pricing        pricing.Config
	adminLimit     int
	bcryptCost     int
	deliveryWindow time.Duration
}

// New starts a store seeded with initial.
func New(initial State, opts ...Option) *Store {
	s := &Store{
		commands:       make(chan envelope, 32),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
		state:          initial,
		now:            time.Now,
		newID:          newUUID,
		log:            zap.NewNop(),
		pricing:        pricing.DefaultConfig(),
		adminLimit:     DefaultAdminLimit,
		bcryptCost:     bcrypt.DefaultCost,
		deliveryWindow: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Observe registers o for every later commit.
func (s *Store) Observe(o Observer) {
	s.obsMu.Lock()
	s.observers = append(s.observers, o)
	s.obsMu.Unlock()
}

func (s *Store) loop() {
	defer close(s.done)
	for {
		select {
		case env := <-s.commands:
			if env.cmd == nil {
				env.reply <- result{state: s.state}
				continue
			}
			prev := s.state
			next, err := Reduce(prev, env.cmd)
			if err != nil {
				s.log.Debug("command rejected", zap.String("command", env.cmd.Name()), zap.Error(err))
				env.reply <- result{state: prev, err: err}
				continue
			}
			s.state = next
			s.notify(env.cmd, prev, next)
			env.reply <- result{state: next}
		case <-s.quit:
			return
		}
	}
}

func (s *Store) notify(cmd Command, prev, next State) {
	s.obsMu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMu.Unlock()
	for _, o := range observers {
		o.Committed(cmd, prev, next)
	}
}

func (s *Store) send(ctx context.Context, cmd Command) (State, error) {
	reply := make(chan result, 1)
	select {
	case s.commands <- envelope{cmd: cmd, reply: reply}:
	case <-s.quit:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res.state, res.err
	case <-s.done:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Dispatch applies cmd and returns the state after it.
func (s *Store) Dispatch(ctx context.Context, cmd Command) (State, error) {
	if cmd == nil {
		return State{}, fmt.Errorf("%w: nil", ErrUnknownCommand)
	}
	return s.send(ctx, cmd)
}

// Snapshot returns the current state, ordered after every earlier Dispatch.
func (s *Store) Snapshot(ctx context.Context) (State, error) {
	return s.send(ctx, nil)
}

// Close stops the store goroutine. Later calls return ErrClosed.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

// Cart operations

func (s *Store) AddToCart(ctx context.Context, food models.FoodItem, quantity int) (State, error) {
	return s.Dispatch(ctx, AddToCart{Food: food, Quantity: quantity, LineID: s.newID()})
}

// AddFoodToCart looks the item up in the catalog and refuses unavailable items.
func (s *Store) AddFoodToCart(ctx context.Context, foodID string, quantity int) (State, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return State{}, err
	}
	food, ok := st.FindFood(foodID)
	if !ok {
		return st, fmt.Errorf("food %s: %w", foodID, ErrFoodNotFound)
	}
	if !food.IsAvailable {
		return st, fmt.Errorf("food %s: %w", foodID, ErrFoodUnavailable)
	}
	return s.AddToCart(ctx, food, quantity)
}

func (s *Store) RemoveFromCart(ctx context.Context, lineID string) (State, error) {
	return s.Dispatch(ctx, RemoveFromCart{LineID: lineID})
}

func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) (State, error) {
	return s.Dispatch(ctx, UpdateQuantity{LineID: lineID, Quantity: quantity})
}

func (s *Store) ClearCart(ctx context.Context) (State, error) {
	return s.Dispatch(ctx, ClearCart{})
}

// Quote prices the cart of st with the same function checkout uses. Pass
// the state a command returned so the lines and the bill agree.
func (s *Store) Quote(st State) pricing.Quote {
	return pricing.Compute(st.Cart, s.pricing)
}

// Wishlist and favorites

func (s *Store) AddToWishlist(ctx context.Context, food models.FoodItem) (State, error) {
	return s.Dispatch(ctx, AddToWishlist{Food: food, EntryID: s.newID(), At: s.now().UTC()})
}

func (s *Store) RemoveFromWishlist(ctx context.Context, foodID string) (State, error) {
	return s.Dispatch(ctx, RemoveFromWishlist{FoodID: foodID})
}

func (s *Store) AddFavorite(ctx context.Context, foodID string) (State, error) {
	return s.Dispatch(ctx, AddFavorite{FoodID: foodID})
}

func (s *Store) RemoveFavorite(ctx context.Context, foodID string) (State, error) {
	return s.Dispatch(ctx, RemoveFavorite{FoodID: foodID})
}

// Orders

func (s *Store) AddOrder(ctx context.Context, order models.Order) (State, error) {
	if order.ID == "" {
		order.ID = s.newID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now().UTC()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	return s.Dispatch(ctx, AddOrder{Order: order})
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, actor models.Actor, note string) (State, error) {
	return s.Dispatch(ctx, UpdateOrderStatus{
		OrderID: orderID,
		Status:  status,
		Actor:   actor,
		At:      s.now().UTC(),
		Note:    note,
	})
}

// PlaceOrder checks out the current cart and returns the new order.
func (s *Store) PlaceOrder(ctx context.Context, address string, payment models.PaymentMethod) (models.Order, error) {
	now := s.now().UTC()
	id := s.newID()
	st, err := s.Dispatch(ctx, PlaceOrder{
		OrderID:           id,
		At:                now,
		EstimatedDelivery: now.Add(s.deliveryWindow),
		Address:           strings.TrimSpace(address),
		Payment:           payment,
		Pricing:           s.pricing,
	})
	if err != nil {
		return models.Order{}, err
	}
	order, ok := st.FindOrder(id)
	if !ok {
		return models.Order{}, fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
	}
	return order, nil
}

// Accounts

// Register creates a customer account and signs it in.
func (s *Store) Register(ctx context.Context, name, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := models.User{
		ID:           s.newID(),
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.Dispatch(ctx, RegisterUser{User: u}); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Login signs in a registered customer. A wrong email or password is
// reported as false, not as an error.
func (s *Store) Login(ctx context.Context, email, password string) (models.User, bool, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	u, ok := st.FindUserByEmail(strings.TrimSpace(email))
	if !ok || !passwordMatches(u.PasswordHash, password) {
		return models.User{}, false, nil
	}
	if _, err := s.Dispatch(ctx, SetSession{User: &u}); err != nil {
		return models.User{}, false, err
	}
	return u.Public(), true, nil
}

func (s *Store) Logout(ctx context.Context) error {
	_, err := s.Dispatch(ctx, SetSession{})
	return err
}

// RegisterAdmin adds a back-office account while slots remain.
func (s *Store) RegisterAdmin(ctx context.Context, name, email, password string) (models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.Admin{}, fmt.Errorf("hash password: %w", err)
	}
	a := models.Admin{
		ID:           s.newID(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		RegisteredAt: s.now().UTC(),
	}
	if _, err := s.Dispatch(ctx, RegisterAdmin{Admin: a, Limit: s.adminLimit}); err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

// AdminLogin signs an admin in as the session user and returns that user.
func (s *Store) AdminLogin(ctx context.Context, email, password string) (models.User, bool, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	a, ok := st.FindAdminByEmail(strings.TrimSpace(email))
	if !ok || !passwordMatches(a.PasswordHash, password) {
		return models.User{}, false, nil
	}
	u := a.AsUser()
	if _, err := s.Dispatch(ctx, SetSession{User: &u}); err != nil {
		return models.User{}, false, err
	}
	return u.Public(), true, nil
}

func passwordMatches(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *Store) UpdateProfile(ctx context.Context, upd UpdateProfile) (State, error) {
	for i := range upd.Addresses {
		if upd.Addresses[i].ID == "" {
			upd.Addresses[i].ID = s.newID()
		}
	}
	return s.Dispatch(ctx, upd)
}

func (s *Store) SetTheme(ctx context.Context, theme models.Theme) (State, error) {
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return State{}, errors.New("theme must be light or dark")
	}
	return s.Dispatch(ctx, SetTheme{Theme: theme})
}

// Catalog

func (s *Store) AddFood(ctx context.Context, food models.FoodItem) (models.FoodItem, error) {
	food.ID = s.newID()
	if food.CreatedAt.IsZero() {
		food.CreatedAt = s.now().UTC()
	}
	if _, err := s.Dispatch(ctx, AddFood{Food: food}); err != nil {
		return models.FoodItem{}, err
	}
	return food, nil
}

func (s *Store) UpdateFood(ctx context.Context, id string, patch models.FoodPatch) (models.FoodItem, error) {
	st, err := s.Dispatch(ctx, UpdateFood{ID: id, Patch: patch})
	if err != nil {
		return models.FoodItem{}, err
	}
	food, _ := st.FindFood(id)
	return food, nil
}

func (s *Store) DeleteFood(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, DeleteFood{ID: id})
	return err
}

func (s *Store) ToggleFoodAvailability(ctx context.Context, id string) (models.FoodItem, error) {
	st, err := s.Dispatch(ctx, ToggleFoodAvailability{ID: id})
	if err != nil {
		return models.FoodItem{}, err
	}
	food, _ := st.FindFood(id)
	return food, nil
}
