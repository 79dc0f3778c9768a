// Package lifecycle moves placed orders through their statuses on a timer
// until they are delivered or an admin takes over.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"food-storefront/models"
	"food-storefront/statemachine"
	"food-storefront/store"
)

// Step reaches Status After the order was placed.
type Step struct {
	Status models.OrderStatus `yaml:"status" validate:"required"`
	After  time.Duration      `yaml:"after" validate:"gt=0"`
}

// DefaultSchedule confirms after 5s, starts preparing after 10s, hands the
// order to the rider after 20s and marks it delivered after 30s.
func DefaultSchedule() []Step {
	return []Step{
		{Status: models.StatusConfirmed, After: 5 * time.Second},
		{Status: models.StatusPreparing, After: 10 * time.Second},
		{Status: models.StatusOutForDelivery, After: 20 * time.Second},
		{Status: models.StatusDelivered, After: 30 * time.Second},
	}
}

// ValidateSchedule checks that steps walk the lifecycle one status at a time
// from the first status after pending, with strictly increasing delays. A
// schedule may stop early; orders then wait for an admin from that point. A
// gap would leave orders stuck, since automatic steps only advance by one.
func ValidateSchedule(steps []Step) error {
	prev := statemachine.Lifecycle()[0]
	var prevAfter time.Duration
	for i, step := range steps {
		want, ok := statemachine.Next(prev)
		if !ok {
			return fmt.Errorf("lifecycle step %d: %s is past the final status", i, step.Status)
		}
		if step.Status != want {
			return fmt.Errorf("lifecycle step %d: want %s after %s, got %s", i, want, prev, step.Status)
		}
		if step.After <= prevAfter {
			return fmt.Errorf("lifecycle step %d: %s must come later than %s", i, step.After, prevAfter)
		}
		prev, prevAfter = step.Status, step.After
	}
	return nil
}

// StatusUpdater is the part of the store the driver writes through.
type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, actor models.Actor, note string) (store.State, error)
}

type Option func(*Driver)

func WithSchedule(steps []Step) Option {
	return func(d *Driver) { d.schedule = steps }
}

func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) {
		if log != nil {
			d.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// Driver keeps at most one pending timer per order: the one for its next
// status. Each automatic step schedules the following one when it commits.
type Driver struct {
	target   StatusUpdater
	schedule []Step
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	timers   map[string]*pendingStep
	stopped  bool
	inFlight sync.WaitGroup
}

// pendingStep exists before its timer starts, so a fire can always tell
// whether it is still the order's current step.
type pendingStep struct {
	timer *time.Timer
}

func New(target StatusUpdater, opts ...Option) *Driver {
	d := &Driver{
		target:   target,
		schedule: DefaultSchedule(),
		log:      zap.NewNop(),
		now:      time.Now,
		timers:   make(map[string]*pendingStep),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule returns the configured automatic steps.
func (d *Driver) Schedule() []Step {
	return append([]Step(nil), d.schedule...)
}

// Committed implements store.Observer.
func (d *Driver) Committed(cmd store.Command, _, next store.State) {
	switch c := cmd.(type) {
	case store.PlaceOrder:
		if o, ok := next.FindOrder(c.OrderID); ok {
			d.scheduleNext(o)
		}
	case store.AddOrder:
		d.scheduleNext(c.Order)
	case store.UpdateOrderStatus:
		o, ok := next.FindOrder(c.OrderID)
		if !ok {
			return
		}
		if c.Actor != models.ActorSystem {
			// a manual move takes the order off the timer for good
			d.Cancel(c.OrderID)
			d.log.Info("automatic progression stopped",
				zap.String("order_id", c.OrderID),
				zap.String("status", string(o.Status)),
				zap.String("actor", string(c.Actor)))
			return
		}
		d.scheduleNext(o)
	}
}

// Resume picks up every unfinished order after a restart. Steps already
// overdue fire immediately, one after another.
func (d *Driver) Resume(orders []models.Order) {
	n := 0
	for _, o := range orders {
		if statemachine.IsTerminal(o.Status) || manuallyMoved(o) {
			continue
		}
		if d.scheduleNext(o) {
			n++
		}
	}
	d.log.Info("order lifecycle resumed", zap.Int("orders", n))
}

func manuallyMoved(o models.Order) bool {
	for _, h := range o.History {
		if h.By == models.ActorAdmin {
			return true
		}
	}
	return false
}

func (d *Driver) stepFor(status models.OrderStatus) (Step, bool) {
	for _, s := range d.schedule {
		if s.Status == status {
			return s, true
		}
	}
	return Step{}, false
}

func (d *Driver) scheduleNext(o models.Order) bool {
	next, ok := statemachine.Next(o.Status)
	if !ok {
		d.Cancel(o.ID)
		return false
	}
	step, ok := d.stepFor(next)
	if !ok {
		d.Cancel(o.ID)
		return false
	}
	delay := o.CreatedAt.Add(step.After).Sub(d.now())
	if delay < 0 {
		delay = 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	if p, ok := d.timers[o.ID]; ok {
		p.timer.Stop()
	}
	id, status := o.ID, next
	p := &pendingStep{}
	p.timer = time.AfterFunc(delay, func() { d.fire(id, status, p) })
	d.timers[id] = p
	d.log.Debug("status change scheduled",
		zap.String("order_id", id),
		zap.String("status", string(status)),
		zap.Duration("in", delay))
	return true
}

func (d *Driver) fire(orderID string, status models.OrderStatus, self *pendingStep) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timers[orderID] == self {
		delete(d.timers, orderID)
	}
	d.inFlight.Add(1)
	d.mu.Unlock()
	defer d.inFlight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := d.target.UpdateOrderStatus(ctx, orderID, status, models.ActorSystem, "scheduled")
	switch {
	case errors.Is(err, store.ErrClosed):
	case errors.Is(err, statemachine.ErrInvalidTransition):
		d.log.Debug("scheduled change superseded", zap.String("order_id", orderID), zap.Error(err))
	case err != nil:
		d.log.Warn("scheduled status change failed", zap.String("order_id", orderID), zap.Error(err))
	default:
		if _, ok := st.FindOrder(orderID); !ok {
			d.log.Debug("scheduled order no longer exists", zap.String("order_id", orderID))
		}
	}
}

// Cancel drops the pending timer for orderID, if any.
func (d *Driver) Cancel(orderID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.timers[orderID]; ok {
		p.timer.Stop()
		delete(d.timers, orderID)
	}
}

// Pending reports whether orderID still has an automatic step ahead of it.
func (d *Driver) Pending(orderID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[orderID]
	return ok
}

// Stop cancels every pending timer and waits for in-flight changes to finish.
// The driver schedules nothing after Stop.
func (d *Driver) Stop() {
	d.mu.Lock()
	d.stopped = true
	for id, p := range d.timers {
		p.timer.Stop()
		delete(d.timers, id)
	}
	d.mu.Unlock()
	d.inFlight.Wait()
}
