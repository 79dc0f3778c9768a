package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"food-storefront/models"
)

// ErrInvalidTransition is wrapped by every rejected status change
var ErrInvalidTransition = errors.New("invalid transition")

// lifecycle is the authoritative order sequence; index is the rank of a status
var lifecycle = []models.OrderStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusPreparing,
	models.StatusOutForDelivery,
	models.StatusDelivered,
}

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.Actor       `json:"actor"`
}

// rank looks up a status position in O(1)
var rank = func() map[models.OrderStatus]int {
	m := make(map[models.OrderStatus]int, len(lifecycle))
	for i, s := range lifecycle {
		m[s] = i
	}
	return m
}()

// Lifecycle returns the ordered status sequence
func Lifecycle() []models.OrderStatus {
	return append([]models.OrderStatus(nil), lifecycle...)
}

// Rank returns the position of status in the lifecycle, or -1 if unknown
func Rank(status models.OrderStatus) int {
	if r, ok := rank[status]; ok {
		return r
	}
	return -1
}

// IsValid reports whether status belongs to the lifecycle
func IsValid(status models.OrderStatus) bool {
	return Rank(status) >= 0
}

// IsTerminal reports whether no further transition exists from status
func IsTerminal(status models.OrderStatus) bool {
	return Rank(status) == len(lifecycle)-1
}

// Next returns the status following status, if any
func Next(status models.OrderStatus) (models.OrderStatus, bool) {
	r := Rank(status)
	if r < 0 || r+1 >= len(lifecycle) {
		return "", false
	}
	return lifecycle[r+1], true
}

// ValidTransitionsFrom returns all valid next states from a given state for actor.
// The system only steps forward by one; admins may skip ahead but never go back.
func ValidTransitionsFrom(status models.OrderStatus, actor models.Actor) []models.OrderStatus {
	r := Rank(status)
	if r < 0 {
		return nil
	}
	var nexts []models.OrderStatus
	switch actor {
	case models.ActorAdmin:
		nexts = append(nexts, lifecycle[r+1:]...)
	case models.ActorSystem:
		if next, ok := Next(status); ok {
			nexts = append(nexts, next)
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor models.Actor) error {
	if !IsValid(to) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	for _, s := range ValidTransitionsFrom(from, actor) {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, actor, from, describeValidFrom(from, actor))
}

func describeValidFrom(status models.OrderStatus, actor models.Actor) string {
	nexts := ValidTransitionsFrom(status, actor)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	var all []Transition
	for _, from := range lifecycle {
		for _, actor := range []models.Actor{models.ActorSystem, models.ActorAdmin} {
			for _, to := range ValidTransitionsFrom(from, actor) {
				all = append(all, Transition{From: from, To: to, Actor: actor})
			}
		}
	}
	return all
}
