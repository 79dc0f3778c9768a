package store

import "errors"

var (
	ErrClosed         = errors.New("store is closed")
	ErrUnknownCommand = errors.New("unknown command")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoSession       = errors.New("no user is signed in")
	ErrFoodNotFound    = errors.New("food item not found")
	ErrFoodUnavailable = errors.New("food item is not available")
	ErrOrderNotFound   = errors.New("order not found")

	// Registration failures surface as messages, not crashes.
	ErrEmailTaken        = errors.New("email already registered")
	ErrAdminLimitReached = errors.New("maximum admin limit reached")
	ErrAdminExists       = errors.New("admin with this email already exists")
)

// IsConflict reports whether err is a registration clash the caller can show to the user.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrAdminLimitReached) ||
		errors.Is(err, ErrAdminExists)
}
