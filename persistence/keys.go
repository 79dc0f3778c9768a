package persistence

// DefaultPrefix namespaces every key the bridge writes.
const DefaultPrefix = "storefront:"

// One key per state slice. Each value is the slice's full JSON encoding.
const (
	KeySession  = "session"
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyOrders   = "orders"
	KeyTheme    = "theme"
	KeyFoods    = "foods"
	KeyUsers    = "users"
	KeyAdmins   = "admins"
)

// Keys lists every slice key in load order.
func Keys() []string {
	return []string{KeySession, KeyCart, KeyWishlist, KeyOrders, KeyTheme, KeyFoods, KeyUsers, KeyAdmins}
}
