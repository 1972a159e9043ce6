package settings

// Store persists small string values keyed by name.
//
// Implementations must be safe for concurrent use. Deleting a key that does
// not exist is not an error.
type Store interface {
	// Get returns the stored value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Removing an absent key is a no-op.
	Delete(key string) error

	// Keys returns all stored keys in sorted order.
	Keys() []string
}
