package session

// Keys used by both shells. Values are stored as plain strings with no expiry.
const (
	KeyToken    = "token"
	KeyUsername = "username"
)

// Store is the persistent key-value store shared by every interceptor and
// guard of one app. A missing key reads as absent.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}
