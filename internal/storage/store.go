package storage

// KV is a flat key-value store. Each back end keeps every key in a single
// namespace.
type KV interface {
	Get(key string) (val []byte, found bool, err error)
	Put(key string, val []byte) error
	Close() error
}
