package storage

import "github.com/brk3/habitflow/internal/logger"

// Reopening is a KV that opens its back end for every call and closes it
// again before returning. Back ends that lock their file stay usable by
// other processes between calls.
type Reopening struct {
	open func() (KV, error)
}

func NewReopening(open func() (KV, error)) *Reopening {
	return &Reopening{open: open}
}

func (r *Reopening) Get(key string) ([]byte, bool, error) {
	kv, err := r.open()
	if err != nil {
		return nil, false, err
	}
	defer closeKV(kv)
	return kv.Get(key)
}

func (r *Reopening) Put(key string, val []byte) error {
	kv, err := r.open()
	if err != nil {
		return err
	}
	defer closeKV(kv)
	return kv.Put(key, val)
}

// Close is a no-op; nothing stays open between calls.
func (r *Reopening) Close() error {
	return nil
}

func closeKV(kv KV) {
	if err := kv.Close(); err != nil {
		logger.Warn("Failed to close store", "error", err)
	}
}

var _ KV = (*Reopening)(nil)
