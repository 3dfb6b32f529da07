package reminder

import (
	"fmt"

	"github.com/brk3/habitflow/internal/logger"
	"github.com/brk3/habitflow/internal/storage"
)

const PermissionKey = "habitflow_notification_permission"

type Permission string

const (
	Undetermined Permission = "undetermined"
	Granted      Permission = "granted"
	Denied       Permission = "denied"
)

func ParsePermission(s string) (Permission, error) {
	switch p := Permission(s); p {
	case Undetermined, Granted, Denied:
		return p, nil
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

// PermissionStore remembers the user's answer to the notification prompt.
type PermissionStore struct {
	kv storage.KV
}

func NewPermissionStore(kv storage.KV) *PermissionStore {
	return &PermissionStore{kv: kv}
}

// Load returns Undetermined when nothing usable is stored.
func (s *PermissionStore) Load() Permission {
	raw, found, err := s.kv.Get(PermissionKey)
	if err != nil {
		logger.Warn("Failed to read notification permission", "error", err)
		return Undetermined
	}
	if !found {
		return Undetermined
	}
	p, err := ParsePermission(string(raw))
	if err != nil {
		logger.Warn("Ignoring stored notification permission", "error", err)
		return Undetermined
	}
	return p
}

func (s *PermissionStore) Save(p Permission) error {
	if _, err := ParsePermission(string(p)); err != nil {
		return err
	}
	if err := s.kv.Put(PermissionKey, []byte(p)); err != nil {
		return fmt.Errorf("save notification permission: %w", err)
	}
	return nil
}
