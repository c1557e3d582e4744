package storage

import "errors"

var (
	// ErrNotFound is returned when a setting or session key has no value.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by Load when the backing store does not exist yet.
	ErrNotInitialized = errors.New("storage not initialized, run 'taskdash init' first")
)

// Provider is a string-keyed settings store. Values are opaque blobs.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error

	// Utils
	GetConfigPath() string
}

// SessionStore keeps per-session state such as live filters across restarts.
type SessionStore interface {
	GetSession(key string) (string, error)
	SetSession(key, value string) error
}
