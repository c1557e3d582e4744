package storage

import "sync"

// MemoryStore is a Provider and SessionStore that lives for the process.
type MemoryStore struct {
	mu       sync.Mutex
	settings map[string]string
	session  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		settings: map[string]string{},
		session:  map[string]string{},
	}
}

func (m *MemoryStore) Init() error  { return nil }
func (m *MemoryStore) Load() error  { return nil }
func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) GetSetting(key string) (string, error) {
	return m.get(m.settings, key)
}

func (m *MemoryStore) SetSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *MemoryStore) DeleteSetting(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings, key)
	return nil
}

func (m *MemoryStore) GetConfigPath() string {
	return ":memory:"
}

func (m *MemoryStore) GetSession(key string) (string, error) {
	return m.get(m.session, key)
}

func (m *MemoryStore) SetSession(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session[key] = value
	return nil
}

func (m *MemoryStore) get(src map[string]string, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := src[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}
