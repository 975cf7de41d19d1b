package session

import "sync"

// TokenStore is the client-side home of the token pair, the equivalent of
// the browser's local storage. Implementations must be safe for concurrent
// use; two processes sharing a store do not coordinate refreshes.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string)
	SetPair(accessToken, refreshToken string)
	Clear()
}

type MemoryStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *MemoryStore) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
}

func (s *MemoryStore) SetPair(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = accessToken
	s.refresh = refreshToken
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}
