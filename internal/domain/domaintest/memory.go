// Package domaintest provides in-memory implementations of the domain
// repositories for use in tests.
package domaintest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
)

// MemoryStore keeps users and their portfolio documents in maps. It behaves
// like the Postgres repository: unique emails, NULL portfolio read as {}.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]user.User
	byEmail    map[string]uuid.UUID
	portfolios map[uuid.UUID][]byte

	// Err, when set, is returned by every call.
	Err error
}

var (
	_ user.Repository      = (*MemoryStore)(nil)
	_ portfolio.Repository = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      map[uuid.UUID]user.User{},
		byEmail:    map[string]uuid.UUID{},
		portfolios: map[uuid.UUID][]byte{},
	}
}

func (s *MemoryStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	id, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

// Delete removes a user, as an operator would directly in the database.
func (s *MemoryStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		delete(s.byEmail, u.Email)
	}
	delete(s.users, id)
	delete(s.portfolios, id)
}

func (s *MemoryStore) GetByUserID(_ context.Context, userID uuid.UUID) (portfolio.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, ok := s.users[userID]; !ok {
		return nil, user.ErrUserNotFound
	}
	return decode(s.portfolios[userID])
}

func (s *MemoryStore) Exists(_ context.Context, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.users[userID]
	return ok, nil
}

func (s *MemoryStore) Save(_ context.Context, userID uuid.UUID, doc portfolio.Document) (portfolio.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal portfolio", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, ok := s.users[userID]; !ok {
		return nil, user.ErrUserNotFound
	}
	s.portfolios[userID] = raw
	return decode(raw)
}

func decode(raw []byte) (portfolio.Document, error) {
	doc := portfolio.Document{}
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperror.NewInternal("failed to unmarshal portfolio", err)
	}
	return doc, nil
}

// MemoryCache is a portfolio.Cache backed by a map.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]portfolio.Document
	Hits    int
}

var _ portfolio.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[uuid.UUID]portfolio.Document{}}
}

func (c *MemoryCache) Get(_ context.Context, userID uuid.UUID) (portfolio.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.entries[userID]
	if ok {
		c.Hits++
	}
	return doc, ok
}

func (c *MemoryCache) Set(_ context.Context, userID uuid.UUID, doc portfolio.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = doc
}

func (c *MemoryCache) Invalidate(_ context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// RecordingPublisher remembers every event it is asked to publish.
type RecordingPublisher struct {
	mu               sync.Mutex
	UserRegistered   []uuid.UUID
	PortfolioUpdated []uuid.UUID
}

func (p *RecordingPublisher) PublishUserRegistered(_ context.Context, userID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.UserRegistered = append(p.UserRegistered, userID)
	return nil
}

func (p *RecordingPublisher) PublishPortfolioUpdated(_ context.Context, userID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PortfolioUpdated = append(p.PortfolioUpdated, userID)
	return nil
}

func (p *RecordingPublisher) Registered() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.UserRegistered...)
}

func (p *RecordingPublisher) Updated() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.PortfolioUpdated...)
}
