package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
)

// memStore backs the router tests with maps instead of a database.
type memStore struct {
	mu     sync.Mutex
	users  map[string]*auth.User
	tokens map[string]*auth.RefreshToken
	notes  map[string]*notes.Note
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*auth.User{},
		tokens: map[string]*auth.RefreshToken{},
		notes:  map[string]*notes.Note{},
	}
}

func (m *memStore) stores() stores {
	return stores{
		users:   memUsers{m},
		tokens:  memTokens{m},
		notes:   memNotes{m},
		cache:   notes.NopCache{},
		pingers: nil,
	}
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return auth.ErrDuplicate
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m memUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, auth.ErrUserNotFound
}

type memTokens struct{ *memStore }

func (m memTokens) Create(_ context.Context, t *auth.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tokens[t.ID] = &cp
	return nil
}

func (m memTokens) FindActive(_ context.Context, hash string, now time.Time) (*auth.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash && t.RevokedAt == nil && t.ExpiresAt.After(now) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, auth.ErrRefreshTokenNotFound
}

func (m memTokens) Revoke(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return auth.ErrRefreshTokenNotFound
	}
	t.RevokedAt = &at
	return nil
}

type memNotes struct{ *memStore }

func (m memNotes) Create(_ context.Context, n *notes.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m memNotes) List(_ context.Context, ownerID, category string) ([]*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*notes.Note{}
	for _, n := range m.notes {
		if n.OwnerID == ownerID && (category == "" || string(n.Category) == category) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m memNotes) Get(_ context.Context, ownerID, noteID string) (*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.OwnerID != ownerID {
		return nil, notes.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (m memNotes) Update(_ context.Context, ownerID, noteID string, p notes.Patch, at time.Time) (*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.OwnerID != ownerID {
		return nil, notes.ErrNoteNotFound
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	n.UpdatedAt = at
	cp := *n
	return &cp, nil
}

func (m memNotes) Delete(_ context.Context, ownerID, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok || n.OwnerID != ownerID {
		return notes.ErrNoteNotFound
	}
	delete(m.notes, noteID)
	return nil
}

func (m memNotes) CountByCategory(_ context.Context, ownerID string) (map[notes.Category]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[notes.Category]int64{}
	for _, n := range m.notes {
		if n.OwnerID == ownerID {
			out[n.Category]++
		}
	}
	return out, nil
}
