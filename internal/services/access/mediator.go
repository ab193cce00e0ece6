// Package access binds note operations to the caller's resolved identity.
//
// Handlers never pass an owner id themselves: they ask the Mediator for a
// Scope and every call made through it is filtered to that owner. Malformed
// note ids are answered with notes.ErrNoteNotFound before reaching the store,
// so they look the same as missing or foreign notes.
package access

import (
	"context"

	"github.com/oklog/ulid/v2"

	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
)

// NoteService is the owner-parameterised note API the mediator wraps.
type NoteService interface {
	List(ctx context.Context, ownerID string, req notes.ListNotesRequest) ([]*notes.Note, error)
	Create(ctx context.Context, ownerID string, req notes.CreateNoteRequest) (*notes.Note, error)
	Get(ctx context.Context, ownerID, noteID string) (*notes.Note, error)
	Update(ctx context.Context, ownerID, noteID string, req notes.UpdateNoteRequest, partial bool) (*notes.Note, error)
	Delete(ctx context.Context, ownerID, noteID string) error
	CategoryCounts(ctx context.Context, ownerID string) ([]notes.CategoryCount, error)
}

// Mediator hands out identity-bound scopes.
type Mediator struct {
	notes NoteService
}

// New returns a Mediator over svc.
func New(svc NoteService) *Mediator {
	return &Mediator{notes: svc}
}

// For returns the scope of id. A zero identity is rejected.
func (m *Mediator) For(id auth.Identity) (*Scope, error) {
	if id.IsZero() {
		return nil, auth.ErrUnauthenticated
	}
	return &Scope{owner: id.UserID, notes: m.notes}, nil
}

// Scope is a set of note operations fixed to one owner.
type Scope struct {
	owner string
	notes NoteService
}

// Owner is the user id every operation is filtered by.
func (s *Scope) Owner() string {
	return s.owner
}

func (s *Scope) List(ctx context.Context, req notes.ListNotesRequest) ([]*notes.Note, error) {
	return s.notes.List(ctx, s.owner, req)
}

func (s *Scope) Create(ctx context.Context, req notes.CreateNoteRequest) (*notes.Note, error) {
	return s.notes.Create(ctx, s.owner, req)
}

func (s *Scope) Get(ctx context.Context, noteID string) (*notes.Note, error) {
	if !validID(noteID) {
		return nil, notes.ErrNoteNotFound
	}
	return s.notes.Get(ctx, s.owner, noteID)
}

func (s *Scope) Update(ctx context.Context, noteID string, req notes.UpdateNoteRequest, partial bool) (*notes.Note, error) {
	if !validID(noteID) {
		return nil, notes.ErrNoteNotFound
	}
	return s.notes.Update(ctx, s.owner, noteID, req, partial)
}

func (s *Scope) Delete(ctx context.Context, noteID string) error {
	if !validID(noteID) {
		return notes.ErrNoteNotFound
	}
	return s.notes.Delete(ctx, s.owner, noteID)
}

func (s *Scope) CategoryCounts(ctx context.Context) ([]notes.CategoryCount, error) {
	return s.notes.CategoryCounts(ctx, s.owner)
}

func validID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
