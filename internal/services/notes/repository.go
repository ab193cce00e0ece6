package notes

import (
	"context"
	"time"
)

// Repository is the owner-scoped note store. Every method applies ownerID
// inside the lookup itself, so a note owned by someone else behaves exactly
// like a missing one and yields ErrNoteNotFound.
type Repository interface {
	Create(ctx context.Context, n *Note) error
	// List returns the owner's notes by updated_at descending. A non-empty
	// category restricts the result to that exact value.
	List(ctx context.Context, ownerID string, category string) ([]*Note, error)
	Get(ctx context.Context, ownerID, noteID string) (*Note, error)
	// Update writes the non-nil fields of patch plus updated_at and returns
	// the stored note.
	Update(ctx context.Context, ownerID, noteID string, patch Patch, at time.Time) (*Note, error)
	Delete(ctx context.Context, ownerID, noteID string) error
	// CountByCategory returns how many notes the owner has per stored
	// category. Categories without notes may be absent.
	CountByCategory(ctx context.Context, ownerID string) (map[Category]int64, error)
}

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}
