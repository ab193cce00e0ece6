package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"note-shelf/internal/utils/sanitize"
)

// MaxTitleLen bounds note titles, counted in characters.
const MaxTitleLen = 200

// Service handles notes business logic. Every method takes the owner id
// explicitly; nothing is read from ambient request state.
type Service struct {
	repo   Repository
	bus    Bus
	counts *Aggregator
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new notes service
func NewService(repo Repository, bus Bus, cache CountsCache, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		counts: NewAggregator(repo, cache, log),
		log:    log,
		now:    time.Now,
	}
}

// List returns the owner's notes, most recently updated first. An unknown
// category filter yields an empty list rather than an error.
func (s *Service) List(ctx context.Context, ownerID string, req ListNotesRequest) ([]*Note, error) {
	if req.Category != "" {
		if _, ok := ParseCategory(req.Category); !ok {
			return []*Note{}, nil
		}
	}

	list, err := s.repo.List(ctx, ownerID, req.Category)
	if err != nil {
		s.log.Error(ErrListNotes.Error(), "error", err, "user_id", ownerID)
		return nil, ErrListNotes
	}
	if list == nil {
		list = []*Note{}
	}
	return list, nil
}

// Create creates a new note
func (s *Service) Create(ctx context.Context, ownerID string, req CreateNoteRequest) (*Note, error) {
	title, err := cleanTitle(req.Title)
	if err != nil {
		return nil, err
	}
	category, err := categoryOrDefault(req.Category)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	note := &Note{
		ID:        ulid.Make().String(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   sanitize.Text(req.Content),
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.log.Error(ErrCreateNote.Error(), "error", err, "user_id", ownerID)
		return nil, ErrCreateNote
	}

	s.counts.Invalidate(ctx, ownerID)
	s.bus.Broadcast(ctx, NoteEvent{Type: EventCreated, Note: note})

	return note, nil
}

// Get returns one of the owner's notes.
func (s *Service) Get(ctx context.Context, ownerID, noteID string) (*Note, error) {
	note, err := s.repo.Get(ctx, ownerID, noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrGetNote.Error(), "error", err, "user_id", ownerID, "note_id", noteID)
		return nil, ErrGetNote
	}
	return note, nil
}

// Update modifies one of the owner's notes. In partial mode only supplied
// fields change and an empty category is rejected. Otherwise title is
// required and omitted or empty category falls back to DefaultCategory,
// omitted content to "".
func (s *Service) Update(ctx context.Context, ownerID, noteID string, req UpdateNoteRequest, partial bool) (*Note, error) {
	patch, err := buildPatch(req, partial)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, ownerID, noteID, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for update", "user_id", ownerID, "note_id", noteID)
			return nil, ErrNoteNotFound
		}
		s.log.Error(ErrUpdateNote.Error(), "error", err, "user_id", ownerID, "note_id", noteID)
		return nil, ErrUpdateNote
	}

	if patch.Category != nil {
		s.counts.Invalidate(ctx, ownerID)
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: updated})

	return updated, nil
}

// Delete deletes a note belonging to the user
func (s *Service) Delete(ctx context.Context, ownerID, noteID string) error {
	if err := s.repo.Delete(ctx, ownerID, noteID); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			s.log.Info("note not found for delete", "user_id", ownerID, "note_id", noteID)
			return ErrNoteNotFound
		}
		s.log.Error(ErrDeleteNote.Error(), "error", err, "user_id", ownerID, "note_id", noteID)
		return ErrDeleteNote
	}

	s.counts.Invalidate(ctx, ownerID)
	s.bus.Broadcast(ctx, NoteEvent{
		Type: EventDeleted,
		Note: &Note{ID: noteID, OwnerID: ownerID},
	})

	return nil
}

// CategoryCounts returns the owner's per-category summary.
func (s *Service) CategoryCounts(ctx context.Context, ownerID string) ([]CategoryCount, error) {
	counts, err := s.counts.CategoryCounts(ctx, ownerID)
	if err != nil {
		s.log.Error(ErrCountNotes.Error(), "error", err, "user_id", ownerID)
		return nil, ErrCountNotes
	}
	return counts, nil
}

func buildPatch(req UpdateNoteRequest, partial bool) (Patch, error) {
	var patch Patch

	switch {
	case req.Title != nil:
		title, err := cleanTitle(*req.Title)
		if err != nil {
			return Patch{}, err
		}
		patch.Title = &title
	case !partial:
		return Patch{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	switch {
	case req.Content != nil:
		content := sanitize.Text(*req.Content)
		patch.Content = &content
	case !partial:
		empty := ""
		patch.Content = &empty
	}

	switch {
	case req.Category != nil && partial && *req.Category == "":
		return Patch{}, fmt.Errorf("%w: category cannot be empty", ErrValidation)
	case req.Category != nil:
		c, err := categoryOrDefault(*req.Category)
		if err != nil {
			return Patch{}, err
		}
		patch.Category = &c
	case !partial:
		c := DefaultCategory
		patch.Category = &c
	}

	return patch, nil
}

func cleanTitle(raw string) (string, error) {
	title := sanitize.Line(raw)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrValidation, MaxTitleLen)
	}
	return title, nil
}

func categoryOrDefault(raw string) (Category, error) {
	if raw == "" {
		return DefaultCategory, nil
	}
	c, ok := ParseCategory(raw)
	if !ok {
		return "", fmt.Errorf("%w: category is not a known category", ErrValidation)
	}
	return c, nil
}
