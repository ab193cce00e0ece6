package notes

import "errors"

// ErrNoteNotFound is returned when the note does not exist or belongs to
// another owner. Callers cannot tell the two apart.
var ErrNoteNotFound = errors.New("note not found")

// ErrValidation wraps rejected note input.
var ErrValidation = errors.New("validation failed")

// ErrCreateNote is returned when note creation fails.
var ErrCreateNote = errors.New("failed to create note")

// ErrUpdateNote is returned when note update fails.
var ErrUpdateNote = errors.New("failed to update note")

// ErrDeleteNote is returned when note deletion fails.
var ErrDeleteNote = errors.New("failed to delete note")

// ErrGetNote is returned when a note lookup fails.
var ErrGetNote = errors.New("failed to get note")

// ErrListNotes is returned when notes listing fails.
var ErrListNotes = errors.New("failed to list notes")

// ErrCountNotes is returned when category counts cannot be computed.
var ErrCountNotes = errors.New("failed to count notes")
