package handlerutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", notes.ErrNoteNotFound, 404, "note not found"},
		{"validation keeps detail", fmt.Errorf("%w: title is required", notes.ErrValidation), 400, "validation failed: title is required"},
		{"unauthenticated", auth.ErrUnauthenticated, 401, "Unauthorized"},
		{"store failure is hidden", fmt.Errorf("%w: boom", notes.ErrUpdateNote), 500, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HandleServiceError(tt.err, "Test", "user", "note")

			var e httperr.E
			assert.True(t, errors.As(err, &e))
			assert.Equal(t, tt.wantStatus, e.Status)
			assert.Equal(t, tt.wantMsg, e.Message)
		})
	}
}
