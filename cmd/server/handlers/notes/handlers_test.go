package notes

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"note-shelf/cmd/server/middlewares"
	"note-shelf/cmd/server/testutil"
	"note-shelf/internal/services/access"
	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
)

// MockNoteService mocks the owner-parameterised notes service.
type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) List(ctx context.Context, ownerID string, req notes.ListNotesRequest) ([]*notes.Note, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notes.Note), args.Error(1)
}

func (m *MockNoteService) Create(ctx context.Context, ownerID string, req notes.CreateNoteRequest) (*notes.Note, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notes.Note), args.Error(1)
}

func (m *MockNoteService) Get(ctx context.Context, ownerID, noteID string) (*notes.Note, error) {
	args := m.Called(ctx, ownerID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notes.Note), args.Error(1)
}

func (m *MockNoteService) Update(ctx context.Context, ownerID, noteID string, req notes.UpdateNoteRequest, partial bool) (*notes.Note, error) {
	args := m.Called(ctx, ownerID, noteID, req, partial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notes.Note), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, ownerID, noteID string) error {
	return m.Called(ctx, ownerID, noteID).Error(0)
}

func (m *MockNoteService) CategoryCounts(ctx context.Context, ownerID string) ([]notes.CategoryCount, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notes.CategoryCount), args.Error(1)
}

type notesTestSetup struct {
	svc   *MockNoteService
	app   *fiber.App
	owner auth.Identity
	token string
}

func setupNotesTest(t *testing.T) *notesTestSetup {
	t.Helper()

	svc := &MockNoteService{}
	app := testutil.CreateTestApp(t)
	h := NewHandlers(access.New(svc), testutil.CreateTestValidator(t))

	grp := app.Group("/api/v1/notes", middlewares.JWT([]byte(testutil.JWTSecret)))
	grp.Get("/", h.List)
	grp.Post("/", h.Create)
	grp.Get("/categories", h.Categories)
	grp.Get("/:id", h.Get)
	grp.Put("/:id", h.Replace)
	grp.Patch("/:id", h.Patch)
	grp.Delete("/:id", h.Delete)

	owner := auth.Identity{UserID: ulid.Make().String(), Email: "owner@example.com"}
	return &notesTestSetup{
		svc:   svc,
		app:   app,
		owner: owner,
		token: testutil.CreateTestJWT(t, owner, time.Hour),
	}
}

func (s *notesTestSetup) do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	resp, err := s.app.Test(testutil.CreateAuthenticatedRequest(method, url, body, s.token), -1)
	require.NoError(t, err)
	return resp
}

func sampleNote(owner string) *notes.Note {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &notes.Note{
		ID:        ulid.Make().String(),
		OwnerID:   owner,
		Title:     "Groceries",
		Content:   "milk",
		Category:  notes.Personal,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestNotesRequireBearer(t *testing.T) {
	setup := setupNotesTest(t)

	resp, err := setup.app.Test(testutil.CreateJSONRequest("GET", "/api/v1/notes", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	setup.svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateNote(t *testing.T) {
	t.Run("owner comes from the token", func(t *testing.T) {
		setup := setupNotesTest(t)
		note := sampleNote(setup.owner.UserID)
		req := notes.CreateNoteRequest{Title: "Groceries", Content: "milk", Category: "Personal"}
		setup.svc.On("Create", mock.Anything, setup.owner.UserID, req).Return(note, nil).Once()

		resp := setup.do(t, "POST", "/api/v1/notes", map[string]string{
			"title":    "Groceries",
			"content":  "milk",
			"category": "Personal",
			"owner":    "someone-else",
		})
		require.Equal(t, 201, resp.StatusCode)

		got := testutil.DecodeJSON[map[string]any](t, resp)
		assert.Equal(t, note.ID, got["id"])
		assert.Equal(t, "Personal", got["category"])
		assert.NotContains(t, got, "user_id")
		assert.NotContains(t, got, "OwnerID")
		setup.svc.AssertExpectations(t)
	})

	t.Run("missing title", func(t *testing.T) {
		setup := setupNotesTest(t)

		resp := setup.do(t, "POST", "/api/v1/notes", map[string]string{"content": "x"})
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "title is required", testutil.DecodeJSON[map[string]string](t, resp)["error"])
		setup.svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		setup := setupNotesTest(t)

		resp := setup.do(t, "POST", "/api/v1/notes", map[string]string{"title": "x", "category": "Work"})
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, "category is not a known category", testutil.DecodeJSON[map[string]string](t, resp)["error"])
	})

	t.Run("service validation error", func(t *testing.T) {
		setup := setupNotesTest(t)
		setup.svc.On("Create", mock.Anything, setup.owner.UserID, mock.Anything).
			Return(nil, fmt.Errorf("%w: title is required", notes.ErrValidation)).Once()

		resp := setup.do(t, "POST", "/api/v1/notes", map[string]string{"title": "<b></b>"})
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestListNotes(t *testing.T) {
	setup := setupNotesTest(t)
	list := []*notes.Note{sampleNote(setup.owner.UserID)}
	setup.svc.On("List", mock.Anything, setup.owner.UserID, notes.ListNotesRequest{Category: "School"}).Return(list, nil).Once()
	setup.svc.On("List", mock.Anything, setup.owner.UserID, notes.ListNotesRequest{}).Return([]*notes.Note{}, nil).Once()

	resp := setup.do(t, "GET", "/api/v1/notes?category=School", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Len(t, testutil.DecodeJSON[[]map[string]any](t, resp), 1)

	resp = setup.do(t, "GET", "/api/v1/notes", nil)
	require.Equal(t, 200, resp.StatusCode)
	got := testutil.DecodeJSON[[]map[string]any](t, resp)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	setup.svc.AssertExpectations(t)
}

func TestGetNote(t *testing.T) {
	setup := setupNotesTest(t)
	note := sampleNote(setup.owner.UserID)
	foreign := ulid.Make().String()
	setup.svc.On("Get", mock.Anything, setup.owner.UserID, note.ID).Return(note, nil).Once()
	setup.svc.On("Get", mock.Anything, setup.owner.UserID, foreign).Return(nil, notes.ErrNoteNotFound).Once()

	resp := setup.do(t, "GET", "/api/v1/notes/"+note.ID, nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp = setup.do(t, "GET", "/api/v1/notes/"+foreign, nil)
	assert.Equal(t, 404, resp.StatusCode)

	// malformed ids never reach the service and look like missing notes
	resp = setup.do(t, "GET", "/api/v1/notes/not-an-id", nil)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "note not found", testutil.DecodeJSON[map[string]string](t, resp)["error"])

	setup.svc.AssertExpectations(t)
}

func TestUpdateNote(t *testing.T) {
	title := "New title"
	content := "body"

	t.Run("PUT is a full update", func(t *testing.T) {
		setup := setupNotesTest(t)
		note := sampleNote(setup.owner.UserID)
		setup.svc.On("Update", mock.Anything, setup.owner.UserID, note.ID,
			notes.UpdateNoteRequest{Title: &title}, false).Return(note, nil).Once()

		resp := setup.do(t, "PUT", "/api/v1/notes/"+note.ID, map[string]string{"title": title})
		assert.Equal(t, 200, resp.StatusCode)
		setup.svc.AssertExpectations(t)
	})

	t.Run("PATCH is partial", func(t *testing.T) {
		setup := setupNotesTest(t)
		note := sampleNote(setup.owner.UserID)
		setup.svc.On("Update", mock.Anything, setup.owner.UserID, note.ID,
			notes.UpdateNoteRequest{Content: &content}, true).Return(note, nil).Once()

		resp := setup.do(t, "PATCH", "/api/v1/notes/"+note.ID, map[string]string{"content": content})
		assert.Equal(t, 200, resp.StatusCode)
		setup.svc.AssertExpectations(t)
	})

	t.Run("PATCH rejects an empty title", func(t *testing.T) {
		setup := setupNotesTest(t)
		resp := setup.do(t, "PATCH", "/api/v1/notes/"+ulid.Make().String(), map[string]string{"title": ""})
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("foreign note", func(t *testing.T) {
		setup := setupNotesTest(t)
		id := ulid.Make().String()
		setup.svc.On("Update", mock.Anything, setup.owner.UserID, id, mock.Anything, true).
			Return(nil, notes.ErrNoteNotFound).Once()

		resp := setup.do(t, "PATCH", "/api/v1/notes/"+id, map[string]string{"title": title})
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("store failure is hidden", func(t *testing.T) {
		setup := setupNotesTest(t)
		id := ulid.Make().String()
		setup.svc.On("Update", mock.Anything, setup.owner.UserID, id, mock.Anything, false).
			Return(nil, notes.ErrUpdateNote).Once()

		resp := setup.do(t, "PUT", "/api/v1/notes/"+id, map[string]string{"title": title})
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Internal Server Error", testutil.DecodeJSON[map[string]string](t, resp)["error"])
	})
}

func TestDeleteNote(t *testing.T) {
	setup := setupNotesTest(t)
	id := ulid.Make().String()
	setup.svc.On("Delete", mock.Anything, setup.owner.UserID, id).Return(nil).Once()
	setup.svc.On("Delete", mock.Anything, setup.owner.UserID, id).Return(notes.ErrNoteNotFound).Once()

	resp := setup.do(t, "DELETE", "/api/v1/notes/"+id, nil)
	assert.Equal(t, 204, resp.StatusCode)

	resp = setup.do(t, "DELETE", "/api/v1/notes/"+id, nil)
	assert.Equal(t, 404, resp.StatusCode)

	setup.svc.AssertExpectations(t)
}

func TestCategories(t *testing.T) {
	setup := setupNotesTest(t)
	counts := notes.BuildCounts(map[notes.Category]int64{notes.School: 2})
	setup.svc.On("CategoryCounts", mock.Anything, setup.owner.UserID).Return(counts, nil).Once()

	resp := setup.do(t, "GET", "/api/v1/notes/categories", nil)
	require.Equal(t, 200, resp.StatusCode)

	got := testutil.DecodeJSON[[]notes.CategoryCount](t, resp)
	assert.Equal(t, counts, got)
	setup.svc.AssertExpectations(t)
}
