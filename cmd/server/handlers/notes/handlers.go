package notes

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"note-shelf/cmd/server/handlers/handlerutil"
	"note-shelf/cmd/server/handlers/httperr"
	"note-shelf/internal/services/access"
	"note-shelf/internal/services/notes"
)

// Handlers contains the notes HTTP handlers. Every call goes through an
// identity-bound access.Scope; the owner is never taken from the request.
type Handlers struct {
	mediator  *access.Mediator
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(mediator *access.Mediator, validator *validator.Validate) *Handlers {
	return &Handlers{
		mediator:  mediator,
		validator: validator,
	}
}

func (h *Handlers) scope(c *fiber.Ctx) (*access.Scope, error) {
	id, err := handlerutil.Identity(c)
	if err != nil {
		return nil, err
	}
	s, err := h.mediator.For(id)
	if err != nil {
		return nil, httperr.Fail(httperr.ErrUnauthorized)
	}
	return s, nil
}

// List handles listing the caller's notes
// @Summary List notes
// @Description Most recently updated first. An unknown category yields an empty list.
// @Tags notes
// @Produce json
// @Security Bearer
// @Param category query string false "Category filter"
// @Success 200 {array} notes.Note
// @Failure 401 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	s, err := h.scope(c)
	if err != nil {
		return err
	}

	var req notes.ListNotesRequest
	if err := handlerutil.ParseQuery(c, &req, "List"); err != nil {
		return err
	}

	list, err := s.List(c.UserContext(), req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "List", s.Owner(), "")
	}

	return c.JSON(list)
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	s, err := h.scope(c)
	if err != nil {
		return err
	}

	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	note, err := s.Create(c.UserContext(), req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Create", s.Owner(), "")
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// Get handles fetching one note
// @Summary Get a note
// @Tags notes
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	s, err := h.scope(c)
	if err != nil {
		return err
	}

	noteID := c.Params("id")
	note, err := s.Get(c.UserContext(), noteID)
	if err != nil {
		return handlerutil.HandleServiceError(err, "Get", s.Owner(), noteID)
	}

	return c.JSON(note)
}

// Replace handles full note updates
// @Summary Replace a note
// @Description Title is required. Omitted content becomes empty and omitted category becomes "Random Thoughts".
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Note fields"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [put]
func (h *Handlers) Replace(c *fiber.Ctx) error {
	return h.update(c, "Replace", false)
}

// Patch handles partial note updates
// @Summary Update a note
// @Description Only supplied fields change. An empty title or category is rejected.
// @Tags notes
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Fields to change"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [patch]
func (h *Handlers) Patch(c *fiber.Ctx) error {
	return h.update(c, "Patch", true)
}

func (h *Handlers) update(c *fiber.Ctx, handlerName string, partial bool) error {
	s, err := h.scope(c)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, handlerName); err != nil {
		return err
	}

	noteID := c.Params("id")
	note, err := s.Update(c.UserContext(), noteID, req, partial)
	if err != nil {
		return handlerutil.HandleServiceError(err, handlerName, s.Owner(), noteID)
	}

	return c.JSON(note)
}

// Delete handles note deletion
// @Summary Delete a note
// @Tags notes
// @Security Bearer
// @Param id path string true "Note ID"
// @Success 204
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	s, err := h.scope(c)
	if err != nil {
		return err
	}

	noteID := c.Params("id")
	if err := s.Delete(c.UserContext(), noteID); err != nil {
		return handlerutil.HandleServiceError(err, "Delete", s.Owner(), noteID)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Categories handles the per-category summary
// @Summary Category counts
// @Description One entry per category in fixed order, including zero counts.
// @Tags notes
// @Produce json
// @Security Bearer
// @Success 200 {array} notes.CategoryCount
// @Failure 401 {object} httperr.E
// @Router /notes/categories [get]
func (h *Handlers) Categories(c *fiber.Ctx) error {
	s, err := h.scope(c)
	if err != nil {
		return err
	}

	counts, err := s.CategoryCounts(c.UserContext())
	if err != nil {
		return handlerutil.HandleServiceError(err, "Categories", s.Owner(), "")
	}

	return c.JSON(counts)
}
