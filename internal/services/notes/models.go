package notes

import (
	"time"
)

// Note is a short text note owned by exactly one user.
type Note struct {
	ID        string    `bson:"_id" json:"id" example:"01J0F7A1B2C3D4E5F6G7H8J9KM"`
	OwnerID   string    `bson:"user_id" json:"-"`
	Title     string    `bson:"title" json:"title" example:"Grocery list"`
	Content   string    `bson:"content" json:"content" example:"Milk, eggs, bread"`
	Category  Category  `bson:"category" json:"category" example:"Random Thoughts"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// Patch lists the fields an update writes. Nil fields are left untouched.
type Patch struct {
	Title    *string
	Content  *string
	Category *Category
}

// CategoryCount is one row of the per-owner category summary.
type CategoryCount struct {
	Name  Category `json:"name" example:"School"`
	Count int64    `json:"count" example:"3"`
	Color string   `json:"color" example:"#fcdc94"`
}

// Event types delivered to live subscribers.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// NoteEvent represents an event that occurred on a note
type NoteEvent struct {
	Type string `json:"type"`
	Note *Note  `json:"note"`
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title    string `json:"title" validate:"required,max=200" example:"Grocery list"`
	Content  string `json:"content" example:"Milk, eggs, bread"`
	Category string `json:"category" validate:"category" example:"Personal"`
}

// UpdateNoteRequest carries the body of PUT and PATCH. For PUT, omitted
// content and category reset to their defaults.
type UpdateNoteRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=200" example:"Updated grocery list"`
	Content  *string `json:"content,omitempty" example:"Milk, eggs, bread, butter"`
	Category *string `json:"category,omitempty" validate:"omitempty,category" example:"School"`
}

// ListNotesRequest represents a list notes request
type ListNotesRequest struct {
	Category string `query:"category" example:"School"`
}
