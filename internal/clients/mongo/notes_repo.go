package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"note-shelf/internal/services/notes"
)

// NotesRepo implements the notes.Repository interface for MongoDB
type NotesRepo struct {
	collection *mongo.Collection
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level ErrNoteNotFound.
func translateNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notes.ErrNoteNotFound
	}
	return err
}

// NewNotesRepo creates a new notes repository
func NewNotesRepo(ctx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection("notes")

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("notes_owner_updated"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "category", Value: 1},
				{Key: "updated_at", Value: -1},
			},
			Options: options.Index().SetName("notes_owner_category"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCreateNotesIndexes, err)
	}

	return &NotesRepo{collection: collection}, nil
}

var errCreateNotesIndexes = errors.New("failed to create notes indexes")

// Create inserts a note
func (r *NotesRepo) Create(ctx context.Context, note *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, note)
	return err
}

// List returns the owner's notes, newest update first.
func (r *NotesRepo) List(ctx context.Context, ownerID, category string) ([]*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"user_id": ownerID}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []*notes.Note{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one note by id for its owner
func (r *NotesRepo) Get(ctx context.Context, ownerID, noteID string) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var note notes.Note
	if err := r.collection.FindOne(ctx, owned(ownerID, noteID)).Decode(&note); err != nil {
		return nil, translateNotFound(err)
	}
	return &note, nil
}

// Update applies patch atomically and returns the stored document.
func (r *NotesRepo) Update(ctx context.Context, ownerID, noteID string, patch notes.Patch, at time.Time) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": at}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var note notes.Note
	err := r.collection.FindOneAndUpdate(ctx, owned(ownerID, noteID), bson.M{"$set": set}, opts).Decode(&note)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &note, nil
}

// Delete removes a note belonging to the owner
func (r *NotesRepo) Delete(ctx context.Context, ownerID, noteID string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, owned(ownerID, noteID))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return notes.ErrNoteNotFound
	}
	return nil
}

// CountByCategory groups the owner's notes by category.
func (r *NotesRepo) CountByCategory(ctx context.Context, ownerID string) (map[notes.Category]int64, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": ownerID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category notes.Category `bson:"_id"`
		Count    int64          `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[notes.Category]int64, len(rows))
	for _, row := range rows {
		out[row.Category] = row.Count
	}
	return out, nil
}
