package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"note-shelf/internal/services/notes"
)

const noteColumns = `id, user_id, title, content, category, created_at, updated_at`

// NotesRepo implements notes.Repository on PostgreSQL. The owner predicate
// is part of every WHERE clause.
type NotesRepo struct {
	pool *pgxpool.Pool
}

// NewNotesRepo returns a notes repository backed by pool.
func NewNotesRepo(pool *pgxpool.Pool) *NotesRepo {
	return &NotesRepo{pool: pool}
}

func (r *NotesRepo) Create(ctx context.Context, n *notes.Note) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.OwnerID, n.Title, n.Content, string(n.Category), n.CreatedAt, n.UpdatedAt)
	return err
}

func (r *NotesRepo) List(ctx context.Context, ownerID, category string) ([]*notes.Note, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes
		  WHERE user_id = $1 AND ($2 = '' OR category = $2)
		  ORDER BY updated_at DESC, id DESC`,
		ownerID, category)
	if err != nil {
		return nil, err
	}

	out, err := pgx.CollectRows(rows, scanNote)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*notes.Note{}
	}
	return out, nil
}

func (r *NotesRepo) Get(ctx context.Context, ownerID, noteID string) (*notes.Note, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`, noteID, ownerID)
	if err != nil {
		return nil, err
	}
	return collectOne(rows)
}

// Update writes the supplied fields in one statement; COALESCE keeps the
// stored value for nil fields.
func (r *NotesRepo) Update(ctx context.Context, ownerID, noteID string, patch notes.Patch, at time.Time) (*notes.Note, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var category *string
	if patch.Category != nil {
		c := string(*patch.Category)
		category = &c
	}

	rows, err := r.pool.Query(ctx,
		`UPDATE notes
		    SET title = COALESCE($3, title),
		        content = COALESCE($4, content),
		        category = COALESCE($5, category),
		        updated_at = $6
		  WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		noteID, ownerID, patch.Title, patch.Content, category, at)
	if err != nil {
		return nil, err
	}
	return collectOne(rows)
}

func (r *NotesRepo) Delete(ctx context.Context, ownerID, noteID string) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, noteID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notes.ErrNoteNotFound
	}
	return nil
}

func (r *NotesRepo) CountByCategory(ctx context.Context, ownerID string) (map[notes.Category]int64, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM notes WHERE user_id = $1 GROUP BY category`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[notes.Category]int64{}
	for rows.Next() {
		var (
			category string
			count    int64
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		out[notes.Category(category)] = count
	}
	return out, rows.Err()
}

func scanNote(row pgx.CollectableRow) (*notes.Note, error) {
	var (
		n        notes.Note
		category string
	)
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &category, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Category = notes.Category(category)
	return &n, nil
}

func collectOne(rows pgx.Rows) (*notes.Note, error) {
	n, err := pgx.CollectExactlyOneRow(rows, scanNote)
	if isNoRows(err) {
		return nil, notes.ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}
