//go:build integration

package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"note-shelf/internal/services/auth"
	"note-shelf/internal/services/notes"
)

// mongoURI returns MONGO_TEST_URI or starts a throwaway container.
func mongoURI(t *testing.T) string {
	t.Helper()
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		return uri
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:8.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skip("mongo container unavailable:", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "27017")
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://%s:%s/", host, port.Port())
}

func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := mongo.Connect(options.Client().ApplyURI(mongoURI(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		t.Skip("MongoDB ping failed:", err)
	}

	db := client.Database("test_noteshelf_" + ulid.Make().String())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestUsersRepo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo, err := NewUsersRepo(ctx, db)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &auth.User{ID: ulid.Make().String(), Email: "a@x.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, user))

	dup := *user
	dup.ID = ulid.Make().String()
	assert.ErrorIs(t, repo.Create(ctx, &dup), auth.ErrDuplicate)

	found, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", found.Email)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestRefreshTokensRepo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo, err := NewRefreshTokensRepo(ctx, db)
	require.NoError(t, err)

	now := time.Now().UTC()
	tok := &auth.RefreshToken{
		ID:        ulid.Make().String(),
		UserID:    "u1",
		TokenHash: auth.HashRefreshToken("raw"),
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, tok))

	found, err := repo.FindActive(ctx, tok.TokenHash, now)
	require.NoError(t, err)
	assert.Equal(t, tok.ID, found.ID)

	_, err = repo.FindActive(ctx, tok.TokenHash, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound, "expired")

	require.NoError(t, repo.Revoke(ctx, tok.ID, now))
	assert.ErrorIs(t, repo.Revoke(ctx, tok.ID, now), auth.ErrRefreshTokenNotFound)

	_, err = repo.FindActive(ctx, tok.TokenHash, now)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound, "revoked")
}

func TestNotesRepo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo, err := NewNotesRepo(ctx, db)
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Millisecond)
	mk := func(owner, title string, c notes.Category, offset time.Duration) *notes.Note {
		n := &notes.Note{
			ID: ulid.Make().String(), OwnerID: owner, Title: title, Category: c,
			CreatedAt: base.Add(offset), UpdatedAt: base.Add(offset),
		}
		require.NoError(t, repo.Create(ctx, n))
		return n
	}

	first := mk("alice", "first", notes.School, 0)
	second := mk("alice", "second", notes.Personal, time.Second)
	foreign := mk("bob", "bob's", notes.School, 2*time.Second)

	list, err := repo.List(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	school, err := repo.List(ctx, "alice", "School")
	require.NoError(t, err)
	require.Len(t, school, 1)
	assert.Equal(t, first.ID, school[0].ID)

	_, err = repo.Get(ctx, "alice", foreign.ID)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	title := "renamed"
	updated, err := repo.Update(ctx, "alice", first.ID, notes.Patch{Title: &title}, base.Add(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, notes.School, updated.Category)
	assert.True(t, updated.UpdatedAt.Equal(base.Add(5*time.Second)))

	_, err = repo.Update(ctx, "alice", foreign.ID, notes.Patch{Title: &title}, base)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	counts, err := repo.CountByCategory(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[notes.Category]int64{notes.School: 1, notes.Personal: 1}, counts)

	assert.ErrorIs(t, repo.Delete(ctx, "alice", foreign.ID), notes.ErrNoteNotFound)
	require.NoError(t, repo.Delete(ctx, "alice", first.ID))
	_, err = repo.Get(ctx, "alice", first.ID)
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)

	_, err = repo.Get(ctx, "bob", foreign.ID)
	assert.NoError(t, err)
}
