package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"note-shelf/internal/logger"
	"note-shelf/internal/services/auth"
)

// RefreshTokensRepo manages refresh token operations in MongoDB
type RefreshTokensRepo struct {
	collection *mongo.Collection
}

// NewRefreshTokensRepo creates a new RefreshTokensRepo instance. Expired
// tokens are purged by a TTL index.
func NewRefreshTokensRepo(ctx context.Context, db *mongo.Database) (*RefreshTokensRepo, error) {
	collection := db.Collection("refresh_tokens")

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("refresh_tokens_hash_unique"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("refresh_tokens_ttl"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create refresh token indexes: %w", err)
	}

	return &RefreshTokensRepo{collection: collection}, nil
}

// Create stores a new refresh token record
func (r *RefreshTokensRepo) Create(ctx context.Context, token *auth.RefreshToken) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, token); err != nil {
		logger.L().Error("failed to create refresh token", "error", err, "user_id", token.UserID)
		return err
	}

	logger.L().Debug("refresh token created", "user_id", token.UserID, "expires_at", token.ExpiresAt)
	return nil
}

// FindActive finds an unrevoked, unexpired token by digest
func (r *RefreshTokensRepo) FindActive(ctx context.Context, tokenHash string, now time.Time) (*auth.RefreshToken, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := unrevoked(bson.M{
		"token_hash": tokenHash,
		"expires_at": bson.M{"$gt": now},
	})

	var token auth.RefreshToken
	if err := r.collection.FindOne(ctx, filter).Decode(&token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrRefreshTokenNotFound
		}
		logger.L().Error("failed to query refresh tokens", "error", err)
		return nil, err
	}
	return &token, nil
}

// Revoke sets revoked_at on a token that is still active. The revoked_at
// predicate makes concurrent revocations of one token resolve to a single winner.
func (r *RefreshTokensRepo) Revoke(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := unrevoked(bson.M{"_id": id})
	update := bson.M{"$set": bson.M{"revoked_at": at}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.L().Error("failed to revoke refresh token", "error", err, "token_id", id)
		return err
	}
	if result.MatchedCount == 0 {
		return auth.ErrRefreshTokenNotFound
	}

	logger.L().Debug("refresh token revoked", "token_id", id)
	return nil
}
