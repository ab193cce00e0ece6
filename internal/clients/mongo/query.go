package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OpTimeout bounds a single repository call.
const OpTimeout = 5 * time.Second

// WithRepoTimeout caps ctx at d. A ctx that is already done or due sooner is
// returned untouched, with a no-op cancel.
func WithRepoTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx.Err() != nil {
		return ctx, func() {}
	}
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) <= d {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}

// owned matches one document by id, and only for its owner.
func owned(ownerID, id string) bson.M {
	return bson.M{"_id": id, "user_id": ownerID}
}

// unrevoked narrows filter to refresh tokens without a revoked_at.
func unrevoked(filter bson.M) bson.M {
	filter["revoked_at"] = bson.M{"$exists": false}
	return filter
}
