package repository

import (
	"context"

	"github.com/rpggio/rerx/internal/domain/activity"
)

// BlobStore persists opaque values under string keys. Save replaces the
// whole value in a single write.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
