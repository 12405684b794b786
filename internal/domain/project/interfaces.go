package project

import (
	"context"

	"github.com/rpggio/rerx/internal/domain/activity"
)

// Store provides durable persistence for the serialized project list.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// ActivityLog records mutations.
type ActivityLog interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
