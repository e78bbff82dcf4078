package task

import (
	"context"

	"github.com/rpggio/flowboard/internal/domain/activity"
)

// SlotStorage persists the serialized task list.
type SlotStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ActivityLogger records task changes.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
