package repository

import (
	"context"

	"github.com/rpggio/flowboard/internal/domain/activity"
)

// Slot keys used by the stores.
const (
	ProjectsSlot = "projects"
	TasksSlot    = "tasks"
)

// SlotStorage is a durable key/value string store.
// Get reports found=false for a slot that was never written.
type SlotStorage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
