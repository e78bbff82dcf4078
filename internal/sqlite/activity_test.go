package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/flowboard/internal/domain/activity"
	"github.com/rpggio/flowboard/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	projectID := int64(1714555800000)
	entry1 := &activity.ActivityEntry{
		ID:           "a1",
		Collection:   activity.CollectionProjects,
		EntityID:     &projectID,
		ActivityType: activity.TypeProjectCreated,
		Summary:      "Created project",
		Details:      `{"name":"Alpha"}`,
	}
	entry2 := &activity.ActivityEntry{
		ID:           "a2",
		Collection:   activity.CollectionProjects,
		EntityID:     &projectID,
		ActivityType: activity.TypeProjectUpdated,
		Summary:      "Updated project",
	}

	require.NoError(t, repo.Log(ctx, entry1))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, repo.Log(ctx, entry2))
	require.False(t, entry1.CreatedAt.IsZero())

	entries, err := repo.List(ctx, activity.ListActivityOptions{Collection: activity.CollectionProjects})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.ActivityType, entries[0].ActivityType)
	require.Equal(t, entry1.ActivityType, entries[1].ActivityType)
	require.Equal(t, `{"name":"Alpha"}`, entries[1].Details)
	require.NotNil(t, entries[1].EntityID)
	require.Equal(t, projectID, *entries[1].EntityID)
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	taskID := int64(42)
	otherTaskID := int64(43)
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ID:           "a1",
		Collection:   activity.CollectionTasks,
		EntityID:     &taskID,
		ActivityType: activity.TypeTaskUpdated,
		Summary:      "Updated task",
	}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ID:           "a2",
		Collection:   activity.CollectionTasks,
		EntityID:     &otherTaskID,
		ActivityType: activity.TypeTaskCreated,
		Summary:      "Created task",
	}))
	require.NoError(t, repo.Log(ctx, &activity.ActivityEntry{
		ID:           "a3",
		Collection:   activity.CollectionTasks,
		ActivityType: activity.TypeTasksLoaded,
		Summary:      "Loaded tasks",
	}))

	activityType := activity.TypeTaskUpdated
	entries, err := repo.List(ctx, activity.ListActivityOptions{
		Collection:   activity.CollectionTasks,
		EntityID:     &taskID,
		ActivityType: &activityType,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a1", entries[0].ID)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Collection: activity.CollectionProjects})
	require.NoError(t, err)
	require.Len(t, entries, 0)

	entries, err = repo.List(ctx, activity.ListActivityOptions{Collection: activity.CollectionTasks, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestActivityRepository_DuplicateID(t *testing.T) {
	repo := NewActivityRepository(NewTestDB(t))
	ctx := context.Background()

	entry := &activity.ActivityEntry{
		ID:           "dup",
		Collection:   activity.CollectionProjects,
		ActivityType: activity.TypeProjectsLoaded,
		Summary:      "Loaded projects",
	}
	require.NoError(t, repo.Log(ctx, entry))

	err := repo.Log(ctx, entry)
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
