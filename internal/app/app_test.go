package app

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rpggio/flowboard/internal/config"
	"github.com/rpggio/flowboard/internal/domain/activity"
	"github.com/rpggio/flowboard/internal/domain/project"
	"github.com/rpggio/flowboard/internal/domain/task"
	"github.com/rpggio/flowboard/internal/memory"
	"github.com/rpggio/flowboard/internal/repository"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	return cfg
}

func TestNewMemory(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.Activity)
	require.NoError(t, a.Fetch(ctx))

	p, err := a.Projects.Create(ctx, project.CreateRequest{Name: "Launch"})
	require.NoError(t, err)
	_, err = a.Tasks.Create(ctx, task.CreateRequest{ProjectID: p.ID, Title: "Draft notes"})
	require.NoError(t, err)

	state := a.Snapshot()
	require.Len(t, state.Projects.Projects, 1)
	require.Len(t, state.Tasks.Tasks, 1)
	require.Equal(t, repository.OutcomeOK, state.Tasks.Outcome)

	entries, err := a.Activity.GetRecentActivity(ctx, activity.ListActivityOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Equal(t, activity.TypeTaskCreated, entries[0].ActivityType)
}

func TestNewActivityDisabled(t *testing.T) {
	cfg := memoryConfig()
	cfg.Activity.Enabled = false

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.Nil(t, a.Activity)
	_, err = a.Projects.Create(context.Background(), project.CreateRequest{Name: "Quiet"})
	require.NoError(t, err)
}

func TestNewSQLitePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(t.TempDir(), "data", "flowboard.db")

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	p, err := a.Projects.Create(ctx, project.CreateRequest{Name: "Durable"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.Fetch(ctx))
	got, err := b.Projects.Get(p.ID)
	require.NoError(t, err)
	require.Equal(t, "Durable", got.Name)
}

func TestNewRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.Default()
	cfg.Storage.Driver = config.DriverRedis
	cfg.Redis.URL = "redis://" + mr.Addr()
	cfg.Redis.Prefix = "test:"

	ctx := context.Background()
	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Projects.Create(ctx, project.CreateRequest{Name: "Cached"})
	require.NoError(t, err)
	require.True(t, mr.Exists("test:projects"))
}

func TestNewRedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Storage.Driver = config.DriverRedis
	cfg.Redis.URL = "redis://" + addr

	_, err = New(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "etcd"

	_, err := New(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestFetchReportsEachCollection(t *testing.T) {
	ctx := context.Background()
	slots := memory.New()
	require.NoError(t, slots.Set(ctx, repository.ProjectsSlot, "{broken"))
	require.NoError(t, slots.Set(ctx, repository.TasksSlot, `[{"id":1,"projectId":1,"title":"Keep","status":"todo","priority":"low","createdAt":"2024-05-01T09:30:00Z"}]`))

	a := NewWithStorage(Deps{Slots: slots})

	err := a.Fetch(ctx)
	require.ErrorIs(t, err, repository.ErrLoadFailed)

	state := a.Snapshot()
	require.Equal(t, project.MsgLoadFailed, state.Projects.Error)
	require.Equal(t, repository.OutcomeLoadFailed, state.Projects.Outcome)
	require.Len(t, state.Tasks.Tasks, 1)
	require.Empty(t, state.Tasks.Error)
}
