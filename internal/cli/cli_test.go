package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/flowboard/internal/config"
	"github.com/rpggio/flowboard/internal/domain/project"
	"github.com/rpggio/flowboard/internal/domain/task"
	"github.com/rpggio/flowboard/internal/mcp"
)

func setupBoard(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FLOWBOARD_CONFIG_PATH", "")
	t.Setenv("FLOWBOARD_STORAGE_DRIVER", "sqlite")
	t.Setenv("FLOWBOARD_DB_PATH", filepath.Join(dir, "board.db"))
	t.Setenv("FLOWBOARD_LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestProjectCommands(t *testing.T) {
	setupBoard(t)

	var created project.Project
	runJSON(t, &created, "projects", "create", "--name", "Launch", "--color", "#ff0000")
	require.NotZero(t, created.ID)
	assert.Equal(t, "Launch", created.Name)

	var updated project.Project
	runJSON(t, &updated, "projects", "update", id(created.ID), "--description", "Q3 launch")
	assert.Equal(t, "Launch", updated.Name)
	assert.Equal(t, "Q3 launch", updated.Description)
	assert.Equal(t, "#ff0000", updated.Color)

	var state project.State
	runJSON(t, &state, "projects", "list", "--json")
	require.Len(t, state.Projects, 1)
	assert.Equal(t, updated, state.Projects[0])

	out, err := run(t, "projects", "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ID"))
	assert.Contains(t, out, "Launch")

	var deleted mcp.DeleteResponse
	runJSON(t, &deleted, "projects", "delete", id(created.ID))
	assert.True(t, deleted.Deleted)

	runJSON(t, &state, "projects", "list", "--json")
	assert.Empty(t, state.Projects)
}

func TestTaskCommands(t *testing.T) {
	setupBoard(t)

	var p project.Project
	runJSON(t, &p, "projects", "create", "--name", "Board")

	var first, second task.Task
	runJSON(t, &first, "tasks", "create", "--project", id(p.ID), "--title", "first")
	runJSON(t, &second, "tasks", "create", "--project", id(p.ID), "--title", "second", "--priority", "high")
	assert.Equal(t, task.StatusTodo, first.Status)
	assert.Equal(t, task.PriorityHigh, second.Priority)

	var moved task.Task
	runJSON(t, &moved, "tasks", "update", id(first.ID), "--status", "done")
	assert.Equal(t, task.StatusDone, moved.Status)
	assert.Equal(t, "first", moved.Title)

	var reordered mcp.TaskListResponse
	runJSON(t, &reordered, "tasks", "reorder", "--project", id(p.ID), id(second.ID), id(first.ID))
	require.Len(t, reordered.Tasks, 2)
	assert.Equal(t, second.ID, reordered.Tasks[0].ID)
	assert.Equal(t, first.ID, reordered.Tasks[1].ID)

	var listed mcp.TaskListResponse
	runJSON(t, &listed, "tasks", "list", "--project", id(p.ID), "--json")
	require.Len(t, listed.Tasks, 2)
	assert.Equal(t, second.ID, listed.Tasks[0].ID)

	runJSON(t, &reordered, "tasks", "reorder", "--project", id(p.ID), id(first.ID))
	require.Len(t, reordered.Tasks, 1)

	var deleted mcp.DeleteResponse
	runJSON(t, &deleted, "tasks", "delete", id(first.ID))
	assert.True(t, deleted.Deleted)

	out, err := run(t, "tasks", "list")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"), out)
}

func TestTaskCommandErrors(t *testing.T) {
	setupBoard(t)

	_, err := run(t, "tasks", "update", "abc", "--title", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")

	_, err = run(t, "tasks", "create", "--title", "orphan")
	require.Error(t, err)

	_, err = run(t, "tasks", "update", "12345", "--title", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = run(t, "--driver", "nope", "projects", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestActivityCommand(t *testing.T) {
	setupBoard(t)

	var p project.Project
	runJSON(t, &p, "projects", "create", "--name", "Tracked")

	var entries []mcp.ActivityEntryResponse
	runJSON(t, &entries, "activity", "--collection", "projects", "--entity", id(p.ID))
	require.NotEmpty(t, entries)
	assert.Equal(t, "project_created", string(entries[0].Type))
	assert.Equal(t, "projects", entries[0].Collection)
}

func TestCappedFileTrims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "flowboard.log")

	f, err := openCappedFile(path, 16, 8)
	require.NoError(t, err)

	_, err = f.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = f.Write([]byte("abcdefghij"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cdefghij", string(data))
}

func TestNewLoggerFallback(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Log.Level = "debug"

	logger, closeFn, err := newLogger(cfg, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}

func TestFlagsOverrideInvalidEnv(t *testing.T) {
	setupBoard(t)
	t.Setenv("FLOWBOARD_STORAGE_DRIVER", "bogus")

	_, err := run(t, "projects", "list")
	require.Error(t, err)

	var state project.State
	runJSON(t, &state, "--driver", "memory", "projects", "list", "--json")
	assert.Empty(t, state.Projects)

	opts := &rootOptions{}
	cfg, err := opts.loadConfig(func(c *config.Config) {
		c.Storage.Driver = config.DriverMemory
		c.Transport.Mode = config.TransportStdio
	})
	require.NoError(t, err)
	assert.Equal(t, config.TransportStdio, cfg.Transport.Mode)
}
