package functional_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// binaryPath is the flowboard binary built by TestMain.
var binaryPath string

func TestMain(m *testing.M) {
	os.Exit(runWithBinary(m))
}

func runWithBinary(m *testing.M) int {
	dir, err := os.MkdirTemp("", "flowboard-functional-")
	if err != nil {
		fmt.Fprintln(os.Stderr, "create build dir:", err)
		return 1
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "flowboard")
	build := exec.Command("go", "build", "-o", binaryPath, "github.com/rpggio/flowboard/cmd/flowboard")
	build.Stdout = os.Stderr
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "build flowboard:", err)
		return 1
	}
	return m.Run()
}

// newStdioSession runs the built binary as an MCP stdio server.
func newStdioSession(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath, "serve")
	cmd.Env = append(os.Environ(),
		"FLOWBOARD_TRANSPORT_MODE=stdio",
		"FLOWBOARD_STORAGE_DRIVER=memory",
	)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		cancel()
	})
	return session
}

func TestStdioFunctional_ServerInfoAndTools(t *testing.T) {
	session := newStdioSession(t)
	ctx := context.Background()

	init := session.InitializeResult()
	require.NotNil(t, init)
	require.Equal(t, "flowboard", init.ServerInfo.Name)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	require.True(t, names["update_task_order"])
	require.True(t, names["create_project"])
}

func TestStdioFunctional_TaskWorkflow(t *testing.T) {
	session := newStdioSession(t)
	ctx := context.Background()

	call := func(name string, args map[string]any) json.RawMessage {
		t.Helper()
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
		require.NoError(t, err, "CallTool %s failed", name)
		require.False(t, result.IsError, "Tool %s returned error", name)
		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		return json.RawMessage(text.Text)
	}

	var proj struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(call("create_project", map[string]any{"name": "CLI"}), &proj))

	call("create_task", map[string]any{"project_id": proj.ID, "title": "first"})
	call("create_task", map[string]any{"project_id": proj.ID, "title": "second"})

	var listed struct {
		Tasks []struct {
			Title string `json:"title"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(call("list_tasks", map[string]any{"project_id": proj.ID}), &listed))
	require.Len(t, listed.Tasks, 2)
	require.Equal(t, "first", listed.Tasks[0].Title)
}
