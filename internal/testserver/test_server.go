package testserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/flowboard/internal/app"
	"github.com/rpggio/flowboard/internal/mcp"
	"github.com/rpggio/flowboard/internal/memory"
	"github.com/rpggio/flowboard/internal/sqlite"
	"github.com/rpggio/flowboard/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is an HTTP server over a memory-backed App, with the activity
// log in an in-memory SQLite database.
type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Slots  *memory.SlotStorage
	DB     *sqlite.DB
}

func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	slots := memory.New()
	a := app.NewWithStorage(app.Deps{
		Slots:        slots,
		ActivityRepo: sqlite.NewActivityRepository(db),
	})

	handler := mcp.NewAppHandler(a)
	mcpServer := mcp.NewServer(mcp.Config{Handler: handler})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)

	server := httptest.NewServer(transport.NewServer(transport.Options{
		Handler: handler,
		State:   func() any { return a.Snapshot() },
		MCP:     mcpHandler,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{
		Server: server,
		App:    a,
		Slots:  slots,
		DB:     db,
	}
}
