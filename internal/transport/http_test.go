package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/flowboard/internal/app"
	"github.com/rpggio/flowboard/internal/mcp"
	"github.com/rpggio/flowboard/internal/memory"
	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	err    error
}

func (h *testHandler) Handle(_ context.Context, method string, params json.RawMessage) (any, error) {
	h.method = method
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"method": method}, nil
}

func postRPC(t *testing.T, url, body string) Response {
	t.Helper()

	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(Options{Handler: handler}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"list_projects","id":1}`)
	require.Nil(t, resp.Error)
	require.Equal(t, "list_projects", handler.method)
	require.Equal(t, float64(1), resp.ID)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		body string
		code int
	}{
		{name: "parse", body: `{"jsonrpc":`, code: ErrParseCode},
		{name: "invalid request", body: `{"jsonrpc":"1.0","method":"x","id":1}`, code: ErrInvalidReq},
		{name: "unknown method", err: mcp.ErrUnknownMethod, code: ErrMethodNotFound},
		{name: "invalid params", err: mcp.ErrInvalidParams, code: ErrInvalidParams},
		{name: "api error", err: &mcp.APIError{Code: "TASK_NOT_FOUND", Message: "task not found"}, code: ErrApplication},
		{name: "internal", err: errors.New("boom"), code: ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(NewServer(Options{Handler: &testHandler{err: tt.err}}))
			t.Cleanup(server.Close)

			body := tt.body
			if body == "" {
				body = `{"jsonrpc":"2.0","method":"get_task","params":{"id":1},"id":"a"}`
			}
			resp := postRPC(t, server.URL, body)
			require.NotNil(t, resp.Error)
			require.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}

func TestHTTPServer_StateNotMountedWithoutProvider(t *testing.T) {
	server := httptest.NewServer(NewServer(Options{Handler: &testHandler{}}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_EndToEnd(t *testing.T) {
	a := app.NewWithStorage(app.Deps{Slots: memory.New()})
	server := httptest.NewServer(NewServer(Options{
		Handler: mcp.NewAppHandler(a),
		State:   func() any { return a.Snapshot() },
	}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"create_project","params":{"name":"Board"},"id":1}`)
	require.Nil(t, resp.Error)

	resp = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"get_project","params":{"id":42},"id":2}`)
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrApplication, resp.Error.Code)
	data, ok := resp.Error.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "PROJECT_NOT_FOUND", data["code"])

	httpResp, err := http.Get(server.URL + "/state")
	require.NoError(t, err)
	defer httpResp.Body.Close()

	var state app.State
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&state))
	require.Len(t, state.Projects.Projects, 1)
	require.Equal(t, "Board", state.Projects.Projects[0].Name)
	require.Empty(t, state.Tasks.Tasks)
}
