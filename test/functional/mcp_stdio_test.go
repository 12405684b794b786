package functional_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// newStdioSession launches the server binary over stdio. The test is skipped
// when the binary has not been built.
func newStdioSession(t *testing.T, extraEnv ...string) *sdkmcp.ClientSession {
	t.Helper()

	binaryPath := "./bin/rerx-server"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/rerx-server"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("Server binary not found. Run 'go build -o bin/rerx-server ./cmd/server' first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	dir := t.TempDir()
	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(),
		"RERX_TRANSPORT_MODE=stdio",
		"RERX_DB_PATH="+filepath.Join(dir, "rerx.db"),
		"RERX_BADGER_PATH="+filepath.Join(dir, "badger"),
	)
	cmd.Env = append(cmd.Env, extraEnv...)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
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

func TestStdioFunctional_ServerInfo(t *testing.T) {
	session := newStdioSession(t)

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	require.Equal(t, "rerx", initResult.ServerInfo.Name)
	require.NotEmpty(t, initResult.Instructions)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, tools.Tools)
}

func TestStdioFunctional_Backends(t *testing.T) {
	for _, backend := range []string{"sqlite", "badger"} {
		t.Run(backend, func(t *testing.T) {
			session := newStdioSession(t, "RERX_STORE_BACKEND="+backend)

			var scores struct {
				Quadrant string `json:"quadrant"`
			}
			require.NoError(t, json.Unmarshal(callTool(t, session, "compute_scores", map[string]any{"indicators": []float64{9, 9}}), &scores))
			require.Equal(t, "Unsustainable", scores.Quadrant)

			callTool(t, session, "save_snapshot", map[string]any{"label": "first"})

			var history struct {
				History []json.RawMessage `json:"history"`
			}
			require.NoError(t, json.Unmarshal(callTool(t, session, "get_history", nil), &history))
			require.Len(t, history.History, 1)
		})
	}
}
