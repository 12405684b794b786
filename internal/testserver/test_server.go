// Package testserver runs the MCP HTTP surface over in-memory storage for
// functional tests.
package testserver

import (
	"context"
	"net/http/httptest"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/rerx/internal/domain/activity"
	"github.com/rpggio/rerx/internal/domain/project"
	"github.com/rpggio/rerx/internal/mcp"
	"github.com/rpggio/rerx/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *sqlite.DB
	Projects *project.Service
}

// New starts a server whose project list and activity log live in an
// in-memory SQLite database.
func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	activityRepo := sqlite.NewActivityRepository(db)
	projects := project.NewService(sqlite.NewBlobRepository(db), activityRepo, nil)
	require.NoError(t, projects.Open(context.Background()))

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: projects,
			Activity: activity.NewService(activityRepo, nil),
		},
	})
	httpServer := httptest.NewServer(mcp.NewHTTPHandler(server))

	t.Cleanup(func() {
		httpServer.Close()
		_ = db.Close()
	})

	return &TestServer{Server: httpServer, DB: db, Projects: projects}
}

// Connect opens an MCP client session against the server.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{Endpoint: ts.Server.URL + "/mcp"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}
