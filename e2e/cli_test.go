package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/pcarrot/internal/api"
	"github.com/mcoot/pcarrot/internal/cache"
	"github.com/mcoot/pcarrot/internal/config"
	"github.com/mcoot/pcarrot/internal/factory"
	"github.com/mcoot/pcarrot/internal/session"
	"github.com/mcoot/pcarrot/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "pcarrot-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pcarrot")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "PCARROT_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	settings := config.Default()
	settings.StorageType = config.StorageMemory
	settings.CacheType = cache.TypeSimple
	settings.SessionBackend = session.BackendMemory
	settings.Host = "127.0.0.1"
	settings.Port = port

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{Settings: settings, Logger: logger})
	require.NoError(t, err)

	server := api.NewServer(app.Routes(""), app.ServerConfig(), logger)

	// Start server
	go func() {
		if err := server.Start(); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://127.0.0.1:" + strconv.Itoa(port)
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type accountResponse struct {
	ID int64 `json:"id"`
}

type sessionResponse struct {
	AccountID int64  `json:"account_id"`
	Token     string `json:"token"`
}

type newsResponse struct {
	News []struct {
		Title    string `json:"title"`
		BodyHTML string `json:"body_html"`
	} `json:"news"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AccountCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("account", "register", "--name", "alice1", "--password", "password123")
	require.NoError(t, err, "output: %s", output)
	var account accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &account))
	assert.Equal(t, int64(1), account.ID)

	output, err = cli.run("login", "--name", "alice1", "--password", "password123")
	require.NoError(t, err, "output: %s", output)
	var sess sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &sess))
	assert.Equal(t, account.ID, sess.AccountID)
	assert.NotEmpty(t, sess.Token)

	output, err = cli.run("account", "password", "--current", "password123", "--new", "newpassword1")
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Password changed", msg.Message)

	// Same change again: the current password is stale now
	output, err = cli.run("account", "password", "--current", "password123", "--new", "newpassword1")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CURRENT_PASSWORD")

	output, err = cli.run("logout")
	require.NoError(t, err, "output: %s", output)

	// The revoked token no longer works
	output, err = cli.run("--token", sess.Token, "account", "password", "--current", "newpassword1", "--new", "otherpass1")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func TestCLI_NewsList(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	_, err := ts.app.NewsService.Post(context.Background(), "Launch", "GM", "Server is **online**")
	require.NoError(t, err)

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("news", "list", "--limit", "1")
	require.NoError(t, err, "output: %s", output)

	var resp newsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Len(t, resp.News, 1)
	assert.Equal(t, "Launch", resp.News[0].Title)
	assert.Contains(t, resp.News[0].BodyHTML, "<strong>online</strong>")
}
