package e2e_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/crosswordduel/internal/api"
	"github.com/mcoot/crosswordduel/internal/factory"
	"github.com/mcoot/crosswordduel/internal/model"
	"github.com/mcoot/crosswordduel/internal/testutil"
)

var (
	buildOnce   sync.Once
	binaryPath  string
	buildOutput []byte
	buildErr    error
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary once per test run
	buildOnce.Do(func() {
		binaryPath = filepath.Join(projectRoot, "bin", "crosswordduel-test")
		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/crosswordduel")
		cmd.Dir = projectRoot
		buildOutput, buildErr = cmd.CombinedOutput()
	})
	require.NoError(t, buildErr, "failed to build CLI: %s", string(buildOutput))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) command(ctx context.Context, args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.CommandContext(ctx, r.binaryPath, fullArgs...)
	// Keep a developer's .env or environment out of the runs
	cmd.Env = []string{"PATH=" + os.Getenv("PATH"), "HOME=" + os.TempDir()}
	cmd.Dir = os.TempDir()
	return cmd
}

// run executes the CLI and returns its stdout; stderr is folded into errors
func (r *cliRunner) run(args ...string) (string, error) {
	var stderr bytes.Buffer
	cmd := r.command(context.Background(), args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return string(output) + stderr.String(), err
	}
	return string(output), nil
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
	app      *factory.TestApp
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	app := factory.NewTestApp()
	require.NoError(t, app.LoadTestDictionary())

	ctx, cancel := context.WithCancel(context.Background())
	appDone := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(appDone)
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:     testutil.NopLogger(),
		Storage:    app.Storage,
		Clock:      app.Clock,
		Dictionary: app.DictionaryService,
		Relay:      app.Relay,
		Matchmaker: app.Matchmaker,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			cancel()
			<-appDone
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = server.Shutdown(shutdownCtx)
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
type healthResponse struct {
	Status string `json:"status"`
}

type roomsResponse struct {
	Rooms []struct {
		ID      string `json:"id"`
		HostID  int    `json:"hostId"`
		Members []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"members"`
	} `json:"rooms"`
	Connections int `json:"connections"`
}

type moveResponse struct {
	GameID     string `json:"gameId"`
	PlayerID   int    `json:"playerId"`
	Kind       string `json:"kind"`
	Placements []struct {
		X       int    `json:"x"`
		Y       int    `json:"y"`
		Letter  string `json:"letter"`
		IsBlank bool   `json:"isBlank"`
	} `json:"placements"`
	Words []string `json:"words"`
	Score int      `json:"score"`
}

type recordResponse struct {
	Message string       `json:"message"`
	Move    moveResponse `json:"move"`
}

type moveListResponse struct {
	GameID string         `json:"gameId"`
	Moves  []moveResponse `json:"moves"`
}

type matchResponse struct {
	RoomID  string `json:"roomId"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Seat    int    `json:"seat"`
}

type relayEvent struct {
	Message model.Message `json:"message"`
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

func TestCLI_RecordAndListMoves(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("moves", "record",
		"--game", "g1", "--seat", "1",
		"--tile", "7,7,Z", "--tile", "8,7,a,blank",
		"--word", "ZA", "--score", "20")
	require.NoError(t, err, "output: %s", output)

	var recorded recordResponse
	require.NoError(t, json.Unmarshal([]byte(output), &recorded))
	assert.Equal(t, "Move received", recorded.Message)
	assert.Equal(t, "submit_move", recorded.Move.Kind)
	require.Len(t, recorded.Move.Placements, 2)
	assert.True(t, recorded.Move.Placements[1].IsBlank)
	assert.Equal(t, "A", recorded.Move.Placements[1].Letter)

	output, err = cli.run("moves", "record", "--game", "g1", "--seat", "2", "--turn", "1", "--kind", "pass")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("moves", "list", "g1")
	require.NoError(t, err, "output: %s", output)

	var list moveListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	require.Len(t, list.Moves, 2)
	assert.Equal(t, []string{"ZA"}, list.Moves[0].Words)
	assert.Equal(t, "pass", list.Moves[1].Kind)
	assert.Equal(t, 2, list.Moves[1].PlayerID)

	// Rebuild the board from the log
	output, err = cli.run("board", "--game", "g1")
	require.NoError(t, err, "output: %s", output)

	var view struct {
		Board model.Board `json:"board"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &view))
	assert.Equal(t, 'Z', view.Board.Face(model.Position{X: 7, Y: 7}))
	assert.Equal(t, 'A', view.Board.Face(model.Position{X: 8, Y: 7}))
	assert.Equal(t, 2, view.Board.TileCount())
}

func TestCLI_RecordRejected(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// A submitted move without tiles is refused by the server
	output, err := cli.run("moves", "record", "--game", "g1", "--seat", "1")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_MOVE_RECORD")

	output, err = cli.run("moves", "record", "--game", "g1", "--seat", "1", "--tile", "7,7")
	require.Error(t, err)
	assert.Contains(t, output, "invalid tile")
}

func TestCLI_WordCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("word", "za")
	require.NoError(t, err, "output: %s", output)

	var resp struct {
		Word  string `json:"word"`
		Valid bool   `json:"valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ZA", resp.Word)
	assert.True(t, resp.Valid)
}

func TestCLI_FindGameAndWatch(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// alice waits in matchmaking until bob arrives
	var aliceOut, aliceErr bytes.Buffer
	alice := cli.command(context.Background(), "findgame", "alice")
	alice.Stdout = &aliceOut
	alice.Stderr = &aliceErr
	require.NoError(t, alice.Start())

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.addr + "/api/v1/rooms")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var body struct {
			Matchmaking struct {
				Waiting string `json:"waiting"`
			} `json:"matchmaking"`
		}
		return json.NewDecoder(resp.Body).Decode(&body) == nil && body.Matchmaking.Waiting == "alice"
	}, 5*time.Second, 50*time.Millisecond)

	output, err := cli.run("findgame", "bob")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, alice.Wait(), "stderr: %s", aliceErr.String())

	var bobMatch, aliceMatch matchResponse
	require.NoError(t, json.Unmarshal([]byte(output), &bobMatch))
	require.NoError(t, json.Unmarshal(aliceOut.Bytes(), &aliceMatch))
	assert.Equal(t, aliceMatch.RoomID, bobMatch.RoomID)
	assert.Equal(t, "alice", bobMatch.Player1)
	assert.Equal(t, 1, aliceMatch.Seat)
	assert.Equal(t, 2, bobMatch.Seat)

	// A watcher joins the matched room and is welcomed as its host
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watch := cli.command(ctx, "watch", aliceMatch.RoomID, "--name", "sam", "--json")
	stdout, err := watch.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, watch.Start())

	scanner := bufio.NewScanner(stdout)
	require.True(t, scanner.Scan(), "watcher produced no output")
	var event relayEvent
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
	assert.Equal(t, model.MessageWelcome, event.Message.Type)
	assert.Equal(t, model.SeatOne, event.Message.PlayerID)
	assert.True(t, event.Message.IsHost)

	output, err = cli.run("rooms")
	require.NoError(t, err, "output: %s", output)
	var rooms roomsResponse
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	require.Len(t, rooms.Rooms, 1)
	assert.Equal(t, aliceMatch.RoomID, rooms.Rooms[0].ID)
	require.Len(t, rooms.Rooms[0].Members, 1)
	assert.Equal(t, "sam", rooms.Rooms[0].Members[0].Name)

	cancel()
	_ = watch.Wait()
}

func TestCLI_RoomInvite(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	file := filepath.Join(t.TempDir(), "invite.png")

	output, err := cli.run("rooms", "invite", "r1", "--file", file)
	require.NoError(t, err, "output: %s", output)
	assert.True(t, strings.Contains(output, file))

	png, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestCLI_BoardLayout(t *testing.T) {
	cli := newCLIRunner(t, "http://127.0.0.1:1")

	output, err := cli.run("--output", "text", "board")
	require.NoError(t, err, "output: %s", output)

	lines := strings.Split(output, "\n")
	// header, then row 7 holds the start square in the middle
	require.Greater(t, len(lines), 8)
	assert.Contains(t, lines[8], " * ")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), "0 | T "))
}
