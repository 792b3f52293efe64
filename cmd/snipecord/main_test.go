package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/ericfisherdev/snipecord/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/snipecord/internal/config"
)

const coursesJSON = `[
	{"title": "CALC I", "sections": [{"number": "01", "index": "01234"}]},
	{"title": "EXPOS WRITING", "sections": [{"number": "H1", "index": "05678"}]}
]`

// unsetConfigEnv clears SNIPECORD_ overrides for the duration of the test.
func unsetConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SNIPECORD_WEBHOOK", "SNIPECORD_MENTION", "SNIPECORD_POLL_INTERVAL",
		"SNIPECORD_LISTEN_ADDR", "SNIPECORD_DB_PATH", "SNIPECORD_NATS_URL",
		"SNIPECORD_TELEGRAM_TOKEN", "SNIPECORD_TELEGRAM_CHAT_ID", "SNIPECORD_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func newSOCServer(t *testing.T, open string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses.gz":
			_, _ = w.Write([]byte(coursesJSON))
		case "/openSections.gz":
			_, _ = w.Write([]byte(open))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, v map[string]any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func baseConfig(socURL string) map[string]any {
	return map[string]any{
		"webhook":      "https://discord.example.invalid/api/webhooks/1/token",
		"year":         "2026",
		"term":         "9",
		"campus":       "NB",
		"level":        "U",
		"indexes":      []string{"01234", "99999"},
		"soc_base_url": socURL,
	}
}

func TestLabelsCommand(t *testing.T) {
	unsetConfigEnv(t)
	soc := newSOCServer(t, `[]`)
	path := writeConfig(t, baseConfig(soc.URL))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"labels", "--config", path})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "INDEX")
	assert.Contains(t, lines[1], "CALC I Section 01 (Index 01234)")
	assert.Contains(t, lines[2], "Unknown Class (Index 99999)")
}

func TestLabelsCommand_JSON(t *testing.T) {
	unsetConfigEnv(t)
	soc := newSOCServer(t, `[]`)
	path := writeConfig(t, baseConfig(soc.URL))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"labels", "-c", path, "--json"})
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	require.NoError(t, cmd.Execute())

	var rows []labelRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	assert.Equal(t, []labelRow{
		{Index: "01234", Label: "CALC I Section 01 (Index 01234)", Found: true},
		{Index: "99999", Label: "Unknown Class (Index 99999)", Found: false},
	}, rows)
}

func TestRootCommand_BadConfig(t *testing.T) {
	unsetConfigEnv(t)
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.json")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRunWatcher_MetadataFailureIsFatal(t *testing.T) {
	unsetConfigEnv(t)
	soc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(soc.Close)

	cfg, err := config.Load(writeConfig(t, baseConfig(soc.URL)))
	require.NoError(t, err)

	err = runWatcher(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load course metadata")
}

// The watcher announces itself, alerts once for the open index, records the
// alert and stops cleanly on cancellation.
func TestRunWatcher_EndToEnd(t *testing.T) {
	unsetConfigEnv(t)
	soc := newSOCServer(t, `["01234","77777"]`)

	posts := make(chan string, 16)
	discordSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Username string `json:"username"`
			Content  string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		posts <- payload.Content
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(discordSrv.Close)

	dbPath := filepath.Join(t.TempDir(), "history.db")
	raw := baseConfig(soc.URL)
	raw["webhook"] = discordSrv.URL + "/api/webhooks/1/token"
	raw["mention"] = "<@&42>"
	raw["poll_interval"] = "20ms"
	raw["db_path"] = dbPath

	cfg, err := config.Load(writeConfig(t, raw))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runWatcher(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	var got []string
	deadline := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case p := <-posts:
			got = append(got, p)
		case <-deadline:
			t.Fatalf("timed out waiting for messages, got %q", got)
		}
	}

	// Let a few more ticks run; the cooldown keeps the index quiet.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runWatcher did not return after cancel")
	}

	assert.Equal(t, "Ready for action!!", got[0])
	assert.Equal(t,
		"<@&42>\nCALC I Section 01 (Index 01234) is open!!! Register with http://sims.rutgers.edu/webreg/editSchedule.htm?login=cas&semesterSelection=92026&indexList=01234",
		got[1],
	)
	assert.Empty(t, posts, "index must stay suppressed during its cooldown")

	db, err := sqliteadapter.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	records, err := sqliteadapter.NewNotificationRepo(db).ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "01234", records[0].Index)
	assert.True(t, records[0].Delivered)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "index", "01234")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"index":"01234"`)

	buf.Reset()
	newLogger("debug", "text", &buf).Debug("dbg")
	assert.Contains(t, buf.String(), "msg=dbg")
}
