package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/lane-scoring-backend/internal/hub"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeEvents map[string]bool

func (f fakeEvents) Exists(_ context.Context, code string) (bool, error) {
	return f[code], nil
}

func newServer(t *testing.T) (*httptest.Server, *hub.Hub) {
	t.Helper()
	log := zaptest.NewLogger(t)
	h := hub.NewHub(context.Background(), log)
	t.Cleanup(h.Shutdown)

	r := chi.NewRouter()
	r.Get("/ws/{code}", Handler(h, fakeEvents{"ABCD": true, "WXYZ": true}, Options{AllowedOrigins: []string{"*"}}, log))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, h
}

func dial(t *testing.T, srv *httptest.Server, code string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + code
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func write(t *testing.T, conn *websocket.Conn, s string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(s)))
}

func TestRelayToOtherConnections(t *testing.T) {
	srv, _ := newServer(t)
	c1 := dial(t, srv, "ABCD")
	c2 := dial(t, srv, "abcd")

	write(t, c1, `{"type":"result_update","participant_id":3,"total_score":87,"extra":true}`)

	got := read(t, c2)
	assert.Equal(t, map[string]any{"type": "result_update", "participant_id": float64(3), "total_score": float64(87)}, got)
}

func TestUnknownKindIsRejectedToSender(t *testing.T) {
	srv, _ := newServer(t)
	c1 := dial(t, srv, "ABCD")
	c2 := dial(t, srv, "ABCD")

	write(t, c1, `{"type":"chat","text":"hello"}`)
	got := read(t, c1)
	assert.Equal(t, "error", got["type"])
	assert.Equal(t, "unknown type", got["error"])

	// the next valid message is the first thing c2 sees
	write(t, c1, `{"type":"refresh"}`)
	assert.Equal(t, "refresh", read(t, c2)["type"])
}

func TestServerPublishReachesClients(t *testing.T) {
	srv, h := newServer(t)
	c1 := dial(t, srv, "WXYZ")

	h.Publish("WXYZ", []byte(`{"type":"lane_session_reset","lane_number":4}`))
	got := read(t, c1)
	assert.Equal(t, float64(4), got["lane_number"])
}

func TestRejectsUnknownEvent(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/ws/NOPE")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws/AB-CD")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDisconnectLeavesRoom(t *testing.T) {
	srv, h := newServer(t)
	c1 := dial(t, srv, "ABCD")
	require.Equal(t, 1, h.RoomSize("ABCD"))

	require.NoError(t, c1.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return h.Rooms() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"*", "localhost:5173", "scores.example"},
		originPatterns([]string{"*", "http://localhost:5173", " https://scores.example"}))
}
