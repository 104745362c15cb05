package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chats/internal/models"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// newServer joins every connection to the chat given in ?chat=. Binary frames
// are answered with "bin" to the sender only.
func newServer(t *testing.T, hub *ChatHub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatID, _ := strconv.Atoi(r.URL.Query().Get("chat"))
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(conn, chatID).Serve(hub, func(mt int, data []byte) []byte {
			if mt == websocket.BinaryMessage {
				return []byte("bin")
			}
			return nil
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, chatID int) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?chat=" + strconv.Itoa(chatID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, mt)
	return string(data)
}

func TestPublishReachesOnlyTheSameChat(t *testing.T) {
	hub := NewChatHub()
	srv := newServer(t, hub)

	a := dial(t, srv, 1)
	b := dial(t, srv, 1)
	other := dial(t, srv, 2)
	waitFor(t, func() bool { return hub.Connections(1) == 2 && hub.Connections(2) == 1 })

	require.NoError(t, hub.Publish(1, &models.Message{MessageID: 5, Text: "hello", ChatID: 1}))

	for _, conn := range []*websocket.Conn{a, b} {
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(readText(t, conn)), &got))
		assert.Equal(t, "hello", got["text"])
		assert.EqualValues(t, 5, got["message_id"])
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestRepliesGoToSenderOnly(t *testing.T) {
	hub := NewChatHub()
	srv := newServer(t, hub)

	sender := dial(t, srv, 3)
	peer := dial(t, srv, 3)
	waitFor(t, func() bool { return hub.Connections(3) == 2 })

	require.NoError(t, sender.WriteMessage(websocket.BinaryMessage, []byte{0x89, 'P'}))
	assert.Equal(t, "bin", readText(t, sender))

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := peer.ReadMessage()
	assert.Error(t, err)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewChatHub()
	srv := newServer(t, hub)

	conn := dial(t, srv, 4)
	waitFor(t, func() bool { return hub.Connections(4) == 1 })
	require.NoError(t, conn.Close())
	waitFor(t, func() bool { return hub.Connections(4) == 0 })
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewChatHub()
	slow := NewClient(nil, 9)
	hub.Register(slow)
	defer hub.Unregister(slow)

	for i := 0; i < sendQueueSize; i++ {
		require.Equal(t, 1, hub.Broadcast(9, []byte("x")))
	}
	assert.Equal(t, 0, hub.Broadcast(9, []byte("overflow")))

	select {
	case <-slow.done:
	default:
		t.Fatal("slow client should be closed")
	}
	assert.False(t, slow.Enqueue([]byte("late")))
	assert.False(t, slow.Close())
}

func TestEnvelopeRoundTrip(t *testing.T) {
	data, err := encodeEnvelope(7, &models.Message{MessageID: 1, Text: "hi", ChatID: 7})
	require.NoError(t, err)

	chatID, payload, err := decodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, 7, chatID)
	assert.Contains(t, string(payload), `"text":"hi"`)

	_, _, err = decodeEnvelope([]byte(`{"chat_id":0,"payload":{}}`))
	assert.Error(t, err)
	_, _, err = decodeEnvelope([]byte(`nope`))
	assert.Error(t, err)
}
