package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_IsOnline_NoConnections(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.IsOnline(123))
}

func TestHub_SendToUser_UserNotOnline(t *testing.T) {
	hub := NewHub()

	msg := &Message{
		Type: "lesson_unlocked",
		Data: map[string]string{"key": "value"},
	}

	// 用户不在线不算错误，静默丢弃
	err := hub.SendToUser(123, msg)
	assert.NoError(t, err)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	a := &Client{UserID: 100}
	b := &Client{UserID: 100}

	hub.Register(a)
	hub.Register(b)
	assert.True(t, hub.IsOnline(100))
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.Unregister(a)
	assert.True(t, hub.IsOnline(100), "同一用户还有其他连接")

	hub.Unregister(b)
	assert.False(t, hub.IsOnline(100))
	assert.Equal(t, 0, hub.ConnectionCount())
}

// dialTestServer 建立一条真实 websocket 连接并注册到 hub
func dialTestServer(t *testing.T, hub *Hub, userID int64) *websocket.Conn {
	t.Helper()

	registered := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}

		hub.Register(&Client{UserID: userID, Conn: conn})
		close(registered)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for registration")
	}
	return conn
}

func TestHub_SendToUser_DeliversToAllConnections(t *testing.T) {
	hub := NewHub()

	// 同一用户开两个标签页
	first := dialTestServer(t, hub, 100)
	second := dialTestServer(t, hub, 100)

	require.True(t, hub.IsOnline(100))
	require.Equal(t, 2, hub.ConnectionCount())

	err := hub.SendToUser(100, &Message{
		Type: "lesson_unlocked",
		Data: map[string]interface{}{"lesson_id": 42},
	})
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "lesson_unlocked", msg.Type)

		payload := msg.Data.(map[string]interface{})
		assert.Equal(t, float64(42), payload["lesson_id"])
	}
}

func TestHub_SendToUser_DoesNotLeakToOtherUsers(t *testing.T) {
	hub := NewHub()

	target := dialTestServer(t, hub, 100)
	other := dialTestServer(t, hub, 200)

	err := hub.SendToUser(100, &Message{Type: "lesson_unlocked"})
	require.NoError(t, err)

	target.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = target.ReadMessage()
	require.NoError(t, err)

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "其他用户不应收到消息")
}
