package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newUpgradedPair dials a throwaway test server and returns the server-side
// upgraded socket plus the client side, both cleaned up with the test.
func newUpgradedPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case ws := <-serverSide:
		t.Cleanup(func() { _ = ws.Close() })
		return ws, client
	case <-time.After(2 * time.Second):
		t.Fatal("server side of the connection never arrived")
		return nil, nil
	}
}

func TestConnection_IdentityAndLiveness(t *testing.T) {
	req := require.New(t)
	serverWS, _ := newUpgradedPair(t)

	conn := NewConnection(serverWS, time.Second)
	t.Cleanup(func() { _ = conn.Close() })
	req.NotEmpty(conn.ID())
	req.True(conn.Alive())

	other := NewConnection(serverWS, time.Second)
	t.Cleanup(func() { _ = other.Close() })
	req.NotEqual(conn.ID(), other.ID())
}

func TestConnection_SendReachesPeer(t *testing.T) {
	req := require.New(t)
	serverWS, client := newUpgradedPair(t)

	conn := NewConnection(serverWS, time.Second)
	t.Cleanup(func() { _ = conn.Close() })

	req.NoError(conn.Send(map[string]string{"type": "chat", "text": "hello"}))

	req.NoError(client.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var payload map[string]string
	req.NoError(client.ReadJSON(&payload))
	req.Equal("hello", payload["text"])
}

func TestConnection_SendRejectsUnmarshalablePayload(t *testing.T) {
	serverWS, _ := newUpgradedPair(t)

	conn := NewConnection(serverWS, time.Second)
	t.Cleanup(func() { _ = conn.Close() })

	err := conn.Send(json.RawMessage(`{invalid`))
	require.ErrorIs(t, err, ErrInvalidPayload)
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	req := require.New(t)
	serverWS, _ := newUpgradedPair(t)

	conn := NewConnection(serverWS, time.Second)
	req.True(conn.Alive())

	req.NoError(conn.Close())
	req.False(conn.Alive())
	_ = conn.Close()

	req.ErrorIs(conn.Send("late"), ErrConnectionClosed)

	select {
	case <-conn.Done():
	default:
		t.Fatal("Done must be closed after Close")
	}
}
