package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, userID int64) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/events/ws", func(c *gin.Context) {
		c.Set("userID", userID)
	}, NewHandler(hub, zerolog.Nop()).HandleConnection)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/events/ws"
}

func dial(t *testing.T, url string) *gorilla.Conn {
	t.Helper()
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	hub, url := startServer(t, 42)
	conn := dial(t, url)

	require.Eventually(t, func() bool { return hub.ClientCount(42) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(7, Event{Type: EventCreated, OfferLetterID: 1, RefNo: "OL000001"})
	hub.Publish(42, Event{Type: EventGenerated, OfferLetterID: 2, RefNo: "OL000002", Status: "generated", PdfURL: "http://x/OL000002.pdf"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, EventGenerated, got.Type)
	assert.Equal(t, int64(2), got.OfferLetterID)
	assert.Equal(t, "http://x/OL000002.pdf", got.PdfURL)
	assert.False(t, got.Timestamp.IsZero())
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, url := startServer(t, 9)
	conn := dial(t, url)

	require.Eventually(t, func() bool { return hub.ClientCount(9) == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(9) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(1, Event{Type: EventDeleted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}
