package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func recv(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
	}
	return WSMessage{}
}

func TestHubBroadcastToPlayer(t *testing.T) {
	h := startHub(t)

	all := NewClient(h, nil)
	second := NewClient(h, nil)
	second.SetPlayer(2)
	require.True(t, h.Register(all))
	require.True(t, h.Register(second))

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []int{0, 2}, h.Players())

	h.BroadcastToPlayer([]byte("everyone"), 0)
	h.BroadcastToPlayer([]byte("two"), 2)

	assert.Equal(t, []byte("everyone"), <-all.send)
	assert.Equal(t, []byte("two"), <-second.send)
	assert.Empty(t, all.send)
	assert.Empty(t, second.send)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, nil)
	require.True(t, h.Register(c))

	h.Unregister(c)
	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, h.Len())
	assert.False(t, h.Send(c, []byte("late")), "send to a removed client")

	// A second unregister is a no-op.
	h.Unregister(c)
}

func TestHubDropsSlowClient(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, nil)
	require.True(t, h.Register(c))

	for range cap(c.send) + 1 {
		h.BroadcastToPlayer([]byte("x"), 0)
	}
	assert.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopClosesClients(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := NewClient(h, nil)
	require.True(t, h.Register(c))
	cancel()
	<-stopped

	_, ok := <-c.send
	assert.False(t, ok)
	assert.False(t, h.Register(NewClient(h, nil)))
}
