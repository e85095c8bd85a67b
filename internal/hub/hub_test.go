package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, gameID uint64) *Client {
	return &Client{GameID: gameID, Send: make(chan []byte, sendBufferSize), hub: h}
}

// settle hands the hub one more registration; once it is accepted the
// single run loop has finished inserting every earlier client.
func settle(h *Hub) {
	h.register <- newTestClient(h, 0)
}

func TestBroadcastRoutesByGame(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := newTestClient(h, 1)
	b := newTestClient(h, 2)
	h.register <- a
	h.register <- b
	settle(h)

	h.Broadcast(1, []byte("snap"))

	select {
	case msg := <-a.Send:
		assert.Equal(t, []byte("snap"), msg)
	default:
		t.Fatal("watcher of game 1 got nothing")
	}
	assert.Empty(t, b.Send, "watcher of game 2 must not see game 1")
}

func TestBroadcastSkipsSlowConsumer(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := &Client{GameID: 1, Send: make(chan []byte), hub: h} // no buffer, nobody reading
	h.register <- c
	settle(h)

	done := make(chan struct{})
	go func() {
		h.Broadcast(1, []byte("snap"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}
}

func TestShutdownUnblocksLateUnregister(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(h, 1)
	h.register <- c

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// A pump exiting after shutdown must not hang handing itself back.
	dropped := make(chan struct{})
	go func() {
		c.drop()
		close(dropped)
	}()
	select {
	case <-dropped:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after shutdown")
	}

	_, open := <-c.Send
	require.False(t, open, "shutdown closes every send channel")
}
