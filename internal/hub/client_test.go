package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lxzan/gws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*Client
}

func (r *recordingSender) SendInitialState(c *Client) {
	r.sent = append(r.sent, c)
}

func TestClientHandleMessage(t *testing.T) {
	type testCase struct {
		name       string
		msg        string
		wantErr    error
		wantPlayer int
		wantReply  string
	}

	cases := []testCase{
		{name: "select player", msg: `{"type":"select_player","playerIndex":3}`, wantPlayer: 3, wantReply: TypePlayerSelected},
		{name: "select all", msg: `{"type":"select_player","playerIndex":0}`, wantPlayer: 0, wantReply: TypePlayerSelected},
		{name: "player out of range", msg: `{"type":"select_player","playerIndex":5}`, wantErr: ErrInvalidPlayer, wantPlayer: 1, wantReply: TypeError},
		{name: "negative player", msg: `{"type":"select_player","playerIndex":-1}`, wantErr: ErrInvalidPlayer, wantPlayer: 1, wantReply: TypeError},
		{name: "unknown type", msg: `{"type":"rumble"}`, wantErr: ErrUnknownMessage, wantPlayer: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := startHub(t)
			c := NewClient(h, nil)
			c.SetPlayer(1)
			require.True(t, h.Register(c))
			states := &recordingSender{}

			err := c.HandleMessage([]byte(tc.msg), states)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, states.sent)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, []*Client{c}, states.sent)
			}
			assert.Equal(t, tc.wantPlayer, c.Player())

			if tc.wantReply == "" {
				assert.Empty(t, c.send)
				return
			}
			reply := recv(t, c)
			assert.Equal(t, tc.wantReply, reply.Type)
			if tc.wantReply == TypePlayerSelected {
				require.NotNil(t, reply.PlayerIndex)
				assert.Equal(t, tc.wantPlayer, *reply.PlayerIndex)
			}
		})
	}
}

func TestClientHandleMessageBadJSON(t *testing.T) {
	c := NewClient(NewHub(nil), nil)
	assert.Error(t, c.HandleMessage([]byte("{"), nil))
}

type fakeConn struct {
	mu       sync.Mutex
	written  [][]byte
	opcodes  []gws.Opcode
	closed   []uint16
	writeErr error
}

func (f *fakeConn) WriteMessage(opcode gws.Opcode, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.opcodes = append(f.opcodes, opcode)
	f.written = append(f.written, payload)
	return nil
}

func (f *fakeConn) WriteClose(code uint16, reason []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, code)
	return nil
}

func TestClientWritePump(t *testing.T) {
	h := startHub(t)
	conn := &fakeConn{}
	c := NewClient(h, conn)
	require.True(t, h.Register(c))

	done := make(chan struct{})
	go func() {
		c.WritePump()
		close(done)
	}()

	require.True(t, h.Send(c, []byte("one")))
	require.True(t, h.Send(c, []byte("two")))
	h.Unregister(c)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop")
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Equal(t, [][]byte{[]byte("one"), []byte("two")}, conn.written)
	assert.Equal(t, []gws.Opcode{gws.OpcodeText, gws.OpcodeText}, conn.opcodes)
	assert.Equal(t, []uint16{1000}, conn.closed)
}

func TestClientWritePumpWriteError(t *testing.T) {
	h := startHub(t)
	conn := &fakeConn{writeErr: errors.New("broken pipe")}
	c := NewClient(h, conn)
	require.True(t, h.Register(c))

	done := make(chan struct{})
	go func() {
		c.WritePump()
		close(done)
	}()
	require.True(t, h.Send(c, []byte("lost")))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop")
	}
	assert.Eventually(t, func() bool { return h.Len() == 0 }, time.Second, 5*time.Millisecond)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Empty(t, conn.closed)
}
