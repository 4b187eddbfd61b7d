package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/lxzan/gws"

	"github.com/soar/padtable/internal/gamepad"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidPlayer  = errors.New("invalid player index")
)

// Conn is the write side of a websocket connection. *gws.Conn satisfies it.
type Conn interface {
	WriteMessage(opcode gws.Opcode, payload []byte) error
	WriteClose(code uint16, reason []byte) error
}

var _ Conn = (*gws.Conn)(nil)

// StateSender pushes the current state to a single client.
type StateSender interface {
	SendInitialState(c *Client)
}

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn Conn
	send chan []byte
	// player is the 1-based slot this client follows, 0 for all.
	player atomic.Int32
}

func NewClient(hub *Hub, conn Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

func (c *Client) Player() int {
	return int(c.player.Load())
}

func (c *Client) SetPlayer(player int) {
	c.player.Store(int32(player))
}

// trySend queues msg without blocking and reports whether it was queued.
// Callers hold the hub lock so send cannot be closed underneath them.
func (c *Client) trySend(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// WritePump sends queued messages until the hub closes the send channel or a
// write fails.
func (c *Client) WritePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(gws.OpcodeText, msg); err != nil {
			c.hub.logger.Debug("websocket write failed", "err", err)
			c.hub.Unregister(c)
			return
		}
	}
	if err := c.conn.WriteClose(1000, nil); err != nil {
		c.hub.logger.Debug("websocket close failed", "err", err)
	}
}

// HandleMessage processes one client command.
func (c *Client) HandleMessage(data []byte, states StateSender) error {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("parse client message: %w", err)
	}

	switch msg.Type {
	case TypeSelectPlayer:
		if msg.PlayerIndex < 0 || msg.PlayerIndex > gamepad.MaxSlots {
			c.reply(NewErrorMessage(fmt.Errorf("%w: %d", ErrInvalidPlayer, msg.PlayerIndex)))
			return fmt.Errorf("%w: %d", ErrInvalidPlayer, msg.PlayerIndex)
		}
		c.SetPlayer(msg.PlayerIndex)
		c.reply(NewPlayerSelectedMessage(msg.PlayerIndex))
		if states != nil {
			states.SendInitialState(c)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
}

func (c *Client) reply(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.Send(c, data)
}
