package hub

import (
	"time"

	"github.com/soar/padtable/internal/gamepad"
)

// Message types.
const (
	TypeFull           = "full"
	TypeDelta          = "delta"
	TypePlayerSelected = "player_selected"
	TypeError          = "error"

	TypeSelectPlayer = "select_player"
)

// State is the full table as sent to viewers. Player is the 1-based slot the
// state was narrowed to, or 0 for every slot.
type State struct {
	Player int            `json:"player,omitempty"`
	Count  int            `json:"count"`
	Slots  []gamepad.Slot `json:"slots"`
}

// NewState narrows snap to one player. A player beyond the occupied slots
// yields an empty slot list.
func NewState(snap *gamepad.Snapshot, player int) *State {
	s := &State{Player: player, Count: snap.Count, Slots: []gamepad.Slot{}}
	switch {
	case player <= 0:
		s.Slots = append(s.Slots, snap.Slots()...)
	case player <= snap.Count:
		s.Slots = append(s.Slots, snap.Pads[player-1])
	}
	return s
}

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type        string                `json:"type"`
	Seq         uint64                `json:"seq"`
	Timestamp   int64                 `json:"timestamp"` // unix millis
	Data        *State                `json:"data,omitempty"`
	Changes     *gamepad.DeltaChanges `json:"changes,omitempty"`
	PlayerIndex *int                  `json:"playerIndex,omitempty"`
	Error       string                `json:"error,omitempty"`
}

func NewFullMessage(seq uint64, state *State) *WSMessage {
	return &WSMessage{
		Type:      TypeFull,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      state,
	}
}

func NewDeltaMessage(seq uint64, changes *gamepad.DeltaChanges) *WSMessage {
	return &WSMessage{
		Type:      TypeDelta,
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Changes:   changes,
	}
}

// NewPlayerSelectedMessage confirms a select_player request.
func NewPlayerSelectedMessage(player int) *WSMessage {
	return &WSMessage{
		Type:        TypePlayerSelected,
		Timestamp:   time.Now().UnixMilli(),
		PlayerIndex: &player,
	}
}

func NewErrorMessage(err error) *WSMessage {
	return &WSMessage{
		Type:      TypeError,
		Timestamp: time.Now().UnixMilli(),
		Error:     err.Error(),
	}
}

// ClientMessage represents a message sent from the client to the server.
type ClientMessage struct {
	Type        string `json:"type"`
	PlayerIndex int    `json:"playerIndex"`
}
