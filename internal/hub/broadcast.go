package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/soar/padtable/internal/gamepad"
)

const deltaCountSync = 100

// Snapshotter is the read side of the gamepad table.
type Snapshotter interface {
	Snapshot() gamepad.Snapshot
}

// Broadcaster samples the table every tick and pushes deltas to the hub, with
// a periodic full state so viewers never drift for long.
type Broadcaster struct {
	hub      *Hub
	table    Snapshotter
	tick     time.Duration
	fullSync time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	last       gamepad.Snapshot // last state sent to viewers
	lastSeq    uint64           // last table sequence examined
	seq        uint64
	deltaCount int
}

func NewBroadcaster(h *Hub, table Snapshotter, tick, fullSync time.Duration, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		hub:      h,
		table:    table,
		tick:     tick,
		fullSync: fullSync,
		logger:   logger,
	}
}

// Run samples the table until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()
	full := time.NewTicker(b.fullSync)
	defer full.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.step()
		case <-full.C:
			b.syncAll()
		}
	}
}

// step takes one snapshot and sends whatever changed since the last one.
func (b *Broadcaster) step() {
	snap := b.table.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()

	if snap.Seq == b.lastSeq {
		return
	}
	b.lastSeq = snap.Seq

	delta := gamepad.ComputeDelta(&b.last, &snap)
	if delta.IsEmpty() {
		return
	}
	b.last = snap
	b.deltaCount++

	if b.deltaCount >= deltaCountSync {
		b.sendFullLocked()
		return
	}
	b.seq++
	for _, p := range b.hub.Players() {
		pd := delta.ForPlayer(p)
		if pd.IsEmpty() {
			continue
		}
		if data, ok := b.marshal(NewDeltaMessage(b.seq, pd)); ok {
			b.hub.BroadcastToPlayer(data, p)
		}
	}
}

// syncAll sends the current state in full to every client.
func (b *Broadcaster) syncAll() {
	snap := b.table.Snapshot()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = snap
	b.lastSeq = snap.Seq
	b.sendFullLocked()
}

func (b *Broadcaster) sendFullLocked() {
	b.deltaCount = 0
	b.seq++
	for _, p := range b.hub.Players() {
		if data, ok := b.marshal(NewFullMessage(b.seq, NewState(&b.last, p))); ok {
			b.hub.BroadcastToPlayer(data, p)
		}
	}
}

// SendInitialState sends the last broadcast state to a newly connected client
// or one that switched players.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	if data, ok := b.marshal(NewFullMessage(b.seq, NewState(&b.last, c.Player()))); ok {
		b.hub.Send(c, data)
	}
}

func (b *Broadcaster) marshal(msg *WSMessage) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("marshal message", "type", msg.Type, "err", err)
		return nil, false
	}
	return data, true
}
