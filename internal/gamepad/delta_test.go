package gamepad_test

import (
	"testing"

	"github.com/soar/padtable/internal/gamepad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDelta(t *testing.T) {
	tbl := gamepad.NewTable()
	tbl.Add(1)
	tbl.Add(2)
	tbl.Add(3)
	base := tbl.Snapshot()

	t.Run("unchanged", func(t *testing.T) {
		snap := tbl.Snapshot()
		assert.True(t, gamepad.ComputeDelta(&base, &snap).IsEmpty())
	})

	t.Run("small axis jitter is ignored", func(t *testing.T) {
		next := base
		next.Pads[0].Axes[gamepad.AxisLeftX] = 100
		assert.True(t, gamepad.ComputeDelta(&base, &next).IsEmpty())
	})

	t.Run("button change", func(t *testing.T) {
		next := base
		next.Pads[1].Buttons = gamepad.ButtonA.Mask()
		d := gamepad.ComputeDelta(&base, &next)
		require.Len(t, d.Slots, 1)
		assert.Equal(t, 1, d.Slots[0].Index)
		assert.Equal(t, gamepad.DeviceID(2), d.Slots[0].DeviceID)
		require.NotNil(t, d.Slots[0].Buttons)
		assert.Equal(t, gamepad.ButtonA.Mask(), *d.Slots[0].Buttons)
		assert.Nil(t, d.Slots[0].Axes)
		assert.Nil(t, d.Count)
	})

	t.Run("removal shifts later slots", func(t *testing.T) {
		other := gamepad.NewTable()
		other.Add(1)
		other.Add(2)
		other.Add(3)
		before := other.Snapshot()
		other.Remove(2)
		after := other.Snapshot()

		d := gamepad.ComputeDelta(&before, &after)
		require.NotNil(t, d.Count)
		assert.Equal(t, 2, *d.Count)
		assert.Equal(t, []gamepad.DeviceID{2}, d.Removed)
		require.Len(t, d.Slots, 1)
		assert.Equal(t, 1, d.Slots[0].Index)
		assert.Equal(t, gamepad.DeviceID(3), d.Slots[0].DeviceID)
		assert.NotNil(t, d.Slots[0].Buttons)
		assert.NotNil(t, d.Slots[0].Axes)
	})

	t.Run("for player", func(t *testing.T) {
		next := base
		next.Pads[0].Buttons = 1
		next.Pads[2].Buttons = 1
		d := gamepad.ComputeDelta(&base, &next)
		require.Len(t, d.Slots, 2)

		assert.Same(t, d, d.ForPlayer(0))
		p3 := d.ForPlayer(3)
		require.Len(t, p3.Slots, 1)
		assert.Equal(t, gamepad.DeviceID(3), p3.Slots[0].DeviceID)
		assert.Empty(t, d.ForPlayer(2).Slots)
	})
}
