package gamepad

// registry maps device handles to dense slot indexes. It also owns the
// occupied count so that index assignment and counting cannot drift apart.
// It is not safe for concurrent use; Table serializes access.
type registry struct {
	index map[DeviceID]int
	count int
}

func newRegistry() registry {
	return registry{index: make(map[DeviceID]int, MaxSlots)}
}

// register returns the slot for id, assigning the next free one if needed.
// It reports false without mutating anything when the table is full.
func (r *registry) register(id DeviceID) (int, bool) {
	if i, ok := r.index[id]; ok {
		return i, true
	}
	if r.count >= MaxSlots {
		return -1, false
	}
	i := r.count
	r.index[id] = i
	r.count++
	return i, true
}

// unregister drops id and returns the index it occupied. The count is left
// for the caller to adjust once compaction is done.
func (r *registry) unregister(id DeviceID) (int, bool) {
	i, ok := r.index[id]
	if !ok {
		return -1, false
	}
	delete(r.index, id)
	return i, true
}

func (r *registry) lookup(id DeviceID) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

func (r *registry) move(id DeviceID, to int) {
	r.index[id] = to
}
