package engine

import "sync"

// handleMap assigns session-scoped integer handles to backend torrent
// hashes. Handles count up from 1 and are never reused; a forgotten handle
// is simply gone.
type handleMap struct {
	mu     sync.Mutex
	nextID uint64
	hashes map[uint64]string
}

func (h *handleMap) assign(hash string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hashes == nil {
		h.hashes = make(map[uint64]string)
	}
	h.nextID++
	h.hashes[h.nextID] = hash
	return h.nextID
}

// take removes and returns the hash for id.
func (h *handleMap) take(id uint64) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	hash, ok := h.hashes[id]
	if ok {
		delete(h.hashes, id)
	}
	return hash, ok
}
