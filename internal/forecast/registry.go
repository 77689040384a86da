package forecast

import "sync"

// registry holds trained models in process, keyed by user ID. Every lookup
// and install goes through the locked map; there is no shared ambient model.
type registry struct {
	mu     sync.RWMutex
	models map[string]*Snapshot
}

func (r *registry) get(userID string) (*Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot, ok := r.models[userID]
	return snapshot, ok
}

func (r *registry) put(userID string, snapshot *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.models == nil {
		r.models = make(map[string]*Snapshot)
	}
	r.models[userID] = snapshot
}
