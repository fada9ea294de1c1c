package session

import "sync"

// Observations is the monitor's latest view of confirmation depth per
// session. The orchestrator reads it when answering status queries so that
// a CheckPaymentStatus call can complete a session the monitor has already
// seen confirmed deeply enough.
type Observations struct {
	mu     sync.RWMutex
	depths map[string]int
}

func NewObservations() *Observations {
	return &Observations{depths: make(map[string]int)}
}

// Set records the latest observed confirmation depth for a session.
func (o *Observations) Set(sessionID string, confirmations int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.depths[sessionID] = confirmations
}

// Get returns the latest observed depth, if any observation exists.
func (o *Observations) Get(sessionID string) (int, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	d, ok := o.depths[sessionID]
	return d, ok
}

// Forget drops a session's observation once it is terminal.
func (o *Observations) Forget(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.depths, sessionID)
}
