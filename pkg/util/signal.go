package util

import "sync"

type SigHandler func(sender any, params ...any)

// Signals is a tiny synchronous event bus used to decouple model events
// (alert created, user created) from their side effects.
type Signals struct {
	mu       sync.RWMutex
	handlers map[string][]SigHandler
}

var globalSignals = NewSignals()

func NewSignals() *Signals {
	return &Signals{handlers: make(map[string][]SigHandler)}
}

func Sig() *Signals {
	return globalSignals
}

func (s *Signals) Connect(event string, handler SigHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[event] = append(s.handlers[event], handler)
}

func (s *Signals) Emit(event string, sender any, params ...any) {
	s.mu.RLock()
	hs := append([]SigHandler(nil), s.handlers[event]...)
	s.mu.RUnlock()
	for _, h := range hs {
		h(sender, params...)
	}
}

// Clear drops every handler of event.
func (s *Signals) Clear(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, event)
}
