package control

import (
	"sync"

	"github.com/piatra-institute/morviq/pkg/core"
)

// State is the mutex-guarded owner of the live ControlState. The TCP
// command server mutates it from its own goroutine; the render loop
// reads a full-value snapshot at the top of each frame rather than
// holding the lock across a render pass.
type State struct {
	mu    sync.RWMutex
	value core.ControlState
}

// NewState creates a State seeded with core.DefaultControlState.
func NewState() *State {
	return &State{value: core.DefaultControlState()}
}

// Get returns a copy of the current ControlState.
func (s *State) Get() core.ControlState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the current ControlState wholesale.
func (s *State) Set(v core.ControlState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

// Update applies fn to the current state in place while holding the
// write lock, so callers can change one field without racing a
// concurrent Get.
func (s *State) Update(fn func(*core.ControlState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.value)
}
