package control

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piatra-institute/morviq/pkg/core"
)

func TestNewStateSeedsDefaultControlState(t *testing.T) {
	s := NewState()
	assert.Equal(t, core.DefaultControlState(), s.Get())
}

func TestSetReplacesWholeState(t *testing.T) {
	s := NewState()
	s.Set(core.ControlState{TimeStep: 9})
	assert.Equal(t, 9, s.Get().TimeStep)
}

func TestUpdateMutatesOneFieldWithoutRacing(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Update(func(cs *core.ControlState) { cs.TimeStep = n })
		}(i)
	}
	wg.Wait()
	assert.GreaterOrEqual(t, s.Get().TimeStep, 0)
}
