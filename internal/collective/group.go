// Package collective provides the in-process peer communication primitives
// the compositor and control layer use to simulate a fixed group of N
// cooperating peers: tag-matched point-to-point Send/Recv, Broadcast, and
// Barrier. Each peer runs as a goroutine; a Group owns the channels that
// connect them.
package collective

import (
	"fmt"
	"sync"

	"github.com/piatra-institute/morviq/internal/channel"
)

// message is one tag-matched payload in flight between two ranks.
type message struct {
	from, tag int
	data      []byte
}

// Group wires size peers (ranks 0..size-1) together. It is built once per
// run and shared by every peer goroutine; Group itself holds no per-peer
// mutable state beyond the channels.
type Group struct {
	size int

	mu    sync.Mutex
	inbox []channel.Channel[message]

	barrier   sync.WaitGroup
	barrierMu sync.Mutex
	barrierN  int
	barrierCh chan struct{}

	bcastMu sync.Mutex
	bcastCh map[int]chan []byte
}

// NewGroup constructs a Group of the given size. size must be >= 1.
func NewGroup(size int) (*Group, error) {
	if size < 1 {
		return nil, fmt.Errorf("collective: group size must be >= 1, got %d", size)
	}
	g := &Group{
		size:      size,
		inbox:     make([]channel.Channel[message], size),
		bcastCh:   make(map[int]chan []byte),
		barrierCh: make(chan struct{}),
	}
	for i := range g.inbox {
		g.inbox[i] = channel.New[message](size * 4)
	}
	return g, nil
}

// Size returns the number of peers in the group.
func (g *Group) Size() int { return g.size }

// Rank returns a View bound to the given rank, the handle each peer
// goroutine uses to talk to the rest of the group.
func (g *Group) Rank(rank int) *View {
	return &View{group: g, rank: rank}
}

// View is a single peer's handle into its Group.
type View struct {
	group *Group
	rank  int
}

// Rank returns the view's own rank.
func (v *View) Rank() int { return v.rank }

// Size returns the number of peers in the view's group.
func (v *View) Size() int { return v.group.size }

// Send delivers data to peer `to`, tagged with tag, matched on the
// receiving end's (from, tag) pair. Send does not block past handing the
// message to the destination's inbox channel.
func (v *View) Send(to, tag int, data []byte) error {
	if to < 0 || to >= v.group.size {
		return fmt.Errorf("collective: send to out-of-range rank %d", to)
	}
	v.group.inbox[to].Send(message{from: v.rank, tag: tag, data: data})
	return nil
}

// Recv blocks until a message tagged with tag arrives from rank `from`.
// Messages with non-matching (from, tag) are requeued for later Recv calls
// on the same view.
func (v *View) Recv(from, tag int) ([]byte, error) {
	ch := v.group.inbox[v.rank]
	var deferred []message
	defer func() {
		for _, m := range deferred {
			ch.Send(m)
		}
	}()
	for m := range ch.Receive() {
		if m.from == from && m.tag == tag {
			return m.data, nil
		}
		deferred = append(deferred, m)
	}
	return nil, fmt.Errorf("collective: inbox closed before matching message arrived")
}

// Broadcast, called by the designated root rank, fans data out to every
// other rank. Non-root ranks call Broadcast too; only the root's data
// argument is used, all ranks receive the same return value.
func (v *View) Broadcast(root int, data []byte) ([]byte, error) {
	v.group.bcastMu.Lock()
	ch, ok := v.group.bcastCh[root]
	if !ok {
		ch = make(chan []byte, v.group.size)
		v.group.bcastCh[root] = ch
	}
	v.group.bcastMu.Unlock()

	if v.rank == root {
		for i := 0; i < v.group.size-1; i++ {
			ch <- data
		}
		return data, nil
	}
	out, ok := <-ch
	if !ok {
		return nil, fmt.Errorf("collective: broadcast channel closed")
	}
	return out, nil
}

// Barrier blocks until every rank in the group has called Barrier for this
// round, then releases all of them together.
func (v *View) Barrier() {
	v.group.barrierMu.Lock()
	v.group.barrierN++
	reached := v.group.barrierN == v.group.size
	ch := v.group.barrierCh
	if reached {
		v.group.barrierN = 0
		v.group.barrierCh = make(chan struct{})
	}
	v.group.barrierMu.Unlock()

	if reached {
		close(ch)
		return
	}
	<-ch
}
