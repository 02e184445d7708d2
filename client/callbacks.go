package client

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	cmap "github.com/orcaman/concurrent-map"
	"skat.com/server/protocol"
)

// Callback runs on the async worker with the event that answered an action.
// ctx scopes work the callback enqueues so it runs before later units.
type Callback func(ctx context.Context, c *Client, e protocol.Event)

// pendingCallbacks maps outstanding action ids to their callbacks. It has
// its own locking, separate from the mirrored state.
type pendingCallbacks struct {
	m cmap.ConcurrentMap
}

func newPendingCallbacks() *pendingCallbacks {
	return &pendingCallbacks{m: cmap.New()}
}

func callbackKey(id protocol.ActionID) string {
	return strconv.FormatInt(int64(id), 10)
}

// register panics when id already has a callback.
func (p *pendingCallbacks) register(id protocol.ActionID, cb Callback) {
	if !p.m.SetIfAbsent(callbackKey(id), cb) {
		panic(fmt.Sprintf("callback for action %d is already registered", id))
	}
}

func (p *pendingCallbacks) resolve(id protocol.ActionID) (Callback, bool) {
	v, ok := p.m.Pop(callbackKey(id))
	if !ok {
		return nil, false
	}
	return v.(Callback), true
}

type pendingCallback struct {
	id protocol.ActionID
	cb Callback
}

// drain removes every pending callback, ordered by action id.
func (p *pendingCallbacks) drain() []pendingCallback {
	var drained []pendingCallback
	for _, key := range p.m.Keys() {
		v, ok := p.m.Pop(key)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		drained = append(drained, pendingCallback{id: protocol.ActionID(id), cb: v.(Callback)})
	}
	sort.Slice(drained, func(i, j int) bool { return drained[i].id < drained[j].id })
	return drained
}

func (p *pendingCallbacks) count() int {
	return p.m.Count()
}
