package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skat.com/server/protocol"
)

func noop(context.Context, *Client, protocol.Event) {}

func TestPendingCallbacksRejectDuplicateIDs(t *testing.T) {
	p := newPendingCallbacks()
	p.register(7, noop)
	assert.Panics(t, func() { p.register(7, noop) })

	_, ok := p.resolve(7)
	require.True(t, ok)
	_, ok = p.resolve(7)
	assert.False(t, ok)
	assert.NotPanics(t, func() { p.register(7, noop) })
}

func TestPendingCallbacksDrainInIDOrder(t *testing.T) {
	p := newPendingCallbacks()
	for _, id := range []protocol.ActionID{30, 10, 20} {
		p.register(id, noop)
	}
	drained := p.drain()
	require.Len(t, drained, 3)
	assert.Equal(t, protocol.ActionID(10), drained[0].id)
	assert.Equal(t, protocol.ActionID(20), drained[1].id)
	assert.Equal(t, protocol.ActionID(30), drained[2].id)
	assert.Equal(t, 0, p.count())
}
