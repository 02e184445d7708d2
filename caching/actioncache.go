package caching

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"skat.com/server/protocol"
)

// ActionCache remembers the most recently applied action ids per player so
// a resent action is applied once.
type ActionCache struct {
	recent *lru.Cache
}

func NewActionCache(size int) (*ActionCache, error) {
	recent, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize action cache")
	}
	return &ActionCache{recent: recent}, nil
}

func key(player protocol.PlayerID, id protocol.ActionID) string {
	return fmt.Sprintf("%s/%d", player, id)
}

// Seen records the action and reports whether it was already recorded.
// NoActionID is never recorded.
func (c *ActionCache) Seen(player protocol.PlayerID, id protocol.ActionID) bool {
	if id == protocol.NoActionID {
		return false
	}
	seen, _ := c.recent.ContainsOrAdd(key(player, id), struct{}{})
	return seen
}

func (c *ActionCache) Len() int {
	return c.recent.Len()
}
