package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueIsFIFO(t *testing.T) {
	var q Queue[int]
	assert.Empty(t, q.DrainAll())
	for i := 1; i <= 3; i++ {
		q.Push(i)
	}
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, []int{1, 2, 3}, q.DrainAll())
	assert.Equal(t, 0, q.Len())
	q.Push(4)
	assert.Equal(t, []int{4}, q.DrainAll())
}

func TestQueueConcurrentPush(t *testing.T) {
	var q Queue[int]
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(j)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.DrainAll(), 800)
}
