package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorCountsByStatusClass(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(404, 30*time.Millisecond)
	c.Record(409, 5*time.Millisecond)
	c.Record(500, 75*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, uint64(4), snap.RequestsTotal)
	assert.Equal(t, uint64(2), snap.ClientErrors)
	assert.Equal(t, uint64(1), snap.ServerErrors)
	assert.Equal(t, uint64(120), snap.TotalDurationMs)
	assert.Equal(t, uint64(75), snap.MaxDurationMs)
	assert.InDelta(t, 30.0, snap.AvgDurationMs, 0.001)
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Record(200, time.Duration(i)*time.Millisecond)
		}(i)
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, uint64(50), snap.RequestsTotal)
	assert.Equal(t, uint64(49), snap.MaxDurationMs)
}
