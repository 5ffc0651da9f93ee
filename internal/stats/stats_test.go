package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcurrentIncrementsAreExact(t *testing.T) {
	s := New()

	const workers = 16
	const perWorker = 1000
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				s.IncGenerated()
				s.IncChecked()
				s.IncEmpty()
				s.IncErrors()
				s.IncFound("0xlast")
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, uint64(workers*perWorker), snap.Generated)
	assert.Equal(t, uint64(workers*perWorker), snap.Checked)
	assert.Equal(t, uint64(workers*perWorker), snap.Found)
	assert.Equal(t, uint64(workers*perWorker), snap.Empty)
	assert.Equal(t, uint64(workers*perWorker), snap.Errors)
	assert.Equal(t, "0xlast", snap.LastFound)
}

func TestResetZeroesCounters(t *testing.T) {
	s := New()
	s.IncGenerated()
	s.IncFound("0xabc")
	s.Reset()

	snap := s.Snapshot()
	assert.Zero(t, snap.Generated)
	assert.Zero(t, snap.Found)
	assert.Empty(t, snap.LastFound)
}

func TestSnapshotRate(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.IncChecked()
	}
	snap := s.Snapshot()
	assert.Greater(t, snap.Rate(), 0.0)
	assert.Positive(t, snap.Elapsed)
}
