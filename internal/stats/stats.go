package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds the process-wide scan counters. All increments are atomic, so a
// single Stats value is shared by every worker and read concurrently by the
// progress reporter. Counters are reset by starting a new batch with Reset.
type Stats struct {
	generated atomic.Uint64
	checked   atomic.Uint64
	found     atomic.Uint64
	empty     atomic.Uint64
	errors    atomic.Uint64

	startTime atomic.Int64 // unix nanos
	lastFound atomic.Value // string address
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Generated uint64
	Checked   uint64
	Found     uint64
	Empty     uint64
	Errors    uint64
	Elapsed   time.Duration
	LastFound string
}

func New() *Stats {
	s := &Stats{}
	s.Reset()
	return s
}

// Reset zeroes all counters and restarts the clock.
func (s *Stats) Reset() {
	s.generated.Store(0)
	s.checked.Store(0)
	s.found.Store(0)
	s.empty.Store(0)
	s.errors.Store(0)
	s.startTime.Store(time.Now().UnixNano())
	s.lastFound.Store("")
}

func (s *Stats) IncGenerated() { s.generated.Add(1) }
func (s *Stats) IncChecked()   { s.checked.Add(1) }
func (s *Stats) IncEmpty()     { s.empty.Add(1) }
func (s *Stats) IncErrors()    { s.errors.Add(1) }

// IncFound records one found wallet and remembers its address for reporting.
func (s *Stats) IncFound(address string) {
	s.found.Add(1)
	s.lastFound.Store(address)
}

func (s *Stats) Generated() uint64 { return s.generated.Load() }
func (s *Stats) Checked() uint64   { return s.checked.Load() }

func (s *Stats) Snapshot() Snapshot {
	last, _ := s.lastFound.Load().(string)
	return Snapshot{
		Generated: s.generated.Load(),
		Checked:   s.checked.Load(),
		Found:     s.found.Load(),
		Empty:     s.empty.Load(),
		Errors:    s.errors.Load(),
		Elapsed:   time.Since(time.Unix(0, s.startTime.Load())),
		LastFound: last,
	}
}

// Rate returns checked wallets per second for the given snapshot.
func (sn Snapshot) Rate() float64 {
	if sn.Elapsed <= 0 {
		return 0
	}
	return float64(sn.Checked) / sn.Elapsed.Seconds()
}
