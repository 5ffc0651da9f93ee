package notify

import (
	"walletscan/internal/scanner"
	"walletscan/internal/sink"
	"walletscan/internal/stats"
)

var (
	_ scanner.Notifier = (*Telegram)(nil)
	_ scanner.Notifier = Nop{}
)

// Nop discards every event.
type Nop struct{}

func (Nop) ScanStarted(int, int)         {}
func (Nop) WalletFound(sink.FoundRecord) {}
func (Nop) EmptyBatch(uint64, uint64)    {}
func (Nop) ScanCompleted(stats.Snapshot) {}
