// Package notify implements the outbound notification port. The scan engine
// enqueues events and moves on; delivery happens on a single sender goroutine
// and failures are logged, never surfaced to the scan.
package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"walletscan/internal/sink"
	"walletscan/internal/stats"
	"walletscan/pkg/logx"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	sendTimeout    = 10 * time.Second
	queueSize      = 64
)

// Telegram pushes scan events to a Telegram chat via the bot API.
type Telegram struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client

	queue chan string
	done  chan struct{}
}

// NewTelegramFromEnv builds a notifier from TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID. Second return is false when either is unset.
func NewTelegramFromEnv() (*Telegram, bool) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		return nil, false
	}
	return NewTelegram(defaultAPIBase, token, chatID), true
}

// NewTelegram starts the sender goroutine. Call Close to drain and stop it.
func NewTelegram(apiBase, botToken, chatID string) *Telegram {
	t := &Telegram{
		apiBase:  strings.TrimRight(apiBase, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: sendTimeout},
		queue:    make(chan string, queueSize),
		done:     make(chan struct{}),
	}
	go t.senderLoop()
	return t
}

// Close stops accepting events, drains the queue and waits for the sender.
func (t *Telegram) Close() {
	close(t.queue)
	<-t.done
}

func (t *Telegram) senderLoop() {
	defer close(t.done)
	for msg := range t.queue {
		t.send(msg)
	}
}

// enqueue never blocks: when the queue is full the event is dropped.
func (t *Telegram) enqueue(msg string) {
	select {
	case t.queue <- msg:
	default:
		logx.S().Debugw("notification dropped, queue full")
	}
}

func (t *Telegram) send(msg string) {
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {msg},
		"parse_mode": {"HTML"},
	}
	resp, err := t.client.PostForm(t.apiBase+"/bot"+t.botToken+"/sendMessage", form)
	if err != nil {
		logx.S().Debugw("telegram send failed", "err", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logx.S().Debugw("telegram send rejected", "status", resp.StatusCode)
	}
}

func (t *Telegram) ScanStarted(count, workers int) {
	t.enqueue(fmt.Sprintf(
		"🚀 <b>Scan started</b>\n\n🎯 Target: %d wallets\n⚡ Workers: %d\n🕐 Started: %s",
		count, workers, time.Now().Format("2006-01-02 15:04:05"),
	))
}

func (t *Telegram) WalletFound(rec sink.FoundRecord) {
	var coins strings.Builder
	for sym, amt := range rec.Coins {
		fmt.Fprintf(&coins, "  • %s: %s\n", sym, amt.String())
	}
	t.enqueue(fmt.Sprintf(
		"🎉 <b>WALLET FOUND!</b>\n\n💰 Balance: $%s\n📍 Address: <code>%s</code>\n🔑 Private key: <code>%s</code>\n📝 Phrase: <code>%s</code>\n\n💎 Coins:\n%s🌐 Chains: %s\n📊 Transactions: %d\n⏰ Found at: %s",
		rec.BalanceUSD.StringFixed(2), rec.Address, rec.PrivateKey, rec.Phrase,
		coins.String(), strings.Join(rec.Chains, ", "), rec.Nonce,
		rec.FoundAt.Format(time.RFC3339),
	))
}

func (t *Telegram) EmptyBatch(empty, checked uint64) {
	t.enqueue(fmt.Sprintf(
		"📭 <b>Empty wallets report</b>\n\n❌ Empty: %d\n📊 Total checked: %d",
		empty, checked,
	))
}

func (t *Telegram) ScanCompleted(snap stats.Snapshot) {
	t.enqueue(fmt.Sprintf(
		"✅ <b>Scan completed</b>\n\n• Generated: %d\n• Checked: %d\n• Found: %d\n• Empty: %d\n• Errors: %d\n• Speed: %.2f wallet/s\n• Runtime: %s",
		snap.Generated, snap.Checked, snap.Found, snap.Empty, snap.Errors,
		snap.Rate(), snap.Elapsed.Round(time.Millisecond),
	))
}
