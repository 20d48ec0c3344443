package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type channelStub struct {
	mu    sync.Mutex
	sends []struct {
		chatID int64
		text   string
	}
	err error
}

func (c *channelStub) SendText(_ context.Context, chatID int64, text string, _ TextOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, struct {
		chatID int64
		text   string
	}{chatID, text})
	return c.err
}

func (c *channelStub) SendMedia(context.Context, int64, MediaKind, []byte, string) error {
	return nil
}

func (c *channelStub) sentTo(chatID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sends {
		if s.chatID == chatID {
			n++
		}
	}
	return n
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeliverFirstAttemptSucceeds(t *testing.T) {
	ch := &channelStub{}
	d := NewDeliverer(ch, 999, discard())

	ok := d.Deliver(context.Background(), 1, event.Formatted{Body: "hello"})

	require.True(t, ok)
	assert.Equal(t, 1, ch.sentTo(1))
	assert.Equal(t, 0, ch.sentTo(999), "no debug traffic on success")
}

func TestDeliverExhaustsRetries(t *testing.T) {
	ch := &channelStub{err: errors.New("boom")}
	d := NewDeliverer(ch, 999, discard())

	var waits []time.Duration
	d.sleep = func(dur time.Duration) { waits = append(waits, dur) }

	ok := d.Deliver(context.Background(), 1, event.Formatted{Body: "hello"})

	require.False(t, ok)
	assert.Equal(t, 3, ch.sentTo(1), "exactly 3 attempts at the target")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits, "linear backoff between attempts")
	// Deliver waits on its notify goroutines before returning, so the
	// counts are settled here: one debug notification per failed attempt.
	assert.Equal(t, 3, ch.sentTo(999))
}

func TestDeliverNoDebugChatConfigured(t *testing.T) {
	ch := &channelStub{err: errors.New("boom")}
	d := NewDeliverer(ch, 0, discard())
	d.sleep = func(time.Duration) {}

	ok := d.Deliver(context.Background(), 1, event.Formatted{Body: "x"})

	require.False(t, ok)
	assert.Equal(t, 3, ch.sentTo(1))
	assert.Len(t, ch.sends, 3, "no debug sends when unconfigured")
}

func TestDeliverDebugChatEqualsTarget(t *testing.T) {
	ch := &channelStub{err: errors.New("boom")}
	d := NewDeliverer(ch, 1, discard())
	d.sleep = func(time.Duration) {}

	d.Deliver(context.Background(), 1, event.Formatted{Body: "x"})

	assert.Len(t, ch.sends, 3, "debug mirroring skipped when it is the target chat")
}

func TestNotifyOperator(t *testing.T) {
	ch := &channelStub{}
	d := NewDeliverer(ch, 999, discard())

	d.NotifyOperator("something broke")

	require.Equal(t, 1, ch.sentTo(999))
	assert.Contains(t, ch.sends[0].text, "something broke")
}
