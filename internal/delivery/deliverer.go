package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

const (
	maxAttempts = 3
	// Linear backoff: 1s after the first failure, 2s after the second.
	backoffStep      = time.Second
	debugSendTimeout = 5 * time.Second
)

// Deliverer sends formatted messages with bounded retry. The retry budget
// lives entirely here; callers treat a false return as terminal for the
// event and never retry at a higher layer.
type Deliverer struct {
	ch        Channel
	debugChat int64
	log       *slog.Logger

	// sleep is swapped out by tests.
	sleep func(time.Duration)
}

func NewDeliverer(ch Channel, debugChat int64, log *slog.Logger) *Deliverer {
	return &Deliverer{
		ch:        ch,
		debugChat: debugChat,
		log:       log,
		sleep:     time.Sleep,
	}
}

// Deliver sends the message to chatID, retrying transient failures up to
// maxAttempts with linearly increasing backoff. Every failed attempt is
// logged and mirrored to the debug chat best-effort. Returns whether the
// message was eventually sent. In-flight attempts run to completion during
// shutdown; only the backoff wait observes ctx.
func (d *Deliverer) Deliver(ctx context.Context, chatID int64, msg event.Formatted) bool {
	var notify sync.WaitGroup
	defer notify.Wait()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			d.sleep(time.Duration(attempt-1) * backoffStep)
		}

		err := d.ch.SendText(ctx, chatID, msg.Body, TextOptions{Mode: msg.Mode})
		if err == nil {
			if attempt > 1 {
				d.log.Info("delivered after retry", "chat_id", chatID, "attempt", attempt)
			}
			return true
		}

		d.log.Error("send failed", "chat_id", chatID, "attempt", attempt, "error", err)

		if d.debugChat != 0 && d.debugChat != chatID {
			notify.Add(1)
			go func(attempt int, sendErr error) {
				defer notify.Done()
				d.notifyDebug(attempt, chatID, sendErr)
			}(attempt, err)
		}
	}

	return false
}

// notifyDebug mirrors a send failure to the operator chat. Failures here
// are logged and swallowed; the debug chat must never affect the pipeline.
func (d *Deliverer) notifyDebug(attempt int, chatID int64, sendErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), debugSendTimeout)
	defer cancel()

	body := fmt.Sprintf("delivery to chat %d failed (attempt %d/%d): %v", chatID, attempt, maxAttempts, sendErr)
	if err := d.ch.SendText(ctx, d.debugChat, body, TextOptions{}); err != nil {
		d.log.Warn("debug notification failed", "error", err)
	}
}

// NotifyOperator sends an out-of-band message to the debug chat when one is
// configured. Used by the dispatcher for failure notifications.
func (d *Deliverer) NotifyOperator(text string) {
	if d.debugChat == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), debugSendTimeout)
	defer cancel()

	if err := d.ch.SendText(ctx, d.debugChat, text, TextOptions{}); err != nil {
		d.log.Warn("operator notification failed", "error", err)
	}
}
