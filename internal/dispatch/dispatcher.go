// Package dispatch routes inbound events through dedup, toggles and
// formatting into delivery. It is the recovery boundary: no error raised
// while processing one event escapes to the caller or halts the process.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/audit"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/dedup"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/format"
)

// Outcome is the terminal state of one dispatch.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeDuplicate
	OutcomeDisabled
	OutcomeFailed
)

// PostGuard is the long-horizon dedup check (atomic check-and-set).
type PostGuard interface {
	FirstSeen(ctx context.Context, key string) bool
}

// Toggles exposes the admin-controlled per-type flags and delivery target.
type Toggles interface {
	IsEnabled(eventType string) bool
	MainTarget() int64
}

// Sender is the reliable delivery layer.
type Sender interface {
	Deliver(ctx context.Context, chatID int64, msg event.Formatted) bool
	NotifyOperator(text string)
}

// Auditor records pipeline outcomes, fire-and-forget.
type Auditor interface {
	Record(eventType string, groupID int64, outcome, detail string)
}

type Dispatcher struct {
	cache   *dedup.Cache
	guard   PostGuard
	toggles Toggles
	fmtr    *format.Formatter
	sender  Sender
	auditor Auditor
	log     *slog.Logger
}

func New(cache *dedup.Cache, guard PostGuard, toggles Toggles, fmtr *format.Formatter, sender Sender, auditor Auditor, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		cache:   cache,
		guard:   guard,
		toggles: toggles,
		fmtr:    fmtr,
		sender:  sender,
		auditor: auditor,
		log:     log,
	}
}

// Dispatch runs one event through the pipeline. The short-horizon cache is
// remembered only after successful delivery, so a crash mid-processing
// leaves the event eligible for a legitimate upstream retry.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Inbound) (outcome Outcome) {
	eventsReceived.Inc()

	defer func() {
		if p := recover(); p != nil {
			d.log.Error("panic while processing event", "type", ev.Type, "panic", p)
			d.sender.NotifyOperator(fmt.Sprintf("processing %q event panicked: %v", ev.Type, p))
			d.auditor.Record(ev.Type, ev.GroupID, audit.OutcomeError, fmt.Sprintf("panic: %v", p))
			outcome = OutcomeFailed
		}
	}()

	fp := dedup.Fingerprint(ev)
	if d.cache.Seen(fp) {
		duplicatesSkipped.Inc()
		d.log.Debug("duplicate delivery collapsed", "type", ev.Type, "fingerprint", fp)
		d.auditor.Record(ev.Type, ev.GroupID, audit.OutcomeDuplicate, "short horizon")
		return OutcomeDuplicate
	}

	if key, ok := postGuardKey(ev); ok && !d.guard.FirstSeen(ctx, key) {
		duplicatesSkipped.Inc()
		d.log.Info("post already relayed, skipping", "type", ev.Type, "key", key)
		d.auditor.Record(ev.Type, ev.GroupID, audit.OutcomeDuplicate, "long horizon")
		return OutcomeDuplicate
	}

	if !d.toggles.IsEnabled(ev.Type) {
		disabledSkipped.Inc()
		d.log.Debug("event type disabled", "type", ev.Type)
		return OutcomeDisabled
	}

	target := d.toggles.MainTarget()

	msg, err := d.formatEvent(ctx, ev, target)
	if err != nil {
		d.log.Error("formatting failed", "type", ev.Type, "error", err)
		d.sender.NotifyOperator(fmt.Sprintf("formatting %q event failed: %v", ev.Type, err))
		d.auditor.Record(ev.Type, ev.GroupID, audit.OutcomeError, err.Error())
		return OutcomeFailed
	}

	if !d.sender.Deliver(ctx, target, msg) {
		deliveryFailures.Inc()
		d.log.Error("delivery exhausted retries", "type", ev.Type, "chat_id", target)
		d.auditor.Record(ev.Type, ev.GroupID, audit.OutcomeError, "delivery exhausted")
		return OutcomeFailed
	}

	d.cache.Remember(fp)
	eventsDelivered.Inc()
	d.auditor.Record(ev.Type, ev.GroupID, audit.OutcomeDelivered, "")
	return OutcomeDelivered
}

func (d *Dispatcher) formatEvent(ctx context.Context, ev event.Inbound, target int64) (event.Formatted, error) {
	switch event.KindOf(ev.Type) {
	case event.KindLikeAdd:
		return d.fmtr.Like(ctx, ev, false)
	case event.KindLikeRemove:
		return d.fmtr.Like(ctx, ev, true)
	case event.KindMessageNew:
		return d.fmtr.MessageNew(ctx, ev, target)
	case event.KindWallPostNew:
		return d.fmtr.WallPost(ctx, ev, target)
	default:
		unknownKinds.Inc()
		return d.fmtr.Unknown(ev), nil
	}
}

// postGuardKey extracts the long-horizon dedup key for events that carry a
// wall post identity.
func postGuardKey(ev event.Inbound) (string, bool) {
	if event.KindOf(ev.Type) != event.KindWallPostNew {
		return "", false
	}
	var post struct {
		ID      int64 `json:"id"`
		OwnerID int64 `json:"owner_id"`
	}
	if err := json.Unmarshal(ev.Object, &post); err != nil || post.ID == 0 || post.OwnerID == 0 {
		return "", false
	}
	return dedup.PostKey(post.OwnerID, post.ID), true
}
