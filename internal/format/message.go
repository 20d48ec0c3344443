package format

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

// MessageNew formats a message_new event. chatID is the delivery target,
// needed because attachment media is pushed there while summarizing.
func (f *Formatter) MessageNew(ctx context.Context, ev event.Inbound, chatID int64) (event.Formatted, error) {
	var obj event.MessageObject
	if err := json.Unmarshal(ev.Object, &obj); err != nil || obj.Message == nil {
		return event.Formatted{
			Body: fmt.Sprintf("💬 (invalid object) new message\n<pre>%s</pre>", Escape(prettyJSON(ev.Object))),
			Mode: event.ModeHTML,
		}, nil
	}
	msg := obj.Message

	name := f.displayName(ctx, msg.FromID)

	text := "(no text)"
	if msg.Text != "" {
		text = Escape(msg.Text)
	}

	body := fmt.Sprintf("💬 New message from %s:\n%s", Escape(name), text)
	body += f.sum.Describe(ctx, msg.Attachments, chatID, "message attachment")

	return event.Formatted{Body: body, Mode: event.ModeHTML}, nil
}
