package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

// Unknown builds the generic notification for event types without a
// dedicated formatter. It never fails: unrecognized content must still
// surface for manual triage.
func (f *Formatter) Unknown(ev event.Inbound) event.Formatted {
	return event.Formatted{
		Body: fmt.Sprintf("⚠️ Unhandled event type %q\n<pre>%s</pre>", ev.Type, Escape(prettyJSON(ev.Object))),
		Mode: event.ModeHTML,
	}
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
