package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

// noGroup is the sentinel hashed in place of a missing group id.
const noGroup = int64(-1)

// idKeys is the precedence order for extracting the object identifier.
// The first key present and non-null wins, so re-ordered payloads and
// payloads with extra fields still map to the same fingerprint.
var idKeys = []string{
	"post_id",
	"comment_id",
	"photo_id",
	"video_id",
	"message_id",
	"object_id",
	"id",
	"user_id",
}

// Fingerprint derives a stable digest identifying the logical occurrence
// behind a webhook delivery. It hashes a fixed-order tuple of extracted
// fields rather than the raw JSON, so field order in the payload is
// irrelevant.
func Fingerprint(ev event.Inbound) string {
	var obj map[string]json.RawMessage
	// A payload that does not decode still gets a deterministic fingerprint
	// from its type and group alone.
	_ = json.Unmarshal(ev.Object, &obj)

	objectID, ok := extractID(obj)
	if !ok {
		objectID = 0
	}

	groupID := ev.GroupID
	if groupID == 0 {
		groupID = noGroup
	}

	ts, hasTS := extractTimestamp(obj)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|", ev.Type, objectID, groupID)
	if hasTS {
		fmt.Fprintf(h, "%d", ts)
	} else {
		h.Write([]byte("null"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func extractID(obj map[string]json.RawMessage) (int64, bool) {
	if obj == nil {
		return 0, false
	}
	// message_new nests the identifier one level down.
	if raw, ok := obj["message"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err == nil {
			if id, ok := firstID(inner); ok {
				return id, true
			}
		}
	}
	return firstID(obj)
}

func firstID(obj map[string]json.RawMessage) (int64, bool) {
	for _, key := range idKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var id int64
		if err := json.Unmarshal(raw, &id); err == nil {
			return id, true
		}
	}
	return 0, false
}

func extractTimestamp(obj map[string]json.RawMessage) (int64, bool) {
	if obj == nil {
		return 0, false
	}
	raw, ok := obj["date"]
	if !ok {
		if msg, found := obj["message"]; found {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(msg, &inner); err == nil {
				raw, ok = inner["date"]
			}
		}
	}
	if !ok {
		return 0, false
	}
	var ts int64
	if err := json.Unmarshal(raw, &ts); err != nil {
		return 0, false
	}
	return ts, true
}
