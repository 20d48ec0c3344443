package format

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/vk"
)

// Human labels for likeable object types. Anything else gets a generic
// "object of type X" fallback.
var objectLabels = map[string]string{
	"post":          "a post",
	"comment":       "a comment",
	"photo":         "a photo",
	"video":         "a video",
	"note":          "a note",
	"market":        "a market item",
	"topic_comment": "a discussion comment",
}

// Like formats like_add and like_remove events.
func (f *Formatter) Like(ctx context.Context, ev event.Inbound, removed bool) (event.Formatted, error) {
	var obj event.LikeObject
	if err := json.Unmarshal(ev.Object, &obj); err != nil || obj.LikerID == 0 || obj.ObjectType == "" || obj.ObjectID == 0 {
		// Required fields missing: flag but still report.
		return event.Formatted{
			Body: fmt.Sprintf("❤️ (invalid object) like event\n<pre>%s</pre>", Escape(prettyJSON(ev.Object))),
			Mode: event.ModeHTML,
		}, nil
	}

	// Group-owned content often omits the owner; the platform convention
	// is that the owner is then the negated group id.
	owner := obj.ObjectOwnerID
	if owner == 0 {
		owner = -ev.GroupID
	}

	name := f.displayName(ctx, obj.LikerID)

	label, ok := objectLabels[obj.ObjectType]
	if !ok {
		label = fmt.Sprintf("an object of type %s", Escape(obj.ObjectType))
	}

	verb := "liked"
	icon := "❤️"
	if removed {
		verb = "removed a like from"
		icon = "💔"
	}

	body := fmt.Sprintf("%s %s %s %s: %s", icon, Escape(name), verb, label, objectLink(owner, &obj))
	body += f.countSuffix(ctx, owner, &obj)

	return event.Formatted{Body: body, Mode: event.ModeHTML}, nil
}

// displayName resolves the liker's name, degrading to an id-based label.
func (f *Formatter) displayName(ctx context.Context, userID int64) string {
	name, err := f.dir.GetDisplayName(ctx, userID)
	switch {
	case err == nil && name != "":
		return name
	case errors.Is(err, vk.ErrNotFound):
		return fmt.Sprintf("ID %d", userID)
	case err != nil:
		return fmt.Sprintf("ID %d (name unavailable)", userID)
	default:
		return fmt.Sprintf("ID %d", userID)
	}
}

// countSuffix appends the total engagement count when available, an error
// marker when the fetch failed, and nothing when the object kind simply
// carries no count.
func (f *Formatter) countSuffix(ctx context.Context, owner int64, obj *event.LikeObject) string {
	count, err := f.dir.GetEngagementCount(ctx, owner, obj.ObjectID, obj.ObjectType)
	switch {
	case err == nil:
		return fmt.Sprintf(" — %d total", count)
	case errors.Is(err, vk.ErrUnavailable):
		return ""
	default:
		return " (likes count unavailable)"
	}
}

// objectLink builds a direct link when the object type supports one, else
// falls back to a bare identifier.
func objectLink(owner int64, obj *event.LikeObject) string {
	switch obj.ObjectType {
	case "post":
		return fmt.Sprintf("https://vk.com/wall%d_%d", owner, obj.ObjectID)
	case "photo":
		return fmt.Sprintf("https://vk.com/photo%d_%d", owner, obj.ObjectID)
	case "video":
		return fmt.Sprintf("https://vk.com/video%d_%d", owner, obj.ObjectID)
	case "comment":
		if obj.PostID != 0 {
			return fmt.Sprintf("https://vk.com/wall%d_%d?reply=%d", owner, obj.PostID, obj.ObjectID)
		}
		return fmt.Sprintf("comment %d", obj.ObjectID)
	default:
		return fmt.Sprintf("object %d", obj.ObjectID)
	}
}
