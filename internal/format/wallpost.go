package format

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

// WallPost formats a wall_post_new event.
func (f *Formatter) WallPost(ctx context.Context, ev event.Inbound, chatID int64) (event.Formatted, error) {
	var post event.WallPost
	if err := json.Unmarshal(ev.Object, &post); err != nil || post.OwnerID == 0 || post.ID == 0 {
		return event.Formatted{
			Body: fmt.Sprintf("📝 (invalid object) new wall post\n<pre>%s</pre>", Escape(prettyJSON(ev.Object))),
			Mode: event.ModeHTML,
		}, nil
	}

	author := post.FromID
	if author == 0 {
		author = post.OwnerID
	}
	name := f.displayName(ctx, author)

	link := fmt.Sprintf("https://vk.com/wall%d_%d", post.OwnerID, post.ID)

	text := "(no text)"
	if post.Text != "" {
		text = Escape(post.Text)
	}

	body := fmt.Sprintf("📝 New post by %s\n%s\n\n%s", Escape(name), link, text)
	body += f.sum.Describe(ctx, post.Attachments, chatID, "post attachment")

	return event.Formatted{Body: body, Mode: event.ModeHTML}, nil
}
