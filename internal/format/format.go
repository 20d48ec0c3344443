// Package format builds delivery-ready notification bodies, one formatter
// per event kind. Formatters degrade on enrichment failures instead of
// aborting: an event is always reported, even with partial information.
package format

import (
	"context"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

// Directory resolves auxiliary data about users and objects.
type Directory interface {
	GetDisplayName(ctx context.Context, userID int64) (string, error)
	GetEngagementCount(ctx context.Context, ownerID, objectID int64, objectType string) (int, error)
}

// Summarizer describes an attachment list, pushing media to chatID as a
// side effect, and returns the textual summary to append.
type Summarizer interface {
	Describe(ctx context.Context, atts []event.Attachment, chatID int64, captionPrefix string) string
}

type Formatter struct {
	dir Directory
	sum Summarizer
}

func New(dir Directory, sum Summarizer) *Formatter {
	return &Formatter{dir: dir, sum: sum}
}
