// Package delivery defines the outbound channel contract and the retrying
// send path in front of it.
package delivery

import (
	"context"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

// MediaKind selects the native media send method on the channel.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
)

// TextOptions tune a text send. Link previews stay off so notification
// bodies full of links do not unfurl into the chat.
type TextOptions struct {
	Mode event.ParseMode
}

// Channel is the outbound chat transport. The pipeline only ever talks to
// this contract; transport detail lives in the implementing package.
type Channel interface {
	SendText(ctx context.Context, chatID int64, text string, opts TextOptions) error
	SendMedia(ctx context.Context, chatID int64, kind MediaKind, data []byte, caption string) error
}
