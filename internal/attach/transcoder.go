// Package attach turns heterogeneous attachment lists into pushed media
// plus an always-present textual summary.
package attach

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/delivery"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
)

const (
	fetchTimeout = 10 * time.Second
	// Media pushes get their own small retry budget, separate from the
	// message delivery budget.
	pushAttempts = 2
	pushBackoff  = 500 * time.Millisecond
	maxMediaSize = 50 << 20
)

// VideoResolver looks up a directly fetchable file URL for a video.
type VideoResolver interface {
	GetVideoDirectURL(ctx context.Context, ownerID, videoID int64) (string, error)
}

type Transcoder struct {
	ch     delivery.Channel
	videos VideoResolver
	httpc  *http.Client
	log    *slog.Logger
}

func NewTranscoder(ch delivery.Channel, videos VideoResolver, log *slog.Logger) *Transcoder {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Transcoder{
		ch:     ch,
		videos: videos,
		httpc:  &http.Client{Timeout: fetchTimeout, Transport: tr},
		log:    log,
	}
}

// Describe walks the attachment list, pushing resolvable media to chatID as
// it goes, and returns a textual summary. The summary is never empty when
// attachments exist: every entry contributes a line, including unknown
// types. Callers append the summary to the message body.
func (t *Transcoder) Describe(ctx context.Context, atts []event.Attachment, chatID int64, captionPrefix string) string {
	if len(atts) == 0 {
		return ""
	}

	var b strings.Builder
	for i := range atts {
		line := t.describeOne(ctx, &atts[i], chatID, captionPrefix)
		if line == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

func (t *Transcoder) describeOne(ctx context.Context, att *event.Attachment, chatID int64, caption string) string {
	switch att.Type {
	case event.AttachPhoto:
		return t.describePhoto(ctx, att.Photo, chatID, caption)
	case event.AttachVideo:
		return t.describeVideo(ctx, att.Video, chatID, caption)
	case event.AttachAudio:
		return t.describeAudio(ctx, att.Audio, chatID, caption)
	case event.AttachDoc:
		return t.describeDoc(ctx, att.Doc, chatID, caption)
	case event.AttachLink:
		if att.Link == nil {
			return "🔗 link"
		}
		if att.Link.Title != "" {
			return fmt.Sprintf("🔗 %s: %s", att.Link.Title, att.Link.URL)
		}
		return "🔗 " + att.Link.URL
	case event.AttachPoll:
		if att.Poll == nil || att.Poll.Question == "" {
			return "📊 poll"
		}
		return "📊 Poll: " + att.Poll.Question
	case event.AttachWall:
		if att.Wall == nil {
			return "📌 repost"
		}
		return fmt.Sprintf("📌 Repost: https://vk.com/wall%d_%d", att.Wall.FromID, att.Wall.ID)
	case event.AttachSticker:
		return t.describeSticker(ctx, att.Sticker, chatID)
	case event.AttachGift:
		return t.describeGift(ctx, att.Gift, chatID)
	case event.AttachGraffiti:
		return t.describeGraffiti(ctx, att.Graffiti, chatID)
	default:
		// Unknown types still surface; never skip silently.
		return fmt.Sprintf("[attachment: %s]", att.Type)
	}
}

func (t *Transcoder) describePhoto(ctx context.Context, p *event.Photo, chatID int64, caption string) string {
	if p == nil {
		return "📷 photo"
	}
	size := p.LargestSize()
	if size == nil || size.URL == "" {
		return fmt.Sprintf("📷 Photo: https://vk.com/photo%d_%d", p.OwnerID, p.ID)
	}
	if err := t.push(ctx, chatID, delivery.MediaPhoto, size.URL, caption); err != nil {
		t.log.Warn("photo push failed", "owner_id", p.OwnerID, "photo_id", p.ID, "error", err)
		return fmt.Sprintf("⚠️ photo could not be forwarded\n📷 Photo: %s", size.URL)
	}
	return "📷 Photo: " + size.URL
}

func (t *Transcoder) describeVideo(ctx context.Context, v *event.Video, chatID int64, caption string) string {
	if v == nil {
		return "🎬 video"
	}
	link := fmt.Sprintf("https://vk.com/video%d_%d", v.OwnerID, v.ID)
	title := v.Title
	if title == "" {
		title = "Video"
	}

	directURL, err := t.videos.GetVideoDirectURL(ctx, v.OwnerID, v.ID)
	if err != nil || directURL == "" {
		if err != nil {
			t.log.Warn("video URL lookup failed", "owner_id", v.OwnerID, "video_id", v.ID, "error", err)
		}
		return fmt.Sprintf("🎬 %s: %s", title, link)
	}

	if err := t.push(ctx, chatID, delivery.MediaVideo, directURL, caption); err != nil {
		t.log.Warn("video push failed", "owner_id", v.OwnerID, "video_id", v.ID, "error", err)
		return fmt.Sprintf("⚠️ video could not be forwarded\n🎬 %s: %s", title, link)
	}
	return fmt.Sprintf("🎬 %s: %s", title, link)
}

func (t *Transcoder) describeAudio(ctx context.Context, a *event.Audio, chatID int64, caption string) string {
	if a == nil {
		return "🎵 audio"
	}
	label := strings.TrimSpace(a.Artist + " — " + a.Title)
	if a.URL == "" {
		return "🎵 " + label
	}
	if err := t.push(ctx, chatID, delivery.MediaAudio, a.URL, caption); err != nil {
		t.log.Warn("audio push failed", "title", a.Title, "error", err)
		return "⚠️ audio could not be forwarded\n🎵 " + label
	}
	return "🎵 " + label
}

func (t *Transcoder) describeDoc(ctx context.Context, d *event.Doc, chatID int64, caption string) string {
	if d == nil {
		return "📄 document"
	}
	label := d.Title
	if label == "" {
		label = "document"
	}
	if d.URL == "" {
		return "📄 " + label
	}
	if err := t.push(ctx, chatID, delivery.MediaDocument, d.URL, caption); err != nil {
		t.log.Warn("doc push failed", "title", d.Title, "error", err)
		return fmt.Sprintf("⚠️ document could not be forwarded\n📄 %s: %s", label, d.URL)
	}
	return "📄 " + label
}

func (t *Transcoder) describeSticker(ctx context.Context, s *event.Sticker, chatID int64) string {
	if s == nil {
		return "💟 sticker"
	}
	img := s.LargestImage()
	if img == nil || img.URL == "" {
		return "💟 sticker"
	}
	if err := t.push(ctx, chatID, delivery.MediaPhoto, img.URL, ""); err != nil {
		t.log.Warn("sticker push failed", "sticker_id", s.StickerID, "error", err)
		return "💟 sticker: " + img.URL
	}
	return "💟 sticker"
}

func (t *Transcoder) describeGift(ctx context.Context, g *event.Gift, chatID int64) string {
	if g == nil || g.Thumb256 == "" {
		return "🎁 gift"
	}
	if err := t.push(ctx, chatID, delivery.MediaPhoto, g.Thumb256, ""); err != nil {
		t.log.Warn("gift push failed", "gift_id", g.ID, "error", err)
	}
	return "🎁 gift"
}

func (t *Transcoder) describeGraffiti(ctx context.Context, g *event.Graffiti, chatID int64) string {
	if g == nil || g.URL == "" {
		return "🖌 graffiti"
	}
	if err := t.push(ctx, chatID, delivery.MediaPhoto, g.URL, ""); err != nil {
		t.log.Warn("graffiti push failed", "graffiti_id", g.ID, "error", err)
		return "🖌 graffiti: " + g.URL
	}
	return "🖌 graffiti"
}

// push downloads the media behind url and sends it natively, with its own
// bounded retry.
func (t *Transcoder) push(ctx context.Context, chatID int64, kind delivery.MediaKind, url, caption string) error {
	data, err := t.fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch media: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= pushAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(pushBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = t.ch.SendMedia(ctx, chatID, kind, data, caption); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("send media after %d attempts: %w", pushAttempts, lastErr)
}

func (t *Transcoder) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	resp, err := t.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize))
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	return data, nil
}
