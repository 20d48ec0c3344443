package format

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/vk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type directoryFake struct {
	names    map[int64]string
	nameErr  error
	count    int
	countErr error
}

func (d *directoryFake) GetDisplayName(_ context.Context, userID int64) (string, error) {
	if d.nameErr != nil {
		return "", d.nameErr
	}
	name, ok := d.names[userID]
	if !ok {
		return "", vk.ErrNotFound
	}
	return name, nil
}

func (d *directoryFake) GetEngagementCount(context.Context, int64, int64, string) (int, error) {
	if d.countErr != nil {
		return 0, d.countErr
	}
	return d.count, nil
}

type summarizerFake struct {
	out string
}

func (s *summarizerFake) Describe(context.Context, []event.Attachment, int64, string) string {
	return s.out
}

func ev(typ string, group int64, object string) event.Inbound {
	return event.Inbound{Type: typ, GroupID: group, Object: json.RawMessage(object)}
}

func TestLikeOwnerFallback(t *testing.T) {
	dir := &directoryFake{names: map[int64]string{7: "Anna"}, count: 4}
	f := New(dir, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_add", 123, `{"liker_id":7,"object_type":"post","object_id":9}`), false)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Anna")
	assert.Contains(t, msg.Body, "https://vk.com/wall-123_9", "missing owner resolves to negated group id")
	assert.Contains(t, msg.Body, "4 total")
	assert.Equal(t, event.ModeHTML, msg.Mode)
}

func TestLikeNameNotFound(t *testing.T) {
	f := New(&directoryFake{count: 1}, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_add", 1, `{"liker_id":42,"object_type":"post","object_id":9,"object_owner_id":-1}`), false)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "ID 42")
	assert.NotContains(t, msg.Body, "name unavailable")
}

func TestLikeNameLookupError(t *testing.T) {
	f := New(&directoryFake{nameErr: errors.New("timeout"), count: 1}, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_add", 1, `{"liker_id":42,"object_type":"post","object_id":9,"object_owner_id":-1}`), false)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "ID 42 (name unavailable)")
}

func TestLikeCountUnavailableOmitted(t *testing.T) {
	f := New(&directoryFake{names: map[int64]string{7: "Anna"}, countErr: vk.ErrUnavailable}, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_add", 1, `{"liker_id":7,"object_type":"post","object_id":9,"object_owner_id":-1}`), false)

	require.NoError(t, err)
	assert.NotContains(t, msg.Body, "total")
	assert.NotContains(t, msg.Body, "unavailable")
}

func TestLikeCountErrorMarker(t *testing.T) {
	f := New(&directoryFake{names: map[int64]string{7: "Anna"}, countErr: errors.New("boom")}, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_add", 1, `{"liker_id":7,"object_type":"post","object_id":9,"object_owner_id":-1}`), false)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "(likes count unavailable)")
}

func TestLikeUnknownObjectType(t *testing.T) {
	f := New(&directoryFake{names: map[int64]string{7: "Anna"}, countErr: vk.ErrUnavailable}, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_add", 1, `{"liker_id":7,"object_type":"widget","object_id":9,"object_owner_id":-1}`), false)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "object of type widget")
	assert.Contains(t, msg.Body, "object 9", "no link for unsupported types, bare identifier instead")
}

func TestLikeRemove(t *testing.T) {
	f := New(&directoryFake{names: map[int64]string{7: "Anna"}, count: 0}, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_remove", 1, `{"liker_id":7,"object_type":"post","object_id":9,"object_owner_id":-1}`), true)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "removed a like")
}

func TestLikeInvalidObjectStillReported(t *testing.T) {
	f := New(&directoryFake{}, &summarizerFake{})

	msg, err := f.Like(context.Background(), ev("like_add", 1, `{"object_type":"post"}`), false)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "(invalid object)")
}

func TestMessageNew(t *testing.T) {
	dir := &directoryFake{names: map[int64]string{5: "Boris"}}
	f := New(dir, &summarizerFake{out: "\n📷 Photo: http://x"})

	msg, err := f.MessageNew(context.Background(), ev("message_new", 1, `{"message":{"id":3,"from_id":5,"text":"a<b"}}`), 10)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Boris")
	assert.Contains(t, msg.Body, "a&lt;b", "user text escaped")
	assert.Contains(t, msg.Body, "📷 Photo", "attachment summary appended")
}

func TestMessageNewNoText(t *testing.T) {
	f := New(&directoryFake{names: map[int64]string{5: "Boris"}}, &summarizerFake{})

	msg, err := f.MessageNew(context.Background(), ev("message_new", 1, `{"message":{"id":3,"from_id":5}}`), 10)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "(no text)")
}

func TestMessageNewInvalidObject(t *testing.T) {
	f := New(&directoryFake{}, &summarizerFake{})

	msg, err := f.MessageNew(context.Background(), ev("message_new", 1, `{}`), 10)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "(invalid object)")
}

func TestWallPost(t *testing.T) {
	dir := &directoryFake{names: map[int64]string{7: "Anna"}}
	f := New(dir, &summarizerFake{})

	msg, err := f.WallPost(context.Background(), ev("wall_post_new", 10, `{"owner_id":-10,"id":55,"from_id":7,"text":"hi"}`), 10)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "https://vk.com/wall-10_55")
	assert.Contains(t, msg.Body, "Anna")
	assert.Contains(t, msg.Body, "hi")
}

func TestWallPostAuthorFallsBackToOwner(t *testing.T) {
	dir := &directoryFake{names: map[int64]string{77: "Owner"}}
	f := New(dir, &summarizerFake{})

	msg, err := f.WallPost(context.Background(), ev("wall_post_new", 10, `{"owner_id":77,"id":55,"text":"hi"}`), 10)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Owner")
}

func TestWallPostMissingIDFlagged(t *testing.T) {
	f := New(&directoryFake{}, &summarizerFake{})

	msg, err := f.WallPost(context.Background(), ev("wall_post_new", 10, `{"text":"hi"}`), 10)

	require.NoError(t, err)
	assert.Contains(t, msg.Body, "(invalid object)")
}

func TestUnknownNeverDrops(t *testing.T) {
	f := New(&directoryFake{}, &summarizerFake{})

	msg := f.Unknown(ev("group_join", 10, `{"user_id":3,"join_type":"request"}`))

	assert.Contains(t, msg.Body, "group_join", "literal type string surfaces")
	assert.Contains(t, msg.Body, "join_type", "raw payload embedded for triage")
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a&amp;b &lt;i&gt;", Escape("a&b <i>"))
}
