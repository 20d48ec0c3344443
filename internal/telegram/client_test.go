package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/delivery"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{Token: "tok", APIBase: srv.URL})
}

func TestSendText(t *testing.T) {
	var got map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	})

	err := c.SendText(context.Background(), 42, "hello <b>x</b>", delivery.TextOptions{Mode: event.ModeHTML})

	require.NoError(t, err)
	assert.Equal(t, float64(42), got["chat_id"])
	assert.Equal(t, "hello <b>x</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, true, got["disable_web_page_preview"], "link previews stay off")
}

func TestSendTextNoParseMode(t *testing.T) {
	var got map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	})

	require.NoError(t, c.SendText(context.Background(), 42, "plain", delivery.TextOptions{}))
	_, present := got["parse_mode"]
	assert.False(t, present)
}

func TestSendTextRejected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests"}`))
	})

	err := c.SendText(context.Background(), 42, "x", delivery.TextOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too Many Requests")
}

func TestSendMedia(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottok/sendPhoto", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))
		assert.Equal(t, "pic", r.FormValue("caption"))

		file, _, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()

		w.Write([]byte(`{"ok":true}`))
	})

	err := c.SendMedia(context.Background(), 42, delivery.MediaPhoto, []byte("jpegbytes"), "pic")

	require.NoError(t, err)
}

func TestSendMediaUnsupportedKind(t *testing.T) {
	c := NewClient(Config{Token: "tok"})

	err := c.SendMedia(context.Background(), 42, delivery.MediaKind("hologram"), nil, "")

	assert.Error(t, err)
}
