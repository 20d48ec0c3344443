package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/dispatch"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/toggles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkFake struct {
	mu     sync.Mutex
	events []event.Inbound
}

func (s *sinkFake) Dispatch(_ context.Context, ev event.Inbound) dispatch.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return dispatch.OutcomeDelivered
}

func (s *sinkFake) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func newHandlers(sink EventSink, cb CallbackConfig) *Handlers {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandlers(sink, toggles.New(nil, 100, log), cb, log)
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestCallbackConfirmation(t *testing.T) {
	h := newHandlers(&sinkFake{}, CallbackConfig{Confirmation: "a1b2c3"})

	rec := post(h.Callback, `{"type":"confirmation","group_id":10}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1b2c3", rec.Body.String(), "confirmation echoed verbatim")
}

func TestCallbackAcknowledgesAndDispatches(t *testing.T) {
	sink := &sinkFake{}
	h := newHandlers(sink, CallbackConfig{})

	rec := post(h.Callback, `{"type":"wall_post_new","group_id":10,"object":{"id":55,"owner_id":-10}}`)

	assert.Equal(t, "ok", rec.Body.String())

	drainCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	h.Drain(drainCtx)

	require.Equal(t, 1, sink.count())
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, "wall_post_new", sink.events[0].Type)
	assert.Equal(t, int64(10), sink.events[0].GroupID)
	assert.False(t, sink.events[0].ReceivedAt.IsZero())
}

func TestCallbackSecretMismatch(t *testing.T) {
	sink := &sinkFake{}
	h := newHandlers(sink, CallbackConfig{Secret: "s3cret"})

	rec := post(h.Callback, `{"type":"wall_post_new","group_id":10,"secret":"wrong"}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, sink.count())
}

func TestCallbackSecretMatch(t *testing.T) {
	sink := &sinkFake{}
	h := newHandlers(sink, CallbackConfig{Secret: "s3cret"})

	rec := post(h.Callback, `{"type":"wall_post_new","group_id":10,"object":{},"secret":"s3cret"}`)

	assert.Equal(t, "ok", rec.Body.String())
}

func TestCallbackBadBody(t *testing.T) {
	h := newHandlers(&sinkFake{}, CallbackConfig{})

	rec := post(h.Callback, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminToggleRoundTrip(t *testing.T) {
	h := newHandlers(&sinkFake{}, CallbackConfig{})

	req := httptest.NewRequest(http.MethodPut, "/admin/toggles", strings.NewReader(`{"type":"like_add","enabled":false}`))
	rec := httptest.NewRecorder()
	h.SetToggle(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetToggles(rec, httptest.NewRequest(http.MethodGet, "/admin/toggles", nil))
	assert.JSONEq(t, `{"like_add":false}`, rec.Body.String())
}

func TestAdminTarget(t *testing.T) {
	h := newHandlers(&sinkFake{}, CallbackConfig{})

	req := httptest.NewRequest(http.MethodPut, "/admin/target", strings.NewReader(`{"chat_id":-4242}`))
	rec := httptest.NewRecorder()
	h.SetTarget(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetTarget(rec, httptest.NewRequest(http.MethodGet, "/admin/target", nil))
	assert.JSONEq(t, `{"chat_id":-4242}`, rec.Body.String())
}

func TestAdminTargetRejectsZero(t *testing.T) {
	h := newHandlers(&sinkFake{}, CallbackConfig{})

	req := httptest.NewRequest(http.MethodPut, "/admin/target", strings.NewReader(`{"chat_id":0}`))
	rec := httptest.NewRecorder()
	h.SetTarget(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
