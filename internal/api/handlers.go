package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/dispatch"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/domain/event"
	"github.com/ddx2r/vk-telegram-bot-sub000/internal/toggles"
)

// EventSink consumes inbound events asynchronously from the webhook.
type EventSink interface {
	Dispatch(ctx context.Context, ev event.Inbound) dispatch.Outcome
}

// dispatchTimeout bounds one event's processing including delivery retries.
const dispatchTimeout = 60 * time.Second

// maxInFlight caps concurrent event processing so a webhook burst cannot
// spawn unbounded goroutines.
const maxInFlight = 64

type CallbackConfig struct {
	Confirmation string
	Secret       string
}

type Handlers struct {
	sink    EventSink
	toggles *toggles.Store
	cb      CallbackConfig
	log     *slog.Logger

	inflight sync.WaitGroup
	sem      chan struct{}
}

func NewHandlers(sink EventSink, togglesStore *toggles.Store, cb CallbackConfig, log *slog.Logger) *Handlers {
	return &Handlers{
		sink:    sink,
		toggles: togglesStore,
		cb:      cb,
		log:     log,
		sem:     make(chan struct{}, maxInFlight),
	}
}

// Callback is the VK webhook endpoint. It must acknowledge sub-second, so
// the event is handed to a background goroutine and "ok" is written
// immediately; delivery completion is decoupled from the HTTP response.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string          `json:"type"`
		GroupID int64           `json:"group_id"`
		Object  json.RawMessage `json:"object"`
		Secret  string          `json:"secret"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if h.cb.Secret != "" && req.Secret != h.cb.Secret {
		h.log.Warn("callback secret mismatch", "type", req.Type)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if req.Type == event.TypeConfirmation {
		w.Write([]byte(h.cb.Confirmation))
		return
	}

	ev := event.Inbound{
		Type:       req.Type,
		GroupID:    req.GroupID,
		Object:     req.Object,
		ReceivedAt: time.Now().UTC(),
	}

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()

		h.sem <- struct{}{}
		defer func() { <-h.sem }()

		// Detached from the request context: the upstream ack must not
		// cancel processing, and shutdown drains via Wait instead.
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		h.sink.Dispatch(ctx, ev)
	}()

	w.Write([]byte("ok"))
}

// Drain blocks until in-flight event processing finishes or ctx expires.
func (h *Handlers) Drain(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		h.log.Warn("shutdown before all in-flight events finished")
	}
}

// GetToggles returns the explicit per-type flags.
func (h *Handlers) GetToggles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.toggles.All())
}

// SetToggle flips one event type on or off.
func (h *Handlers) SetToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string `json:"type"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	h.toggles.SetEnabled(req.Type, req.Enabled)
	h.log.Info("toggle updated", "type", req.Type, "enabled", req.Enabled)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{req.Type: req.Enabled})
}

// GetTarget returns the main delivery chat.
func (h *Handlers) GetTarget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"chat_id": h.toggles.MainTarget()})
}

// SetTarget changes the main delivery chat.
func (h *Handlers) SetTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID json.Number `json:"chat_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	chatID, err := strconv.ParseInt(req.ChatID.String(), 10, 64)
	if err != nil || chatID == 0 {
		http.Error(w, "invalid chat_id", http.StatusBadRequest)
		return
	}

	h.toggles.SetMainTarget(chatID)
	h.log.Info("delivery target updated", "chat_id", chatID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"chat_id": chatID})
}
