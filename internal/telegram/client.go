// Package telegram implements the delivery channel contract against the
// Telegram Bot API over plain HTTP.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ddx2r/vk-telegram-bot-sub000/internal/delivery"
)

type Config struct {
	Token   string
	APIBase string
	Timeout time.Duration
}

type Client struct {
	httpc *http.Client
	base  string // https://api.telegram.org/bot<token>
}

func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.telegram.org"
	}
	if cfg.Timeout <= 0 {
		// Media uploads are the slowest call we make; keep headroom.
		cfg.Timeout = 30 * time.Second
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		httpc: &http.Client{Timeout: cfg.Timeout, Transport: tr},
		base:  cfg.APIBase + "/bot" + cfg.Token,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, opts delivery.TextOptions) error {
	payload := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if opts.Mode != "" {
		payload["parse_mode"] = string(opts.Mode)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "sendMessage")
}

// method and form field names per media kind.
var mediaMethods = map[delivery.MediaKind]struct{ method, field string }{
	delivery.MediaPhoto:    {"sendPhoto", "photo"},
	delivery.MediaVideo:    {"sendVideo", "video"},
	delivery.MediaAudio:    {"sendAudio", "audio"},
	delivery.MediaDocument: {"sendDocument", "document"},
}

func (c *Client) SendMedia(ctx context.Context, chatID int64, kind delivery.MediaKind, data []byte, caption string) error {
	m, ok := mediaMethods[kind]
	if !ok {
		return fmt.Errorf("unsupported media kind %q", kind)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("write chat_id field: %w", err)
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return fmt.Errorf("write caption field: %w", err)
		}
	}
	part, err := w.CreateFormFile(m.field, m.field)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write media bytes: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+m.method, &buf)
	if err != nil {
		return fmt.Errorf("build %s request: %w", m.method, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, m.method)
}

func (c *Client) do(req *http.Request, method string) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s rejected (code %d): %s", method, envelope.ErrorCode, envelope.Description)
	}
	return nil
}
