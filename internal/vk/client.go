// Package vk is the auxiliary data gateway to the VK API: display names,
// engagement counts and direct video URLs used to enrich notifications.
package vk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrNotFound means the requested user or object does not exist.
	ErrNotFound = errors.New("vk: not found")
	// ErrRateLimited means VK throttled the request.
	ErrRateLimited = errors.New("vk: rate limited")
	// ErrUnavailable means the data point does not exist for this object
	// kind. Callers omit the field instead of flagging an error.
	ErrUnavailable = errors.New("vk: unavailable")
)

// VK error codes that map onto the taxonomy above.
const (
	codeTooManyRequests = 6
	codeFloodControl    = 9
	codeRateLimit       = 29
	codeAccessDenied    = 15
	codeInvalidUserID   = 113
	codeObjectNotFound  = 104
)

type Config struct {
	Token   string
	Version string
	APIBase string
	Timeout time.Duration
}

type Client struct {
	httpc   *http.Client
	token   string
	version string
	base    string
}

func NewClient(cfg Config) *Client {
	if cfg.Version == "" {
		cfg.Version = "5.199"
	}
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.vk.com/method"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		httpc:   &http.Client{Timeout: cfg.Timeout, Transport: tr},
		token:   cfg.Token,
		version: cfg.Version,
		base:    cfg.APIBase,
	}
}

type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type apiResponse struct {
	Response json.RawMessage `json:"response"`
	Error    *apiError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	params.Set("access_token", c.token)
	params.Set("v", c.version)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: %s (code %d): %w", method, envelope.Error.Message, envelope.Error.Code, classify(envelope.Error.Code))
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Response, out); err != nil {
			return fmt.Errorf("decode %s payload: %w", method, err)
		}
	}
	return nil
}

func classify(code int) error {
	switch code {
	case codeTooManyRequests, codeFloodControl, codeRateLimit:
		return ErrRateLimited
	case codeInvalidUserID, codeObjectNotFound:
		return ErrNotFound
	default:
		return errors.New("vk: api error")
	}
}

type user struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// GetDisplayName resolves the human-readable name of a user.
func (c *Client) GetDisplayName(ctx context.Context, userID int64) (string, error) {
	params := url.Values{}
	params.Set("user_ids", strconv.FormatInt(userID, 10))

	var users []user
	if err := c.call(ctx, "users.get", params, &users); err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "", ErrNotFound
	}
	u := users[0]
	if u.LastName == "" {
		return u.FirstName, nil
	}
	return u.FirstName + " " + u.LastName, nil
}

// likeable object types supported by likes.getList.
var likeable = map[string]bool{
	"post":          true,
	"comment":       true,
	"photo":         true,
	"video":         true,
	"note":          true,
	"market":        true,
	"photo_comment": true,
	"video_comment": true,
	"topic_comment": true,
}

// GetEngagementCount returns the total number of likes on an object.
// Object kinds that cannot carry likes report ErrUnavailable so callers
// omit the count instead of surfacing an error marker.
func (c *Client) GetEngagementCount(ctx context.Context, ownerID, objectID int64, objectType string) (int, error) {
	if !likeable[objectType] {
		return 0, ErrUnavailable
	}

	params := url.Values{}
	params.Set("type", objectType)
	params.Set("owner_id", strconv.FormatInt(ownerID, 10))
	params.Set("item_id", strconv.FormatInt(objectID, 10))
	params.Set("count", "1")

	var result struct {
		Count int `json:"count"`
	}
	if err := c.call(ctx, "likes.getList", params, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}
