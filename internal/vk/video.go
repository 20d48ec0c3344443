package vk

import (
	"context"
	"fmt"
	"net/url"
)

// Resolution ladder for direct video files, highest first.
var videoLadder = []string{"mp4_1080", "mp4_720", "mp4_480", "mp4_360", "mp4_240"}

// GetVideoDirectURL asks VK for a directly fetchable file URL of a video,
// preferring the highest resolution available. An empty string with a nil
// error means the video exists but exposes no direct file (external player,
// live stream), in which case callers fall back to a link line.
func (c *Client) GetVideoDirectURL(ctx context.Context, ownerID, videoID int64) (string, error) {
	params := url.Values{}
	params.Set("videos", fmt.Sprintf("%d_%d", ownerID, videoID))

	var result struct {
		Items []struct {
			Files map[string]string `json:"files"`
		} `json:"items"`
	}
	if err := c.call(ctx, "video.get", params, &result); err != nil {
		return "", err
	}
	if len(result.Items) == 0 {
		return "", ErrNotFound
	}

	files := result.Items[0].Files
	for _, key := range videoLadder {
		if u, ok := files[key]; ok && u != "" {
			return u, nil
		}
	}
	return "", nil
}
