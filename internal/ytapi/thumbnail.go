package ytapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// CopyThumbnail downloads the image behind thumbURL and uploads it as the
// thumbnail of the given video. Any error from here means the broadcast has
// no thumbnail and the caller is expected to roll the creation back.
func (c *Client) CopyThumbnail(ctx context.Context, videoId, thumbURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build thumbnail request: %w", err)
	}
	res, err := c.fetch.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download thumbnail: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("thumbnail download returned status %d", res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read thumbnail bytes: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("thumbnail download returned an empty body")
	}
	contentType := res.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if err := c.SetThumbnail(ctx, videoId, contentType, data); err != nil {
		return fmt.Errorf("failed to upload thumbnail: %w", err)
	}
	return nil
}
