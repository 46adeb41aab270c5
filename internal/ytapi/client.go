package ytapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smcana/liveplanner"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

const (
	defaultBaseURL   = "https://youtube.googleapis.com/youtube/v3"
	defaultUploadURL = "https://youtube.googleapis.com/upload/youtube/v3"

	// listPageSize is the maximum the Data API allows per list call.
	listPageSize = 50

	// broadcastParts enumerates the resource parts this system reads.
	broadcastParts = "id,snippet,contentDetails,status,monetizationDetails"
)

// Client is a thin typed adapter over the liveBroadcasts surface of the
// YouTube Data API v3. A client-side limiter spaces out requests so that
// pagination and back-to-back creations stay under the per-user request
// ceiling; non-2xx responses surface as *googleapi.Error so callers can
// classify them.
type Client struct {
	httpClient *http.Client
	// fetch is unauthenticated and only used for thumbnail downloads: those
	// URLs point at the public image CDN, and OAuth headers must not leak
	// there.
	fetch      *http.Client
	baseURL    string
	uploadURL  string
	limiter    *rate.Limiter
	thumbnails bool
}

type ClientOption func(*Client)

// WithBaseURLs points the client at an alternate API host and upload host.
func WithBaseURLs(api, upload string) ClientOption {
	return func(c *Client) {
		c.baseURL = api
		c.uploadURL = upload
	}
}

// WithHTTPClient replaces both transports, authenticated and plain.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
		c.fetch = hc
	}
}

// WithRequestsPerSecond adjusts the client-side request limiter; zero or
// negative disables it.
func WithRequestsPerSecond(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
		} else {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 2)
		}
	}
}

// WithoutThumbnails declares at construction time that this client cannot set
// thumbnails. The creation pipeline skips replication instead of failing
// slots against a capability that isn't there.
func WithoutThumbnails() ClientOption {
	return func(c *Client) {
		c.thumbnails = false
	}
}

func NewClient(ctx context.Context, tokenSource oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: oauth2.NewClient(ctx, tokenSource),
		fetch:      &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		uploadURL:  defaultUploadURL,
		limiter:    rate.NewLimiter(rate.Limit(4), 2),
		thumbnails: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SupportsThumbnails() bool {
	return c.thumbnails
}

// ListBroadcastsPage fetches one page of the channel's own broadcasts, all
// broadcast types included.
func (c *Client) ListBroadcastsPage(ctx context.Context, pageToken string) (*liveplanner.BroadcastListPage, error) {
	q := url.Values{}
	q.Set("part", broadcastParts)
	q.Set("mine", "true")
	q.Set("broadcastType", "all")
	q.Set("maxResults", strconv.Itoa(listPageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	var page liveplanner.BroadcastListPage
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/liveBroadcasts", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBroadcast re-reads a single broadcast by id, returning ErrNotFound when
// the platform no longer reports it.
func (c *Client) GetBroadcast(ctx context.Context, id string) (*liveplanner.Broadcast, error) {
	q := url.Values{}
	q.Set("part", broadcastParts)
	q.Set("id", id)
	var page liveplanner.BroadcastListPage
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/liveBroadcasts", q, nil, &page); err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, ErrNotFound
	}
	return page.Items[0], nil
}

// InsertBroadcast creates a broadcast and returns the platform's view of the
// new resource.
func (c *Client) InsertBroadcast(ctx context.Context, b *liveplanner.Broadcast) (*liveplanner.Broadcast, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails,status,monetizationDetails")
	var created liveplanner.Broadcast
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/liveBroadcasts", q, b, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBroadcast replaces the given parts of an existing broadcast.
func (c *Client) UpdateBroadcast(ctx context.Context, b *liveplanner.Broadcast, parts string) (*liveplanner.Broadcast, error) {
	q := url.Values{}
	q.Set("part", parts)
	var updated liveplanner.Broadcast
	if err := c.do(ctx, http.MethodPut, c.baseURL+"/liveBroadcasts", q, b, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// BindStream points a broadcast at the reusable ingest stream.
func (c *Client) BindStream(ctx context.Context, broadcastId, streamId string) error {
	q := url.Values{}
	q.Set("id", broadcastId)
	q.Set("streamId", streamId)
	q.Set("part", "id,contentDetails")
	return c.do(ctx, http.MethodPost, c.baseURL+"/liveBroadcasts/bind", q, nil, nil)
}

// DeleteBroadcast removes a broadcast outright. Creation uses this to roll
// back broadcasts whose thumbnail replication failed.
func (c *Client) DeleteBroadcast(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", id)
	return c.do(ctx, http.MethodDelete, c.baseURL+"/liveBroadcasts", q, nil, nil)
}

// SetThumbnail uploads image bytes as the thumbnail of the given video id.
func (c *Client) SetThumbnail(ctx context.Context, videoId, contentType string, data []byte) error {
	q := url.Values{}
	q.Set("videoId", videoId)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL+"/thumbnails/set", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.URL.RawQuery = q.Encode()
	return c.send(req, nil)
}

// do issues one JSON API call: marshal the body if any, send through the
// limiter, surface structured API errors, decode the response when the caller
// wants one.
func (c *Client) do(ctx context.Context, method, u string, q url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.URL.RawQuery = q.Encode()
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body from %s: %w", req.URL.Path, err)
	}
	return nil
}
