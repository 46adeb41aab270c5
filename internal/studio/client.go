package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CreationError is a rejection from the automation sidecar. The engine treats
// these as fatal: a sidecar that rejects one slot will reject them all, most
// often because the browser session has expired.
type CreationError struct {
	Status  int
	Message string
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("studio sidecar rejected creation (status %d): %s", e.Status, e.Message)
}

// Client talks to the browser-automation sidecar, which drives the Studio UI
// and exposes broadcast creation as a single HTTP operation.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type createPayload struct {
	Title           string          `json:"title"`
	ScheduledStart  string          `json:"scheduledStart"`
	TemplateKeyword string          `json:"templateKeyword"`
	StorageState    json.RawMessage `json:"storageState"`
}

type createResponse struct {
	Id string `json:"id"`
}

// CreateBroadcast asks the sidecar to create one broadcast and returns the id
// it reports, which may be empty when the UI flow can't recover one.
func (c *Client) CreateBroadcast(ctx context.Context, title string, start time.Time, keyword string, storageState json.RawMessage) (string, error) {
	data, err := json.Marshal(createPayload{
		Title:           title,
		ScheduledStart:  start.Format(time.RFC3339),
		TemplateKeyword: keyword,
		StorageState:    storageState,
	})
	if err != nil {
		return "", fmt.Errorf("failed to serialize creation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/broadcasts", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to initialize creation request: %w", err)
	}
	req.Header.Set("content-type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach studio sidecar: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return "", &CreationError{Status: res.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var out createResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse sidecar response: %w", err)
	}
	return out.Id, nil
}
