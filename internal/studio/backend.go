package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/smcana/liveplanner"
)

// CreationHorizonDays is how far ahead the Studio UI will accept a scheduled
// broadcast. Shorter than the Data API's ceiling.
const CreationHorizonDays = 11

// Backend creates broadcasts through the automation sidecar instead of the
// Data API. Template reuse happens sidecar-side, keyed by the slot keyword;
// stream binding and thumbnails are inherited from the Studio defaults, so
// the request's template fields are not forwarded.
type Backend struct {
	client  *Client
	state   json.RawMessage
	logger  *slog.Logger
	created int
}

func NewBackend(client *Client, state json.RawMessage, logger *slog.Logger) *Backend {
	return &Backend{
		client: client,
		state:  state,
		logger: logger,
	}
}

func (b *Backend) CreateReusingTemplate(ctx context.Context, req liveplanner.CreateRequest) (*liveplanner.Broadcast, error) {
	id, err := b.client.CreateBroadcast(ctx, req.Title, req.ScheduledStart, req.Keyword, b.state)
	if err != nil {
		return nil, err
	}
	b.created++
	if id == "" {
		// The UI flow doesn't always surface the new id; synthesize one so
		// in-run dedupe still sees the record
		id = fmt.Sprintf("studio-%d", b.created)
	}
	b.logger.Info("CREATED", "title", req.Title, "id", id, "backend", "studio")

	return &liveplanner.Broadcast{
		Id: id,
		Snippet: &liveplanner.BroadcastSnippet{
			Title:              req.Title,
			Description:        req.Description,
			ScheduledStartTime: req.ScheduledStart.Format(time.RFC3339),
		},
		Status: &liveplanner.BroadcastStatus{
			LifeCycleStatus: "created",
			PrivacyStatus:   req.PrivacyStatus,
		},
	}, nil
}
