package ytapi

import (
	"context"
	"fmt"

	"github.com/smcana/liveplanner"
	"golang.org/x/exp/slog"
)

// CreationHorizonDays is how far ahead this backend will schedule, regardless
// of the configured horizon. The Data API starts rejecting broadcasts
// scheduled further out than about two weeks.
const CreationHorizonDays = 15

// Backend creates broadcasts by calling the Data API directly. It owns the
// per-slot creation pipeline: insert, chat verification, thumbnail
// replication with rollback, and stream binding, with retries around the
// remote writes that can hit the rate limit.
type Backend struct {
	client *Client
	retry  *Retryer
	logger *slog.Logger
}

func NewBackend(client *Client, retry *Retryer, logger *slog.Logger) *Backend {
	return &Backend{
		client: client,
		retry:  retry,
		logger: logger,
	}
}

func (b *Backend) CreateReusingTemplate(ctx context.Context, req liveplanner.CreateRequest) (*liveplanner.Broadcast, error) {
	// Assemble the creation body and insert the broadcast, retrying through
	// transient rate limits
	body := buildBroadcastBody(req)
	var created *liveplanner.Broadcast
	err := b.retry.Do("liveBroadcasts.insert", req.Title, func() error {
		var insertErr error
		created, insertErr = b.client.InsertBroadcast(ctx, body)
		return insertErr
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info("CREATED", "title", req.Title, "id", created.Id)

	// The platform can silently re-enable chat on insert; re-read the record
	// and correct it if necessary. Failures here degrade to warnings: the
	// broadcast is otherwise sound.
	b.verifyChatDisabled(ctx, created.Id)

	// Thumbnail replication is mandatory whenever the template has an image.
	// On failure the fresh broadcast is deleted and the slot reported failed;
	// a failed rollback leaves an inconsistent broadcast behind and aborts.
	if req.Template != nil && req.Template.ThumbnailURL != "" {
		if !b.client.SupportsThumbnails() {
			b.logger.Warn("THUMBNAIL", "id", created.Id, "skipped", "client does not support thumbnail uploads")
		} else if thumbErr := b.client.CopyThumbnail(ctx, created.Id, req.Template.ThumbnailURL); thumbErr != nil {
			if delErr := b.client.DeleteBroadcast(ctx, created.Id); delErr != nil {
				return nil, fmt.Errorf("failed to delete broadcast %s after thumbnail failure (%v): %w", created.Id, thumbErr, delErr)
			}
			b.logger.Warn("THUMBNAIL", "id", created.Id, "rolled_back", true, "error", thumbErr)
			return nil, &ThumbnailError{BroadcastId: created.Id, URL: req.Template.ThumbnailURL, Err: thumbErr}
		} else {
			b.logger.Info("THUMBNAIL", "id", created.Id, "url", req.Template.ThumbnailURL)
		}
	}

	// Bind the shared ingest stream, if one was resolved. The broadcast
	// already exists by now, so a failure is returned alongside the record and
	// the caller still accounts for it.
	if req.StreamId != "" {
		err := b.retry.Do("liveBroadcasts.bind", req.Title, func() error {
			return b.client.BindStream(ctx, created.Id, req.StreamId)
		})
		if err != nil {
			return created, err
		}
		b.logger.Info("BIND", "broadcast", created.Id, "stream", req.StreamId)
	}

	return created, nil
}

// verifyChatDisabled re-reads a freshly created broadcast and, when the
// platform reports chat as enabled anyway, issues a corrective update and
// re-checks. Never fails the creation: every problem is logged as a warning.
func (b *Backend) verifyChatDisabled(ctx context.Context, id string) {
	rec, err := b.client.GetBroadcast(ctx, id)
	if err != nil {
		b.logger.Warn("Could not verify chat state after creation", "id", id, "error", err)
		return
	}
	if !rec.ChatEnabled() {
		return
	}

	update := &liveplanner.Broadcast{
		Id:             id,
		ContentDetails: rec.ContentDetails.Clone(),
	}
	if update.ContentDetails == nil {
		update.ContentDetails = &liveplanner.BroadcastContent{}
	}
	update.ContentDetails.EnableChat = boolPtr(false)
	if _, err := b.client.UpdateBroadcast(ctx, update, "id,contentDetails"); err != nil {
		b.logger.Warn("Could not disable chat after creation", "id", id, "error", err)
		return
	}

	rec, err = b.client.GetBroadcast(ctx, id)
	if err != nil {
		b.logger.Warn("Could not re-verify chat state after update", "id", id, "error", err)
		return
	}
	if rec.ChatEnabled() {
		b.logger.Warn("Chat remains enabled despite update", "id", id)
	}
}
