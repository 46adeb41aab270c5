package liveplanner

import (
	"context"
	"time"
)

// CreateRequest carries everything a creation backend needs to materialize one
// planned slot. The template and stream id are resolved once per run by the
// caller; a backend uses whichever fields its strategy supports.
type CreateRequest struct {
	// Title and Description are final values: any template/default merging has
	// already happened by the time a backend sees the request.
	Title       string
	Description string
	// ScheduledStart is the zone-aware start time of the slot.
	ScheduledStart time.Time
	// Keyword identifies the slot type, for backends that look up their own
	// presets by keyword instead of consuming Template directly.
	Keyword string
	// Template is the reusable projection of a historical broadcast, or nil
	// when the channel has no history for this keyword.
	Template *Template
	// StreamId is the shared reusable stream to bind after creation, or ""
	// when none was discovered.
	StreamId string
	// PrivacyStatus to apply when the template does not carry one.
	PrivacyStatus string
}

// CreationBackend is the strategy interface for materializing a planned slot
// as a real broadcast. One implementation talks to the Data API directly and
// another delegates to the studio automation sidecar; the scheduling engine
// treats them identically.
//
// When creation itself succeeded but a later step of the backend's pipeline
// failed, the backend returns both the created record and the error, so that
// the caller can still account for the broadcast and dedupe against it. A
// creation that was rolled back returns a nil record alongside the error.
type CreationBackend interface {
	CreateReusingTemplate(ctx context.Context, req CreateRequest) (*Broadcast, error)
}
