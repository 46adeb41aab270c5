package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/smcana/liveplanner"
	"golang.org/x/exp/slog"
	"google.golang.org/api/googleapi"
)

// PageLister is the one slice of the remote API the catalog needs: fetching
// consecutive pages of the channel's own broadcasts, all types included.
type PageLister interface {
	ListBroadcastsPage(ctx context.Context, pageToken string) (*liveplanner.BroadcastListPage, error)
}

// listRetryPause is how long to wait before retrying a page fetch that failed
// with a server-side error. One retry per page; a second failure propagates.
const listRetryPause = 2 * time.Second

// Catalog materializes the channel's full broadcast list once per run and
// answers every lookup from memory, so that planning N slots costs one listing
// pass instead of N remote searches. Broadcasts created during the run are fed
// back in via Append so that later dedupe checks see them.
type Catalog struct {
	client PageLister
	logger *slog.Logger
	sleep  func(time.Duration)

	items  []*liveplanner.Broadcast
	loaded bool
}

func NewCatalog(client PageLister, logger *slog.Logger) *Catalog {
	return &Catalog{
		client: client,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Load fetches every page of the channel's broadcast list and caches the
// records. Calling Load again within the same run is a no-op.
func (c *Catalog) Load(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	var items []*liveplanner.Broadcast
	pageToken := ""
	for {
		page, err := c.fetchPage(ctx, pageToken)
		if err != nil {
			return fmt.Errorf("failed to list broadcasts: %w", err)
		}
		items = append(items, page.Items...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	c.items = items
	c.loaded = true
	return nil
}

// fetchPage requests a single page, tolerating one transient server error: a
// 5xx is retried once after a short fixed pause, anything else (or a second
// failure) propagates.
func (c *Catalog) fetchPage(ctx context.Context, pageToken string) (*liveplanner.BroadcastListPage, error) {
	page, err := c.client.ListBroadcastsPage(ctx, pageToken)
	if err == nil {
		return page, nil
	}
	if !isServerError(err) {
		return nil, err
	}
	c.logger.Warn("Server error while listing broadcasts; retrying once", "error", err)
	c.sleep(listRetryPause)
	return c.client.ListBroadcastsPage(ctx, pageToken)
}

func isServerError(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code >= 500
}

// All returns every cached record, in listing order plus run-appended records.
func (c *Catalog) All() []*liveplanner.Broadcast {
	return c.items
}

// Append feeds a broadcast created during this run back into the cache.
func (c *Catalog) Append(b *liveplanner.Broadcast) {
	if b != nil {
		c.items = append(c.items, b)
	}
}

// FindByTitle looks up a broadcast whose title matches exactly, up to
// whitespace normalization and case.
func (c *Catalog) FindByTitle(title string) *liveplanner.Broadcast {
	want := normalizeTitle(title)
	for _, b := range c.items {
		if strings.EqualFold(normalizeTitle(b.Title()), want) {
			return b
		}
	}
	return nil
}

// FindForSlot decides whether a planned slot is already occupied: first by
// exact title, then by slot-type keyword plus an equal scheduled start among
// records that have not yet aired. The second check catches broadcasts that
// were manually renamed on the platform but still hold the slot.
func (c *Catalog) FindForSlot(title, keyword string, start time.Time) *liveplanner.Broadcast {
	if b := c.FindByTitle(title); b != nil {
		return b
	}
	for _, b := range c.items {
		if !strings.Contains(b.Title(), keyword) || b.HasAired() {
			continue
		}
		if at, ok := b.StartTime(); ok && at.Equal(start) {
			return b
		}
	}
	return nil
}

// LatestAiredStreamId returns the stream bound to the most recently aired
// broadcast, or "" when no aired broadcast has one. Records with missing or
// malformed end timestamps rank lowest rather than being skipped.
func (c *Catalog) LatestAiredStreamId() string {
	var best *liveplanner.Broadcast
	var bestAt time.Time
	for _, b := range c.items {
		if !b.HasAired() || b.BoundStreamId() == "" {
			continue
		}
		at, _ := b.EndTime()
		if best == nil || at.After(bestAt) {
			best = b
			bestAt = at
		}
	}
	if best == nil {
		return ""
	}
	return best.BoundStreamId()
}

// UpcomingSummary renders one line per broadcast that has not yet aired,
// sorted by scheduled start, for the run-start status log.
func (c *Catalog) UpcomingSummary(loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	type entry struct {
		at time.Time
		b  *liveplanner.Broadcast
	}
	var entries []entry
	for _, b := range c.items {
		if b.HasAired() {
			continue
		}
		at, _ := b.StartTime()
		entries = append(entries, entry{at, b})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		when := "unscheduled"
		if !e.at.IsZero() {
			when = e.at.In(loc).Format(time.RFC3339)
		}
		lines = append(lines, fmt.Sprintf("%s | %s | id=%s", when, e.b.Title(), e.b.Id))
	}
	return lines
}

// normalizeTitle collapses runs of whitespace so that cosmetic edits made to a
// title on the platform don't defeat dedupe.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}
