package liveplanner

import (
	"time"
)

// Broadcast mirrors the YouTube Data API liveBroadcasts resource, serving
// both records read back from the remote list and bodies submitted on insert
// or update. Optional toggles are pointers so that absent, explicit-true and
// explicit-false all survive a round trip: a plain false would be dropped by
// omitempty and silently fall back to the platform default.
type Broadcast struct {
	Id             string               `json:"id,omitempty"`
	Snippet        *BroadcastSnippet    `json:"snippet,omitempty"`
	ContentDetails *BroadcastContent    `json:"contentDetails,omitempty"`
	Status         *BroadcastStatus     `json:"status,omitempty"`
	Monetization   *MonetizationDetails `json:"monetizationDetails,omitempty"`
}

type BroadcastSnippet struct {
	Title                string               `json:"title,omitempty"`
	Description          string               `json:"description,omitempty"`
	ScheduledStartTime   string               `json:"scheduledStartTime,omitempty"`
	ActualEndTime        string               `json:"actualEndTime,omitempty"`
	DefaultLanguage      string               `json:"defaultLanguage,omitempty"`
	DefaultAudioLanguage string               `json:"defaultAudioLanguage,omitempty"`
	CategoryId           string               `json:"categoryId,omitempty"`
	Thumbnails           map[string]Thumbnail `json:"thumbnails,omitempty"`
}

type Thumbnail struct {
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// BoundStreamId is read-only on the wire: binding happens through a dedicated
// API call, never by submitting this field.
type BroadcastContent struct {
	BoundStreamId        string         `json:"boundStreamId,omitempty"`
	EnableAutoStart      *bool          `json:"enableAutoStart,omitempty"`
	EnableAutoStop       *bool          `json:"enableAutoStop,omitempty"`
	EnableDvr            *bool          `json:"enableDvr,omitempty"`
	RecordFromStart      *bool          `json:"recordFromStart,omitempty"`
	LatencyPreference    string         `json:"latencyPreference,omitempty"`
	MonitorStream        *MonitorStream `json:"monitorStream,omitempty"`
	Projection           string         `json:"projection,omitempty"`
	EnableClosedCaptions *bool          `json:"enableClosedCaptions,omitempty"`
	EnableEmbed          *bool          `json:"enableEmbed,omitempty"`
	StartWithSlate       *bool          `json:"startWithSlate,omitempty"`
	EnableChat           *bool          `json:"enableChat,omitempty"`
}

type MonitorStream struct {
	EnableMonitorStream    *bool `json:"enableMonitorStream,omitempty"`
	BroadcastStreamDelayMs *int  `json:"broadcastStreamDelayMs,omitempty"`
}

type BroadcastStatus struct {
	LifeCycleStatus         string `json:"lifeCycleStatus,omitempty"`
	PrivacyStatus           string `json:"privacyStatus,omitempty"`
	SelfDeclaredMadeForKids *bool  `json:"selfDeclaredMadeForKids,omitempty"`
}

type MonetizationDetails struct {
	EnableMonetization   *bool `json:"enableMonetization,omitempty"`
	EnableManualMidrolls *bool `json:"enableManualMidrolls,omitempty"`
}

type BroadcastListPage struct {
	Items         []*Broadcast `json:"items"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}

var thumbnailPriority = []string{"maxres", "standard", "high", "medium", "default"}

// ParseTimestamp parses an RFC 3339 timestamp from the wire. The second return
// is false for empty or malformed values; callers treat such records as having
// no usable timestamp rather than failing the run.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (b *Broadcast) Title() string {
	if b == nil || b.Snippet == nil {
		return ""
	}
	return b.Snippet.Title
}

func (b *Broadcast) Description() string {
	if b == nil || b.Snippet == nil {
		return ""
	}
	return b.Snippet.Description
}

func (b *Broadcast) StartTime() (time.Time, bool) {
	if b == nil || b.Snippet == nil {
		return time.Time{}, false
	}
	return ParseTimestamp(b.Snippet.ScheduledStartTime)
}

func (b *Broadcast) EndTime() (time.Time, bool) {
	if b == nil || b.Snippet == nil {
		return time.Time{}, false
	}
	return ParseTimestamp(b.Snippet.ActualEndTime)
}

// HasAired reports whether the broadcast already finished: the platform stamps
// actualEndTime once a broadcast ends, and its presence is the sole
// aired-vs-pending discriminator used throughout.
func (b *Broadcast) HasAired() bool {
	if b == nil || b.Snippet == nil {
		return false
	}
	return b.Snippet.ActualEndTime != ""
}

func (b *Broadcast) BoundStreamId() string {
	if b == nil || b.ContentDetails == nil {
		return ""
	}
	return b.ContentDetails.BoundStreamId
}

// ThumbnailURL returns the URL of the best thumbnail the platform has
// materialized for this broadcast, or "" when there is none.
func (b *Broadcast) ThumbnailURL() string {
	if b == nil || b.Snippet == nil {
		return ""
	}
	for _, key := range thumbnailPriority {
		if t, ok := b.Snippet.Thumbnails[key]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

// ChatEnabled reports whether built-in live chat is on. An absent flag means
// the platform default, which is enabled.
func (b *Broadcast) ChatEnabled() bool {
	if b == nil || b.ContentDetails == nil || b.ContentDetails.EnableChat == nil {
		return true
	}
	return *b.ContentDetails.EnableChat
}

// Clone returns a deep copy, so callers can overlay per-broadcast settings
// without mutating a shared source.
func (cd *BroadcastContent) Clone() *BroadcastContent {
	if cd == nil {
		return nil
	}
	out := *cd
	out.EnableAutoStart = cloneBool(cd.EnableAutoStart)
	out.EnableAutoStop = cloneBool(cd.EnableAutoStop)
	out.EnableDvr = cloneBool(cd.EnableDvr)
	out.RecordFromStart = cloneBool(cd.RecordFromStart)
	out.EnableClosedCaptions = cloneBool(cd.EnableClosedCaptions)
	out.EnableEmbed = cloneBool(cd.EnableEmbed)
	out.StartWithSlate = cloneBool(cd.StartWithSlate)
	out.EnableChat = cloneBool(cd.EnableChat)
	out.MonitorStream = cd.MonitorStream.Clone()
	return &out
}

func (ms *MonitorStream) Clone() *MonitorStream {
	if ms == nil {
		return nil
	}
	return &MonitorStream{
		EnableMonitorStream:    cloneBool(ms.EnableMonitorStream),
		BroadcastStreamDelayMs: cloneInt(ms.BroadcastStreamDelayMs),
	}
}

func (m *MonetizationDetails) Clone() *MonetizationDetails {
	if m == nil {
		return nil
	}
	return &MonetizationDetails{
		EnableMonetization:   cloneBool(m.EnableMonetization),
		EnableManualMidrolls: cloneBool(m.EnableManualMidrolls),
	}
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Definition describes one recurring slot type. Definitions are built from
// configuration at startup and never mutated.
type Definition struct {
	// Prefix opens every generated title for this slot, e.g. "Misa 12h".
	Prefix string
	// StartTime is the local time of day the slot starts, as "HH:MM".
	StartTime string
	// Keyword identifies historical broadcasts of this slot type via
	// case-sensitive substring match against their titles.
	Keyword string
	// DefaultDescription applies when no template contributes one.
	DefaultDescription string
	// Weekday restricts the slot to one day of the week; nil means daily.
	Weekday *time.Weekday
}

// Template is the reduced projection of a historical broadcast that creation
// reuses: only fields safe to copy into a new broadcast. Copying a raw record
// wholesale would drag along identity fields (id, bound stream, lifecycle
// status) and the chat flag, which creation always forces off.
type Template struct {
	// ContentDetails holds the whitelisted technical settings of the source
	// broadcast, never the bound stream or the chat flag.
	ContentDetails *BroadcastContent
	PrivacyStatus  string
	// BoundStreamId of the source broadcast. Not copied into creation bodies;
	// only a fallback when resolving the shared reusable stream.
	BoundStreamId string
	// Description wins over the definition default when non-empty.
	Description string

	DefaultLanguage      string
	DefaultAudioLanguage string
	CategoryId           string
	MadeForKids          *bool
	Monetization         *MonetizationDetails

	// ThumbnailURL points at the source broadcast's best thumbnail; creation
	// replicates it onto every new broadcast.
	ThumbnailURL string

	// FromEmitted records whether the source broadcast actually aired, as
	// opposed to being a merely-scheduled fallback.
	FromEmitted bool
	// SourceId and SourceTitle identify the source broadcast for logging.
	SourceId    string
	SourceTitle string
}
