package template

import (
	"strings"
	"time"

	"github.com/smcana/liveplanner"
)

// Select picks the historical broadcast whose settings a new slot of the given
// keyword should reuse, and reduces it to a copy-safe template. Candidates are
// records whose title contains the keyword (case-sensitive substring), ranked
// in three tiers:
//
//  1. the most recently aired candidate, by actual end time;
//  2. failing that, the most recently scheduled candidate that carries
//     reusable metadata (a description, a bound stream, or thumbnails);
//  3. failing that, the most recently scheduled candidate of any kind.
//
// Returns nil when no candidate matches at all, in which case creation falls
// back to the definition defaults. Ties keep the earliest-listed record, and
// records with missing or malformed timestamps rank lowest.
func Select(records []*liveplanner.Broadcast, keyword string) *liveplanner.Template {
	var candidates []*liveplanner.Broadcast
	for _, b := range records {
		if strings.Contains(b.Title(), keyword) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	var aired []*liveplanner.Broadcast
	for _, b := range candidates {
		if b.HasAired() {
			aired = append(aired, b)
		}
	}
	if len(aired) > 0 {
		return build(latestBy(aired, endTime), true)
	}

	var withMetadata []*liveplanner.Broadcast
	for _, b := range candidates {
		if b.Description() != "" || b.BoundStreamId() != "" || b.ThumbnailURL() != "" {
			withMetadata = append(withMetadata, b)
		}
	}
	if len(withMetadata) > 0 {
		return build(latestBy(withMetadata, startTime), false)
	}

	return build(latestBy(candidates, startTime), false)
}

func endTime(b *liveplanner.Broadcast) time.Time {
	t, _ := b.EndTime()
	return t
}

func startTime(b *liveplanner.Broadcast) time.Time {
	t, _ := b.StartTime()
	return t
}

func latestBy(records []*liveplanner.Broadcast, at func(*liveplanner.Broadcast) time.Time) *liveplanner.Broadcast {
	best := records[0]
	bestAt := at(best)
	for _, b := range records[1:] {
		if t := at(b); t.After(bestAt) {
			best = b
			bestAt = t
		}
	}
	return best
}

// build reduces a source broadcast to its template projection. Everything is
// copied: a template outlives this call and is reused across slots, so it must
// not share pointers with the cached record.
func build(b *liveplanner.Broadcast, fromEmitted bool) *liveplanner.Template {
	t := &liveplanner.Template{
		ContentDetails: copySafeContentDetails(b.ContentDetails),
		BoundStreamId:  b.BoundStreamId(),
		Description:    b.Description(),
		ThumbnailURL:   b.ThumbnailURL(),
		FromEmitted:    fromEmitted,
		SourceId:       b.Id,
		SourceTitle:    b.Title(),
	}
	if sn := b.Snippet; sn != nil {
		t.DefaultLanguage = sn.DefaultLanguage
		t.DefaultAudioLanguage = sn.DefaultAudioLanguage
		t.CategoryId = sn.CategoryId
	}
	if st := b.Status; st != nil {
		t.PrivacyStatus = st.PrivacyStatus
		if st.SelfDeclaredMadeForKids != nil {
			v := *st.SelfDeclaredMadeForKids
			t.MadeForKids = &v
		}
	}
	t.Monetization = b.Monetization.Clone()
	return t
}

// copySafeContentDetails keeps only the settings that can be replicated onto a
// new broadcast: never the bound stream (binding is a separate step against
// the shared stream) and never the chat flag (creation always forces it off).
func copySafeContentDetails(cd *liveplanner.BroadcastContent) *liveplanner.BroadcastContent {
	if cd == nil {
		return nil
	}
	out := cd.Clone()
	out.BoundStreamId = ""
	out.EnableChat = nil
	return out
}
