package ytapi

import (
	"time"

	"github.com/smcana/liveplanner"
)

// defaultCategoryId is "Nonprofits & Activism", applied when no template
// contributes a category.
const defaultCategoryId = "29"

// buildBroadcastBody assembles the creation payload for one slot: scheduling
// fields from the request, reusable settings from the template, and the fixed
// overrides that apply to every broadcast regardless of template (chat off,
// not made for kids, monetization on with manual mid-rolls off).
func buildBroadcastBody(req liveplanner.CreateRequest) *liveplanner.Broadcast {
	snippet := &liveplanner.BroadcastSnippet{
		Title:              req.Title,
		Description:        req.Description,
		ScheduledStartTime: req.ScheduledStart.Format(time.RFC3339),
		CategoryId:         defaultCategoryId,
	}
	status := &liveplanner.BroadcastStatus{
		PrivacyStatus:           req.PrivacyStatus,
		SelfDeclaredMadeForKids: boolPtr(false),
	}
	content := &liveplanner.BroadcastContent{}

	if t := req.Template; t != nil {
		if t.DefaultLanguage != "" {
			snippet.DefaultLanguage = t.DefaultLanguage
		}
		if t.DefaultAudioLanguage != "" {
			snippet.DefaultAudioLanguage = t.DefaultAudioLanguage
		}
		if t.CategoryId != "" {
			snippet.CategoryId = t.CategoryId
		}
		if t.PrivacyStatus != "" {
			status.PrivacyStatus = t.PrivacyStatus
		}
		if t.MadeForKids != nil {
			v := *t.MadeForKids
			status.SelfDeclaredMadeForKids = &v
		}
		if t.ContentDetails != nil {
			// The template is shared across slots; clone before the per-slot
			// override below
			content = t.ContentDetails.Clone()
		}
	}

	content.EnableChat = boolPtr(false)

	return &liveplanner.Broadcast{
		Snippet:        snippet,
		ContentDetails: content,
		Status:         status,
		Monetization: &liveplanner.MonetizationDetails{
			EnableMonetization:   boolPtr(true),
			EnableManualMidrolls: boolPtr(false),
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}
