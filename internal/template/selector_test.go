package template

import (
	"testing"

	"github.com/smcana/liveplanner"
	"github.com/stretchr/testify/assert"
)

func Test_Select(t *testing.T) {
	tests := []struct {
		name            string
		records         []*liveplanner.Broadcast
		keyword         string
		wantNil         bool
		wantSourceId    string
		wantFromEmitted bool
	}{
		{
			"no candidate matches the keyword",
			[]*liveplanner.Broadcast{
				record("a", "Misa 10h - Lunes 2 de marzo", "2026-03-02T10:00:00+01:00", ""),
			},
			"Vela 21h",
			true,
			"",
			false,
		},
		{
			"keyword match is a case-sensitive substring",
			[]*liveplanner.Broadcast{
				record("a", "misa 12h - lunes 2 de marzo", "2026-03-02T12:00:00+01:00", ""),
				record("b", "Especial Misa 12h extendida", "2026-03-03T12:00:00+01:00", ""),
			},
			"Misa 12h",
			false,
			"b",
			false,
		},
		{
			"an older aired broadcast beats a newer scheduled one",
			[]*liveplanner.Broadcast{
				record("aired", "Misa 12h - Lunes 5 de enero", "2026-01-05T12:00:00+01:00", "2026-01-05T13:00:00+01:00"),
				record("pending", "Misa 12h - Lunes 1 de junio", "2026-06-01T12:00:00+02:00", ""),
			},
			"Misa 12h",
			false,
			"aired",
			true,
		},
		{
			"the most recently aired candidate wins",
			[]*liveplanner.Broadcast{
				record("older", "Misa 12h - Lunes 5 de enero", "2026-01-05T12:00:00+01:00", "2026-01-05T13:00:00+01:00"),
				record("newer", "Misa 12h - Lunes 12 de enero", "2026-01-12T12:00:00+01:00", "2026-01-12T13:00:00+01:00"),
			},
			"Misa 12h",
			false,
			"newer",
			true,
		},
		{
			"a scheduled candidate with metadata beats a newer bare one",
			[]*liveplanner.Broadcast{
				withDescription(record("rich", "Misa 12h - Lunes 2 de marzo", "2026-03-02T12:00:00+01:00", ""), "Donativos en smcana.es"),
				record("bare", "Misa 12h - Lunes 1 de junio", "2026-06-01T12:00:00+02:00", ""),
			},
			"Misa 12h",
			false,
			"rich",
			false,
		},
		{
			"bare scheduled candidates still yield a template",
			[]*liveplanner.Broadcast{
				record("old", "Misa 12h - Lunes 2 de marzo", "2026-03-02T12:00:00+01:00", ""),
				record("new", "Misa 12h - Lunes 1 de junio", "2026-06-01T12:00:00+02:00", ""),
			},
			"Misa 12h",
			false,
			"new",
			false,
		},
		{
			"malformed timestamps rank lowest",
			[]*liveplanner.Broadcast{
				record("broken", "Misa 12h - Lunes 5 de enero", "2026-01-05T12:00:00+01:00", "not-a-timestamp"),
				record("valid", "Misa 12h - Lunes 2 de enero", "2026-01-02T12:00:00+01:00", "2026-01-02T13:00:00+01:00"),
			},
			"Misa 12h",
			false,
			"valid",
			true,
		},
		{
			"ties keep the earliest-listed record",
			[]*liveplanner.Broadcast{
				record("first", "Misa 12h - Lunes 5 de enero", "2026-01-05T12:00:00+01:00", "2026-01-05T13:00:00+01:00"),
				record("second", "Misa 12h - Martes 6 de enero", "2026-01-06T12:00:00+01:00", "2026-01-05T13:00:00+01:00"),
			},
			"Misa 12h",
			false,
			"first",
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.records, tt.keyword)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.Equal(t, tt.wantSourceId, got.SourceId)
			assert.Equal(t, tt.wantFromEmitted, got.FromEmitted)
		})
	}
}

func Test_Select_reducesToCopySafeFields(t *testing.T) {
	enabled := true
	disabled := false
	delay := 5000
	source := &liveplanner.Broadcast{
		Id: "tmpl",
		Snippet: &liveplanner.BroadcastSnippet{
			Title:                "Misa 12h - Lunes 5 de enero",
			Description:          "Donativos en smcana.es",
			ScheduledStartTime:   "2026-01-05T12:00:00+01:00",
			ActualEndTime:        "2026-01-05T13:00:00+01:00",
			DefaultLanguage:      "es",
			DefaultAudioLanguage: "es-ES",
			CategoryId:           "29",
			Thumbnails: map[string]liveplanner.Thumbnail{
				"default": {URL: "https://i.ytimg.com/vi/tmpl/default.jpg"},
				"maxres":  {URL: "https://i.ytimg.com/vi/tmpl/maxresdefault.jpg"},
			},
		},
		ContentDetails: &liveplanner.BroadcastContent{
			BoundStreamId:     "stream-1",
			EnableAutoStart:   &enabled,
			EnableDvr:         &enabled,
			LatencyPreference: "ultraLow",
			MonitorStream:     &liveplanner.MonitorStream{EnableMonitorStream: &disabled, BroadcastStreamDelayMs: &delay},
			EnableChat:        &enabled,
		},
		Status: &liveplanner.BroadcastStatus{
			LifeCycleStatus:         "complete",
			PrivacyStatus:           "unlisted",
			SelfDeclaredMadeForKids: &disabled,
		},
		Monetization: &liveplanner.MonetizationDetails{
			EnableMonetization:   &enabled,
			EnableManualMidrolls: &disabled,
		},
	}

	got := Select([]*liveplanner.Broadcast{source}, "Misa 12h")
	assert.NotNil(t, got)

	// Reusable settings come through
	assert.Equal(t, "unlisted", got.PrivacyStatus)
	assert.Equal(t, "Donativos en smcana.es", got.Description)
	assert.Equal(t, "es", got.DefaultLanguage)
	assert.Equal(t, "es-ES", got.DefaultAudioLanguage)
	assert.Equal(t, "29", got.CategoryId)
	assert.Equal(t, &disabled, got.MadeForKids)
	assert.Equal(t, &enabled, got.Monetization.EnableMonetization)
	assert.Equal(t, &enabled, got.ContentDetails.EnableAutoStart)
	assert.Equal(t, "ultraLow", got.ContentDetails.LatencyPreference)
	assert.Equal(t, &delay, got.ContentDetails.MonitorStream.BroadcastStreamDelayMs)

	// The highest-resolution thumbnail is preferred
	assert.Equal(t, "https://i.ytimg.com/vi/tmpl/maxresdefault.jpg", got.ThumbnailURL)

	// The bound stream is surfaced for stream resolution but stripped from the
	// copyable content details, and the chat flag never survives
	assert.Equal(t, "stream-1", got.BoundStreamId)
	assert.Empty(t, got.ContentDetails.BoundStreamId)
	assert.Nil(t, got.ContentDetails.EnableChat)

	// Copies, not aliases: mutating the template must not touch the source
	*got.ContentDetails.EnableAutoStart = false
	assert.True(t, *source.ContentDetails.EnableAutoStart)
}

func record(id, title, scheduledStart, actualEnd string) *liveplanner.Broadcast {
	return &liveplanner.Broadcast{
		Id: id,
		Snippet: &liveplanner.BroadcastSnippet{
			Title:              title,
			ScheduledStartTime: scheduledStart,
			ActualEndTime:      actualEnd,
		},
	}
}

func withDescription(b *liveplanner.Broadcast, description string) *liveplanner.Broadcast {
	b.Snippet.Description = description
	return b
}
