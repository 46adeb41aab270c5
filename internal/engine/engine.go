package engine

import (
	"context"
	"errors"
	"time"

	"golang.org/x/exp/slog"

	"github.com/smcana/liveplanner"
	"github.com/smcana/liveplanner/internal/catalog"
	"github.com/smcana/liveplanner/internal/schedule"
	"github.com/smcana/liveplanner/internal/template"
	"github.com/smcana/liveplanner/internal/ytapi"
)

// Config carries the run parameters the engine needs beyond its
// collaborators.
type Config struct {
	Definitions     []liveplanner.Definition
	Timezone        string
	PrivacyStatus   string
	StartOffsetDays int
	MaxDaysAhead    int
	HorizonCapDays  int
	StopOnLimit     bool
	CreatePause     time.Duration
}

// Engine reconciles the planning window against the channel: it plans the
// slots, skips the ones that already have a broadcast and creates the rest
// through the configured backend, one at a time.
type Engine struct {
	catalog *catalog.Catalog
	backend liveplanner.CreationBackend
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
	sleep   func(time.Duration)
}

func New(cat *catalog.Catalog, backend liveplanner.CreationBackend, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		catalog: cat,
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Run executes one reconciliation pass. The returned report is never nil and
// its summary is logged on every path, fatal ones included. A non-nil error
// means the run aborted; a run that stops early on a creation limit is a
// clean outcome and returns a nil error.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	defer func() { report.log(e.logger) }()

	loc := e.location()
	e.logger.Info("START",
		"timezone", loc.String(),
		"offset_days", e.cfg.StartOffsetDays,
		"max_days_ahead", e.cfg.MaxDaysAhead,
		"horizon_cap_days", e.cfg.HorizonCapDays,
	)

	// One snapshot of the channel per run; planning, template selection and
	// dedupe all work against it
	if err := e.catalog.Load(ctx); err != nil {
		return report, err
	}

	slots, err := schedule.Plan(schedule.Params{
		Today:           e.now().In(loc),
		Location:        loc,
		StartOffsetDays: e.cfg.StartOffsetDays,
		MaxDaysAhead:    e.cfg.MaxDaysAhead,
		HorizonCapDays:  e.cfg.HorizonCapDays,
		Definitions:     e.cfg.Definitions,
	})
	if err != nil {
		return report, err
	}
	if len(slots) == 0 {
		return report, nil
	}

	for _, line := range e.catalog.UpcomingSummary(loc) {
		e.logger.Info("STATUS", "broadcast", line)
	}

	templates := e.resolveTemplates()
	streamId := e.resolveStreamId(templates)

	var day string
	for _, slot := range slots {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if d := slot.Date.Format("2006-01-02"); d != day {
			day = d
			e.logger.Info("DAY", "date", day)
		}
		report.Planned = append(report.Planned, slot.Title)

		if existing := e.catalog.FindForSlot(slot.Title, slot.Definition.Keyword, slot.Start); existing != nil {
			e.logger.Info("SKIP", "title", slot.Title, "id", existing.Id)
			report.Existing = append(report.Existing, slot.Title)
			continue
		}

		tmpl := templates[slot.Definition.Keyword]
		created, createErr := e.backend.CreateReusingTemplate(ctx, liveplanner.CreateRequest{
			Title:          slot.Title,
			Description:    description(tmpl, slot.Definition.DefaultDescription),
			ScheduledStart: slot.Start,
			Keyword:        slot.Definition.Keyword,
			Template:       tmpl,
			StreamId:       streamId,
			PrivacyStatus:  e.cfg.PrivacyStatus,
		})
		if created != nil {
			// Even a partially failed creation exists on the platform now;
			// record it and let in-run dedupe see it
			report.Created = append(report.Created, slot.Title)
			e.catalog.Append(created)
		}
		if createErr != nil {
			stop, fatal := e.recordFailure(report, slot.Title, createErr)
			if fatal {
				return report, createErr
			}
			if stop {
				return report, nil
			}
			continue
		}
		e.sleep(e.cfg.CreatePause)
	}

	return report, nil
}

// recordFailure applies the error policy for one failed slot and reports how
// the run should proceed. Creation limit exhaustion stops the run cleanly
// when stop-on-limit is set and otherwise counts as a per-slot failure, as do
// rolled-back thumbnails. Quota exhaustion also stops cleanly under
// stop-on-limit; every other error aborts the run.
func (e *Engine) recordFailure(report *Report, title string, err error) (stop, fatal bool) {
	var limitErr *ytapi.CreationLimitError
	if errors.As(err, &limitErr) {
		if e.cfg.StopOnLimit {
			e.logger.Warn("STOP", "title", title, "reason", limitErr.Reason)
			return true, false
		}
		e.logger.Warn("Creation failed on the rate limit", "title", title, "error", err)
		report.Failed = append(report.Failed, Failure{Title: title, Err: err})
		return false, false
	}

	var thumbErr *ytapi.ThumbnailError
	if errors.As(err, &thumbErr) {
		e.logger.Warn("Creation rolled back on thumbnail failure", "title", title, "error", err)
		report.Failed = append(report.Failed, Failure{Title: title, Err: err})
		return false, false
	}

	if limited, reason := ytapi.IsQuotaOrLimit(err); limited && e.cfg.StopOnLimit {
		e.logger.Warn("STOP", "title", title, "reason", reason)
		return true, false
	}

	e.logger.Error("Creation failed", "title", title, "error", err)
	report.Failed = append(report.Failed, Failure{Title: title, Err: err})
	return false, true
}

// resolveTemplates picks one reuse template per distinct keyword, in
// definition order. The catalog holds one snapshot per run, so each selection
// is computed once and shared by every slot of that keyword.
func (e *Engine) resolveTemplates() map[string]*liveplanner.Template {
	templates := make(map[string]*liveplanner.Template)
	for _, def := range e.cfg.Definitions {
		if _, done := templates[def.Keyword]; done {
			continue
		}
		tmpl := template.Select(e.catalog.All(), def.Keyword)
		templates[def.Keyword] = tmpl
		if tmpl == nil {
			e.logger.Info("TEMPLATE", "keyword", def.Keyword, "source", "none")
			continue
		}
		source := "scheduled"
		if tmpl.FromEmitted {
			source = "emitted"
		}
		e.logger.Info("TEMPLATE", "keyword", def.Keyword, "source", source, "id", tmpl.SourceId, "title", tmpl.SourceTitle)
	}
	return templates
}

// resolveStreamId picks the ingest stream bound onto new broadcasts: the
// stream of the most recently aired broadcast when one exists, else the first
// template carrying one, in definition order.
func (e *Engine) resolveStreamId(templates map[string]*liveplanner.Template) string {
	if id := e.catalog.LatestAiredStreamId(); id != "" {
		return id
	}
	for _, def := range e.cfg.Definitions {
		if tmpl := templates[def.Keyword]; tmpl != nil && tmpl.BoundStreamId != "" {
			return tmpl.BoundStreamId
		}
	}
	return ""
}

func (e *Engine) location() *time.Location {
	loc, err := time.LoadLocation(e.cfg.Timezone)
	if err != nil {
		e.logger.Warn("Unknown timezone; falling back to UTC", "timezone", e.cfg.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// description resolves a slot's description: the reused template's text when
// it has any, else the definition default.
func description(tmpl *liveplanner.Template, fallback string) string {
	if tmpl != nil && tmpl.Description != "" {
		return tmpl.Description
	}
	return fallback
}
