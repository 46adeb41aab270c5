package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smcana/liveplanner"
)

// Params configures one planning pass.
type Params struct {
	// Today anchors the window; only its calendar date matters.
	Today time.Time
	// Location is the timezone slots are scheduled in.
	Location *time.Location
	// StartOffsetDays is how many days after today the window opens.
	StartOffsetDays int
	// MaxDaysAhead is the operator-configured horizon.
	MaxDaysAhead int
	// HorizonCapDays is the hard ceiling imposed by the creation backend;
	// the effective horizon is the smaller of the two.
	HorizonCapDays int
	// Definitions are expanded in order for each day of the window.
	Definitions []liveplanner.Definition
}

// Slot is one planned broadcast occurrence: a definition pinned to a concrete
// date, with its start instant and title already computed.
type Slot struct {
	Date       time.Time
	Start      time.Time
	Title      string
	Definition liveplanner.Definition
}

// Plan expands the definitions over the inclusive window
// [today+offset, today+min(maxDaysAhead, horizonCap)], in day order and then
// definition order within each day. Definitions restricted to a weekday only
// yield slots on matching dates. A window whose start falls after its end
// yields no slots and no error: there is simply nothing to do.
func Plan(p Params) ([]Slot, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	days := p.MaxDaysAhead
	if p.HorizonCapDays < days {
		days = p.HorizonCapDays
	}
	base := time.Date(p.Today.Year(), p.Today.Month(), p.Today.Day(), 0, 0, 0, 0, loc)
	start := base.AddDate(0, 0, p.StartOffsetDays)
	end := base.AddDate(0, 0, days)
	if start.After(end) {
		return nil, nil
	}

	var slots []Slot
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		for _, def := range p.Definitions {
			if def.Weekday != nil && date.Weekday() != *def.Weekday {
				continue
			}
			hour, minute, err := parseStartTime(def.StartTime)
			if err != nil {
				return nil, fmt.Errorf("definition %q: %w", def.Prefix, err)
			}
			slots = append(slots, Slot{
				Date:       date,
				Start:      time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc),
				Title:      BuildTitle(def.Prefix, date),
				Definition: def,
			})
		}
	}
	return slots, nil
}

// parseStartTime parses a "HH:MM" time-of-day string.
func parseStartTime(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid start time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid start time %q: bad hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid start time %q: bad minute", s)
	}
	return hour, minute, nil
}
