package regime

import (
	"sort"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// RecurringEvent is a scheduled release that repeats on a weekday rule.
// Nth == 0 means every week, otherwise the Nth such weekday of the month.
type RecurringEvent struct {
	Name     string
	Currency string
	Impact   contracts.NewsImpact
	Weekday  time.Weekday
	Nth      int
	Hour     int // UTC
	Minute   int
}

// DefaultEvents 주요 경제지표 일정 (UTC, 근사치)
var DefaultEvents = []RecurringEvent{
	{"Non-Farm Payrolls", "USD", contracts.ImpactHigh, time.Friday, 1, 12, 30},
	{"US CPI", "USD", contracts.ImpactHigh, time.Wednesday, 2, 12, 30},
	{"FOMC Rate Decision", "USD", contracts.ImpactHigh, time.Wednesday, 3, 18, 0},
	{"ECB Rate Decision", "EUR", contracts.ImpactHigh, time.Thursday, 2, 12, 15},
	{"BoE Rate Decision", "GBP", contracts.ImpactHigh, time.Thursday, 1, 11, 0},
	{"BoJ Rate Decision", "JPY", contracts.ImpactHigh, time.Tuesday, 3, 3, 0},
	{"RBA Rate Decision", "AUD", contracts.ImpactHigh, time.Tuesday, 1, 3, 30},
	{"US Initial Jobless Claims", "USD", contracts.ImpactMedium, time.Thursday, 0, 12, 30},
	{"German ZEW Sentiment", "EUR", contracts.ImpactMedium, time.Tuesday, 3, 10, 0},
}

// Calendar expands recurring events into concrete instants
type Calendar struct {
	events []RecurringEvent
}

// NewCalendar creates a calendar; nil events means DefaultEvents
func NewCalendar(events []RecurringEvent) *Calendar {
	if events == nil {
		events = DefaultEvents
	}
	return &Calendar{events: events}
}

// Between returns events in [from, to] touching any of currencies,
// sorted by time. Empty currencies matches everything.
func (c *Calendar) Between(from, to time.Time, currencies []string) []contracts.NewsEvent {
	from, to = from.UTC(), to.UTC()
	var out []contracts.NewsEvent

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(to) {
		for _, ev := range c.events {
			if !matchesCurrency(ev.Currency, currencies) || !ev.occursOn(day) {
				continue
			}
			at := day.Add(time.Duration(ev.Hour)*time.Hour + time.Duration(ev.Minute)*time.Minute)
			if at.Before(from) || at.After(to) {
				continue
			}
			out = append(out, contracts.NewsEvent{
				Name:     ev.Name,
				Currency: ev.Currency,
				Impact:   ev.Impact,
				Time:     at,
			})
		}
		day = day.AddDate(0, 0, 1)
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Time.Before(out[b].Time) })
	return out
}

func (ev RecurringEvent) occursOn(day time.Time) bool {
	if day.Weekday() != ev.Weekday {
		return false
	}
	if ev.Nth == 0 {
		return true
	}
	return (day.Day()-1)/7+1 == ev.Nth
}

func matchesCurrency(ccy string, currencies []string) bool {
	if len(currencies) == 0 || ccy == "" {
		return true
	}
	for _, c := range currencies {
		if c == ccy {
			return true
		}
	}
	return false
}
