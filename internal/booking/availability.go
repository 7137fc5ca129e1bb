package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotDuration is the fixed booking granularity.
const SlotDuration = 30 * time.Minute

// scheduleSource is the subset of Store the calculator reads from.
type scheduleSource interface {
	ScheduleFor(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*Schedule, error)
	ExceptionFor(ctx context.Context, doctorID uuid.UUID, date time.Time) (*ScheduleException, error)
	BookedTimes(ctx context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time, loc *time.Location) (map[string]struct{}, error)
}

// Availability derives free time slots for a doctor and date from the weekly
// schedule, per-date exceptions, and existing bookings. It is a pure read:
// a returned slot can always race with a concurrent booking, and callers own
// that trade-off.
type Availability struct {
	store scheduleSource
	now   func() time.Time
}

// NewAvailability creates an availability calculator.
func NewAvailability(store scheduleSource) *Availability {
	return &Availability{store: store, now: time.Now}
}

// Slots returns the open "HH:mm" start times for a doctor on a date, ascending.
// The date's location is treated as the clinic's timezone. An empty result
// means the day is unbookable (closed, no schedule, or fully taken).
func (a *Availability) Slots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	loc := date.Location()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	dayOfWeek := int(dayStart.Weekday())

	schedule, err := a.store.ScheduleFor(ctx, doctorID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	exception, err := a.store.ExceptionFor(ctx, doctorID, dayStart)
	if err != nil {
		return nil, err
	}
	booked, err := a.store.BookedTimes(ctx, doctorID, dayStart, dayEnd, loc)
	if err != nil {
		return nil, err
	}

	// Exception takes precedence over the weekly schedule.
	if exception != nil && exception.IsClosed {
		return nil, nil
	}

	var startTime, endTime, breakStart, breakEnd string
	switch {
	case exception != nil && exception.HasCustomHours():
		startTime, endTime = exception.CustomStart, exception.CustomEnd
	case schedule != nil && schedule.IsActive:
		startTime, endTime = schedule.StartTime, schedule.EndTime
		breakStart, breakEnd = schedule.BreakStart, schedule.BreakEnd
	default:
		// No schedule defined means an unbookable day.
		return nil, nil
	}

	open, err := clockAt(dayStart, startTime)
	if err != nil {
		return nil, fmt.Errorf("booking: schedule start: %w", err)
	}
	close_, err := clockAt(dayStart, endTime)
	if err != nil {
		return nil, fmt.Errorf("booking: schedule end: %w", err)
	}

	now := a.now().In(loc)
	isToday := dayStart.Format(time.DateOnly) == now.Format(time.DateOnly)

	var slots []string
	for current := open; !current.Add(SlotDuration).After(close_); current = current.Add(SlotDuration) {
		slot := current.Format("15:04")

		if breakStart != "" && breakEnd != "" && slot >= breakStart && slot < breakEnd {
			continue
		}
		if isToday && !current.After(now) {
			continue
		}
		if _, taken := booked[slot]; taken {
			continue
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// clockAt combines a day with an "HH:mm" time-of-day in the day's location.
func clockAt(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
