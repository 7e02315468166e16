package daterange

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the wire format for stay dates.
const Layout = "2006-01-02"

var ErrMissingDate = errors.New("daterange: start and end dates required")

// DateRange is an inclusive interval of stay days [Start, End].
// Both bounds are normalized to midnight UTC. Callers are expected to pass
// Start <= End; the range itself does not reject inverted bounds.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: truncate(start), End: truncate(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two yyyy-MM-dd strings.
func Parse(start, end string) (DateRange, error) {
	s, err := time.ParseInLocation(Layout, start, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("daterange: invalid start %q: %w", start, err)
	}
	e, err := time.ParseInLocation(Layout, end, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("daterange: invalid end %q: %w", end, err)
	}
	return New(s, e)
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Overlaps reports whether two ranges share at least one stay day.
// Touching on a single day counts; strict adjacency (end on the day before
// the other's start) does not.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !dr.End.Before(other.Start)
}

// Days is the number of stay days covered, inclusive of both bounds.
func (dr DateRange) Days() int {
	return int(dr.End.Sub(dr.Start)/(24*time.Hour)) + 1
}

func (dr DateRange) StartString() string { return dr.Start.Format(Layout) }

func (dr DateRange) EndString() string { return dr.End.Format(Layout) }

func truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
