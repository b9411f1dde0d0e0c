package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultLocationName is the business time zone used for calendar months.
const DefaultLocationName = "Asia/Kolkata"

const monthLayout = "2006-01"

var rentMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Epoch milliseconds only; shorter digit runs are dates or days, not instants.
var epochMillisPattern = regexp.MustCompile(`^\d{13}$`)

// LoadLocation resolves name, falling back to a fixed +05:30 zone when the
// tz database is unavailable.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultLocationName
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultLocationName {
			return time.FixedZone(DefaultLocationName, 5*60*60+30*60)
		}
		return time.UTC
	}
	return loc
}

// Clock provides the current time in the business location.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type realClock struct{ loc *time.Location }

// NewClock returns a wall clock bound to loc.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c realClock) Location() *time.Location { return c.loc }

// FixedClock always reports T.
type FixedClock struct{ T time.Time }

func (c *FixedClock) Now() time.Time { return c.T }

func (c *FixedClock) Location() *time.Location {
	if c.T.Location() == nil {
		return time.UTC
	}
	return c.T.Location()
}

// Advance moves the fixed clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// ValidRentMonth reports whether s is a YYYY-MM month with month 01-12.
func ValidRentMonth(s string) bool {
	if !rentMonthPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(monthLayout, s)
	return err == nil
}

// MonthKey formats t as YYYY-MM in t's location.
func MonthKey(t time.Time) string {
	return t.Format(monthLayout)
}

// DueDate builds the due date for dueDay inside rentMonth, clamped to the
// last day of the month.
func DueDate(rentMonth string, dueDay int, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	m, err := time.ParseInLocation(monthLayout, rentMonth, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse rent month %q: %w", rentMonth, err)
	}
	if dueDay < 1 || dueDay > 31 {
		return time.Time{}, fmt.Errorf("due day %d out of range", dueDay)
	}
	last := time.Date(m.Year(), m.Month()+1, 0, 0, 0, 0, 0, loc).Day()
	if dueDay > last {
		dueDay = last
	}
	return time.Date(m.Year(), m.Month(), dueDay, 0, 0, 0, 0, loc), nil
}

var joiningLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// JoiningDueDay extracts the day of month from a desired joining date.
func JoiningDueDay(value string, loc *time.Location) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("joining date is empty")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range joiningLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc).Day(), nil
		}
	}
	if epochMillisPattern.MatchString(value) {
		if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.UnixMilli(ms).In(loc).Day(), nil
		}
	}
	return 0, fmt.Errorf("invalid joining date: %s", value)
}
