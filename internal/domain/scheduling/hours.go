package scheduling

import (
	"fmt"
	"time"
)

// Window is an open interval of a business day, in minutes from midnight.
type Window struct {
	Open  int
	Close int
}

// Contains checks that [startMin, endMin] fits inside the window.
func (w Window) Contains(startMin, endMin int) bool {
	return startMin >= w.Open && endMin <= w.Close
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Open/60, w.Open%60, w.Close/60, w.Close%60)
}

// Hours maps weekdays to their opening windows.
// A day with no windows is closed.
type Hours map[time.Weekday][]Window

// DefaultHours returns the standard shop schedule:
// Monday through Saturday 07:00-19:00, closed on Sunday.
func DefaultHours() Hours {
	window := Window{Open: 7 * 60, Close: 19 * 60}
	return Hours{
		time.Monday:    {window},
		time.Tuesday:   {window},
		time.Wednesday: {window},
		time.Thursday:  {window},
		time.Friday:    {window},
		time.Saturday:  {window},
	}
}

// IsOpen reports whether the day has any opening window.
func (h Hours) IsOpen(day time.Weekday) bool {
	return len(h[day]) > 0
}

// Fits checks that the slot [start, end] lies on a single open day
// and inside one of that day's windows.
func (h Hours) Fits(start, end time.Time) bool {
	if start.Year() != end.Year() || start.YearDay() != end.YearDay() {
		return false
	}

	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	for _, w := range h[start.Weekday()] {
		if w.Contains(startMin, endMin) {
			return true
		}
	}
	return false
}
