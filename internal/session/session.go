// Package session gates trading to a configured UTC window.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a daily UTC trading window. Start and End are minutes from
// midnight; a window may wrap past midnight (e.g. 22:00 -> 02:00).
type Window struct {
	start int
	end   int
}

// Parse builds a Window from "HH:MM" boundaries.
func Parse(start, end string) (Window, error) {
	s, err := parseMinutes(start)
	if err != nil {
		return Window{}, fmt.Errorf("session start: %w", err)
	}
	e, err := parseMinutes(end)
	if err != nil {
		return Window{}, fmt.Errorf("session end: %w", err)
	}
	if s == e {
		return Window{}, fmt.Errorf("session start and end are both %s", start)
	}
	return Window{start: s, end: e}, nil
}

// MustParse is Parse for trusted literals; it panics on malformed input.
func MustParse(start, end string) Window {
	w, err := Parse(start, end)
	if err != nil {
		panic(err)
	}
	return w
}

// Contains reports whether now (converted to UTC) falls inside the window.
// Start is inclusive, end exclusive: a 08:00-12:00 window trades through
// 11:59 and not at 12:00. The exclusive end is what lets wrapping windows
// and back-to-back windows meet without overlapping, at the cost of the
// final minute an inclusive bound would include.
func (w Window) Contains(now time.Time) bool {
	utc := now.UTC()
	m := utc.Hour()*60 + utc.Minute()
	if w.start < w.end {
		return m >= w.start && m < w.end
	}
	// wraps midnight
	return m >= w.start || m < w.end
}

// String renders the window as "HH:MM-HH:MM UTC".
func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d UTC", w.start/60, w.start%60, w.end/60, w.end%60)
}

func parseMinutes(v string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("want HH:MM, got %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute in %q", v)
	}
	return h*60 + m, nil
}
