package util

import "time"

// ParseDate checks that s is a calendar date in DateFormat and returns it
// unchanged.
func ParseDate(s string) (string, bool) {
	if _, err := time.Parse(DateFormat, s); err != nil {
		return "", false
	}
	return s, true
}

// RetryAfterSeconds rounds the wait until t up to whole seconds, at least 1.
func RetryAfterSeconds(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
