package service

import "time"

// localNow returns the current time in loc, or local time when loc is nil.
// Opening hours are wall-clock times in the directory's timezone.
func localNow(loc *time.Location) time.Time {
	if loc == nil {
		return time.Now()
	}
	return time.Now().In(loc)
}
