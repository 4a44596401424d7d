package session

import "time"

// The session works in time.Duration internally. Remote-control surfaces
// speak milliseconds; these helpers are the only conversion points.

func millisToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// DurationMillis converts a duration to whole milliseconds for
// remote-control consumers.
func DurationMillis(d time.Duration) int64 {
	return d.Milliseconds()
}
