package timefmt

import (
	"errors"
	"time"
)

// Layout is the canonical timestamp format used across the wire and the
// database: DD-MM-YYYY HH:MM:SS.
const Layout = "02-01-2006 15:04:05"

// DateLayout is the canonical date-only format: DD-MM-YYYY.
const DateLayout = "02-01-2006"

var ErrEmptyTimestamp = errors.New("empty timestamp")

// millisThreshold: epoch values above this are treated as milliseconds
// (1e11 seconds is far beyond any sane wall clock).
const millisThreshold = int64(1e11)

// EpochToString converts an epoch timestamp (seconds or milliseconds) into
// the canonical timestamp string in UTC. Zero or negative input yields "".
func EpochToString(epoch int64) string {
	if epoch <= 0 {
		return ""
	}
	if epoch > millisThreshold {
		epoch = epoch / 1000
	}
	return time.Unix(epoch, 0).UTC().Format(Layout)
}

// Now returns the current time in the canonical format.
func Now() string {
	return time.Now().UTC().Format(Layout)
}

// Parse parses a canonical timestamp string.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrEmptyTimestamp
	}
	return time.Parse(Layout, s)
}

// SecondsBetween returns end − start in whole seconds.
func SecondsBetween(start, end string) (int, error) {
	startT, err := Parse(start)
	if err != nil {
		return 0, err
	}
	endT, err := Parse(end)
	if err != nil {
		return 0, err
	}
	return int(endT.Sub(startT).Seconds()), nil
}
