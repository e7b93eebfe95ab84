// Package model defines shared data structures.
package model

import "time"

// KeyEvent is a single key press delivered by a key source.
type KeyEvent struct {
	Key string
}

// Config defines session settings.
type Config struct {
	LogFile string
	History bool
	DBPath  string
}

// HistoryFilter defines filters for listing recorded sessions.
type HistoryFilter struct {
	Since *time.Time
	Last  int
}

// SessionSummary captures a finalized logging session.
type SessionSummary struct {
	StartedAt  time.Time
	EndedAt    time.Time
	LogFile    string
	Total      int
	Distinct   int
	DurationMs int64
}

// KeyCount stores the tally of one key.
type KeyCount struct {
	Key   string
	Count int
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	LogFile    string
	Total      int
	Distinct   int
	DurationMs int64
}
