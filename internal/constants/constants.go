package constants

import "time"

const (
	DefaultTickInterval = 1 * time.Second
	PersistTimeout      = 5 * time.Second
	ShutdownTimeout     = 5 * time.Second
)

const (
	UpdatePollTimeout = 60 // seconds, Telegram long-poll
)

const (
	LeaderboardLimit = 10
)
