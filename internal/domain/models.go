package domain

import (
	"time"
)

// PlayerRef identifies the chat user on whose behalf a session runs.
type PlayerRef struct {
	ID        int64
	Name      string
	AvatarURL string
}

// ScoreRecord is the single durable record kept per player. The three best
// fields move independently and never decrease; the cumulative counters
// grow with every finished game. Timestamps serialize as RFC 3339 so the
// tie-break sort can compare them lexically.
type ScoreRecord struct {
	UserID              int64     `json:"user_id"`
	Username            string    `json:"username"`
	AvatarURL           string    `json:"avatar_url"`
	BestScore           int       `json:"best_score"`
	BestScoreAt         time.Time `json:"best_score_at"`
	BestLines           int       `json:"best_lines"`
	BestLinesAt         time.Time `json:"best_lines_at"`
	BestDurationSeconds int       `json:"best_duration_seconds"`
	BestDurationAt      time.Time `json:"best_duration_at"`
	GamesPlayed         int       `json:"games_played"`
	TotalLines          int       `json:"total_lines"`
	TotalPlaySeconds    int       `json:"total_play_seconds"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// GameResult is what one finished session contributes to a ScoreRecord.
type GameResult struct {
	Player          PlayerRef
	Score           int
	Lines           int
	DurationSeconds int
}
