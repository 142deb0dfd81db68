package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tris-bot/internal/config"
	"tris-bot/internal/domain"
)

// ScoreStore keeps one ScoreRecord per player in a JSON-lines log file.
// Every update loads the full set, merges the new result and rewrites the
// whole file, staged through a temp file so a failed write never corrupts
// the previous contents. Reads that fail are treated as an empty store.
type ScoreStore struct {
	path   string
	mu     sync.Mutex
	logger zerolog.Logger
	now    func() time.Time
}

func NewScoreStore(cfg *config.Config, logger zerolog.Logger) *ScoreStore {
	return &ScoreStore{
		path:   cfg.ScorePath,
		logger: logger,
		now:    time.Now,
	}
}

// Record merges one finished game into the player's record. A new player is
// seeded with the game's values as both current and best; an existing one
// always gets the cumulative counters bumped and each best field compared
// independently.
func (s *ScoreStore) Record(ctx context.Context, result domain.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("score store write cancelled: %w", err)
	}

	records := s.loadLocked()
	now := s.now()

	idx := -1
	for i := range records {
		if records[i].UserID == result.Player.ID {
			idx = i
			break
		}
	}

	if idx < 0 {
		records = append(records, domain.ScoreRecord{
			UserID:              result.Player.ID,
			Username:            result.Player.Name,
			AvatarURL:           result.Player.AvatarURL,
			BestScore:           result.Score,
			BestScoreAt:         now,
			BestLines:           result.Lines,
			BestLinesAt:         now,
			BestDurationSeconds: result.DurationSeconds,
			BestDurationAt:      now,
			GamesPlayed:         1,
			TotalLines:          result.Lines,
			TotalPlaySeconds:    result.DurationSeconds,
			UpdatedAt:           now,
		})
	} else {
		rec := &records[idx]
		rec.Username = result.Player.Name
		rec.AvatarURL = result.Player.AvatarURL
		rec.GamesPlayed++
		rec.TotalLines += result.Lines
		rec.TotalPlaySeconds += result.DurationSeconds
		if result.Score > rec.BestScore {
			rec.BestScore = result.Score
			rec.BestScoreAt = now
		}
		if result.Lines > rec.BestLines {
			rec.BestLines = result.Lines
			rec.BestLinesAt = now
		}
		if result.DurationSeconds > rec.BestDurationSeconds {
			rec.BestDurationSeconds = result.DurationSeconds
			rec.BestDurationAt = now
		}
		rec.UpdatedAt = now
	}

	if err := s.writeAllLocked(records); err != nil {
		return err
	}

	s.logger.Info().
		Int64("user_id", result.Player.ID).
		Int("score", result.Score).
		Int("lines", result.Lines).
		Int("players", len(records)).
		Msg("score recorded")
	return nil
}

// TopScores returns up to limit records sorted by descending best score,
// ties broken by the earlier best-score timestamp.
func (s *ScoreStore) TopScores(limit int) []domain.ScoreRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.loadLocked()
	sort.Slice(records, func(i, j int) bool {
		if records[i].BestScore != records[j].BestScore {
			return records[i].BestScore > records[j].BestScore
		}
		return records[i].BestScoreAt.Before(records[j].BestScoreAt)
	})
	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

func (s *ScoreStore) PlayerScore(userID int64) (domain.ScoreRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.loadLocked() {
		if rec.UserID == userID {
			return rec, true
		}
	}
	return domain.ScoreRecord{}, false
}

func (s *ScoreStore) loadLocked() []domain.ScoreRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("score log unreadable, treating as empty")
		}
		return nil
	}

	var records []domain.ScoreRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec domain.ScoreRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("skipping malformed score line")
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (s *ScoreStore) writeAllLocked(records []domain.ScoreRecord) error {
	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal score record: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to stage score log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit score log: %w", err)
	}
	return nil
}
