package telegram

import (
	"fmt"
	"strings"

	"tris-bot/internal/engine"
	"tris-bot/internal/game"
)

var cellEmoji = map[game.Cell]string{
	game.CellEmpty:   "⬛",
	game.CellFilled:  "🟦",
	game.CellFalling: "🟥",
}

// Render turns a session view into the chat message body.
func Render(view engine.SessionView) string {
	if view.GameOver {
		return fmt.Sprintf(
			"GAME OVER!\nScore: %d\nLines: %d\nTime: %s\n\nUse /tris to start a new game",
			view.Score, view.Lines, formatDuration(view.ElapsedSeconds))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tris\nScore: %d | Lines: %d\n\n", view.Score, view.Lines)
	for _, row := range view.Grid {
		for _, cell := range row {
			sb.WriteString(cellEmoji[cell])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}
