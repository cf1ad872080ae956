package narrative

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// RenderText substitutes placeholder tokens in narrative content
// against the snapshot. Supported tokens: {teamName}, {playerName}
// (the subject player), {rivalName}, {opponentName}. Unknown subject
// ids are a content error: the token is left readable ("the player")
// and a warning is logged, but rendering never fails.
func RenderText(text string, snap *Snapshot, subjectID string, logger *slog.Logger) string {
	playerName := "the player"
	if subjectID != "" {
		if p, ok := snap.Player(subjectID); ok {
			playerName = p.Name
		} else if logger != nil {
			logger.Warn("unknown subject id in narrative text", "subject_id", subjectID)
		}
	}

	rivalName := "a rival team"
	if r, ok := snap.HottestRivalry(); ok {
		rivalName = r.TeamName
	}

	opponentName := "the opponent"
	if snap.LastMatch != nil {
		opponentName = snap.LastMatch.OpponentName
	}

	return strings.NewReplacer(
		"{teamName}", snap.TeamName,
		"{playerName}", playerName,
		"{rivalName}", rivalName,
		"{opponentName}", opponentName,
	).Replace(text)
}

// Headline turns a snake_case identifier into a display headline,
// e.g. "igl_crisis" -> "Igl Crisis".
func Headline(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
