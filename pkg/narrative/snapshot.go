package narrative

import "time"

// Bracket is the team's current tournament position.
type Bracket string

const (
	BracketNone  Bracket = ""
	BracketUpper Bracket = "upper"
	BracketLower Bracket = "lower"
	BracketGroup Bracket = "group"
)

// MatchOutcome filters content by the result of the most recent match.
// The empty value matches any outcome.
type MatchOutcome string

const (
	OutcomeAny  MatchOutcome = ""
	OutcomeWin  MatchOutcome = "win"
	OutcomeLoss MatchOutcome = "loss"
)

// PlayerRef is a read-only view of a roster player.
type PlayerRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Personality string `json:"personality"` // e.g. "volatile", "stoic", "showman"
	Morale      int    `json:"morale"`
}

// Rivalry is an active rivalry with another team.
type Rivalry struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	Intensity int    `json:"intensity"` // 0-100
}

// MatchResult is the outcome data for the most recent match.
type MatchResult struct {
	OpponentID   string `json:"opponent_id"`
	OpponentName string `json:"opponent_name"`
	Won          bool   `json:"won"`
	RivalryMatch bool   `json:"rivalry_match"`
}

// Snapshot is the read-only game state handed to the engine once per
// simulated day by the calendar collaborator. The engine never mutates
// it; all state changes flow back through StateDelta.
type Snapshot struct {
	Date         time.Time    `json:"date"`
	TeamID       string       `json:"team_id"`
	TeamName     string       `json:"team_name"`
	WinStreak    int          `json:"win_streak"`
	LossStreak   int          `json:"loss_streak"`
	TeamMorale   int          `json:"team_morale"`   // 0-100
	Hype         int          `json:"hype"`          // 0-100
	Fanbase      int          `json:"fanbase"`       // unbounded
	SponsorTrust int          `json:"sponsor_trust"` // 0-100
	Bracket      Bracket      `json:"bracket"`
	Rivalries    []Rivalry    `json:"rivalries"`
	Players      []PlayerRef  `json:"players"`
	LastMatch    *MatchResult `json:"last_match,omitempty"`
}

// Player looks up a roster player by id.
func (s *Snapshot) Player(id string) (PlayerRef, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerRef{}, false
}

// HottestRivalry returns the active rivalry with the highest intensity.
func (s *Snapshot) HottestRivalry() (Rivalry, bool) {
	var best Rivalry
	found := false
	for _, r := range s.Rivalries {
		if !found || r.Intensity > best.Intensity {
			best = r
			found = true
		}
	}
	return best, found
}

// Outcome returns the outcome of the last match, or OutcomeAny when no
// match has been played yet.
func (s *Snapshot) Outcome() MatchOutcome {
	if s.LastMatch == nil {
		return OutcomeAny
	}
	if s.LastMatch.Won {
		return OutcomeWin
	}
	return OutcomeLoss
}
