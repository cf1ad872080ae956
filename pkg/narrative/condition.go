package narrative

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// ConditionType discriminates the condition union.
type ConditionType string

const (
	ConditionAtomic     ConditionType = "atomic"
	ConditionFlagActive ConditionType = "flag_active"
	ConditionAnd        ConditionType = "and"
	ConditionOr         ConditionType = "or"
)

// Condition is a composable predicate evaluated against a Snapshot and
// the FlagStore. The zero value (no type) always evaluates true, so an
// omitted condition in content means "unconditional".
type Condition struct {
	Type ConditionType `json:"type,omitempty"`
	Name string        `json:"name,omitempty"` // atomic predicate name
	Flag string        `json:"flag,omitempty"` // key for flag_active
	Of   []Condition   `json:"of,omitempty"`   // operands for and/or
}

// UnmarshalJSON supports both a bare string (shorthand for an atomic
// predicate) and the full object form.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.Type = ConditionAtomic
		c.Name = name
		return nil
	}

	type alias Condition
	aux := &struct{ *alias }{alias: (*alias)(c)}
	return json.Unmarshal(data, aux)
}

// IsZero reports whether the condition is absent.
func (c Condition) IsZero() bool {
	return c.Type == ""
}

// FlagGated reports whether evaluating the condition consults the flag
// store anywhere in its tree. Flag-gated content is considered more
// specific than generic content during selection.
func (c Condition) FlagGated() bool {
	switch c.Type {
	case ConditionFlagActive:
		return true
	case ConditionAnd, ConditionOr:
		for _, sub := range c.Of {
			if sub.FlagGated() {
				return true
			}
		}
	}
	return false
}

// predicate evaluates an atomic predicate name against the snapshot.
var predicates = map[string]func(*Snapshot) bool{
	"always":               func(*Snapshot) bool { return true },
	"win_streak_3plus":     func(s *Snapshot) bool { return s.WinStreak >= 3 },
	"loss_streak_2plus":    func(s *Snapshot) bool { return s.LossStreak >= 2 },
	"loss_streak_3plus":    func(s *Snapshot) bool { return s.LossStreak >= 3 },
	"post_win":             func(s *Snapshot) bool { return s.LastMatch != nil && s.LastMatch.Won },
	"post_loss":            func(s *Snapshot) bool { return s.LastMatch != nil && !s.LastMatch.Won },
	"rivalry_active":       func(s *Snapshot) bool { return len(s.Rivalries) > 0 },
	"rivalry_heated":       func(s *Snapshot) bool { r, ok := s.HottestRivalry(); return ok && r.Intensity >= 70 },
	"rivalry_match_next":   func(s *Snapshot) bool { return s.LastMatch != nil && s.LastMatch.RivalryMatch },
	"upper_bracket":        func(s *Snapshot) bool { return s.Bracket == BracketUpper },
	"lower_bracket":        func(s *Snapshot) bool { return s.Bracket == BracketLower },
	"team_identity_fragile": func(s *Snapshot) bool {
		return s.TeamMorale < 40 || s.LossStreak >= 2
	},
	"morale_low":         func(s *Snapshot) bool { return s.TeamMorale < 35 },
	"morale_high":        func(s *Snapshot) bool { return s.TeamMorale >= 75 },
	"hype_high":          func(s *Snapshot) bool { return s.Hype >= 70 },
	"sponsor_trust_low":  func(s *Snapshot) bool { return s.SponsorTrust < 30 },
	"sponsor_trust_high": func(s *Snapshot) bool { return s.SponsorTrust >= 70 },
	"player_morale_low": func(s *Snapshot) bool {
		for _, p := range s.Players {
			if p.Morale < 30 {
				return true
			}
		}
		return false
	},
}

// KnownPredicate reports whether name is a recognized atomic predicate.
// The catalog validator uses this to flag typos at authoring time.
func KnownPredicate(name string) bool {
	_, ok := predicates[name]
	return ok
}

// Validate checks the condition tree for authoring errors: unknown
// predicate names, missing flag keys, empty combinators. Evaluation
// tolerates all of these (failing closed); Validate surfaces them to
// the content validator instead.
func (c Condition) Validate() []error {
	var errs []error
	switch c.Type {
	case "":
	case ConditionAtomic:
		if !KnownPredicate(c.Name) {
			errs = append(errs, fmt.Errorf("unknown predicate %q", c.Name))
		}
	case ConditionFlagActive:
		if c.Flag == "" {
			errs = append(errs, fmt.Errorf("flag_active condition missing flag key"))
		}
	case ConditionAnd, ConditionOr:
		if len(c.Of) == 0 {
			errs = append(errs, fmt.Errorf("empty %s combinator", c.Type))
		}
		for _, sub := range c.Of {
			errs = append(errs, sub.Validate()...)
		}
	default:
		errs = append(errs, fmt.Errorf("unknown condition type %q", c.Type))
	}
	return errs
}

// Evaluator evaluates condition trees. Unknown predicate names fail
// closed: newer content may reference predicates an older engine build
// does not implement yet, and that must degrade to "condition false"
// rather than an error.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an evaluator. A nil logger disables warnings.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate performs a recursive fold over the condition tree.
// And/or combinators short-circuit.
func (e *Evaluator) Evaluate(c Condition, snap *Snapshot, flags *FlagStore) bool {
	switch c.Type {
	case "":
		return true
	case ConditionAtomic:
		fn, ok := predicates[c.Name]
		if !ok {
			e.logger.Warn("unknown predicate in condition, failing closed", "predicate", c.Name)
			return false
		}
		return fn(snap)
	case ConditionFlagActive:
		return flags.IsActive(c.Flag, snap.Date)
	case ConditionAnd:
		for _, sub := range c.Of {
			if !e.Evaluate(sub, snap, flags) {
				return false
			}
		}
		return true
	case ConditionOr:
		for _, sub := range c.Of {
			if e.Evaluate(sub, snap, flags) {
				return true
			}
		}
		return false
	default:
		e.logger.Warn("unknown condition type, failing closed", "type", string(c.Type))
		return false
	}
}
