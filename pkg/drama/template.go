package drama

import (
	"fmt"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// Category groups drama templates for cooldown purposes. A category
// cannot produce two new events within its cooldown window.
type Category string

const (
	CategoryPlayerEgo        Category = "player_ego"
	CategoryTeamSynergy      Category = "team_synergy"
	CategoryExternalPressure Category = "external_pressure"
	CategoryPracticeBurnout  Category = "practice_burnout"
	CategoryBreakthrough     Category = "breakthrough"
	CategoryMetaRumors       Category = "meta_rumors"
	CategoryVisaArc          Category = "visa_arc"
	CategoryCoachingOverhaul Category = "coaching_overhaul"
	CategoryIGLCrisis        Category = "igl_crisis"
)

// Categories returns all known categories in a fixed order. The
// scheduler iterates this order so daily rolls are deterministic for a
// given dice sequence.
func Categories() []Category {
	return []Category{
		CategoryPlayerEgo,
		CategoryTeamSynergy,
		CategoryExternalPressure,
		CategoryPracticeBurnout,
		CategoryBreakthrough,
		CategoryMetaRumors,
		CategoryVisaArc,
		CategoryCoachingOverhaul,
		CategoryIGLCrisis,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Severity classifies how an event is surfaced: minor events resolve
// immediately as dismissible toasts, major events block progression
// until the player picks a choice.
type Severity string

const (
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

// Choice is one player-selectable outcome of a major drama event.
type Choice struct {
	ID            string                 `json:"id"`
	Label         string                 `json:"label"`
	Effects       narrative.EffectBundle `json:"effects"`
	RequiresFlags []string               `json:"requires_flags,omitempty"`
}

// SatisfiedBy reports whether every flag the choice requires is active.
func (ch Choice) SatisfiedBy(flags *narrative.FlagStore, today time.Time) bool {
	for _, key := range ch.RequiresFlags {
		if !flags.IsActive(key, today) {
			return false
		}
	}
	return true
}

// Template is an immutable catalog entry describing a drama beat.
type Template struct {
	ID                 string                  `json:"id"`
	Category           Category                `json:"category"`
	Severity           Severity                `json:"severity"`
	Condition          narrative.Condition     `json:"condition,omitempty"`
	RequiresActiveFlag string                  `json:"requires_active_flag,omitempty"`
	BaseChance         int                     `json:"base_chance"` // 0-100, rolled daily
	ExpiryDays         int                     `json:"expiry_days,omitempty"`
	Text               string                  `json:"text"`
	Choices            []Choice                `json:"choices,omitempty"`     // major events: 2-3
	AutoEffect         *narrative.EffectBundle `json:"auto_effect,omitempty"` // minor events: fixed outcome
	Escalation         *narrative.EffectBundle `json:"escalation,omitempty"`
}

// Choice returns the choice with the given id.
func (t *Template) Choice(id string) (Choice, bool) {
	for _, ch := range t.Choices {
		if ch.ID == id {
			return ch, true
		}
	}
	return Choice{}, false
}

// Resolvable reports whether the template could currently be resolved
// by the player: a major event needs at least one choice whose required
// flags are all active. A template that fails this check must never be
// instantiated, or the player would face an unanswerable modal.
func (t *Template) Resolvable(flags *narrative.FlagStore, today time.Time) bool {
	if t.Severity != SeverityMajor {
		return true
	}
	for _, ch := range t.Choices {
		if ch.SatisfiedBy(flags, today) {
			return true
		}
	}
	return false
}

// Validate checks the template for authoring errors.
func (t *Template) Validate() []error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, fmt.Errorf("drama template missing id"))
	}
	if !t.Category.Valid() {
		errs = append(errs, fmt.Errorf("drama template %q: unknown category %q", t.ID, t.Category))
	}
	if t.BaseChance < 0 || t.BaseChance > 100 {
		errs = append(errs, fmt.Errorf("drama template %q: base_chance %d out of range", t.ID, t.BaseChance))
	}
	if t.Text == "" {
		errs = append(errs, fmt.Errorf("drama template %q: missing text", t.ID))
	}
	switch t.Severity {
	case SeverityMinor:
		if t.AutoEffect == nil {
			errs = append(errs, fmt.Errorf("drama template %q: minor event needs auto_effect", t.ID))
		}
		if len(t.Choices) > 0 {
			errs = append(errs, fmt.Errorf("drama template %q: minor event cannot have choices", t.ID))
		}
	case SeverityMajor:
		if len(t.Choices) < 2 || len(t.Choices) > 3 {
			errs = append(errs, fmt.Errorf("drama template %q: major event needs 2-3 choices, has %d", t.ID, len(t.Choices)))
		}
		seen := make(map[string]bool)
		for _, ch := range t.Choices {
			if ch.ID == "" {
				errs = append(errs, fmt.Errorf("drama template %q: choice missing id", t.ID))
			}
			if seen[ch.ID] {
				errs = append(errs, fmt.Errorf("drama template %q: duplicate choice id %q", t.ID, ch.ID))
			}
			seen[ch.ID] = true
		}
	default:
		errs = append(errs, fmt.Errorf("drama template %q: unknown severity %q", t.ID, t.Severity))
	}
	for _, err := range t.Condition.Validate() {
		errs = append(errs, fmt.Errorf("drama template %q: %w", t.ID, err))
	}
	return errs
}

// Warnings reports authoring smells that are legal but worth a look.
// A major event whose choices are all flag-gated only fires on days its
// gating flags are active; the scheduler skips it otherwise.
func (t *Template) Warnings() []string {
	if t.Severity != SeverityMajor || len(t.Choices) == 0 {
		return nil
	}
	for _, ch := range t.Choices {
		if len(ch.RequiresFlags) == 0 {
			return nil
		}
	}
	return []string{fmt.Sprintf("drama template %q: all choices are flag-gated; event only fires while a gating flag is active", t.ID)}
}
