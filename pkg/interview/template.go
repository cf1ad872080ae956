package interview

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// Context is the situation in which an interview prompt is asked.
type Context string

const (
	ContextPreMatch  Context = "PRE_MATCH"
	ContextPostMatch Context = "POST_MATCH"
	ContextCrisis    Context = "CRISIS"
	ContextKickoff   Context = "KICKOFF"
)

// Valid reports whether c is a known context.
func (c Context) Valid() bool {
	switch c {
	case ContextPreMatch, ContextPostMatch, ContextCrisis, ContextKickoff:
		return true
	}
	return false
}

// SubjectType is who answers the prompt.
type SubjectType string

const (
	SubjectManager SubjectType = "manager"
	SubjectPlayer  SubjectType = "player"
	SubjectCoach   SubjectType = "coach"
)

// Valid reports whether s is a known subject type.
func (s SubjectType) Valid() bool {
	switch s {
	case SubjectManager, SubjectPlayer, SubjectCoach:
		return true
	}
	return false
}

// Tone labels the register of an interview answer, e.g. "humble",
// "fiery", "deflect". Tones are free-form content strings.
type Tone string

// Option is one of the three toned responses to an interview prompt.
type Option struct {
	Tone               Tone                   `json:"tone"`
	Label              string                 `json:"label"`
	Quote              string                 `json:"quote"`
	Effects            narrative.EffectBundle `json:"effects"`
	PersonalityWeights map[string]float64     `json:"personality_weights,omitempty"`
	RequiresFlags      []string               `json:"requires_flags,omitempty"`
}

// SatisfiedBy reports whether every flag the option requires is active.
func (o Option) SatisfiedBy(flags *narrative.FlagStore, today time.Time) bool {
	for _, key := range o.RequiresFlags {
		if !flags.IsActive(key, today) {
			return false
		}
	}
	return true
}

// Weight returns the option's presentation weight for a personality.
// Missing weights default to 1. Weighting only ever affects ordering
// for player subjects; manager and coach interviews ignore it.
func (o Option) Weight(personality string) float64 {
	if w, ok := o.PersonalityWeights[personality]; ok {
		return w
	}
	return 1
}

// Template is an immutable interview catalog entry.
type Template struct {
	ID                 string                 `json:"id"`
	Context            Context                `json:"context"`
	SubjectType        SubjectType            `json:"subject_type"`
	Condition          narrative.Condition    `json:"condition,omitempty"`
	RequiresActiveFlag string                 `json:"requires_active_flag,omitempty"`
	MatchOutcome       narrative.MatchOutcome `json:"match_outcome,omitempty"` // empty matches any
	Prompt             string                 `json:"prompt"`
	Options            []Option               `json:"options"` // exactly three
}

// Specific reports whether the template is gated on narrative flags,
// which ranks it above generic filler during selection.
func (t *Template) Specific() bool {
	return t.RequiresActiveFlag != "" || t.Condition.FlagGated()
}

// Validate checks the template for authoring errors.
func (t *Template) Validate() []error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, fmt.Errorf("interview template missing id"))
	}
	if !t.Context.Valid() {
		errs = append(errs, fmt.Errorf("interview template %q: unknown context %q", t.ID, t.Context))
	}
	if !t.SubjectType.Valid() {
		errs = append(errs, fmt.Errorf("interview template %q: unknown subject type %q", t.ID, t.SubjectType))
	}
	if t.Prompt == "" {
		errs = append(errs, fmt.Errorf("interview template %q: missing prompt", t.ID))
	}
	if len(t.Options) != 3 {
		errs = append(errs, fmt.Errorf("interview template %q: needs exactly 3 options, has %d", t.ID, len(t.Options)))
	}
	switch t.MatchOutcome {
	case narrative.OutcomeAny, narrative.OutcomeWin, narrative.OutcomeLoss:
	default:
		errs = append(errs, fmt.Errorf("interview template %q: unknown match_outcome %q", t.ID, t.MatchOutcome))
	}
	for i, o := range t.Options {
		if o.Label == "" || o.Quote == "" {
			errs = append(errs, fmt.Errorf("interview template %q: option %d missing label or quote", t.ID, i))
		}
	}
	for _, err := range t.Condition.Validate() {
		errs = append(errs, fmt.Errorf("interview template %q: %w", t.ID, err))
	}
	return errs
}

// Pending is a template instantiated against a concrete subject. A
// press conference is an ordered queue of Pending interviews consumed
// strictly front to back.
type Pending struct {
	ID          uuid.UUID   `json:"id"`
	TemplateID  string      `json:"template_id"`
	Context     Context     `json:"context"`
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   string      `json:"subject_id,omitempty"`
	Prompt      string      `json:"prompt"`  // rendered
	Options     []Option    `json:"options"` // flag-filtered, personality-ordered
}
