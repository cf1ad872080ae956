package interview

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/dice"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// Request describes what kind of press content is needed.
type Request struct {
	Context     Context
	Outcome     narrative.MatchOutcome // outcome of the match being discussed
	SubjectType SubjectType
	SubjectID   string // concrete player id, when SubjectType is player
	Count       int    // prompts in the conference; 0 means 1
}

// Selector filters the interview catalog against the day's snapshot
// and builds pending interview queues.
type Selector struct {
	templates []*Template
	eval      *narrative.Evaluator
	dice      dice.Roller
	logger    *slog.Logger
}

// NewSelector creates a selector over the given catalog. Invalid
// templates are skipped with a warning.
func NewSelector(templates []*Template, roller dice.Roller, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	sel := &Selector{
		eval:   narrative.NewEvaluator(logger),
		dice:   roller,
		logger: logger,
	}
	seen := make(map[string]bool)
	for _, t := range templates {
		if errs := t.Validate(); len(errs) > 0 {
			logger.Warn("skipping invalid interview template", "template_id", t.ID, "error", errors.Join(errs...))
			continue
		}
		if seen[t.ID] {
			logger.Warn("skipping duplicate interview template", "template_id", t.ID)
			continue
		}
		seen[t.ID] = true
		sel.templates = append(sel.templates, t)
	}
	return sel
}

// Template returns the catalog entry with the given id.
func (sel *Selector) Template(id string) (*Template, bool) {
	for _, t := range sel.templates {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Select returns an ordered queue of pending interviews for the
// request. Flag-gated templates are preferred over generic ones;
// within a tier the pick is uniform random. An empty result means no
// press content today, which is never an error.
func (sel *Selector) Select(req Request, snap *narrative.Snapshot, flags *narrative.FlagStore) []*Pending {
	count := req.Count
	if count <= 0 {
		count = 1
	}

	type candidate struct {
		tmpl    *Template
		options []Option
	}
	var specific, generic []candidate
	for _, t := range sel.templates {
		if t.Context != req.Context || t.SubjectType != req.SubjectType {
			continue
		}
		if t.MatchOutcome != narrative.OutcomeAny && t.MatchOutcome != req.Outcome {
			continue
		}
		if t.RequiresActiveFlag != "" && !flags.IsActive(t.RequiresActiveFlag, snap.Date) {
			continue
		}
		if !sel.eval.Evaluate(t.Condition, snap, flags) {
			continue
		}
		opts := sel.filterOptions(t, req, snap, flags)
		if len(opts) == 0 {
			// A template surviving every filter with zero valid options is
			// a content bug, not a player-visible state.
			sel.logger.Warn("interview template has no valid options, excluding", "template_id", t.ID)
			continue
		}
		c := candidate{tmpl: t, options: opts}
		if t.Specific() {
			specific = append(specific, c)
		} else {
			generic = append(generic, c)
		}
	}

	// Personalized story content outranks filler: drain the specific
	// pool before touching the generic one.
	var queue []*Pending
	for len(queue) < count && (len(specific) > 0 || len(generic) > 0) {
		pool := &specific
		if len(*pool) == 0 {
			pool = &generic
		}
		i := sel.dice.Intn(len(*pool))
		c := (*pool)[i]
		*pool = append((*pool)[:i], (*pool)[i+1:]...)
		queue = append(queue, sel.build(c.tmpl, c.options, req, snap))
	}
	return queue
}

// filterOptions applies per-option requiresFlags filtering (player
// subjects only) and personality ordering.
func (sel *Selector) filterOptions(t *Template, req Request, snap *narrative.Snapshot, flags *narrative.FlagStore) []Option {
	opts := make([]Option, 0, len(t.Options))
	if req.SubjectType == SubjectPlayer && req.SubjectID != "" {
		for _, o := range t.Options {
			if o.SatisfiedBy(flags, snap.Date) {
				opts = append(opts, o)
			}
		}
	} else {
		opts = append(opts, t.Options...)
	}

	// Personality weighting ranks presentation order for player
	// subjects; it never auto-picks, the player always chooses.
	if req.SubjectType == SubjectPlayer && req.SubjectID != "" {
		if p, ok := snap.Player(req.SubjectID); ok {
			sort.SliceStable(opts, func(i, j int) bool {
				return opts[i].Weight(p.Personality) > opts[j].Weight(p.Personality)
			})
		}
	}
	return opts
}

func (sel *Selector) build(t *Template, opts []Option, req Request, snap *narrative.Snapshot) *Pending {
	return &Pending{
		ID:          uuid.New(),
		TemplateID:  t.ID,
		Context:     t.Context,
		SubjectType: t.SubjectType,
		SubjectID:   req.SubjectID,
		Prompt:      narrative.RenderText(t.Prompt, snap, req.SubjectID, sel.logger),
		Options:     opts,
	}
}
