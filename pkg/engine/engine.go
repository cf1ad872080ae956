// Package engine ties the flag store, drama scheduler, interview
// selector and effect application into the single synchronous surface
// the host simulation calls once per day and once per player decision.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/dice"
	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

var (
	// ErrEventNotActive means the drama event id is not currently
	// active; the resolution was rejected as a no-op.
	ErrEventNotActive = errors.New("drama event not active")
	// ErrInterviewNotPending means the interview is not at the front of
	// the pending queue; the resolution was rejected as a no-op.
	ErrInterviewNotPending = errors.New("interview not pending")
	// ErrUnknownChoice means the choice id does not exist on the
	// event's template, or its required flags are not active.
	ErrUnknownChoice = errors.New("unknown or unavailable choice")
	// ErrMalformedEffect means an effect bundle referenced something
	// that does not exist; the whole resolution was rejected.
	ErrMalformedEffect = errors.New("malformed effect bundle")
)

// defaultEscalation is the harsher bundle applied when a major event
// escalates and its template carries no explicit escalation effects.
var defaultEscalation = narrative.EffectBundle{Morale: -8, Hype: -5}

// Config tunes the engine.
type Config struct {
	Drama drama.Config
	// MaxChainPerResolution bounds chained drama triggers per
	// resolution. The day-advance loop relies on this to terminate.
	MaxChainPerResolution int
}

// DefaultConfig returns the tuning used when no config is supplied.
func DefaultConfig() Config {
	return Config{
		Drama:                 drama.DefaultConfig(),
		MaxChainPerResolution: 1,
	}
}

// Engine is the narrative event engine. It is not safe for concurrent
// use; the host calls it from a single synchronous day-advance loop.
type Engine struct {
	flags     *narrative.FlagStore
	scheduler *drama.Scheduler
	selector  *interview.Selector
	dice      dice.Roller
	logger    *slog.Logger
	cfg       Config

	eventHistory     []*drama.Instance
	interviewHistory []InterviewHistoryEntry
	pending          []*interview.Pending
	toasts           []*drama.Instance // minors surfaced on the current day
}

// New creates an engine over the given content catalogs.
func New(cfg Config, dramaCatalog []*drama.Template, interviewCatalog []*interview.Template, roller dice.Roller, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxChainPerResolution <= 0 {
		cfg.MaxChainPerResolution = 1
	}
	return &Engine{
		flags:     narrative.NewFlagStore(),
		scheduler: drama.NewScheduler(dramaCatalog, cfg.Drama, roller, logger),
		selector:  interview.NewSelector(interviewCatalog, roller, logger),
		dice:      roller,
		logger:    logger,
		cfg:       cfg,
	}
}

// Flags exposes the flag store for read-only checks by the host.
func (e *Engine) Flags() *narrative.FlagStore {
	return e.flags
}

// DramaTemplate looks up a drama template by id, for hosts that need
// choice labels when presenting an active event.
func (e *Engine) DramaTemplate(templateID string) (*drama.Template, bool) {
	return e.scheduler.Template(templateID)
}

// DayResult is what one day-advance hands back to the host.
type DayResult struct {
	// DramaToasts are minor events that fired today; their effects are
	// already folded into Delta.
	DramaToasts []*drama.Instance
	// DramaModalQueue are the active major events blocking progression
	// until resolved.
	DramaModalQueue []*drama.Instance
	// Delta carries counter changes from minor auto-effects and
	// escalations. The host applies it to its own state.
	Delta *narrative.StateDelta
}

// Resolution is the outcome of resolving a drama event or interview.
type Resolution struct {
	Delta *narrative.StateDelta
	// ChainedEvent is a drama event triggered by the resolution's
	// dramaChance roll, if any. Major chained events join the modal
	// queue; minor ones are already resolved and listed in toasts.
	ChainedEvent *drama.Instance
}

// AdvanceNarrativeState runs the per-day pass: expiry and escalation of
// active events first, then new-event rolling. Interview selection and
// chained triggering happen later in the day via their own calls; the
// ordering contract is expiry -> rolls -> interviews -> chains.
func (e *Engine) AdvanceNarrativeState(snap *narrative.Snapshot) (*DayResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	delta := &narrative.StateDelta{}
	e.toasts = nil

	expired, escalated := e.scheduler.ExpireOverdue(snap.Date)
	for _, in := range expired {
		e.eventHistory = append(e.eventHistory, in)
	}
	for _, in := range escalated {
		bundle := defaultEscalation
		if t, ok := e.scheduler.Template(in.TemplateID); ok && t.Escalation != nil {
			bundle = *t.Escalation
		}
		// Escalation effects never chain; only player-driven
		// resolutions stir up more drama.
		if _, err := e.applyEffects(bundle, snap, delta, 0); err != nil {
			e.logger.Error("escalation effects rejected", "template_id", in.TemplateID, "error", err)
		} else {
			in.AppliedEffects = &bundle
		}
		e.eventHistory = append(e.eventHistory, in)
		e.logger.Info("drama event escalated", "template_id", in.TemplateID)
	}

	for _, in := range e.scheduler.RollNew(snap, e.flags) {
		if in.Severity == drama.SeverityMinor {
			e.resolveMinor(in, snap, delta)
		}
	}

	return &DayResult{
		DramaToasts:     e.toasts,
		DramaModalQueue: e.activeMajors(),
		Delta:           delta,
	}, nil
}

// resolveMinor applies a minor event's fixed outcome and retires it as
// a toast. Minor effects may chain, but any chained minor resolves
// with a spent budget.
func (e *Engine) resolveMinor(in *drama.Instance, snap *narrative.Snapshot, delta *narrative.StateDelta) {
	e.resolveMinorBudget(in, snap, delta, e.cfg.MaxChainPerResolution)
}

func (e *Engine) resolveMinorBudget(in *drama.Instance, snap *narrative.Snapshot, delta *narrative.StateDelta, budget int) {
	tmpl, ok := e.scheduler.Template(in.TemplateID)
	if !ok || tmpl.AutoEffect == nil {
		e.logger.Warn("minor drama event without auto effect", "template_id", in.TemplateID)
	} else {
		chained, err := e.applyEffects(*tmpl.AutoEffect, snap, delta, budget)
		if err != nil {
			e.logger.Error("minor event effects rejected", "template_id", in.TemplateID, "error", err)
		} else if chained != nil && chained.Severity == drama.SeverityMinor {
			e.resolveMinorBudget(chained, snap, delta, 0)
		}
	}
	resolved, err := e.scheduler.MarkResolved(in.ID, "", tmplAutoEffect(tmpl), snap.Date)
	if err != nil {
		e.logger.Error("failed to retire minor event", "template_id", in.TemplateID, "error", err)
		return
	}
	e.eventHistory = append(e.eventHistory, resolved)
	e.toasts = append(e.toasts, resolved)
}

func tmplAutoEffect(t *drama.Template) *narrative.EffectBundle {
	if t == nil {
		return nil
	}
	return t.AutoEffect
}

func (e *Engine) activeMajors() []*drama.Instance {
	var majors []*drama.Instance
	for _, in := range e.scheduler.Active() {
		if in.Severity == drama.SeverityMajor {
			majors = append(majors, in)
		}
	}
	return majors
}

// GetActiveDramaToasts returns the minor events surfaced on the most
// recent day advance.
func (e *Engine) GetActiveDramaToasts() []*drama.Instance {
	out := make([]*drama.Instance, len(e.toasts))
	copy(out, e.toasts)
	return out
}

// GetActiveMajorEvent returns the major event currently blocking
// progression, or nil.
func (e *Engine) GetActiveMajorEvent() *drama.Instance {
	return e.scheduler.ActiveMajor()
}

// ResolveDramaEvent applies the chosen option of an active major event.
// The whole resolution is one logical unit: if anything in the effect
// bundle is malformed, state is untouched and an error is returned.
// Resolving the same event twice is a no-op the second time.
func (e *Engine) ResolveDramaEvent(eventID uuid.UUID, choiceID string, snap *narrative.Snapshot) (*Resolution, error) {
	in, ok := e.scheduler.Get(eventID)
	if !ok {
		e.logger.Error("resolve rejected: event not active", "event_id", eventID.String())
		return nil, ErrEventNotActive
	}
	tmpl, ok := e.scheduler.Template(in.TemplateID)
	if !ok {
		e.logger.Warn("resolve rejected: template missing from catalog", "template_id", in.TemplateID)
		return nil, fmt.Errorf("%w: template %q", ErrUnknownChoice, in.TemplateID)
	}
	choice, ok := tmpl.Choice(choiceID)
	if !ok || !choice.SatisfiedBy(e.flags, snap.Date) {
		e.logger.Error("resolve rejected: choice unavailable", "template_id", tmpl.ID, "choice_id", choiceID)
		return nil, fmt.Errorf("%w: %q", ErrUnknownChoice, choiceID)
	}

	delta := &narrative.StateDelta{}
	chained, err := e.applyEffects(choice.Effects, snap, delta, e.cfg.MaxChainPerResolution)
	if err != nil {
		e.logger.Error("drama resolution rejected", "template_id", tmpl.ID, "choice_id", choiceID, "error", err)
		return nil, err
	}
	effects := choice.Effects
	resolved, err := e.scheduler.MarkResolved(eventID, choiceID, &effects, snap.Date)
	if err != nil {
		return nil, err
	}
	e.eventHistory = append(e.eventHistory, resolved)

	if chained != nil && chained.Severity == drama.SeverityMinor {
		e.resolveMinorBudget(chained, snap, delta, 0)
	}
	return &Resolution{Delta: delta, ChainedEvent: chained}, nil
}

// SelectInterviews builds a press conference for the request and
// appends it to the pending queue. Returns the newly queued prompts.
func (e *Engine) SelectInterviews(req interview.Request, snap *narrative.Snapshot) []*interview.Pending {
	queue := e.selector.Select(req, snap, e.flags)
	e.pending = append(e.pending, queue...)
	return queue
}

// GetPendingInterviewQueue returns the pending interviews front to
// back. The queue is consumed strictly in order.
func (e *Engine) GetPendingInterviewQueue() []*interview.Pending {
	out := make([]*interview.Pending, len(e.pending))
	copy(out, e.pending)
	return out
}

// ShiftInterviewQueue discards the front pending interview without
// applying any effects, and returns it.
func (e *Engine) ShiftInterviewQueue() *interview.Pending {
	if len(e.pending) == 0 {
		return nil
	}
	front := e.pending[0]
	e.pending = e.pending[1:]
	return front
}

// ResolveInterview applies the chosen option of the front pending
// interview and consumes it from the queue. Answering out of order or
// re-answering a consumed prompt is rejected without state changes.
func (e *Engine) ResolveInterview(p *interview.Pending, optionIndex int, snap *narrative.Snapshot) (*Resolution, error) {
	if p == nil || len(e.pending) == 0 || e.pending[0].ID != p.ID {
		e.logger.Error("interview resolution rejected: not at front of queue")
		return nil, ErrInterviewNotPending
	}
	if optionIndex < 0 || optionIndex >= len(p.Options) {
		e.logger.Error("interview resolution rejected: option index out of range",
			"template_id", p.TemplateID, "option_index", optionIndex)
		return nil, fmt.Errorf("%w: option index %d", ErrUnknownChoice, optionIndex)
	}
	opt := p.Options[optionIndex]

	delta := &narrative.StateDelta{}
	chained, err := e.applyEffects(opt.Effects, snap, delta, e.cfg.MaxChainPerResolution)
	if err != nil {
		e.logger.Error("interview resolution rejected", "template_id", p.TemplateID, "error", err)
		return nil, err
	}

	e.pending = e.pending[1:]
	e.interviewHistory = append(e.interviewHistory, InterviewHistoryEntry{
		Date:       snap.Date,
		TemplateID: p.TemplateID,
		Context:    p.Context,
		SubjectID:  p.SubjectID,
		Tone:       opt.Tone,
		Effects:    opt.Effects,
	})

	if chained != nil && chained.Severity == drama.SeverityMinor {
		e.resolveMinorBudget(chained, snap, delta, 0)
	}
	return &Resolution{Delta: delta, ChainedEvent: chained}, nil
}

// GetEventHistory returns the most recent resolved drama events, newest
// last. limit <= 0 returns everything.
func (e *Engine) GetEventHistory(limit int) []*drama.Instance {
	return tail(e.eventHistory, limit)
}

// GetInterviewHistory returns the most recent answered interviews,
// newest last. limit <= 0 returns everything.
func (e *Engine) GetInterviewHistory(limit int) []InterviewHistoryEntry {
	return tail(e.interviewHistory, limit)
}

func tail[T any](s []T, limit int) []T {
	if limit <= 0 || limit >= len(s) {
		out := make([]T, len(s))
		copy(out, s)
		return out
	}
	out := make([]T, limit)
	copy(out, s[len(s)-limit:])
	return out
}

// Serialize captures all engine-owned state for persistence.
func (e *Engine) Serialize() *State {
	return &State{
		Flags:               e.flags.Export(),
		Cooldowns:           e.scheduler.Cooldowns(),
		ActiveEvents:        e.scheduler.Active(),
		EventHistory:        tail(e.eventHistory, 0),
		InterviewHistory:    tail(e.interviewHistory, 0),
		LastEventByCategory: e.scheduler.LastEventByCategory(),
		PendingInterviews:   e.GetPendingInterviewQueue(),
	}
}

// Restore replaces engine state from a save. Fields absent from older
// save formats default-initialize to empty, so saves created before a
// field existed load cleanly.
func (e *Engine) Restore(st *State) {
	if st == nil {
		st = &State{}
	}
	e.flags = narrative.NewFlagStoreFrom(st.Flags)
	e.scheduler.RestoreState(st.ActiveEvents, st.Cooldowns, st.LastEventByCategory)
	e.eventHistory = append([]*drama.Instance(nil), st.EventHistory...)
	e.interviewHistory = append([]InterviewHistoryEntry(nil), st.InterviewHistory...)
	e.pending = append([]*interview.Pending(nil), st.PendingInterviews...)
	e.toasts = nil
}
