package drama

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/dice"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// ErrNotActive is returned when a caller tries to resolve an instance
// that is not in the active set (already resolved, expired, or never
// existed). The operation is a no-op.
var ErrNotActive = errors.New("drama event is not active")

// Config holds the scheduler tuning knobs.
type Config struct {
	// CooldownDays is the per-category minimum interval between new
	// events. Categories absent from the map use DefaultCooldownDays.
	CooldownDays        map[Category]int
	DefaultCooldownDays int

	// MaxActiveEvents caps concurrently active instances. New events
	// beyond the cap are discarded for the day, not queued.
	MaxActiveEvents int

	// DefaultExpiryDays is the lifetime of an unresolved instance when
	// its template does not set one.
	DefaultExpiryDays int

	// EscalationGraceDays is how long a major event may stay unresolved
	// before it escalates. Zero disables escalation.
	EscalationGraceDays int
}

// DefaultConfig returns the tuning used when no config is supplied.
func DefaultConfig() Config {
	return Config{
		DefaultCooldownDays: 7,
		MaxActiveEvents:     3,
		DefaultExpiryDays:   10,
		EscalationGraceDays: 3,
	}
}

func (c Config) cooldownDays(cat Category) int {
	if d, ok := c.CooldownDays[cat]; ok {
		return d
	}
	return c.DefaultCooldownDays
}

// Scheduler owns the drama template catalog, the active instance set,
// and per-category cooldowns. It decides each day which templates fire.
// All randomness goes through the injected Roller.
type Scheduler struct {
	templates []*Template
	byID      map[string]*Template
	eval      *narrative.Evaluator
	dice      dice.Roller
	cfg       Config
	logger    *slog.Logger

	active    []*Instance
	cooldowns map[Category]time.Time
	lastByCat map[Category]string // template id of the last event per category
}

// NewScheduler creates a scheduler over the given catalog. Templates
// that fail validation are skipped with a warning; content errors never
// stop the engine.
func NewScheduler(templates []*Template, cfg Config, roller dice.Roller, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		eval:      narrative.NewEvaluator(logger),
		dice:      roller,
		cfg:       cfg,
		logger:    logger,
		byID:      make(map[string]*Template),
		cooldowns: make(map[Category]time.Time),
		lastByCat: make(map[Category]string),
	}
	for _, t := range templates {
		if errs := t.Validate(); len(errs) > 0 {
			s.logger.Warn("skipping invalid drama template", "template_id", t.ID, "error", errors.Join(errs...))
			continue
		}
		if _, dup := s.byID[t.ID]; dup {
			s.logger.Warn("skipping duplicate drama template", "template_id", t.ID)
			continue
		}
		for _, w := range t.Warnings() {
			s.logger.Warn("drama template authoring warning", "template_id", t.ID, "warning", w)
		}
		s.templates = append(s.templates, t)
		s.byID[t.ID] = t
	}
	return s
}

// Template returns the catalog entry with the given id.
func (s *Scheduler) Template(id string) (*Template, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// Active returns the active instances in trigger order.
func (s *Scheduler) Active() []*Instance {
	out := make([]*Instance, len(s.active))
	copy(out, s.active)
	return out
}

// Get returns the active instance with the given id.
func (s *Scheduler) Get(id uuid.UUID) (*Instance, bool) {
	for _, in := range s.active {
		if in.ID == id {
			return in, true
		}
	}
	return nil, false
}

// ActiveMajor returns the oldest active major instance, which is the
// one currently blocking day advancement in the UI.
func (s *Scheduler) ActiveMajor() *Instance {
	for _, in := range s.active {
		if in.Severity == SeverityMajor {
			return in
		}
	}
	return nil
}

// Cooldowns returns a copy of the per-category last-fired dates.
func (s *Scheduler) Cooldowns() map[Category]time.Time {
	out := make(map[Category]time.Time, len(s.cooldowns))
	for k, v := range s.cooldowns {
		out[k] = v
	}
	return out
}

// LastEventByCategory returns a copy of the last template id fired per
// category.
func (s *Scheduler) LastEventByCategory() map[Category]string {
	out := make(map[Category]string, len(s.lastByCat))
	for k, v := range s.lastByCat {
		out[k] = v
	}
	return out
}

// RestoreState replaces the scheduler's mutable state from a save.
// Nil maps and slices are treated as empty, so saves created before a
// field existed restore cleanly.
func (s *Scheduler) RestoreState(active []*Instance, cooldowns map[Category]time.Time, lastByCat map[Category]string) {
	s.active = s.active[:0]
	for _, in := range active {
		if in != nil && in.Status == StatusActive {
			s.active = append(s.active, in)
		}
	}
	s.cooldowns = make(map[Category]time.Time)
	for k, v := range cooldowns {
		s.cooldowns[k] = v
	}
	s.lastByCat = make(map[Category]string)
	for k, v := range lastByCat {
		s.lastByCat[k] = v
	}
}

// onCooldown reports whether the category fired too recently to fire
// again today.
func (s *Scheduler) onCooldown(cat Category, today time.Time) bool {
	last, ok := s.cooldowns[cat]
	if !ok {
		return false
	}
	elapsed := int(today.Sub(last).Hours() / 24)
	return elapsed < s.cfg.cooldownDays(cat)
}

// eligible reports whether a template may produce a new instance today,
// independent of its probability roll.
func (s *Scheduler) eligible(t *Template, snap *narrative.Snapshot, flags *narrative.FlagStore) bool {
	if t.RequiresActiveFlag != "" && !flags.IsActive(t.RequiresActiveFlag, snap.Date) {
		return false
	}
	if !s.eval.Evaluate(t.Condition, snap, flags) {
		return false
	}
	if !t.Resolvable(flags, snap.Date) {
		// All choices flag-gated off today. Skipping here keeps an
		// unanswerable modal from ever reaching the player.
		s.logger.Warn("drama template has no resolvable choices today", "template_id", t.ID)
		return false
	}
	return true
}

// ExpireOverdue walks the active set and retires instances that have
// outlived their window: majors past the escalation grace escalate,
// everything past its expiry window expires with no effects. This runs
// before any new-event rolling each day.
func (s *Scheduler) ExpireOverdue(today time.Time) (expired, escalated []*Instance) {
	remaining := s.active[:0]
	for _, in := range s.active {
		age := in.AgeDays(today)
		switch {
		case s.cfg.EscalationGraceDays > 0 && in.Severity == SeverityMajor && age >= s.cfg.EscalationGraceDays:
			in.close(StatusEscalated, today)
			escalated = append(escalated, in)
		case age >= s.expiryDays(in):
			in.close(StatusExpired, today)
			expired = append(expired, in)
		default:
			remaining = append(remaining, in)
		}
	}
	s.active = remaining
	return expired, escalated
}

func (s *Scheduler) expiryDays(in *Instance) int {
	if t, ok := s.byID[in.TemplateID]; ok && t.ExpiryDays > 0 {
		return t.ExpiryDays
	}
	return s.cfg.DefaultExpiryDays
}

// RollNew runs the daily trigger pass: for each category off cooldown,
// roll every eligible template's base chance independently, then pick
// among the passers weighted by base chance. At most one new event per
// category per day; the global active cap discards overflow.
func (s *Scheduler) RollNew(snap *narrative.Snapshot, flags *narrative.FlagStore) []*Instance {
	var created []*Instance
	for _, cat := range Categories() {
		if s.onCooldown(cat, snap.Date) {
			continue
		}
		var passers []*Template
		for _, t := range s.templates {
			if t.Category != cat || !s.eligible(t, snap, flags) {
				continue
			}
			if s.dice.Percent() <= t.BaseChance {
				passers = append(passers, t)
			}
		}
		if len(passers) == 0 {
			continue
		}
		tmpl := s.weightedPick(passers)
		if len(s.active) >= s.cfg.MaxActiveEvents {
			s.logger.Debug("active event cap reached, discarding new drama event",
				"template_id", tmpl.ID, "cap", s.cfg.MaxActiveEvents)
			continue
		}
		in := s.instantiate(tmpl, snap)
		created = append(created, in)
	}
	return created
}

// ForceTrigger immediately instantiates one eligible drama event,
// bypassing the daily probability roll but still respecting category
// cooldowns, conditions, and the active cap. Used for chained
// triggering from interview and drama resolutions.
func (s *Scheduler) ForceTrigger(snap *narrative.Snapshot, flags *narrative.FlagStore) *Instance {
	if len(s.active) >= s.cfg.MaxActiveEvents {
		s.logger.Debug("active event cap reached, chained trigger suppressed")
		return nil
	}
	var candidates []*Template
	for _, t := range s.templates {
		if s.onCooldown(t.Category, snap.Date) {
			continue
		}
		if s.eligible(t, snap, flags) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	tmpl := candidates[s.dice.Intn(len(candidates))]
	return s.instantiate(tmpl, snap)
}

// weightedPick chooses among passers weighted by base chance, so higher
// probability templates win ties more often without authoring order
// mattering.
func (s *Scheduler) weightedPick(passers []*Template) *Template {
	if len(passers) == 1 {
		return passers[0]
	}
	total := 0
	for _, t := range passers {
		total += t.BaseChance
	}
	if total <= 0 {
		return passers[s.dice.Intn(len(passers))]
	}
	roll := s.dice.Intn(total)
	for _, t := range passers {
		roll -= t.BaseChance
		if roll < 0 {
			return t
		}
	}
	return passers[len(passers)-1]
}

func (s *Scheduler) instantiate(tmpl *Template, snap *narrative.Snapshot) *Instance {
	var affected []string
	subjectID := ""
	if p, ok := lowestMoralePlayer(snap); ok {
		subjectID = p.ID
		affected = []string{p.ID}
	}
	in := &Instance{
		ID:                uuid.New(),
		TemplateID:        tmpl.ID,
		Category:          tmpl.Category,
		Severity:          tmpl.Severity,
		Status:            StatusActive,
		Text:              narrative.RenderText(tmpl.Text, snap, subjectID, s.logger),
		TriggeredDate:     snap.Date,
		AffectedPlayerIDs: affected,
	}
	s.active = append(s.active, in)
	s.cooldowns[tmpl.Category] = snap.Date
	s.lastByCat[tmpl.Category] = tmpl.ID
	s.logger.Info("drama event triggered",
		"template_id", tmpl.ID,
		"category", string(tmpl.Category),
		"severity", string(tmpl.Severity))
	return in
}

// lowestMoralePlayer picks the drama subject: story beats center on
// whoever is struggling most.
func lowestMoralePlayer(snap *narrative.Snapshot) (narrative.PlayerRef, bool) {
	var best narrative.PlayerRef
	found := false
	for _, p := range snap.Players {
		if !found || p.Morale < best.Morale {
			best = p
			found = true
		}
	}
	return best, found
}

// MarkResolved transitions an active instance to resolved, records the
// chosen option and applied effects, and removes it from the active
// set. Returns ErrNotActive if the id is not currently active, leaving
// state untouched, so resolving twice is a no-op the second time.
func (s *Scheduler) MarkResolved(id uuid.UUID, choiceID string, effects *narrative.EffectBundle, today time.Time) (*Instance, error) {
	for i, in := range s.active {
		if in.ID != id {
			continue
		}
		in.close(StatusResolved, today)
		in.ChosenOptionID = choiceID
		in.AppliedEffects = effects
		s.active = append(s.active[:i], s.active[i+1:]...)
		return in, nil
	}
	return nil, ErrNotActive
}
