package drama

import (
	"errors"
	"testing"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/dice"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

func testSnap(day time.Time) *narrative.Snapshot {
	return &narrative.Snapshot{
		Date:     day,
		TeamID:   "breakpoint",
		TeamName: "Breakpoint Esports",
		Players: []narrative.PlayerRef{
			{ID: "p1", Name: "Vex", Personality: "volatile", Morale: 45},
			{ID: "p2", Name: "Mori", Personality: "stoic", Morale: 70},
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CooldownDays = map[Category]int{CategoryIGLCrisis: 14}
	return cfg
}

func TestNewSchedulerSkipsInvalidAndDuplicate(t *testing.T) {
	good := validMajor()
	bad := validMajor()
	bad.ID = "broken"
	bad.Text = ""
	dup := validMajor()

	s := NewScheduler([]*Template{good, bad, dup}, testConfig(), &dice.Fixed{}, nil)
	if len(s.templates) != 1 {
		t.Fatalf("kept %d templates, want 1", len(s.templates))
	}
	if _, ok := s.Template("broken"); ok {
		t.Error("invalid template present in catalog")
	}
	if _, ok := s.Template("igl_shotcalling_doubt"); !ok {
		t.Error("valid template missing from catalog")
	}
}

func TestRollNewTriggersOnPassingRoll(t *testing.T) {
	tmpl := validMajor()
	roller := &dice.Fixed{Percents: []int{tmpl.BaseChance}} // exactly at the chance passes
	s := NewScheduler([]*Template{tmpl}, testConfig(), roller, nil)

	created := s.RollNew(testSnap(testDay(1)), narrative.NewFlagStore())
	if len(created) != 1 {
		t.Fatalf("created %d events, want 1", len(created))
	}
	in := created[0]
	if in.TemplateID != tmpl.ID || in.Status != StatusActive || in.Severity != SeverityMajor {
		t.Errorf("unexpected instance %+v", in)
	}
	if in.Text == tmpl.Text {
		t.Error("instance text was not rendered")
	}
}

func TestRollNewFailingRoll(t *testing.T) {
	tmpl := validMajor()
	roller := &dice.Fixed{Percents: []int{tmpl.BaseChance + 1}}
	s := NewScheduler([]*Template{tmpl}, testConfig(), roller, nil)

	if created := s.RollNew(testSnap(testDay(1)), narrative.NewFlagStore()); len(created) != 0 {
		t.Errorf("created %d events on a failing roll, want 0", len(created))
	}
}

func TestRollNewRespectsCooldown(t *testing.T) {
	tmpl := validMajor() // igl_crisis, 14 day cooldown in testConfig
	roller := &dice.Fixed{Percents: []int{1}}
	s := NewScheduler([]*Template{tmpl}, testConfig(), roller, nil)
	flags := narrative.NewFlagStore()

	if created := s.RollNew(testSnap(testDay(5)), flags); len(created) != 1 {
		t.Fatalf("day 5: created %d, want 1", len(created))
	}
	// Clear the active slot so only the cooldown can block a re-trigger.
	if _, err := s.MarkResolved(s.active[0].ID, "back_igl", nil, testDay(6)); err != nil {
		t.Fatalf("MarkResolved: %v", err)
	}

	if created := s.RollNew(testSnap(testDay(6)), flags); len(created) != 0 {
		t.Errorf("day 6: created %d, want 0 the day after firing", len(created))
	}
	if created := s.RollNew(testSnap(testDay(18)), flags); len(created) != 0 {
		t.Errorf("day 18 (13 days later): created %d, want 0 while on cooldown", len(created))
	}
	if created := s.RollNew(testSnap(testDay(19)), flags); len(created) != 1 {
		t.Errorf("day 19 (14 days later): created %d, want 1 once cooldown lapses", len(created))
	}
}

func TestRollNewFiltersConditionAndFlag(t *testing.T) {
	conditional := validMajor()
	conditional.Condition = narrative.Condition{Type: narrative.ConditionAtomic, Name: "loss_streak_2plus"}

	gated := validMinor()
	gated.RequiresActiveFlag = "visa_limbo"

	roller := &dice.Fixed{Percents: []int{1}}
	s := NewScheduler([]*Template{conditional, gated}, testConfig(), roller, nil)
	flags := narrative.NewFlagStore()
	snap := testSnap(testDay(1))

	if created := s.RollNew(snap, flags); len(created) != 0 {
		t.Fatalf("created %d events with no condition met, want 0", len(created))
	}

	snap.LossStreak = 2
	flags.Set("visa_limbo", 0, snap.Date)
	created := s.RollNew(snap, flags)
	if len(created) != 2 {
		t.Fatalf("created %d events with conditions met, want 2", len(created))
	}
}

func TestRollNewSkipsUnresolvableMajor(t *testing.T) {
	// Both choices gated behind a flag that is not active: the event
	// would be an unanswerable modal, so it must never instantiate.
	tmpl := validMajor()
	tmpl.Choices[1].RequiresFlags = []string{"escape_hatch"}
	s := NewScheduler([]*Template{tmpl}, testConfig(), &dice.Fixed{Percents: []int{1}}, nil)
	flags := narrative.NewFlagStore()
	snap := testSnap(testDay(1))

	// Still resolvable: choice 0 is ungated.
	if created := s.RollNew(snap, flags); len(created) != 1 {
		t.Fatalf("created %d, want 1 while one choice is open", len(created))
	}

	gatedAll := validMajor()
	gatedAll.ID = "fully_gated"
	for i := range gatedAll.Choices {
		gatedAll.Choices[i].RequiresFlags = []string{"never_set"}
	}
	s2 := NewScheduler([]*Template{gatedAll}, testConfig(), &dice.Fixed{Percents: []int{1}}, nil)

	if created := s2.RollNew(snap, flags); len(created) != 0 {
		t.Errorf("created %d from an unresolvable template, want 0", len(created))
	}
}

func TestRollNewAllGatedMajorFiresWhileFlagActive(t *testing.T) {
	// Every choice behind the same flag is valid catalog content. The
	// template must survive loading and fire on days the flag is up.
	tmpl := validMajor()
	for i := range tmpl.Choices {
		tmpl.Choices[i].RequiresFlags = []string{"sponsor_meeting_booked"}
	}
	s := NewScheduler([]*Template{tmpl}, testConfig(), &dice.Fixed{Percents: []int{1}}, nil)
	flags := narrative.NewFlagStore()
	snap := testSnap(testDay(1))

	if created := s.RollNew(snap, flags); len(created) != 0 {
		t.Fatalf("created %d with the gating flag inactive, want 0", len(created))
	}
	flags.Set("sponsor_meeting_booked", 0, snap.Date)
	if created := s.RollNew(snap, flags); len(created) != 1 {
		t.Errorf("created %d with the gating flag active, want 1", len(created))
	}
}

func TestRollNewActiveCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxActiveEvents = 1

	a := validMajor()
	b := validMinor()
	s := NewScheduler([]*Template{a, b}, cfg, &dice.Fixed{Percents: []int{1}}, nil)
	snap := testSnap(testDay(1))

	created := s.RollNew(snap, narrative.NewFlagStore())
	if len(created) != 1 {
		t.Fatalf("created %d events with cap 1, want 1", len(created))
	}
	if len(s.Active()) != 1 {
		t.Errorf("active set size = %d, want 1", len(s.Active()))
	}
}

func TestRollNewOneEventPerCategory(t *testing.T) {
	a := validMajor()
	b := validMajor()
	b.ID = "igl_role_swap_pressure"
	roller := &dice.Fixed{Percents: []int{1}}
	s := NewScheduler([]*Template{a, b}, testConfig(), roller, nil)

	created := s.RollNew(testSnap(testDay(1)), narrative.NewFlagStore())
	if len(created) != 1 {
		t.Fatalf("created %d events in one category, want 1", len(created))
	}
}

func TestExpireOverdue(t *testing.T) {
	cfg := testConfig()
	cfg.EscalationGraceDays = 3
	cfg.DefaultExpiryDays = 10

	major := validMajor()
	minor := validMinor()
	s := NewScheduler([]*Template{major, minor}, cfg, &dice.Fixed{Percents: []int{1}}, nil)
	snap := testSnap(testDay(1))
	if created := s.RollNew(snap, narrative.NewFlagStore()); len(created) != 2 {
		t.Fatalf("setup: created %d, want 2", len(created))
	}

	// Day 3: nothing is old enough.
	expired, escalated := s.ExpireOverdue(testDay(3))
	if len(expired) != 0 || len(escalated) != 0 {
		t.Fatalf("day 3: expired %d escalated %d, want 0/0", len(expired), len(escalated))
	}

	// Day 4: the major crosses the 3 day grace and escalates.
	expired, escalated = s.ExpireOverdue(testDay(4))
	if len(escalated) != 1 || escalated[0].Severity != SeverityMajor {
		t.Fatalf("day 4: escalated %v, want the major", escalated)
	}
	if escalated[0].Status != StatusEscalated {
		t.Errorf("escalated status = %q", escalated[0].Status)
	}
	if len(expired) != 0 {
		t.Errorf("day 4: expired %d, want 0", len(expired))
	}

	// Day 11: the minor crosses the 10 day expiry window.
	expired, _ = s.ExpireOverdue(testDay(11))
	if len(expired) != 1 || expired[0].Severity != SeverityMinor {
		t.Fatalf("day 11: expired %v, want the minor", expired)
	}
	if expired[0].Status != StatusExpired {
		t.Errorf("expired status = %q", expired[0].Status)
	}
	if len(s.Active()) != 0 {
		t.Errorf("active set size = %d after all retirements, want 0", len(s.Active()))
	}
}

func TestForceTrigger(t *testing.T) {
	tmpl := validMinor()
	s := NewScheduler([]*Template{tmpl}, testConfig(), &dice.Fixed{}, nil)
	snap := testSnap(testDay(1))
	flags := narrative.NewFlagStore()

	in := s.ForceTrigger(snap, flags)
	if in == nil || in.TemplateID != tmpl.ID {
		t.Fatalf("ForceTrigger = %+v, want an instance of %s", in, tmpl.ID)
	}

	// Same category is now on cooldown; a second chained trigger finds
	// no candidates.
	if in := s.ForceTrigger(snap, flags); in != nil {
		t.Errorf("second ForceTrigger produced %s, want nil on cooldown", in.TemplateID)
	}
}

func TestForceTriggerRespectsCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxActiveEvents = 1
	s := NewScheduler([]*Template{validMajor(), validMinor()}, cfg, &dice.Fixed{Percents: []int{1}}, nil)
	snap := testSnap(testDay(1))
	flags := narrative.NewFlagStore()

	s.RollNew(snap, flags)
	if in := s.ForceTrigger(snap, flags); in != nil {
		t.Errorf("ForceTrigger produced %s at cap, want nil", in.TemplateID)
	}
}

func TestMarkResolved(t *testing.T) {
	tmpl := validMajor()
	s := NewScheduler([]*Template{tmpl}, testConfig(), &dice.Fixed{Percents: []int{1}}, nil)
	created := s.RollNew(testSnap(testDay(1)), narrative.NewFlagStore())
	if len(created) != 1 {
		t.Fatalf("setup: created %d, want 1", len(created))
	}
	id := created[0].ID

	effects := &narrative.EffectBundle{Morale: 5}
	in, err := s.MarkResolved(id, "back_igl", effects, testDay(2))
	if err != nil {
		t.Fatalf("MarkResolved: %v", err)
	}
	if in.Status != StatusResolved || in.ChosenOptionID != "back_igl" {
		t.Errorf("resolved instance = %+v", in)
	}
	if in.ResolvedDate == nil || !in.ResolvedDate.Equal(testDay(2)) {
		t.Errorf("resolved date = %v, want day 2", in.ResolvedDate)
	}
	if len(s.Active()) != 0 {
		t.Errorf("active set size = %d after resolve, want 0", len(s.Active()))
	}

	// Second resolve of the same id is rejected without side effects.
	if _, err := s.MarkResolved(id, "open_tryouts", nil, testDay(3)); !errors.Is(err, ErrNotActive) {
		t.Errorf("double resolve err = %v, want ErrNotActive", err)
	}
	if in.ChosenOptionID != "back_igl" {
		t.Errorf("chosen option mutated by rejected resolve: %q", in.ChosenOptionID)
	}
}

func TestRestoreState(t *testing.T) {
	tmpl := validMajor()
	s := NewScheduler([]*Template{tmpl}, testConfig(), &dice.Fixed{Percents: []int{1}}, nil)
	created := s.RollNew(testSnap(testDay(1)), narrative.NewFlagStore())

	resolved := *created[0]
	resolved.Status = StatusResolved

	fresh := NewScheduler([]*Template{tmpl}, testConfig(), &dice.Fixed{Percents: []int{1}}, nil)
	fresh.RestoreState([]*Instance{created[0], &resolved, nil}, s.Cooldowns(), s.LastEventByCategory())

	if got := len(fresh.Active()); got != 1 {
		t.Errorf("restored active size = %d, want 1 (resolved and nil entries dropped)", got)
	}
	if !fresh.onCooldown(CategoryIGLCrisis, testDay(10)) {
		t.Error("restored cooldown not honored")
	}
	if fresh.LastEventByCategory()[CategoryIGLCrisis] != tmpl.ID {
		t.Error("last event by category not restored")
	}
}
