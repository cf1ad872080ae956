package drama

import (
	"testing"
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

func testDay(n int) time.Time {
	return time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func validMajor() *Template {
	return &Template{
		ID:         "igl_shotcalling_doubt",
		Category:   CategoryIGLCrisis,
		Severity:   SeverityMajor,
		BaseChance: 20,
		Text:       "{playerName} is second-guessing every mid-round call.",
		Choices: []Choice{
			{ID: "back_igl", Label: "Back the IGL publicly", Effects: narrative.EffectBundle{Morale: 5}},
			{ID: "open_tryouts", Label: "Open the role to tryouts", Effects: narrative.EffectBundle{Morale: -5, Hype: 5}},
		},
	}
}

func validMinor() *Template {
	return &Template{
		ID:         "meta_patch_rumors",
		Category:   CategoryMetaRumors,
		Severity:   SeverityMinor,
		BaseChance: 15,
		Text:       "Patch notes leak and the roster argues about comps.",
		AutoEffect: &narrative.EffectBundle{Hype: 3},
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Template)
		base    func() *Template
		wantErr bool
	}{
		{"valid major", func(*Template) {}, validMajor, false},
		{"valid minor", func(*Template) {}, validMinor, false},
		{"missing id", func(t *Template) { t.ID = "" }, validMajor, true},
		{"unknown category", func(t *Template) { t.Category = "locker_gossip" }, validMajor, true},
		{"chance out of range", func(t *Template) { t.BaseChance = 101 }, validMajor, true},
		{"missing text", func(t *Template) { t.Text = "" }, validMinor, true},
		{"unknown severity", func(t *Template) { t.Severity = "catastrophic" }, validMajor, true},
		{"minor without auto effect", func(t *Template) { t.AutoEffect = nil }, validMinor, true},
		{"minor with choices", func(t *Template) { t.Choices = validMajor().Choices }, validMinor, true},
		{"major with one choice", func(t *Template) { t.Choices = t.Choices[:1] }, validMajor, true},
		{"major with four choices", func(t *Template) {
			t.Choices = append(t.Choices,
				Choice{ID: "c3", Label: "x"},
				Choice{ID: "c4", Label: "y"})
		}, validMajor, true},
		{"duplicate choice id", func(t *Template) { t.Choices[1].ID = t.Choices[0].ID }, validMajor, true},
		// All choices flag-gated is legal content: the scheduler skips it
		// on days no gate is active instead of rejecting it at load.
		{"all choices flag-gated", func(t *Template) {
			for i := range t.Choices {
				t.Choices[i].RequiresFlags = []string{"some_flag"}
			}
		}, validMajor, false},
		{"bad condition", func(t *Template) {
			t.Condition = narrative.Condition{Type: narrative.ConditionAtomic, Name: "not_a_predicate"}
		}, validMajor, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpl := tc.base()
			tc.mutate(tmpl)
			errs := tmpl.Validate()
			if (len(errs) > 0) != tc.wantErr {
				t.Errorf("Validate errors = %v, wantErr %v", errs, tc.wantErr)
			}
		})
	}
}

func TestTemplateWarnings(t *testing.T) {
	if w := validMajor().Warnings(); len(w) != 0 {
		t.Errorf("warnings for an ungated major = %v, want none", w)
	}
	if w := validMinor().Warnings(); len(w) != 0 {
		t.Errorf("warnings for a minor = %v, want none", w)
	}

	gated := validMajor()
	for i := range gated.Choices {
		gated.Choices[i].RequiresFlags = []string{"some_flag"}
	}
	if w := gated.Warnings(); len(w) != 1 {
		t.Errorf("warnings for an all-gated major = %v, want one", w)
	}
}

func TestTemplateResolvable(t *testing.T) {
	flags := narrative.NewFlagStore()
	today := testDay(1)

	minor := validMinor()
	if !minor.Resolvable(flags, today) {
		t.Error("minor template should always be resolvable")
	}

	major := validMajor()
	if !major.Resolvable(flags, today) {
		t.Error("major with an ungated choice should be resolvable")
	}

	gated := validMajor()
	for i := range gated.Choices {
		gated.Choices[i].RequiresFlags = []string{"sponsor_meeting_booked"}
	}
	if gated.Resolvable(flags, today) {
		t.Error("major with every choice gated off should not be resolvable")
	}
	flags.Set("sponsor_meeting_booked", 0, today)
	if !gated.Resolvable(flags, today) {
		t.Error("major should become resolvable once the gate flag is active")
	}
}

func TestChoiceSatisfiedBy(t *testing.T) {
	flags := narrative.NewFlagStore()
	today := testDay(1)
	flags.Set("a", 0, today)

	ch := Choice{ID: "c", RequiresFlags: []string{"a", "b"}}
	if ch.SatisfiedBy(flags, today) {
		t.Error("choice satisfied with one required flag missing")
	}
	flags.Set("b", 0, today)
	if !ch.SatisfiedBy(flags, today) {
		t.Error("choice not satisfied with all required flags active")
	}
}
