package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// MockStorage must honor the same contract the real backends do, since
// engine wiring tests substitute it freely.
func TestMockStorageContract(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	if err := m.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, err := m.LoadState(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadState err = %v, want ErrNotFound", err)
	}

	if err := m.SaveState(ctx, "beta", testState()); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveState(ctx, "alpha", testState()); err != nil {
		t.Fatal(err)
	}
	slots, err := m.ListStates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 || slots[0] != "alpha" || slots[1] != "beta" {
		t.Errorf("ListStates = %v, want sorted [alpha beta]", slots)
	}

	if err := m.DeleteState(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.LoadState(ctx, "alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadState after delete err = %v, want ErrNotFound", err)
	}
}

func TestMockStorageCatalogSeeding(t *testing.T) {
	m := NewMockStorage()
	ctx := context.Background()

	m.AddDramaTemplate(&drama.Template{
		ID:         "meta_patch_rumors",
		Category:   drama.CategoryMetaRumors,
		Severity:   drama.SeverityMinor,
		Text:       "Patch notes leak.",
		AutoEffect: &narrative.EffectBundle{Hype: 3},
	})
	m.AddInterviewTemplate(&interview.Template{
		ID:          "post_win_manager",
		Context:     interview.ContextPostMatch,
		SubjectType: interview.SubjectManager,
		Prompt:      "Thoughts on the win?",
	})

	dramas, err := m.DramaCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dramas) != 1 || dramas[0].ID != "meta_patch_rumors" {
		t.Errorf("drama catalog = %v", dramas)
	}
	interviews, err := m.InterviewCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(interviews) != 1 || interviews[0].ID != "post_win_manager" {
		t.Errorf("interview catalog = %v", interviews)
	}
}
