package engine

import (
	"time"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/interview"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// State is the persistence blob for the narrative engine. The host's
// save system must serialize it atomically with the rest of the game
// state, or cooldown and flag invariants can break across a save/load
// boundary.
type State struct {
	Flags               map[string]narrative.Flag    `json:"flags,omitempty"`
	Cooldowns           map[drama.Category]time.Time `json:"cooldowns,omitempty"`
	ActiveEvents        []*drama.Instance            `json:"active_events,omitempty"`
	EventHistory        []*drama.Instance            `json:"event_history,omitempty"`
	InterviewHistory    []InterviewHistoryEntry      `json:"interview_history,omitempty"`
	LastEventByCategory map[drama.Category]string    `json:"last_event_by_category,omitempty"`
	PendingInterviews   []*interview.Pending         `json:"pending_interviews,omitempty"`
}

// InterviewHistoryEntry records one answered interview prompt.
// Append-only; read by UI recap panels.
type InterviewHistoryEntry struct {
	Date       time.Time              `json:"date"`
	TemplateID string                 `json:"template_id"`
	Context    interview.Context      `json:"context"`
	SubjectID  string                 `json:"subject_id,omitempty"`
	Tone       interview.Tone         `json:"tone"`
	Effects    narrative.EffectBundle `json:"effects"`
}
