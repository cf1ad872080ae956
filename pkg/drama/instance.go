package drama

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// Status is the lifecycle state of a drama event instance. An instance
// transitions exactly once away from StatusActive; the other states
// are terminal and move the instance into history.
type Status string

const (
	StatusActive    Status = "active"
	StatusResolved  Status = "resolved"
	StatusEscalated Status = "escalated"
	StatusExpired   Status = "expired"
)

// Instance is a live occurrence of a drama template.
type Instance struct {
	ID                uuid.UUID               `json:"id"`
	TemplateID        string                  `json:"template_id"`
	Category          Category                `json:"category"`
	Severity          Severity                `json:"severity"`
	Status            Status                  `json:"status"`
	Text              string                  `json:"text"` // rendered narrative text
	TriggeredDate     time.Time               `json:"triggered_date"`
	ResolvedDate      *time.Time              `json:"resolved_date,omitempty"`
	ChosenOptionID    string                  `json:"chosen_option_id,omitempty"`
	AffectedPlayerIDs []string                `json:"affected_player_ids,omitempty"`
	AppliedEffects    *narrative.EffectBundle `json:"applied_effects,omitempty"`
}

// AgeDays returns full days elapsed since the instance triggered.
func (in *Instance) AgeDays(today time.Time) int {
	return int(today.Sub(in.TriggeredDate).Hours() / 24)
}

// close stamps the terminal status and resolution metadata.
func (in *Instance) close(status Status, today time.Time) {
	in.Status = status
	t := today
	in.ResolvedDate = &t
}
