package narrative

// FlagGrant sets a flag for a number of days when an effect bundle is
// applied. DurationDays <= 0 means permanent.
type FlagGrant struct {
	Key          string `json:"key"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// EffectBundle is the mechanical payload of a drama choice, a minor
// event's fixed outcome, or an interview option.
type EffectBundle struct {
	Morale          int         `json:"morale,omitempty"`
	Fanbase         int         `json:"fanbase,omitempty"`
	Hype            int         `json:"hype,omitempty"`
	SponsorTrust    int         `json:"sponsor_trust,omitempty"`
	RivalryDelta    int         `json:"rivalry_delta,omitempty"`
	DramaChance     int         `json:"drama_chance,omitempty"` // 0-100
	TargetPlayerIDs []string    `json:"target_player_ids,omitempty"`
	SetsFlags       []FlagGrant `json:"sets_flags,omitempty"`
	ClearsFlags     []string    `json:"clears_flags,omitempty"`
}

// IsZero reports whether the bundle carries no effect at all.
func (e EffectBundle) IsZero() bool {
	return e.Morale == 0 && e.Fanbase == 0 && e.Hype == 0 &&
		e.SponsorTrust == 0 && e.RivalryDelta == 0 && e.DramaChance == 0 &&
		len(e.TargetPlayerIDs) == 0 && len(e.SetsFlags) == 0 && len(e.ClearsFlags) == 0
}

// StateDelta is the compact representation of counter changes the
// engine hands back to the host simulation. The engine owns flags and
// event state; the host owns morale, fanbase, hype, sponsor trust and
// rivalry intensity, and applies the delta itself.
type StateDelta struct {
	TeamMorale   int            `json:"team_morale,omitempty"`
	PlayerMorale map[string]int `json:"player_morale,omitempty"` // player id -> delta
	Fanbase      int            `json:"fanbase,omitempty"`
	Hype         int            `json:"hype,omitempty"`
	SponsorTrust int            `json:"sponsor_trust,omitempty"`
	Rivalry      map[string]int `json:"rivalry,omitempty"` // team id -> intensity delta
}

// IsEmpty checks if the StateDelta is empty.
func (d *StateDelta) IsEmpty() bool {
	return d == nil || (d.TeamMorale == 0 &&
		len(d.PlayerMorale) == 0 &&
		d.Fanbase == 0 &&
		d.Hype == 0 &&
		d.SponsorTrust == 0 &&
		len(d.Rivalry) == 0)
}

// AddPlayerMorale accumulates a per-player morale delta.
func (d *StateDelta) AddPlayerMorale(playerID string, delta int) {
	if d.PlayerMorale == nil {
		d.PlayerMorale = make(map[string]int)
	}
	d.PlayerMorale[playerID] += delta
}

// AddRivalry accumulates a rivalry intensity delta for a team.
func (d *StateDelta) AddRivalry(teamID string, delta int) {
	if d.Rivalry == nil {
		d.Rivalry = make(map[string]int)
	}
	d.Rivalry[teamID] += delta
}

// ClampDelta trims delta so that current+delta stays within [lo, hi].
// Counters like morale and hype are defined on [0, 100]; the engine
// clamps at delta time so the host can apply deltas blindly.
func ClampDelta(current, delta, lo, hi int) int {
	next := current + delta
	if next > hi {
		next = hi
	}
	if next < lo {
		next = lo
	}
	return next - current
}
