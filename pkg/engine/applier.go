package engine

import (
	"fmt"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/narrative"
)

// validateEffects checks every reference in a bundle before anything
// mutates. Resolution is all-or-nothing: a malformed bundle rejects the
// whole resolution with prior state untouched.
func (e *Engine) validateEffects(bundle narrative.EffectBundle, snap *narrative.Snapshot) error {
	if bundle.DramaChance < 0 || bundle.DramaChance > 100 {
		return fmt.Errorf("%w: drama_chance %d out of range", ErrMalformedEffect, bundle.DramaChance)
	}
	for _, id := range bundle.TargetPlayerIDs {
		if _, ok := snap.Player(id); !ok {
			return fmt.Errorf("%w: unknown target player %q", ErrMalformedEffect, id)
		}
	}
	for _, g := range bundle.SetsFlags {
		if g.Key == "" {
			return fmt.Errorf("%w: sets_flags entry with empty key", ErrMalformedEffect)
		}
	}
	for _, key := range bundle.ClearsFlags {
		if key == "" {
			return fmt.Errorf("%w: clears_flags entry with empty key", ErrMalformedEffect)
		}
	}
	return nil
}

// applyEffects applies a validated bundle: flag clears, then flag sets,
// then clamped counter deltas accumulated into delta. chainBudget > 0
// allows at most that many chained drama triggers; the budget stops
// effect→drama→effect loops from recursing within one resolution.
// Returns any chain-triggered instance.
func (e *Engine) applyEffects(bundle narrative.EffectBundle, snap *narrative.Snapshot, delta *narrative.StateDelta, chainBudget int) (*drama.Instance, error) {
	if err := e.validateEffects(bundle, snap); err != nil {
		return nil, err
	}

	// Clears before sets, so one resolution can atomically replace a flag.
	for _, key := range bundle.ClearsFlags {
		e.flags.Clear(key)
	}
	for _, g := range bundle.SetsFlags {
		e.flags.Set(g.Key, g.DurationDays, snap.Date)
	}

	// Clamp against the running value, snapshot plus whatever earlier
	// bundles already put into delta, so a choice effect followed by a
	// chained minor cannot stack past the counter bounds.
	if bundle.Morale != 0 {
		if len(bundle.TargetPlayerIDs) > 0 {
			for _, id := range bundle.TargetPlayerIDs {
				p, _ := snap.Player(id)
				delta.AddPlayerMorale(id, narrative.ClampDelta(p.Morale+delta.PlayerMorale[id], bundle.Morale, 0, 100))
			}
		} else {
			delta.TeamMorale += narrative.ClampDelta(snap.TeamMorale+delta.TeamMorale, bundle.Morale, 0, 100)
		}
	}
	delta.Fanbase += bundle.Fanbase
	if bundle.Hype != 0 {
		delta.Hype += narrative.ClampDelta(snap.Hype+delta.Hype, bundle.Hype, 0, 100)
	}
	if bundle.SponsorTrust != 0 {
		delta.SponsorTrust += narrative.ClampDelta(snap.SponsorTrust+delta.SponsorTrust, bundle.SponsorTrust, 0, 100)
	}
	if bundle.RivalryDelta != 0 {
		if teamID, current, ok := rivalryTarget(snap); ok {
			delta.AddRivalry(teamID, narrative.ClampDelta(current+delta.Rivalry[teamID], bundle.RivalryDelta, 0, 100))
		}
	}

	// "This public statement stirred up more drama": one roll, one
	// possible chained event per resolution.
	if bundle.DramaChance > 0 && chainBudget > 0 && e.dice.Percent() <= bundle.DramaChance {
		return e.scheduler.ForceTrigger(snap, e.flags), nil
	}
	return nil, nil
}

// rivalryTarget picks which rivalry a rivalryDelta lands on: the last
// match opponent when that match was a rivalry game, otherwise the most
// intense active rivalry.
func rivalryTarget(snap *narrative.Snapshot) (teamID string, intensity int, ok bool) {
	if snap.LastMatch != nil && snap.LastMatch.RivalryMatch {
		for _, r := range snap.Rivalries {
			if r.TeamID == snap.LastMatch.OpponentID {
				return r.TeamID, r.Intensity, true
			}
		}
		return snap.LastMatch.OpponentID, 50, true
	}
	if r, found := snap.HottestRivalry(); found {
		return r.TeamID, r.Intensity, true
	}
	return "", 0, false
}
