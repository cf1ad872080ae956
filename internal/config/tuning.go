package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/narrative-engine/pkg/drama"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
)

// Tuning is the designer-facing tuning file for the narrative engine.
// All fields have sane defaults so a missing or partial file still
// yields a working engine.
type Tuning struct {
	// CooldownDays maps drama categories to their minimum interval
	// between new events, in days.
	CooldownDays        map[string]int `yaml:"cooldown_days"`
	DefaultCooldownDays int            `yaml:"default_cooldown_days"`

	MaxActiveEvents     int `yaml:"max_active_events"`
	DefaultExpiryDays   int `yaml:"default_expiry_days"`
	EscalationGraceDays int `yaml:"escalation_grace_days"`

	MaxChainPerResolution int `yaml:"max_chain_per_resolution"`
}

// DefaultTuning returns the built-in tuning values.
func DefaultTuning() *Tuning {
	d := drama.DefaultConfig()
	return &Tuning{
		DefaultCooldownDays:   d.DefaultCooldownDays,
		MaxActiveEvents:       d.MaxActiveEvents,
		DefaultExpiryDays:     d.DefaultExpiryDays,
		EscalationGraceDays:   d.EscalationGraceDays,
		MaxChainPerResolution: 1,
	}
}

// LoadTuning reads a tuning file, layering it over the defaults.
// A missing file is not an error; a malformed one is.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return t, nil
}

// EngineConfig converts tuning values into the engine's config.
// Unknown category names in cooldown_days are dropped with no error;
// the validator reports them at authoring time.
func (t *Tuning) EngineConfig() engine.Config {
	cfg := engine.Config{
		Drama: drama.Config{
			CooldownDays:        make(map[drama.Category]int),
			DefaultCooldownDays: t.DefaultCooldownDays,
			MaxActiveEvents:     t.MaxActiveEvents,
			DefaultExpiryDays:   t.DefaultExpiryDays,
			EscalationGraceDays: t.EscalationGraceDays,
		},
		MaxChainPerResolution: t.MaxChainPerResolution,
	}
	for name, days := range t.CooldownDays {
		cat := drama.Category(name)
		if cat.Valid() {
			cfg.Drama.CooldownDays[cat] = days
		}
	}
	return cfg
}
