package narrative

import "testing"

func TestRenderText(t *testing.T) {
	snap := testSnapshot()
	snap.LastMatch = &MatchResult{OpponentID: "kraken", OpponentName: "Abyss Kraken", Won: true}

	tests := []struct {
		name      string
		text      string
		subjectID string
		expected  string
	}{
		{
			name:      "all tokens",
			text:      "{playerName} of {teamName} calls out {rivalName} after beating {opponentName}.",
			subjectID: "p1",
			expected:  "Vex of Breakpoint Esports calls out Redline Ravens after beating Abyss Kraken.",
		},
		{
			name:     "no subject",
			text:     "{playerName} shrugs.",
			expected: "the player shrugs.",
		},
		{
			name:      "unknown subject degrades",
			text:      "{playerName} shrugs.",
			subjectID: "ghost",
			expected:  "the player shrugs.",
		},
		{
			name:     "no tokens passthrough",
			text:     "Scrims ran long again.",
			expected: "Scrims ran long again.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderText(tc.text, snap, tc.subjectID, nil); got != tc.expected {
				t.Errorf("RenderText = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestRenderTextNoRivalryNoMatch(t *testing.T) {
	snap := testSnapshot()
	snap.Rivalries = nil

	got := RenderText("{rivalName} vs {opponentName}", snap, "", nil)
	if got != "a rival team vs the opponent" {
		t.Errorf("RenderText = %q, want fallback names", got)
	}
}

func TestHeadline(t *testing.T) {
	if got := Headline("igl_crisis"); got != "Igl Crisis" {
		t.Errorf("Headline = %q, want %q", got, "Igl Crisis")
	}
	if got := Headline("meta_patch_rumors"); got != "Meta Patch Rumors" {
		t.Errorf("Headline = %q, want %q", got, "Meta Patch Rumors")
	}
}
