package narrative

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2031, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func TestFlagStoreSetAndExpiry(t *testing.T) {
	fs := NewFlagStore()
	fs.Set("beef_with_ravens", 30, day(10))

	tests := []struct {
		name     string
		today    time.Time
		expected bool
	}{
		{"set day", day(10), true},
		{"mid window", day(25), true},
		{"last active day", day(39), true},
		{"expiry day", day(40), false},
		{"well past expiry", day(55), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := fs.IsActive("beef_with_ravens", tc.today); got != tc.expected {
				t.Errorf("IsActive on %s = %v, want %v", tc.today.Format("Jan 2"), got, tc.expected)
			}
		})
	}
}

func TestFlagStorePermanent(t *testing.T) {
	fs := NewFlagStore()
	fs.Set("championship_won", 0, day(1))

	if !fs.IsActive("championship_won", day(1)) {
		t.Error("permanent flag inactive on set day")
	}
	if !fs.IsActive("championship_won", day(1).AddDate(10, 0, 0)) {
		t.Error("permanent flag expired after 10 years")
	}
}

func TestFlagStoreOverwrite(t *testing.T) {
	fs := NewFlagStore()
	fs.Set("visa_limbo", 5, day(1))
	// Re-setting the same key replaces the window entirely.
	fs.Set("visa_limbo", 20, day(4))

	if !fs.IsActive("visa_limbo", day(10)) {
		t.Error("flag inactive inside renewed window")
	}
	f, ok := fs.Get("visa_limbo")
	if !ok {
		t.Fatal("flag missing after overwrite")
	}
	if !f.SetDate.Equal(day(4)) {
		t.Errorf("SetDate = %s, want %s", f.SetDate, day(4))
	}
}

func TestFlagStoreClear(t *testing.T) {
	fs := NewFlagStore()
	fs.Set("locker_room_fracture", 0, day(1))
	fs.Clear("locker_room_fracture")

	if fs.IsActive("locker_room_fracture", day(1)) {
		t.Error("flag still active after clear")
	}
	// Clearing twice, or clearing something never set, must not panic.
	fs.Clear("locker_room_fracture")
	fs.Clear("never_existed")
}

func TestFlagStoreActiveKeys(t *testing.T) {
	fs := NewFlagStore()
	fs.Set("zeta", 0, day(1))
	fs.Set("alpha", 0, day(1))
	fs.Set("gone", 2, day(1))

	keys := fs.ActiveKeys(day(10))
	if len(keys) != 2 || keys[0] != "alpha" || keys[1] != "zeta" {
		t.Errorf("ActiveKeys = %v, want [alpha zeta]", keys)
	}
}

func TestFlagStoreExportRestore(t *testing.T) {
	fs := NewFlagStore()
	fs.Set("rivalry_scorched_earth", 30, day(5))
	fs.Set("permanent", 0, day(5))

	restored := NewFlagStoreFrom(fs.Export())
	if !restored.IsActive("rivalry_scorched_earth", day(20)) {
		t.Error("timed flag lost in export/restore round trip")
	}
	if restored.IsActive("rivalry_scorched_earth", day(40)) {
		t.Error("timed flag outlived its window after restore")
	}
	if !restored.IsActive("permanent", day(400)) {
		t.Error("permanent flag lost in export/restore round trip")
	}
}
