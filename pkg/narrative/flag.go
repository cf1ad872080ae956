package narrative

import (
	"sort"
	"time"
)

// Flag is a time-scoped narrative marker used to gate later content on
// past outcomes. A nil Expires means the flag never expires.
type Flag struct {
	Key     string     `json:"key"`
	SetDate time.Time  `json:"set_date"`
	Expires *time.Time `json:"expires,omitempty"`
}

// ActiveAt reports whether the flag is active on the given day.
func (f Flag) ActiveAt(today time.Time) bool {
	return f.Expires == nil || today.Before(*f.Expires)
}

// FlagStore owns all narrative flags. At most one value exists per key;
// setting a key overwrites any prior entry. Expiry is evaluated lazily
// on read, so logically expired entries may linger in the map without
// affecting correctness.
type FlagStore struct {
	flags map[string]Flag
}

// NewFlagStore creates an empty flag store.
func NewFlagStore() *FlagStore {
	return &FlagStore{flags: make(map[string]Flag)}
}

// NewFlagStoreFrom creates a flag store seeded from a serialized flag
// map, e.g. a restored save. A nil map yields an empty store.
func NewFlagStoreFrom(flags map[string]Flag) *FlagStore {
	fs := NewFlagStore()
	for k, f := range flags {
		f.Key = k
		fs.flags[k] = f
	}
	return fs
}

// Set writes a flag for key, overwriting any prior entry.
// durationDays <= 0 means the flag is permanent.
func (fs *FlagStore) Set(key string, durationDays int, today time.Time) {
	f := Flag{Key: key, SetDate: today}
	if durationDays > 0 {
		exp := today.AddDate(0, 0, durationDays)
		f.Expires = &exp
	}
	fs.flags[key] = f
}

// Clear removes the entry for key. Clearing an absent key is a no-op.
func (fs *FlagStore) Clear(key string) {
	delete(fs.flags, key)
}

// IsActive reports whether key has an entry that has not expired.
func (fs *FlagStore) IsActive(key string, today time.Time) bool {
	f, ok := fs.flags[key]
	if !ok {
		return false
	}
	return f.ActiveAt(today)
}

// Get returns the stored flag for key, expired or not.
func (fs *FlagStore) Get(key string) (Flag, bool) {
	f, ok := fs.flags[key]
	return f, ok
}

// ActiveKeys returns the sorted keys of all flags active today.
func (fs *FlagStore) ActiveKeys(today time.Time) []string {
	keys := make([]string, 0, len(fs.flags))
	for k, f := range fs.flags {
		if f.ActiveAt(today) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Export returns a copy of the underlying flag map for persistence.
func (fs *FlagStore) Export() map[string]Flag {
	out := make(map[string]Flag, len(fs.flags))
	for k, f := range fs.flags {
		out[k] = f
	}
	return out
}
