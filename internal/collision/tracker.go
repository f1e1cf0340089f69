// Package collision tracks xxHash64 collisions among interned names.
//
// The name interner (package name) looks names up only through its
// canonical string map and records each newly interned name's hash here
// afterwards, so a collision never corrupts a lookup — but it is worth
// surfacing diagnostically,
// since two distinct XTCE names hashing identically would otherwise be
// silently invisible to an operator debugging a loader issue.
package collision

// Tracker records which xxHash64 values have been produced for which
// interned strings, and flags when two different strings produced the
// same hash.
type Tracker struct {
	byHash       map[uint64]string
	hasCollision bool
}

// NewTracker creates a new, empty collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byHash: make(map[uint64]string),
	}
}

// Track records that name produced hash. It returns true if this
// observation introduced a new collision (a different name previously
// produced the same hash).
func (t *Tracker) Track(name string, hash uint64) bool {
	existing, seen := t.byHash[hash]
	if !seen {
		t.byHash[hash] = name
		return false
	}
	if existing == name {
		return false
	}
	t.hasCollision = true
	return true
}

// HasCollision reports whether any collision has been observed so far.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Count returns the number of distinct hashes tracked.
func (t *Tracker) Count() int {
	return len(t.byHash)
}
