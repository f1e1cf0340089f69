// Package name implements the mission database's name interner and
// qualified-name type.
//
// Every string that appears as a name in an XTCE document (a space
// system, parameter, parameter type, container, or aggregate member
// name) is interned once into a dense Idx. Equal strings always intern
// to equal handles, and handles remain stable for the DB's lifetime, so
// the rest of the mission database can carry cheap integers instead of
// repeatedly hashing or comparing strings.
package name

import (
	"strings"
	"sync"

	"github.com/kosmodb/xtce/internal/collision"
	"github.com/kosmodb/xtce/internal/hash"
)

// Idx is an opaque dense integer handle interning a UTF-8 name.
type Idx int32

// Invalid is the "no name" sentinel for optional fields. It is -1, not
// the zero value of Idx (0 is the first index GetOrIntern hands out); DB
// never hands out Invalid.
const Invalid Idx = -1

// DB is a concurrent string interner. Reads and further interning are
// both safe for concurrent use; callers that want a synchronization-free
// hot path after loading should stop calling GetOrIntern and only use
// TryResolve and Get, which take a read lock.
type DB struct {
	mu       sync.RWMutex
	byString map[string]Idx
	strings  []string
	frozen   bool
	coll     *collision.Tracker
}

// NewDB creates a new, empty name interner.
func NewDB() *DB {
	return &DB{
		byString: make(map[string]Idx, 64),
		strings:  make([]string, 0, 64),
		coll:     collision.NewTracker(),
	}
}

// GetOrIntern returns the Idx for s, interning it if this is the first
// time s has been seen. Panics if called after Freeze.
func (db *DB) GetOrIntern(s string) Idx {
	db.mu.RLock()
	if idx, ok := db.byString[s]; ok {
		db.mu.RUnlock()
		return idx
	}
	db.mu.RUnlock()

	db.mu.Lock()
	defer db.mu.Unlock()

	if idx, ok := db.byString[s]; ok {
		return idx
	}
	if db.frozen {
		panic("name: GetOrIntern called on a frozen DB")
	}

	idx := Idx(len(db.strings))
	db.strings = append(db.strings, s)
	db.byString[s] = idx
	db.coll.Track(s, hash.ID(s))

	return idx
}

// Get returns the Idx already assigned to s, without interning it.
func (db *DB) Get(s string) (Idx, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	idx, ok := db.byString[s]
	return idx, ok
}

// TryResolve returns the string interned as idx, if any.
func (db *DB) TryResolve(idx Idx) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if idx < 0 || int(idx) >= len(db.strings) {
		return "", false
	}

	return db.strings[idx], true
}

// Freeze stops accepting new names. Further GetOrIntern calls panic;
// Get and TryResolve remain available lock-free in spirit (they still
// take a read lock, but it is never contended once frozen). Callers that
// want the hot decoding path to avoid locks entirely should keep their
// own copy of the Idx values they need instead of re-resolving names.
func (db *DB) Freeze() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.frozen = true
}

// Strings returns a copy of every interned string, ordered by Idx (index
// i holds the string interned as Idx(i)). Used by mdbcache to snapshot a
// DB for serialization.
func (db *DB) Strings() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]string, len(db.strings))
	copy(out, db.strings)
	return out
}

// NewDBFromStrings rebuilds a DB by interning strs in order, so that
// Idx(i) is reassigned to strs[i] exactly as it was in the DB Strings
// was captured from.
func NewDBFromStrings(strs []string) *DB {
	db := NewDB()
	for _, s := range strs {
		db.GetOrIntern(s)
	}
	return db
}

// HasHashCollision reports whether two distinct interned names have ever
// produced the same xxHash64 value. This never affects correctness (the
// interner's canonical lookup is the string map, not the hash), but is
// useful as an operational signal when debugging a loader surprise.
func (db *DB) HasHashCollision() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.coll.HasCollision()
}

// QualifiedName is an ordered sequence of Idx representing a path. An
// empty QualifiedName is the root.
type QualifiedName []Idx

// Empty returns the root qualified name.
func Empty() QualifiedName { return nil }

// IsRoot reports whether qn is the root qualified name.
func (qn QualifiedName) IsRoot() bool { return len(qn) == 0 }

// Name returns the last component of qn, i.e. the name of the entity qn
// denotes, relative to its parent. Returns (Invalid, false) for the root.
func (qn QualifiedName) Name() (Idx, bool) {
	if len(qn) == 0 {
		return Invalid, false
	}
	return qn[len(qn)-1], true
}

// Parent returns qn without its last component.
func (qn QualifiedName) Parent() QualifiedName {
	if len(qn) == 0 {
		return qn
	}
	return qn[:len(qn)-1]
}

// Push appends idx, returning the extended qualified name. Push never
// mutates qn's backing array in place when it would alias a shared
// prefix; callers should use the returned value.
func (qn QualifiedName) Push(idx Idx) QualifiedName {
	out := make(QualifiedName, len(qn)+1)
	copy(out, qn)
	out[len(qn)] = idx
	return out
}

// Pop removes the last component, returning the shortened qualified name
// and the removed Idx (Invalid, false if qn was already root).
func (qn QualifiedName) Pop() (QualifiedName, Idx, bool) {
	if len(qn) == 0 {
		return qn, Invalid, false
	}
	last := qn[len(qn)-1]
	return qn[:len(qn)-1], last, true
}

// Clone returns an independent copy of qn.
func (qn QualifiedName) Clone() QualifiedName {
	out := make(QualifiedName, len(qn))
	copy(out, qn)
	return out
}

// Equal reports whether qn and other name the same path.
func (qn QualifiedName) Equal(other QualifiedName) bool {
	if len(qn) != len(other) {
		return false
	}
	for i := range qn {
		if qn[i] != other[i] {
			return false
		}
	}
	return true
}

// Key returns a value suitable for use as a map key, since Go slices
// cannot be compared or hashed directly.
func (qn QualifiedName) Key() string {
	var b strings.Builder
	for _, idx := range qn {
		b.WriteByte('/')
		var buf [8]byte
		n := len(buf)
		v := uint32(idx)
		if n == 0 {
			v = 0
		}
		for {
			n--
			buf[n] = byte('0' + v%10)
			v /= 10
			if v == 0 {
				break
			}
		}
		b.Write(buf[n:])
	}
	return b.String()
}

// String renders qn by resolving each component against db, joining with
// "/". The empty (root) qualified name renders as "/".
func (qn QualifiedName) String(db *DB) string {
	if len(qn) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, idx := range qn {
		b.WriteByte('/')
		if s, ok := db.TryResolve(idx); ok {
			b.WriteString(s)
		} else {
			b.WriteString("[unknown]")
		}
	}
	return b.String()
}

// Parse splits qnstr on "/", looking up each non-empty segment and
// pushing its index onto the returned QualifiedName. Returns false if any
// segment is not already present in db (this never interns new names:
// parsing a reference string must never silently create an entity).
func Parse(db *DB, qnstr string) (QualifiedName, bool) {
	var qn QualifiedName
	for _, p := range strings.Split(qnstr, "/") {
		if p == "" {
			continue
		}
		idx, ok := db.Get(p)
		if !ok {
			return nil, false
		}
		qn = append(qn, idx)
	}
	return qn, true
}

// ParseSpaceSystemAndName splits qnstr into (space-system qualified name,
// final component), as used to resolve a "/a/b/c" reference into the
// space system "/a/b" plus the name "c". Returns false if any segment is
// absent from db or if qnstr names only the root.
func ParseSpaceSystemAndName(db *DB, qnstr string) (QualifiedName, Idx, bool) {
	var v QualifiedName
	for _, p := range strings.Split(qnstr, "/") {
		if p == "" {
			continue
		}
		idx, ok := db.Get(p)
		if !ok {
			return nil, Invalid, false
		}
		v = append(v, idx)
	}
	if len(v) == 0 {
		return nil, Invalid, false
	}
	last := v[len(v)-1]
	return v[:len(v)-1], last, true
}
