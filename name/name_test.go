package name

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBInternDeduplicates(t *testing.T) {
	db := NewDB()

	a := db.GetOrIntern("packet1")
	b := db.GetOrIntern("packet1")
	c := db.GetOrIntern("packet2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	s, ok := db.TryResolve(a)
	require.True(t, ok)
	assert.Equal(t, "packet1", s)
}

func TestDBGetWithoutInterning(t *testing.T) {
	db := NewDB()
	db.GetOrIntern("known")

	_, ok := db.Get("unknown")
	assert.False(t, ok)

	idx, ok := db.Get("known")
	require.True(t, ok)
	s, _ := db.TryResolve(idx)
	assert.Equal(t, "known", s)
}

func TestDBFreezePanicsOnNewIntern(t *testing.T) {
	db := NewDB()
	db.GetOrIntern("a")
	db.Freeze()

	assert.Panics(t, func() {
		db.GetOrIntern("b")
	})

	// Re-interning an already-known name after freeze is fine.
	assert.NotPanics(t, func() {
		db.GetOrIntern("a")
	})
}

func TestQualifiedNamePushPopParent(t *testing.T) {
	db := NewDB()
	a := db.GetOrIntern("RefXtce")
	b := db.GetOrIntern("packet1")

	qn := Empty().Push(a).Push(b)
	assert.False(t, qn.IsRoot())

	last, ok := qn.Name()
	require.True(t, ok)
	assert.Equal(t, b, last)

	parent := qn.Parent()
	parentLast, ok := parent.Name()
	require.True(t, ok)
	assert.Equal(t, a, parentLast)

	popped, removed, ok := qn.Pop()
	require.True(t, ok)
	assert.Equal(t, b, removed)
	assert.True(t, popped.Equal(parent))
}

func TestQualifiedNameRootHasNoName(t *testing.T) {
	qn := Empty()
	assert.True(t, qn.IsRoot())

	_, ok := qn.Name()
	assert.False(t, ok)

	_, _, ok = qn.Pop()
	assert.False(t, ok)
}

func TestQualifiedNameString(t *testing.T) {
	db := NewDB()
	a := db.GetOrIntern("RefXtce")
	b := db.GetOrIntern("packet1")

	qn := Empty().Push(a).Push(b)
	assert.Equal(t, "/RefXtce/packet1", qn.String(db))
	assert.Equal(t, "/", Empty().String(db))
}

func TestParseRequiresKnownSegments(t *testing.T) {
	db := NewDB()
	db.GetOrIntern("RefXtce")
	db.GetOrIntern("packet1")

	qn, ok := Parse(db, "/RefXtce/packet1")
	require.True(t, ok)
	assert.Equal(t, "/RefXtce/packet1", qn.String(db))

	_, ok = Parse(db, "/RefXtce/unknown")
	assert.False(t, ok)
}

func TestParseSpaceSystemAndName(t *testing.T) {
	db := NewDB()
	a := db.GetOrIntern("RefXtce")
	c := db.GetOrIntern("packet1")

	ss, last, ok := ParseSpaceSystemAndName(db, "/RefXtce/packet1")
	require.True(t, ok)
	assert.True(t, ss.Equal(Empty().Push(a)))
	assert.Equal(t, c, last)
}

func TestQualifiedNameKeyDistinguishesPaths(t *testing.T) {
	db := NewDB()
	a := db.GetOrIntern("a")
	b := db.GetOrIntern("b")

	qn1 := Empty().Push(a).Push(b)
	qn2 := Empty().Push(b).Push(a)

	assert.NotEqual(t, qn1.Key(), qn2.Key())
}
