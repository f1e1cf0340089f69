package value

import (
	"testing"

	"github.com/kosmodb/xtce/mdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterValueListLastInserted(t *testing.T) {
	l := NewParameterValueList()

	p1 := mdb.NewIndex(0)
	p2 := mdb.NewIndex(1)

	l.Push(ParameterValue{Pidx: p1, RawValue: Int(1), EngValue: Int(1)})
	l.Push(ParameterValue{Pidx: p2, RawValue: Int(2), EngValue: Int(2)})
	l.Push(ParameterValue{Pidx: p1, RawValue: Int(3), EngValue: Int(3)})

	latest, ok := l.LastInserted(p1)
	require.True(t, ok)
	assert.Equal(t, int64(3), latest.RawValue.AsInt64())

	latest2, ok := l.LastInserted(p2)
	require.True(t, ok)
	assert.Equal(t, int64(2), latest2.RawValue.AsInt64())

	assert.Equal(t, 3, l.Len())
}

func TestParameterValueListUnknownParameter(t *testing.T) {
	l := NewParameterValueList()
	_, ok := l.LastInserted(mdb.NewIndex(5))
	assert.False(t, ok)
}

func TestParameterValueListAllPreservesOrder(t *testing.T) {
	l := NewParameterValueList()
	p1 := mdb.NewIndex(0)

	l.Push(ParameterValue{Pidx: p1, RawValue: Int(1), EngValue: Int(1)})
	l.Push(ParameterValue{Pidx: p1, RawValue: Int(2), EngValue: Int(2)})

	all := l.All()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].RawValue.AsInt64())
	assert.Equal(t, int64(2), all[1].RawValue.AsInt64())
}
