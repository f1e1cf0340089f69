package mdb

import (
	"testing"

	"github.com/kosmodb/xtce/name"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasRootSpaceSystem(t *testing.T) {
	m := New()
	root, ok := m.SpaceSystem(name.Empty())
	require.True(t, ok)
	assert.Equal(t, name.Empty(), root.Fqn)
}

func TestNewSpaceSystemRejectsDuplicate(t *testing.T) {
	m := New()
	refXtce := m.GetOrIntern("RefXtce")
	fqn := name.Empty().Push(refXtce)

	_, err := m.NewSpaceSystem(fqn)
	require.NoError(t, err)

	_, err = m.NewSpaceSystem(fqn)
	assert.Error(t, err)
}

func TestAddParameterAndContainer(t *testing.T) {
	m := New()
	refXtce := m.GetOrIntern("RefXtce")
	fqn := name.Empty().Push(refXtce)
	_, err := m.NewSpaceSystem(fqn)
	require.NoError(t, err)

	ptypeName := m.GetOrIntern("uint8_type")
	ptypeIdx := m.AddParameterType(fqn, DataType{
		Ndescr:   NameDescription{Name: ptypeName},
		Encoding: DataEncoding{Kind: EncodingInteger, Integer: IntegerDataEncoding{SizeInBits: 8}},
		TypeData: TypeData{Kind: TypeDataInteger, Integer: IntegerDataType{SizeInBits: 8, Signed: false}},
	})

	paramName := m.GetOrIntern("param1")
	paramIdx := m.AddParameter(fqn, Parameter{
		Ndescr: NameDescription{Name: paramName},
		Ptype:  ptypeIdx,
	})

	containerName := m.GetOrIntern("packet1")
	containerIdx := m.AddContainer(fqn, SequenceContainer{
		Ndescr: NameDescription{Name: containerName},
		Entries: []ContainerEntry{
			{Data: ContainerEntryData{Kind: EntryParameterRef, ParameterRef: paramIdx}},
		},
	})

	gotParam, ok := m.ParameterIdxByName(fqn, paramName)
	require.True(t, ok)
	assert.Equal(t, paramIdx, gotParam)

	gotContainer, ok := m.SearchContainer("/RefXtce/packet1")
	require.True(t, ok)
	assert.Equal(t, containerIdx, gotContainer)

	c := m.ContainerByIdx(gotContainer)
	assert.Len(t, c.Entries, 1)
}

func TestSearchContainerUnknownReturnsFalse(t *testing.T) {
	m := New()
	_, ok := m.SearchContainer("/Nope/packet1")
	assert.False(t, ok)
}

func TestIndexPosRoundTrip(t *testing.T) {
	idx := NewIndex(41)
	assert.Equal(t, 41, idx.Pos())
	assert.True(t, idx.Valid())
	assert.False(t, InvalidIndex.Valid())
}
