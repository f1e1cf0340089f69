package container

import (
	"testing"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/criteria"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noEvaluators struct{}

func (noEvaluators) Evaluator(idx mdb.MatchCriteriaIdx) criteria.Evaluator { return nil }

type staticEvaluators map[mdb.MatchCriteriaIdx]criteria.Evaluator

func (s staticEvaluators) Evaluator(idx mdb.MatchCriteriaIdx) criteria.Evaluator { return s[idx] }

type childMap map[mdb.ContainerIdx][]mdb.ContainerIdx

func (c childMap) Children(idx mdb.ContainerIdx) []mdb.ContainerIdx { return c[idx] }

type fixedEvaluator struct{ r criteria.MatchResult }

func (f fixedEvaluator) Evaluate(ctx criteria.Context) criteria.MatchResult { return f.r }

func buildU8(m *mdb.MissionDatabase, root name.QualifiedName, n string) mdb.DataTypeIdx {
	return m.AddParameterType(root, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: m.GetOrIntern(n)},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingInteger, Integer: mdb.IntegerDataEncoding{SizeInBits: 8, Encoding: mdb.IntegerUnsigned, ByteOrder: bitbuf.BigEndian}},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataInteger, Integer: mdb.IntegerDataType{SizeInBits: 8, Signed: false}},
	})
}

func TestProcessorFlatContainer(t *testing.T) {
	m := mdb.New()
	root := name.Empty()
	u8 := buildU8(m, root, "u8")

	p1 := m.AddParameter(root, mdb.Parameter{Ndescr: mdb.NameDescription{Name: m.GetOrIntern("p1")}, Ptype: u8})
	p2 := m.AddParameter(root, mdb.Parameter{Ndescr: mdb.NameDescription{Name: m.GetOrIntern("p2")}, Ptype: u8})

	cidx := m.AddContainer(root, mdb.SequenceContainer{
		Ndescr: mdb.NameDescription{Name: m.GetOrIntern("pkt")},
		Entries: []mdb.ContainerEntry{
			{Data: mdb.ContainerEntryData{Kind: mdb.EntryParameterRef, ParameterRef: p1}},
			{Data: mdb.ContainerEntryData{Kind: mdb.EntryParameterRef, ParameterRef: p2}},
		},
	})

	proc := New(m, noEvaluators{}, childMap{})
	pvl, err := proc.Process([]byte{0x0A, 0x14}, cidx)
	require.NoError(t, err)
	require.Equal(t, 2, pvl.Len())

	v1, ok := pvl.LastInserted(p1)
	require.True(t, ok)
	assert.Equal(t, uint64(10), v1.EngValue.AsUint64())

	v2, ok := pvl.LastInserted(p2)
	require.True(t, ok)
	assert.Equal(t, uint64(20), v2.EngValue.AsUint64())
}

func TestProcessorRejectsOversizedPacket(t *testing.T) {
	m := mdb.New()
	root := name.Empty()
	cidx := m.AddContainer(root, mdb.SequenceContainer{Ndescr: mdb.NameDescription{Name: m.GetOrIntern("pkt")}})

	proc := New(m, noEvaluators{}, childMap{})
	_, err := proc.Process(make([]byte, MaxPacketSize+1), cidx)
	assert.Error(t, err)
}

func TestProcessorSkipsEntryWhenIncludeConditionNOK(t *testing.T) {
	m := mdb.New()
	root := name.Empty()
	u8 := buildU8(m, root, "u8")
	p1 := m.AddParameter(root, mdb.Parameter{Ndescr: mdb.NameDescription{Name: m.GetOrIntern("p1")}, Ptype: u8})

	condIdx := mdb.MatchCriteriaIdx(mdb.NewIndex(0))
	cidx := m.AddContainer(root, mdb.SequenceContainer{
		Ndescr: mdb.NameDescription{Name: m.GetOrIntern("pkt")},
		Entries: []mdb.ContainerEntry{
			{IncludeCondition: condIdx, Data: mdb.ContainerEntryData{Kind: mdb.EntryParameterRef, ParameterRef: p1}},
		},
	})

	evals := staticEvaluators{condIdx: fixedEvaluator{r: criteria.MatchNOK}}
	proc := New(m, evals, childMap{})
	pvl, err := proc.Process([]byte{0xFF}, cidx)
	require.NoError(t, err)
	assert.Equal(t, 0, pvl.Len())
}

func TestProcessorInheritanceChildGatedByRestriction(t *testing.T) {
	m := mdb.New()
	root := name.Empty()
	u8 := buildU8(m, root, "u8")
	p1 := m.AddParameter(root, mdb.Parameter{Ndescr: mdb.NameDescription{Name: m.GetOrIntern("p1")}, Ptype: u8})
	p2 := m.AddParameter(root, mdb.Parameter{Ndescr: mdb.NameDescription{Name: m.GetOrIntern("p2")}, Ptype: u8})

	baseIdx := m.AddContainer(root, mdb.SequenceContainer{
		Ndescr: mdb.NameDescription{Name: m.GetOrIntern("base")},
		Entries: []mdb.ContainerEntry{
			{Data: mdb.ContainerEntryData{Kind: mdb.EntryParameterRef, ParameterRef: p1}},
		},
	})

	restrictIdx := mdb.MatchCriteriaIdx(mdb.NewIndex(0))
	childIdx := m.AddContainer(root, mdb.SequenceContainer{
		Ndescr:              mdb.NameDescription{Name: m.GetOrIntern("child")},
		BaseContainer:       baseIdx,
		RestrictionCriteria: restrictIdx,
		Entries: []mdb.ContainerEntry{
			{Data: mdb.ContainerEntryData{Kind: mdb.EntryParameterRef, ParameterRef: p2}},
		},
	})

	evals := staticEvaluators{restrictIdx: fixedEvaluator{r: criteria.MatchOK}}
	children := childMap{baseIdx: {childIdx}}

	proc := New(m, evals, children)
	pvl, err := proc.Process([]byte{0x01, 0x02}, baseIdx)
	require.NoError(t, err)
	require.Equal(t, 2, pvl.Len())

	v2, ok := pvl.LastInserted(p2)
	require.True(t, ok)
	assert.Equal(t, uint64(2), v2.EngValue.AsUint64())
}
