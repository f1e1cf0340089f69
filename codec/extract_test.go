package codec

import (
	"testing"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIntType(m *mdb.MissionDatabase, ss name.QualifiedName, n string, bits int, signed bool) mdb.DataTypeIdx {
	enc := mdb.IntegerUnsigned
	if signed {
		enc = mdb.IntegerTwosComplement
	}
	return m.AddParameterType(ss, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: m.GetOrIntern(n)},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingInteger, Integer: mdb.IntegerDataEncoding{SizeInBits: bits, Encoding: enc, ByteOrder: bitbuf.BigEndian}},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataInteger, Integer: mdb.IntegerDataType{SizeInBits: bits, Signed: signed}},
	})
}

func TestExtractorInteger(t *testing.T) {
	m := mdb.New()
	root := name.Empty()
	ptype := buildIntType(m, root, "u8", 8, false)

	r := bitbuf.Wrap([]byte{0xFF})
	ex := NewExtractor(m)
	v, err := ex.Extract(r, ptype, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(255), v.AsUint64())
}

func TestExtractorAggregate(t *testing.T) {
	m := mdb.New()
	root := name.Empty()
	u8 := buildIntType(m, root, "u8", 8, false)
	i16 := buildIntType(m, root, "i16", 16, true)

	aggName := m.GetOrIntern("aggtype")
	memberA := m.GetOrIntern("a")
	memberB := m.GetOrIntern("b")

	aggType := m.AddParameterType(root, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: aggName},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingNone},
		TypeData: mdb.TypeData{
			Kind: mdb.TypeDataAggregate,
			Aggregate: mdb.AggregateDataType{
				Members: []mdb.Member{
					{Ndescr: mdb.NameDescription{Name: memberA}, Dtype: u8},
					{Ndescr: mdb.NameDescription{Name: memberB}, Dtype: i16},
				},
			},
		},
	})

	r := bitbuf.Wrap([]byte{0x2A, 0xFF, 0xEF})
	ex := NewExtractor(m)
	v, err := ex.Extract(r, aggType, nil)
	require.NoError(t, err)

	agg := v.AsAggregate()
	assert.Equal(t, uint64(0x2A), agg[memberA].AsUint64())
	assert.Equal(t, int64(-17), agg[memberB].AsInt64())
}

func TestExtractorFixedArray(t *testing.T) {
	m := mdb.New()
	root := name.Empty()
	u8 := buildIntType(m, root, "u8", 8, false)

	arrName := m.GetOrIntern("arraytype")
	arrType := m.AddParameterType(root, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: arrName},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingNone},
		TypeData: mdb.TypeData{
			Kind: mdb.TypeDataArray,
			Array: mdb.ArrayDataType{
				Dtype: u8,
				Dim:   []mdb.IntegerValue{{Kind: mdb.IntegerValueFixed, FixedValue: 3}},
			},
		},
	})

	r := bitbuf.Wrap([]byte{1, 2, 3})
	ex := NewExtractor(m)
	v, err := ex.Extract(r, arrType, nil)
	require.NoError(t, err)

	arr := v.AsArray()
	require.Len(t, arr, 3)
	assert.Equal(t, uint64(1), arr[0].AsUint64())
	assert.Equal(t, uint64(3), arr[2].AsUint64())
}

func TestExtractorAggregateOrArrayRejectsOwnEncoding(t *testing.T) {
	m := mdb.New()
	root := name.Empty()

	badName := m.GetOrIntern("bad")
	badType := m.AddParameterType(root, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: badName},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingInteger},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataAggregate},
	})

	r := bitbuf.Wrap([]byte{0})
	ex := NewExtractor(m)
	_, err := ex.Extract(r, badType, nil)
	assert.Error(t, err)
}
