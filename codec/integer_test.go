package codec

import (
	"testing"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/mdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIntegerUnsigned(t *testing.T) {
	r := bitbuf.Wrap([]byte{0xFF})
	v, err := ExtractInteger(r, mdb.IntegerDataEncoding{SizeInBits: 8, Encoding: mdb.IntegerUnsigned, ByteOrder: bitbuf.BigEndian})
	require.NoError(t, err)
	assert.Equal(t, int64(255), v)
}

func TestExtractIntegerTwosComplement(t *testing.T) {
	r := bitbuf.Wrap([]byte{0xFE})
	v, err := ExtractInteger(r, mdb.IntegerDataEncoding{SizeInBits: 8, Encoding: mdb.IntegerTwosComplement, ByteOrder: bitbuf.BigEndian})
	require.NoError(t, err)
	assert.Equal(t, int64(-2), v)
}

func TestExtractIntegerSignMagnitude(t *testing.T) {
	// 0xFE = 1111_1110: sign bit set, magnitude 0x7E = 126
	r := bitbuf.Wrap([]byte{0xFE})
	v, err := ExtractInteger(r, mdb.IntegerDataEncoding{SizeInBits: 8, Encoding: mdb.IntegerSignMagnitude, ByteOrder: bitbuf.BigEndian})
	require.NoError(t, err)
	assert.Equal(t, int64(-126), v)

	r2 := bitbuf.Wrap([]byte{0x7E})
	v2, err := ExtractInteger(r2, mdb.IntegerDataEncoding{SizeInBits: 8, Encoding: mdb.IntegerSignMagnitude, ByteOrder: bitbuf.BigEndian})
	require.NoError(t, err)
	assert.Equal(t, int64(126), v2)
}

func TestExtractIntegerOnesComplement(t *testing.T) {
	// 0xFE one's complement across 8 bits decodes to -1.
	r := bitbuf.Wrap([]byte{0xFE})
	v, err := ExtractInteger(r, mdb.IntegerDataEncoding{SizeInBits: 8, Encoding: mdb.IntegerOnesComplement, ByteOrder: bitbuf.BigEndian})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)

	r2 := bitbuf.Wrap([]byte{0x01})
	v2, err := ExtractInteger(r2, mdb.IntegerDataEncoding{SizeInBits: 8, Encoding: mdb.IntegerOnesComplement, ByteOrder: bitbuf.BigEndian})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v2)
}

func TestExtractIntegerBigEndianMultiByte(t *testing.T) {
	// 0xffef as a 16-bit two's complement big-endian integer is -17.
	r := bitbuf.Wrap([]byte{0xff, 0xef})
	v, err := ExtractInteger(r, mdb.IntegerDataEncoding{SizeInBits: 16, Encoding: mdb.IntegerTwosComplement, ByteOrder: bitbuf.BigEndian})
	require.NoError(t, err)
	assert.Equal(t, int64(-17), v)
}
