package codec

import (
	"testing"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/mdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStringFixedSize(t *testing.T) {
	r := bitbuf.Wrap([]byte("ABCD"))
	s, err := ExtractString(r, mdb.StringDataEncoding{
		SizeType: mdb.StringSizeFixed, SizeInBits: 32, BoxSizeInBitsValid: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ABCD", s)
	assert.Equal(t, 32, r.Position())
}

func TestExtractStringLeadingSize(t *testing.T) {
	// tag byte 0x03 then 3 bytes of payload.
	r := bitbuf.Wrap([]byte{0x03, 0x01, 0x02, 0x03})
	s, err := ExtractString(r, mdb.StringDataEncoding{
		SizeType: mdb.StringSizeLeadingSize, SizeInBitsOfSizeTag: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "\x01\x02\x03", s)
	assert.Equal(t, 32, r.Position())
}

func TestExtractStringTerminationChar(t *testing.T) {
	r := bitbuf.Wrap([]byte{'h', 'i', 0, 'X'})
	s, err := ExtractString(r, mdb.StringDataEncoding{
		SizeType: mdb.StringSizeTerminationChar, TerminationChar: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	// cursor advances past the terminator (3 bytes), not the trailing 'X'.
	assert.Equal(t, 24, r.Position())
}

func TestExtractStringTerminationCharMissingNoBoxIsError(t *testing.T) {
	r := bitbuf.Wrap([]byte{'h', 'i'})
	_, err := ExtractString(r, mdb.StringDataEncoding{
		SizeType: mdb.StringSizeTerminationChar, TerminationChar: 0,
	})
	assert.Error(t, err)
}

func TestExtractStringTerminationCharMissingWithBoxOK(t *testing.T) {
	r := bitbuf.Wrap([]byte{'h', 'i'})
	s, err := ExtractString(r, mdb.StringDataEncoding{
		SizeType: mdb.StringSizeTerminationChar, TerminationChar: 0,
		SizeInBits: 16, BoxSizeInBitsValid: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
}

func TestExtractStringRequiresByteAlignment(t *testing.T) {
	r := bitbuf.Wrap([]byte{0xAB})
	r.SetPosition(1)
	_, err := ExtractString(r, mdb.StringDataEncoding{SizeType: mdb.StringSizeFixed})
	assert.Error(t, err)
}
