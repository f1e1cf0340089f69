package codec

import (
	"fmt"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/mdb"
)

// ExtractBinary reads a binary value's box per §4.6: either a fixed
// bit-size box, or a leading unsigned size tag giving the box length in
// bytes. The cursor must be byte-aligned on entry.
func ExtractBinary(r *bitbuf.Reader, enc mdb.BinaryDataEncoding) ([]byte, error) {
	if r.Position()%8 != 0 {
		return nil, fmt.Errorf("%w: binary extraction requires a byte-aligned position, got bit %d", errs.ErrDecodingError, r.Position())
	}

	var sizeInBits int
	if enc.SizeInBitsOfSizeTag > 0 {
		tag, err := ExtractUnsignedInteger(r, enc.SizeInBitsOfSizeTag, bitbuf.BigEndian)
		if err != nil {
			return nil, err
		}
		sizeInBits = int(tag) * 8
	} else {
		sizeInBits = enc.SizeInBits
	}

	if sizeInBits%8 != 0 {
		return nil, fmt.Errorf("%w: binary box of %d bits is not byte-aligned", errs.ErrDecodingError, sizeInBits)
	}

	b, err := r.GetBytesRef(sizeInBits / 8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
