package codec

import (
	"fmt"
	"math"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/mdb"
)

// ExtractFloat reads enc.SizeInBits bits most-significant byte first
// (big-endian; FloatDataEncoding carries no byte order, so little-endian
// floats are not decoded) and reinterprets them as a floating point value, widened to
// float64. 32-bit IEEE-754 is read as a single-precision float then
// cast to double; 64-bit IEEE-754 is read directly as a double.
// MILSTD-1750A is recognized but not decoded by this build.
func ExtractFloat(r *bitbuf.Reader, enc mdb.FloatDataEncoding) (float64, error) {
	switch enc.Encoding {
	case mdb.FloatIEEE754_1985:
		switch enc.SizeInBits {
		case 32:
			raw, err := r.GetBits(32, bitbuf.BigEndian)
			if err != nil {
				return 0, err
			}
			return float64(math.Float32frombits(uint32(raw))), nil
		case 64:
			raw, err := r.GetBits(64, bitbuf.BigEndian)
			if err != nil {
				return 0, err
			}
			return math.Float64frombits(raw), nil
		default:
			return 0, fmt.Errorf("%w: IEEE-754 float must be 32 or 64 bits, got %d", errs.ErrInvalidMdb, enc.SizeInBits)
		}

	case mdb.FloatMilstd1750a:
		return 0, fmt.Errorf("%w: MIL-STD-1750A float decoding is not implemented", errs.ErrDecodingError)

	default:
		return 0, fmt.Errorf("%w: unknown float encoding %d", errs.ErrInvalidMdb, enc.Encoding)
	}
}
