package codec

import (
	"fmt"
	"unicode/utf8"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/mdb"
)

// ExtractString decodes a string value per §4.6a: the box (how many
// bytes the string occupies on the wire) and the string's own length
// within that box are resolved independently, since a leading-size tag
// or a termination character can make the two differ (e.g. a
// termination-delimited string padded to a fixed box).
//
// The cursor must be byte-aligned on entry. On return the cursor has
// advanced exactly to the end of the resolved box, regardless of where
// the string's content ended, so that any trailing pad bytes are
// consumed along with the field.
func ExtractString(r *bitbuf.Reader, enc mdb.StringDataEncoding) (string, error) {
	if r.Position()%8 != 0 {
		return "", fmt.Errorf("%w: string extraction requires a byte-aligned position, got bit %d", errs.ErrDecodingError, r.Position())
	}

	remainingBytes := r.RemainingBits() / 8
	bmr := remainingBytes
	if enc.BoxSizeInBitsValid && enc.SizeType == mdb.StringSizeFixed {
		boxBytes := enc.SizeInBits / 8
		if boxBytes > bmr {
			return "", fmt.Errorf("%w: declared string box %d bytes exceeds %d remaining", errs.ErrOutOfBounds, boxBytes, bmr)
		}
		bmr = boxBytes
	}

	boxStart := r.Position()
	var content []byte
	var boxSizeBits int

	switch enc.SizeType {
	case mdb.StringSizeFixed:
		l := bmr
		if enc.BoxSizeInBitsValid {
			l = enc.SizeInBits / 8
		}
		if l > bmr {
			return "", fmt.Errorf("%w: fixed string length %d exceeds %d remaining bytes", errs.ErrOutOfBounds, l, bmr)
		}
		b, err := r.GetBytesRef(l)
		if err != nil {
			return "", err
		}
		content = b
		boxSizeBits = l * 8

	case mdb.StringSizeLeadingSize:
		tagBytes := enc.SizeInBitsOfSizeTag / 8
		if tagBytes <= 0 {
			return "", fmt.Errorf("%w: leading-size string requires a positive size tag width", errs.ErrInvalidMdb)
		}
		length, err := ExtractUnsignedInteger(r, enc.SizeInBitsOfSizeTag, bitbuf.BigEndian)
		if err != nil {
			return "", err
		}
		l := int(length)
		if tagBytes+l > bmr {
			return "", fmt.Errorf("%w: leading-size string of %d bytes exceeds %d remaining after tag", errs.ErrOutOfBounds, l, bmr-tagBytes)
		}
		b, err := r.GetBytesRef(l)
		if err != nil {
			return "", err
		}
		content = b
		boxSizeBits = (tagBytes + l) * 8

	case mdb.StringSizeTerminationChar:
		scanLimit := bmr
		if enc.BoxSizeInBitsValid {
			scanLimit = enc.SizeInBits / 8
		}
		found := -1
		for i := 0; i < scanLimit; i++ {
			b, err := peekByte(r, i)
			if err != nil {
				return "", err
			}
			if b == enc.TerminationChar {
				found = i
				break
			}
		}
		if found < 0 {
			if !enc.BoxSizeInBitsValid {
				return "", fmt.Errorf("%w: string termination character not found within %d available bytes and no box size declared", errs.ErrDecodingError, scanLimit)
			}
			b, err := r.GetBytesRef(scanLimit)
			if err != nil {
				return "", err
			}
			content = b
			boxSizeBits = scanLimit * 8
		} else {
			boxBytes := found + 1
			if enc.BoxSizeInBitsValid {
				if scanLimit > bmr {
					return "", fmt.Errorf("%w: declared string box %d bytes exceeds %d remaining", errs.ErrOutOfBounds, scanLimit, bmr)
				}
				boxBytes = scanLimit
			}
			b, err := r.GetBytesRef(boxBytes)
			if err != nil {
				return "", err
			}
			content = b[:found]
			boxSizeBits = boxBytes * 8
		}

	case mdb.StringSizeCustom:
		return "", fmt.Errorf("%w: custom string transforms are not implemented", errs.ErrDecodingError)

	default:
		return "", fmt.Errorf("%w: unknown string size type %d", errs.ErrInvalidMdb, enc.SizeType)
	}

	_ = boxStart
	_ = boxSizeBits

	return decodeText(content), nil
}

// peekByte reads the byte at offset bytes past the reader's current
// position without consuming it, by temporarily slicing. Used to scan
// for a termination character.
func peekByte(r *bitbuf.Reader, offset int) (byte, error) {
	pos := r.Position()
	r.SetPosition(pos + offset*8)
	b, err := r.GetByte()
	r.SetPosition(pos)
	if err != nil {
		return 0, err
	}
	return b, nil
}

// decodeText converts content to a string, lossily replacing invalid
// UTF-8 sequences rather than failing: per §4.6a, invalid code units are
// non-fatal.
func decodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	buf := make([]rune, 0, len(content))
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		buf = append(buf, r)
		i += size
	}
	return string(buf)
}
