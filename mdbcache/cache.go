// Package mdbcache serializes a loaded mission database to a compact,
// versioned binary blob and reloads it without re-parsing XTCE XML.
//
// The on-disk format is a fixed 16-byte header (magic, version, a
// compression-type byte, reserved padding, then the payload size,
// written with the little-endian EndianEngine) followed by a gob-encoded
// mdb.Snapshot, optionally compressed with one of the compress package's
// codecs.
package mdbcache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/kosmodb/xtce/compress"
	"github.com/kosmodb/xtce/endian"
	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/format"
	"github.com/kosmodb/xtce/internal/pool"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/xtceload"
)

// headerEngine is the byte order the fixed header is written and parsed
// with. The payload's own byte order (if any) is an internal concern of
// whichever gob/compression codec produced it.
var headerEngine = endian.GetLittleEndianEngine()

// blob is the gob-encoded payload shape: the mission database's
// snapshot plus the side information xtceload.Rebuild needs to
// recompile criteria evaluators without re-parsing XTCE XML.
type blob struct {
	MDB      mdb.Snapshot
	Criteria xtceload.CriteriaData
}

// magic identifies a cache file; it has no meaning beyond distinguishing
// the format from arbitrary binary garbage.
var magic = [4]byte{'X', 'T', 'C', 'M'}

// version is the current on-disk format version. Bump it whenever the
// header layout or the Snapshot schema changes incompatibly.
const version = 1

// headerSize is magic(4) + version(1) + compression(1) + reserved(2) +
// payloadSize(8).
const headerSize = 16

type header struct {
	compression format.CompressionType
	payloadSize uint64
}

func (h header) bytes() []byte {
	b := make([]byte, headerSize)
	copy(b[0:4], magic[:])
	b[4] = version
	b[5] = byte(h.compression)
	// b[6:8] reserved, left zero.
	headerEngine.PutUint64(b[8:16], h.payloadSize)
	return b
}

func parseHeader(b []byte) (header, error) {
	if len(b) != headerSize {
		return header{}, fmt.Errorf("%w: short header", errs.ErrCacheMagic)
	}
	if !bytes.Equal(b[0:4], magic[:]) {
		return header{}, errs.ErrCacheMagic
	}
	if b[4] != version {
		return header{}, fmt.Errorf("%w: got %d, want %d", errs.ErrCacheVersion, b[4], version)
	}
	return header{
		compression: format.CompressionType(b[5]),
		payloadSize: headerEngine.Uint64(b[8:16]),
	}, nil
}

// Write encodes loaded as a cache blob and writes it to w, compressing
// the gob payload with compression.
func Write(w io.Writer, loaded *xtceload.Loaded, compression format.CompressionType) error {
	codec, err := compress.CreateCodec(compression, "mdbcache")
	if err != nil {
		return err
	}

	buf := pool.GetBlobBuffer()
	defer pool.PutBlobBuffer(buf)

	enc := gob.NewEncoder(buf)
	b := blob{MDB: loaded.MDB.Snapshot(), Criteria: loaded.Criteria}
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("mdbcache: encoding snapshot: %w", err)
	}

	payload, err := codec.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("mdbcache: compressing snapshot: %w", err)
	}

	h := header{compression: compression, payloadSize: uint64(len(payload))}
	if _, err := w.Write(h.bytes()); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Read decodes a cache blob previously produced by Write, rebuilding the
// mission database and recompiling its criteria evaluators and child
// index. The returned database is not frozen; callers should call
// Freeze before handing it to concurrent decoders.
func Read(r io.Reader) (*xtceload.Loaded, error) {
	hb := make([]byte, headerSize)
	if _, err := io.ReadFull(r, hb); err != nil {
		return nil, fmt.Errorf("mdbcache: reading header: %w", err)
	}
	h, err := parseHeader(hb)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, h.payloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("mdbcache: reading payload: %w", err)
	}

	codec, err := compress.GetCodec(h.compression)
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("mdbcache: decompressing payload: %w", err)
	}

	var b blob
	dec := gob.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("mdbcache: decoding snapshot: %w", err)
	}

	m := mdb.FromSnapshot(b.MDB)
	return xtceload.Rebuild(m, b.Criteria)
}
