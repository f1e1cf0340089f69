// Package errs defines the sentinel errors produced by the xtce packages.
//
// Callers should compare against these with errors.Is, since call sites
// wrap them with fmt.Errorf("%w: ...", errs.ErrXxx) to attach context
// such as the offending parameter or container name.
package errs

import "errors"

// Decoding errors. All are fatal for the packet being decoded; the
// container processor abandons further entries and returns the first one
// encountered.
var (
	// ErrOutOfBounds is returned when the bit cursor would leave the buffer.
	ErrOutOfBounds = errors.New("bit position out of bounds")

	// ErrNoDataTypeAvailable is returned when a parameter has no associated
	// data type and is encountered during decoding.
	ErrNoDataTypeAvailable = errors.New("no data type available for parameter")

	// ErrInvalidMdb signals a structural impossibility in the mission
	// database, e.g. a base data type without an encoding.
	ErrInvalidMdb = errors.New("invalid mission database")

	// ErrDecodingError signals a semantic error detected while extracting
	// a value, e.g. a non-byte-aligned string start or an unterminated
	// string in a buffer with no declared box size.
	ErrDecodingError = errors.New("decoding error")

	// ErrMissingValue is returned when a dynamic reference resolves to a
	// parameter with no value yet in the current decoding context. In
	// evaluators this surfaces as MatchUndef rather than as an error.
	ErrMissingValue = errors.New("referenced parameter has no value in this context")

	// ErrCyclicInheritance is returned when the container processor
	// detects a cycle in the base-container relation.
	ErrCyclicInheritance = errors.New("cyclic container inheritance")

	// ErrPacketTooLarge is returned when a packet exceeds the maximum
	// supported size (2^30 bytes).
	ErrPacketTooLarge = errors.New("packet exceeds maximum supported size")

	// ErrIncomparableTypes describes two values that cannot be compared
	// under the cross-type rules of §4.7. The criteria evaluator does not
	// return it; it reports such a comparison as a MatchError result.
	ErrIncomparableTypes = errors.New("values are not comparable")
)

// Load-time errors.
var (
	// ErrInvalidValue is returned when a literal in the XTCE document
	// cannot be parsed against its declared type.
	ErrInvalidValue = errors.New("invalid literal value")

	// ErrOutOfRange is returned when a literal parses but falls outside
	// the declared range of its type.
	ErrOutOfRange = errors.New("literal value out of range")

	// ErrUndefinedReference is returned when a reference names something
	// absent from the name tree; this can never resolve and is fatal.
	ErrUndefinedReference = errors.New("undefined reference")

	// ErrUnresolvedReference is returned internally by entity constructors
	// when a reference names something present in the name tree but not
	// yet constructed; the loader retries it on the next fixpoint pass.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrUnresolvedReferences is the aggregate error surfaced when a
	// fixpoint pass makes no progress and references remain outstanding.
	ErrUnresolvedReferences = errors.New("unresolved references remain after fixpoint")

	// ErrDuplicateName is returned when two entities of the same kind in
	// the same space system share a name.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrSpaceSystemExists is returned when a space system is declared
	// twice under the same qualified name.
	ErrSpaceSystemExists = errors.New("space system already exists")
)

// mdbcache errors.
var (
	// ErrCacheMagic is returned when a cache file does not start with the
	// expected magic bytes.
	ErrCacheMagic = errors.New("not an mdb cache file")

	// ErrCacheVersion is returned when a cache file's format version is
	// not understood by this build.
	ErrCacheVersion = errors.New("unsupported mdb cache version")
)
