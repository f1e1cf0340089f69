package mdb

// ReferenceLocationType selects what a ContainerEntry's bit position is
// relative to.
type ReferenceLocationType byte

const (
	// ReferenceContainerStart positions relative to the start of the
	// container currently being processed.
	ReferenceContainerStart ReferenceLocationType = iota
	// ReferencePreviousEntry positions relative to the end of the
	// previous entry's extraction (or the start of the container, for
	// the first entry).
	ReferencePreviousEntry
)

// LocationInContainerInBits is a ContainerEntry's optional explicit
// bit-position override.
type LocationInContainerInBits struct {
	ReferenceLocation ReferenceLocationType
	LocationInBits     int
}

// ContainerEntryKind discriminates the variant held by a
// ContainerEntryData.
type ContainerEntryKind byte

const (
	EntryParameterRef ContainerEntryKind = iota
	EntryContainerRef
	EntryIndirectParameterRef
	EntryArrayParameterRef
)

// IndirectParameterRefEntry resolves which parameter to extract by
// reading a discriminant parameter's current value first. Not evaluated
// by the stock processor; recognized so a loader can round-trip it.
type IndirectParameterRefEntry struct{}

// ArrayParameterRefEntry extracts a whole array parameter as a single
// entry. Not evaluated by the stock processor; recognized so a loader
// can round-trip it.
type ArrayParameterRefEntry struct{}

// ContainerEntryData is the tagged union of what a ContainerEntry
// extracts.
type ContainerEntryData struct {
	Kind             ContainerEntryKind
	ParameterRef     ParameterIdx
	ContainerRef     ContainerIdx
	IndirectParamRef IndirectParameterRefEntry
	ArrayParamRef    ArrayParameterRefEntry
}

// ContainerEntry is one item of a SequenceContainer's entry list.
type ContainerEntry struct {
	// LocationInContainer, if present, repositions the bit cursor before
	// extracting this entry. Absent means "immediately after the
	// previous entry", same as ReferencePreviousEntry with offset 0.
	LocationInContainer *LocationInContainerInBits
	// IncludeCondition, if present, gates whether this entry is
	// extracted at all.
	IncludeCondition MatchCriteriaIdx
	Data             ContainerEntryData
}

// SequenceContainer is a named, ordered list of entries, optionally
// inheriting from a base container.
type SequenceContainer struct {
	Ndescr NameDescription

	// BaseContainer, if valid, is the container this one inherits
	// entries from. RestrictionCriteria, if valid, gates whether this
	// container applies as a concrete subtype of BaseContainer during
	// inheritance-child dispatch.
	BaseContainer       ContainerIdx
	RestrictionCriteria MatchCriteriaIdx

	Abstract bool
	Entries  []ContainerEntry
}

func (c SequenceContainer) NameDescr() NameDescription { return c.Ndescr }

// ComparisonOperator is the relational operator of a Comparison.
type ComparisonOperator byte

const (
	OpEquality ComparisonOperator = iota
	OpInequality
	OpLargerThan
	OpLargerOrEqualThan
	OpSmallerThan
	OpSmallerOrEqualThan
)

// ParameterInstanceRef names a parameter to read during criteria
// evaluation, optionally navigating into one of its aggregate/array
// members, and optionally preferring its calibrated (engineering) value
// over the raw one.
type ParameterInstanceRef struct {
	Pidx              ParameterIdx
	Instance          int
	UseCalibratedValue bool
	// MemberPath, if non-empty, navigates into an aggregate or array
	// value, e.g. ["subsys", "status"] for ".subsys.status".
	MemberPath []string
}

// LiteralKind discriminates the variant held by a Comparison's literal
// operand.
type LiteralKind byte

const (
	LiteralInt64 LiteralKind = iota
	LiteralUint64
	LiteralDouble
	LiteralString
	LiteralBoolean
)

// Literal is a parsed comparison operand taken directly from the XTCE
// document, before it is known which side of the comparison (if either)
// needs widening.
type Literal struct {
	Kind    LiteralKind
	Int     int64
	Uint    uint64
	Double  float64
	Str     string
	Boolean bool
}

// Comparison compares a parameter instance's current value against a
// literal.
type Comparison struct {
	ParamInstance      ParameterInstanceRef
	ComparisonOperator ComparisonOperator
	Value              Literal
}

// MatchCriteriaKind discriminates the variant held by a MatchCriteria.
type MatchCriteriaKind byte

const (
	MatchComparison MatchCriteriaKind = iota
	MatchComparisonList
	MatchAnd
	MatchOr
)

// MatchCriteria is the tagged union of match expressions: a single
// comparison, an implicit-AND list of comparisons, or an explicit
// AND/OR combinator over other match criteria.
type MatchCriteria struct {
	Kind       MatchCriteriaKind
	Comparison Comparison
	// ComparisonList holds each member's Comparison when Kind is
	// MatchComparisonList.
	ComparisonList []Comparison
	// Operands holds each member's index into MissionDatabase.MatchCriteria
	// when Kind is MatchAnd or MatchOr.
	Operands []MatchCriteriaIdx
}
