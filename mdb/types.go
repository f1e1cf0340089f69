package mdb

import "github.com/kosmodb/xtce/bitbuf"

// DataSource classifies where a parameter's value originates. Only
// Telemetered and Constant participate in container decoding; the rest
// are carried for document fidelity and future command/algorithm support.
type DataSource byte

const (
	DataSourceTelemetered DataSource = iota
	DataSourceDerived
	DataSourceConstant
	DataSourceLocal
	DataSourceSystem
	DataSourceCommand
	DataSourceCommandHistory
	DataSourceExternal1
	DataSourceExternal2
	DataSourceExternal3
)

// UnitType is one entry of a data type's unit set.
type UnitType struct {
	Description string
	Power       float64
	Factor      string
	Unit        string
}

// IntegerEncodingType selects how an integer's raw bits map to a signed
// or unsigned magnitude.
type IntegerEncodingType byte

const (
	IntegerUnsigned IntegerEncodingType = iota
	IntegerTwosComplement
	IntegerSignMagnitude
	IntegerOnesComplement
)

// IntegerDataEncoding describes how an integer value is packed into bits.
type IntegerDataEncoding struct {
	SizeInBits int
	Encoding   IntegerEncodingType
	ByteOrder  bitbuf.ByteOrder
}

// FloatEncodingType selects the floating-point wire representation.
type FloatEncodingType byte

const (
	FloatIEEE754_1985 FloatEncodingType = iota
	FloatMilstd1750a
)

// FloatDataEncoding describes how a float value is packed into bits.
type FloatDataEncoding struct {
	SizeInBits int
	Encoding   FloatEncodingType
}

// StringSizeType selects how a string's length is determined on the wire.
type StringSizeType byte

const (
	// StringSizeFixed reads exactly SizeInBits bits as the string box.
	StringSizeFixed StringSizeType = iota
	// StringSizeTerminationChar reads until TerminationChar is found, or
	// until the end of the declared box (if any).
	StringSizeTerminationChar
	// StringSizeLeadingSize reads an unsigned integer of
	// SizeInBitsOfSizeTag bits giving the string's length in bytes.
	StringSizeLeadingSize
	// StringSizeCustom defers to a caller-supplied transform; not
	// implemented by the stock codec, surfaced as an error if encountered.
	StringSizeCustom
)

// StringDataEncoding describes how a string value is packed into bits.
type StringDataEncoding struct {
	SizeType             StringSizeType
	SizeInBits           int // box size for Fixed, max size for others when present
	SizeInBitsOfSizeTag  int
	Encoding             string // e.g. "US-ASCII", "UTF-8"
	TerminationChar      byte
	BoxSizeInBitsValid   bool // true if SizeInBits constrains Fixed/TerminationChar/LeadingSize box
}

// BinaryDataEncoding describes how a binary value's box is determined. A
// zero SizeInBits with SizeInBitsOfSizeTag > 0 means the box is a leading
// unsigned size tag of that many bits; otherwise SizeInBits gives a fixed
// box directly.
type BinaryDataEncoding struct {
	SizeInBits          int
	SizeInBitsOfSizeTag int
}

// BooleanDataEncoding is unparameterized: a boolean occupies a single bit
// under a one's/zero's interpretation chosen by the calibrator.
type BooleanDataEncoding struct{}

// EncodingKind discriminates the variant held by a DataEncoding.
type EncodingKind byte

const (
	EncodingNone EncodingKind = iota
	EncodingBinary
	EncodingBoolean
	EncodingFloat
	EncodingInteger
	EncodingString
)

// DataEncoding is the tagged union of wire encodings a DataType may
// declare. EncodingNone is only valid for Aggregate and Array type data,
// which have no encoding of their own and extract member-by-member.
type DataEncoding struct {
	Kind    EncodingKind
	Binary  BinaryDataEncoding
	Boolean BooleanDataEncoding
	Float   FloatDataEncoding
	Integer IntegerDataEncoding
	String  StringDataEncoding
}

// ValueEnumeration is one label of an enumerated data type. If Value !=
// MaxValue the label covers the inclusive range [Value, MaxValue].
type ValueEnumeration struct {
	Value       int64
	MaxValue    int64
	Label       string
	Description string
}

// Calibrator is the tagged union of calibration strategies a DataType may
// declare. A present calibrator's existence is signalled to callers that
// want one (e.g. the engine trying to calibrate), but the computation it
// describes is not evaluated by this codebase.
type Calibrator struct {
	Present bool
	Kind    string // e.g. "PolynomialCalibrator", "SplineCalibrator"; informational only
}

// TypeDataKind discriminates the variant held by a TypeData.
type TypeDataKind byte

const (
	TypeDataInteger TypeDataKind = iota
	TypeDataFloat
	TypeDataString
	TypeDataBinary
	TypeDataBoolean
	TypeDataEnumerated
	TypeDataAggregate
	TypeDataArray
	TypeDataAbsoluteTime
)

// IntegerDataType is the semantic (post-encoding) shape of an integer
// parameter type: its declared width and signedness.
type IntegerDataType struct {
	SizeInBits int
	Signed     bool
}

// FloatDataType is the semantic shape of a float parameter type.
type FloatDataType struct {
	SizeInBits int
}

// StringDataType is the semantic shape of a string parameter type. It
// carries no fields of its own; all string behavior lives in the encoding.
type StringDataType struct{}

// BinaryDataType is the semantic shape of a binary parameter type.
type BinaryDataType struct {
	SizeInBits int
}

// BooleanDataType names the text a boolean parameter type renders as
// when calibrated to engineering value.
type BooleanDataType struct {
	OneStringValue  string
	ZeroStringValue string
}

// EnumeratedDataType is the semantic shape of an enumerated parameter
// type: its ordered label ranges.
type EnumeratedDataType struct {
	Enumeration []ValueEnumeration
}

// Member is one field of an AggregateDataType.
type Member struct {
	Ndescr NameDescription
	Dtype  DataTypeIdx
}

func (m Member) NameDescr() NameDescription { return m.Ndescr }

// AggregateDataType is the semantic shape of an aggregate (struct-like)
// parameter type: an ordered list of named members, each with its own
// data type.
type AggregateDataType struct {
	Members []Member
}

// IntegerValueKind discriminates an ArrayDataType dimension between a
// literal size and one computed from another parameter's current value.
type IntegerValueKind byte

const (
	IntegerValueFixed IntegerValueKind = iota
	IntegerValueDynamic
)

// IntegerValue is an array dimension: either a fixed literal or a
// reference to a parameter supplying the dimension dynamically.
type IntegerValue struct {
	Kind         IntegerValueKind
	FixedValue   int64
	DynamicParam ParameterIdx
}

// ArrayDataType is the semantic shape of an array parameter type: an
// element type plus one IntegerValue per dimension.
type ArrayDataType struct {
	Dtype DataTypeIdx
	Dim   []IntegerValue
}

// AbsoluteTimeDataType is the semantic shape of a time parameter type.
// Epoch/offset/scale handling is left to the calibrator; decoding treats
// the raw encoding (typically Integer or Float) as the value.
type AbsoluteTimeDataType struct {
	ReferenceTime string
}

// TypeData is the tagged union of a DataType's semantic shape, on top of
// whatever wire DataEncoding it declares.
type TypeData struct {
	Kind         TypeDataKind
	Integer      IntegerDataType
	Float        FloatDataType
	String       StringDataType
	Binary       BinaryDataType
	Boolean      BooleanDataType
	Enumerated   EnumeratedDataType
	Aggregate    AggregateDataType
	Array        ArrayDataType
	AbsoluteTime AbsoluteTimeDataType
}

// DataType is a named parameter type: a wire encoding, a semantic shape,
// a unit set, and an optional calibrator.
type DataType struct {
	Ndescr     NameDescription
	Encoding   DataEncoding
	TypeData   TypeData
	Units      []UnitType
	Calibrator Calibrator
}

func (d DataType) NameDescr() NameDescription { return d.Ndescr }

// Parameter is a named, typed telemetry point.
type Parameter struct {
	Ndescr     NameDescription
	Ptype      DataTypeIdx
	DataSource DataSource
}

func (p Parameter) NameDescr() NameDescription { return p.Ndescr }
