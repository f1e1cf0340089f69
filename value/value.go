// Package value implements the tagged-union runtime value type produced
// by decoding, and the list that tracks a container processing run's
// accumulated parameter values.
package value

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/kosmodb/xtce/name"
)

// Kind discriminates the variant held by a Value.
type Kind byte

const (
	KindInt64 Kind = iota
	KindUint64
	KindDouble
	KindBoolean
	KindString
	KindEnumerated
	KindBinary
	KindAggregate
	KindArray
)

// Value is a runtime value produced by decoding a parameter's raw or
// engineering representation. Only the fields relevant to Kind are
// populated; it stands in for a closed sum type the language does not
// have natively.
//
// Unlike Yamcs, 32 bit integers and floats are not represented
// separately: they widen to Int64/Uint64/Double. Integer extraction and
// calibration narrow the stored magnitude to fit the declared bit width
// (see IntValue/UintValue), so no precision beyond that width survives.
type Value struct {
	Kind Kind

	i    int64
	u    uint64
	f    float64
	b    bool
	str  string
	bin  []byte
	enum EnumeratedValue
	agg  AggregateValue
	arr  ArrayValue
}

// EnumeratedValue is an enumerated parameter's decoded value: the raw
// key plus the label it resolved to.
type EnumeratedValue struct {
	Key   int64
	Label string
}

// AggregateValue maps each member's interned name to its own Value.
type AggregateValue map[name.Idx]Value

// ArrayValue is an ordered list of element values, row-major across all
// declared dimensions.
type ArrayValue []Value

// Int returns an Int64 value.
func Int(x int64) Value { return Value{Kind: KindInt64, i: x} }

// Uint returns a Uint64 value.
func Uint(x uint64) Value { return Value{Kind: KindUint64, u: x} }

// Double returns a Double value.
func Double(x float64) Value { return Value{Kind: KindDouble, f: x} }

// Bool returns a Boolean value.
func Bool(x bool) Value { return Value{Kind: KindBoolean, b: x} }

// String returns a StringValue.
func String(x string) Value { return Value{Kind: KindString, str: x} }

// Enumerated returns an Enumerated value.
func Enumerated(key int64, label string) Value {
	return Value{Kind: KindEnumerated, enum: EnumeratedValue{Key: key, Label: label}}
}

// Binary returns a Binary value. The byte slice is retained, not copied.
func Binary(b []byte) Value { return Value{Kind: KindBinary, bin: b} }

// Aggregate returns an Aggregate value.
func Aggregate(members AggregateValue) Value { return Value{Kind: KindAggregate, agg: members} }

// Array returns an Array value.
func Array(elems ArrayValue) Value { return Value{Kind: KindArray, arr: elems} }

// AsInt64 returns the Int64 payload. Callers must check Kind first.
func (v Value) AsInt64() int64 { return v.i }

// AsUint64 returns the Uint64 payload. Callers must check Kind first.
func (v Value) AsUint64() uint64 { return v.u }

// AsDouble returns the Double payload. Callers must check Kind first.
func (v Value) AsDouble() float64 { return v.f }

// AsBool returns the Boolean payload. Callers must check Kind first.
func (v Value) AsBool() bool { return v.b }

// AsString returns the StringValue payload. Callers must check Kind first.
func (v Value) AsString() string { return v.str }

// AsBinary returns the Binary payload. Callers must check Kind first.
func (v Value) AsBinary() []byte { return v.bin }

// AsEnumerated returns the Enumerated payload. Callers must check Kind first.
func (v Value) AsEnumerated() EnumeratedValue { return v.enum }

// AsAggregate returns the Aggregate payload. Callers must check Kind first.
func (v Value) AsAggregate() AggregateValue { return v.agg }

// AsArray returns the Array payload. Callers must check Kind first.
func (v Value) AsArray() ArrayValue { return v.arr }

// AsFloat64 widens any numeric kind (Int64, Uint64, Double) to a float64,
// reporting false for non-numeric kinds. Used by the criteria evaluator's
// cross-type comparisons.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindInt64:
		return float64(v.i), true
	case KindUint64:
		return float64(v.u), true
	case KindDouble:
		return v.f, true
	default:
		return 0, false
	}
}

// IntValue builds an Int64 value from a raw signed magnitude, saturating
// it to the range representable in numBits (two's complement). numBits
// >= 64 stores x unclamped.
func IntValue(numBits int, x int64) Value {
	if numBits >= 64 {
		return Int(x)
	}
	max := (int64(1) << (numBits - 1)) - 1
	min := -max - 1
	y := x
	if y > max {
		y = max
	}
	if y < min {
		y = min
	}
	return Int(y)
}

// UintValue builds a Uint64 value from a raw unsigned magnitude,
// saturating it to the range representable in numBits. numBits >= 64
// stores x unclamped.
func UintValue(numBits int, x uint64) Value {
	if numBits >= 64 {
		return Uint(x)
	}
	max := (uint64(1) << uint(numBits)) - 1
	y := x
	if y > max {
		y = max
	}
	return Uint(y)
}

// String renders v for display, resolving any interned names through db.
func (v Value) String(db *name.DB) string {
	var b strings.Builder
	writeValue(&b, db, v)
	return b.String()
}

func writeValue(b *strings.Builder, db *name.DB, v Value) {
	switch v.Kind {
	case KindInt64:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindUint64:
		b.WriteString(strconv.FormatUint(v.u, 10))
	case KindDouble:
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindBoolean:
		b.WriteString(strconv.FormatBool(v.b))
	case KindString:
		b.WriteString(v.str)
	case KindEnumerated:
		fmt.Fprintf(b, "{%d=%s}", v.enum.Key, v.enum.Label)
	case KindBinary:
		b.WriteString(hex.EncodeToString(v.bin))
	case KindAggregate:
		writeAggregate(b, db, v.agg)
	case KindArray:
		writeArray(b, db, v.arr)
	}
}

func writeArray(b *strings.Builder, db *name.DB, arr ArrayValue) {
	b.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, db, elem)
	}
	b.WriteByte(']')
}

func writeAggregate(b *strings.Builder, db *name.DB, agg AggregateValue) {
	b.WriteByte('{')
	first := true
	for memberName, memberValue := range agg {
		if first {
			first = false
		} else {
			b.WriteString(", ")
		}
		if s, ok := db.TryResolve(memberName); ok {
			b.WriteString(s)
		} else {
			b.WriteString("[unknown]")
		}
		b.WriteString(": ")
		writeValue(b, db, memberValue)
	}
	b.WriteByte('}')
}
