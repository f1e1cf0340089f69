package criteria

import (
	"math/big"

	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
	"github.com/kosmodb/xtce/value"
)

// Comparison is a compiled single comparison: read a parameter's current
// value, optionally navigate into an aggregate member, and compare it
// against a fixed literal.
//
// MemberPath is resolved to interned names at compile time (unlike
// mdb.ParameterInstanceRef.MemberPath, which holds the member names as
// strings), so evaluation never needs the name interner.
type Comparison struct {
	Pidx               mdb.ParameterIdx
	UseCalibratedValue bool
	MemberPath         []name.Idx
	Operator           mdb.ComparisonOperator
	Literal            value.Value
}

func (c *Comparison) Evaluate(ctx Context) MatchResult {
	raw, ok := ctx.CurrentValue(c.Pidx, c.UseCalibratedValue)
	if !ok {
		return MatchUndef
	}

	v, ok := navigateMemberPath(raw, c.MemberPath)
	if !ok {
		return MatchUndef
	}

	if c.Operator == mdb.OpEquality {
		eq, ok := compareEqual(v, c.Literal)
		if !ok {
			return MatchError
		}
		if eq {
			return MatchOK
		}
		return MatchNOK
	}

	if c.Operator == mdb.OpInequality {
		eq, ok := compareEqual(v, c.Literal)
		if !ok {
			return MatchError
		}
		if !eq {
			return MatchOK
		}
		return MatchNOK
	}

	cmp, ok := compareOrdered(v, c.Literal)
	if !ok {
		return MatchError
	}

	var pass bool
	switch c.Operator {
	case mdb.OpLargerThan:
		pass = cmp > 0
	case mdb.OpLargerOrEqualThan:
		pass = cmp >= 0
	case mdb.OpSmallerThan:
		pass = cmp < 0
	case mdb.OpSmallerOrEqualThan:
		pass = cmp <= 0
	default:
		return MatchError
	}

	if pass {
		return MatchOK
	}
	return MatchNOK
}

// navigateMemberPath walks v through a sequence of aggregate member
// names. An empty path returns v unchanged.
func navigateMemberPath(v value.Value, path []name.Idx) (value.Value, bool) {
	cur := v
	for _, member := range path {
		if cur.Kind != value.KindAggregate {
			return value.Value{}, false
		}
		agg := cur.AsAggregate()
		next, ok := agg[member]
		if !ok {
			return value.Value{}, false
		}
		cur = next
	}
	return cur, true
}

// compareEqual implements the §4.7 cross-type equality rules.
func compareEqual(a, b value.Value) (equal bool, comparable bool) {
	if a.Kind == b.Kind {
		switch a.Kind {
		case value.KindInt64:
			return a.AsInt64() == b.AsInt64(), true
		case value.KindUint64:
			return a.AsUint64() == b.AsUint64(), true
		case value.KindDouble:
			return a.AsDouble() == b.AsDouble(), true
		case value.KindBoolean:
			return a.AsBool() == b.AsBool(), true
		case value.KindString:
			return a.AsString() == b.AsString(), true
		default:
			return false, false
		}
	}

	if isSignedOrUnsigned(a) && isSignedOrUnsigned(b) {
		ai := toBigInt(a)
		bi := toBigInt(b)
		return ai.Cmp(bi) == 0, true
	}

	if isNumeric(a) && isNumeric(b) {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return af == bf, true
	}

	if a.Kind == value.KindString && b.Kind == value.KindEnumerated {
		return a.AsString() == b.AsEnumerated().Label, true
	}
	if a.Kind == value.KindEnumerated && b.Kind == value.KindString {
		return a.AsEnumerated().Label == b.AsString(), true
	}

	return false, false
}

// compareOrdered implements the §4.7 cross-type ordering rules, via the
// same widening as compareEqual. Returns a negative/zero/positive int
// like a standard Compare function.
func compareOrdered(a, b value.Value) (cmp int, comparable bool) {
	if a.Kind == b.Kind {
		switch a.Kind {
		case value.KindInt64:
			return cmpInt64(a.AsInt64(), b.AsInt64()), true
		case value.KindUint64:
			return cmpUint64(a.AsUint64(), b.AsUint64()), true
		case value.KindDouble:
			return cmpFloat64(a.AsDouble(), b.AsDouble()), true
		case value.KindString:
			return cmpString(a.AsString(), b.AsString()), true
		default:
			return 0, false
		}
	}

	if isSignedOrUnsigned(a) && isSignedOrUnsigned(b) {
		return toBigInt(a).Cmp(toBigInt(b)), true
	}

	if isNumeric(a) && isNumeric(b) {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return cmpFloat64(af, bf), true
	}

	return 0, false
}

func isSignedOrUnsigned(v value.Value) bool {
	return v.Kind == value.KindInt64 || v.Kind == value.KindUint64
}

func isNumeric(v value.Value) bool {
	return v.Kind == value.KindInt64 || v.Kind == value.KindUint64 || v.Kind == value.KindDouble
}

// toBigInt widens a signed or unsigned 64-bit value to an arbitrary
// precision integer so that, e.g., comparing math.MaxInt64+1 (as Uint64)
// against a negative Int64 is exact, matching the §4.7 rule of widening
// signed/unsigned cross-comparisons beyond 64 bits.
func toBigInt(v value.Value) *big.Int {
	if v.Kind == value.KindUint64 {
		return new(big.Int).SetUint64(v.AsUint64())
	}
	return big.NewInt(v.AsInt64())
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
