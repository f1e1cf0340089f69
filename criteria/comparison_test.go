package criteria

import (
	"testing"

	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/value"
	"github.com/stretchr/testify/assert"
)

type fakeContext struct {
	values map[mdb.ParameterIdx]value.Value
}

func (f fakeContext) CurrentValue(pidx mdb.ParameterIdx, _ bool) (value.Value, bool) {
	v, ok := f.values[pidx]
	return v, ok
}

func TestComparisonEqualitySameKind(t *testing.T) {
	p1 := mdb.NewIndex(0)
	ctx := fakeContext{values: map[mdb.ParameterIdx]value.Value{p1: value.Int(42)}}

	c := &Comparison{Pidx: p1, Operator: mdb.OpEquality, Literal: value.Int(42)}
	assert.Equal(t, MatchOK, c.Evaluate(ctx))

	c2 := &Comparison{Pidx: p1, Operator: mdb.OpEquality, Literal: value.Int(7)}
	assert.Equal(t, MatchNOK, c2.Evaluate(ctx))
}

func TestComparisonUndefWhenParameterMissing(t *testing.T) {
	p1 := mdb.NewIndex(0)
	ctx := fakeContext{values: map[mdb.ParameterIdx]value.Value{}}

	c := &Comparison{Pidx: p1, Operator: mdb.OpEquality, Literal: value.Int(1)}
	assert.Equal(t, MatchUndef, c.Evaluate(ctx))
}

func TestComparisonCrossTypeSignedUnsigned(t *testing.T) {
	p1 := mdb.NewIndex(0)
	ctx := fakeContext{values: map[mdb.ParameterIdx]value.Value{p1: value.Uint(10)}}

	c := &Comparison{Pidx: p1, Operator: mdb.OpEquality, Literal: value.Int(10)}
	assert.Equal(t, MatchOK, c.Evaluate(ctx))

	c2 := &Comparison{Pidx: p1, Operator: mdb.OpLargerThan, Literal: value.Int(5)}
	assert.Equal(t, MatchOK, c2.Evaluate(ctx))
}

func TestComparisonCrossTypeIntDouble(t *testing.T) {
	p1 := mdb.NewIndex(0)
	ctx := fakeContext{values: map[mdb.ParameterIdx]value.Value{p1: value.Int(3)}}

	c := &Comparison{Pidx: p1, Operator: mdb.OpSmallerThan, Literal: value.Double(3.5)}
	assert.Equal(t, MatchOK, c.Evaluate(ctx))
}

func TestComparisonStringEnumerated(t *testing.T) {
	p1 := mdb.NewIndex(0)
	ctx := fakeContext{values: map[mdb.ParameterIdx]value.Value{p1: value.Enumerated(1, "ON")}}

	c := &Comparison{Pidx: p1, Operator: mdb.OpEquality, Literal: value.String("ON")}
	assert.Equal(t, MatchOK, c.Evaluate(ctx))

	c2 := &Comparison{Pidx: p1, Operator: mdb.OpEquality, Literal: value.String("OFF")}
	assert.Equal(t, MatchNOK, c2.Evaluate(ctx))
}

func TestComparisonIncomparableKindsIsError(t *testing.T) {
	p1 := mdb.NewIndex(0)
	ctx := fakeContext{values: map[mdb.ParameterIdx]value.Value{p1: value.Bool(true)}}

	c := &Comparison{Pidx: p1, Operator: mdb.OpEquality, Literal: value.Binary([]byte{1})}
	assert.Equal(t, MatchError, c.Evaluate(ctx))
}

type fixedEvaluator struct{ r MatchResult }

func (f fixedEvaluator) Evaluate(Context) MatchResult { return f.r }

func TestAndTriState(t *testing.T) {
	cases := []struct {
		name string
		in   []MatchResult
		want MatchResult
	}{
		{"all ok", []MatchResult{MatchOK, MatchOK}, MatchOK},
		{"one nok dominates", []MatchResult{MatchOK, MatchNOK, MatchError}, MatchNOK},
		{"error beats undef", []MatchResult{MatchOK, MatchUndef, MatchError}, MatchError},
		{"undef alone", []MatchResult{MatchOK, MatchUndef}, MatchUndef},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ops := make([]Evaluator, len(c.in))
			for i, r := range c.in {
				ops[i] = fixedEvaluator{r}
			}
			a := &And{Operands: ops}
			assert.Equal(t, c.want, a.Evaluate(nil))
		})
	}
}

func TestOrTriState(t *testing.T) {
	cases := []struct {
		name string
		in   []MatchResult
		want MatchResult
	}{
		{"one ok wins", []MatchResult{MatchNOK, MatchOK, MatchError}, MatchOK},
		{"all nok", []MatchResult{MatchNOK, MatchNOK}, MatchNOK},
		{"error dominates undef", []MatchResult{MatchNOK, MatchUndef, MatchError}, MatchError},
		{"undef alone", []MatchResult{MatchNOK, MatchUndef}, MatchUndef},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ops := make([]Evaluator, len(c.in))
			for i, r := range c.in {
				ops[i] = fixedEvaluator{r}
			}
			o := &Or{Operands: ops}
			assert.Equal(t, c.want, o.Evaluate(nil))
		})
	}
}
