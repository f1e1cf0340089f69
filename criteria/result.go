// Package criteria compiles XTCE match criteria (comparisons, comparison
// lists, and AND/OR boolean expressions) into evaluators that test
// whether a parameter's currently decoded value satisfies a condition.
//
// Evaluation is tri-state rather than boolean: a referenced parameter
// that has not been decoded yet in the current packet evaluates to
// MatchUndef rather than failing outright, since container inheritance
// frequently gates on a parameter that lives further down the same
// container's entry list than the inheritance check itself.
package criteria

import (
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/value"
)

// MatchResult is the outcome of evaluating a match criterion against a
// decoding context.
type MatchResult byte

const (
	MatchOK MatchResult = iota
	MatchNOK
	MatchUndef
	MatchError
)

func (r MatchResult) String() string {
	switch r {
	case MatchOK:
		return "OK"
	case MatchNOK:
		return "NOK"
	case MatchUndef:
		return "UNDEF"
	case MatchError:
		return "ERROR"
	default:
		return "INVALID"
	}
}

// Context is whatever an Evaluator needs to look up a parameter's
// currently decoded value. Implemented by the container package's
// processing context.
type Context interface {
	// CurrentValue returns the value most recently decoded for pidx in
	// this packet, using the calibrated engineering value if
	// useCalibrated is true and the raw value otherwise. ok is false if
	// pidx has no value yet.
	CurrentValue(pidx mdb.ParameterIdx, useCalibrated bool) (v value.Value, ok bool)
}

// Evaluator is a compiled match criterion: a function from a decoding
// context to a tri-state result.
type Evaluator interface {
	Evaluate(ctx Context) MatchResult
}

// And combines operands with the AND tri-state rule: any NOK dominates,
// then any ERROR, then any UNDEF; all OK otherwise.
type And struct {
	Operands []Evaluator
}

func (a *And) Evaluate(ctx Context) MatchResult {
	sawUndef := false
	sawError := false

	for _, op := range a.Operands {
		switch op.Evaluate(ctx) {
		case MatchNOK:
			return MatchNOK
		case MatchError:
			sawError = true
		case MatchUndef:
			sawUndef = true
		}
	}

	if sawError {
		return MatchError
	}
	if sawUndef {
		return MatchUndef
	}
	return MatchOK
}

// Or combines operands with the OR tri-state rule: any OK wins
// immediately; if every operand is NOK, the result is NOK; otherwise
// ERROR dominates over UNDEF.
type Or struct {
	Operands []Evaluator
}

func (o *Or) Evaluate(ctx Context) MatchResult {
	sawUndef := false
	sawError := false
	allNOK := true

	for _, op := range o.Operands {
		switch op.Evaluate(ctx) {
		case MatchOK:
			return MatchOK
		case MatchError:
			sawError = true
			allNOK = false
		case MatchUndef:
			sawUndef = true
			allNOK = false
		case MatchNOK:
			// allNOK stays true
		}
	}

	if allNOK {
		return MatchNOK
	}
	if sawError {
		return MatchError
	}
	_ = sawUndef
	return MatchUndef
}
