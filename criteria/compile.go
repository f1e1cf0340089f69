package criteria

import (
	"fmt"

	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
	"github.com/kosmodb/xtce/value"
)

// LiteralParser parses a document literal string into a typed Value
// against the data type a ParameterInstanceRef (possibly navigated
// through a member path) resolves to. Implemented by the loader, which
// has access to the mission database's parameter types; kept as a
// function value here so criteria has no dependency on xtceload.
type LiteralParser func(pidx mdb.ParameterIdx, memberPath []name.Idx, raw string, useCalibrated bool) (value.Value, error)

// Compile builds an Evaluator for the match criterion at idx, resolving
// nested operands recursively. parse supplies literal parsing for leaf
// comparisons; memberPaths supplies each comparison's member path,
// already resolved into interned name components.
func Compile(
	m *mdb.MissionDatabase,
	idx mdb.MatchCriteriaIdx,
	literals map[mdb.MatchCriteriaIdx]string,
	parse LiteralParser,
	memberPaths map[mdb.MatchCriteriaIdx][]name.Idx,
) (Evaluator, error) {
	mc := m.MatchCriteriaByIdx(idx)

	switch mc.Kind {
	case mdb.MatchComparison:
		return compileComparison(mc.Comparison, literals[idx], memberPaths[idx], parse)

	case mdb.MatchComparisonList:
		// The loader calls CompileComparisonList directly for a top-level
		// list, since each member's literal is parsed against its own
		// parameter's type, and never stores a list as an AND/OR operand
		// (it flattens or wraps it in a MatchAnd), so a list reaching
		// Compile is rejected.
		return nil, fmt.Errorf("%w: comparison list must be compiled via CompileComparisonList", errs.ErrInvalidMdb)

	case mdb.MatchAnd:
		ops := make([]Evaluator, 0, len(mc.Operands))
		for _, opIdx := range mc.Operands {
			ev, err := Compile(m, opIdx, literals, parse, memberPaths)
			if err != nil {
				return nil, err
			}
			ops = append(ops, ev)
		}
		return &And{Operands: ops}, nil

	case mdb.MatchOr:
		ops := make([]Evaluator, 0, len(mc.Operands))
		for _, opIdx := range mc.Operands {
			ev, err := Compile(m, opIdx, literals, parse, memberPaths)
			if err != nil {
				return nil, err
			}
			ops = append(ops, ev)
		}
		return &Or{Operands: ops}, nil

	default:
		return nil, fmt.Errorf("%w: unknown match criteria kind %d", errs.ErrInvalidMdb, mc.Kind)
	}
}

func compileComparison(c mdb.Comparison, literal string, memberPath []name.Idx, parse LiteralParser) (Evaluator, error) {
	v, err := parse(c.ParamInstance.Pidx, memberPath, literal, c.ParamInstance.UseCalibratedValue)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		Pidx:               c.ParamInstance.Pidx,
		UseCalibratedValue: c.ParamInstance.UseCalibratedValue,
		MemberPath:         memberPath,
		Operator:           c.ComparisonOperator,
		Literal:            v,
	}, nil
}

// CompileComparisonList builds an And evaluator directly from a
// comparison list's members, each with its own literal string and
// resolved member path. This is the entry point the loader actually
// uses for MatchComparisonList, since each member's literal must be
// parsed independently against its own parameter's type.
func CompileComparisonList(
	comparisons []mdb.Comparison,
	literals []string,
	memberPaths [][]name.Idx,
	parse LiteralParser,
) (Evaluator, error) {
	ops := make([]Evaluator, 0, len(comparisons))
	for i, c := range comparisons {
		var mp []name.Idx
		if i < len(memberPaths) {
			mp = memberPaths[i]
		}
		ev, err := compileComparison(c, literals[i], mp, parse)
		if err != nil {
			return nil, err
		}
		ops = append(ops, ev)
	}
	return &And{Operands: ops}, nil
}
