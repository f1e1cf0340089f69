package xtceload

import (
	"github.com/kosmodb/xtce/container"
	"github.com/kosmodb/xtce/criteria"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
)

// evaluatorSet is a map-backed container.EvaluatorSet: every
// mdb.MatchCriteria built by the loader, compiled once up front.
type evaluatorSet map[mdb.MatchCriteriaIdx]criteria.Evaluator

func (s evaluatorSet) Evaluator(idx mdb.MatchCriteriaIdx) criteria.Evaluator {
	return s[idx]
}

// CriteriaData holds the raw literal strings and resolved member paths a
// loader tracked while building match criteria. mdb.Comparison carries
// no typed literal of its own (the typed value cannot be produced until
// the referenced parameter's data type is known), so this side
// information is what lets evaluators be (re)compiled against an
// mdb.MissionDatabase after the fact — in particular by Rebuild, for a
// database that was reloaded from an mdbcache blob rather than parsed
// fresh from XTCE XML.
type CriteriaData struct {
	Literals        map[mdb.MatchCriteriaIdx]string
	MemberPaths     map[mdb.MatchCriteriaIdx][]name.Idx
	ListLiterals    map[mdb.MatchCriteriaIdx][]string
	ListMemberPaths map[mdb.MatchCriteriaIdx][][]name.Idx
}

func (l *loader) criteriaData() CriteriaData {
	return CriteriaData{
		Literals:        l.literals,
		MemberPaths:     l.memberPaths,
		ListLiterals:    l.listLiterals,
		ListMemberPaths: l.listMemberPaths,
	}
}

// compileEvaluators compiles every match criterion the loader built into
// an Evaluator, using the loader's own tracked literal strings and
// member paths.
func (l *loader) compileEvaluators() (evaluatorSet, error) {
	return compileEvaluatorSet(l.m, l.criteriaData())
}

// compileEvaluatorSet compiles every match criterion present in m into
// an Evaluator, given the literal/member-path side information recorded
// for it. parseLiteral only needs m itself (to resolve a parameter's
// data type), so a bare loader wrapping m stands in for one that
// actually walked XTCE XML.
func compileEvaluatorSet(m *mdb.MissionDatabase, cd CriteriaData) (evaluatorSet, error) {
	l := &loader{m: m}

	set := make(evaluatorSet, len(m.MatchCriteria))

	for i := range m.MatchCriteria {
		idx := mdb.NewIndex(i)
		mc := m.MatchCriteriaByIdx(idx)

		var ev criteria.Evaluator
		var err error

		if mc.Kind == mdb.MatchComparisonList {
			ev, err = criteria.CompileComparisonList(mc.ComparisonList, cd.ListLiterals[idx], cd.ListMemberPaths[idx], l.parseLiteral)
		} else {
			ev, err = criteria.Compile(m, idx, cd.Literals, l.parseLiteral, cd.MemberPaths)
		}
		if err != nil {
			return nil, err
		}
		set[idx] = ev
	}

	return set, nil
}

// childIndex is a map-backed container.ChildIndex, grouping every
// container by its BaseContainer.
type childIndex map[mdb.ContainerIdx][]mdb.ContainerIdx

func (c childIndex) Children(idx mdb.ContainerIdx) []mdb.ContainerIdx {
	return c[idx]
}

func (l *loader) buildChildIndex() childIndex {
	return buildChildIndexFor(l.m)
}

func buildChildIndexFor(m *mdb.MissionDatabase) childIndex {
	idx := make(childIndex)
	for i := range m.Containers {
		c := &m.Containers[i]
		if !c.BaseContainer.Valid() {
			continue
		}
		idx[c.BaseContainer] = append(idx[c.BaseContainer], mdb.NewIndex(i))
	}
	return idx
}

var _ container.EvaluatorSet = evaluatorSet(nil)
var _ container.ChildIndex = childIndex(nil)
