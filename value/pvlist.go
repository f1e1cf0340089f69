package value

import (
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
)

// ParameterValue pairs a decoded parameter with both its raw (extracted)
// and engineering (calibrated) representations.
type ParameterValue struct {
	Pidx     mdb.ParameterIdx
	RawValue Value
	EngValue Value
}

// ContainerPositionDetailsKind discriminates the variant held by a
// ContainerPositionDetails.
type ContainerPositionDetailsKind byte

const (
	PositionDetailsNone ContainerPositionDetailsKind = iota
	PositionDetailsAggregate
)

// ContainerPositionDetails carries the per-member breakdown of an
// aggregate extraction, when applicable.
type ContainerPositionDetails struct {
	Kind    ContainerPositionDetailsKind
	Members map[name.Idx]ContainerPosition
}

// ContainerPosition records where in a packet a value was extracted
// from, independent of the value itself: useful for diagnostics and for
// tools that need to locate a field's bits without re-decoding it.
type ContainerPosition struct {
	// StartOffset is the byte offset, from the start of the top-level
	// container, at which the owning container begins. Nonzero only
	// when containers are composed (one embedded inside another),
	// as opposed to inherited.
	StartOffset int
	// BitOffset is the bit offset relative to StartOffset.
	BitOffset int
	BitSize   int
	Details   ContainerPositionDetails
}

// entry is one slot of a ParameterValueList's append-only log.
type entry struct {
	prev int // index of the previous entry for the same parameter, or -1
	pv   ParameterValue
}

// ParameterValueList accumulates the parameter values produced while
// processing one packet, in insertion order, while also supporting O(1)
// lookup of a parameter's most recently inserted value — needed because
// a later entry's match criteria or dynamic array length can reference a
// parameter decoded earlier in the same packet.
type ParameterValueList struct {
	entries  []entry
	lastIdx  map[mdb.ParameterIdx]int
}

// NewParameterValueList creates an empty list.
func NewParameterValueList() *ParameterValueList {
	return &ParameterValueList{
		entries: make([]entry, 0, 16),
		lastIdx: make(map[mdb.ParameterIdx]int, 16),
	}
}

// Push appends pv, recording it as the latest value for its parameter.
func (l *ParameterValueList) Push(pv ParameterValue) {
	idx := len(l.entries)
	prev, ok := l.lastIdx[pv.Pidx]
	if !ok {
		prev = -1
	}
	l.lastIdx[pv.Pidx] = idx
	l.entries = append(l.entries, entry{prev: prev, pv: pv})
}

// LastInserted returns the most recently pushed value for pidx, if any.
func (l *ParameterValueList) LastInserted(pidx mdb.ParameterIdx) (ParameterValue, bool) {
	idx, ok := l.lastIdx[pidx]
	if !ok {
		return ParameterValue{}, false
	}
	return l.entries[idx].pv, true
}

// Len returns the number of values accumulated so far.
func (l *ParameterValueList) Len() int {
	return len(l.entries)
}

// All returns the accumulated values in insertion order, as a newly
// allocated slice that does not alias the list's internal storage.
func (l *ParameterValueList) All() []ParameterValue {
	out := make([]ParameterValue, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.pv
	}
	return out
}
