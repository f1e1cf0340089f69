// Package mdb implements the in-memory mission database: an arena of
// parameter types, parameters, containers, and match criteria, addressed
// by dense integer indices rather than pointers. This avoids the cyclic
// object graphs an XTCE document naturally describes (a container
// referencing its base container, a parameter referencing its type,
// a comparison referencing another parameter) while keeping lookups O(1).
package mdb

import "github.com/kosmodb/xtce/name"

// Index is a 1-based dense handle into one of the MissionDatabase's
// arenas. The zero value denotes "absent" so that Index can be embedded
// directly in a struct field without an extra bool or pointer indirection.
type Index uint32

// InvalidIndex is the zero value of Index, denoting "no reference".
const InvalidIndex Index = 0

// NewIndex converts a 0-based arena position into an Index.
func NewIndex(pos int) Index {
	return Index(pos + 1)
}

// Pos returns the 0-based arena position this Index denotes. Must not be
// called on InvalidIndex.
func (i Index) Pos() int {
	return int(i) - 1
}

// Valid reports whether i denotes a real arena entry.
func (i Index) Valid() bool {
	return i != InvalidIndex
}

// SpaceSystemIdx indexes MissionDatabase.spaceSystems.
type SpaceSystemIdx = Index

// DataTypeIdx indexes MissionDatabase.ParameterTypes.
type DataTypeIdx = Index

// ParameterIdx indexes MissionDatabase.Parameters.
type ParameterIdx = Index

// ContainerIdx indexes MissionDatabase.Containers.
type ContainerIdx = Index

// MatchCriteriaIdx indexes MissionDatabase.MatchCriteria.
type MatchCriteriaIdx = Index

// NameDescription is the common head shared by every named mission
// database entity: its interned name plus optional free-text description.
type NameDescription struct {
	Name             name.Idx
	ShortDescription string
	LongDescription  string
}

// NamedItem is implemented by every entity carrying a NameDescription.
type NamedItem interface {
	NameDescr() NameDescription
}
