package mdb

import (
	"fmt"

	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/name"
)

// SpaceSystem is a named node in the mission database's tree, owning the
// parameters, parameter types, and containers declared directly under it
// (not those of its descendants).
type SpaceSystem struct {
	id   SpaceSystemIdx
	Fqn  name.QualifiedName
	Name NameDescription

	Parameters     map[name.Idx]ParameterIdx
	ParameterTypes map[name.Idx]DataTypeIdx
	Containers     map[name.Idx]ContainerIdx
}

// ID returns this space system's own index.
func (ss *SpaceSystem) ID() SpaceSystemIdx { return ss.id }

func newSpaceSystem(id SpaceSystemIdx, nameIdx name.Idx, fqn name.QualifiedName) *SpaceSystem {
	return &SpaceSystem{
		id:             id,
		Fqn:            fqn,
		Name:           NameDescription{Name: nameIdx},
		Parameters:     make(map[name.Idx]ParameterIdx),
		ParameterTypes: make(map[name.Idx]DataTypeIdx),
		Containers:     make(map[name.Idx]ContainerIdx),
	}
}

// MissionDatabase is the arena holding every parameter type, parameter,
// container, and match criterion loaded from an XTCE document, plus the
// name interner shared by all of them.
//
// Entities reference each other through Index values into these arenas
// rather than pointers, since the relationships an XTCE document
// describes (a container's base container, a parameter's type, a
// criterion's referenced parameter) are not acyclic by construction and
// Rust-style ownership trees cannot express them directly; Go pointers
// could, but would make the structure much harder to serialize and to
// reason about during the loader's two-pass construction.
type MissionDatabase struct {
	nameDB *name.DB

	spaceSystems   []*SpaceSystem
	spaceSystemsQN map[string]SpaceSystemIdx

	ParameterTypes []DataType
	Parameters     []Parameter
	Containers     []SequenceContainer
	MatchCriteria  []MatchCriteria

	frozen bool
}

// New creates a MissionDatabase with a single, empty root space system.
func New() *MissionDatabase {
	m := &MissionDatabase{
		nameDB:         name.NewDB(),
		spaceSystemsQN: make(map[string]SpaceSystemIdx),
	}
	rootName := m.nameDB.GetOrIntern("")
	root := newSpaceSystem(NewIndex(0), rootName, name.Empty())
	m.spaceSystems = append(m.spaceSystems, root)
	m.spaceSystemsQN[name.Empty().Key()] = NewIndex(0)
	return m
}

// NameDB returns the shared name interner.
func (m *MissionDatabase) NameDB() *name.DB { return m.nameDB }

// Freeze marks the database and its name interner read-only. Call once
// loading is complete and before handing the database to concurrent
// decoders.
func (m *MissionDatabase) Freeze() {
	m.frozen = true
	m.nameDB.Freeze()
}

// NewSpaceSystem registers a new space system under fqn, interning name
// as its leaf component. Returns ErrSpaceSystemExists if fqn is already
// registered.
func (m *MissionDatabase) NewSpaceSystem(fqn name.QualifiedName) (SpaceSystemIdx, error) {
	if _, ok := m.spaceSystemsQN[fqn.Key()]; ok {
		return InvalidIndex, fmt.Errorf("%w: %s", errs.ErrSpaceSystemExists, fqn.String(m.nameDB))
	}
	leaf, ok := fqn.Name()
	if !ok {
		return InvalidIndex, fmt.Errorf("%w: space system qualified name must not be empty", errs.ErrInvalidMdb)
	}

	idx := NewIndex(len(m.spaceSystems))
	ss := newSpaceSystem(idx, leaf, fqn.Clone())
	m.spaceSystems = append(m.spaceSystems, ss)
	m.spaceSystemsQN[fqn.Key()] = idx

	return idx, nil
}

// SpaceSystem returns the space system registered under fqn, if any.
func (m *MissionDatabase) SpaceSystem(fqn name.QualifiedName) (*SpaceSystem, bool) {
	idx, ok := m.spaceSystemsQN[fqn.Key()]
	if !ok {
		return nil, false
	}
	return m.spaceSystems[idx.Pos()], true
}

// SpaceSystemByIdx returns the space system at idx.
func (m *MissionDatabase) SpaceSystemByIdx(idx SpaceSystemIdx) *SpaceSystem {
	return m.spaceSystems[idx.Pos()]
}

// AddParameterType appends ptype to the arena and registers it under
// space system ss. Panics if ss does not exist, mirroring the loader
// invariant that a space system is always created before entities are
// added to it.
func (m *MissionDatabase) AddParameterType(ss name.QualifiedName, ptype DataType) DataTypeIdx {
	idx := NewIndex(len(m.ParameterTypes))
	m.ParameterTypes = append(m.ParameterTypes, ptype)

	sys := m.mustSpaceSystem(ss)
	sys.ParameterTypes[ptype.Ndescr.Name] = idx
	return idx
}

// AddParameter appends param to the arena and registers it under space
// system ss.
func (m *MissionDatabase) AddParameter(ss name.QualifiedName, param Parameter) ParameterIdx {
	idx := NewIndex(len(m.Parameters))
	m.Parameters = append(m.Parameters, param)

	sys := m.mustSpaceSystem(ss)
	sys.Parameters[param.Ndescr.Name] = idx
	return idx
}

// AddContainer appends c to the arena and registers it under space
// system ss.
func (m *MissionDatabase) AddContainer(ss name.QualifiedName, c SequenceContainer) ContainerIdx {
	idx := NewIndex(len(m.Containers))
	m.Containers = append(m.Containers, c)

	sys := m.mustSpaceSystem(ss)
	sys.Containers[c.Ndescr.Name] = idx
	return idx
}

// AddMatchCriteria appends c to the arena, returning its index. Match
// criteria are not registered by name: they are always reached through
// another entity (a container's include condition, a base container's
// restriction).
func (m *MissionDatabase) AddMatchCriteria(c MatchCriteria) MatchCriteriaIdx {
	idx := NewIndex(len(m.MatchCriteria))
	m.MatchCriteria = append(m.MatchCriteria, c)
	return idx
}

func (m *MissionDatabase) mustSpaceSystem(ss name.QualifiedName) *SpaceSystem {
	idx, ok := m.spaceSystemsQN[ss.Key()]
	if !ok {
		panic("mdb: add to unknown space system " + ss.String(m.nameDB))
	}
	return m.spaceSystems[idx.Pos()]
}

// DataTypeByIdx returns the parameter type at idx.
func (m *MissionDatabase) DataTypeByIdx(idx DataTypeIdx) *DataType {
	return &m.ParameterTypes[idx.Pos()]
}

// ParameterByIdx returns the parameter at idx.
func (m *MissionDatabase) ParameterByIdx(idx ParameterIdx) *Parameter {
	return &m.Parameters[idx.Pos()]
}

// ContainerByIdx returns the container at idx.
func (m *MissionDatabase) ContainerByIdx(idx ContainerIdx) *SequenceContainer {
	return &m.Containers[idx.Pos()]
}

// MatchCriteriaByIdx returns the match criterion at idx.
func (m *MissionDatabase) MatchCriteriaByIdx(idx MatchCriteriaIdx) *MatchCriteria {
	return &m.MatchCriteria[idx.Pos()]
}

// NameToString resolves idx through the shared interner, returning
// "<none>" if idx is not known.
func (m *MissionDatabase) NameToString(idx name.Idx) string {
	if s, ok := m.nameDB.TryResolve(idx); ok {
		return s
	}
	return "<none>"
}

// QualifiedNameToString renders qn through the shared interner.
func (m *MissionDatabase) QualifiedNameToString(qn name.QualifiedName) string {
	return qn.String(m.nameDB)
}

// GetOrIntern interns s in the shared name database.
func (m *MissionDatabase) GetOrIntern(s string) name.Idx {
	return m.nameDB.GetOrIntern(s)
}

// ParameterTypeIdx looks up a parameter type by name within space
// system ss.
func (m *MissionDatabase) ParameterTypeIdx(ss name.QualifiedName, n name.Idx) (DataTypeIdx, bool) {
	sys, ok := m.SpaceSystem(ss)
	if !ok {
		return InvalidIndex, false
	}
	idx, ok := sys.ParameterTypes[n]
	return idx, ok
}

// ParameterIdxByName looks up a parameter by name within space system ss.
func (m *MissionDatabase) ParameterIdxByName(ss name.QualifiedName, n name.Idx) (ParameterIdx, bool) {
	sys, ok := m.SpaceSystem(ss)
	if !ok {
		return InvalidIndex, false
	}
	idx, ok := sys.Parameters[n]
	return idx, ok
}

// ContainerIdxByName looks up a container by name within space system ss.
func (m *MissionDatabase) ContainerIdxByName(ss name.QualifiedName, n name.Idx) (ContainerIdx, bool) {
	sys, ok := m.SpaceSystem(ss)
	if !ok {
		return InvalidIndex, false
	}
	idx, ok := sys.Containers[n]
	return idx, ok
}

// SearchContainer resolves a fully qualified container reference such as
// "/RefXtce/packet1" into its index.
func (m *MissionDatabase) SearchContainer(qnstr string) (ContainerIdx, bool) {
	ss, n, ok := name.ParseSpaceSystemAndName(m.nameDB, qnstr)
	if !ok {
		return InvalidIndex, false
	}
	return m.ContainerIdxByName(ss, n)
}

// SearchParameter resolves a fully qualified parameter reference such as
// "/RefXtce/param1" into its index.
func (m *MissionDatabase) SearchParameter(qnstr string) (ParameterIdx, bool) {
	ss, n, ok := name.ParseSpaceSystemAndName(m.nameDB, qnstr)
	if !ok {
		return InvalidIndex, false
	}
	return m.ParameterIdxByName(ss, n)
}

// SpaceSystemSnapshot is the gob-serializable shape of a SpaceSystem,
// used by Snapshot/FromSnapshot to round-trip a MissionDatabase through
// mdbcache without exposing SpaceSystem's unexported id field directly.
type SpaceSystemSnapshot struct {
	Fqn            name.QualifiedName
	Name           NameDescription
	Parameters     map[name.Idx]ParameterIdx
	ParameterTypes map[name.Idx]DataTypeIdx
	Containers     map[name.Idx]ContainerIdx
}

// Snapshot is the gob-serializable shape of an entire MissionDatabase,
// produced by Snapshot and consumed by FromSnapshot.
type Snapshot struct {
	Names          []string
	SpaceSystems   []SpaceSystemSnapshot
	ParameterTypes []DataType
	Parameters     []Parameter
	Containers     []SequenceContainer
	MatchCriteria  []MatchCriteria
}

// Snapshot captures m's entire state as a plain, gob-encodable value.
func (m *MissionDatabase) Snapshot() Snapshot {
	sysSnaps := make([]SpaceSystemSnapshot, len(m.spaceSystems))
	for i, ss := range m.spaceSystems {
		sysSnaps[i] = SpaceSystemSnapshot{
			Fqn:            ss.Fqn,
			Name:           ss.Name,
			Parameters:     ss.Parameters,
			ParameterTypes: ss.ParameterTypes,
			Containers:     ss.Containers,
		}
	}

	return Snapshot{
		Names:          m.nameDB.Strings(),
		SpaceSystems:   sysSnaps,
		ParameterTypes: m.ParameterTypes,
		Parameters:     m.Parameters,
		Containers:     m.Containers,
		MatchCriteria:  m.MatchCriteria,
	}
}

// FromSnapshot rebuilds a MissionDatabase from a Snapshot produced by
// Snapshot. The rebuilt database is not frozen; callers that want the
// lock-free read path should call Freeze themselves.
func FromSnapshot(s Snapshot) *MissionDatabase {
	m := &MissionDatabase{
		nameDB:         name.NewDBFromStrings(s.Names),
		spaceSystemsQN: make(map[string]SpaceSystemIdx, len(s.SpaceSystems)),
		ParameterTypes: s.ParameterTypes,
		Parameters:     s.Parameters,
		Containers:     s.Containers,
		MatchCriteria:  s.MatchCriteria,
	}

	m.spaceSystems = make([]*SpaceSystem, len(s.SpaceSystems))
	for i, ss := range s.SpaceSystems {
		sys := &SpaceSystem{
			id:             NewIndex(i),
			Fqn:            ss.Fqn,
			Name:           ss.Name,
			Parameters:     ss.Parameters,
			ParameterTypes: ss.ParameterTypes,
			Containers:     ss.Containers,
		}
		if sys.Parameters == nil {
			sys.Parameters = make(map[name.Idx]ParameterIdx)
		}
		if sys.ParameterTypes == nil {
			sys.ParameterTypes = make(map[name.Idx]DataTypeIdx)
		}
		if sys.Containers == nil {
			sys.Containers = make(map[name.Idx]ContainerIdx)
		}
		m.spaceSystems[i] = sys
		m.spaceSystemsQN[ss.Fqn.Key()] = NewIndex(i)
	}

	return m
}
