package xtceload

import (
	"strings"

	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
)

// resolveRef resolves an XTCE reference string against currentSS: an
// absolute reference (leading "/") resolves directly against its own
// space system; a relative reference is looked up in currentSS and then
// each ancestor space system in turn, mirroring how a relative name in an
// XTCE document may refer to an entity declared in an enclosing system.
// lookup performs the final by-name lookup within one space system.
func resolveRef(
	m *mdb.MissionDatabase,
	currentSS name.QualifiedName,
	ref string,
	lookup func(ss name.QualifiedName, n name.Idx) (mdb.Index, bool),
) (mdb.Index, bool) {
	if ref == "" {
		return mdb.InvalidIndex, false
	}

	if strings.HasPrefix(ref, "/") {
		ss, n, ok := name.ParseSpaceSystemAndName(m.NameDB(), ref)
		if !ok {
			return mdb.InvalidIndex, false
		}
		return lookup(ss, n)
	}

	n, ok := m.NameDB().Get(ref)
	if !ok {
		return mdb.InvalidIndex, false
	}

	ss := currentSS
	for {
		if idx, ok := lookup(ss, n); ok {
			return idx, true
		}
		if ss.IsRoot() {
			return mdb.InvalidIndex, false
		}
		ss = ss.Parent()
	}
}

func resolveTypeRef(m *mdb.MissionDatabase, currentSS name.QualifiedName, ref string) (mdb.DataTypeIdx, bool) {
	return resolveRef(m, currentSS, ref, m.ParameterTypeIdx)
}

func resolveParameterRef(m *mdb.MissionDatabase, currentSS name.QualifiedName, ref string) (mdb.ParameterIdx, bool) {
	return resolveRef(m, currentSS, ref, m.ParameterIdxByName)
}

func resolveContainerRef(m *mdb.MissionDatabase, currentSS name.QualifiedName, ref string) (mdb.ContainerIdx, bool) {
	return resolveRef(m, currentSS, ref, m.ContainerIdxByName)
}
