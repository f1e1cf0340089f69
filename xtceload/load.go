package xtceload

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/kosmodb/xtce/container"
	"github.com/kosmodb/xtce/mdb"
)

// Loaded bundles everything Load produces: the constructed mission
// database plus the compiled criteria evaluators and container child
// index a container.Processor needs alongside it. Criteria is the raw
// side information the evaluators were compiled from; it is exported so
// mdbcache can persist it alongside the database and hand both back to
// Rebuild without re-parsing XTCE XML.
type Loaded struct {
	MDB        *mdb.MissionDatabase
	Evaluators container.EvaluatorSet
	Children   container.ChildIndex
	Criteria   CriteriaData
}

// Load parses a single XTCE XML document at path and builds a
// MissionDatabase from it.
func Load(path string, opts ...LoaderOption) (*Loaded, error) {
	return LoadFiles([]string{path}, opts...)
}

// LoadFiles parses one or more XTCE XML documents and builds a single
// MissionDatabase from all of them, so that space systems declared in
// separate files can reference each other by absolute qualified name.
func LoadFiles(paths []string, opts ...LoaderOption) (*Loaded, error) {
	roots := make([]*xmlSpaceSystem, 0, len(paths))
	for _, path := range paths {
		root, err := parseFile(path)
		if err != nil {
			return nil, fmt.Errorf("xtceload: %s: %w", path, err)
		}
		roots = append(roots, root)
	}

	l, err := newLoader(opts...)
	if err != nil {
		return nil, err
	}
	if err := l.build(roots); err != nil {
		return nil, err
	}

	evaluators, err := l.compileEvaluators()
	if err != nil {
		return nil, err
	}
	children := l.buildChildIndex()

	l.m.Freeze()

	return &Loaded{MDB: l.m, Evaluators: evaluators, Children: children, Criteria: l.criteriaData()}, nil
}

// Rebuild reconstructs a Loaded from a MissionDatabase and its
// CriteriaData without re-parsing any XTCE XML. This is the counterpart
// mdbcache uses after reading a cache blob: the database itself
// round-trips through mdb.Snapshot/FromSnapshot, but the compiled
// criteria.Evaluator values cannot (an Evaluator closes over the
// LiteralParser function), so they are recompiled here from the same
// literal/member-path side information LoadFiles recorded originally.
func Rebuild(m *mdb.MissionDatabase, cd CriteriaData) (*Loaded, error) {
	evaluators, err := compileEvaluatorSet(m, cd)
	if err != nil {
		return nil, err
	}
	children := buildChildIndexFor(m)

	return &Loaded{MDB: m, Evaluators: evaluators, Children: children, Criteria: cd}, nil
}

// parseFile locates the root SpaceSystem element of an XTCE document and
// decodes it, skipping any leading processing instructions or comments.
func parseFile(path string) (*xmlSpaceSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("locating root SpaceSystem element: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "SpaceSystem" {
			return nil, fmt.Errorf("unexpected root element %q, want SpaceSystem", start.Name.Local)
		}
		var root xmlSpaceSystem
		if err := dec.DecodeElement(&root, &start); err != nil {
			return nil, fmt.Errorf("decoding SpaceSystem: %w", err)
		}
		return &root, nil
	}
}
