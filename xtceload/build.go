package xtceload

import (
	"fmt"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/internal/options"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
)

var log = logging.Logger("xtce/xtceload")

type ssEntry struct {
	fqn name.QualifiedName
	xml *xmlSpaceSystem
}

type loader struct {
	m       *mdb.MissionDatabase
	cfg     loaderConfig
	systems []ssEntry

	// literals and memberPaths hold, per MatchComparison criterion, the
	// raw literal string and resolved member path criteria.Compile needs
	// to parse it against the comparison's parameter type. mdb.Comparison
	// itself only carries the document-order literal text indirectly
	// (via these maps), since the typed value cannot be produced until
	// the parameter's data type is known.
	literals    map[mdb.MatchCriteriaIdx]string
	memberPaths map[mdb.MatchCriteriaIdx][]name.Idx

	// listLiterals and listMemberPaths hold the same information for a
	// MatchComparisonList's members, one entry per comparison in
	// document order, for criteria.CompileComparisonList.
	listLiterals    map[mdb.MatchCriteriaIdx][]string
	listMemberPaths map[mdb.MatchCriteriaIdx][][]name.Idx
}

func newLoader(opts ...LoaderOption) (*loader, error) {
	cfg := defaultLoaderConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	return &loader{
		m:               mdb.New(),
		cfg:             cfg,
		literals:        make(map[mdb.MatchCriteriaIdx]string),
		memberPaths:     make(map[mdb.MatchCriteriaIdx][]name.Idx),
		listLiterals:    make(map[mdb.MatchCriteriaIdx][]string),
		listMemberPaths: make(map[mdb.MatchCriteriaIdx][][]name.Idx),
	}, nil
}

// build runs the full two-pass construction over every root xml document
// already appended to l.systems' source trees.
func (l *loader) build(roots []*xmlSpaceSystem) error {
	for _, root := range roots {
		if err := l.registerSpaceSystems(root, name.Empty()); err != nil {
			return err
		}
	}

	if err := l.buildSimpleTypes(); err != nil {
		return err
	}
	// Aggregate/array types and parameters are built together in one
	// fixpoint: an aggregate member or array element can itself be an
	// aggregate/array type, and an array's dynamic dimension references a
	// sibling parameter (built here too), so none of the three can be
	// assigned a strict build order up front.
	if err := l.buildEntitiesFixpoint(); err != nil {
		return err
	}
	if err := l.buildContainersFixpoint(); err != nil {
		return err
	}

	return nil
}

func (l *loader) registerSpaceSystems(node *xmlSpaceSystem, parent name.QualifiedName) error {
	nameIdx := l.m.GetOrIntern(node.Name)
	fqn := parent.Push(nameIdx)

	if _, err := l.m.NewSpaceSystem(fqn); err != nil {
		return err
	}
	l.systems = append(l.systems, ssEntry{fqn: fqn, xml: node})

	for i := range node.SpaceSystems {
		if err := l.registerSpaceSystems(&node.SpaceSystems[i], fqn); err != nil {
			return err
		}
	}
	return nil
}

func parseInt64(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseIntDefault(s string, fallback int) int {
	return int(parseInt64(s, int64(fallback)))
}

func (l *loader) byteOrderOf(s string) bitbuf.ByteOrder {
	switch {
	case strings.EqualFold(s, "leastSignificantByteFirst"):
		return bitbuf.LittleEndian
	case strings.EqualFold(s, "mostSignificantByteFirst"):
		return bitbuf.BigEndian
	default:
		return l.cfg.defaultByteOrder
	}
}

func integerEncodingOf(s string) mdb.IntegerEncodingType {
	switch strings.ToLower(s) {
	case "twoscomplement", "":
		return mdb.IntegerTwosComplement
	case "unsigned":
		return mdb.IntegerUnsigned
	case "signmagnitude":
		return mdb.IntegerSignMagnitude
	case "onescomplement":
		return mdb.IntegerOnesComplement
	default:
		return mdb.IntegerTwosComplement
	}
}

func floatEncodingOf(s string) mdb.FloatEncodingType {
	if strings.EqualFold(s, "MILSTD_1750A") {
		return mdb.FloatMilstd1750a
	}
	return mdb.FloatIEEE754_1985
}

func unitsOf(us xmlUnitSet) []mdb.UnitType {
	if len(us.Units) == 0 {
		return nil
	}
	out := make([]mdb.UnitType, 0, len(us.Units))
	for _, u := range us.Units {
		power := 1.0
		if u.Power != "" {
			if p, err := strconv.ParseFloat(u.Power, 64); err == nil {
				power = p
			}
		}
		out = append(out, mdb.UnitType{Description: u.Description, Power: power, Factor: u.Factor, Unit: strings.TrimSpace(u.Text)})
	}
	return out
}

func calibratorOf(c *xmlCalibrator) mdb.Calibrator {
	if c == nil {
		return mdb.Calibrator{}
	}
	return mdb.Calibrator{Present: c.Present, Kind: c.Kind}
}

// buildSimpleTypes constructs every parameter type whose shape has no
// dependency on another parameter type: integer, float, string, binary,
// boolean, enumerated, and absolute time. These need no fixpoint since
// nothing about them can forward-reference an as-yet-unbuilt type.
func (l *loader) buildSimpleTypes() error {
	for _, sys := range l.systems {
		ss := sys.fqn
		pt := sys.xml.TelemetryMetaData.ParameterTypeSet

		for i := range pt.IntegerParameterTypes {
			l.buildIntegerType(ss, &pt.IntegerParameterTypes[i])
		}
		for i := range pt.FloatParameterTypes {
			l.buildFloatType(ss, &pt.FloatParameterTypes[i])
		}
		for i := range pt.StringParameterTypes {
			if err := l.buildStringType(ss, &pt.StringParameterTypes[i]); err != nil {
				return err
			}
		}
		for i := range pt.BinaryParameterTypes {
			l.buildBinaryType(ss, &pt.BinaryParameterTypes[i])
		}
		for i := range pt.BooleanParameterTypes {
			l.buildBooleanType(ss, &pt.BooleanParameterTypes[i])
		}
		for i := range pt.EnumeratedParameterTypes {
			l.buildEnumeratedType(ss, &pt.EnumeratedParameterTypes[i])
		}
		for i := range pt.AbsoluteTimeParameterTypes {
			l.buildAbsoluteTimeType(ss, &pt.AbsoluteTimeParameterTypes[i])
		}
	}
	return nil
}

func (l *loader) buildIntegerType(ss name.QualifiedName, x *xmlIntegerParameterType) mdb.DataTypeIdx {
	signed := x.Signed != "false"
	bits := parseIntDefault(x.SizeInBits, 32)
	encBits := parseIntDefault(x.IntegerDataEncoding.SizeInBits, bits)

	return l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:     mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding:   mdb.DataEncoding{Kind: mdb.EncodingInteger, Integer: mdb.IntegerDataEncoding{SizeInBits: encBits, Encoding: integerEncodingOf(x.IntegerDataEncoding.Encoding), ByteOrder: l.byteOrderOf(x.IntegerDataEncoding.ByteOrder)}},
		TypeData:   mdb.TypeData{Kind: mdb.TypeDataInteger, Integer: mdb.IntegerDataType{SizeInBits: bits, Signed: signed}},
		Units:      unitsOf(x.UnitSet),
		Calibrator: calibratorOf(x.DefaultCalibrator),
	})
}

func (l *loader) buildFloatType(ss name.QualifiedName, x *xmlFloatParameterType) mdb.DataTypeIdx {
	bits := parseIntDefault(x.SizeInBits, 64)
	encBits := parseIntDefault(x.FloatDataEncoding.SizeInBits, bits)

	return l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:     mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding:   mdb.DataEncoding{Kind: mdb.EncodingFloat, Float: mdb.FloatDataEncoding{SizeInBits: encBits, Encoding: floatEncodingOf(x.FloatDataEncoding.Encoding)}},
		TypeData:   mdb.TypeData{Kind: mdb.TypeDataFloat, Float: mdb.FloatDataType{SizeInBits: bits}},
		Units:      unitsOf(x.UnitSet),
		Calibrator: calibratorOf(x.DefaultCalibrator),
	})
}

func (l *loader) buildStringType(ss name.QualifiedName, x *xmlStringParameterType) error {
	enc := x.StringDataEncoding
	se := mdb.StringDataEncoding{Encoding: enc.Encoding}

	switch {
	case enc.SizeInBitsOfSizeTag != "":
		se.SizeType = mdb.StringSizeLeadingSize
		se.SizeInBitsOfSizeTag = parseIntDefault(enc.SizeInBitsOfSizeTag, 8)
	case enc.TerminationChar != "":
		se.SizeType = mdb.StringSizeTerminationChar
		tc, err := strconv.ParseUint(strings.TrimPrefix(enc.TerminationChar, "0x"), 16, 8)
		if err != nil {
			return fmt.Errorf("%w: string type %q has an invalid TerminationChar %q", errs.ErrInvalidValue, x.Name, enc.TerminationChar)
		}
		se.TerminationChar = byte(tc)
		if enc.SizeInBits != nil && enc.SizeInBits.Fixed != nil {
			se.SizeInBits = parseIntDefault(enc.SizeInBits.Fixed.Value, 0) * 8
			se.BoxSizeInBitsValid = true
		}
	default:
		se.SizeType = mdb.StringSizeFixed
		if enc.SizeInBits != nil && enc.SizeInBits.Fixed != nil {
			se.SizeInBits = parseIntDefault(enc.SizeInBits.Fixed.Value, 0) * 8
		}
		se.BoxSizeInBitsValid = true
	}

	l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:     mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding:   mdb.DataEncoding{Kind: mdb.EncodingString, String: se},
		TypeData:   mdb.TypeData{Kind: mdb.TypeDataString},
		Units:      unitsOf(x.UnitSet),
		Calibrator: calibratorOf(x.DefaultCalibrator),
	})
	return nil
}

func (l *loader) buildBinaryType(ss name.QualifiedName, x *xmlBinaryParameterType) mdb.DataTypeIdx {
	enc := x.BinaryDataEncoding
	be := mdb.BinaryDataEncoding{}
	if enc.SizeInBitsOfSizeTag != "" {
		be.SizeInBitsOfSizeTag = parseIntDefault(enc.SizeInBitsOfSizeTag, 8)
	} else if enc.SizeInBits != nil && enc.SizeInBits.Fixed != nil {
		be.SizeInBits = parseIntDefault(enc.SizeInBits.Fixed.Value, 0) * 8
	}

	return l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:     mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding:   mdb.DataEncoding{Kind: mdb.EncodingBinary, Binary: be},
		TypeData:   mdb.TypeData{Kind: mdb.TypeDataBinary, Binary: mdb.BinaryDataType{SizeInBits: be.SizeInBits}},
		Units:      unitsOf(x.UnitSet),
		Calibrator: calibratorOf(x.DefaultCalibrator),
	})
}

func (l *loader) buildBooleanType(ss name.QualifiedName, x *xmlBooleanParameterType) mdb.DataTypeIdx {
	bits := parseIntDefault(x.IntegerDataEncoding.SizeInBits, 1)

	return l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingInteger, Integer: mdb.IntegerDataEncoding{SizeInBits: bits, Encoding: mdb.IntegerUnsigned, ByteOrder: l.byteOrderOf(x.IntegerDataEncoding.ByteOrder)}},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataBoolean, Boolean: mdb.BooleanDataType{OneStringValue: orDefault(x.OneStringValue, "true"), ZeroStringValue: orDefault(x.ZeroStringValue, "false")}},
		Units:    unitsOf(x.UnitSet),
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (l *loader) buildEnumeratedType(ss name.QualifiedName, x *xmlEnumeratedParameterType) mdb.DataTypeIdx {
	bits := parseIntDefault(x.IntegerDataEncoding.SizeInBits, 8)
	enumeration := make([]mdb.ValueEnumeration, 0, len(x.EnumerationList.Enumerations))
	for _, e := range x.EnumerationList.Enumerations {
		v := parseInt64(e.Value, 0)
		max := v
		if e.MaxValue != "" {
			max = parseInt64(e.MaxValue, v)
		}
		enumeration = append(enumeration, mdb.ValueEnumeration{Value: v, MaxValue: max, Label: e.Label, Description: e.ShortDescription})
	}

	return l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingInteger, Integer: mdb.IntegerDataEncoding{SizeInBits: bits, Encoding: integerEncodingOf(x.IntegerDataEncoding.Encoding), ByteOrder: l.byteOrderOf(x.IntegerDataEncoding.ByteOrder)}},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataEnumerated, Enumerated: mdb.EnumeratedDataType{Enumeration: enumeration}},
		Units:    unitsOf(x.UnitSet),
	})
}

func (l *loader) buildAbsoluteTimeType(ss name.QualifiedName, x *xmlAbsoluteTimeParameterType) mdb.DataTypeIdx {
	return l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingInteger, Integer: mdb.IntegerDataEncoding{SizeInBits: 32, Encoding: mdb.IntegerUnsigned, ByteOrder: bitbuf.BigEndian}},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataAbsoluteTime, AbsoluteTime: mdb.AbsoluteTimeDataType{ReferenceTime: x.ReferenceTime}},
	})
}

func dataSourceOf(s string) mdb.DataSource {
	switch strings.ToLower(s) {
	case "derived":
		return mdb.DataSourceDerived
	case "constant":
		return mdb.DataSourceConstant
	case "local":
		return mdb.DataSourceLocal
	case "system":
		return mdb.DataSourceSystem
	case "command":
		return mdb.DataSourceCommand
	case "commandhistory":
		return mdb.DataSourceCommandHistory
	default:
		return mdb.DataSourceTelemetered
	}
}

type pendingAggregate struct {
	ss name.QualifiedName
	x  *xmlAggregateParameterType
}

type pendingArray struct {
	ss name.QualifiedName
	x  *xmlArrayParameterType
}

type pendingParameter struct {
	ss name.QualifiedName
	x  *xmlParameter
}

// buildEntitiesFixpoint constructs every AggregateParameterType,
// ArrayParameterType, and Parameter across all space systems, retrying
// whichever ones have an unresolved reference (a member's typeRef, an
// array's arrayTypeRef or dynamic dimension parameter, a parameter's
// parameterTypeRef) until a full round makes no further progress.
func (l *loader) buildEntitiesFixpoint() error {
	var aggs []pendingAggregate
	var arrs []pendingArray
	var params []pendingParameter

	for _, sys := range l.systems {
		pt := sys.xml.TelemetryMetaData.ParameterTypeSet
		for i := range pt.AggregateParameterTypes {
			aggs = append(aggs, pendingAggregate{ss: sys.fqn, x: &pt.AggregateParameterTypes[i]})
		}
		for i := range pt.ArrayParameterTypes {
			arrs = append(arrs, pendingArray{ss: sys.fqn, x: &pt.ArrayParameterTypes[i]})
		}
		for i := range sys.xml.TelemetryMetaData.ParameterSet.Parameters {
			params = append(params, pendingParameter{ss: sys.fqn, x: &sys.xml.TelemetryMetaData.ParameterSet.Parameters[i]})
		}
	}

	for len(aggs) > 0 || len(arrs) > 0 || len(params) > 0 {
		progressed := false

		var aggsNext []pendingAggregate
		for _, p := range aggs {
			if ok, err := l.tryBuildAggregateType(p.ss, p.x); err != nil {
				return err
			} else if ok {
				progressed = true
			} else {
				aggsNext = append(aggsNext, p)
			}
		}
		aggs = aggsNext

		var arrsNext []pendingArray
		for _, p := range arrs {
			if ok, err := l.tryBuildArrayType(p.ss, p.x); err != nil {
				return err
			} else if ok {
				progressed = true
			} else {
				arrsNext = append(arrsNext, p)
			}
		}
		arrs = arrsNext

		var paramsNext []pendingParameter
		for _, p := range params {
			if ok, err := l.tryBuildParameter(p.ss, p.x); err != nil {
				return err
			} else if ok {
				progressed = true
			} else {
				paramsNext = append(paramsNext, p)
			}
		}
		params = paramsNext

		if !progressed {
			return fmt.Errorf("%w: %d aggregate type(s), %d array type(s), %d parameter(s) have unresolved type references",
				errs.ErrUnresolvedReferences, len(aggs), len(arrs), len(params))
		}
		if len(aggs) > 0 || len(arrs) > 0 || len(params) > 0 {
			log.Debugf("fixpoint round retrying %d aggregate(s), %d array(s), %d parameter(s)", len(aggs), len(arrs), len(params))
		}
	}
	return nil
}

func (l *loader) tryBuildAggregateType(ss name.QualifiedName, x *xmlAggregateParameterType) (bool, error) {
	members := make([]mdb.Member, 0, len(x.MemberList.Members))
	for _, xm := range x.MemberList.Members {
		dtIdx, ok := resolveTypeRef(l.m, ss, xm.TypeRef)
		if !ok {
			return false, nil
		}
		members = append(members, mdb.Member{
			Ndescr: mdb.NameDescription{Name: l.m.GetOrIntern(xm.Name), ShortDescription: xm.ShortDescription},
			Dtype:  dtIdx,
		})
	}

	l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingNone},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataAggregate, Aggregate: mdb.AggregateDataType{Members: members}},
	})
	return true, nil
}

func (l *loader) tryBuildArrayType(ss name.QualifiedName, x *xmlArrayParameterType) (bool, error) {
	elemIdx, ok := resolveTypeRef(l.m, ss, x.ArrayTypeRef)
	if !ok {
		return false, nil
	}

	dims := make([]mdb.IntegerValue, 0, len(x.DimensionList.Dimensions))
	for _, d := range x.DimensionList.Dimensions {
		if d.DynamicParam != "" {
			// Simplified: the dynamic dimension parameter's decoded value
			// is taken directly as the element count, rather than
			// computing endingIndex - startingIndex + 1.
			pidx, ok := resolveParameterRef(l.m, ss, d.DynamicParam)
			if !ok {
				return false, nil
			}
			dims = append(dims, mdb.IntegerValue{Kind: mdb.IntegerValueDynamic, DynamicParam: pidx})
			continue
		}

		start := int64(0)
		if d.FixedValue != nil {
			start = parseInt64(d.FixedValue.Value, 0)
		}
		end := start
		if d.EndingFixed != nil {
			end = parseInt64(d.EndingFixed.Value, start)
		}
		dims = append(dims, mdb.IntegerValue{Kind: mdb.IntegerValueFixed, FixedValue: end - start + 1})
	}

	l.m.AddParameterType(ss, mdb.DataType{
		Ndescr:   mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Encoding: mdb.DataEncoding{Kind: mdb.EncodingNone},
		TypeData: mdb.TypeData{Kind: mdb.TypeDataArray, Array: mdb.ArrayDataType{Dtype: elemIdx, Dim: dims}},
	})
	return true, nil
}

func (l *loader) tryBuildParameter(ss name.QualifiedName, x *xmlParameter) (bool, error) {
	dtIdx, ok := resolveTypeRef(l.m, ss, x.ParameterTypeRef)
	if !ok {
		return false, nil
	}

	l.m.AddParameter(ss, mdb.Parameter{
		Ndescr:     mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		Ptype:      dtIdx,
		DataSource: dataSourceOf(x.DataSource),
	})
	return true, nil
}

func (l *loader) comparisonOperatorOf(s string) (mdb.ComparisonOperator, error) {
	switch s {
	case "", "==", "equalTo":
		return mdb.OpEquality, nil
	case "!=", "notEqualTo":
		return mdb.OpInequality, nil
	case ">", "largerThan":
		return mdb.OpLargerThan, nil
	case ">=", "largerOrEqualTo":
		return mdb.OpLargerOrEqualThan, nil
	case "<", "smallerThan":
		return mdb.OpSmallerThan, nil
	case "<=", "smallerOrEqualTo":
		return mdb.OpSmallerOrEqualThan, nil
	default:
		if l.cfg.strict {
			return 0, fmt.Errorf("%w: unrecognized comparisonOperator %q", errs.ErrInvalidMdb, s)
		}
		return mdb.OpEquality, nil
	}
}

// parseComparison resolves xc's parameter reference and operator, but
// leaves its literal unparsed: the literal's typed value depends on the
// referenced parameter's data type, which criteria.Compile resolves
// later via the loader's parseLiteral.
func (l *loader) parseComparison(ss name.QualifiedName, xc *xmlComparison) (mdb.Comparison, string, error) {
	pidx, ok := resolveParameterRef(l.m, ss, xc.ParameterRef)
	if !ok {
		return mdb.Comparison{}, "", fmt.Errorf("%w: comparison references unknown parameter %q", errs.ErrUndefinedReference, xc.ParameterRef)
	}

	op, err := l.comparisonOperatorOf(xc.ComparisonOperator)
	if err != nil {
		return mdb.Comparison{}, "", err
	}

	cmp := mdb.Comparison{
		ParamInstance: mdb.ParameterInstanceRef{
			Pidx:               pidx,
			Instance:           parseIntDefault(xc.Instance, 0),
			UseCalibratedValue: xc.UseCalibratedValue != "false",
		},
		ComparisonOperator: op,
	}
	return cmp, xc.Value, nil
}

func (l *loader) buildSingleComparison(ss name.QualifiedName, xc *xmlComparison) (mdb.MatchCriteriaIdx, error) {
	cmp, literal, err := l.parseComparison(ss, xc)
	if err != nil {
		return mdb.InvalidIndex, err
	}
	idx := l.m.AddMatchCriteria(mdb.MatchCriteria{Kind: mdb.MatchComparison, Comparison: cmp})
	l.literals[idx] = literal
	return idx, nil
}

func (l *loader) buildComparisonListCriteria(ss name.QualifiedName, list *xmlComparisonList) (mdb.MatchCriteriaIdx, error) {
	comparisons := make([]mdb.Comparison, 0, len(list.Comparisons))
	literals := make([]string, 0, len(list.Comparisons))

	for i := range list.Comparisons {
		cmp, literal, err := l.parseComparison(ss, &list.Comparisons[i])
		if err != nil {
			return mdb.InvalidIndex, err
		}
		comparisons = append(comparisons, cmp)
		literals = append(literals, literal)
	}

	idx := l.m.AddMatchCriteria(mdb.MatchCriteria{Kind: mdb.MatchComparisonList, ComparisonList: comparisons})
	l.listLiterals[idx] = literals
	l.listMemberPaths[idx] = make([][]name.Idx, len(comparisons))
	return idx, nil
}

// buildBooleanExpression builds one operand per child of expr, flattening
// a nested ComparisonList into individual comparison operands when expr
// is itself an AND (a list is an implicit AND, so AND-of-AND-of-list
// collapses safely), or wrapping it as a nested AND operand when expr is
// an OR (OR(A AND B, C) is not the same as OR(A, B, C)).
func (l *loader) buildBooleanExpression(ss name.QualifiedName, expr xmlBooleanExpression, parentIsAnd bool) ([]mdb.MatchCriteriaIdx, error) {
	var ops []mdb.MatchCriteriaIdx

	for i := range expr.Comparisons {
		idx, err := l.buildSingleComparison(ss, &expr.Comparisons[i])
		if err != nil {
			return nil, err
		}
		ops = append(ops, idx)
	}

	for i := range expr.ComparisonLists {
		list := &expr.ComparisonLists[i]
		if parentIsAnd {
			for j := range list.Comparisons {
				idx, err := l.buildSingleComparison(ss, &list.Comparisons[j])
				if err != nil {
					return nil, err
				}
				ops = append(ops, idx)
			}
			continue
		}
		subOps := make([]mdb.MatchCriteriaIdx, 0, len(list.Comparisons))
		for j := range list.Comparisons {
			idx, err := l.buildSingleComparison(ss, &list.Comparisons[j])
			if err != nil {
				return nil, err
			}
			subOps = append(subOps, idx)
		}
		ops = append(ops, l.m.AddMatchCriteria(mdb.MatchCriteria{Kind: mdb.MatchAnd, Operands: subOps}))
	}

	for i := range expr.ANDedConditions {
		subOps, err := l.buildBooleanExpression(ss, expr.ANDedConditions[i], true)
		if err != nil {
			return nil, err
		}
		ops = append(ops, l.m.AddMatchCriteria(mdb.MatchCriteria{Kind: mdb.MatchAnd, Operands: subOps}))
	}

	for i := range expr.ORedConditions {
		subOps, err := l.buildBooleanExpression(ss, expr.ORedConditions[i], false)
		if err != nil {
			return nil, err
		}
		ops = append(ops, l.m.AddMatchCriteria(mdb.MatchCriteria{Kind: mdb.MatchOr, Operands: subOps}))
	}

	return ops, nil
}

// buildMatchCriteria builds an IncludeCondition or RestrictionCriteria.
// Unlike containers, match criteria never forward-reference an
// unresolved entity: every parameter they can name is already built by
// the time containers are constructed, so this never participates in
// the container fixpoint and any unresolved parameterRef is a hard
// error.
func (l *loader) buildMatchCriteria(ss name.QualifiedName, x *xmlMatchCriteria) (mdb.MatchCriteriaIdx, error) {
	switch {
	case x.Comparison != nil:
		return l.buildSingleComparison(ss, x.Comparison)
	case x.ComparisonList != nil:
		return l.buildComparisonListCriteria(ss, x.ComparisonList)
	case x.ANDedConditions != nil:
		ops, err := l.buildBooleanExpression(ss, *x.ANDedConditions, true)
		if err != nil {
			return mdb.InvalidIndex, err
		}
		return l.m.AddMatchCriteria(mdb.MatchCriteria{Kind: mdb.MatchAnd, Operands: ops}), nil
	case x.ORedConditions != nil:
		ops, err := l.buildBooleanExpression(ss, *x.ORedConditions, false)
		if err != nil {
			return mdb.InvalidIndex, err
		}
		return l.m.AddMatchCriteria(mdb.MatchCriteria{Kind: mdb.MatchOr, Operands: ops}), nil
	default:
		return mdb.InvalidIndex, fmt.Errorf("%w: match criteria element has no comparison, list, or combinator", errs.ErrInvalidMdb)
	}
}

func locationOf(x *xmlLocationInContainerInBits) *mdb.LocationInContainerInBits {
	if x == nil {
		return nil
	}
	ref := mdb.ReferenceContainerStart
	if strings.EqualFold(strings.TrimSpace(x.ReferenceLocation), "previousEntry") {
		ref = mdb.ReferencePreviousEntry
	}
	return &mdb.LocationInContainerInBits{
		ReferenceLocation: ref,
		LocationInBits:    parseIntDefault(strings.TrimSpace(x.Text), 0),
	}
}

func (l *loader) buildEntry(ss name.QualifiedName, e *xmlEntry) (mdb.ContainerEntry, error) {
	var data mdb.ContainerEntryData
	var loc *mdb.LocationInContainerInBits
	var includeIdx mdb.MatchCriteriaIdx = mdb.InvalidIndex

	switch e.Kind {
	case "ParameterRefEntry":
		pe := e.Parameter
		pidx, ok := resolveParameterRef(l.m, ss, pe.ParameterRef)
		if !ok {
			return mdb.ContainerEntry{}, fmt.Errorf("%w: entry references unknown parameter %q", errs.ErrUndefinedReference, pe.ParameterRef)
		}
		data = mdb.ContainerEntryData{Kind: mdb.EntryParameterRef, ParameterRef: pidx}
		loc = locationOf(pe.LocationInContainer)
		if pe.IncludeCondition != nil {
			idx, err := l.buildMatchCriteria(ss, pe.IncludeCondition)
			if err != nil {
				return mdb.ContainerEntry{}, err
			}
			includeIdx = idx
		}

	case "ContainerRefEntry":
		ce := e.Container
		cidx, ok := resolveContainerRef(l.m, ss, ce.ContainerRef)
		if !ok {
			return mdb.ContainerEntry{}, fmt.Errorf("%w: entry references unknown container %q", errs.ErrUndefinedReference, ce.ContainerRef)
		}
		data = mdb.ContainerEntryData{Kind: mdb.EntryContainerRef, ContainerRef: cidx}
		loc = locationOf(ce.LocationInContainer)
		if ce.IncludeCondition != nil {
			idx, err := l.buildMatchCriteria(ss, ce.IncludeCondition)
			if err != nil {
				return mdb.ContainerEntry{}, err
			}
			includeIdx = idx
		}

	default:
		return mdb.ContainerEntry{}, fmt.Errorf("%w: unknown entry kind %q", errs.ErrInvalidMdb, e.Kind)
	}

	return mdb.ContainerEntry{LocationInContainer: loc, IncludeCondition: includeIdx, Data: data}, nil
}

// containerRefsResolved checks, without building anything, whether every
// ContainerIdx x's build would need (its BaseContainer and any
// ContainerRefEntry) already resolves. This lets the container fixpoint
// defer a container without partially constructing its match criteria.
func (l *loader) containerRefsResolved(ss name.QualifiedName, x *xmlSequenceContainer) bool {
	if x.BaseContainer != nil {
		if _, ok := resolveContainerRef(l.m, ss, x.BaseContainer.ContainerRef); !ok {
			return false
		}
	}
	for i := range x.EntryList.Entries {
		e := &x.EntryList.Entries[i]
		if e.Kind == "ContainerRefEntry" {
			if _, ok := resolveContainerRef(l.m, ss, e.Container.ContainerRef); !ok {
				return false
			}
		}
	}
	return true
}

func (l *loader) buildContainer(ss name.QualifiedName, x *xmlSequenceContainer) (mdb.ContainerIdx, error) {
	var baseIdx mdb.ContainerIdx = mdb.InvalidIndex
	var restrictionIdx mdb.MatchCriteriaIdx = mdb.InvalidIndex

	if x.BaseContainer != nil {
		idx, _ := resolveContainerRef(l.m, ss, x.BaseContainer.ContainerRef)
		baseIdx = idx
		if x.BaseContainer.RestrictionCriteria != nil {
			ridx, err := l.buildMatchCriteria(ss, x.BaseContainer.RestrictionCriteria)
			if err != nil {
				return mdb.InvalidIndex, err
			}
			restrictionIdx = ridx
		}
	}

	entries := make([]mdb.ContainerEntry, 0, len(x.EntryList.Entries))
	for i := range x.EntryList.Entries {
		entry, err := l.buildEntry(ss, &x.EntryList.Entries[i])
		if err != nil {
			return mdb.InvalidIndex, err
		}
		entries = append(entries, entry)
	}

	sc := mdb.SequenceContainer{
		Ndescr:              mdb.NameDescription{Name: l.m.GetOrIntern(x.Name), ShortDescription: x.ShortDescription},
		BaseContainer:       baseIdx,
		RestrictionCriteria: restrictionIdx,
		Abstract:            x.Abstract == "true",
		Entries:             entries,
	}
	return l.m.AddContainer(ss, sc), nil
}

type pendingContainer struct {
	ss name.QualifiedName
	x  *xmlSequenceContainer
}

// buildContainersFixpoint constructs every SequenceContainer, retrying
// any whose BaseContainer or whose entries' ContainerRef targets are not
// yet built. A container's own ParameterRef entries never defer: every
// parameter is already built by the time this runs.
func (l *loader) buildContainersFixpoint() error {
	var items []pendingContainer
	for _, sys := range l.systems {
		cs := sys.xml.TelemetryMetaData.ContainerSet
		for i := range cs.SequenceContainers {
			items = append(items, pendingContainer{ss: sys.fqn, x: &cs.SequenceContainers[i]})
		}
	}

	for len(items) > 0 {
		var remaining []pendingContainer
		progressed := false

		for _, it := range items {
			if !l.containerRefsResolved(it.ss, it.x) {
				remaining = append(remaining, it)
				continue
			}
			if _, err := l.buildContainer(it.ss, it.x); err != nil {
				return err
			}
			progressed = true
		}

		if !progressed && len(remaining) > 0 {
			return fmt.Errorf("%w: %d container(s) have unresolved base/member container references",
				errs.ErrUnresolvedReferences, len(remaining))
		}
		if len(remaining) > 0 {
			log.Debugf("fixpoint round retrying %d container(s)", len(remaining))
		}
		items = remaining
	}
	return nil
}
