package xtceload

import (
	"fmt"
	"strconv"

	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/name"
	"github.com/kosmodb/xtce/value"
)

// parseLiteral parses raw against the data type that pidx (optionally
// navigated through memberPath) resolves to, producing the typed Value a
// compiled criteria.Comparison compares against. This is the
// criteria.LiteralParser implementation handed to criteria.Compile.
func (l *loader) parseLiteral(pidx mdb.ParameterIdx, memberPath []name.Idx, raw string, useCalibrated bool) (value.Value, error) {
	param := l.m.ParameterByIdx(pidx)
	dtIdx := param.Ptype
	dt := l.m.DataTypeByIdx(dtIdx)

	for _, member := range memberPath {
		if dt.TypeData.Kind != mdb.TypeDataAggregate {
			return value.Value{}, fmt.Errorf("%w: member path navigates into a non-aggregate type", errs.ErrInvalidValue)
		}
		found := false
		for _, mem := range dt.TypeData.Aggregate.Members {
			if mem.Ndescr.Name == member {
				dt = l.m.DataTypeByIdx(mem.Dtype)
				found = true
				break
			}
		}
		if !found {
			return value.Value{}, fmt.Errorf("%w: aggregate has no member %q", errs.ErrInvalidValue, l.m.NameToString(member))
		}
	}

	switch dt.TypeData.Kind {
	case mdb.TypeDataInteger:
		if dt.TypeData.Integer.Signed {
			x, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("%w: %q is not a valid integer literal", errs.ErrInvalidValue, raw)
			}
			return value.Int(x), nil
		}
		x, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %q is not a valid unsigned integer literal", errs.ErrInvalidValue, raw)
		}
		return value.Uint(x), nil

	case mdb.TypeDataFloat:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %q is not a valid float literal", errs.ErrInvalidValue, raw)
		}
		return value.Double(x), nil

	case mdb.TypeDataString:
		return value.String(raw), nil

	case mdb.TypeDataBoolean:
		bt := dt.TypeData.Boolean
		switch {
		case bt.OneStringValue != "" && raw == bt.OneStringValue:
			return value.Bool(true), nil
		case bt.ZeroStringValue != "" && raw == bt.ZeroStringValue:
			return value.Bool(false), nil
		default:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return value.Value{}, fmt.Errorf("%w: %q matches neither boolean label nor a bool literal", errs.ErrInvalidValue, raw)
			}
			return value.Bool(b), nil
		}

	case mdb.TypeDataEnumerated:
		if useCalibrated {
			// Literal is the label text; compareEqual's string/enumerated
			// cross-rule compares it against the decoded label.
			return value.String(raw), nil
		}
		x, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %q is not a valid enumerated raw key literal", errs.ErrInvalidValue, raw)
		}
		return value.Int(x), nil

	default:
		return value.Value{}, fmt.Errorf("%w: comparison literals are not supported against %s types",
			errs.ErrInvalidValue, l.m.NameToString(dt.Ndescr.Name))
	}
}
