// Package calibrate converts a decoded raw Value into its engineering
// representation according to a data type's calibrator, or — absent a
// calibrator — a default coercion matrix from the raw kind to the
// target type's semantic shape.
//
// Calibrator bodies (polynomial, spline) are never evaluated: for a data
// type with a present calibrator, Calibrate returns the raw value
// unchanged as the engineering value, and the calibrator's presence is
// visible only through the data type's Calibrator.Present field.
package calibrate

import (
	"fmt"
	"strconv"

	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/value"
)

// Calibrator converts raw values to engineering values for the data
// types registered in an m.
type Calibrator struct {
	M *mdb.MissionDatabase
}

// New creates a Calibrator bound to m.
func New(m *mdb.MissionDatabase) *Calibrator {
	return &Calibrator{M: m}
}

// Calibrate converts raw (as produced by codec.Extractor for ptypeIdx)
// into its engineering value.
func (c *Calibrator) Calibrate(raw value.Value, ptypeIdx mdb.DataTypeIdx) (value.Value, error) {
	dt := c.M.DataTypeByIdx(ptypeIdx)

	if dt.Calibrator.Present {
		// Calibrator bodies are not evaluated; the raw value passes
		// through unchanged as the engineering value. A caller that
		// needs the real computed value must supply its own calibrator
		// implementation out of band.
		return raw, nil
	}

	switch dt.TypeData.Kind {
	case mdb.TypeDataInteger:
		return c.toInteger(raw, dt.TypeData.Integer)
	case mdb.TypeDataFloat:
		return c.toFloat(raw)
	case mdb.TypeDataString:
		return c.toString(raw)
	case mdb.TypeDataBinary, mdb.TypeDataAbsoluteTime:
		return raw, nil
	case mdb.TypeDataBoolean:
		return c.toBoolean(raw, dt.TypeData.Boolean)
	case mdb.TypeDataEnumerated:
		return c.toEnumerated(raw, dt.TypeData.Enumerated)
	case mdb.TypeDataAggregate:
		return c.toAggregate(raw, dt.TypeData.Aggregate)
	case mdb.TypeDataArray:
		return c.toArray(raw, dt.TypeData.Array)
	default:
		return value.Value{}, fmt.Errorf("%w: unknown type data kind %d", errs.ErrInvalidMdb, dt.TypeData.Kind)
	}
}

func (c *Calibrator) toInteger(raw value.Value, it mdb.IntegerDataType) (value.Value, error) {
	switch raw.Kind {
	case value.KindInt64:
		if it.Signed {
			return value.IntValue(it.SizeInBits, raw.AsInt64()), nil
		}
		x := raw.AsInt64()
		if x < 0 {
			x = 0
		}
		return value.UintValue(it.SizeInBits, uint64(x)), nil
	case value.KindUint64:
		if it.Signed {
			return value.IntValue(it.SizeInBits, int64(raw.AsUint64())), nil
		}
		return value.UintValue(it.SizeInBits, raw.AsUint64()), nil
	case value.KindDouble:
		if it.Signed {
			return value.IntValue(it.SizeInBits, int64(raw.AsDouble())), nil
		}
		d := raw.AsDouble()
		if d < 0 {
			d = 0
		}
		return value.UintValue(it.SizeInBits, uint64(d)), nil
	default:
		return value.Value{}, fmt.Errorf("%w: cannot coerce %v to integer", errs.ErrDecodingError, raw.Kind)
	}
}

func (c *Calibrator) toFloat(raw value.Value) (value.Value, error) {
	f, ok := raw.AsFloat64()
	if !ok {
		return value.Value{}, fmt.Errorf("%w: cannot coerce %v to float", errs.ErrDecodingError, raw.Kind)
	}
	return value.Double(f), nil
}

func (c *Calibrator) toString(raw value.Value) (value.Value, error) {
	switch raw.Kind {
	case value.KindString:
		return raw, nil
	case value.KindInt64:
		return value.String(strconv.FormatInt(raw.AsInt64(), 10)), nil
	case value.KindUint64:
		return value.String(strconv.FormatUint(raw.AsUint64(), 10)), nil
	case value.KindDouble:
		return value.String(strconv.FormatFloat(raw.AsDouble(), 'g', -1, 64)), nil
	case value.KindBoolean:
		return value.String(strconv.FormatBool(raw.AsBool())), nil
	default:
		return value.Value{}, fmt.Errorf("%w: cannot coerce %v to string", errs.ErrDecodingError, raw.Kind)
	}
}

func (c *Calibrator) toBoolean(raw value.Value, bt mdb.BooleanDataType) (value.Value, error) {
	switch raw.Kind {
	case value.KindBoolean:
		return raw, nil
	case value.KindInt64:
		return value.Bool(raw.AsInt64() != 0), nil
	case value.KindUint64:
		return value.Bool(raw.AsUint64() != 0), nil
	case value.KindDouble:
		return value.Bool(raw.AsDouble() != 0), nil
	case value.KindString:
		s := raw.AsString()
		if bt.OneStringValue != "" && s == bt.OneStringValue {
			return value.Bool(true), nil
		}
		if bt.ZeroStringValue != "" && s == bt.ZeroStringValue {
			return value.Bool(false), nil
		}
		return value.Value{}, fmt.Errorf("%w: string %q matches neither boolean label", errs.ErrDecodingError, s)
	default:
		return value.Value{}, fmt.Errorf("%w: cannot coerce %v to boolean", errs.ErrDecodingError, raw.Kind)
	}
}

func (c *Calibrator) toEnumerated(raw value.Value, et mdb.EnumeratedDataType) (value.Value, error) {
	var key int64
	switch raw.Kind {
	case value.KindInt64:
		key = raw.AsInt64()
	case value.KindUint64:
		key = int64(raw.AsUint64())
	default:
		return value.Value{}, fmt.Errorf("%w: cannot coerce %v to enumerated", errs.ErrDecodingError, raw.Kind)
	}

	for _, e := range et.Enumeration {
		if key >= e.Value && key <= e.MaxValue {
			return value.Enumerated(key, e.Label), nil
		}
	}
	return value.Enumerated(key, "UNDEF"), nil
}

func (c *Calibrator) toAggregate(raw value.Value, at mdb.AggregateDataType) (value.Value, error) {
	if raw.Kind != value.KindAggregate {
		return value.Value{}, fmt.Errorf("%w: cannot coerce %v to aggregate", errs.ErrDecodingError, raw.Kind)
	}
	rawMembers := raw.AsAggregate()
	out := make(value.AggregateValue, len(at.Members))
	for _, m := range at.Members {
		rv, ok := rawMembers[m.Ndescr.Name]
		if !ok {
			return value.Value{}, fmt.Errorf("%w: aggregate missing member %q", errs.ErrDecodingError, c.M.NameToString(m.Ndescr.Name))
		}
		ev, err := c.Calibrate(rv, m.Dtype)
		if err != nil {
			return value.Value{}, fmt.Errorf("member %q: %w", c.M.NameToString(m.Ndescr.Name), err)
		}
		out[m.Ndescr.Name] = ev
	}
	return value.Aggregate(out), nil
}

func (c *Calibrator) toArray(raw value.Value, at mdb.ArrayDataType) (value.Value, error) {
	if raw.Kind != value.KindArray {
		return value.Value{}, fmt.Errorf("%w: cannot coerce %v to array", errs.ErrDecodingError, raw.Kind)
	}
	rawElems := raw.AsArray()
	out := make(value.ArrayValue, len(rawElems))
	for i, rv := range rawElems {
		ev, err := c.Calibrate(rv, at.Dtype)
		if err != nil {
			return value.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = ev
	}
	return value.Array(out), nil
}
