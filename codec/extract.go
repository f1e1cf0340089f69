package codec

import (
	"fmt"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/value"
)

// DimensionResolver supplies the current value of a parameter referenced
// by an array's dynamic dimension. Implemented by the container
// package's processing context; declared here as an interface so codec
// has no dependency on container.
type DimensionResolver interface {
	CurrentUint(pidx mdb.ParameterIdx) (uint64, bool)
}

// Extractor extracts raw values from a bit buffer according to the data
// types registered in an m.
type Extractor struct {
	M *mdb.MissionDatabase
}

// NewExtractor creates an Extractor bound to m.
func NewExtractor(m *mdb.MissionDatabase) *Extractor {
	return &Extractor{M: m}
}

// Extract reads a raw value of the data type at ptypeIdx from r. dims
// resolves the current value of any parameter a dynamic array dimension
// references; it may be nil if ptypeIdx is known not to contain an
// array with a dynamic dimension.
func (e *Extractor) Extract(r *bitbuf.Reader, ptypeIdx mdb.DataTypeIdx, dims DimensionResolver) (value.Value, error) {
	dt := e.M.DataTypeByIdx(ptypeIdx)

	switch dt.TypeData.Kind {
	case mdb.TypeDataAggregate, mdb.TypeDataArray:
		if dt.Encoding.Kind != mdb.EncodingNone {
			return value.Value{}, fmt.Errorf("%w: aggregate/array type %q must not declare its own encoding",
				errs.ErrInvalidMdb, e.M.NameToString(dt.Ndescr.Name))
		}
	default:
		if dt.Encoding.Kind == mdb.EncodingNone {
			return value.Value{}, fmt.Errorf("%w: base data type %q has no encoding",
				errs.ErrInvalidMdb, e.M.NameToString(dt.Ndescr.Name))
		}
	}

	switch dt.TypeData.Kind {
	case mdb.TypeDataInteger:
		raw, err := ExtractInteger(r, dt.Encoding.Integer)
		if err != nil {
			return value.Value{}, err
		}
		if dt.TypeData.Integer.Signed {
			return value.IntValue(dt.TypeData.Integer.SizeInBits, raw), nil
		}
		return value.UintValue(dt.TypeData.Integer.SizeInBits, uint64(raw)), nil

	case mdb.TypeDataFloat:
		f, err := ExtractFloat(r, dt.Encoding.Float)
		if err != nil {
			return value.Value{}, err
		}
		return value.Double(f), nil

	case mdb.TypeDataString:
		s, err := ExtractString(r, dt.Encoding.String)
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil

	case mdb.TypeDataBinary:
		b, err := ExtractBinary(r, dt.Encoding.Binary)
		if err != nil {
			return value.Value{}, err
		}
		return value.Binary(b), nil

	case mdb.TypeDataBoolean:
		raw, err := r.GetBits(1, bitbuf.BigEndian)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(raw != 0), nil

	case mdb.TypeDataEnumerated:
		raw, err := ExtractInteger(r, dt.Encoding.Integer)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(raw), nil

	case mdb.TypeDataAbsoluteTime:
		return e.extractAbsoluteTime(r, dt)

	case mdb.TypeDataAggregate:
		return e.extractAggregate(r, dt.TypeData.Aggregate, dims)

	case mdb.TypeDataArray:
		return e.extractArray(r, dt.TypeData.Array, dims)

	default:
		return value.Value{}, fmt.Errorf("%w: unknown type data kind %d", errs.ErrInvalidMdb, dt.TypeData.Kind)
	}
}

// extractAbsoluteTime decodes the underlying numeric encoding (integer
// or float) as the time value; epoch/offset/scale interpretation is left
// to calibration, matching the data type's own non-goal of computing
// calibrator bodies.
func (e *Extractor) extractAbsoluteTime(r *bitbuf.Reader, dt *mdb.DataType) (value.Value, error) {
	switch dt.Encoding.Kind {
	case mdb.EncodingInteger:
		raw, err := ExtractInteger(r, dt.Encoding.Integer)
		if err != nil {
			return value.Value{}, err
		}
		return value.Int(raw), nil
	case mdb.EncodingFloat:
		f, err := ExtractFloat(r, dt.Encoding.Float)
		if err != nil {
			return value.Value{}, err
		}
		return value.Double(f), nil
	default:
		return value.Value{}, fmt.Errorf("%w: absolute time type %q has an unsupported encoding",
			errs.ErrInvalidMdb, e.M.NameToString(dt.Ndescr.Name))
	}
}

func (e *Extractor) extractAggregate(r *bitbuf.Reader, agg mdb.AggregateDataType, dims DimensionResolver) (value.Value, error) {
	members := make(value.AggregateValue, len(agg.Members))
	for _, m := range agg.Members {
		v, err := e.Extract(r, m.Dtype, dims)
		if err != nil {
			return value.Value{}, fmt.Errorf("member %q: %w", e.M.NameToString(m.Ndescr.Name), err)
		}
		members[m.Ndescr.Name] = v
	}
	return value.Aggregate(members), nil
}

func (e *Extractor) extractArray(r *bitbuf.Reader, arr mdb.ArrayDataType, dims DimensionResolver) (value.Value, error) {
	total := 1
	for _, d := range arr.Dim {
		n, err := e.resolveDimension(d, dims)
		if err != nil {
			return value.Value{}, err
		}
		total *= n
	}

	elems := make(value.ArrayValue, 0, total)
	for i := 0; i < total; i++ {
		v, err := e.Extract(r, arr.Dtype, dims)
		if err != nil {
			return value.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		elems = append(elems, v)
	}

	return value.Array(elems), nil
}

func (e *Extractor) resolveDimension(d mdb.IntegerValue, dims DimensionResolver) (int, error) {
	switch d.Kind {
	case mdb.IntegerValueFixed:
		if d.FixedValue < 0 {
			return 0, fmt.Errorf("%w: negative array dimension %d", errs.ErrInvalidMdb, d.FixedValue)
		}
		return int(d.FixedValue), nil
	case mdb.IntegerValueDynamic:
		if dims == nil {
			return 0, fmt.Errorf("%w: array has a dynamic dimension but no resolver was supplied", errs.ErrDecodingError)
		}
		v, ok := dims.CurrentUint(d.DynamicParam)
		if !ok {
			return 0, fmt.Errorf("%w: dynamic array dimension parameter has no value yet", errs.ErrMissingValue)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: unknown integer value kind %d", errs.ErrInvalidMdb, d.Kind)
	}
}
