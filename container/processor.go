// Package container implements the decoding core: walking a
// SequenceContainer's entry list against a packet buffer, extracting
// and calibrating each entry's value, and recursing into inheritance
// children whose restriction criteria are satisfied.
package container

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"

	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/calibrate"
	"github.com/kosmodb/xtce/codec"
	"github.com/kosmodb/xtce/criteria"
	"github.com/kosmodb/xtce/errs"
	"github.com/kosmodb/xtce/internal/options"
	"github.com/kosmodb/xtce/mdb"
	"github.com/kosmodb/xtce/value"
)

var defaultLog = logging.Logger("xtce/container")

// MaxPacketSize is the largest packet, in bytes (2^30), this processor
// decodes by default; WithMaxPacketSize overrides it per Processor.
const MaxPacketSize = (1 << 30)

// EvaluatorSet resolves a compiled criteria.Evaluator for a given
// mdb.MatchCriteriaIdx. Built once after loading by the xtceload
// package, which has access to literal parsing and member-path
// resolution that criteria.Compile needs.
type EvaluatorSet interface {
	Evaluator(idx mdb.MatchCriteriaIdx) criteria.Evaluator
}

// ChildIndex answers which containers declare idx as their base
// container, so the processor can walk inheritance without a linear
// scan of the whole container arena on every recursive step.
type ChildIndex interface {
	Children(idx mdb.ContainerIdx) []mdb.ContainerIdx
}

// Processor decodes packets against a MissionDatabase.
type Processor struct {
	M          *mdb.MissionDatabase
	Evaluators EvaluatorSet
	Children   ChildIndex

	extractor     *codec.Extractor
	calibrator    *calibrate.Calibrator
	maxPacketSize int
	log           *logging.ZapEventLogger
}

// New creates a Processor bound to m, using evaluators for criteria
// lookups and children for inheritance dispatch. Opts can override the
// packet size limit and logger; both default to the package-level
// values when omitted.
func New(m *mdb.MissionDatabase, evaluators EvaluatorSet, children ChildIndex, opts ...ContainerProcessorOption) *Processor {
	p := &Processor{
		M:             m,
		Evaluators:    evaluators,
		Children:      children,
		extractor:     codec.NewExtractor(m),
		calibrator:    calibrate.New(m),
		maxPacketSize: MaxPacketSize,
		log:           defaultLog,
	}
	// Apply never errors: every ContainerProcessorOption is built with
	// options.NoError.
	_ = options.Apply(p, opts...)
	return p
}

// Process decodes packet against root, returning every parameter value
// extracted, in extraction order.
//
// Parameters:
//   - packet: the raw bytes of one telemetry packet
//   - root: the top-level container to start decoding from
//
// Returns the accumulated ParameterValueList, or the first decoding
// error encountered; a container processing run abandons further
// entries on error rather than attempting to recover.
func (p *Processor) Process(packet []byte, root mdb.ContainerIdx) (*value.ParameterValueList, error) {
	if len(packet) > p.maxPacketSize {
		return nil, fmt.Errorf("%w: packet is %d bytes, limit is %d", errs.ErrPacketTooLarge, len(packet), p.maxPacketSize)
	}

	ctx := &procCtx{
		m:         p.M,
		extractor: p.extractor,
		cal:       p.calibrator,
		evals:     p.Evaluators,
		children:  p.Children,
		result:    value.NewParameterValueList(),
		log:       p.log,
	}

	r := bitbuf.Wrap(packet)
	if err := ctx.extractContainer(r, root, 0); err != nil {
		return nil, err
	}

	return ctx.result, nil
}

// procCtx threads the mutable decoding state (bit cursor, accumulated
// values) through one Process call's recursive descent.
type procCtx struct {
	m         *mdb.MissionDatabase
	extractor *codec.Extractor
	cal       *calibrate.Calibrator
	evals     EvaluatorSet
	children  ChildIndex
	result    *value.ParameterValueList
	log       *logging.ZapEventLogger
}

// CurrentValue implements criteria.Context.
func (c *procCtx) CurrentValue(pidx mdb.ParameterIdx, useCalibrated bool) (value.Value, bool) {
	pv, ok := c.result.LastInserted(pidx)
	if !ok {
		return value.Value{}, false
	}
	if useCalibrated {
		return pv.EngValue, true
	}
	return pv.RawValue, true
}

// CurrentUint implements codec.DimensionResolver.
func (c *procCtx) CurrentUint(pidx mdb.ParameterIdx) (uint64, bool) {
	pv, ok := c.result.LastInserted(pidx)
	if !ok {
		return 0, false
	}
	switch pv.EngValue.Kind {
	case value.KindUint64:
		return pv.EngValue.AsUint64(), true
	case value.KindInt64:
		x := pv.EngValue.AsInt64()
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	default:
		return 0, false
	}
}

const maxInheritanceDepth = 64

func (c *procCtx) extractContainer(r *bitbuf.Reader, idx mdb.ContainerIdx, depth int) error {
	if depth > maxInheritanceDepth {
		return fmt.Errorf("%w: container inheritance depth exceeded %d", errs.ErrCyclicInheritance, maxInheritanceDepth)
	}

	sc := c.m.ContainerByIdx(idx)
	name := c.m.NameToString(sc.Ndescr.Name)

	for i := range sc.Entries {
		entry := &sc.Entries[i]

		if entry.IncludeCondition.Valid() {
			result := c.evaluate(entry.IncludeCondition)
			if result != criteria.MatchOK {
				continue
			}
		}

		if entry.LocationInContainer != nil {
			newPos, err := c.repositionedBit(r, *entry.LocationInContainer)
			if err != nil {
				return err
			}
			if newPos < 0 || newPos > r.Bitsize() {
				return fmt.Errorf(
					"%w: error when extracting entry from container %s. bit position %d is outside the container (size in bits: %d)",
					errs.ErrOutOfBounds, name, newPos, r.Bitsize(),
				)
			}
			r.SetPosition(newPos)
		}

		if err := c.extractEntry(r, entry, depth); err != nil {
			return fmt.Errorf("container %s: %w", name, err)
		}
	}

	for _, childIdx := range c.children.Children(idx) {
		child := c.m.ContainerByIdx(childIdx)
		result := criteria.MatchOK
		if child.RestrictionCriteria.Valid() {
			result = c.evaluate(child.RestrictionCriteria)
		}

		switch result {
		case criteria.MatchOK:
			if err := c.extractContainer(r, childIdx, depth+1); err != nil {
				return err
			}
		case criteria.MatchNOK:
			c.log.Debugf("container %s: inheritance child %s restriction not satisfied (NOK)", name, c.m.NameToString(child.Ndescr.Name))
		case criteria.MatchUndef:
			c.log.Infof("container %s: inheritance child %s restriction undefined (UNDEF)", name, c.m.NameToString(child.Ndescr.Name))
		case criteria.MatchError:
			c.log.Warnf("container %s: inheritance child %s restriction errored (ERROR)", name, c.m.NameToString(child.Ndescr.Name))
		}
	}

	return nil
}

func (c *procCtx) repositionedBit(r *bitbuf.Reader, loc mdb.LocationInContainerInBits) (int, error) {
	switch loc.ReferenceLocation {
	case mdb.ReferenceContainerStart:
		return loc.LocationInBits, nil
	case mdb.ReferencePreviousEntry:
		return r.Position() + loc.LocationInBits, nil
	default:
		return 0, fmt.Errorf("%w: unknown reference location type %d", errs.ErrInvalidMdb, loc.ReferenceLocation)
	}
}

func (c *procCtx) evaluate(idx mdb.MatchCriteriaIdx) criteria.MatchResult {
	ev := c.evals.Evaluator(idx)
	if ev == nil {
		return criteria.MatchError
	}
	return ev.Evaluate(c)
}

func (c *procCtx) extractEntry(r *bitbuf.Reader, entry *mdb.ContainerEntry, depth int) error {
	switch entry.Data.Kind {
	case mdb.EntryParameterRef:
		return c.extractParameter(r, entry.Data.ParameterRef)
	case mdb.EntryContainerRef:
		return c.extractContainer(r, entry.Data.ContainerRef, depth+1)
	case mdb.EntryIndirectParameterRef, mdb.EntryArrayParameterRef:
		return fmt.Errorf("%w: indirect and array-parameter container entries are not implemented", errs.ErrDecodingError)
	default:
		return fmt.Errorf("%w: unknown container entry kind %d", errs.ErrInvalidMdb, entry.Data.Kind)
	}
}

func (c *procCtx) extractParameter(r *bitbuf.Reader, pidx mdb.ParameterIdx) error {
	if !pidx.Valid() {
		// The __yamcs_ignore sentinel: skip without consuming bits or
		// producing a value.
		return nil
	}

	param := c.m.ParameterByIdx(pidx)
	if !param.Ptype.Valid() {
		return fmt.Errorf("%w: %s", errs.ErrNoDataTypeAvailable, c.m.NameToString(param.Ndescr.Name))
	}

	raw, err := c.extractor.Extract(r, param.Ptype, c)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", c.m.NameToString(param.Ndescr.Name), err)
	}

	eng, err := c.cal.Calibrate(raw, param.Ptype)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", c.m.NameToString(param.Ndescr.Name), err)
	}

	c.result.Push(value.ParameterValue{Pidx: pidx, RawValue: raw, EngValue: eng})
	return nil
}
