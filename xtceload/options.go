package xtceload

import (
	"github.com/kosmodb/xtce/bitbuf"
	"github.com/kosmodb/xtce/internal/options"
)

// loaderConfig holds the knobs a LoaderOption can set on a loader before
// build runs.
type loaderConfig struct {
	defaultByteOrder bitbuf.ByteOrder
	strict           bool
}

func defaultLoaderConfig() loaderConfig {
	return loaderConfig{defaultByteOrder: bitbuf.BigEndian}
}

// LoaderOption configures Load/LoadFiles.
type LoaderOption = options.Option[*loaderConfig]

// WithDefaultByteOrder sets the byte order assumed when an
// IntegerDataEncoding element omits its byteOrder attribute. It has no
// effect on FloatDataEncoding, which is always read big-endian. XTCE
// itself defaults to big-endian; this lets a caller that
// knows its mission database always targets a little-endian platform
// avoid annotating every encoding element.
func WithDefaultByteOrder(order bitbuf.ByteOrder) LoaderOption {
	return options.NoError(func(c *loaderConfig) {
		c.defaultByteOrder = order
	})
}

// WithStrict rejects an unrecognized comparisonOperator value instead of
// silently falling back to the XTCE default, so such typos in
// hand-authored XTCE documents surface as load errors rather than
// silently-wrong decodes. Other enumerated attributes (encoding,
// byteOrder) still fall back to their defaults in strict mode.
func WithStrict(strict bool) LoaderOption {
	return options.NoError(func(c *loaderConfig) {
		c.strict = strict
	})
}
