package container

import (
	logging "github.com/ipfs/go-log/v2"

	"github.com/kosmodb/xtce/internal/options"
)

// ContainerProcessorOption configures a Processor at construction time.
type ContainerProcessorOption = options.Option[*Processor]

// WithMaxPacketSize overrides the packet size limit Process enforces,
// replacing the package default (MaxPacketSize).
func WithMaxPacketSize(n int) ContainerProcessorOption {
	return options.NoError(func(p *Processor) {
		p.maxPacketSize = n
	})
}

// WithLogger overrides the logger a Processor uses for inheritance
// dispatch diagnostics, replacing the package-level default.
func WithLogger(l *logging.ZapEventLogger) ContainerProcessorOption {
	return options.NoError(func(p *Processor) {
		p.log = l
	})
}
