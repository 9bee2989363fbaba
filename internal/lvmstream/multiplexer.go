package lvmstream

import "github.com/forensicxlab/exhume-lvm/internal/lvmsource"

// Multiplexer is the PV-UUID-keyed reader registry lvmsource owns; it is
// re-exported here so callers assembling a multi-PV LVStream only need to
// import this package.
type Multiplexer = lvmsource.Multiplexer

// NewMultiplexer returns an empty PV-UUID to reader lookup.
func NewMultiplexer() *Multiplexer { return lvmsource.NewMultiplexer() }
