package lvm

import (
	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
	"github.com/forensicxlab/exhume-lvm/internal/lvmstream"
	"github.com/go-logr/logr"
)

// Options holds the configuration a chain of Option closures builds up,
// mirroring the functional-options pattern used throughout this family of
// forensic readers.
type Options struct {
	Logger          *lvmlog.Logger
	VerifyChecksums bool
	Resolver        *lvmstream.Multiplexer
}

// Option configures Open.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Logger: lvmlog.Default()}
}

// WithLogger attaches a logr.Logger; every decode step logs through it at
// Trace, phase transitions at Debug.
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) {
		o.Logger = lvmlog.New(logger)
	}
}

// WithVerifyChecksums makes Open log the label and metadata-area header
// checksums at Info. The checksums are not recomputed or compared against
// the data, and they never fail Open.
func WithVerifyChecksums(verify bool) Option {
	return func(o *Options) {
		o.VerifyChecksums = verify
	}
}

// WithResolver attaches a multi-PV reader multiplexer so LV streams opened
// from this PV can follow striped segments onto other physical volumes
// instead of failing with ForeignPV.
func WithResolver(resolver *lvmstream.Multiplexer) Option {
	return func(o *Options) {
		o.Resolver = resolver
	}
}
