package lvmstream

import (
	"fmt"
	"io"

	"github.com/forensicxlab/exhume-lvm/internal/lvmbin"
	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
	"github.com/forensicxlab/exhume-lvm/internal/lvmmodel"
)

// LVStream presents a logical volume as a single linearly addressable
// Read+Seek byte stream, translating virtual offsets through the VG's
// segment/extent map on every access. It holds the VG and the external
// reader for the duration of its own lifetime and moves the reader's
// position on every Read.
type LVStream struct {
	vg       *lvmmodel.VolumeGroup
	lv       *lvmmodel.LVRecord
	reader   io.ReadSeeker
	ownerPV  string // name of the PV that reader represents
	resolver *Multiplexer
	log      *lvmlog.Logger

	pos  int64
	size int64
}

// NewLVStream constructs a stream over lv, backed by reader which holds the
// bytes of the physical volume named ownerPV within vg. resolver may be nil;
// if non-nil it is consulted whenever a segment resolves to a PV other than
// ownerPV, instead of failing immediately with ForeignPV.
func NewLVStream(vg *lvmmodel.VolumeGroup, lv *lvmmodel.LVRecord, reader io.ReadSeeker, ownerPV string, resolver *Multiplexer, log *lvmlog.Logger) *LVStream {
	if log == nil {
		log = lvmlog.Default()
	}
	extentSizeBytes := vg.ExtentSize * lvmbin.SectorSize
	return &LVStream{
		vg:       vg,
		lv:       lv,
		reader:   reader,
		ownerPV:  ownerPV,
		resolver: resolver,
		log:      log,
		size:     lv.SizeInExtents * extentSizeBytes,
	}
}

// Size returns the virtual length of the stream in bytes
// (size_in_extents * extent_size).
func (s *LVStream) Size() int64 { return s.size }

// Read implements io.Reader. A read is split at segment and (within a
// striped segment) stripe boundaries; each sub-read issues one seek and
// read on the resolved reader. Short reads from the underlying reader are
// propagated unmodified, never retried.
func (s *LVStream) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}
	total := 0
	for total < len(p) && s.pos < s.size {
		remaining := int64(len(p) - total)
		maxLen := s.size - s.pos
		if remaining < maxLen {
			maxLen = remaining
		}

		loc, run, err := TranslateRun(s.vg, s.lv, s.pos, maxLen)
		if err != nil {
			return total, err
		}
		if run <= 0 {
			return total, fmt.Errorf("%w: zero-length translation at offset %d", lvmerr.Serde, s.pos)
		}

		reader, err := s.resolveReader(loc.PVName)
		if err != nil {
			return total, err
		}

		if _, err := reader.Seek(loc.ByteOffset, io.SeekStart); err != nil {
			return total, fmt.Errorf("%w: seek pv %q at %d: %v", lvmerr.Io, loc.PVName, loc.ByteOffset, err)
		}
		n, err := reader.Read(p[total : total+int(run)])
		total += n
		s.pos += int64(n)
		if err != nil && !(err == io.EOF && int64(n) == run) {
			return total, fmt.Errorf("%w: read pv %q at %d: %v", lvmerr.Io, loc.PVName, loc.ByteOffset, err)
		}
		if int64(n) < run {
			return total, nil
		}
	}
	return total, nil
}

// resolveReader returns the reader backing pvName: the stream's own reader
// if pvName is the owner PV, otherwise a lookup in resolver. Without a
// resolver, or if the resolver has nothing registered for pvName, this is
// the ForeignPV condition: failing loudly here beats silently reading the
// wrong bytes through the owner's reader.
func (s *LVStream) resolveReader(pvName string) (io.ReadSeeker, error) {
	if pvName == s.ownerPV {
		return s.reader, nil
	}
	if s.resolver == nil {
		s.log.Debug("foreign pv read rejected", "pv", pvName, "owner", s.ownerPV)
		return nil, fmt.Errorf("%w: segment on pv %q, stream owns pv %q", lvmerr.ForeignPV, pvName, s.ownerPV)
	}
	pv, ok := s.vg.PhysicalVolumes.Get(pvName)
	if !ok {
		return nil, fmt.Errorf("%w: segment on pv %q, stream owns pv %q", lvmerr.ForeignPV, pvName, s.ownerPV)
	}
	r := s.resolver.Get(lvmmodel.NormalizeID(pv.ID))
	if r == nil {
		s.log.Debug("foreign pv not in multiplexer", "pv", pvName, "owner", s.ownerPV)
		return nil, fmt.Errorf("%w: segment on pv %q, stream owns pv %q", lvmerr.ForeignPV, pvName, s.ownerPV)
	}
	return r, nil
}

// Seek implements io.Seeker. Seeking past the virtual length is permitted;
// subsequent reads yield io.EOF, matching conventional file semantics.
func (s *LVStream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.size + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", lvmerr.Io, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("%w: negative seek result %d", lvmerr.Io, abs)
	}
	s.pos = abs
	return abs, nil
}
