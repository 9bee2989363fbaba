// Package lvmbin decodes the fixed-offset, little-endian, checksum-bearing
// binary structures that precede the textual volume-group metadata on an
// LVM2 physical volume: the label header, the PV header, and the metadata
// area header with its descriptor arrays.
package lvmbin

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
)

// LabelSector is the 512-byte sheet index at which the label nominally
// lives (the leading zero sheet is skipped).
const LabelSector = 1

// SectorSize is the fundamental block size ("sheet") all offsets are
// expressed in.
const SectorSize = 512

const (
	labelSignature = "LABELONE"
	labelType      = "LVM2 001"
)

// LabelHeader is the PhysicalVolumeLabelHeader from the data model: the
// first structure read from a physical volume, identifying it as LVM2 and
// pointing at the PV header within the same sheet.
type LabelHeader struct {
	Signature    [8]byte
	SectorNumber uint64
	Checksum     uint32
	DataOffset   uint32
	Type         [8]byte
}

func (h *LabelHeader) String() string { return string(h.Signature[:]) }

// DecodeLabelHeader reads a LabelHeader from the start of buf (the 512-byte
// label sheet). It requires the signature and type to match exactly,
// returning lvmerr.WrongMagic otherwise; no checksum verification is
// performed, matching the format's own opportunistic use of it.
func DecodeLabelHeader(buf []byte, log *lvmlog.Logger) (*LabelHeader, error) {
	const minLen = 8 + 8 + 4 + 4 + 8
	if len(buf) < minLen {
		return nil, lvmerr.NewParseError("label header", 0, fmt.Errorf("%w: need %d bytes, have %d", lvmerr.Io, minLen, len(buf)))
	}

	h := &LabelHeader{}
	copy(h.Signature[:], buf[0:8])
	if string(h.Signature[:]) != labelSignature {
		log.Trace("label signature mismatch", "got", string(h.Signature[:]))
		return nil, fmt.Errorf("%w: signature %q", lvmerr.WrongMagic, h.Signature[:])
	}

	h.SectorNumber = binary.LittleEndian.Uint64(buf[8:16])
	h.Checksum = binary.LittleEndian.Uint32(buf[16:20])
	h.DataOffset = binary.LittleEndian.Uint32(buf[20:24])
	copy(h.Type[:], buf[24:32])
	if string(h.Type[:]) != labelType {
		log.Trace("label type mismatch", "got", string(h.Type[:]))
		return nil, fmt.Errorf("%w: type %q", lvmerr.WrongMagic, h.Type[:])
	}

	log.Trace("decoded label header",
		"sector_number", h.SectorNumber,
		"checksum", h.Checksum,
		"data_offset", h.DataOffset,
	)
	return h, nil
}
