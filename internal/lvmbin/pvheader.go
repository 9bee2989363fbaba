package lvmbin

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
)

// Descriptor is a (offset, size) byte-range pair relative to the start of
// the PV, used for both data-area and metadata-area descriptor arrays.
type Descriptor struct {
	Offset uint64
	Size   uint64
}

func (d Descriptor) isTerminator() bool { return d.Offset == 0 && d.Size == 0 }

// PVHeader is the PhysicalVolumeHeader from the data model.
type PVHeader struct {
	PVIdent       [32]byte
	PVSize        uint64
	DataAreas     []Descriptor
	MetadataAreas []Descriptor
}

// ID returns the 32-character ASCII PV UUID, dashes never present on disk.
func (h *PVHeader) ID() string { return string(h.PVIdent[:]) }

// DecodePVHeader reads a PVHeader from sheet sliced at dataOffset, as
// pointed to by the label header's DataOffset field.
func DecodePVHeader(sheet []byte, dataOffset uint32, log *lvmlog.Logger) (*PVHeader, error) {
	if int(dataOffset) > len(sheet) {
		return nil, lvmerr.NewParseError("pv header", int64(dataOffset), fmt.Errorf("%w: data_offset %d beyond sheet length %d", lvmerr.Io, dataOffset, len(sheet)))
	}
	buf := sheet[dataOffset:]

	const fixedLen = 32 + 8
	if len(buf) < fixedLen {
		return nil, lvmerr.NewParseError("pv header", int64(dataOffset), fmt.Errorf("%w: need %d bytes, have %d", lvmerr.Io, fixedLen, len(buf)))
	}

	h := &PVHeader{}
	copy(h.PVIdent[:], buf[0:32])
	h.PVSize = binary.LittleEndian.Uint64(buf[32:40])
	rest := buf[40:]
	pos := int64(dataOffset) + 40

	dataAreas, rest, pos, err := decodeDescriptorArray(rest, pos)
	if err != nil {
		return nil, lvmerr.NewParseError("pv header data area descriptors", pos, err)
	}
	h.DataAreas = dataAreas

	metadataAreas, _, _, err := decodeDescriptorArray(rest, pos)
	if err != nil {
		return nil, lvmerr.NewParseError("pv header metadata area descriptors", pos, err)
	}
	h.MetadataAreas = metadataAreas

	log.Trace("decoded pv header",
		"pv_ident", h.ID(),
		"pv_size", h.PVSize,
		"data_areas", len(h.DataAreas),
		"metadata_areas", len(h.MetadataAreas),
	)
	return h, nil
}

// decodeDescriptorArray reads (u64, u64) pairs from buf until an all-zero
// pair, which terminates the array and is not emitted. It returns the
// decoded descriptors, the slice remaining after the terminator, and the
// absolute byte position immediately after the terminator (for error
// reporting by the caller).
func decodeDescriptorArray(buf []byte, pos int64) ([]Descriptor, []byte, int64, error) {
	var out []Descriptor
	for {
		if len(buf) < 16 {
			return nil, nil, pos, fmt.Errorf("%w: truncated descriptor at byte %d", lvmerr.Io, pos)
		}
		d := Descriptor{
			Offset: binary.LittleEndian.Uint64(buf[0:8]),
			Size:   binary.LittleEndian.Uint64(buf[8:16]),
		}
		buf = buf[16:]
		pos += 16
		if d.isTerminator() {
			return out, buf, pos, nil
		}
		out = append(out, d)
	}
}
