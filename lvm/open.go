// Package lvm is the single exported entry point: it drives the binary
// header codec, the metadata text parser, the typed-map deserializer, and
// volume-group validation to produce an OpenedPV, and hands out LVStream
// handles for its logical volumes.
package lvm

import (
	"fmt"
	"io"

	"github.com/forensicxlab/exhume-lvm/internal/lvmbin"
	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmmodel"
	"github.com/forensicxlab/exhume-lvm/internal/lvmtext"
)

// Open reads the label, PV header, and metadata area from reader (positioned
// at the start of a single LVM2 physical volume, offset 0 = the zero sheet),
// parses and validates its volume-group metadata, and returns a handle ready
// to enumerate and open logical volumes. reader is exclusively borrowed for
// the duration of the call; ownership reverts to the caller on return.
func Open(reader io.ReadSeeker, opts ...Option) (*OpenedPV, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	log := o.Logger

	// Step 1-2: skip the leading zero sheet, read and decode the label.
	if _, err := reader.Seek(lvmbin.LabelSector*lvmbin.SectorSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to label sector: %v", lvmerr.Io, err)
	}
	labelSheet := make([]byte, lvmbin.SectorSize)
	if _, err := io.ReadFull(reader, labelSheet); err != nil {
		return nil, fmt.Errorf("%w: read label sheet: %v", lvmerr.Io, err)
	}
	label, err := lvmbin.DecodeLabelHeader(labelSheet, log)
	if err != nil {
		return nil, err
	}
	log.Debug("label decoded", "sector_number", label.SectorNumber, "data_offset", label.DataOffset)

	// Step 3: decode the PV header from the same sheet.
	pvHeader, err := lvmbin.DecodePVHeader(labelSheet, label.DataOffset, log)
	if err != nil {
		return nil, err
	}
	log.Debug("pv header decoded", "pv_ident", pvHeader.ID(), "metadata_areas", len(pvHeader.MetadataAreas))
	if o.VerifyChecksums {
		log.Info("label checksum (not recomputed, diagnostic only)", "checksum", label.Checksum)
	}

	// Step 4: take the first metadata-area descriptor.
	if len(pvHeader.MetadataAreas) == 0 {
		return nil, lvmerr.MissingMetadata
	}
	mdDescriptor := pvHeader.MetadataAreas[0]

	// Step 5: seek to it, read and decode the metadata-area header.
	if _, err := reader.Seek(int64(mdDescriptor.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to metadata area: %v", lvmerr.Io, err)
	}
	mahSheet := make([]byte, lvmbin.SectorSize)
	if _, err := io.ReadFull(reader, mahSheet); err != nil {
		return nil, fmt.Errorf("%w: read metadata area header: %v", lvmerr.Io, err)
	}
	mah, err := lvmbin.DecodeMetadataAreaHeader(mahSheet, log)
	if err != nil {
		return nil, err
	}
	log.Debug("metadata area header decoded", "raw_locations", len(mah.RawLocations))
	if o.VerifyChecksums {
		log.Info("metadata area checksum (not recomputed, diagnostic only)", "checksum", mah.Checksum)
	}

	// Step 6: read every raw location's bytes and stop at the first NUL.
	text, trailingBinary, err := lvmbin.ReadMetadataText(reader, mdDescriptor.Offset, mah, log)
	if err != nil {
		return nil, err
	}

	// Step 7: parse, deserialize, validate.
	doc, err := lvmtext.Parse(text)
	if err != nil {
		return nil, err
	}
	if len(doc.Trailing) > 0 {
		log.Debug("trailing metadata text after document", "trailing_len", len(doc.Trailing))
	}
	vg, err := lvmmodel.Deserialize(doc)
	if err != nil {
		return nil, err
	}
	pvName, err := lvmmodel.ResolvePVName(vg, pvHeader.ID())
	if err != nil {
		return nil, err
	}
	log.Info("volume group validated", "vg_name", vg.Name, "pv_name", pvName, "lv_count", vg.LogicalVolumes.Len())

	// Step 8: return the opened handle.
	return &OpenedPV{
		vg:               vg,
		pvHeader:         pvHeader,
		pvName:           pvName,
		reader:           reader,
		resolver:         o.Resolver,
		log:              log,
		trailingBinary:   trailingBinary,
		trailingMetadata: doc.Trailing,
	}, nil
}
