package lvmbin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
)

const metadataAreaSignature = "\x20LVM2\x20x[5A%r0N*>"

const expectedMetadataVersion = uint32(1)

// RawLocation is one entry of a MetadataAreaHeader's location array: a
// byte range (relative to the metadata area's own start) carrying one copy
// of the textual volume-group descriptor, plus its own checksum and flags.
type RawLocation struct {
	DataAreaOffset uint64
	DataAreaSize   uint64
	Checksum       uint32
	Flags          uint32
}

func (r RawLocation) isTerminator() bool {
	return r.DataAreaOffset == 0 && r.DataAreaSize == 0 && r.Checksum == 0 && r.Flags == 0
}

// MetadataAreaHeader is the MetadataAreaHeader from the data model.
type MetadataAreaHeader struct {
	Checksum           uint32
	Signature          [16]byte
	Version            uint32
	MetadataAreaOffset uint64
	MetadataAreaSize   uint64
	RawLocations       []RawLocation
}

// DecodeMetadataAreaHeader reads a MetadataAreaHeader from the 512-byte
// sheet at the start of a metadata area.
func DecodeMetadataAreaHeader(buf []byte, log *lvmlog.Logger) (*MetadataAreaHeader, error) {
	const fixedLen = 4 + 16 + 4 + 8 + 8
	if len(buf) < fixedLen {
		return nil, lvmerr.NewParseError("metadata area header", 0, fmt.Errorf("%w: need %d bytes, have %d", lvmerr.Io, fixedLen, len(buf)))
	}

	h := &MetadataAreaHeader{}
	h.Checksum = binary.LittleEndian.Uint32(buf[0:4])
	copy(h.Signature[:], buf[4:20])
	if string(h.Signature[:]) != metadataAreaSignature {
		log.Trace("metadata area signature mismatch", "got", fmt.Sprintf("%q", h.Signature[:]))
		return nil, fmt.Errorf("%w: metadata area signature", lvmerr.WrongMagic)
	}

	h.Version = binary.LittleEndian.Uint32(buf[20:24])
	if h.Version != expectedMetadataVersion {
		log.Trace("unexpected metadata area version", "version", h.Version)
	}

	h.MetadataAreaOffset = binary.LittleEndian.Uint64(buf[24:32])
	h.MetadataAreaSize = binary.LittleEndian.Uint64(buf[32:40])

	rest := buf[40:]
	pos := int64(40)
	for {
		if len(rest) < 24 {
			return nil, lvmerr.NewParseError("metadata area raw locations", pos, fmt.Errorf("%w: truncated raw location", lvmerr.Io))
		}
		loc := RawLocation{
			DataAreaOffset: binary.LittleEndian.Uint64(rest[0:8]),
			DataAreaSize:   binary.LittleEndian.Uint64(rest[8:16]),
			Checksum:       binary.LittleEndian.Uint32(rest[16:20]),
			Flags:          binary.LittleEndian.Uint32(rest[20:24]),
		}
		rest = rest[24:]
		pos += 24
		if loc.isTerminator() {
			break
		}
		h.RawLocations = append(h.RawLocations, loc)
	}

	log.Trace("decoded metadata area header",
		"version", h.Version,
		"metadata_area_offset", h.MetadataAreaOffset,
		"metadata_area_size", h.MetadataAreaSize,
		"raw_locations", len(h.RawLocations),
	)
	return h, nil
}

// ReadMetadataText reads every raw location's bytes from r, relative to
// metadataAreaStart (the absolute PV byte offset of the metadata area this
// header describes), concatenates them in descriptor order, and truncates
// at the first NUL byte (the format reserves trailing space after the
// document and does not guarantee it is NUL-padded consistently; stopping
// at the first NUL is the documented-compatible behavior). Anything after
// the NUL (or after the concatenated bytes, if no NUL is present) within
// the read data-area bytes is returned separately as trailing garbage for
// forensic diagnostics, never treated as an error.
func ReadMetadataText(r io.ReadSeeker, metadataAreaStart uint64, h *MetadataAreaHeader, log *lvmlog.Logger) (text []byte, trailing []byte, err error) {
	if len(h.RawLocations) == 0 {
		return nil, nil, lvmerr.MissingMetadata
	}

	var all []byte
	for i, loc := range h.RawLocations {
		if loc.DataAreaSize == 0 {
			continue
		}
		at := metadataAreaStart + loc.DataAreaOffset
		if _, err := r.Seek(int64(at), io.SeekStart); err != nil {
			return nil, nil, fmt.Errorf("%w: seek raw location %d: %v", lvmerr.Io, i, err)
		}
		buf := make([]byte, loc.DataAreaSize)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, nil, fmt.Errorf("%w: read raw location %d (%d bytes at %d): %v", lvmerr.Io, i, loc.DataAreaSize, at, err)
		}
		log.Trace("read metadata raw location", "index", i, "offset", at, "size", loc.DataAreaSize)
		all = append(all, buf...)
	}

	if all == nil {
		return nil, nil, lvmerr.MissingMetadata
	}

	if nul := bytes.IndexByte(all, 0); nul >= 0 {
		text, trailing = all[:nul], all[nul:]
	} else {
		text = all
	}
	log.Debug("metadata text extracted", "text_len", len(text), "trailing_len", len(trailing))
	return text, trailing, nil
}
