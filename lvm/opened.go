package lvm

import (
	"fmt"
	"io"
	"iter"

	"github.com/forensicxlab/exhume-lvm/internal/lvmbin"
	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
	"github.com/forensicxlab/exhume-lvm/internal/lvmmodel"
	"github.com/forensicxlab/exhume-lvm/internal/lvmstream"
)

// OpenedPV is the validated result of Open: a physical volume whose
// metadata has been decoded, parsed, and cross-referenced against itself.
type OpenedPV struct {
	vg       *lvmmodel.VolumeGroup
	pvHeader *lvmbin.PVHeader
	pvName   string
	reader   io.ReadSeeker
	resolver *lvmstream.Multiplexer
	log      *lvmlog.Logger

	trailingBinary   []byte // bytes after the first NUL within the raw metadata-area read
	trailingMetadata []byte // bytes after the outermost parsed element(s)
}

// PVName returns the name this reader's physical volume is known by within
// its volume group.
func (o *OpenedPV) PVName() string { return o.pvName }

// PVID returns the 32-character PV UUID from the binary PV header.
func (o *OpenedPV) PVID() string { return o.pvHeader.ID() }

// VGName returns the volume group's name.
func (o *OpenedPV) VGName() string { return o.vg.Name }

// VGID returns the volume group's UUID.
func (o *OpenedPV) VGID() string { return o.vg.ID }

// ExtentSize returns the volume group's extent size in bytes.
func (o *OpenedPV) ExtentSize() int64 { return o.vg.ExtentSize * lvmbin.SectorSize }

// MetadataArea returns the PV-relative byte offset and size of the
// metadata area Open read the volume-group descriptor from (the first
// entry in the PV header's metadata-area descriptor array).
func (o *OpenedPV) MetadataArea() (offset, size uint64) {
	md := o.pvHeader.MetadataAreas[0]
	return md.Offset, md.Size
}

// VolumeGroup exposes the fully validated typed model for callers within
// this module that need more than the summary accessors above (the layout
// reporter's PV/segment dump, in particular).
func (o *OpenedPV) VolumeGroup() *lvmmodel.VolumeGroup { return o.vg }

// TrailingMetadata returns whatever bytes followed the outermost parsed
// metadata element(s); the format reserves this space, and the source this
// parser is compatible with neither guarantees nor requires it be empty.
// Logged at Debug when Open runs, never treated as an error.
func (o *OpenedPV) TrailingMetadata() []byte { return o.trailingMetadata }

// RawTrailingBytes returns the bytes that followed the first NUL within the
// raw metadata-area read, before text parsing ever saw them — a second,
// lower-level diagnostic view of the same reserved tail space.
func (o *OpenedPV) RawTrailingBytes() []byte { return o.trailingBinary }

// LVHandle identifies one logical volume without opening it.
type LVHandle struct {
	Name string
	ID   string
}

// LVSummary is LVHandle plus its decoded size, for callers that want every
// logical volume's extent without opening each one individually.
type LVSummary struct {
	Name          string
	ID            string
	SizeInExtents int64
}

// LVs returns a lazy, restartable sequence of this PV's logical volumes in
// metadata insertion order. Each call to the returned iter.Seq starts a
// fresh traversal.
func (o *OpenedPV) LVs() iter.Seq[LVHandle] {
	return func(yield func(LVHandle) bool) {
		for _, name := range o.vg.LogicalVolumes.Keys() {
			lv, _ := o.vg.LogicalVolumes.Get(name)
			if !yield(LVHandle{Name: lv.Name, ID: lv.ID}) {
				return
			}
		}
	}
}

// LogicalVolumes eagerly lists every logical volume with its decoded size,
// for callers that want a concrete slice rather than iterating LVs().
func (o *OpenedPV) LogicalVolumes() []LVSummary {
	out := make([]LVSummary, 0, o.vg.LogicalVolumes.Len())
	for _, name := range o.vg.LogicalVolumes.Keys() {
		lv, _ := o.vg.LogicalVolumes.Get(name)
		out = append(out, LVSummary{Name: lv.Name, ID: lv.ID, SizeInExtents: lv.SizeInExtents})
	}
	return out
}

// OpenLVByName opens the named logical volume as a stream over reader,
// which must hold the same bytes as the reader Open was originally called
// with (this PV's own image); reader may be a distinct handle to the same
// device, since an LVStream holds it exclusively for its own lifetime.
func (o *OpenedPV) OpenLVByName(name string, reader io.ReadSeeker) (*lvmstream.LVStream, error) {
	lv, ok := o.vg.LogicalVolumes.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: no logical volume named %q", lvmerr.Serde, name)
	}
	return lvmstream.NewLVStream(o.vg, &lv, reader, o.pvName, o.resolver, o.log), nil
}

// OpenLVByID opens the logical volume identified by uuid (compared with
// dashes stripped, so both on-disk and display forms work) as a stream over
// reader, with the same reader-ownership contract as OpenLVByName.
func (o *OpenedPV) OpenLVByID(uuid string, reader io.ReadSeeker) (*lvmstream.LVStream, error) {
	target := lvmmodel.NormalizeID(uuid)
	for _, name := range o.vg.LogicalVolumes.Keys() {
		lv, _ := o.vg.LogicalVolumes.Get(name)
		if lvmmodel.NormalizeID(lv.ID) == target {
			return lvmstream.NewLVStream(o.vg, &lv, reader, o.pvName, o.resolver, o.log), nil
		}
	}
	return nil, fmt.Errorf("%w: no logical volume with id %q", lvmerr.Serde, uuid)
}
