// Package lvmstream translates LV-relative byte offsets into PV-relative
// byte offsets through an LV's segment/stripe map, and exposes each LV as a
// Read+Seek virtual byte stream over the reader backing a single PV.
package lvmstream

import (
	"fmt"
	"sort"

	"github.com/forensicxlab/exhume-lvm/internal/lvmbin"
	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmmodel"
)

// Location is a fully resolved physical byte offset: which named PV it
// lives on, and the byte offset into that PV's raw image (offset 0 = the
// PV's own zero sheet, same origin the binary header codec uses).
type Location struct {
	PVName     string
	ByteOffset int64
}

// Translate resolves a virtual byte offset v (0 <= v < lv.SizeInExtents *
// extentSizeBytes) to the PV and byte offset that hold it, per the linear
// and striped formulas in the offset-translation design.
func Translate(vg *lvmmodel.VolumeGroup, lv *lvmmodel.LVRecord, v int64) (Location, error) {
	extentSizeBytes := vg.ExtentSize * lvmbin.SectorSize
	if extentSizeBytes <= 0 {
		return Location{}, fmt.Errorf("%w: non-positive extent size", lvmerr.Serde)
	}

	extent := v / extentSizeBytes
	rem := v % extentSizeBytes

	seg, ok := findSegment(lv, extent)
	if !ok {
		return Location{}, fmt.Errorf("%w: virtual offset %d (extent %d) outside lv %q", lvmerr.Serde, v, extent, lv.Name)
	}

	localExtent := extent - seg.StartExtent

	if seg.StripeCount <= 1 {
		return translateLinear(vg, seg, localExtent, rem, extentSizeBytes)
	}
	return translateStriped(vg, seg, localExtent, rem, extentSizeBytes)
}

// TranslateRun resolves v like Translate, and additionally reports how many
// bytes starting at v map contiguously (stride 1, same PV) before the next
// segment or stripe boundary, capped at maxLen. lvstream.Read uses this to
// split one caller-visible read into the minimum number of underlying
// seek-and-read calls.
func TranslateRun(vg *lvmmodel.VolumeGroup, lv *lvmmodel.LVRecord, v, maxLen int64) (Location, int64, error) {
	extentSizeBytes := vg.ExtentSize * lvmbin.SectorSize
	if extentSizeBytes <= 0 {
		return Location{}, 0, fmt.Errorf("%w: non-positive extent size", lvmerr.Serde)
	}

	extent := v / extentSizeBytes
	rem := v % extentSizeBytes

	seg, ok := findSegment(lv, extent)
	if !ok {
		return Location{}, 0, fmt.Errorf("%w: virtual offset %d (extent %d) outside lv %q", lvmerr.Serde, v, extent, lv.Name)
	}
	localExtent := extent - seg.StartExtent

	var loc Location
	var err error
	if seg.StripeCount <= 1 {
		loc, err = translateLinear(vg, seg, localExtent, rem, extentSizeBytes)
	} else {
		loc, err = translateStriped(vg, seg, localExtent, rem, extentSizeBytes)
	}
	if err != nil {
		return Location{}, 0, err
	}

	run := runLength(seg, localExtent, rem, extentSizeBytes)
	if run > maxLen {
		run = maxLen
	}
	return loc, run, nil
}

// runLength returns the number of contiguous virtual bytes available from
// the given position within seg before a segment or (for striped segments)
// stripe boundary is crossed.
func runLength(seg lvmmodel.SegmentRecord, localExtent, rem, extentSizeBytes int64) int64 {
	localByte := localExtent*extentSizeBytes + rem
	toSegEnd := seg.ExtentCount*extentSizeBytes - localByte

	if seg.StripeCount <= 1 {
		return toSegEnd
	}

	stripeBytes := seg.StripeSize * lvmbin.SectorSize
	if stripeBytes <= 0 {
		return toSegEnd
	}
	inStripe := localByte % stripeBytes
	toStripeEnd := stripeBytes - inStripe
	if toStripeEnd < toSegEnd {
		return toStripeEnd
	}
	return toSegEnd
}

// findSegment binary-searches lv's segments (sorted ascending by
// StartExtent by the deserializer) for the one covering extent.
func findSegment(lv *lvmmodel.LVRecord, extent int64) (lvmmodel.SegmentRecord, bool) {
	segs := lv.Segments.Values()
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].StartExtent+segs[i].ExtentCount > extent
	})
	if i >= len(segs) {
		return lvmmodel.SegmentRecord{}, false
	}
	s := segs[i]
	if extent < s.StartExtent || extent >= s.StartExtent+s.ExtentCount {
		return lvmmodel.SegmentRecord{}, false
	}
	return s, true
}

func translateLinear(vg *lvmmodel.VolumeGroup, seg lvmmodel.SegmentRecord, localExtent, rem, extentSizeBytes int64) (Location, error) {
	if len(seg.Stripes) == 0 {
		return Location{}, fmt.Errorf("%w: segment %q has no stripes", lvmerr.Serde, seg.Name)
	}
	stripe := seg.Stripes[0]
	pv, ok := vg.PhysicalVolumes.Get(stripe.PVName)
	if !ok {
		return Location{}, fmt.Errorf("%w: segment %q references unknown pv %q", lvmerr.Serde, seg.Name, stripe.PVName)
	}
	physicalExtent := stripe.PVExtentOffset + localExtent
	byteOffset := pv.PEStart*lvmbin.SectorSize + physicalExtent*extentSizeBytes + rem
	return Location{PVName: stripe.PVName, ByteOffset: byteOffset}, nil
}

func translateStriped(vg *lvmmodel.VolumeGroup, seg lvmmodel.SegmentRecord, localExtent, rem, extentSizeBytes int64) (Location, error) {
	k := seg.StripeCount
	if int64(len(seg.Stripes)) != k || k < 1 {
		return Location{}, fmt.Errorf("%w: segment %q stripe_count %d does not match %d stripes", lvmerr.Serde, seg.Name, k, len(seg.Stripes))
	}
	stripeBytes := seg.StripeSize * lvmbin.SectorSize
	if stripeBytes <= 0 {
		return Location{}, fmt.Errorf("%w: segment %q has non-positive stripe_size", lvmerr.Serde, seg.Name)
	}

	b := localExtent*extentSizeBytes + rem
	stripeIndex := (b / stripeBytes) % k
	run := b / (k * stripeBytes)
	inStripe := b % stripeBytes

	stripe := seg.Stripes[stripeIndex]
	pv, ok := vg.PhysicalVolumes.Get(stripe.PVName)
	if !ok {
		return Location{}, fmt.Errorf("%w: segment %q references unknown pv %q", lvmerr.Serde, seg.Name, stripe.PVName)
	}

	byteOffset := pv.PEStart*lvmbin.SectorSize + stripe.PVExtentOffset*extentSizeBytes + run*stripeBytes + inStripe
	return Location{PVName: stripe.PVName, ByteOffset: byteOffset}, nil
}
