package lvmmodel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
)

// VolumeGroup is the typed projection of a metadata document's single
// top-level section.
type VolumeGroup struct {
	Name            string
	ID              string
	SeqNo           int64
	Format          string
	Status          []string
	ExtentSize      int64 // sheets
	MaxLV           int64
	MaxPV           int64
	PhysicalVolumes *OrderedMap[PVRecord]
	LogicalVolumes  *OrderedMap[LVRecord]
}

// PVRecord is one entry of VolumeGroup.PhysicalVolumes.
type PVRecord struct {
	Name       string
	ID         string
	Device     string
	Status     []string
	PEStart    int64 // sheets
	DeviceSize int64 // sheets
}

// LVRecord is one entry of VolumeGroup.LogicalVolumes.
type LVRecord struct {
	Name          string
	ID            string
	Status        []string
	SegmentCount  int64
	Segments      *OrderedMap[SegmentRecord]
	SizeInExtents int64
}

// Stripe is one (pv_name, pv_extent_offset) pair within a striped segment.
type Stripe struct {
	PVName         string
	PVExtentOffset int64
}

// SegmentRecord is one entry of LVRecord.Segments.
type SegmentRecord struct {
	Name        string
	StartExtent int64
	ExtentCount int64
	Type        string
	StripeCount int64
	StripeSize  int64 // sheets
	Stripes     []Stripe
}

// Deserialize projects a parsed Document onto a VolumeGroup, enforcing that
// the document carries exactly one top-level section.
func Deserialize(doc *Document) (*VolumeGroup, error) {
	if len(doc.Elements) != 1 {
		return nil, fmt.Errorf("%w: document has %d top-level sections", lvmerr.MultipleVGsError, len(doc.Elements))
	}
	root := &doc.Elements[0]
	if !root.IsSection {
		return nil, fmt.Errorf("%w: top-level element %q is not a section", lvmerr.Serde, root.Name)
	}
	return deserializeVG(root.Name, root)
}

func deserializeVG(name string, el *Element) (*VolumeGroup, error) {
	id, err := requireStr(el, "id")
	if err != nil {
		return nil, err
	}
	seqno, err := requireInt(el, "seqno")
	if err != nil {
		return nil, err
	}
	format, err := optionalStr(el, "format")
	if err != nil {
		return nil, err
	}
	status, err := optionalStrArray(el, "status")
	if err != nil {
		return nil, err
	}
	extentSize, err := requireInt(el, "extent_size")
	if err != nil {
		return nil, err
	}
	if extentSize <= 0 || extentSize > math.MaxInt64/512 {
		return nil, fmt.Errorf("%w: extent_size %d out of range", lvmerr.Serde, extentSize)
	}
	maxLV, err := optionalInt(el, "max_lv", 0)
	if err != nil {
		return nil, err
	}
	maxPV, err := optionalInt(el, "max_pv", 0)
	if err != nil {
		return nil, err
	}

	pvsSection, err := requireSection(el, "physical_volumes")
	if err != nil {
		return nil, err
	}
	pvs, err := deserializeKeyedMap(pvsSection, deserializePV)
	if err != nil {
		return nil, err
	}

	lvsSection, err := requireSection(el, "logical_volumes")
	if err != nil {
		return nil, err
	}
	lvs, err := deserializeKeyedMap(lvsSection, deserializeLV)
	if err != nil {
		return nil, err
	}

	return &VolumeGroup{
		Name:            name,
		ID:              id,
		SeqNo:           seqno,
		Format:          format,
		Status:          status,
		ExtentSize:      extentSize,
		MaxLV:           maxLV,
		MaxPV:           maxPV,
		PhysicalVolumes: pvs,
		LogicalVolumes:  lvs,
	}, nil
}

func deserializePV(name string, el *Element) (PVRecord, error) {
	id, err := requireStr(el, "id")
	if err != nil {
		return PVRecord{}, err
	}
	device, err := optionalStr(el, "device")
	if err != nil {
		return PVRecord{}, err
	}
	status, err := optionalStrArray(el, "status")
	if err != nil {
		return PVRecord{}, err
	}
	peStart, err := requireInt(el, "pe_start")
	if err != nil {
		return PVRecord{}, err
	}
	devSize, err := optionalInt(el, "dev_size", 0)
	if err != nil {
		return PVRecord{}, err
	}
	return PVRecord{Name: name, ID: id, Device: device, Status: status, PEStart: peStart, DeviceSize: devSize}, nil
}

func deserializeLV(name string, el *Element) (LVRecord, error) {
	id, err := requireStr(el, "id")
	if err != nil {
		return LVRecord{}, err
	}
	status, err := optionalStrArray(el, "status")
	if err != nil {
		return LVRecord{}, err
	}
	segCount, err := optionalInt(el, "segment_count", 0)
	if err != nil {
		return LVRecord{}, err
	}

	// Unlike physical_volumes/logical_volumes, an LV's segments are not
	// wrapped in a named container section: segment1, segment2, ... appear
	// as direct child sections alongside the LV's own scalar fields.
	var segs []SegmentRecord
	for i := range el.Children {
		c := &el.Children[i]
		if !c.IsSection {
			continue
		}
		seg, err := deserializeSegment(c.Name, c)
		if err != nil {
			return LVRecord{}, err
		}
		segs = append(segs, seg)
	}
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].StartExtent < segs[j].StartExtent })

	segments := NewOrderedMap[SegmentRecord]()
	for _, s := range segs {
		if err := segments.Set(s.Name, s); err != nil {
			return LVRecord{}, err
		}
	}

	totalExtents, err := validateSegmentCoverage(segs)
	if err != nil {
		return LVRecord{}, fmt.Errorf("lv %q: %w", name, err)
	}

	return LVRecord{
		Name:          name,
		ID:            id,
		Status:        status,
		SegmentCount:  segCount,
		Segments:      segments,
		SizeInExtents: totalExtents,
	}, nil
}

// validateSegmentCoverage enforces that segments partition
// [0, total_extents) with no gaps or overlaps. Segments must already be
// sorted by StartExtent ascending.
func validateSegmentCoverage(segs []SegmentRecord) (int64, error) {
	var cursor int64
	for _, s := range segs {
		if s.StartExtent != cursor {
			return 0, fmt.Errorf("%w: segment %q starts at extent %d, expected %d (gap or overlap)", lvmerr.Serde, s.Name, s.StartExtent, cursor)
		}
		cursor += s.ExtentCount
	}
	return cursor, nil
}

func deserializeSegment(name string, el *Element) (SegmentRecord, error) {
	startExtent, err := requireInt(el, "start_extent")
	if err != nil {
		return SegmentRecord{}, err
	}
	extentCount, err := requireInt(el, "extent_count")
	if err != nil {
		return SegmentRecord{}, err
	}
	typ, err := requireStr(el, "type")
	if err != nil {
		return SegmentRecord{}, err
	}
	stripeCount, err := optionalInt(el, "stripe_count", 1)
	if err != nil {
		return SegmentRecord{}, err
	}
	stripeSize, err := optionalInt(el, "stripe_size", 0)
	if err != nil {
		return SegmentRecord{}, err
	}
	stripes, err := deserializeStripes(el)
	if err != nil {
		return SegmentRecord{}, err
	}

	if typ == "striped" {
		if stripeCount < 1 {
			return SegmentRecord{}, fmt.Errorf("%w: segment %q has stripe_count %d, must be >= 1", lvmerr.Serde, name, stripeCount)
		}
		if int64(len(stripes)) != stripeCount {
			return SegmentRecord{}, fmt.Errorf("%w: segment %q declares stripe_count %d but has %d stripes", lvmerr.Serde, name, stripeCount, len(stripes))
		}
	}

	return SegmentRecord{
		Name:        name,
		StartExtent: startExtent,
		ExtentCount: extentCount,
		Type:        typ,
		StripeCount: stripeCount,
		StripeSize:  stripeSize,
		Stripes:     stripes,
	}, nil
}

// deserializeStripes reads the "stripes" array field as alternating
// (pv_name: string, pv_extent_offset: int) pairs.
func deserializeStripes(el *Element) ([]Stripe, error) {
	c := findChild(el, "stripes")
	if c == nil {
		return nil, nil
	}
	if c.IsSection || c.Value.Kind != KindArray {
		return nil, fmt.Errorf("%w: field \"stripes\" is not an array", lvmerr.Serde)
	}
	arr := c.Value.Array
	if len(arr)%2 != 0 {
		return nil, fmt.Errorf("%w: \"stripes\" array has an odd number of elements", lvmerr.Serde)
	}
	stripes := make([]Stripe, 0, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		nameV, offV := arr[i], arr[i+1]
		if nameV.Kind != KindStr {
			return nil, fmt.Errorf("%w: \"stripes\" entry %d is not a string", lvmerr.Serde, i)
		}
		if offV.Kind != KindInt {
			return nil, fmt.Errorf("%w: \"stripes\" entry %d is not an integer", lvmerr.Serde, i+1)
		}
		stripes = append(stripes, Stripe{PVName: nameV.Str, PVExtentOffset: offV.Int})
	}
	return stripes, nil
}

func optionalStr(el *Element, name string) (string, error) {
	c := findChild(el, name)
	if c == nil {
		return "", nil
	}
	if c.IsSection || c.Value.Kind != KindStr {
		return "", fmt.Errorf("%w: field %q is not a string", lvmerr.Serde, name)
	}
	return c.Value.Str, nil
}

// NormalizeID strips dashes from a UUID-shaped identifier. The binary PV
// header carries the UUID without dashes while metadata text usually has
// them, so every comparison goes through this first.
func NormalizeID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// ResolvePVName performs the self-reference cross-check: it finds the
// PVRecord in vg whose ID matches pvIdent once both are dash-stripped, and
// returns its name. The caller supplies the pv-ident decoded from the
// binary PV header.
func ResolvePVName(vg *VolumeGroup, pvIdent string) (string, error) {
	target := NormalizeID(pvIdent)
	for _, name := range vg.PhysicalVolumes.Keys() {
		pv, _ := vg.PhysicalVolumes.Get(name)
		if NormalizeID(pv.ID) == target {
			return name, nil
		}
	}
	return "", lvmerr.PVDoesntContainItself
}
