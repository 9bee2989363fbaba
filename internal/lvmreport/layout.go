// Package lvmreport renders an opened physical volume's layout as a
// colorized, offset-ordered table: label, PV header, metadata area, and
// every logical volume's segments. It is a presentation layer only — it
// reads an already-validated volume-group model and never touches the device.
package lvmreport

import (
	"fmt"
	"sort"

	"github.com/fatih/color"

	"github.com/forensicxlab/exhume-lvm/internal/lvmbin"
	"github.com/forensicxlab/exhume-lvm/internal/lvmmodel"
)

// Row is one line of the layout table: an offset-ordered region of the PV
// plus a human description of what lives there.
type Row struct {
	Offset   int64
	Length   int64
	Category string
	Detail   string
}

// Build assembles the layout rows for vg, given the PV byte offset of its
// metadata area (the caller already has this from lvmbin.PVHeader) and its
// size, sorted by offset ascending; the label row's position and size come
// from lvmbin.LabelSector and lvmbin.SectorSize — mirroring the
// offset-ordered layout dump this family of tools prints for its own
// on-disk formats.
func Build(vg *lvmmodel.VolumeGroup, pvName string, metadataAreaOffset, metadataAreaSize uint64) []Row {
	var rows []Row

	rows = append(rows, Row{
		Offset:   lvmbin.LabelSector * lvmbin.SectorSize,
		Length:   lvmbin.SectorSize,
		Category: "Label",
		Detail:   "PV label + PV header",
	})
	rows = append(rows, Row{
		Offset:   int64(metadataAreaOffset),
		Length:   int64(metadataAreaSize),
		Category: "Metadata Area",
		Detail:   fmt.Sprintf("vg=%s seqno=%d", vg.Name, vg.SeqNo),
	})

	extentBytes := vg.ExtentSize * lvmbin.SectorSize
	for _, lvName := range vg.LogicalVolumes.Keys() {
		lv, _ := vg.LogicalVolumes.Get(lvName)
		for _, segName := range lv.Segments.Keys() {
			seg, _ := lv.Segments.Get(segName)
			for _, stripe := range seg.Stripes {
				if stripe.PVName != pvName {
					continue
				}
				pv, ok := vg.PhysicalVolumes.Get(pvName)
				if !ok {
					continue
				}
				offset := pv.PEStart*lvmbin.SectorSize + stripe.PVExtentOffset*extentBytes
				length := seg.ExtentCount * extentBytes
				if seg.StripeCount > 1 {
					length /= seg.StripeCount
				}
				rows = append(rows, Row{
					Offset:   offset,
					Length:   length,
					Category: "Logical Volume",
					Detail:   fmt.Sprintf("%s/%s (%s)", lvName, segName, seg.Type),
				})
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Offset < rows[j].Offset })
	return rows
}

var categoryColor = map[string]func(a ...interface{}) string{
	"Label":          color.New(color.FgBlue, color.Bold).SprintFunc(),
	"Metadata Area":  color.New(color.FgYellow, color.Bold).SprintFunc(),
	"Logical Volume": color.New(color.FgCyan, color.Bold).SprintFunc(),
}

// Print writes rows to stdout as a table, colorized unless useColor is
// false. detailWidth truncates the trailing detail column to fit a
// caller-measured terminal width; 0 means unlimited.
func Print(rows []Row, useColor bool, useHexOffset bool, detailWidth int) {
	offsetFmt := "%-12d"
	if useHexOffset {
		offsetFmt = "0x%-10x"
	}

	plain := func(a ...interface{}) string { return fmt.Sprint(a...) }
	colorize := func(category string) func(a ...interface{}) string {
		if !useColor {
			return plain
		}
		if f, ok := categoryColor[category]; ok {
			return f
		}
		return plain
	}

	for _, r := range rows {
		c := colorize(r.Category)
		detail := r.Detail
		if detailWidth > 0 && len(detail) > detailWidth {
			detail = detail[:detailWidth-1] + "…"
		}
		fmt.Printf(offsetFmt+"  %-8d  %-16s  %s\n", r.Offset, r.Length, c(r.Category), detail)
	}
}
