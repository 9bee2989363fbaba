package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/forensicxlab/exhume-lvm/internal/lvmreport"
	"github.com/forensicxlab/exhume-lvm/lvm"
)

// printLayout dumps the physical volume's layout: label/PV header,
// metadata area, and every logical volume segment resolved onto this PV,
// ordered by byte offset. Terminal width only gates whether the detail
// column is allowed to run long; it does not change the data printed.
func printLayout(pv *lvm.OpenedPV, useColor bool, useHex bool) {
	const fixedColumns = 12 + 2 + 8 + 2 + 16 + 2 // offset + length + category columns
	detailWidth := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > fixedColumns {
		detailWidth = w - fixedColumns
	}

	offset, size := pv.MetadataArea()
	rows := lvmreport.Build(pv.VolumeGroup(), pv.PVName(), offset, size)

	fmt.Println()
	fmt.Println("=== Physical Volume Layout ===")
	lvmreport.Print(rows, useColor, useHex, detailWidth)
}
