// Command exhumelvm is the CLI front end for the exhume-lvm parser: it
// opens a physical-volume image, prints volume-group/logical-volume
// summaries, dumps the on-disk layout, and exports logical volumes to flat
// files. The core parser (package lvm) is read-only and device-agnostic;
// argument parsing and output formatting live here, outside of it.
package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/usage"

	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
	"github.com/forensicxlab/exhume-lvm/lvm"
)

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("exhumelvm"),
		usage.WithApplicationDescription("exhumelvm inspects the on-disk layout of an LVM2 physical volume image: it locates the label and metadata area, parses the volume-group descriptor, and can print a layout dump or export a logical volume's bytes without mounting the volume."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Enable debug logging", "optional", nil)
	trace := u.AddBooleanOption("vv", "trace", false, "Enable trace logging", "optional", nil)
	noColor := u.AddBooleanOption("", "no-color", false, "Disable colorized layout output", "optional", nil)
	hexOffsets := u.AddBooleanOption("x", "hex", false, "Print layout offsets in hexadecimal", "optional", nil)
	mmapFlag := u.AddBooleanOption("", "mmap", false, "Memory-map the image instead of opening it as a plain file", "optional", nil)
	exportLV := u.AddStringOption("e", "export", "", "Name of a logical volume to export", "optional", nil)
	exportOut := u.AddStringOption("o", "out", "", "Output path for --export (required with --export)", "optional", nil)
	path := u.AddArgument(1, "pv-image", "Path to a file holding a single LVM2 physical volume image", "")

	if !u.Parse() {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}
	if *help {
		u.PrintUsage()
		os.Exit(0)
	}
	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("pv-image path must be provided"))
		os.Exit(1)
	}

	level := 0
	if *trace {
		level = lvmlog.LevelTrace
	} else if *verbose {
		level = lvmlog.LevelDebug
	}
	log := lvmlog.NewSimpleLogger(level, !*noColor)

	source, closeSource, err := openSource(*path, *mmapFlag)
	if err != nil {
		u.PrintError(fmt.Errorf("open %s: %w", *path, err))
		os.Exit(1)
	}
	defer closeSource()

	pv, err := lvm.Open(source, lvm.WithLogger(log))
	if err != nil {
		u.PrintError(fmt.Errorf("open physical volume: %w", err))
		os.Exit(1)
	}

	if *exportLV != "" {
		if *exportOut == "" {
			u.PrintError(fmt.Errorf("--out is required with --export"))
			os.Exit(1)
		}
		reader, closeReader, err := openSource(*path, *mmapFlag)
		if err != nil {
			u.PrintError(fmt.Errorf("re-open %s for export: %w", *path, err))
			os.Exit(1)
		}
		defer closeReader()
		if err := exportLogicalVolume(pv, *exportLV, reader, *exportOut); err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
		fmt.Printf("Exported logical volume %q to %s\n", *exportLV, *exportOut)
		return
	}

	printSummary(pv)
	printLayout(pv, !*noColor, *hexOffsets)
}

func printSummary(pv *lvm.OpenedPV) {
	fmt.Println("=== Volume Group ===")
	fmt.Printf("Name: %s\n", pv.VGName())
	fmt.Printf("ID: %s\n", pv.VGID())
	fmt.Printf("Extent Size: %d bytes\n", pv.ExtentSize())
	fmt.Printf("Physical Volume: %s (%s)\n", pv.PVName(), pv.PVID())
	fmt.Println()
	fmt.Println("=== Logical Volumes ===")
	for _, lv := range pv.LogicalVolumes() {
		fmt.Printf("%-24s %-36s %d extents\n", lv.Name, lv.ID, lv.SizeInExtents)
	}
	if trailing := pv.TrailingMetadata(); len(trailing) > 0 {
		fmt.Printf("\n%d bytes of trailing metadata text (see --verbose)\n", len(trailing))
	}
}
