package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theckman/yacspin"

	"github.com/forensicxlab/exhume-lvm/internal/lvmsource"
	"github.com/forensicxlab/exhume-lvm/lvm"
)

// openSource returns a Read+Seek+Close source over path: a memory-mapped
// view when mmapFlag is set (zero-copy header reads on large images), a
// plain *os.File otherwise.
func openSource(path string, mmapFlag bool) (io.ReadSeeker, func() error, error) {
	if mmapFlag {
		src, err := lvmsource.OpenMMap(path)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// exportLogicalVolume streams the named logical volume's bytes to outPath,
// showing a terminal spinner while the transfer runs.
func exportLogicalVolume(pv *lvm.OpenedPV, name string, reader io.ReadSeeker, outPath string) error {
	stream, err := pv.OpenLVByName(name, reader)
	if err != nil {
		return fmt.Errorf("open logical volume %q: %w", name, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	spinner, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          fmt.Sprintf(" exporting %s", name),
		SuffixAutoColon: true,
		StopMessage:     "done",
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
	})
	if err == nil {
		_ = spinner.Start()
		defer spinner.Stop()
	}

	if _, err := io.Copy(out, stream); err != nil {
		if spinner != nil {
			_ = spinner.StopFail()
		}
		return fmt.Errorf("export %q: %w", name, err)
	}
	return nil
}
