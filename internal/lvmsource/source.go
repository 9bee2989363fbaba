// Package lvmsource provides the io.ReadSeeker sources the parser reads a
// physical volume image through, including an optional memory-mapped source
// and the multi-PV reader lookup the stream mapper needs for striped LVs
// that cross physical volumes.
package lvmsource

import (
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MMapSource memory-maps a PV image file read-only and exposes it as an
// io.ReadSeeker, avoiding a syscall per Read call for large images.
type MMapSource struct {
	f      *os.File
	data   mmap.MMap
	offset int64
}

// OpenMMap memory-maps the file at path read-only.
func OpenMMap(path string) (*MMapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &MMapSource{f: f, data: data}, nil
}

func (s *MMapSource) Read(p []byte) (int, error) {
	if s.offset >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.offset:])
	s.offset += int64(n)
	return n, nil
}

func (s *MMapSource) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.offset + offset
	case io.SeekEnd:
		abs = int64(len(s.data)) + offset
	default:
		return 0, os.ErrInvalid
	}
	if abs < 0 {
		return 0, os.ErrInvalid
	}
	s.offset = abs
	return abs, nil
}

// ReadAt implements io.ReaderAt without disturbing the current Seek offset.
func (s *MMapSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file and closes the underlying descriptor.
func (s *MMapSource) Close() error {
	uerr := s.data.Unmap()
	cerr := s.f.Close()
	if uerr != nil {
		return uerr
	}
	return cerr
}

// Multiplexer resolves a physical volume UUID to the io.ReadSeeker backing
// its image, for callers consuming a volume group spread across more than
// one physical volume. The single-reader path (lvm.Open) never needs this;
// it exists so striped LVs that cross physical volumes can still be read
// when the caller holds images of every PV involved.
type Multiplexer struct {
	readers map[string]io.ReadSeeker
}

// NewMultiplexer builds an empty PV-UUID to reader lookup.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{readers: make(map[string]io.ReadSeeker)}
}

// Add registers the reader backing the physical volume identified by uuid
// (dash-stripped, matching the comparison the PV header/VG cross-reference
// already uses).
func (m *Multiplexer) Add(uuid string, r io.ReadSeeker) {
	m.readers[uuid] = r
}

// Get returns the reader registered for uuid, or nil if none was added.
func (m *Multiplexer) Get(uuid string) io.ReadSeeker {
	return m.readers[uuid]
}
