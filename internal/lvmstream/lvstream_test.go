package lvmstream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmmodel"
	"github.com/stretchr/testify/require"
)

// fakeSeeker wraps a bytes.Reader as an io.ReadSeeker over a fixed buffer,
// standing in for the external PV image reader.
type fakeSeeker struct {
	*bytes.Reader
}

func newFakeSeeker(data []byte) *fakeSeeker { return &fakeSeeker{bytes.NewReader(data)} }

func sequentialBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestLVStream_LinearReadMatchesPVBytes(t *testing.T) {
	image := sequentialBytes(64 * 1024)
	vg := buildVG(8, 0, []lvmmodel.SegmentRecord{
		{Name: "segment1", StartExtent: 0, ExtentCount: 4, Type: "striped", StripeCount: 1, Stripes: []lvmmodel.Stripe{{PVName: "pv0", PVExtentOffset: 0}}},
	})
	lv, _ := vg.LogicalVolumes.Get("lv0")

	stream := NewLVStream(vg, &lv, newFakeSeeker(image), "pv0", nil, nil)
	require.Equal(t, int64(4*8*512), stream.Size())

	got := make([]byte, stream.Size())
	n, err := io.ReadFull(stream, got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)
	require.Equal(t, image[:len(got)], got)
}

func TestLVStream_ReadAcrossSegmentBoundary(t *testing.T) {
	image := sequentialBytes(64 * 1024)
	vg := buildVG(8, 0, []lvmmodel.SegmentRecord{
		{Name: "segment1", StartExtent: 0, ExtentCount: 2, Type: "striped", StripeCount: 1, Stripes: []lvmmodel.Stripe{{PVName: "pv0", PVExtentOffset: 0}}},
		{Name: "segment2", StartExtent: 2, ExtentCount: 2, Type: "striped", StripeCount: 1, Stripes: []lvmmodel.Stripe{{PVName: "pv0", PVExtentOffset: 10}}},
	})
	lv, _ := vg.LogicalVolumes.Get("lv0")
	esize := 8 * 512

	stream := NewLVStream(vg, &lv, newFakeSeeker(image), "pv0", nil, nil)
	got := make([]byte, stream.Size())
	n, err := io.ReadFull(stream, got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)

	require.Equal(t, image[:2*esize], got[:2*esize])
	require.Equal(t, image[10*esize:10*esize+2*esize], got[2*esize:])
}

func TestLVStream_SeekPastEndYieldsEOF(t *testing.T) {
	image := sequentialBytes(64 * 1024)
	vg := buildVG(8, 0, []lvmmodel.SegmentRecord{
		{Name: "segment1", StartExtent: 0, ExtentCount: 1, Type: "striped", StripeCount: 1, Stripes: []lvmmodel.Stripe{{PVName: "pv0", PVExtentOffset: 0}}},
	})
	lv, _ := vg.LogicalVolumes.Get("lv0")
	stream := NewLVStream(vg, &lv, newFakeSeeker(image), "pv0", nil, nil)

	_, err := stream.Seek(stream.Size()+100, io.SeekStart)
	require.NoError(t, err)
	buf := make([]byte, 16)
	_, err = stream.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestLVStream_ForeignPVWithoutResolverIsError(t *testing.T) {
	image := sequentialBytes(64 * 1024)
	vg := buildVG(8, 0, []lvmmodel.SegmentRecord{
		{Name: "segment1", StartExtent: 0, ExtentCount: 1, Type: "striped", StripeCount: 1, Stripes: []lvmmodel.Stripe{{PVName: "pv1", PVExtentOffset: 0}}},
	})
	_ = vg.PhysicalVolumes.Set("pv1", lvmmodel.PVRecord{Name: "pv1", ID: "pv1id"})
	lv, _ := vg.LogicalVolumes.Get("lv0")

	stream := NewLVStream(vg, &lv, newFakeSeeker(image), "pv0", nil, nil)
	buf := make([]byte, 16)
	_, err := stream.Read(buf)
	require.Error(t, err)
	require.True(t, errors.Is(err, lvmerr.ForeignPV))
}

func TestLVStream_ForeignPVResolvedByMultiplexer(t *testing.T) {
	image0 := sequentialBytes(64 * 1024)
	image1 := sequentialBytes(64 * 1024)
	for i := range image1 {
		image1[i] = byte(255 - i%251)
	}

	vg := buildVG(8, 0, []lvmmodel.SegmentRecord{
		{Name: "segment1", StartExtent: 0, ExtentCount: 1, Type: "striped", StripeCount: 1, Stripes: []lvmmodel.Stripe{{PVName: "pv1", PVExtentOffset: 0}}},
	})
	_ = vg.PhysicalVolumes.Set("pv1", lvmmodel.PVRecord{Name: "pv1", ID: "pv1id"})
	lv, _ := vg.LogicalVolumes.Get("lv0")

	mux := NewMultiplexer()
	mux.Add("pv1id", newFakeSeeker(image1))

	stream := NewLVStream(vg, &lv, newFakeSeeker(image0), "pv0", mux, nil)
	buf := make([]byte, 16)
	_, err := stream.Read(buf)
	require.NoError(t, err)
	require.Equal(t, image1[:16], buf)
}
