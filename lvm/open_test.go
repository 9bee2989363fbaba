package lvm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/forensicxlab/exhume-lvm/internal/lvmbin"
	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/stretchr/testify/require"
)

const (
	testPVIdent   = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	testMDStart   = 4096
	testRawLocOff = 512 // relative to metadata area start
)

func putU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

func vgText(pvIdent string) string {
	return `myvg {
	id = "vgid0000000000000000000000000000"
	seqno = 1
	extent_size = 2
	physical_volumes {
		pv0 {
			id = "` + pvIdent + `"
			pe_start = 20
		}
	}
	logical_volumes {
		lv0 {
			id = "lvid0000000000000000000000000000"
			segment1 {
				start_extent = 0
				extent_count = 4
				type = "striped"
				stripe_count = 1
				stripes = ["pv0", 0]
			}
		}
	}
}
`
}

// buildSyntheticPV assembles a minimal but complete LVM2 physical volume
// image: label sheet, PV header, metadata area header, one raw location
// carrying text, and LV data bytes at the offset the metadata describes.
func buildSyntheticPV(t *testing.T, text string) []byte {
	t.Helper()
	const imageSize = 65536
	img := make([]byte, imageSize)

	// Label sheet at sector 1.
	labelOff := lvmbin.SectorSize
	copy(img[labelOff:], "LABELONE")
	putU64(img[labelOff+8:], 1)
	putU32(img[labelOff+16:], 0)   // checksum, unverified
	putU32(img[labelOff+20:], 32) // data_offset within the sheet
	copy(img[labelOff+24:], "LVM2 001")

	// PV header at labelOff+32.
	pvHdrOff := labelOff + 32
	copy(img[pvHdrOff:], testPVIdent)
	putU64(img[pvHdrOff+32:], uint64(imageSize))
	// data area descriptors: none, just terminator
	p := pvHdrOff + 40
	putU64(img[p:], 0)
	putU64(img[p+8:], 0)
	p += 16
	// metadata area descriptors: one entry + terminator
	putU64(img[p:], testMDStart)
	putU64(img[p+8:], 1024*1024)
	p += 16
	putU64(img[p:], 0)
	putU64(img[p+8:], 0)

	// Metadata area header at testMDStart.
	mahOff := testMDStart
	putU32(img[mahOff:], 0) // checksum, unverified
	copy(img[mahOff+4:], "\x20LVM2\x20x[5A%r0N*>")
	putU32(img[mahOff+20:], 1)               // version
	putU64(img[mahOff+24:], testMDStart)     // metadata_area_offset
	putU64(img[mahOff+32:], 1024*1024)       // metadata_area_size
	rp := mahOff + 40
	dataSize := uint64(len(text) + 1 + len("TRAILING_GARBAGE"))
	putU64(img[rp:], testRawLocOff)
	putU64(img[rp+8:], dataSize)
	putU32(img[rp+16:], 0)
	putU32(img[rp+20:], 0)
	rp += 24
	putU64(img[rp:], 0)
	putU64(img[rp+8:], 0)
	putU32(img[rp+16:], 0)
	putU32(img[rp+20:], 0)

	// Raw location text payload.
	textOff := testMDStart + testRawLocOff
	copy(img[textOff:], text)
	img[textOff+len(text)] = 0
	copy(img[textOff+len(text)+1:], "TRAILING_GARBAGE")

	// LV data: pe_start=20 sheets, extent_size=2 sheets -> 10240 bytes in.
	dataOff := 20 * lvmbin.SectorSize
	for i := 0; i < 4096; i++ {
		img[dataOff+i] = byte(i % 251)
	}

	return img
}

func TestOpen_FullRoundTrip(t *testing.T) {
	img := buildSyntheticPV(t, vgText(testPVIdent))
	r := bytes.NewReader(img)

	pv, err := Open(r)
	require.NoError(t, err)
	require.Equal(t, "myvg", pv.VGName())
	require.Equal(t, "pv0", pv.PVName())
	require.Equal(t, testPVIdent, pv.PVID())
	require.Equal(t, int64(2*lvmbin.SectorSize), pv.ExtentSize())

	var names []string
	for h := range pv.LVs() {
		names = append(names, h.Name)
	}
	require.Equal(t, []string{"lv0"}, names)

	require.Equal(t, "TRAILING_GARBAGE", string(pv.RawTrailingBytes()[1:]))

	lvReader := bytes.NewReader(img)
	stream, err := pv.OpenLVByName("lv0", lvReader)
	require.NoError(t, err)
	got := make([]byte, 4096)
	n, err := io.ReadFull(stream, got)
	require.NoError(t, err)
	require.Equal(t, 4096, n)

	want := make([]byte, 4096)
	for i := range want {
		want[i] = byte(i % 251)
	}
	require.Equal(t, want, got)
}

func TestOpen_MissingMetadata(t *testing.T) {
	img := buildSyntheticPV(t, vgText(testPVIdent))
	// Zero out the metadata area descriptor count by overwriting it with a
	// terminator immediately.
	pvHdrOff := lvmbin.SectorSize + 32
	p := pvHdrOff + 40 + 16 // after pv_ident+pv_size+data-area terminator
	putU64(img[p:], 0)
	putU64(img[p+8:], 0)

	_, err := Open(bytes.NewReader(img))
	require.Error(t, err)
	require.True(t, errors.Is(err, lvmerr.MissingMetadata))
}

func TestOpen_WrongMagic(t *testing.T) {
	img := buildSyntheticPV(t, vgText(testPVIdent))
	copy(img[lvmbin.SectorSize:], "LABELTWO")

	_, err := Open(bytes.NewReader(img))
	require.Error(t, err)
	require.True(t, errors.Is(err, lvmerr.WrongMagic))
}

func TestOpen_MultipleVGs(t *testing.T) {
	text := `vg1 { id = "a" seqno = 1 extent_size = 1 physical_volumes {} logical_volumes {} }
vg2 { id = "b" seqno = 1 extent_size = 1 physical_volumes {} logical_volumes {} }`
	img := buildSyntheticPV(t, text)

	_, err := Open(bytes.NewReader(img))
	require.Error(t, err)
	require.True(t, errors.Is(err, lvmerr.MultipleVGsError))
}

func TestOpen_SelfReferenceFailure(t *testing.T) {
	img := buildSyntheticPV(t, vgText("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"))

	_, err := Open(bytes.NewReader(img))
	require.Error(t, err)
	require.True(t, errors.Is(err, lvmerr.PVDoesntContainItself))
}

func TestOpen_Idempotent(t *testing.T) {
	img := buildSyntheticPV(t, vgText(testPVIdent))
	pv1, err := Open(bytes.NewReader(img))
	require.NoError(t, err)
	pv2, err := Open(bytes.NewReader(img))
	require.NoError(t, err)
	require.Equal(t, pv1.VGName(), pv2.VGName())
	require.Equal(t, pv1.PVName(), pv2.PVName())
	require.Equal(t, pv1.LogicalVolumes(), pv2.LogicalVolumes())
}
