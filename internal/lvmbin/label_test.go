package lvmbin

import (
	"errors"
	"testing"

	"github.com/forensicxlab/exhume-lvm/internal/lvmerr"
	"github.com/forensicxlab/exhume-lvm/internal/lvmlog"
	"github.com/stretchr/testify/require"
)

func buildLabelSheet(sectorNumber uint64, checksum, dataOffset uint32, signature, typ string) []byte {
	buf := make([]byte, SectorSize)
	copy(buf[0:8], signature)
	putU64(buf[8:16], sectorNumber)
	putU32(buf[16:20], checksum)
	putU32(buf[20:24], dataOffset)
	copy(buf[24:32], typ)
	return buf
}

func TestDecodeLabelHeader_Valid(t *testing.T) {
	buf := buildLabelSheet(1, 0xdeadbeef, 0x20, labelSignature, labelType)
	h, err := DecodeLabelHeader(buf, lvmlog.Default())
	require.NoError(t, err)
	require.Equal(t, uint64(1), h.SectorNumber)
	require.Equal(t, uint32(0xdeadbeef), h.Checksum)
	require.Equal(t, uint32(0x20), h.DataOffset)
}

func TestDecodeLabelHeader_WrongSignature(t *testing.T) {
	buf := buildLabelSheet(1, 0, 0x20, "LABELTWO", labelType)
	_, err := DecodeLabelHeader(buf, lvmlog.Default())
	require.Error(t, err)
	require.True(t, errors.Is(err, lvmerr.WrongMagic))
}

func TestDecodeLabelHeader_WrongType(t *testing.T) {
	buf := buildLabelSheet(1, 0, 0x20, labelSignature, "LVM1 001")
	_, err := DecodeLabelHeader(buf, lvmlog.Default())
	require.Error(t, err)
	require.True(t, errors.Is(err, lvmerr.WrongMagic))
}

func TestDecodeLabelHeader_Truncated(t *testing.T) {
	_, err := DecodeLabelHeader(make([]byte, 4), lvmlog.Default())
	require.Error(t, err)
}
