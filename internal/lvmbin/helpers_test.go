package lvmbin

import "encoding/binary"

func putU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func putU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

func appendDescriptor(buf []byte, offset, size uint64) []byte {
	tmp := make([]byte, 16)
	putU64(tmp[0:8], offset)
	putU64(tmp[8:16], size)
	return append(buf, tmp...)
}

func appendTerminatorDescriptor(buf []byte) []byte {
	return appendDescriptor(buf, 0, 0)
}

func appendRawLocation(buf []byte, dataOffset, dataSize uint64, checksum, flags uint32) []byte {
	tmp := make([]byte, 24)
	putU64(tmp[0:8], dataOffset)
	putU64(tmp[8:16], dataSize)
	putU32(tmp[16:20], checksum)
	putU32(tmp[20:24], flags)
	return append(buf, tmp...)
}

func appendTerminatorRawLocation(buf []byte) []byte {
	return appendRawLocation(buf, 0, 0, 0, 0)
}
