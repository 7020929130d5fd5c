package audio

import "encoding/binary"

// LocateHeader scans buf one byte at a time for marker (read big-endian) and
// returns the offset just past the first match. When there is no match it
// returns len(buf), which callers must treat as "header not found".
func LocateHeader(buf []byte, marker uint32) int {
	for i := 0; i+4 <= len(buf); i++ {
		if binary.BigEndian.Uint32(buf[i:i+4]) == marker {
			return i + 4
		}
	}
	return len(buf)
}

// LocateFrameSync returns the offset of the first MPEG audio frame sync word
// (twelve set bits), or len(buf) if there is none.
func LocateFrameSync(buf []byte) int {
	for i := 0; i+2 <= len(buf); i++ {
		if binary.BigEndian.Uint16(buf[i:i+2])>>4 == 0x0FFF {
			return i
		}
	}
	return len(buf)
}
