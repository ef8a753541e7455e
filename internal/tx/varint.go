package tx

import "fmt"

// readVarInt decodes a Bitcoin-style variable-length integer from the front
// of b, returning the value and the number of bytes consumed.
func readVarInt(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("empty buffer")
	}
	switch b[0] {
	case 0xff:
		if len(b) < 9 {
			return 0, 0, fmt.Errorf("varint ff truncated")
		}
		return uint64(b[1]) | uint64(b[2])<<8 | uint64(b[3])<<16 | uint64(b[4])<<24 |
			uint64(b[5])<<32 | uint64(b[6])<<40 | uint64(b[7])<<48 | uint64(b[8])<<56, 9, nil
	case 0xfe:
		if len(b) < 5 {
			return 0, 0, fmt.Errorf("varint fe truncated")
		}
		return uint64(b[1]) | uint64(b[2])<<8 | uint64(b[3])<<16 | uint64(b[4])<<24, 5, nil
	case 0xfd:
		if len(b) < 3 {
			return 0, 0, fmt.Errorf("varint fd truncated")
		}
		return uint64(b[1]) | uint64(b[2])<<8, 3, nil
	default:
		return uint64(b[0]), 1, nil
	}
}

// writeVarInt encodes v in the shortest variable-length form.
func writeVarInt(v uint64) []byte {
	switch {
	case v < 0xfd:
		return []byte{byte(v)}
	case v <= 0xffff:
		return []byte{0xfd, byte(v), byte(v >> 8)}
	case v <= 0xffffffff:
		return []byte{0xfe, byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	default:
		return []byte{0xff, byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
			byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56)}
	}
}
