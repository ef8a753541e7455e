package job

import "encoding/hex"

// PrevHashToDisplay converts the previous block hash from Stratum wire order
// to the big-endian form block explorers show. The wire carries eight
// little-endian 32-bit words; each word's bytes are reversed, then the whole
// 32-byte string is reversed. Inputs that are not 64 hex chars pass through
// untouched.
func PrevHashToDisplay(wireHex string) string {
	if len(wireHex) != 64 {
		return wireHex
	}
	raw, err := hex.DecodeString(wireHex)
	if err != nil {
		return wireHex
	}
	for i := 0; i < 32; i += 4 {
		raw[i], raw[i+1], raw[i+2], raw[i+3] = raw[i+3], raw[i+2], raw[i+1], raw[i]
	}
	for i, j := 0, 31; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}
	return hex.EncodeToString(raw)
}
