package address

import "strings"

// MainnetPrefix is the human-readable prefix for mainnet cash addresses.
const MainnetPrefix = "bitcoincash"

// Version bytes carried in the cashaddr payload.
const (
	CashAddrP2PKH byte = 0x00
	CashAddrP2SH  byte = 0x08
)

const cashCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Generator constants for the 40-bit BCH checksum, applied when the
// corresponding bit of the shifted-out state is set.
var cashGenerators = [5]uint64{
	0x98f2bc8e61,
	0x79b76d99e2,
	0xf33e5fb3c4,
	0xae2eabe2a8,
	0x1e4f43e470,
}

// polyMod runs the cashaddr checksum LFSR over a sequence of 5-bit values.
// State starts at 1 and the final state is xored with 1, so a payload whose
// checksum digits are correct folds to zero.
func polyMod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := c >> 35
		c = (c&0x07ffffffff)<<5 ^ uint64(d)
		for i := range cashGenerators {
			if c0&(1<<uint(i)) != 0 {
				c ^= cashGenerators[i]
			}
		}
	}
	return c ^ 1
}

// convertBits regroups data expressed in fromBits-bit units into toBits-bit
// units, most significant bits first. When pad is set, a final incomplete
// group is zero-filled on the low end; otherwise leftover bits are dropped.
func convertBits(data []byte, fromBits, toBits uint, pad bool) []byte {
	var acc, bits uint
	maxv := uint(1)<<toBits - 1
	out := make([]byte, 0, (len(data)*int(fromBits)+int(toBits)-1)/int(toBits))
	for _, v := range data {
		acc = acc<<fromBits | uint(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad && bits > 0 {
		out = append(out, byte(acc<<(toBits-bits)&maxv))
	}
	return out
}

// prefixExpand maps prefix characters to their low five bits and appends the
// zero separator, as required by the checksum input.
func prefixExpand(prefix string) []byte {
	out := make([]byte, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out[i] = prefix[i] & 0x1f
	}
	return out
}

// EncodeCashAddr encodes a hash with the given payload version byte into a
// prefixed cashaddr string.
func EncodeCashAddr(prefix string, version byte, hash []byte) string {
	payload := convertBits(append([]byte{version}, hash...), 8, 5, true)

	values := append(prefixExpand(prefix), payload...)
	values = append(values, make([]byte, 8)...)
	mod := polyMod(values)

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(payload) + 8)
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, d := range payload {
		sb.WriteByte(cashCharset[d])
	}
	for i := 0; i < 8; i++ {
		sb.WriteByte(cashCharset[mod>>uint(5*(7-i))&0x1f])
	}
	return sb.String()
}
