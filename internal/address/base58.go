package address

import "math/big"

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// Version bytes for legacy Base58Check addresses.
const (
	LegacyP2PKH byte = 0x00
	LegacyP2SH  byte = 0x05
)

// Base58CheckEncode appends the first four bytes of the payload's double
// SHA-256 digest as a checksum and encodes the whole thing in base 58.
// Leading zero bytes become leading '1' characters.
func Base58CheckEncode(payload []byte) string {
	data := make([]byte, 0, len(payload)+4)
	data = append(data, payload...)
	data = append(data, DoubleSHA256(payload)[:4]...)

	n := new(big.Int).SetBytes(data)
	mod := new(big.Int)
	base := big.NewInt(58)
	digits := make([]byte, 0, len(data)*137/100+1)
	for n.Sign() > 0 {
		n.DivMod(n, base, mod)
		digits = append(digits, base58Alphabet[mod.Int64()])
	}

	var zeros int
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}
	out := make([]byte, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out[i] = '1'
	}
	for i, d := range digits {
		out[len(out)-1-i] = d
	}
	return string(out)
}

// EncodeLegacy returns the Base58Check address for a version byte and hash.
func EncodeLegacy(version byte, hash []byte) string {
	payload := make([]byte, 0, len(hash)+1)
	payload = append(payload, version)
	payload = append(payload, hash...)
	return Base58CheckEncode(payload)
}
