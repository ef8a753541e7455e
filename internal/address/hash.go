package address

import (
	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160"
)

// DoubleSHA256 returns SHA-256(SHA-256(b)).
func DoubleSHA256(b []byte) []byte {
	h := sha256.Sum256(b)
	h = sha256.Sum256(h[:])
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

// Hash160 returns RIPEMD-160(SHA-256(b)), the digest used for P2PKH-style
// addresses.
func Hash160(b []byte) []byte {
	h := sha256.Sum256(b)
	r := ripemd160.New()
	r.Write(h[:])
	return r.Sum(nil)
}
