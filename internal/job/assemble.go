package job

import (
	"encoding/hex"
	"fmt"
)

// AssembleCoinbase rebuilds the full coinbase transaction from the job's two
// fragments, the pool-assigned extranonce1, and a zero extranonce2 of the
// negotiated size. This is exactly the serialization a miner would hash, so
// the result decodes as a complete transaction.
func AssembleCoinbase(t *Template, extraNonce1 string, extraNonce2Size int) ([]byte, error) {
	if extraNonce2Size < 0 {
		return nil, fmt.Errorf("extranonce2 size %d is negative", extraNonce2Size)
	}
	cb1, err := hex.DecodeString(t.Coinbase1)
	if err != nil {
		return nil, fmt.Errorf("decode coinb1: %w", err)
	}
	en1, err := hex.DecodeString(extraNonce1)
	if err != nil {
		return nil, fmt.Errorf("decode extranonce1: %w", err)
	}
	cb2, err := hex.DecodeString(t.Coinbase2)
	if err != nil {
		return nil, fmt.Errorf("decode coinb2: %w", err)
	}
	out := make([]byte, 0, len(cb1)+len(en1)+extraNonce2Size+len(cb2))
	out = append(out, cb1...)
	out = append(out, en1...)
	out = append(out, make([]byte, extraNonce2Size)...)
	out = append(out, cb2...)
	return out, nil
}
