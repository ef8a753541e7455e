package job

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// diff1Target is the difficulty-1 target used by pools, nBits 0x1d00ffff.
var diff1Target = func() *big.Int {
	t, _ := new(big.Int).SetString("00000000ffff0000000000000000000000000000000000000000000000000000", 16)
	return t
}()

// TargetFromBits expands a compact nBits value into the full 256-bit target.
// Values with the sign bit set or a zero mantissa yield a zero target.
func TargetFromBits(bits uint32) *big.Int {
	exp := uint(bits >> 24)
	coeff := int64(bits & 0x007fffff)
	if bits&0x00800000 != 0 || coeff == 0 {
		return new(big.Int)
	}
	t := big.NewInt(coeff)
	if exp >= 3 {
		return t.Lsh(t, 8*(exp-3))
	}
	return t.Rsh(t, 8*(3-exp))
}

// DifficultyFromBits converts a hex nBits string into pool difficulty,
// returned both as a raw float and formatted with a metric suffix
// ("68.77 G"). A zero or negative target reports "N/A".
func DifficultyFromBits(bitsHex string) (string, float64, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(bitsHex, "0x"), 16, 32)
	if err != nil {
		return "", 0, fmt.Errorf("parse nbits %q: %w", bitsHex, err)
	}
	target := TargetFromBits(uint32(v))
	if target.Sign() == 0 {
		return "N/A", 0, nil
	}
	diff, _ := new(big.Rat).SetFrac(diff1Target, target).Float64()
	return formatDifficulty(diff), diff, nil
}

var diffUnits = []struct {
	scale  float64
	suffix string
}{
	{1e18, " E"},
	{1e15, " P"},
	{1e12, " T"},
	{1e9, " G"},
	{1e6, " M"},
	{1e3, " K"},
}

func formatDifficulty(d float64) string {
	for _, u := range diffUnits {
		if d >= u.scale {
			return strconv.FormatFloat(d/u.scale, 'f', 2, 64) + u.suffix
		}
	}
	return strconv.FormatFloat(d, 'f', 2, 64)
}
