// Package report renders inspection results as sectioned terminal text.
package report

import (
	"encoding/hex"
	"fmt"
	"strings"

	"bchwatch/internal/config"
	"bchwatch/internal/inspect"
	"bchwatch/internal/tx"
)

const width = 68

type builder struct {
	sb strings.Builder
}

func (b *builder) header(title string) {
	b.sb.WriteString("┌" + strings.Repeat("─", width) + "┐\n")
	b.sb.WriteString("│" + center(title, width) + "│\n")
	b.sb.WriteString("├" + strings.Repeat("─", width) + "┤\n")
}

func (b *builder) footer() {
	b.sb.WriteString("└" + strings.Repeat("─", width) + "┘\n\n")
}

func (b *builder) linef(format string, args ...any) {
	fmt.Fprintf(&b.sb, "│"+format+"\n", args...)
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	left := (w - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-len(s)-left)
}

// Render lays the result out in the sectioned box format: basic info, block
// data, coinbase tag, outputs, merkle branch, raw hex. The whole report
// comes back as one string so concurrent runs can print atomically.
func Render(res *inspect.Result) string {
	var b builder

	b.header("Basic Info")
	b.linef("  Pool:         %s (%s)", strings.ToUpper(res.Pool), res.Host)
	b.linef("  Job ID:       %s", res.JobID)
	b.linef("  Version:      0x%s (%s)", res.VersionHex, versionDecimal(res.VersionHex))
	b.linef("  Difficulty:   0x%s → %s", res.BitsHex, res.Difficulty)
	b.linef("  Timestamp:    0x%s → %s", res.NTime, res.NTimeUTC)
	b.linef("  Clean Jobs:   %v", res.CleanJobs)
	if res.PoolDifficulty != 0 {
		b.linef("  Pool Diff:    %v", res.PoolDifficulty)
	}
	b.footer()

	b.header("Block Data")
	if res.HeightKnown {
		b.linef("  Height:       %d", res.Height)
	} else {
		b.linef("  Height:       unknown")
	}
	b.linef("  Reward:       %.8f BCH (%s sat)", satToBCH(res.TotalReward), groupThousands(res.TotalReward))
	b.linef("  Prev Hash:    %s", res.PrevHash)
	b.footer()

	b.header("Coinbase Tag")
	b.linef("  Tag:          %s", res.Tag)
	b.linef("  ScriptSig:    %s", res.ScriptSigHex)
	b.linef("  Tag Raw:      %s", res.TagRawHex)
	b.linef("  ExtraNonce1:  %s", res.ExtraNonce1)
	b.linef("  EN2 Size:     %d bytes", res.ExtraNonce2Size)
	b.footer()

	b.header(fmt.Sprintf("Coinbase Outputs (%d)", len(res.Outputs)))
	for i, out := range res.Outputs {
		b.linef("")
		b.linef("  ── Output #%d ──", i)
		b.linef("    Value:      %.8f BCH (%s sat)", satToBCH(out.Value), groupThousands(out.Value))
		b.linef("    Type:       %s", out.ClassName)
		switch out.Class {
		case tx.ScriptP2PKH, tx.ScriptP2SH:
			b.linef("    CashAddr:   %s", out.CashAddr)
			b.linef("    Legacy:     %s", out.Legacy)
		case tx.ScriptOpReturn:
			b.linef("    Data (hex): %s", out.PayloadHex)
			if readable, ok := asciiPreview(out.PayloadHex); ok {
				b.linef("    Readable:   %s", readable)
			}
		case tx.ScriptP2PK:
			b.linef("    Pubkey:     %s", out.PayloadHex)
			b.linef("    CashAddr:   %s", out.CashAddr)
			b.linef("    Legacy:     %s", out.Legacy)
		default:
			b.linef("    Script:     %s", out.PayloadHex)
		}
	}
	b.linef("")
	b.footer()

	if n := len(res.MerkleBranches); n > 0 {
		b.header(fmt.Sprintf("Merkle Branch (%d levels ≈ %d txs)", n, 1<<uint(n)))
		for i, h := range res.MerkleBranches {
			b.linef("  [%2d] %s", i, h)
		}
		b.footer()
	}

	b.header("Raw Coinbase Tx (hex)")
	for off := 0; off < len(res.CoinbaseHex); off += 64 {
		end := off + 64
		if end > len(res.CoinbaseHex) {
			end = len(res.CoinbaseHex)
		}
		b.linef("  %s", res.CoinbaseHex[off:end])
	}
	b.footer()

	bar := strings.Repeat("═", width+2)
	b.sb.WriteString(bar + "\n")
	fmt.Fprintf(&b.sb, "  ✓ %s — done\n", strings.ToUpper(res.Pool))
	b.sb.WriteString(bar + "\n")
	return b.sb.String()
}

// Banner is the top-of-run title box.
func Banner() string {
	var sb strings.Builder
	sb.WriteString("\n╔" + strings.Repeat("═", width) + "╗\n")
	sb.WriteString("║" + center("BCH Stratum Inspector", width) + "║\n")
	sb.WriteString("╚" + strings.Repeat("═", width) + "╝\n")
	return sb.String()
}

// ListPools renders the preconfigured registry for the -list flag.
func ListPools(pools []config.Pool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n  Preconfigured pools (%d):\n\n", len(pools))
	for _, p := range pools {
		fmt.Fprintf(&sb, "    %-15s  %s\n", p.Name, p.Addr())
	}
	sb.WriteString("\n")
	return sb.String()
}

// RunHeader marks the start of one pool's section in a multi-pool run.
func RunHeader(name, addr string) string {
	bar := strings.Repeat("▓", width+2)
	return fmt.Sprintf("\n%s\n  ▶ %s (%s)\n%s\n", bar, strings.ToUpper(name), addr, bar)
}

// Summary closes a multi-pool run with the tally.
func Summary(total, ok, failed int) string {
	var sb strings.Builder
	sb.WriteString("\n╔" + strings.Repeat("═", width) + "╗\n")
	sb.WriteString("║" + center("Summary", width) + "║\n")
	sb.WriteString("╠" + strings.Repeat("═", width) + "╣\n")
	line := fmt.Sprintf("  Total: %d  |  Success: %d  |  Failed: %d", total, ok, failed)
	fmt.Fprintf(&sb, "║%-*s║\n", width, line)
	sb.WriteString("╚" + strings.Repeat("═", width) + "╝\n")
	return sb.String()
}

func satToBCH(sat uint64) float64 {
	return float64(sat) / 1e8
}

// groupThousands formats 626250000 as "626,250,000".
func groupThousands(v uint64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// asciiPreview decodes an OP_RETURN payload and shows printable ASCII with
// dots elsewhere. Reports false when nothing in it is printable.
func asciiPreview(payloadHex string) (string, bool) {
	raw, err := hex.DecodeString(payloadHex)
	if err != nil || len(raw) == 0 {
		return "", false
	}
	var sb strings.Builder
	any := false
	for _, c := range raw {
		if c >= 32 && c <= 126 {
			sb.WriteByte(c)
			any = true
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String(), any
}

func versionDecimal(verHex string) string {
	var v uint64
	if _, err := fmt.Sscanf(verHex, "%x", &v); err != nil {
		return "?"
	}
	return fmt.Sprintf("%d", v)
}
