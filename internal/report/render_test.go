package report

import (
	"strings"
	"testing"

	"bchwatch/internal/config"
	"bchwatch/internal/inspect"
	"bchwatch/internal/tx"
)

func sampleResult() *inspect.Result {
	return &inspect.Result{
		Pool:            "testpool",
		Host:            "stratum.example.com:3333",
		JobID:           "j7",
		VersionHex:      "20000000",
		BitsHex:         "1d00ffff",
		Difficulty:      "1.00",
		DifficultyRaw:   1.0,
		NTime:           "66f2a3c1",
		NTimeUTC:        "2024-09-24 11:34:25 UTC",
		CleanJobs:       true,
		PoolDifficulty:  4096,
		PrevHash:        "1c1d1e1f18191a1b14151617101112130c0d0e0f08090a0b0405060700010203",
		Height:          658466,
		HeightKnown:     true,
		Tag:             "/Test Pool/",
		ScriptSigHex:    "03220c0a2f5465737420506f6f6c2ff000000100000000",
		TagRawHex:       "2f5465737420506f6f6c2ff000000100000000",
		ExtraNonce1:     "f0000001",
		ExtraNonce2Size: 4,
		TotalReward:     626250000,
		Outputs: []tx.DecodedOutput{
			{
				Value:      625000000,
				Class:      tx.ScriptP2PKH,
				ClassName:  "P2PKH",
				CashAddr:   "bitcoincash:qp63uahgrxged4z5jswyt5dn5v3lzsem6cy4spdc2h",
				Legacy:     "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH",
				PayloadHex: "751e76e8199196d454941c45d1b3a323f1433bd6",
			},
			{
				Value:      1250000,
				Class:      tx.ScriptOpReturn,
				ClassName:  "OP_RETURN",
				PayloadHex: "04706f6f6c",
			},
		},
		MerkleBranches: []string{"ab", "cd"},
		CoinbaseHex:    strings.Repeat("ab", 70),
	}
}

func TestRenderSections(t *testing.T) {
	out := Render(sampleResult())
	for _, want := range []string{
		"Basic Info",
		"Block Data",
		"Coinbase Tag",
		"Coinbase Outputs (2)",
		"Merkle Branch (2 levels ≈ 4 txs)",
		"Raw Coinbase Tx (hex)",
		"TESTPOOL (stratum.example.com:3333)",
		"0x1d00ffff → 1.00",
		"Height:       658466",
		"6.26250000 BCH (626,250,000 sat)",
		"CashAddr:   bitcoincash:qp63uahgrxged4z5jswyt5dn5v3lzsem6cy4spdc2h",
		"Legacy:     1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH",
		"Data (hex): 04706f6f6c",
		"Readable:   .pool",
		"Pool Diff:    4096",
		"✓ TESTPOOL — done",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in rendered report", want)
		}
	}
}

func TestRenderWrapsRawHex(t *testing.T) {
	out := Render(sampleResult())
	// 140 hex chars wrap as 64 + 64 + 12.
	if !strings.Contains(out, "│  "+strings.Repeat("ab", 32)) {
		t.Error("missing full-width hex line")
	}
	if !strings.Contains(out, "│  "+strings.Repeat("ab", 6)+"\n") {
		t.Error("missing hex tail line")
	}
}

func TestRenderUnknownHeight(t *testing.T) {
	res := sampleResult()
	res.HeightKnown = false
	res.Height = 0
	if !strings.Contains(Render(res), "Height:       unknown") {
		t.Error("unknown height not rendered")
	}
}

func TestRenderSkipsPoolDiffWhenUnset(t *testing.T) {
	res := sampleResult()
	res.PoolDifficulty = 0
	if strings.Contains(Render(res), "Pool Diff") {
		t.Error("zero pool difficulty should be omitted")
	}
}

func TestListPools(t *testing.T) {
	out := ListPools([]config.Pool{
		{Name: "alpha", Host: "a.example.com", Port: 3333},
		{Name: "beta", Host: "b.example.com", Port: 4444},
	})
	if !strings.Contains(out, "Preconfigured pools (2)") {
		t.Error("missing count")
	}
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "b.example.com:4444") {
		t.Errorf("missing entries: %s", out)
	}
}

func TestSummary(t *testing.T) {
	out := Summary(11, 8, 3)
	if !strings.Contains(out, "Total: 11  |  Success: 8  |  Failed: 3") {
		t.Errorf("summary: %s", out)
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[uint64]string{
		0:         "0",
		999:       "999",
		1000:      "1,000",
		626250000: "626,250,000",
	}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%d) = %s, want %s", in, got, want)
		}
	}
}
