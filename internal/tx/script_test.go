package tx

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestClassifyOutputP2PKH(t *testing.T) {
	hash := mustHex(t, "751e76e8199196d454941c45d1b3a323f1433bd6")
	script := append(append([]byte{0x76, 0xa9, 0x14}, hash...), 0x88, 0xac)
	dec := ClassifyOutput(Output{Value: 625000000, Script: script})
	if dec.Class != ScriptP2PKH || dec.ClassName != "P2PKH" {
		t.Fatalf("class = %v", dec.Class)
	}
	if dec.PayloadHex != hex.EncodeToString(hash) {
		t.Errorf("payload = %s", dec.PayloadHex)
	}
	if dec.CashAddr != "bitcoincash:qp63uahgrxged4z5jswyt5dn5v3lzsem6cy4spdc2h" {
		t.Errorf("cashaddr = %s", dec.CashAddr)
	}
	if dec.Legacy != "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH" {
		t.Errorf("legacy = %s", dec.Legacy)
	}
}

func TestClassifyOutputP2SH(t *testing.T) {
	hash := mustHex(t, "751e76e8199196d454941c45d1b3a323f1433bd6")
	script := append(append([]byte{0xa9, 0x14}, hash...), 0x87)
	dec := ClassifyOutput(Output{Value: 1, Script: script})
	if dec.Class != ScriptP2SH {
		t.Fatalf("class = %v", dec.Class)
	}
	if dec.PayloadHex != hex.EncodeToString(hash) {
		t.Errorf("payload = %s", dec.PayloadHex)
	}
	if dec.CashAddr == "" || dec.Legacy == "" {
		t.Error("P2SH should carry both address forms")
	}
}

func TestClassifyOutputOpReturn(t *testing.T) {
	dec := ClassifyOutput(Output{Script: mustHex(t, "6a04706f6f6c")})
	if dec.Class != ScriptOpReturn {
		t.Fatalf("class = %v", dec.Class)
	}
	if dec.PayloadHex != "04706f6f6c" {
		t.Errorf("payload = %s", dec.PayloadHex)
	}
	if dec.CashAddr != "" || dec.Legacy != "" {
		t.Error("OP_RETURN has no address")
	}

	// Bare OP_RETURN with no payload.
	bare := ClassifyOutput(Output{Script: []byte{0x6a}})
	if bare.Class != ScriptOpReturn || bare.PayloadHex != "" {
		t.Errorf("bare OP_RETURN: class=%v payload=%q", bare.Class, bare.PayloadHex)
	}
}

func TestClassifyOutputP2PK(t *testing.T) {
	// Compressed: 33-byte push.
	pub := mustHex(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	script := append(append([]byte{0x21}, pub...), 0xac)
	dec := ClassifyOutput(Output{Script: script})
	if dec.Class != ScriptP2PK {
		t.Fatalf("compressed class = %v", dec.Class)
	}
	if dec.PayloadHex != hex.EncodeToString(pub) {
		t.Errorf("payload = %s", dec.PayloadHex)
	}

	// Uncompressed: 65-byte push.
	long := append([]byte{0x41, 0x04}, bytes.Repeat([]byte{0xab}, 64)...)
	long = append(long, 0xac)
	if got := ClassifyOutput(Output{Script: long}); got.Class != ScriptP2PK {
		t.Errorf("uncompressed class = %v", got.Class)
	}
}

func TestClassifyOutputEmptyAndUnknown(t *testing.T) {
	if got := ClassifyOutput(Output{}); got.Class != ScriptEmpty {
		t.Errorf("empty class = %v", got.Class)
	}
	unknowns := [][]byte{
		{0x51},                       // OP_1
		mustHex(t, "76a91488ac"),     // P2PKH shape, wrong length
		append([]byte{0x21}, bytes.Repeat([]byte{1}, 34)...), // 35 bytes not ending ac
	}
	for _, s := range unknowns {
		if got := ClassifyOutput(Output{Script: s}); got.Class != ScriptUnknown {
			t.Errorf("script %x: class = %v", s, got.Class)
		}
	}
}

func TestScriptClassString(t *testing.T) {
	want := map[ScriptClass]string{
		ScriptEmpty:    "EMPTY",
		ScriptP2PKH:    "P2PKH",
		ScriptP2SH:     "P2SH",
		ScriptOpReturn: "OP_RETURN",
		ScriptP2PK:     "P2PK",
		ScriptUnknown:  "UNKNOWN",
	}
	for c, s := range want {
		if c.String() != s {
			t.Errorf("%d.String() = %s, want %s", c, c.String(), s)
		}
	}
}
