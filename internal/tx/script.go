package tx

import (
	"encoding/hex"

	"bchwatch/internal/address"
)

// ScriptClass identifies the template an output script matches.
type ScriptClass int

const (
	ScriptEmpty ScriptClass = iota
	ScriptP2PKH
	ScriptP2SH
	ScriptOpReturn
	ScriptP2PK
	ScriptUnknown
)

func (c ScriptClass) String() string {
	switch c {
	case ScriptEmpty:
		return "EMPTY"
	case ScriptP2PKH:
		return "P2PKH"
	case ScriptP2SH:
		return "P2SH"
	case ScriptOpReturn:
		return "OP_RETURN"
	case ScriptP2PK:
		return "P2PK"
	default:
		return "UNKNOWN"
	}
}

// DecodedOutput is the classified, human-readable form of one output.
// Addresses are populated only for the hash-bearing classes; PayloadHex holds
// the extracted hash, pubkey, data payload or raw script depending on class.
type DecodedOutput struct {
	Value      uint64      `json:"value_satoshis"`
	Class      ScriptClass `json:"-"`
	ClassName  string      `json:"script_type"`
	CashAddr   string `json:"cashaddr,omitempty"`
	Legacy     string `json:"legacy,omitempty"`
	PayloadHex string `json:"payload_hex"`
}

// ClassifyOutput pattern-matches an output script against the known
// templates, first match wins, and derives both address encodings where a
// public-key or script hash is recoverable.
func ClassifyOutput(out Output) DecodedOutput {
	script := out.Script
	d := DecodedOutput{Value: out.Value}

	switch {
	case len(script) == 0:
		d.Class = ScriptEmpty

	// OP_DUP OP_HASH160 PUSH20 <hash> OP_EQUALVERIFY OP_CHECKSIG
	case len(script) == 25 &&
		script[0] == 0x76 && script[1] == 0xa9 && script[2] == 0x14 &&
		script[23] == 0x88 && script[24] == 0xac:
		h := script[3:23]
		d.Class = ScriptP2PKH
		d.CashAddr = address.EncodeCashAddr(address.MainnetPrefix, address.CashAddrP2PKH, h)
		d.Legacy = address.EncodeLegacy(address.LegacyP2PKH, h)
		d.PayloadHex = hex.EncodeToString(h)

	// OP_HASH160 PUSH20 <hash> OP_EQUAL
	case len(script) == 23 &&
		script[0] == 0xa9 && script[1] == 0x14 && script[22] == 0x87:
		h := script[2:22]
		d.Class = ScriptP2SH
		d.CashAddr = address.EncodeCashAddr(address.MainnetPrefix, address.CashAddrP2SH, h)
		d.Legacy = address.EncodeLegacy(address.LegacyP2SH, h)
		d.PayloadHex = hex.EncodeToString(h)

	case script[0] == 0x6a:
		d.Class = ScriptOpReturn
		d.PayloadHex = hex.EncodeToString(script[1:])

	// <pubkey push> OP_CHECKSIG with a 33- or 65-byte key
	case script[len(script)-1] == 0xac &&
		(len(script) == 35 || len(script) == 67) &&
		int(script[0]) == len(script)-2:
		pubkey := script[1 : len(script)-1]
		h := address.Hash160(pubkey)
		d.Class = ScriptP2PK
		d.CashAddr = address.EncodeCashAddr(address.MainnetPrefix, address.CashAddrP2PKH, h)
		d.Legacy = address.EncodeLegacy(address.LegacyP2PKH, h)
		d.PayloadHex = hex.EncodeToString(pubkey)

	default:
		d.Class = ScriptUnknown
		d.PayloadHex = hex.EncodeToString(script)
	}

	d.ClassName = d.Class.String()
	return d
}
