// Package fingerprint computes the canonical content hash of a reading.
//
// The canonical serialization is a JSON object with the four reading fields
// in ascending key order and no insignificant whitespace:
//
//	{"hr":72,"spo2":95.2,"temp":36.6,"timestamp":1756000000.5}
//
// Integers are base-10; floats use Go's shortest round-trip formatting as
// emitted by encoding/json. The digest is SHA-256 over those bytes, hex
// encoded in lowercase (64 characters). This layout is the cross-process
// contract: any implementation producing the same bytes produces the same
// fingerprint.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/vitaltrace/vitaltrace/pkg/types"
)

// HexLen is the length of a hex-encoded fingerprint.
const HexLen = 64

// canonical fixes the field order of the serialized form. encoding/json
// emits struct fields in declaration order, so the keys below must stay
// sorted ascending.
type canonical struct {
	HR        int     `json:"hr"`
	SpO2      float64 `json:"spo2"`
	Temp      float64 `json:"temp"`
	Timestamp float64 `json:"timestamp"`
}

// Hash returns the lowercase hex SHA-256 fingerprint of r's canonical
// serialization. Identical readings always hash identically.
func Hash(r types.Reading) string {
	payload, _ := json.Marshal(canonical{
		HR:        r.HR,
		SpO2:      r.SpO2,
		Temp:      r.Temp,
		Timestamp: r.Timestamp,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Bytes32 decodes a hex fingerprint into the fixed-width binary form the
// ledger expects.
func Bytes32(hexDigest string) ([32]byte, error) {
	var out [32]byte
	if len(hexDigest) != HexLen {
		return out, fmt.Errorf("fingerprint: want %d hex chars, got %d", HexLen, len(hexDigest))
	}
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return out, fmt.Errorf("fingerprint: decode hex: %w", err)
	}
	copy(out[:], raw)
	return out, nil
}
