package ifc

import (
	"github.com/google/uuid"

	"github.com/buildstation/voidmap/pkg/errors"
)

// guidAlphabet is the IFC base64 variant used for compressed GUIDs.
const guidAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// GlobalIDLength is the length of a compressed IFC GUID.
const GlobalIDLength = 22

var guidIndex = func() map[byte]uint64 {
	m := make(map[byte]uint64, len(guidAlphabet))
	for i := 0; i < len(guidAlphabet); i++ {
		m[guidAlphabet[i]] = uint64(i)
	}
	return m
}()

// NewGlobalID returns a fresh compressed IFC GUID.
func NewGlobalID() string {
	return CompressGUID(uuid.New())
}

// CompressGUID encodes a UUID in the 22-character IFC form. The 128-bit
// value is written big-endian in 6-bit groups; the leading character
// carries only the top 2 bits.
func CompressGUID(id uuid.UUID) string {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(id[i])
	}

	var out [GlobalIDLength]byte
	for i := GlobalIDLength - 1; i >= 0; i-- {
		out[i] = guidAlphabet[lo&0x3f]
		lo = lo>>6 | hi<<58
		hi >>= 6
	}
	return string(out[:])
}

// ExpandGUID decodes a compressed IFC GUID back into a UUID.
func ExpandGUID(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if len(s) != GlobalIDLength {
		return id, errors.NewValidationError("global_id", s, "compressed GUID must be 22 characters")
	}

	var hi, lo uint64
	for i := 0; i < GlobalIDLength; i++ {
		v, ok := guidIndex[s[i]]
		if !ok {
			return id, errors.NewValidationError("global_id", s, "invalid GUID character")
		}
		hi = hi<<6 | lo>>58
		lo = lo<<6 | v
	}

	for i := 7; i >= 0; i-- {
		id[i] = byte(hi)
		hi >>= 8
	}
	for i := 15; i >= 8; i-- {
		id[i] = byte(lo)
		lo >>= 8
	}
	return id, nil
}

// ValidGlobalID reports whether s is a plausible compressed IFC GUID.
func ValidGlobalID(s string) bool {
	if len(s) != GlobalIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := guidIndex[s[i]]; !ok {
			return false
		}
	}
	// The leading character encodes only 2 bits.
	return guidIndex[s[0]] < 4
}
