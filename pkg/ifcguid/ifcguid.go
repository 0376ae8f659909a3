// Package ifcguid converts between UUIDs and the 22 character base-64 IFC GUID
// form used to identify elements in BCF.
package ifcguid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalid is returned for strings that are not IFC GUIDs
var ErrInvalid = errors.New("invalid IFC GUID")

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"
	// Length is the number of characters in an IFC GUID
	Length = 22
)

// FromUUID compresses a UUID. The first byte becomes two characters and each
// following group of three bytes becomes four.
func FromUUID(id uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(Length)

	writeDigits(&sb, uint32(id[0]), 2)
	for i := 1; i < 16; i += 3 {
		value := uint32(id[i])<<16 | uint32(id[i+1])<<8 | uint32(id[i+2])
		writeDigits(&sb, value, 4)
	}
	return sb.String()
}

// ToUUID expands an IFC GUID back into a UUID
func ToUUID(guid string) (uuid.UUID, error) {
	var id uuid.UUID
	if len(guid) != Length {
		return id, fmt.Errorf("%w: %q has %d characters", ErrInvalid, guid, len(guid))
	}

	first, err := readDigits(guid[:2])
	if err != nil {
		return id, err
	}
	if first > 0xff {
		return id, fmt.Errorf("%w: %q is out of range", ErrInvalid, guid)
	}
	id[0] = byte(first)

	for i, pos := 1, 2; i < 16; i, pos = i+3, pos+4 {
		value, err := readDigits(guid[pos : pos+4])
		if err != nil {
			return id, err
		}
		id[i] = byte(value >> 16)
		id[i+1] = byte(value >> 8)
		id[i+2] = byte(value)
	}
	return id, nil
}

// New returns the IFC GUID of a fresh random UUID
func New() string {
	return FromUUID(uuid.New())
}

// Valid reports whether guid decodes
func Valid(guid string) bool {
	_, err := ToUUID(guid)
	return err == nil
}

func writeDigits(sb *strings.Builder, value uint32, n int) {
	var buf [4]byte
	for i := n - 1; i >= 0; i-- {
		buf[i] = alphabet[value%64]
		value /= 64
	}
	sb.Write(buf[:n])
}

func readDigits(s string) (uint32, error) {
	var value uint32
	for _, r := range s {
		d := strings.IndexRune(alphabet, r)
		if d < 0 {
			return 0, fmt.Errorf("%w: unexpected character %q", ErrInvalid, r)
		}
		value = value*64 + uint32(d)
	}
	return value, nil
}
