package elfinfo

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

const (
	identSize = elf.EI_NIDENT
	magicSize = 4
)

var elfMagic = []byte(elf.ELFMAG)

// MatchMagic reports whether buf starts with the ELF signature.
func MatchMagic(buf []byte) bool {
	return len(buf) >= magicSize && bytes.Equal(buf[:magicSize], elfMagic)
}

// DecodeIdentity validates and decodes the identification prefix of buf.
// A wrong signature is ErrInvalidIdentity; a correct one followed by fewer
// than 16 bytes is ErrTruncated.
func DecodeIdentity(buf []byte) (*Identity, error) {
	if !MatchMagic(buf) {
		return nil, errors.Wrap(ErrInvalidIdentity, "signature mismatch")
	}
	if len(buf) < identSize {
		return nil, errors.Wrapf(ErrTruncated, "identification needs %d bytes, have %d", identSize, len(buf))
	}

	id := &Identity{
		Version:    buf[elf.EI_VERSION],
		OSABI:      buf[elf.EI_OSABI],
		ABIVersion: buf[elf.EI_ABIVERSION],
	}
	copy(id.Ident[:], buf[:identSize])

	switch elf.Class(buf[elf.EI_CLASS]) {
	case elf.ELFCLASS32:
		id.Class = Class32
	case elf.ELFCLASS64:
		id.Class = Class64
	default:
		id.Class = ClassUnknown
	}

	switch elf.Data(buf[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		id.Data = LittleEndian
	case elf.ELFDATA2MSB:
		id.Data = BigEndian
	default:
		id.Data = DataUnknown
	}

	return id, nil
}

// RawClass returns the class byte as stored in the file.
func (id *Identity) RawClass() uint8 {
	return id.Ident[elf.EI_CLASS]
}

// RawData returns the data encoding byte as stored in the file.
func (id *Identity) RawData() uint8 {
	return id.Ident[elf.EI_DATA]
}

// ByteOrder maps the data encoding to a binary.ByteOrder.
func (id *Identity) ByteOrder() (binary.ByteOrder, error) {
	switch id.Data {
	case LittleEndian:
		return binary.LittleEndian, nil
	case BigEndian:
		return binary.BigEndian, nil
	}
	return nil, errors.Wrapf(ErrEndiannessUnavailable, "data encoding byte %d", id.RawData())
}

// Bits is the word width used for decoding. An unknown class decodes with
// the 32-bit layout, the smaller of the two.
func (id *Identity) Bits() int {
	if id.Class == Class64 {
		return 64
	}
	return 32
}

// MagicBytes formats the identification bytes as two-digit hex strings: the
// signature first, then the remaining bytes, in file order.
func (id *Identity) MagicBytes() ([]string, error) {
	out := make([]string, 0, identSize)
	for _, b := range id.Ident[:magicSize] {
		out = append(out, fmt.Sprintf("%02x", b))
	}
	for _, b := range id.Ident[magicSize:] {
		out = append(out, fmt.Sprintf("%02x", b))
	}
	if len(out) != len(id.Ident) {
		return nil, errors.Wrapf(ErrStructuralInconsistency, "magic list has %d entries, identification has %d", len(out), len(id.Ident))
	}
	return out, nil
}
