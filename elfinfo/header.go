package elfinfo

import (
	"bytes"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// On-disk header layouts. Field order and widths follow Elf32_Ehdr and
// Elf64_Ehdr.
type rawHeader32 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

type rawHeader64 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

const (
	header32Size = 52
	header64Size = 64
)

// DecodeHeader decodes the file header of buf using the width and byte order
// recorded in id.
func DecodeHeader(buf []byte, id *Identity) (*Header, error) {
	order, err := id.ByteOrder()
	if err != nil {
		return nil, err
	}
	opts := &struc.Options{Order: order}

	if id.Bits() == 64 {
		if len(buf) < header64Size {
			return nil, errors.Wrapf(ErrTruncated, "ELF64 header needs %d bytes, have %d", header64Size, len(buf))
		}
		var raw rawHeader64
		if err := struc.UnpackWithOptions(bytes.NewReader(buf[:header64Size]), &raw, opts); err != nil {
			return nil, errors.Wrap(err, "failed to unpack ELF64 header")
		}
		return &Header{
			Identity:         id,
			Type:             ObjectType(raw.Type),
			Machine:          Machine(raw.Machine),
			Version:          raw.Version,
			Entry:            raw.Entry,
			Flags:            raw.Flags,
			HeaderSize:       raw.Ehsize,
			ProgramOffset:    raw.Phoff,
			ProgramEntrySize: raw.Phentsize,
			ProgramCount:     raw.Phnum,
			SectionOffset:    raw.Shoff,
			SectionEntrySize: raw.Shentsize,
			SectionCount:     raw.Shnum,
			SectionNameIndex: raw.Shstrndx,
		}, nil
	}

	if len(buf) < header32Size {
		return nil, errors.Wrapf(ErrTruncated, "ELF32 header needs %d bytes, have %d", header32Size, len(buf))
	}
	var raw rawHeader32
	if err := struc.UnpackWithOptions(bytes.NewReader(buf[:header32Size]), &raw, opts); err != nil {
		return nil, errors.Wrap(err, "failed to unpack ELF32 header")
	}
	return &Header{
		Identity:         id,
		Type:             ObjectType(raw.Type),
		Machine:          Machine(raw.Machine),
		Version:          raw.Version,
		Entry:            uint64(raw.Entry),
		Flags:            raw.Flags,
		HeaderSize:       raw.Ehsize,
		ProgramOffset:    uint64(raw.Phoff),
		ProgramEntrySize: raw.Phentsize,
		ProgramCount:     raw.Phnum,
		SectionOffset:    uint64(raw.Shoff),
		SectionEntrySize: raw.Shentsize,
		SectionCount:     raw.Shnum,
		SectionNameIndex: raw.Shstrndx,
	}, nil
}

// ReportedSectionCount is the section count shown to users: the raw count
// minus one for the reserved null entry. An empty table reports zero.
func (h *Header) ReportedSectionCount() int {
	if h.SectionCount == 0 {
		return 0
	}
	return int(h.SectionCount) - 1
}
