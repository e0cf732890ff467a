package elfinfo

import (
	"bytes"
	"fmt"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

type rawSection32 struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Off       uint32
	Size      uint32
	Link      uint32
	Info      uint32
	Addralign uint32
	Entsize   uint32
}

type rawSection64 struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Off       uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

const (
	section32Size = 40
	section64Size = 64
)

// DecodeSections walks the section header table of buf in file order and
// resolves every name through the section name string table.
func DecodeSections(buf []byte, h *Header) ([]SectionHeader, error) {
	if h.SectionCount == 0 {
		return nil, nil
	}

	entrySize := uint64(section32Size)
	if h.Identity.Bits() == 64 {
		entrySize = section64Size
	}
	if uint64(h.SectionEntrySize) < entrySize {
		return nil, errors.Wrapf(ErrStructuralInconsistency, "section entry size %d is below %d", h.SectionEntrySize, entrySize)
	}

	tableSize := uint64(h.SectionEntrySize) * uint64(h.SectionCount)
	end := h.SectionOffset + tableSize
	if end < h.SectionOffset || end > uint64(len(buf)) {
		return nil, errors.Wrapf(ErrTruncated, "section header table 0x%x+0x%x exceeds %d bytes", h.SectionOffset, tableSize, len(buf))
	}

	order, err := h.Identity.ByteOrder()
	if err != nil {
		return nil, err
	}
	opts := &struc.Options{Order: order}

	sections := make([]SectionHeader, 0, h.SectionCount)
	for i := 0; i < int(h.SectionCount); i++ {
		start := h.SectionOffset + uint64(i)*uint64(h.SectionEntrySize)
		entry, err := decodeSection(buf[start:start+entrySize], h.Identity.Bits(), opts)
		if err != nil {
			return nil, errors.Wrapf(err, "section %d", i)
		}
		entry.Index = i
		sections = append(sections, entry)
	}

	names := tableAt(buf, sections, int(h.SectionNameIndex))
	for i := range sections {
		sections[i].Name = names.Resolve(sections[i].NameOffset)
	}
	return sections, nil
}

func decodeSection(raw []byte, bits int, opts *struc.Options) (SectionHeader, error) {
	if bits == 64 {
		var s rawSection64
		if err := struc.UnpackWithOptions(bytes.NewReader(raw), &s, opts); err != nil {
			return SectionHeader{}, errors.Wrap(err, "failed to unpack ELF64 section header")
		}
		return SectionHeader{
			NameOffset:    s.Name,
			Type:          SectionType(s.Type),
			Flags:         SectionFlags(s.Flags),
			Addr:          s.Addr,
			Offset:        s.Off,
			Size:          SectionSize(s.Size),
			Link:          s.Link,
			Info:          s.Info,
			Align:         s.Addralign,
			EntrySize:     s.Entsize,
			HasEntryTable: s.Entsize > 0,
		}, nil
	}

	var s rawSection32
	if err := struc.UnpackWithOptions(bytes.NewReader(raw), &s, opts); err != nil {
		return SectionHeader{}, errors.Wrap(err, "failed to unpack ELF32 section header")
	}
	return SectionHeader{
		NameOffset:    s.Name,
		Type:          SectionType(s.Type),
		Flags:         SectionFlags(s.Flags),
		Addr:          uint64(s.Addr),
		Offset:        uint64(s.Off),
		Size:          SectionSize(s.Size),
		Link:          s.Link,
		Info:          s.Info,
		Align:         uint64(s.Addralign),
		EntrySize:     uint64(s.Entsize),
		HasEntryTable: s.Entsize > 0,
	}, nil
}

// Bytes is the raw byte count.
func (s SectionSize) Bytes() uint64 {
	return uint64(s)
}

// Kilobytes returns floor(size/1024) for sizes of at least 1024 bytes.
func (s SectionSize) Kilobytes() (uint64, bool) {
	if s < 1024 {
		return 0, false
	}
	return uint64(s) / 1024, true
}

func (s SectionSize) String() string {
	if kb, ok := s.Kilobytes(); ok {
		return fmt.Sprintf("%d Kb (%d bytes)", kb, uint64(s))
	}
	return fmt.Sprintf("%d bytes", uint64(s))
}

// SectionByName returns the first section called name.
func SectionByName(sections []SectionHeader, name string) (*SectionHeader, bool) {
	for i := range sections {
		if sections[i].Name == name {
			return &sections[i], true
		}
	}
	return nil, false
}
