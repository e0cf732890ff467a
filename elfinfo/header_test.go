package elfinfo

import (
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"

	"binmagic/elfinfo/elftest"
)

func decodeHeader(t *testing.T, buf []byte) *Header {
	t.Helper()
	id, err := DecodeIdentity(buf)
	if err != nil {
		t.Fatalf("DecodeIdentity() error = %v", err)
	}
	h, err := DecodeHeader(buf, id)
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	return h
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name      string
		class     elf.Class
		order     binary.ByteOrder
		wantSize  uint16
		wantEntry uint16
	}{
		{"ELF64 little endian", elf.ELFCLASS64, binary.LittleEndian, 64, 64},
		{"ELF64 big endian", elf.ELFCLASS64, binary.BigEndian, 64, 64},
		{"ELF32 little endian", elf.ELFCLASS32, binary.LittleEndian, 52, 40},
		{"ELF32 big endian", elf.ELFCLASS32, binary.BigEndian, 52, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := decodeHeader(t, elftest.DynamicImage(tt.class, tt.order))
			if h.Type != ObjectType(elf.ET_DYN) {
				t.Errorf("Type = %v, want ET_DYN", h.Type)
			}
			if h.Machine.String() != "Intel/AMD 64-bit" {
				t.Errorf("Machine = %q", h.Machine.String())
			}
			if h.Entry != 0x1040 {
				t.Errorf("Entry = 0x%x, want 0x1040", h.Entry)
			}
			if h.Version != uint32(elf.EV_CURRENT) {
				t.Errorf("Version = %d, want 1", h.Version)
			}
			if h.HeaderSize != tt.wantSize {
				t.Errorf("HeaderSize = %d, want %d", h.HeaderSize, tt.wantSize)
			}
			if h.SectionEntrySize != tt.wantEntry {
				t.Errorf("SectionEntrySize = %d, want %d", h.SectionEntrySize, tt.wantEntry)
			}
			// null, .text, .data, .dynstr, .dynsym, .dynamic, .shstrtab
			if h.SectionCount != 7 || h.SectionNameIndex != 6 {
				t.Errorf("SectionCount = %d, SectionNameIndex = %d, want 7 and 6", h.SectionCount, h.SectionNameIndex)
			}
		})
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	full := elftest.DynamicImage(elf.ELFCLASS64, binary.LittleEndian)

	id, _ := DecodeIdentity(full)
	if _, err := DecodeHeader(full[:40], id); !errors.Is(err, ErrTruncated) {
		t.Errorf("truncated ELF64 header: error = %v, want ErrTruncated", err)
	}

	small := elftest.DynamicImage(elf.ELFCLASS32, binary.BigEndian)
	id, _ = DecodeIdentity(small)
	if _, err := DecodeHeader(small[:51], id); !errors.Is(err, ErrTruncated) {
		t.Errorf("truncated ELF32 header: error = %v, want ErrTruncated", err)
	}

	bad := append([]byte{}, full...)
	bad[elf.EI_DATA] = 0
	id, _ = DecodeIdentity(bad)
	if _, err := DecodeHeader(bad, id); !errors.Is(err, ErrEndiannessUnavailable) {
		t.Errorf("unknown data encoding: error = %v, want ErrEndiannessUnavailable", err)
	}
}

func TestDecodeHeaderUnknownClass(t *testing.T) {
	buf := elftest.DynamicImage(elf.ELFCLASS32, binary.LittleEndian)
	buf[elf.EI_CLASS] = 5
	h := decodeHeader(t, buf)
	if h.HeaderSize != 52 {
		t.Errorf("HeaderSize = %d, want the 32-bit layout", h.HeaderSize)
	}
}

func TestReportedSectionCount(t *testing.T) {
	tests := []struct {
		raw  uint16
		want int
	}{
		{0, 0},
		{1, 0},
		{12, 11},
		{0xffff, 0xfffe},
	}
	for _, tt := range tests {
		h := &Header{SectionCount: tt.raw}
		if got := h.ReportedSectionCount(); got != tt.want {
			t.Errorf("ReportedSectionCount(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestHeaderLabels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"exec", ObjectType(elf.ET_EXEC).String(), "ET_EXEC (Executable file)"},
		{"core", ObjectType(elf.ET_CORE).String(), "ET_CORE (Core file)"},
		{"os specific type", ObjectType(0xfe00).String(), "ET_UNKNOWN (0xfe00)"},
		{"no machine", Machine(0).String(), "No machine"},
		{"mips", Machine(elf.EM_MIPS).String(), "MIPS I Architecture"},
		{"ppc", Machine(elf.EM_PPC).String(), "PowerPC 32/64 bit"},
		{"ppc64", Machine(elf.EM_PPC64).String(), "PowerPC 32/64 bit"},
		{"aarch64", Machine(elf.EM_AARCH64).String(), "Unknown"},
		{"max machine", Machine(0xffff).String(), "Unknown"},
		{"current version", VersionLabel(1), "EV_CURRENT"},
		{"bad version", VersionLabel(9), "UNKNOWN"},
		{"class 64", Class64.String(), "64 BIT"},
		{"little endian", LittleEndian.String(), "LE with 2's complement"},
		{"unknown osabi", OSABILabel(200), "Unknown (200)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if ObjectType(0xfe00).Known() {
		t.Error("ObjectType(0xfe00).Known() = true")
	}
	if !ObjectType(elf.ET_REL).Known() {
		t.Error("ObjectType(ET_REL).Known() = false")
	}
}

func TestRawLabels(t *testing.T) {
	if got := ClassLabel(7); got != "UNKNOWN" {
		t.Errorf("ClassLabel(7) = %q", got)
	}
	if got := ClassLabel(0); got != "NONE" {
		t.Errorf("ClassLabel(0) = %q", got)
	}
	if got := DataLabel(2); got != "BE with 2's complement" {
		t.Errorf("DataLabel(2) = %q", got)
	}
}
