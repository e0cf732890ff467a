package elfinfo

import (
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"

	"binmagic/elfinfo/elftest"
)

func TestStringTableResolve(t *testing.T) {
	table := StringTable("\x00.text\x00libc.so.6\x00open")
	tests := []struct {
		offset uint32
		want   string
	}{
		{0, ""},
		{1, ".text"},
		{3, "ext"},
		{7, "libc.so.6"},
		{12, "so.6"},
		{17, NotDefined}, // "open" has no terminator
		{uint32(len(table)), NotDefined},
		{0xffffffff, NotDefined},
	}
	for _, tt := range tests {
		if got := table.Resolve(tt.offset); got != tt.want {
			t.Errorf("Resolve(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}

	var empty StringTable
	if got := empty.Resolve(0); got != NotDefined {
		t.Errorf("empty Resolve(0) = %q, want %q", got, NotDefined)
	}
}

func TestSectionSize(t *testing.T) {
	tests := []struct {
		size   SectionSize
		wantKb uint64
		wantOk bool
		text   string
	}{
		{0, 0, false, "0 bytes"},
		{512, 0, false, "512 bytes"},
		{1023, 0, false, "1023 bytes"},
		{1024, 1, true, "1 Kb (1024 bytes)"},
		{2048, 2, true, "2 Kb (2048 bytes)"},
		{3000, 2, true, "2 Kb (3000 bytes)"},
	}
	for _, tt := range tests {
		kb, ok := tt.size.Kilobytes()
		if kb != tt.wantKb || ok != tt.wantOk {
			t.Errorf("SectionSize(%d).Kilobytes() = %d, %v, want %d, %v", tt.size, kb, ok, tt.wantKb, tt.wantOk)
		}
		if tt.size.Bytes() != uint64(tt.size) {
			t.Errorf("SectionSize(%d).Bytes() = %d", tt.size, tt.size.Bytes())
		}
		if got := tt.size.String(); got != tt.text {
			t.Errorf("SectionSize(%d).String() = %q, want %q", tt.size, got, tt.text)
		}
	}
}

func TestSectionFlagsLabel(t *testing.T) {
	tests := []struct {
		flags elf.SectionFlag
		want  string
	}{
		{0, FlagUndefined},
		{elf.SHF_WRITE | elf.SHF_ALLOC, "WRITE|ALLOC"},
		{elf.SHF_WRITE | elf.SHF_ALLOC | elf.SHF_TLS, "WRITE|ALLOC"},
		{elf.SHF_ALLOC | elf.SHF_EXECINSTR, "ALLOC|EXECINSTR"},
		{elf.SHF_WRITE | elf.SHF_ALLOC | elf.SHF_EXECINSTR, "WRITE|ALLOC"},
		{elf.SHF_WRITE, "WRITE"},
		{elf.SHF_ALLOC, "ALLOC"},
		{elf.SHF_ALLOC | elf.SHF_MERGE, "ALLOC"},
		{elf.SHF_WRITE | elf.SHF_EXECINSTR, "WRITE"},
		{elf.SHF_EXECINSTR, "EXECINSTR"},
		{elf.SHF_MERGE | elf.SHF_STRINGS, "MERGE"},
		{elf.SHF_STRINGS, "STRINGS"},
		{elf.SHF_INFO_LINK, "INFO_LINK"},
		{elf.SHF_LINK_ORDER, "LINK_ORDER"},
		{elf.SHF_OS_NONCONFORMING, "OS_NONCONFORMING"},
		{elf.SHF_GROUP, "GROUP"},
		{elf.SHF_TLS, "TLS"},
		{0x00100000, "MASKOS"},
		{elf.SHF_MASKOS, "MASKOS"},
		{0x80000000, "MASKPROC"},
		{0x00000800, FlagUndefined},
	}
	for _, tt := range tests {
		if got := SectionFlags(tt.flags).Label(); got != tt.want {
			t.Errorf("SectionFlags(0x%x).Label() = %q, want %q", uint64(tt.flags), got, tt.want)
		}
	}

	names := SectionFlags(elf.SHF_WRITE | elf.SHF_ALLOC | elf.SHF_TLS).Names()
	want := []string{"WRITE", "ALLOC", "TLS"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSectionTypeCategory(t *testing.T) {
	tests := []struct {
		typ          uint32
		want         string
		wantReserved bool
	}{
		{uint32(elf.SHT_NULL), "SHT_NULL", false},
		{uint32(elf.SHT_PROGBITS), "SHT_PROGBITS", false},
		{uint32(elf.SHT_DYNSYM), "SHT_DYNSYM", false},
		{uint32(elf.SHT_SYMTAB_SHNDX), "SHT_SYMTAB_SHNDX", false},
		{19, "SHT_NULL", false},
		{uint32(elf.SHT_LOOS), "SHT_NULL", true},
		{uint32(elf.SHT_GNU_HASH), "SHT_NULL", true},
		{uint32(elf.SHT_GNU_VERSYM), "SHT_NULL", true},
		{uint32(elf.SHT_LOPROC), "SHT_NULL", true},
		{uint32(elf.SHT_HIUSER), "SHT_NULL", true},
	}
	for _, tt := range tests {
		st := SectionType(tt.typ)
		if got := st.Category(); got != tt.want {
			t.Errorf("SectionType(0x%x).Category() = %q, want %q", tt.typ, got, tt.want)
		}
		if st.Reserved() != tt.wantReserved {
			t.Errorf("SectionType(0x%x).Reserved() = %v, want %v", tt.typ, st.Reserved(), tt.wantReserved)
		}
	}
}

func TestDecodeSections(t *testing.T) {
	for _, class := range []elf.Class{elf.ELFCLASS32, elf.ELFCLASS64} {
		for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
			buf := elftest.DynamicImage(class, order)
			h := decodeHeader(t, buf)
			sections, err := DecodeSections(buf, h)
			if err != nil {
				t.Fatalf("%v %v: DecodeSections() error = %v", class, order, err)
			}

			wantNames := []string{"", ".text", ".data", ".dynstr", ".dynsym", ".dynamic", ".shstrtab"}
			if len(sections) != len(wantNames) {
				t.Fatalf("%v %v: got %d sections, want %d", class, order, len(sections), len(wantNames))
			}
			for i, name := range wantNames {
				if sections[i].Name != name {
					t.Errorf("%v %v: section %d name = %q, want %q", class, order, i, sections[i].Name, name)
				}
				if sections[i].Index != i {
					t.Errorf("%v %v: section %d Index = %d", class, order, i, sections[i].Index)
				}
			}

			text, ok := SectionByName(sections, ".text")
			if !ok {
				t.Fatalf("%v %v: .text not found", class, order)
			}
			if text.Size != 2048 || text.Flags.Label() != "ALLOC|EXECINSTR" || text.HasEntryTable {
				t.Errorf("%v %v: .text = %+v", class, order, text)
			}
			data, _ := SectionByName(sections, ".data")
			if data.Flags.Label() != "WRITE|ALLOC" {
				t.Errorf("%v %v: .data flags = %q", class, order, data.Flags.Label())
			}
			dynsym, _ := SectionByName(sections, ".dynsym")
			if !dynsym.HasEntryTable || dynsym.EntrySize != elftest.SymbolEntrySize(class) {
				t.Errorf("%v %v: .dynsym entry size = %d", class, order, dynsym.EntrySize)
			}
			if dynsym.Type.Category() != "SHT_DYNSYM" || dynsym.Link != 3 {
				t.Errorf("%v %v: .dynsym = %+v", class, order, dynsym)
			}
		}
	}
}

func TestDecodeSectionsBadNameIndex(t *testing.T) {
	buf := elftest.Build(elftest.Image{
		Class:     elf.ELFCLASS64,
		Order:     binary.LittleEndian,
		Type:      elf.ET_REL,
		NameIndex: 40,
		Sections: []elftest.Section{
			{Name: ".text", Type: elf.SHT_PROGBITS, Data: []byte{0xc3}},
		},
	})
	sections, err := DecodeSections(buf, decodeHeader(t, buf))
	if err != nil {
		t.Fatalf("DecodeSections() error = %v", err)
	}
	for _, s := range sections {
		if s.Name != NotDefined {
			t.Errorf("section %d name = %q, want %q", s.Index, s.Name, NotDefined)
		}
	}
}

func TestDecodeSectionsErrors(t *testing.T) {
	buf := elftest.DynamicImage(elf.ELFCLASS64, binary.LittleEndian)

	h := decodeHeader(t, buf)
	if _, err := DecodeSections(buf[:len(buf)-1], h); !errors.Is(err, ErrTruncated) {
		t.Errorf("truncated table: error = %v, want ErrTruncated", err)
	}

	h = decodeHeader(t, buf)
	h.SectionEntrySize = 40
	if _, err := DecodeSections(buf, h); !errors.Is(err, ErrStructuralInconsistency) {
		t.Errorf("short entries: error = %v, want ErrStructuralInconsistency", err)
	}

	h = decodeHeader(t, buf)
	h.SectionCount = 0
	sections, err := DecodeSections(buf, h)
	if err != nil || len(sections) != 0 {
		t.Errorf("empty table: got %d sections, error = %v", len(sections), err)
	}
}
