package elfinfo

import (
	"bytes"
	"debug/elf"

	"github.com/elliotchance/orderedmap"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
	"github.com/yalue/elf_reader"
)

// LibrarySet holds library names in first-insertion order without
// duplicates.
type LibrarySet struct {
	names *orderedmap.OrderedMap
}

func NewLibrarySet() *LibrarySet {
	return &LibrarySet{names: orderedmap.NewOrderedMap()}
}

// Add inserts name and reports whether it was new.
func (s *LibrarySet) Add(name string) bool {
	if _, ok := s.names.Get(name); ok {
		return false
	}
	s.names.Set(name, DynamicLibrary{Name: name})
	return true
}

func (s *LibrarySet) Len() int {
	return s.names.Len()
}

// Libraries returns the set in insertion order.
func (s *LibrarySet) Libraries() []DynamicLibrary {
	out := make([]DynamicLibrary, 0, s.names.Len())
	for _, key := range s.names.Keys() {
		value, _ := s.names.Get(key)
		out = append(out, value.(DynamicLibrary))
	}
	return out
}

// DynamicTables is what the object needs resolved at load time.
type DynamicTables struct {
	Symbols   []DynamicSymbol
	Libraries *LibrarySet
	Soname    string
	RunPaths  []string
}

// ExtractDynamic builds the symbol list as given and the deduplicated
// library set.
func ExtractDynamic(symbols, libraries []string) *DynamicTables {
	tables := &DynamicTables{
		Symbols:   make([]DynamicSymbol, 0, len(symbols)),
		Libraries: NewLibrarySet(),
	}
	for _, name := range symbols {
		tables.Symbols = append(tables.Symbols, DynamicSymbol{Name: name})
	}
	for _, name := range libraries {
		tables.Libraries.Add(name)
	}
	return tables
}

type rawSym32 struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

type rawSym64 struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

type rawDyn32 struct {
	Tag int32
	Val uint32
}

type rawDyn64 struct {
	Tag int64
	Val uint64
}

const (
	sym32Size = 16
	sym64Size = 24
	dyn32Size = 8
	dyn64Size = 16
)

// ReadDynamic collects the dynamic symbol names and the DT_NEEDED libraries
// of buf. Objects without dynamic sections, or whose class is unknown, yield
// empty tables.
func ReadDynamic(buf []byte, h *Header, sections []SectionHeader) (*DynamicTables, error) {
	if h.Identity.Class == ClassUnknown {
		return ExtractDynamic(nil, nil), nil
	}

	var symtabs, dyntabs []int
	for i := range sections {
		if sections[i].Size == 0 {
			continue
		}
		switch elf.SectionType(sections[i].Type) {
		case elf.SHT_DYNSYM:
			symtabs = append(symtabs, i)
		case elf.SHT_DYNAMIC:
			dyntabs = append(dyntabs, i)
		}
	}
	if len(symtabs) == 0 && len(dyntabs) == 0 {
		return ExtractDynamic(nil, nil), nil
	}
	for _, i := range append(append([]int{}, symtabs...), dyntabs...) {
		if _, ok := sectionContent(buf, &sections[i]); !ok {
			return nil, errors.Wrapf(ErrTruncated, "section %d at 0x%x+0x%x exceeds %d bytes",
				i, sections[i].Offset, uint64(sections[i].Size), len(buf))
		}
		if err := checkEntrySize(&sections[i]); err != nil {
			return nil, err
		}
	}

	order, err := h.Identity.ByteOrder()
	if err != nil {
		return nil, err
	}
	opts := &struc.Options{Order: order}
	bits := h.Identity.Bits()

	var symbols []string
	for _, i := range symtabs {
		content, _ := sectionContent(buf, &sections[i])
		names := tableAt(buf, sections, int(sections[i].Link))
		found, err := symbolNames(content, sections[i].EntrySize, bits, opts, names)
		if err != nil {
			return nil, errors.Wrapf(err, "dynamic symbol table %d", i)
		}
		symbols = append(symbols, found...)
	}

	reader := loadReader(buf, h)
	var libraries, runPaths []string
	var soname string
	for _, i := range dyntabs {
		names := tableAt(buf, sections, int(sections[i].Link))
		entries, err := readDynamicTable(reader, buf, &sections[i], bits, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "dynamic table %d", i)
		}
		for _, entry := range entries {
			switch entry.tag {
			case elf.DT_NEEDED:
				libraries = append(libraries, names.Resolve(uint32(entry.val)))
			case elf.DT_SONAME:
				soname = names.Resolve(uint32(entry.val))
			case elf.DT_RPATH, elf.DT_RUNPATH:
				runPaths = append(runPaths, names.Resolve(uint32(entry.val)))
			}
		}
	}

	tables := ExtractDynamic(symbols, libraries)
	tables.Soname = soname
	tables.RunPaths = runPaths
	return tables, nil
}

// checkEntrySize rejects tables whose entries are larger than the table.
// After it passes, the entry size fits in an int.
func checkEntrySize(s *SectionHeader) error {
	if s.EntrySize > uint64(s.Size) {
		return errors.Wrapf(ErrStructuralInconsistency, "section %d entry size 0x%x exceeds its size 0x%x",
			s.Index, s.EntrySize, uint64(s.Size))
	}
	return nil
}

// loadReader parses buf with elf_reader. It returns nil when elf_reader
// refuses the file, which it does for unused fields such as a bad program
// header offset, or when its fixed-size section walk would disagree with
// the header's entry size.
func loadReader(buf []byte, h *Header) elf_reader.ELFFile {
	entrySize := uint16(section32Size)
	if h.Identity.Bits() == 64 {
		entrySize = section64Size
	}
	if h.SectionEntrySize != entrySize {
		return nil
	}
	reader, err := elf_reader.ParseELFFile(buf)
	if err != nil {
		return nil
	}
	return reader
}

// readDynamicTable returns the entries of s up to DT_NULL, through
// elf_reader when it has the file and with the local decoder otherwise.
func readDynamicTable(reader elf_reader.ELFFile, buf []byte, s *SectionHeader, bits int, opts *struc.Options) ([]dynEntry, error) {
	index := uint16(s.Index)
	var out []dynEntry
	switch f := reader.(type) {
	case *elf_reader.ELF64File:
		if f.IsDynamicSection(index) {
			table, err := f.GetDynamicTable(index)
			if err != nil {
				return nil, errors.Wrapf(ErrStructuralInconsistency, "%v", err)
			}
			for _, entry := range table {
				if elf.DynTag(entry.Tag) == elf.DT_NULL {
					break
				}
				out = append(out, dynEntry{tag: elf.DynTag(entry.Tag), val: entry.Value})
			}
			return out, nil
		}
	case *elf_reader.ELF32File:
		if f.IsDynamicSection(index) {
			table, err := f.GetDynamicTable(index)
			if err != nil {
				return nil, errors.Wrapf(ErrStructuralInconsistency, "%v", err)
			}
			for _, entry := range table {
				if elf.DynTag(entry.Tag) == elf.DT_NULL {
					break
				}
				out = append(out, dynEntry{tag: elf.DynTag(entry.Tag), val: uint64(entry.Value)})
			}
			return out, nil
		}
	}
	content, _ := sectionContent(buf, s)
	return dynamicEntries(content, s.EntrySize, bits, opts)
}

// stride is the distance between entries. Callers have already bounded
// entrySize by checkEntrySize.
func stride(entrySize uint64, layout int) int {
	if entrySize < uint64(layout) {
		return layout
	}
	return int(entrySize)
}

// symbolNames skips the reserved null symbol and unnamed entries.
func symbolNames(content []byte, entrySize uint64, bits int, opts *struc.Options, names StringTable) ([]string, error) {
	layout := sym32Size
	if bits == 64 {
		layout = sym64Size
	}
	step := stride(entrySize, layout)

	var out []string
	for off := step; off+layout <= len(content); off += step {
		i := off / step
		raw := bytes.NewReader(content[off : off+layout])
		var nameOffset uint32
		if bits == 64 {
			var sym rawSym64
			if err := struc.UnpackWithOptions(raw, &sym, opts); err != nil {
				return nil, errors.Wrapf(err, "failed to unpack symbol %d", i)
			}
			nameOffset = sym.Name
		} else {
			var sym rawSym32
			if err := struc.UnpackWithOptions(raw, &sym, opts); err != nil {
				return nil, errors.Wrapf(err, "failed to unpack symbol %d", i)
			}
			nameOffset = sym.Name
		}
		if nameOffset == 0 {
			continue
		}
		out = append(out, names.Resolve(nameOffset))
	}
	return out, nil
}

type dynEntry struct {
	tag elf.DynTag
	val uint64
}

// dynamicEntries stops at DT_NULL.
func dynamicEntries(content []byte, entrySize uint64, bits int, opts *struc.Options) ([]dynEntry, error) {
	layout := dyn32Size
	if bits == 64 {
		layout = dyn64Size
	}
	step := stride(entrySize, layout)

	var out []dynEntry
	for off := 0; off+layout <= len(content); off += step {
		raw := bytes.NewReader(content[off : off+layout])
		var entry dynEntry
		if bits == 64 {
			var dyn rawDyn64
			if err := struc.UnpackWithOptions(raw, &dyn, opts); err != nil {
				return nil, errors.Wrap(err, "failed to unpack dynamic entry")
			}
			entry = dynEntry{tag: elf.DynTag(dyn.Tag), val: dyn.Val}
		} else {
			var dyn rawDyn32
			if err := struc.UnpackWithOptions(raw, &dyn, opts); err != nil {
				return nil, errors.Wrap(err, "failed to unpack dynamic entry")
			}
			entry = dynEntry{tag: elf.DynTag(dyn.Tag), val: uint64(dyn.Val)}
		}
		if entry.tag == elf.DT_NULL {
			break
		}
		out = append(out, entry)
	}
	return out, nil
}
