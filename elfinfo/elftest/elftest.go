// Package elftest builds small ELF images in memory for unit tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/lunixbochs/struc"
)

// Section describes one section of an Image. Index 0 (the null section) and
// the trailing .shstrtab are added by Build.
type Section struct {
	Name    string
	Type    elf.SectionType
	Flags   elf.SectionFlag
	Data    []byte
	Link    uint32
	EntSize uint64
}

// Image is the input to Build.
type Image struct {
	Class    elf.Class
	Order    binary.ByteOrder
	Type     elf.Type
	Machine  elf.Machine
	Entry    uint64
	Sections []Section
	// NameIndex overrides e_shstrndx when non-zero.
	NameIndex uint16
	// ProgramOffset is written to e_phoff. The image has no program headers.
	ProgramOffset uint64
}

type header32 struct {
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

type header64 struct {
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

type section32 struct {
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

type section64 struct {
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

type sym32 struct {
	Name  uint32
	Value uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

type sym64 struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

type dyn32 struct {
	Tag int32
	Val uint32
}

type dyn64 struct {
	Tag int64
	Val uint64
}

func (img *Image) is64() bool {
	return img.Class == elf.ELFCLASS64
}

func (img *Image) pack(w *bytes.Buffer, v interface{}) {
	if err := struc.PackWithOptions(w, v, &struc.Options{Order: img.Order}); err != nil {
		panic(err)
	}
}

// Ident returns the identification bytes for the image.
func (img *Image) Ident() [16]byte {
	var ident [16]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(img.Class)
	if img.Order == binary.BigEndian {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	} else {
		ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	}
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	return ident
}

// Build lays out the header, the section contents and the section header
// table, in that order.
func Build(img Image) []byte {
	headerSize, entrySize := 52, 40
	if img.is64() {
		headerSize, entrySize = 64, 64
	}

	sections := append([]Section{{}}, img.Sections...)
	var names bytes.Buffer
	names.WriteByte(0)
	nameOffsets := make([]uint32, len(sections)+1)
	for i := 1; i < len(sections); i++ {
		nameOffsets[i] = uint32(names.Len())
		names.WriteString(sections[i].Name)
		names.WriteByte(0)
	}
	nameOffsets[len(sections)] = uint32(names.Len())
	names.WriteString(".shstrtab")
	names.WriteByte(0)
	sections = append(sections, Section{Name: ".shstrtab", Type: elf.SHT_STRTAB, Data: names.Bytes()})

	var body bytes.Buffer
	offsets := make([]uint64, len(sections))
	for i, s := range sections {
		if i == 0 {
			continue
		}
		offsets[i] = uint64(headerSize + body.Len())
		body.Write(s.Data)
	}
	for (headerSize+body.Len())%8 != 0 {
		body.WriteByte(0)
	}
	shoff := uint64(headerSize + body.Len())

	nameIndex := uint16(len(sections) - 1)
	if img.NameIndex != 0 {
		nameIndex = img.NameIndex
	}

	var out bytes.Buffer
	if img.is64() {
		img.pack(&out, &header64{
			Ident:     img.Ident(),
			Type:      uint16(img.Type),
			Machine:   uint16(img.Machine),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     img.Entry,
			Phoff:     img.ProgramOffset,
			Shoff:     shoff,
			Ehsize:    uint16(headerSize),
			Phentsize: 56,
			Shentsize: uint16(entrySize),
			Shnum:     uint16(len(sections)),
			Shstrndx:  nameIndex,
		})
	} else {
		img.pack(&out, &header32{
			Ident:     img.Ident(),
			Type:      uint16(img.Type),
			Machine:   uint16(img.Machine),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     uint32(img.Entry),
			Phoff:     uint32(img.ProgramOffset),
			Shoff:     uint32(shoff),
			Ehsize:    uint16(headerSize),
			Phentsize: 32,
			Shentsize: uint16(entrySize),
			Shnum:     uint16(len(sections)),
			Shstrndx:  nameIndex,
		})
	}
	out.Write(body.Bytes())

	for i, s := range sections {
		if i == 0 {
			out.Write(make([]byte, entrySize))
			continue
		}
		if img.is64() {
			img.pack(&out, &section64{
				Name:      nameOffsets[i],
				Type:      uint32(s.Type),
				Flags:     uint64(s.Flags),
				Off:       offsets[i],
				Size:      uint64(len(s.Data)),
				Link:      s.Link,
				Addralign: 1,
				Entsize:   s.EntSize,
			})
		} else {
			img.pack(&out, &section32{
				Name:      nameOffsets[i],
				Type:      uint32(s.Type),
				Flags:     uint32(s.Flags),
				Off:       uint32(offsets[i]),
				Size:      uint32(len(s.Data)),
				Link:      s.Link,
				Addralign: 1,
				Entsize:   uint32(s.EntSize),
			})
		}
	}
	return out.Bytes()
}

// StringTable returns a string table holding names and the offset of each.
func StringTable(names ...string) ([]byte, map[string]uint32) {
	var buf bytes.Buffer
	buf.WriteByte(0)
	offsets := make(map[string]uint32, len(names))
	for _, name := range names {
		if _, ok := offsets[name]; ok {
			continue
		}
		offsets[name] = uint32(buf.Len())
		buf.WriteString(name)
		buf.WriteByte(0)
	}
	return buf.Bytes(), offsets
}

// Symbols returns a dynamic symbol table: the null symbol followed by one
// global function symbol per name.
func Symbols(class elf.Class, order binary.ByteOrder, offsets map[string]uint32, names ...string) []byte {
	img := &Image{Class: class, Order: order}
	var buf bytes.Buffer
	info := uint8(elf.STB_GLOBAL)<<4 | uint8(elf.STT_FUNC)
	if img.is64() {
		img.pack(&buf, &sym64{})
		for _, name := range names {
			img.pack(&buf, &sym64{Name: offsets[name], Info: info})
		}
	} else {
		img.pack(&buf, &sym32{})
		for _, name := range names {
			img.pack(&buf, &sym32{Name: offsets[name], Info: info})
		}
	}
	return buf.Bytes()
}

// Dynamic returns a dynamic table with one DT_NEEDED entry per library,
// terminated by DT_NULL.
func Dynamic(class elf.Class, order binary.ByteOrder, offsets map[string]uint32, libraries ...string) []byte {
	img := &Image{Class: class, Order: order}
	var buf bytes.Buffer
	for _, lib := range libraries {
		if img.is64() {
			img.pack(&buf, &dyn64{Tag: int64(elf.DT_NEEDED), Val: uint64(offsets[lib])})
		} else {
			img.pack(&buf, &dyn32{Tag: int32(elf.DT_NEEDED), Val: offsets[lib]})
		}
	}
	if img.is64() {
		img.pack(&buf, &dyn64{Tag: int64(elf.DT_NULL)})
	} else {
		img.pack(&buf, &dyn32{Tag: int32(elf.DT_NULL)})
	}
	return buf.Bytes()
}

// SymbolEntrySize and DynamicEntrySize return the table entry sizes for class.
func SymbolEntrySize(class elf.Class) uint64 {
	if class == elf.ELFCLASS64 {
		return 24
	}
	return 16
}

func DynamicEntrySize(class elf.Class) uint64 {
	if class == elf.ELFCLASS64 {
		return 16
	}
	return 8
}

// Dynamically linked image: .text, .data, .dynstr, .dynsym, .dynamic.
var (
	DefaultSymbols   = []string{"puts", "printf", "puts", "__libc_start_main"}
	DefaultLibraries = []string{"libc.so.6", "libm.so.6", "libc.so.6"}
)

// DynamicSections returns the sections of DynamicImage: .text (2048 bytes),
// .data (512 bytes), .dynstr, .dynsym and .dynamic.
func DynamicSections(class elf.Class, order binary.ByteOrder) []Section {
	strtab, offsets := StringTable(append(append([]string{}, DefaultSymbols...), DefaultLibraries...)...)
	return []Section{
		{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Data: make([]byte, 2048)},
		{Name: ".data", Type: elf.SHT_PROGBITS, Flags: elf.SHF_WRITE | elf.SHF_ALLOC, Data: make([]byte, 512)},
		{Name: ".dynstr", Type: elf.SHT_STRTAB, Flags: elf.SHF_ALLOC, Data: strtab},
		{Name: ".dynsym", Type: elf.SHT_DYNSYM, Flags: elf.SHF_ALLOC, Link: 3,
			Data: Symbols(class, order, offsets, DefaultSymbols...), EntSize: SymbolEntrySize(class)},
		{Name: ".dynamic", Type: elf.SHT_DYNAMIC, Flags: elf.SHF_WRITE | elf.SHF_ALLOC, Link: 3,
			Data: Dynamic(class, order, offsets, DefaultLibraries...), EntSize: DynamicEntrySize(class)},
	}
}

// DynamicImage builds a dynamically linked shared object with
// DefaultSymbols and DefaultLibraries.
func DynamicImage(class elf.Class, order binary.ByteOrder) []byte {
	return Build(Image{
		Class:    class,
		Order:    order,
		Type:     elf.ET_DYN,
		Machine:  elf.EM_X86_64,
		Entry:    0x1040,
		Sections: DynamicSections(class, order),
	})
}
