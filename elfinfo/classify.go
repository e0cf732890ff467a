package elfinfo

import (
	"debug/elf"
	"fmt"
)

type codeLabel struct {
	code  uint32
	label string
}

// lookup walks table in order. The caller supplies the fallback arm.
func lookup(table []codeLabel, code uint32) (string, bool) {
	for _, entry := range table {
		if entry.code == code {
			return entry.label, true
		}
	}
	return "", false
}

var classLabels = []codeLabel{
	{uint32(elf.ELFCLASSNONE), "NONE"},
	{uint32(elf.ELFCLASS32), "32 BIT"},
	{uint32(elf.ELFCLASS64), "64 BIT"},
}

var dataLabels = []codeLabel{
	{uint32(elf.ELFDATANONE), "Invalid data encoding"},
	{uint32(elf.ELFDATA2LSB), "LE with 2's complement"},
	{uint32(elf.ELFDATA2MSB), "BE with 2's complement"},
}

var versionLabels = []codeLabel{
	{uint32(elf.EV_NONE), "EV_NONE"},
	{uint32(elf.EV_CURRENT), "EV_CURRENT"},
}

var osabiLabels = []codeLabel{
	{uint32(elf.ELFOSABI_NONE), "UNIX System V"},
	{uint32(elf.ELFOSABI_HPUX), "HP-UX"},
	{uint32(elf.ELFOSABI_NETBSD), "NetBSD"},
	{uint32(elf.ELFOSABI_LINUX), "GNU/Linux"},
	{uint32(elf.ELFOSABI_SOLARIS), "Solaris"},
	{uint32(elf.ELFOSABI_FREEBSD), "FreeBSD"},
	{uint32(elf.ELFOSABI_OPENBSD), "OpenBSD"},
	{uint32(elf.ELFOSABI_ARM), "ARM"},
	{uint32(elf.ELFOSABI_STANDALONE), "Standalone"},
}

var objectTypeLabels = []codeLabel{
	{uint32(elf.ET_NONE), "ET_NONE (No file type)"},
	{uint32(elf.ET_REL), "ET_REL (Relocatable file)"},
	{uint32(elf.ET_EXEC), "ET_EXEC (Executable file)"},
	{uint32(elf.ET_DYN), "ET_DYN (Shared object file)"},
	{uint32(elf.ET_CORE), "ET_CORE (Core file)"},
}

// Only a handful of machines are named. Everything else is "Unknown".
var machineLabels = []codeLabel{
	{uint32(elf.EM_NONE), "No machine"},
	{uint32(elf.EM_MIPS), "MIPS I Architecture"},
	{uint32(elf.EM_PPC), "PowerPC 32/64 bit"},
	{uint32(elf.EM_PPC64), "PowerPC 32/64 bit"},
	{uint32(elf.EM_X86_64), "Intel/AMD 64-bit"},
}

const unknownMachine = "Unknown"

var sectionTypeLabels = []codeLabel{
	{uint32(elf.SHT_NULL), "SHT_NULL"},
	{uint32(elf.SHT_PROGBITS), "SHT_PROGBITS"},
	{uint32(elf.SHT_SYMTAB), "SHT_SYMTAB"},
	{uint32(elf.SHT_STRTAB), "SHT_STRTAB"},
	{uint32(elf.SHT_RELA), "SHT_RELA"},
	{uint32(elf.SHT_HASH), "SHT_HASH"},
	{uint32(elf.SHT_DYNAMIC), "SHT_DYNAMIC"},
	{uint32(elf.SHT_NOTE), "SHT_NOTE"},
	{uint32(elf.SHT_NOBITS), "SHT_NOBITS"},
	{uint32(elf.SHT_REL), "SHT_REL"},
	{uint32(elf.SHT_SHLIB), "SHT_SHLIB"},
	{uint32(elf.SHT_DYNSYM), "SHT_DYNSYM"},
	{uint32(elf.SHT_INIT_ARRAY), "SHT_INIT_ARRAY"},
	{uint32(elf.SHT_FINI_ARRAY), "SHT_FINI_ARRAY"},
	{uint32(elf.SHT_PREINIT_ARRAY), "SHT_PREINIT_ARRAY"},
	{uint32(elf.SHT_GROUP), "SHT_GROUP"},
	{uint32(elf.SHT_SYMTAB_SHNDX), "SHT_SYMTAB_SHNDX"},
}

type flagRule struct {
	mask  SectionFlags
	label string
	// any matches when at least one bit of mask is set instead of all of them.
	any bool
}

func (r flagRule) matches(f SectionFlags) bool {
	if r.any {
		return f&r.mask != 0
	}
	return f&r.mask == r.mask
}

// Evaluated top to bottom, first match wins. The composites have to come
// before the single bits or WRITE|ALLOC would be reported as WRITE. A rule
// ignores bits outside its mask, so ALLOC|MERGE is ALLOC and
// WRITE|EXECINSTR is WRITE.
var flagRules = []flagRule{
	{mask: SectionFlags(elf.SHF_WRITE | elf.SHF_ALLOC), label: "WRITE|ALLOC"},
	{mask: SectionFlags(elf.SHF_ALLOC | elf.SHF_EXECINSTR), label: "ALLOC|EXECINSTR"},
	{mask: SectionFlags(elf.SHF_WRITE), label: "WRITE"},
	{mask: SectionFlags(elf.SHF_ALLOC), label: "ALLOC"},
	{mask: SectionFlags(elf.SHF_EXECINSTR), label: "EXECINSTR"},
	{mask: SectionFlags(elf.SHF_MERGE), label: "MERGE"},
	{mask: SectionFlags(elf.SHF_STRINGS), label: "STRINGS"},
	{mask: SectionFlags(elf.SHF_INFO_LINK), label: "INFO_LINK"},
	{mask: SectionFlags(elf.SHF_LINK_ORDER), label: "LINK_ORDER"},
	{mask: SectionFlags(elf.SHF_OS_NONCONFORMING), label: "OS_NONCONFORMING"},
	{mask: SectionFlags(elf.SHF_GROUP), label: "GROUP"},
	{mask: SectionFlags(elf.SHF_TLS), label: "TLS"},
	{mask: SectionFlags(elf.SHF_MASKOS), label: "MASKOS", any: true},
	{mask: SectionFlags(elf.SHF_MASKPROC), label: "MASKPROC", any: true},
}

// FlagUndefined is the label for flag values no rule matches, zero included.
const FlagUndefined = "UNDEFINED"

func (c Class) String() string {
	label, ok := lookup(classLabels, uint32(c))
	if !ok {
		return "UNKNOWN"
	}
	return label
}

func (d DataEncoding) String() string {
	label, ok := lookup(dataLabels, uint32(d))
	if !ok {
		return "UNKNOWN"
	}
	return label
}

// ClassLabel names a raw EI_CLASS byte.
func ClassLabel(v uint8) string {
	label, ok := lookup(classLabels, uint32(v))
	if !ok {
		return "UNKNOWN"
	}
	return label
}

// DataLabel names a raw EI_DATA byte.
func DataLabel(v uint8) string {
	label, ok := lookup(dataLabels, uint32(v))
	if !ok {
		return "UNKNOWN"
	}
	return label
}

// VersionLabel names an identity or header version number.
func VersionLabel(v uint32) string {
	label, ok := lookup(versionLabels, v)
	if !ok {
		return "UNKNOWN"
	}
	return label
}

// OSABILabel names the OS/ABI identification byte.
func OSABILabel(v uint8) string {
	label, ok := lookup(osabiLabels, uint32(v))
	if !ok {
		return fmt.Sprintf("Unknown (%d)", v)
	}
	return label
}

// Known reports whether t is one of the five standard object types.
func (t ObjectType) Known() bool {
	_, ok := lookup(objectTypeLabels, uint32(t))
	return ok
}

func (t ObjectType) String() string {
	label, ok := lookup(objectTypeLabels, uint32(t))
	if !ok {
		return fmt.Sprintf("ET_UNKNOWN (0x%04x)", uint16(t))
	}
	return label
}

func (m Machine) String() string {
	label, ok := lookup(machineLabels, uint32(m))
	if !ok {
		return unknownMachine
	}
	return label
}

// Category is the symbolic section type. Codes outside the named table,
// the OS, processor and user ranges included, fall into SHT_NULL.
func (t SectionType) Category() string {
	label, ok := lookup(sectionTypeLabels, uint32(t))
	if !ok {
		return "SHT_NULL"
	}
	return label
}

// Reserved reports whether t lies in the OS, processor or user range.
func (t SectionType) Reserved() bool {
	return uint32(t) >= uint32(elf.SHT_LOOS)
}

func (t SectionType) String() string {
	return t.Category()
}

// Label classifies f with the priority-ordered rule list.
func (f SectionFlags) Label() string {
	for _, rule := range flagRules {
		if rule.matches(f) {
			return rule.label
		}
	}
	return FlagUndefined
}

// Names lists every single flag set in f, in ascending bit order.
func (f SectionFlags) Names() []string {
	var names []string
	for _, rule := range flagRules[2:] {
		if rule.matches(f) {
			names = append(names, rule.label)
		}
	}
	return names
}

func (f SectionFlags) String() string {
	return f.Label()
}
