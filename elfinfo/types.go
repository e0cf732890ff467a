package elfinfo

// Class is the word width recorded in the identification bytes.
type Class uint8

const (
	ClassUnknown Class = iota
	Class32
	Class64
)

// DataEncoding is the byte order recorded in the identification bytes.
type DataEncoding uint8

const (
	DataUnknown DataEncoding = iota
	LittleEndian
	BigEndian
)

// ObjectType is the raw e_type code. Codes outside the known table stay
// representable and report Known() == false.
type ObjectType uint16

// Machine is the raw e_machine code.
type Machine uint16

// SectionType is the raw sh_type code.
type SectionType uint32

// SectionFlags is the raw sh_flags bitmask.
type SectionFlags uint64

// Identity is the decoded 16-byte identification prefix.
type Identity struct {
	Ident      [16]byte
	Class      Class
	Data       DataEncoding
	Version    uint8
	OSABI      uint8
	ABIVersion uint8
}

// Header is the decoded file header.
type Header struct {
	Identity         *Identity
	Type             ObjectType
	Machine          Machine
	Version          uint32
	Entry            uint64
	Flags            uint32
	HeaderSize       uint16
	ProgramOffset    uint64
	ProgramEntrySize uint16
	ProgramCount     uint16
	SectionOffset    uint64
	SectionEntrySize uint16
	SectionCount     uint16
	SectionNameIndex uint16
}

// SectionSize is a section byte count with an optional kilobyte form.
type SectionSize uint64

// SectionHeader is one entry of the section header table.
type SectionHeader struct {
	Index         int
	NameOffset    uint32
	Name          string
	Type          SectionType
	Flags         SectionFlags
	Addr          uint64
	Offset        uint64
	Size          SectionSize
	Link          uint32
	Info          uint32
	Align         uint64
	EntrySize     uint64
	HasEntryTable bool
}

// DynamicSymbol is a name from the dynamic symbol table.
type DynamicSymbol struct {
	Name string
}

// DynamicLibrary is a shared library the object depends on at load time.
type DynamicLibrary struct {
	Name string
}
