package elfinfo

import (
	"bytes"

	"github.com/yalue/elf_reader"
)

// StringTable is the raw content of a string table section.
type StringTable []byte

// Resolve returns the null-terminated string starting at offset, or
// NotDefined when offset is out of bounds or the string runs off the end.
func (t StringTable) Resolve(offset uint32) string {
	if uint64(offset) >= uint64(len(t)) {
		return NotDefined
	}
	if bytes.IndexByte(t[offset:], 0) < 0 {
		return NotDefined
	}
	name, err := elf_reader.ReadStringAtOffset(offset, t)
	if err != nil {
		return NotDefined
	}
	return string(name)
}

// tableAt returns the content of sections[index] as a string table. An index
// outside the table or a section whose bytes lie outside buf yields an empty
// table.
func tableAt(buf []byte, sections []SectionHeader, index int) StringTable {
	if index <= 0 || index >= len(sections) {
		return nil
	}
	content, ok := sectionContent(buf, &sections[index])
	if !ok {
		return nil
	}
	return StringTable(content)
}

func sectionContent(buf []byte, s *SectionHeader) ([]byte, bool) {
	end := s.Offset + uint64(s.Size)
	if end < s.Offset || end > uint64(len(buf)) {
		return nil, false
	}
	return buf[s.Offset:end], true
}
