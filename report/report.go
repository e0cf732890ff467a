// Package report renders an elfinfo.Inspection as console text.
package report

import (
	"fmt"
	"io"
	"strings"

	"binmagic/common"
	"binmagic/elfinfo"
)

// Printer writes reports to Out. Style may be nil for plain text.
type Printer struct {
	Out   io.Writer
	Style *common.Style
}

func New(out io.Writer, style *common.Style) *Printer {
	return &Printer{Out: out, Style: style}
}

func (p *Printer) heading(text string) common.Cell {
	return common.Cell{Text: text, Style: common.StyleHeading}
}

// SectionTable builds the section header table without writing it.
func (p *Printer) SectionTable(in *elfinfo.Inspection) *common.Table {
	table := common.NewTable(p.Style,
		p.heading("Symbol Name §"),
		p.heading("Offset "+common.Omega),
		p.heading("Size"),
		p.heading("Type"),
		p.heading("Flags"),
		p.heading("Ent size"),
		p.heading("Has Table?"),
	)
	for _, s := range in.Sections {
		typeText := s.Type.Category()
		if s.Type.Reserved() {
			typeText += fmt.Sprintf(" (reserved 0x%x)", uint32(s.Type))
		}
		entSize := ""
		if s.HasEntryTable {
			entSize = fmt.Sprintf("%d bytes", s.EntrySize)
		}
		table.AddRow(
			common.Cell{Text: s.Name, Style: common.StyleName},
			common.Cell{Text: fmt.Sprintf("%d", s.Offset)},
			common.Cell{Text: s.Size.String()},
			common.Cell{Text: typeText},
			common.Cell{Text: s.Flags.Label()},
			common.Cell{Text: entSize},
			common.CheckCell(s.HasEntryTable),
		)
	}
	return table
}

// Sections prints the section header table and the reported section count.
func (p *Printer) Sections(in *elfinfo.Inspection) (*common.ReportResult, error) {
	table := p.SectionTable(in)
	if _, err := fmt.Fprintln(p.Out, "\nSection Headers =>"); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(p.Out); err != nil {
		return nil, err
	}
	if err := table.Render(p.Out); err != nil {
		return nil, err
	}
	count := in.Header.ReportedSectionCount()
	if _, err := fmt.Fprintf(p.Out, "\n%d section headers detected.\n", count); err != nil {
		return nil, err
	}
	if table.Rows() == 0 {
		return common.NewEmpty("sections"), nil
	}
	return common.NewPrinted("sections", count), nil
}

// DynamicSymbols prints every dynamic symbol name in table order.
func (p *Printer) DynamicSymbols(in *elfinfo.Inspection) (*common.ReportResult, error) {
	var b strings.Builder
	b.WriteString("\n")
	for _, sym := range in.Dynamic.Symbols {
		b.WriteString("\t " + sym.Name + "\n")
	}
	fmt.Fprintf(&b, "\n[DYNSYMS] %d dynamic symbols found.\n", len(in.Dynamic.Symbols))
	if _, err := io.WriteString(p.Out, b.String()); err != nil {
		return nil, err
	}
	if len(in.Dynamic.Symbols) == 0 {
		return common.NewEmpty("dynamic symbols"), nil
	}
	return common.NewPrinted("dynamic symbols", len(in.Dynamic.Symbols)), nil
}

// DynamicLibraries prints the deduplicated library list.
func (p *Printer) DynamicLibraries(in *elfinfo.Inspection) (*common.ReportResult, error) {
	libs := in.Dynamic.Libraries.Libraries()
	names := make([]string, 0, len(libs))
	for _, lib := range libs {
		names = append(names, p.Style.Paint(lib.Name, common.StyleName))
	}

	text := "\n" + common.FormatList("* Dynamic Libraries found:", "\ttarget >> ", names) + "\n"
	if in.Dynamic.Soname != "" {
		text += "\tsoname >> " + in.Dynamic.Soname + "\n"
	}
	for _, path := range in.Dynamic.RunPaths {
		text += "\trunpath >> " + path + "\n"
	}
	if _, err := io.WriteString(p.Out, text); err != nil {
		return nil, err
	}
	if len(libs) == 0 {
		return common.NewEmpty("dynamic libraries"), nil
	}
	return common.NewPrinted("dynamic libraries", len(libs)), nil
}

// Header prints the file header and identification summary.
func (p *Printer) Header(in *elfinfo.Inspection) (*common.ReportResult, error) {
	id, hdr := in.Identity, in.Header
	magic, err := id.MagicBytes()
	if err != nil {
		return nil, err
	}

	arch := "Unknown"
	switch id.Class {
	case elfinfo.Class32:
		arch = "32-bit binary"
	case elfinfo.Class64:
		arch = "64-bit binary"
	}
	endian := "Unknown"
	switch id.Data {
	case elfinfo.LittleEndian:
		endian = "Little"
	case elfinfo.BigEndian:
		endian = "Big"
	}

	lines := []string{
		"",
		p.Style.Paint("FILE HEADER/MAGIC INFORMATION", common.StyleHeading),
		"=============================",
		"",
		"ARCH   : " + arch,
		"MAGIC  : " + common.FormatHexBytes(magic),
		fmt.Sprintf("         CLASS=%s | DATA=%s | VERSION=%d",
			common.FormatCode(uint64(id.RawClass()), elfinfo.ClassLabel(id.RawClass())),
			common.FormatCode(uint64(id.RawData()), elfinfo.DataLabel(id.RawData())),
			id.Version),
		"OS/ABI : " + common.FormatCode(uint64(id.OSABI), elfinfo.OSABILabel(id.OSABI)),
		"",
		"ENDIAN : " + endian,
		"E_TYPE : " + hdr.Type.String(),
		"E_MACH : " + hdr.Machine.String(),
		"E_VERS : " + common.FormatCode(uint64(hdr.Version), elfinfo.VersionLabel(hdr.Version)),
		fmt.Sprintf("E_ENTR : 0x%x (%d)", hdr.Entry, hdr.Entry),
		fmt.Sprintf("E_SIZE : %d bytes", hdr.HeaderSize),
		"________________________",
		"",
	}
	if _, err := io.WriteString(p.Out, strings.Join(lines, "\n")); err != nil {
		return nil, err
	}
	return common.NewPrinted("header", len(magic)), nil
}
