package common

import (
	"fmt"
	"strings"
)

const (
	Omega = "Ω"
	Check = "✓"
	Cross = "✗"
)

// CheckCell renders a yes/no value as a check mark or a cross.
func CheckCell(ok bool) Cell {
	if ok {
		return Cell{Text: Check, Style: StyleCheck}
	}
	return Cell{Text: Cross, Style: StyleCross}
}

// FormatList renders a titled list, one prefixed item per line.
func FormatList(title, prefix string, items []string) string {
	var result strings.Builder
	result.WriteString(title)
	for _, item := range items {
		result.WriteString("\n" + prefix + item)
	}
	return result.String()
}

// FormatHexBytes joins two-digit hex strings with single spaces.
func FormatHexBytes(hex []string) string {
	return strings.Join(hex, " ")
}

// FormatCode renders a raw code next to its label, e.g. "2 (64 BIT)".
func FormatCode(code uint64, label string) string {
	return fmt.Sprintf("%d (%s)", code, label)
}
