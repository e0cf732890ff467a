package common

import "fmt"

// ReportResult describes what one report printed.
type ReportResult struct {
	Name    string
	Printed bool
	Count   int // Number of entries listed (sections, symbols, libraries)
}

// NewPrinted creates a result for a report that produced output.
func NewPrinted(name string, count int) *ReportResult {
	return &ReportResult{
		Name:    name,
		Printed: true,
		Count:   count,
	}
}

// NewEmpty creates a result for a report with nothing to list.
func NewEmpty(name string) *ReportResult {
	return &ReportResult{
		Name:    name,
		Printed: false,
	}
}

// String returns a human-readable representation
func (r *ReportResult) String() string {
	if r.Printed {
		return fmt.Sprintf("%s: %d entries", r.Name, r.Count)
	}
	return fmt.Sprintf("%s: nothing to list", r.Name)
}
