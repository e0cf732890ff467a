package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"binmagic/common"
	"binmagic/elfinfo"
	"binmagic/report"
)

// Program configuration
type Config struct {
	Mode        string
	Verbose     bool
	NoColor     bool
	ShowHelp    bool
	ShowVersion bool
}

// Mode selects which reports are printed.
type Mode int

const (
	ModeAll Mode = iota
	ModeSections
	ModeDynamicSymbols
	ModeDynamicLibraries
)

const (
	versionString = "binmagic, version 1.0"
	defaultPath   = "/usr/bin/ls"

	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Selector spellings, long names first, then the short option style.
var modeNames = map[string]Mode{
	"sections":          ModeSections,
	"dynamic-symbols":   ModeDynamicSymbols,
	"dynamic-libraries": ModeDynamicLibraries,
	"--sections":        ModeSections,
	"--dyn-syms":        ModeDynamicSymbols,
	"--dyn-libs":        ModeDynamicLibraries,
}

var (
	ErrUnknownMode  = errors.New("unknown option")
	ErrTooManyArgs  = errors.New("too many arguments")
	ErrModeConflict = errors.New("mode given both as flag and argument")
)

func (m Mode) String() string {
	switch m {
	case ModeSections:
		return "sections"
	case ModeDynamicSymbols:
		return "dynamic-symbols"
	case ModeDynamicLibraries:
		return "dynamic-libraries"
	}
	return "all"
}

// parseMode maps a selector to a Mode. Only an empty selector means all
// reports; anything unrecognized is an error.
func parseMode(selector string) (Mode, error) {
	if selector == "" {
		return ModeAll, nil
	}
	mode, ok := modeNames[selector]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownMode, "%q", selector)
	}
	return mode, nil
}

func usage(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: %s [OPTIONS] [FILE] [MODE]\n", fs.Name())
	_, _ = fmt.Fprintln(w, "Report the header, sections, dynamic symbols and libraries of an ELF file.")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Modes:")
	_, _ = fmt.Fprintln(w, "  sections            view the section header table (alias --sections)")
	_, _ = fmt.Fprintln(w, "  dynamic-symbols     view the dynamic symbol table (alias --dyn-syms)")
	_, _ = fmt.Fprintln(w, "  dynamic-libraries   view the dynamic library table (alias --dyn-libs)")
	_, _ = fmt.Fprintln(w, "  (none)              all of the above followed by the file header")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Examples:")
	_, _ = fmt.Fprintf(w, "  %s /usr/bin/ls                # All reports\n", fs.Name())
	_, _ = fmt.Fprintf(w, "  %s /usr/bin/ls --dyn-libs     # Shared library dependencies\n", fs.Name())
	_, _ = fmt.Fprintf(w, "  %s -mode sections lib.so      # Section header table\n", fs.Name())
}

func parseFlags(name string, args []string, stderr io.Writer) (*Config, *flag.FlagSet, error) {
	config := &Config{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs, stderr) }

	fs.StringVar(&config.Mode, "mode", "", "Report to print: sections, dynamic-symbols or dynamic-libraries")
	fs.BoolVar(&config.Verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&config.ShowHelp, "help", false, "Display this help and exit")
	fs.BoolVar(&config.ShowVersion, "version", false, "Display version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	return config, fs, nil
}

// logger prints progress lines on stderr in verbose mode.
type logger struct {
	w       io.Writer
	verbose bool
}

func (l *logger) logf(format string, args ...interface{}) {
	if l.verbose {
		_, _ = fmt.Fprintf(l.w, format, args...)
	}
}

func logIdentity(l *logger, in *elfinfo.Inspection) {
	ident := in.Identity.Ident
	l.logf("\n* Packing ELFMAG0 => %d\n", ident[0])
	for i := 1; i < 4; i++ {
		l.logf("* Packing ELFMAG%d => %d (%c)\n", i, ident[i], ident[i])
	}
	l.logf("  Class: %s, Data: %s\n", in.Identity.Class, in.Identity.Data)
	l.logf("  Type: %s, Machine: %s\n", in.Header.Type, in.Header.Machine)
	l.logf("  Section Headers: %d at 0x%x\n", in.Header.SectionCount, in.Header.SectionOffset)
	for _, s := range in.Sections {
		l.logf("    [%2d] %-20s %s\n", s.Index, s.Name, strings.Join(s.Flags.Names(), " "))
	}
	l.logf("  Dynamic: %d symbols, %d libraries\n\n", len(in.Dynamic.Symbols), in.Dynamic.Libraries.Len())
}

type reportFunc func(*elfinfo.Inspection) (*common.ReportResult, error)

func reportsFor(p *report.Printer, mode Mode) []reportFunc {
	switch mode {
	case ModeSections:
		return []reportFunc{p.Sections}
	case ModeDynamicSymbols:
		return []reportFunc{p.DynamicSymbols, p.DynamicLibraries}
	case ModeDynamicLibraries:
		return []reportFunc{p.DynamicLibraries}
	}
	return []reportFunc{p.Sections, p.DynamicSymbols, p.DynamicLibraries, p.Header}
}

// terminalFor wraps stdout for color output when it is a file.
func terminalFor(w io.Writer, noColor bool) (io.Writer, *common.Style) {
	if f, ok := w.(*os.File); ok {
		return common.Output(f), common.DetectStyle(f, noColor)
	}
	return w, &common.Style{Enabled: false}
}

// run is the single place that decides the exit code.
func run(name string, args []string, stdout, stderr io.Writer) int {
	config, fs, err := parseFlags(name, args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if config.ShowHelp {
		fs.Usage()
		return exitOK
	}
	if config.ShowVersion {
		_, _ = fmt.Fprintln(stdout, versionString)
		return exitOK
	}
	stdout, style := terminalFor(stdout, config.NoColor)
	log := &logger{w: stderr, verbose: config.Verbose}

	positional := fs.Args()
	if len(positional) > 2 {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", name, errors.Wrapf(ErrTooManyArgs, "%d given", len(positional)))
		return exitUsage
	}
	path := ""
	if len(positional) > 0 {
		path = positional[0]
	}
	if path == "help" {
		fs.Usage()
		return exitOK
	}
	selector := config.Mode
	if len(positional) == 2 {
		if selector != "" && selector != positional[1] {
			_, _ = fmt.Fprintf(stderr, "%s: %v\n", name, ErrModeConflict)
			return exitUsage
		}
		selector = positional[1]
	}
	mode, err := parseMode(selector)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error - %v\n", err)
		return exitUsage
	}

	if path == "" {
		_, _ = fmt.Fprintf(stderr, "No FILE detected! Using default path: %q as entry point!\n", defaultPath)
		path = defaultPath
	}

	raw, err := elfinfo.ReadFile(path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %s: %v\n", name, path, err)
		return exitFailure
	}
	log.logf("Processing %s (%d bytes, mode %s)\n", path, len(raw), mode)

	inspection, err := elfinfo.Inspect(raw)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %s: %v\n", name, path, err)
		return exitFailure
	}
	logIdentity(log, inspection)

	printer := report.New(stdout, style)
	var results []*common.ReportResult
	for _, fn := range reportsFor(printer, mode) {
		result, err := fn(inspection)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%s: %s: %v\n", name, path, err)
			return exitFailure
		}
		results = append(results, result)
	}

	log.logf("\nSummary:\n")
	for _, result := range results {
		log.logf("  %s\n", result)
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stdout, os.Stderr))
}
