package elfinfo

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Inspection is the decoded model of one object file.
type Inspection struct {
	Identity *Identity
	Header   *Header
	Sections []SectionHeader
	Dynamic  *DynamicTables
}

// Inspect decodes buf completely. On error nothing is returned, so callers
// never see a partial model.
func Inspect(buf []byte) (*Inspection, error) {
	id, err := DecodeIdentity(buf)
	if err != nil {
		return nil, err
	}
	if _, err := id.MagicBytes(); err != nil {
		return nil, err
	}
	hdr, err := DecodeHeader(buf, id)
	if err != nil {
		return nil, err
	}
	sections, err := DecodeSections(buf, hdr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode section header table")
	}
	dyn, err := ReadDynamic(buf, hdr, sections)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read dynamic tables")
	}
	return &Inspection{
		Identity: id,
		Header:   hdr,
		Sections: sections,
		Dynamic:  dyn,
	}, nil
}

// ReadFile loads the whole of a regular file into memory.
func ReadFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get file info")
	}
	if !fileInfo.Mode().IsRegular() {
		return nil, errors.New("not a regular file")
	}

	rawData := make([]byte, fileInfo.Size())
	if _, err := io.ReadFull(file, rawData); err != nil {
		return nil, errors.Wrap(err, "failed to read file data")
	}
	return rawData, nil
}
