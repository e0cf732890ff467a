package elfinfo

import "github.com/pkg/errors"

// Decode failures. Every one of them is fatal for the inspection run; a name
// that cannot be resolved is not an error and resolves to NotDefined instead.
var (
	ErrInvalidIdentity         = errors.New("invalid ELF identification")
	ErrEndiannessUnavailable   = errors.New("endianness unavailable")
	ErrTruncated               = errors.New("input truncated")
	ErrStructuralInconsistency = errors.New("structural inconsistency")
)

// NotDefined is the name reported for string table lookups that miss.
const NotDefined = "Not defined"
