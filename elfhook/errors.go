package elfhook

import "errors"

// Sentinel error kinds, matching the XH_ERRNO_* family of the original
// engine. Use errors.Is to test for a specific kind; concrete errors wrap
// one of these with additional context via fmt.Errorf("%w: ...").
var (
	// ErrInval is returned when a public operation receives a null or
	// otherwise invalid argument.
	ErrInval = errors.New("elfhook: invalid argument")

	// ErrElfInit is returned when Hook is called on a descriptor that was
	// never successfully initialized.
	ErrElfInit = errors.New("elfhook: image not initialized")

	// ErrFormat is returned for a malformed ELF image: bad magic/class/
	// endianness/type/machine, an unexpected dynamic section, an APS2
	// magic mismatch, a truncated SLEB128 stream, or an addend declared in
	// a REL (non-RELA) packed relocation stream.
	ErrFormat = errors.New("elfhook: malformed ELF image")

	// ErrNotFound is returned when a symbol can't be resolved through
	// either hash table, or an address doesn't fall within any PT_LOAD
	// segment.
	ErrNotFound = errors.New("elfhook: not found")

	// ErrUnknown is returned when a host mprotect call fails; the
	// underlying errno is wrapped in the returned error.
	ErrUnknown = errors.New("elfhook: host operation failed")
)
