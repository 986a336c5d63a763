package elfhook

import (
	"debug/elf"
	"fmt"
)

// CheckELFHeader validates that the image at baseAddr has ELF magic, the
// host word-size class, little-endian encoding, EV_CURRENT versions, an
// executable or shared-object type, and the host machine — without
// otherwise touching the image (spec.md §4.1, §6 op 4).
//
// It is the only exported operation that does not require an Image: callers
// use it as a standalone pre-flight check before deciding whether to call
// Init at all.
func CheckELFHeader(baseAddr uintptr) error {
	ident := bytesAt(baseAddr, 16)
	if ident[0] != 0x7f || ident[1] != 'E' || ident[2] != 'L' || ident[3] != 'F' {
		return fmt.Errorf("%w: bad ELF magic", ErrFormat)
	}
	if elf.Class(ident[elf.EI_CLASS]) != hostClass {
		return fmt.Errorf("%w: ELF class mismatch", ErrFormat)
	}
	if elf.Data(ident[elf.EI_DATA]) != elf.ELFDATA2LSB {
		return fmt.Errorf("%w: not little-endian", ErrFormat)
	}
	if elf.Version(ident[elf.EI_VERSION]) != elf.EV_CURRENT {
		return fmt.Errorf("%w: bad ident version", ErrFormat)
	}

	etype := elf.Type(readU16(baseAddr + offEhdrType))
	if etype != elf.ET_EXEC && etype != elf.ET_DYN {
		return fmt.Errorf("%w: not an executable or shared object", ErrFormat)
	}

	machine := elf.Machine(readU16(baseAddr + offEhdrMachine))
	if machine != hostMachine {
		return fmt.Errorf("%w: machine mismatch", ErrFormat)
	}

	if elf.Version(readU32(baseAddr+offEhdrVersion)) != elf.EV_CURRENT {
		return fmt.Errorf("%w: bad header version", ErrFormat)
	}

	return nil
}
