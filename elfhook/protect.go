package elfhook

import (
	"debug/elf"
	"fmt"

	"golang.org/x/sys/unix"
)

func pageStart(addr uintptr) uintptr {
	pageSize := uintptr(unix.Getpagesize())
	return addr &^ (pageSize - 1)
}

func pageEnd(addr uintptr) uintptr {
	pageSize := uintptr(unix.Getpagesize())
	return (addr + pageSize - 1) &^ (pageSize - 1)
}

// segmentFlags scans the program headers for the PT_LOAD segment whose
// page-rounded [start, end) interval contains addr, and returns its p_flags
// (spec.md §4.8).
func (img *Image) segmentFlags(addr uintptr) (elf.ProgFlag, error) {
	for i := 0; i < img.phnum; i++ {
		p := img.phdr + uintptr(i)*uintptr(phdrSize)
		if elf.ProgType(readU32(p+offPhdrType)) != elf.PT_LOAD {
			continue
		}
		segStart := img.biasAddr + uintptr(readWord(p+offPhdrVaddr))
		segEnd := segStart + uintptr(readWord(p+offPhdrMemsz))
		if addr >= pageStart(segStart) && addr < pageEnd(segEnd) {
			return elf.ProgFlag(readU32(p + offPhdrFlags)), nil
		}
	}
	return 0, ErrNotFound
}

// reprotect applies page-granularity protection to the page containing
// addr, translating PF_R/PF_W/PF_X bits to PROT_READ/PROT_WRITE/PROT_EXEC.
func reprotect(addr uintptr, flags elf.ProgFlag) error {
	var prot int
	if flags&elf.PF_R != 0 {
		prot |= unix.PROT_READ
	}
	if flags&elf.PF_W != 0 {
		prot |= unix.PROT_WRITE
	}
	if flags&elf.PF_X != 0 {
		prot |= unix.PROT_EXEC
	}

	page := bytesAt(pageStart(addr), unix.Getpagesize())
	if err := unix.Mprotect(page, prot); err != nil {
		return fmt.Errorf("%w: mprotect: %w", ErrUnknown, err)
	}
	return nil
}
