//go:build arm64

package elfhook

import "debug/elf"

// Architecture parameterization for 64-bit AArch64, centralizing the
// (word size, reloc-type constants, r_info split, cache-flush need) trait
// spec.md §9 calls for in one place.
const (
	wordSize    = 8
	hostClass   = elf.ELFCLASS64
	hostMachine = elf.EM_AARCH64

	ehdrSize = 64
	phdrSize = 56
	dynSize  = 16
	symSize  = 24
	relSize  = 16
	relaSize = 24

	// needsCacheFlush is false: AArch64 has unified instruction/data cache
	// coherence on all hardware current at the time of writing, so a GOT
	// write needs no explicit I-cache maintenance.
	needsCacheFlush = false
)

// Absolute-pointer relocation types that a matching GOT/data slot may carry.
const (
	relJumpSlot = uint32(elf.R_AARCH64_JUMP_SLOT)
	relGlobDat  = uint32(elf.R_AARCH64_GLOB_DAT)
	relAbs      = uint32(elf.R_AARCH64_ABS64)
)

// splitRInfo extracts (sym_index, reloc_type) from a 64-bit r_info field.
func splitRInfo(info uint64) (sym uint32, relType uint32) {
	return uint32(info >> 32), uint32(info)
}

// makeRInfo is the inverse of splitRInfo, used only by tests to build
// synthetic relocation entries.
func makeRInfo(sym uint32, relType uint32) uint64 {
	return uint64(sym)<<32 | uint64(relType)
}

// ehdrOffsets mirrors the Elf64_Ehdr field layout (gABI, little-endian).
const (
	offEhdrType     = 16
	offEhdrMachine  = 18
	offEhdrVersion  = 20
	offEhdrPhoff    = 32
	offEhdrPhnum    = 56
	offEhdrEVersion = 20 // e_version, same field as above at the header level
)

// phdrOffsets mirrors Elf64_Phdr.
const (
	offPhdrType   = 0
	offPhdrFlags  = 4
	offPhdrOffset = 8
	offPhdrVaddr  = 16
	offPhdrMemsz  = 40
)

// dynOffsets mirrors Elf64_Dyn.
const (
	offDynTag = 0
	offDynVal = 8
)

// symOffsets mirrors Elf64_Sym.
const (
	offSymName  = 0
	offSymValue = 8
)

// relOffsets mirrors Elf64_Rel / Elf64_Rela.
const (
	offRelOffset   = 0
	offRelInfo     = 8
	offRelaAddend  = 16
	relaHasAddend  = true
)

// flushCache is a no-op on AArch64; see needsCacheFlush.
func flushCache(start, end uintptr) {}
