//go:build arm && linux

package elfhook

import (
	"debug/elf"
	"syscall"
)

// Architecture parameterization for 32-bit ARM.
const (
	wordSize    = 4
	hostClass   = elf.ELFCLASS32
	hostMachine = elf.EM_ARM

	ehdrSize = 52
	phdrSize = 32
	dynSize  = 8
	symSize  = 16
	relSize  = 8
	relaSize = 12

	// needsCacheFlush is true: 32-bit ARM does not guarantee unified I/D
	// cache coherence, so a patched GOT word must be flushed through the
	// kernel's cacheflush helper before any thread executes through it.
	needsCacheFlush = true
)

// Absolute-pointer relocation types that a matching GOT/data slot may carry.
const (
	relJumpSlot = uint32(elf.R_ARM_JUMP_SLOT)
	relGlobDat  = uint32(elf.R_ARM_GLOB_DAT)
	relAbs      = uint32(elf.R_ARM_ABS32)
)

// splitRInfo extracts (sym_index, reloc_type) from a 32-bit r_info field.
func splitRInfo(info uint64) (sym uint32, relType uint32) {
	v := uint32(info)
	return v >> 8, v & 0xff
}

// makeRInfo is the inverse of splitRInfo, used only by tests to build
// synthetic relocation entries.
func makeRInfo(sym uint32, relType uint32) uint64 {
	return uint64(sym<<8 | (relType & 0xff))
}

// ehdrOffsets mirrors the Elf32_Ehdr field layout (gABI, little-endian).
const (
	offEhdrType    = 16
	offEhdrMachine = 18
	offEhdrVersion = 20
	offEhdrPhoff   = 28
	offEhdrPhnum   = 44
)

// phdrOffsets mirrors Elf32_Phdr (note: flags sits after filesz/memsz here,
// unlike the 64-bit layout).
const (
	offPhdrType   = 0
	offPhdrOffset = 4
	offPhdrVaddr  = 8
	offPhdrMemsz  = 20
	offPhdrFlags  = 24
)

// dynOffsets mirrors Elf32_Dyn.
const (
	offDynTag = 0
	offDynVal = 4
)

// symOffsets mirrors Elf32_Sym.
const (
	offSymName  = 0
	offSymValue = 4
)

// relOffsets mirrors Elf32_Rel / Elf32_Rela.
const (
	offRelOffset  = 0
	offRelInfo    = 4
	offRelaAddend = 8
	relaHasAddend = true
)

// armNRCacheflush is the ARM Linux cacheflush pseudo-syscall number
// (__ARM_NR_cacheflush = __ARM_NR_BASE + 2, __ARM_NR_BASE = 0xf0000).
const armNRCacheflush = 0xf0002

// flushCache issues the ARM-specific cacheflush syscall over [start, end).
// There is no golang.org/x/sys/unix wrapper for this call: it is a Linux/ARM
// kernel ABI oddity, not a POSIX syscall.
func flushCache(start, end uintptr) {
	syscall.Syscall(armNRCacheflush, start, end, 0)
}
