//go:build !arm64

package main

import "fmt"

// previewInstruction has no AArch64 disassembler on this architecture;
// golang.org/x/arch/arm64/arm64asm only decodes AArch64 encodings.
func previewInstruction(addr uintptr) string {
	return fmt.Sprintf("0x%x: <disassembly unavailable on this architecture>", addr)
}
