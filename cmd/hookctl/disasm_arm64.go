//go:build arm64

package main

import (
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"

	"github.com/nyxar/pltgot/elfhook"
)

// previewInstruction disassembles the single AArch64 instruction living at
// addr, for printing a one-line "what used to run here" diagnostic before
// a GOT slot pointing at real executable code gets redirected. GOT slots
// themselves hold data (a function pointer), not code, so this is only
// meaningful when addr is a code address the caller wants previewed (e.g.
// the resolved symbol's own st_value), not the GOT slot address itself.
func previewInstruction(addr uintptr) string {
	raw := elfhook.PeekBytes(addr, 4)
	insn, err := arm64asm.Decode(raw)
	if err != nil {
		return fmt.Sprintf("0x%x: <undecodable: %v>", addr, err)
	}
	return fmt.Sprintf("0x%x: %s", addr, insn.String())
}
