package elfhook

import (
	"debug/elf"

	"github.com/nyxar/pltgot/internal/hooklog"
)

// patchGOT implements C9: for one relocation slot, idempotently swap its
// contents with newFunc, widening page protection as needed and flushing
// the instruction cache where the architecture requires it.
//
// Page protection is widened (write added, execute cleared) and never
// narrowed back afterward — later hooks may revisit the same page, and
// restoring the original protection is intentionally not attempted
// (spec.md §4.9, §9).
func (img *Image) patchGOT(symbol string, addr uintptr, newFunc uintptr) (old uintptr, err error) {
	if loadWordAtomic(addr) == newFunc {
		return newFunc, nil
	}

	flags, err := img.segmentFlags(addr)
	if err != nil {
		return 0, err
	}

	flags |= elf.PF_W
	flags &^= elf.PF_X
	if err := reprotect(addr, flags); err != nil {
		return 0, err
	}

	old = loadWordAtomic(addr)
	storeWordAtomic(addr, newFunc)

	if needsCacheFlush {
		// pageEnd(addr+1) is the end of addr's page even when addr itself
		// is page-aligned.
		flushCache(pageStart(addr), pageEnd(addr+1))
	}

	img.logger().Info("hook installed",
		hooklog.String("image", img.Pathname),
		hooklog.Fn(symbol),
		hooklog.Addr("slot", uint64(addr)),
		hooklog.Addr("old", uint64(old)),
		hooklog.Addr("new", uint64(newFunc)),
	)

	return old, nil
}
